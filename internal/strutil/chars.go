package strutil

// tokenChars marks tchar from RFC 9110, 5.6.2:
//
//	tchar = "!" / "#" / "$" / "%" / "&" / "'" / "*" / "+" / "-" / "." /
//	        "^" / "_" / "`" / "|" / "~" / DIGIT / ALPHA
var tokenChars = func() (table [256]bool) {
	for c := 'a'; c <= 'z'; c++ {
		table[c] = true
		table[c-'a'+'A'] = true
	}

	for c := '0'; c <= '9'; c++ {
		table[c] = true
	}

	for _, c := range []byte("!#$%&'*+-.^_`|~") {
		table[c] = true
	}

	return table
}()

// IsToken reports whether the string is a non-empty HTTP token, as header names and
// method names must be.
func IsToken(str string) bool {
	if len(str) == 0 {
		return false
	}

	for i := 0; i < len(str); i++ {
		if !tokenChars[str[i]] {
			return false
		}
	}

	return true
}

// IsFieldValue reports whether the string consists of visible ASCII, spaces and
// horizontal tabs only. Obsolete text (bytes above 0x7f) is rejected, as is anything
// that could terminate the header line.
func IsFieldValue(str string) bool {
	for i := 0; i < len(str); i++ {
		if c := str[i]; c != '\t' && (c < ' ' || c > '~') {
			return false
		}
	}

	return true
}
