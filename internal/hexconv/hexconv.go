package hexconv

// Halfbyte maps an ASCII hex digit to its value. Non-hex characters map to 0xFF.
var Halfbyte = func() (table [256]byte) {
	for i := range table {
		table[i] = 0xFF
	}

	for c := byte('0'); c <= '9'; c++ {
		table[c] = c - '0'
	}

	for c := byte('a'); c <= 'f'; c++ {
		table[c] = c - 'a' + 10
		table[c-'a'+'A'] = c - 'a' + 10
	}

	return table
}()

// Upper is the alphabet used for percent-encoding, as RFC 3986 recommends uppercase digits.
const Upper = "0123456789ABCDEF"
