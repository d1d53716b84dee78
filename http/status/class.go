package status

// Class is the first digit of a status code.
type Class uint8

const (
	Informational Class = 1
	Successful    Class = 2
	Redirection   Class = 3
	ClientError   Class = 4
	ServerError   Class = 5
)

// Valid reports whether the code lies in the range a response status line may carry.
func (c Code) Valid() bool {
	return c >= 100 && c <= 599
}

func (c Code) Class() Class {
	return Class(c / 100)
}

func (c Code) IsSuccess() bool {
	return c.Class() == Successful
}

// HasBody tells whether a response with the code may carry a message body at all.
// Informational, 204 No Content and 304 Not Modified responses never do.
func (c Code) HasBody() bool {
	return c.Class() != Informational && c != NoContent && c != NotModified
}
