package codec

import "fmt"

// Errors
var (
	ErrUnsupportedType    = &Error{"unsupported element type"}
	ErrInvalidFieldCount  = &Error{"invalid field count"}
	ErrFieldCountMismatch = &Error{"row value count does not match field count"}
	ErrValueOutOfRange    = &Error{"value not representable as element type"}
)

// Error represents a codec error
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func unsupportedType(tag string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedType, tag)
}

func invalidFieldCount(n int) error {
	return fmt.Errorf("%w: %d", ErrInvalidFieldCount, n)
}

func unsupportedElement(t ElementType) error {
	return unsupportedType(fmt.Sprintf("ElementType(%d)", uint8(t)))
}
