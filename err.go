package toml

import "fmt"

// A SyntaxError is returned when the parser encounters a malformed token.
// Offset is the byte offset into the input at which the error was detected.
type SyntaxError struct {
	Msg    string
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("toml: syntax error: %v (offset %v)", e.Msg, e.Offset)
}

// A StructuralError is returned when a document is well-formed token by
// token but structurally invalid: a duplicate key, an illegal table
// redefinition, or a key path colliding with a non-container value.
type StructuralError struct {
	Msg    string
	Offset int
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("toml: structural error: %v (offset %v)", e.Msg, e.Offset)
}

// A TypeError is returned when a typed accessor is invoked against a Value
// holding a different variant.
type TypeError struct {
	Want Type
	Got  Type
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("toml: type error: want %v, got %v", e.Want, e.Got)
}

// A RangeError is returned for a negative array index, or for a Unicode
// escape whose codepoint is outside the scalar range or inside the
// surrogate range.
type RangeError struct {
	Msg string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("toml: range error: %v", e.Msg)
}

// A UsageError is returned when the library is used in a way that is a
// logic error regardless of input, such as asking a local date for an
// absolute instant.
type UsageError struct {
	API string
	Msg string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("toml: usage error in %v: %v", e.API, e.Msg)
}

// A KeyError is returned when reading a key that is not present in a table.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("toml: key %q not found", e.Key)
}
