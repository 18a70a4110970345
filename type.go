package toml

import "fmt"

// A Type represents the type of a TOML Value.
type Type uint8

const (
	// EmptyType is the type of an untouched Value. It is the placeholder
	// used during autovivification; the first write decides the real type.
	EmptyType Type = iota

	// BoolType is the type of a TOML boolean, true or false.
	BoolType

	// IntType is the type of a 64-bit signed TOML integer.
	IntType

	// FloatType is the type of a 64-bit TOML float, including ±inf and nan.
	FloatType

	// StringType is the type of a TOML string, represented as UTF-8 text.
	StringType

	// DateTimeType is the type of one of the four TOML date/time variants.
	DateTimeType

	// ArrayType is the type of an ordered sequence of TOML values.
	ArrayType

	// TableType is the type of an insertion-ordered mapping from string
	// keys to TOML values.
	TableType
)

// String implements fmt.Stringer for Type.
func (t Type) String() string {
	switch t {
	case EmptyType:
		return "empty"
	case BoolType:
		return "bool"
	case IntType:
		return "integer"
	case FloatType:
		return "float"
	case StringType:
		return "string"
	case DateTimeType:
		return "datetime"
	case ArrayType:
		return "array"
	case TableType:
		return "table"
	default:
		return fmt.Sprintf("<unknown type %v>", uint8(t))
	}
}
