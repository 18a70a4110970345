package toml

import (
	"bytes"
	"io"
	"strconv"
	"strings"
)

// Format selects the output syntax of an Encoder.
type Format uint8

const (
	// FormatTOML renders canonical TOML text; the indent width is ignored.
	FormatTOML Format = iota

	// FormatJSON renders JSON; indent 0 means compact output.
	FormatJSON

	// FormatYAML renders block-style YAML; indent 0 means no indentation.
	FormatYAML
)

// String implements fmt.Stringer for Format.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "<unknown format>"
	}
}

// Stringify renders v in the given format. indent is the number of spaces
// per nesting level for JSON and YAML; 0 means compact.
func Stringify(v *Value, format Format, indent int) (string, error) {
	buf := bytes.Buffer{}
	if err := NewEncoder(&buf, format, indent).Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// An Encoder writes Value trees to an output stream in a fixed format.
type Encoder struct {
	out    io.Writer
	format Format
	indent int
}

// NewEncoder returns an encoder writing to out.
func NewEncoder(out io.Writer, format Format, indent int) *Encoder {
	return &Encoder{out: out, format: format, indent: indent}
}

// Encode writes v to the underlying writer. The canonical TOML form of a
// table re-parses to a structurally equal tree.
func (e *Encoder) Encode(v *Value) error {
	switch e.format {
	case FormatJSON:
		return e.encodeJSON(v, 0)
	case FormatYAML:
		return e.encodeYAML(v, 0)
	default:
		return e.encodeTOML(v)
	}
}

// encodeTOML writes a value in canonical TOML. A table at the top level is
// rendered as sections; anywhere else values take their inline forms.
func (e *Encoder) encodeTOML(v *Value) error {
	if v.Type() == TableType || v.Type() == EmptyType {
		return e.tomlTable(v, "")
	}
	return e.scalar(v)
}

// scalar writes the inline form shared by all three formats for
// non-container values.
func (e *Encoder) scalar(v *Value) error {
	switch v.Type() {
	case BoolType:
		if v.b {
			return writeRawString("true", e.out)
		}
		return writeRawString("false", e.out)
	case IntType:
		return writeRawString(strconv.FormatInt(v.i, 10), e.out)
	case FloatType:
		return writeRawString(formatFloat(v.f), e.out)
	case StringType:
		return writeQuotedString(v.s, e.out)
	case DateTimeType:
		return writeRawString(v.dt.String(), e.out)
	case ArrayType:
		return e.tomlInlineArray(v)
	default:
		return e.tomlInlineTable(v)
	}
}

// tomlInlineArray writes "[v, v, ...]"; table elements use the inline
// table form.
func (e *Encoder) tomlInlineArray(v *Value) error {
	if err := writeRawChar('[', e.out); err != nil {
		return err
	}
	for i, item := range v.arr {
		if i > 0 {
			if err := writeRawString(", ", e.out); err != nil {
				return err
			}
		}
		if err := e.scalar(item); err != nil {
			return err
		}
	}
	return writeRawChar(']', e.out)
}

// tomlInlineTable writes "{ key = value, ... }". An Empty placeholder
// renders as an empty table.
func (e *Encoder) tomlInlineTable(v *Value) error {
	if v.Type() == EmptyType || v.Len() == 0 {
		return writeRawString("{ }", e.out)
	}
	if err := writeRawString("{ ", e.out); err != nil {
		return err
	}
	for i, k := range v.tab.keys {
		if i > 0 {
			if err := writeRawString(", ", e.out); err != nil {
				return err
			}
		}
		if err := writeKey(k, e.out); err != nil {
			return err
		}
		if err := writeRawString(" = ", e.out); err != nil {
			return err
		}
		c, _ := v.tab.get(k)
		if err := e.scalar(c); err != nil {
			return err
		}
	}
	return writeRawString(" }", e.out)
}

// isArrayOfTables reports whether v renders as repeated [[section]]
// headers: a non-empty array whose every element is a table.
func isArrayOfTables(v *Value) bool {
	if v.Type() != ArrayType || len(v.arr) == 0 {
		return false
	}
	for _, item := range v.arr {
		if item.Type() != TableType {
			return false
		}
	}
	return true
}

// quotedKeyPath renders one segment of a dotted section path.
func quotedKeyPath(prefix, key string) string {
	var sb strings.Builder
	if keyNeedsQuoting(key) {
		writeQuotedString(key, &sb)
	} else {
		sb.WriteString(key)
	}
	if prefix == "" {
		return sb.String()
	}
	return prefix + "." + sb.String()
}

// tomlTable writes one table level: scalar and plain-array keys first as
// "key = value" lines, then nested tables as "[dotted.path]" sections and
// arrays of tables as repeated "[[dotted.path]]" sections, each preceded
// by a blank line.
func (e *Encoder) tomlTable(v *Value, prefix string) error {
	if v.Type() == EmptyType {
		return nil
	}
	for _, k := range v.tab.keys {
		c, _ := v.tab.get(k)
		if c.Type() == TableType || c.Type() == EmptyType || isArrayOfTables(c) {
			continue
		}
		if err := writeKey(k, e.out); err != nil {
			return err
		}
		if err := writeRawString(" = ", e.out); err != nil {
			return err
		}
		if err := e.scalar(c); err != nil {
			return err
		}
		if err := writeRawChar('\n', e.out); err != nil {
			return err
		}
	}
	for _, k := range v.tab.keys {
		c, _ := v.tab.get(k)
		switch {
		case c.Type() == TableType || c.Type() == EmptyType:
			full := quotedKeyPath(prefix, k)
			if err := writeRawString("\n["+full+"]\n", e.out); err != nil {
				return err
			}
			if err := e.tomlTable(c, full); err != nil {
				return err
			}
		case isArrayOfTables(c):
			full := quotedKeyPath(prefix, k)
			for _, item := range c.arr {
				if err := writeRawString("\n[["+full+"]]\n", e.out); err != nil {
					return err
				}
				if err := e.tomlTable(item, full); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *Encoder) writeIndent(level int) error {
	if e.indent == 0 {
		return nil
	}
	return writeRawString(strings.Repeat(" ", level*e.indent), e.out)
}

// encodeJSON writes v as JSON. DateTime values are emitted as quoted
// strings; floats keep their TOML spelling.
func (e *Encoder) encodeJSON(v *Value, level int) error {
	switch v.Type() {
	case ArrayType:
		return e.jsonArray(v, level)
	case TableType, EmptyType:
		return e.jsonObject(v, level)
	case DateTimeType:
		return writeRawString(`"`+v.dt.String()+`"`, e.out)
	case StringType:
		return writeQuotedString(v.s, e.out)
	default:
		return e.scalar(v)
	}
}

func (e *Encoder) jsonArray(v *Value, level int) error {
	if len(v.arr) == 0 {
		return writeRawString("[]", e.out)
	}
	if err := writeRawChar('[', e.out); err != nil {
		return err
	}
	for i, item := range v.arr {
		if i > 0 {
			if err := writeRawChar(',', e.out); err != nil {
				return err
			}
		}
		if e.indent != 0 {
			if err := writeRawChar('\n', e.out); err != nil {
				return err
			}
		}
		if err := e.writeIndent(level + 1); err != nil {
			return err
		}
		if err := e.encodeJSON(item, level+1); err != nil {
			return err
		}
	}
	if e.indent != 0 {
		if err := writeRawChar('\n', e.out); err != nil {
			return err
		}
		if err := e.writeIndent(level); err != nil {
			return err
		}
	}
	return writeRawChar(']', e.out)
}

func (e *Encoder) jsonObject(v *Value, level int) error {
	if v.Type() == EmptyType || v.Len() == 0 {
		return writeRawString("{}", e.out)
	}
	if err := writeRawChar('{', e.out); err != nil {
		return err
	}
	for i, k := range v.tab.keys {
		if i > 0 {
			if err := writeRawChar(',', e.out); err != nil {
				return err
			}
		}
		if e.indent != 0 {
			if err := writeRawChar('\n', e.out); err != nil {
				return err
			}
		}
		if err := e.writeIndent(level + 1); err != nil {
			return err
		}
		if err := writeQuotedString(k, e.out); err != nil {
			return err
		}
		if err := writeRawString(": ", e.out); err != nil {
			return err
		}
		c, _ := v.tab.get(k)
		if err := e.encodeJSON(c, level+1); err != nil {
			return err
		}
	}
	if e.indent != 0 {
		if err := writeRawChar('\n', e.out); err != nil {
			return err
		}
		if err := e.writeIndent(level); err != nil {
			return err
		}
	}
	return writeRawChar('}', e.out)
}

// encodeYAML writes v in block style: a table entry is "key:" followed by
// an inline scalar or an indented block, an array entry is "- " likewise.
func (e *Encoder) encodeYAML(v *Value, level int) error {
	switch v.Type() {
	case ArrayType:
		return e.yamlArray(v, level)
	case TableType, EmptyType:
		return e.yamlObject(v, level)
	default:
		return e.scalar(v)
	}
}

// yamlBlock reports whether a value is rendered as a nested indented
// block rather than an inline scalar.
func yamlBlock(v *Value) bool {
	return (v.Type() == TableType || v.Type() == ArrayType) && v.Len() > 0
}

func (e *Encoder) yamlArray(v *Value, level int) error {
	if len(v.arr) == 0 {
		return writeRawString("[]", e.out)
	}
	for i, item := range v.arr {
		if err := e.writeIndent(level); err != nil {
			return err
		}
		if err := writeRawChar('-', e.out); err != nil {
			return err
		}
		if yamlBlock(item) {
			if err := writeRawChar('\n', e.out); err != nil {
				return err
			}
			if err := e.encodeYAML(item, level+1); err != nil {
				return err
			}
		} else {
			if err := writeRawChar(' ', e.out); err != nil {
				return err
			}
			if err := e.encodeYAML(item, 0); err != nil {
				return err
			}
		}
		if i != len(v.arr)-1 {
			if err := writeRawChar('\n', e.out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Encoder) yamlObject(v *Value, level int) error {
	if v.Type() == EmptyType || v.Len() == 0 {
		return writeRawString("{}", e.out)
	}
	for i, k := range v.tab.keys {
		if i > 0 {
			if err := writeRawChar('\n', e.out); err != nil {
				return err
			}
		}
		if err := e.writeIndent(level); err != nil {
			return err
		}
		if err := writeKey(k, e.out); err != nil {
			return err
		}
		if err := writeRawChar(':', e.out); err != nil {
			return err
		}
		c, _ := v.tab.get(k)
		if yamlBlock(c) {
			if err := writeRawChar('\n', e.out); err != nil {
				return err
			}
			if err := e.encodeYAML(c, level+1); err != nil {
				return err
			}
		} else {
			if err := writeRawChar(' ', e.out); err != nil {
				return err
			}
			if err := e.encodeYAML(c, 0); err != nil {
				return err
			}
		}
	}
	return nil
}
