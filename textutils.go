package toml

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Is this a digit?
func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Is this a valid character for a bare key?
func isBareKeyChar(c byte) bool {
	if c >= 'a' && c <= 'z' {
		return true
	}
	if c >= 'A' && c <= 'Z' {
		return true
	}
	return isDigit(c) || c == '_' || c == '-'
}

// Does this key need to be quoted in TOML form?
func keyNeedsQuoting(key string) bool {
	if key == "" {
		return true
	}
	for i := 0; i < len(key); i++ {
		if !isBareKeyChar(key[i]) {
			return true
		}
	}
	return false
}

// Is this a control byte that must not appear raw (tab excepted)?
func isForbiddenControl(c byte) bool {
	return (c <= 0x1F && c != '\t') || c == 0x7F
}

var hexChars = []byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'A', 'B', 'C', 'D', 'E', 'F'}

// Write the given string out double-quoted, escaping with the basic-string
// escape set plus \u00XX for any remaining control byte.
func writeQuotedString(s string, out io.Writer) error {
	if err := writeRawChar('"', out); err != nil {
		return err
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		var esc string
		switch c {
		case '"':
			esc = `\"`
		case '\\':
			esc = `\\`
		case '\b':
			esc = `\b`
		case '\f':
			esc = `\f`
		case '\n':
			esc = `\n`
		case '\r':
			esc = `\r`
		case '\t':
			esc = `\t`
		default:
			if c <= 0x08 || (c >= 0x0A && c <= 0x1F) || c == 0x7F {
				buf := []byte{'\\', 'u', '0', '0', hexChars[(c>>4)&0xF], hexChars[c&0xF]}
				if err := writeRawChars(buf, out); err != nil {
					return err
				}
				continue
			}
			if err := writeRawChar(c, out); err != nil {
				return err
			}
			continue
		}
		if err := writeRawString(esc, out); err != nil {
			return err
		}
	}
	return writeRawChar('"', out)
}

// Write the given key bare when possible, quoted otherwise.
func writeKey(key string, out io.Writer) error {
	if keyNeedsQuoting(key) {
		return writeQuotedString(key, out)
	}
	return writeRawString(key, out)
}

// formatFloat renders a float the way the TOML encoder wants it:
// inf/-inf/nan special-cased, scientific notation for |x| >= 1e6 or
// 0 < |x| < 1e-4 with a bare signed exponent, fixed notation otherwise,
// and integral values forced to show a trailing ".0".
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs >= 1e6 || (abs > 0 && abs < 1e-4) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Rewrite the exponent without '+' or leading zeros: 1e+06 -> 1e6.
		i := strings.IndexByte(s, 'e')
		exp, _ := strconv.Atoi(s[i+1:])
		return s[:i] + "e" + strconv.Itoa(exp)
	}
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Write out the given raw string.
func writeRawString(s string, out io.Writer) error {
	_, err := io.WriteString(out, s)
	return err
}

// Write out the given raw character sequence.
func writeRawChars(cs []byte, out io.Writer) error {
	_, err := out.Write(cs)
	return err
}

// Write out the given raw character.
func writeRawChar(c byte, out io.Writer) error {
	_, err := out.Write([]byte{c})
	return err
}
