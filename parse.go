package toml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxNestingDepth bounds value nesting (arrays and inline tables) so a
// pathological document cannot exhaust the call stack.
const maxNestingDepth = 200

// Parse parses a complete TOML document into a Value tree. The input must
// be fully in memory; any malformed token yields a SyntaxError carrying the
// byte offset, and any conflicting definition yields a StructuralError.
// There is no partial-result recovery.
func Parse(data string) (*Value, error) {
	p := &parser{data: data, aot: make(map[string]struct{})}
	return p.parseDocument()
}

// parser is a single forward cursor over the input text. Number/date
// disambiguation saves and restores pos; there is no general backtracking.
type parser struct {
	data  string
	pos   int
	depth int

	// aot records the header paths defined via [[path]], so a
	// statically-defined array can be told apart from an array of tables.
	aot map[string]struct{}
}

func (p *parser) syntaxError(msg string, offset int) *SyntaxError {
	return &SyntaxError{Msg: msg, Offset: offset}
}

func (p *parser) structuralError(msg string, offset int) *StructuralError {
	return &StructuralError{Msg: msg, Offset: offset}
}

func (p *parser) eof() bool { return p.pos >= len(p.data) }

// atNewline reports whether the cursor sits on a recognized line ending:
// "\n" or "\r\n". A bare '\r' is not a line ending.
func (p *parser) atNewline() bool {
	if p.eof() {
		return false
	}
	c := p.data[p.pos]
	return c == '\n' || (c == '\r' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n')
}

func (p *parser) skipNewline() {
	if p.eof() {
		return
	}
	if p.data[p.pos] == '\r' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n' {
		p.pos += 2
	} else if p.data[p.pos] == '\n' {
		p.pos++
	}
}

func (p *parser) skipWhitespace() {
	for !p.eof() && (p.data[p.pos] == ' ' || p.data[p.pos] == '\t') {
		p.pos++
	}
}

// skipWhitespaceAndComment skips whitespace and, if a '#' follows, the
// comment up to (not including) the line ending. Control characters other
// than tab inside a comment are a hard error.
func (p *parser) skipWhitespaceAndComment() error {
	p.skipWhitespace()
	if p.eof() || p.data[p.pos] != '#' {
		return nil
	}
	p.pos++
	for !p.eof() {
		c := p.data[p.pos]
		if c == '\n' || c == '\r' {
			return nil
		}
		if isForbiddenControl(c) {
			return p.syntaxError("control character not allowed in comment", p.pos)
		}
		p.pos++
	}
	return nil
}

// skipBlankLines skips any run of whitespace, comments, and line endings.
func (p *parser) skipBlankLines() error {
	for {
		start := p.pos
		if err := p.skipWhitespaceAndComment(); err != nil {
			return err
		}
		p.skipNewline()
		if p.pos == start {
			return nil
		}
	}
}

// endOfLine consumes the line ending (or end of input) that must follow a
// key/value pair or a table header.
func (p *parser) endOfLine() error {
	if err := p.skipWhitespaceAndComment(); err != nil {
		return err
	}
	if p.eof() {
		return nil
	}
	if !p.atNewline() {
		return p.syntaxError("a line break is required here", p.pos)
	}
	p.skipNewline()
	return nil
}

// parseBareKey reads a run of ASCII letters, digits, underscores, and
// hyphens. inHeader additionally allows ']' as a terminator.
func (p *parser) parseBareKey(inHeader bool) (string, error) {
	start := p.pos
	for !p.eof() {
		c := p.data[p.pos]
		if isBareKeyChar(c) {
			p.pos++
			continue
		}
		if c == '=' || c == ' ' || c == '\t' || c == '.' || (inHeader && c == ']') {
			break
		}
		return "", p.syntaxError("invalid character in key", p.pos)
	}
	if p.pos == start {
		return "", p.syntaxError("empty key", p.pos)
	}
	return p.data[start:p.pos], nil
}

func (p *parser) parseQuotedKey() (string, error) {
	if p.data[p.pos] == '"' {
		return p.parseBasicString()
	}
	return p.parseLiteralString()
}

// parseKeyPath reads a dotted key: one or more bare or quoted segments
// joined by '.', with optional whitespace around each segment.
func (p *parser) parseKeyPath(inHeader bool) ([]string, error) {
	var keys []string
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil, p.syntaxError("key expected", p.pos)
		}
		var key string
		var err error
		if c := p.data[p.pos]; c == '"' || c == '\'' {
			key, err = p.parseQuotedKey()
		} else {
			key, err = p.parseBareKey(inHeader)
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		if len(keys) > maxNestingDepth {
			return nil, p.syntaxError("key path too deep", p.pos)
		}
		p.skipWhitespace()
		if !p.eof() && p.data[p.pos] == '.' {
			p.pos++
			continue
		}
		return keys, nil
	}
}

// parseKeyValue reads "key = value". When needEOL is set the pair must be
// followed by a comment-or-whitespace run and a line ending (or EOF).
func (p *parser) parseKeyValue(needEOL bool) ([]string, *Value, error) {
	keys, err := p.parseKeyPath(false)
	if err != nil {
		return nil, nil, err
	}
	p.skipWhitespace()
	if p.eof() || p.data[p.pos] != '=' {
		return nil, nil, p.syntaxError("expected '=' after key", p.pos)
	}
	p.pos++
	v, err := p.parseValue()
	if err != nil {
		return nil, nil, err
	}
	if needEOL {
		if err := p.endOfLine(); err != nil {
			return nil, nil, err
		}
	}
	return keys, v, nil
}

// parseValue dispatches on the first non-whitespace character: quote means
// string, digit/sign/'i'/'n' means number-or-date, 't'/'f' means boolean,
// '[' means array, '{' means inline table.
func (p *parser) parseValue() (*Value, error) {
	p.skipWhitespace()
	if p.eof() {
		return nil, p.syntaxError("value expected", p.pos)
	}
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNestingDepth {
		return nil, p.syntaxError("value nesting too deep", p.pos)
	}
	switch c := p.data[p.pos]; {
	case c == '"' || c == '\'':
		return p.parseString()
	case c == '+' || c == '-' || isDigit(c) || c == 'i' || c == 'n':
		return p.parseNumberOrDate()
	case c == 't' || c == 'f':
		return p.parseBoolean()
	case c == '[':
		return p.parseArray()
	case c == '{':
		return p.parseInlineTable()
	}
	return nil, p.syntaxError("invalid value", p.pos)
}

func (p *parser) parseBoolean() (*Value, error) {
	if strings.HasPrefix(p.data[p.pos:], "true") {
		p.pos += 4
		return Bool(true), nil
	}
	if strings.HasPrefix(p.data[p.pos:], "false") {
		p.pos += 5
		return Bool(false), nil
	}
	return nil, p.syntaxError("expected 'true' or 'false'", p.pos)
}

// Is this a character that can appear in a date/time literal?
func isDateTimeChar(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		c == '-' || c == ':' || c == '+' || c == '.'
}

// looksLikeDateTime is the cheap lookahead: four digits followed by '-',
// or two digits followed by ':'.
func (p *parser) looksLikeDateTime() bool {
	s := p.data[p.pos:]
	if len(s) >= 5 && isDigit(s[0]) && isDigit(s[1]) && isDigit(s[2]) && isDigit(s[3]) && s[4] == '-' {
		return true
	}
	if len(s) >= 3 && isDigit(s[0]) && isDigit(s[1]) && s[2] == ':' {
		return true
	}
	return false
}

// parseNumberOrDate disambiguates by lookahead: when the input is
// date-shaped, the maximal run of date/time characters is strictly matched
// against the four calendar grammars; success yields a DateTime value,
// failure rewinds the cursor and falls through to number parsing.
func (p *parser) parseNumberOrDate() (*Value, error) {
	start := p.pos
	if p.looksLikeDateTime() {
		end := p.pos
		for end < len(p.data) {
			c := p.data[end]
			if isDateTimeChar(c) {
				end++
				continue
			}
			// A single space is allowed as the date/time separator.
			if c == ' ' && end+1 < len(p.data) && isDateTimeChar(p.data[end+1]) {
				end++
				continue
			}
			break
		}
		if dt, err := ParseDateTime(p.data[start:end]); err == nil {
			p.pos = end
			return Date(dt), nil
		}
	}
	p.pos = start
	return p.parseNumber()
}

func validDigit(base int, c byte) bool {
	switch base {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return c >= '0' && c <= '7'
	case 16:
		return isHexDigit(c)
	default:
		return isDigit(c)
	}
}

// scanDigits consumes digits of the given base interleaved with single
// underscores, which must sit strictly between two digits.
func (p *parser) scanDigits(base int, scan *int) (bool, error) {
	seen := false
	for *scan < len(p.data) {
		c := p.data[*scan]
		if validDigit(base, c) {
			seen = true
			*scan++
			continue
		}
		if c != '_' {
			break
		}
		if !seen {
			return seen, p.syntaxError("underscore must be surrounded by digits", *scan)
		}
		if *scan+1 >= len(p.data) || !validDigit(base, p.data[*scan+1]) {
			return seen, p.syntaxError("underscore must be surrounded by digits", *scan)
		}
		*scan++
	}
	return seen, nil
}

func (p *parser) parseNumber() (*Value, error) {
	start := p.pos
	size := len(p.data)

	negative := false
	signed := false
	if c := p.data[p.pos]; c == '+' || c == '-' {
		negative = c == '-'
		signed = true
		p.pos++
		if p.pos < size && p.data[p.pos] == '.' {
			return nil, p.syntaxError("a sign cannot be immediately followed by '.'", p.pos)
		}
	}

	if strings.HasPrefix(p.data[p.pos:], "inf") {
		p.pos += 3
		if negative {
			return Float(math.Inf(-1)), nil
		}
		return Float(math.Inf(1)), nil
	}
	if strings.HasPrefix(p.data[p.pos:], "nan") {
		p.pos += 3
		return Float(math.NaN()), nil
	}

	base := 10
	if p.pos+1 < size && p.data[p.pos] == '0' {
		switch p.data[p.pos+1] {
		case 'b':
			base = 2
			p.pos += 2
		case 'o':
			base = 8
			p.pos += 2
		case 'x':
			base = 16
			p.pos += 2
		}
	}
	if base != 10 && signed {
		return nil, p.syntaxError("a sign is only allowed on decimal numbers", start)
	}
	if base == 10 && p.pos < size && p.data[p.pos] == '0' &&
		p.pos+1 < size && (isDigit(p.data[p.pos+1]) || p.data[p.pos+1] == '_') {
		return nil, p.syntaxError("leading zeros are not allowed", p.pos)
	}

	isFloat := false
	scan := p.pos
	if _, err := p.scanDigits(base, &scan); err != nil {
		return nil, err
	}

	// Fractional part, decimal only.
	if base == 10 && scan < size && p.data[scan] == '.' {
		isFloat = true
		scan++
		if scan < size && p.data[scan] == '_' {
			return nil, p.syntaxError("underscore must be surrounded by digits", scan)
		}
		seen, err := p.scanDigits(10, &scan)
		if err != nil {
			return nil, err
		}
		if !seen {
			return nil, p.syntaxError("expected digits after '.'", scan)
		}
	}

	// Exponent, decimal only.
	if base == 10 && scan < size && (p.data[scan] == 'e' || p.data[scan] == 'E') {
		isFloat = true
		scan++
		if scan < size && (p.data[scan] == '+' || p.data[scan] == '-') {
			scan++
		}
		if scan < size && p.data[scan] == '_' {
			return nil, p.syntaxError("underscore must be surrounded by digits", scan)
		}
		seen, err := p.scanDigits(10, &scan)
		if err != nil {
			return nil, err
		}
		if !seen {
			return nil, p.syntaxError("expected digits after exponent", scan)
		}
	}

	raw := p.data[p.pos:scan]
	if raw == "" || raw[0] == '_' || raw[len(raw)-1] == '_' {
		return nil, p.syntaxError("invalid number", start)
	}
	p.pos = scan
	raw = strings.ReplaceAll(raw, "_", "")
	if negative {
		raw = "-" + raw
	}

	if isFloat {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, p.syntaxError("invalid float", start)
		}
		return Float(f), nil
	}
	i, err := strconv.ParseInt(raw, base, 64)
	if err != nil {
		return nil, p.syntaxError("invalid integer", start)
	}
	return Int(i), nil
}

// hasTriple reports whether three consecutive copies of c start at the
// cursor.
func (p *parser) hasTriple(c byte) bool {
	return p.pos+2 < len(p.data) && p.data[p.pos] == c && p.data[p.pos+1] == c && p.data[p.pos+2] == c
}

func (p *parser) parseString() (*Value, error) {
	c := p.data[p.pos]
	var s string
	var err error
	switch {
	case p.hasTriple('"'):
		s, err = p.parseMultiBasicString()
	case p.hasTriple('\''):
		s, err = p.parseMultiLiteralString()
	case c == '"':
		s, err = p.parseBasicString()
	default:
		s, err = p.parseLiteralString()
	}
	if err != nil {
		return nil, err
	}
	return String(s), nil
}

// parseUnicodeEscape decodes \uXXXX or \UXXXXXXXX with the cursor on the
// 'u'/'U'. Codepoints beyond U+10FFFF or inside the surrogate range are a
// RangeError.
func (p *parser) parseUnicodeEscape() (string, error) {
	hexLen := 4
	if p.data[p.pos] == 'U' {
		hexLen = 8
	}
	p.pos++
	if p.pos+hexLen > len(p.data) {
		return "", p.syntaxError("unexpected end of input in unicode escape", p.pos)
	}
	hex := p.data[p.pos : p.pos+hexLen]
	for i := 0; i < hexLen; i++ {
		if !isHexDigit(hex[i]) {
			return "", p.syntaxError("invalid hex digit in unicode escape", p.pos+i)
		}
	}
	p.pos += hexLen
	cp, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "", p.syntaxError("invalid unicode escape", p.pos-hexLen)
	}
	if cp > 0x10FFFF || (cp >= 0xD800 && cp <= 0xDFFF) {
		return "", &RangeError{Msg: fmt.Sprintf("codepoint U+%04X is not a unicode scalar value", cp)}
	}
	return string(rune(cp)), nil
}

// appendEscape handles the character after a backslash, shared by basic
// and multi-line basic strings.
func (p *parser) appendEscape(sb *strings.Builder) error {
	if p.eof() {
		return p.syntaxError("unterminated escape sequence", p.pos)
	}
	switch c := p.data[p.pos]; c {
	case 'b':
		sb.WriteByte('\b')
	case 't':
		sb.WriteByte('\t')
	case 'n':
		sb.WriteByte('\n')
	case 'f':
		sb.WriteByte('\f')
	case 'r':
		sb.WriteByte('\r')
	case '"':
		sb.WriteByte('"')
	case '\\':
		sb.WriteByte('\\')
	case 'u', 'U':
		s, err := p.parseUnicodeEscape()
		if err != nil {
			return err
		}
		sb.WriteString(s)
		return nil
	default:
		return p.syntaxError(fmt.Sprintf("unknown escape '\\%c'", c), p.pos)
	}
	p.pos++
	return nil
}

func (p *parser) parseBasicString() (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for !p.eof() {
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			return sb.String(), nil
		case c == '\n' || c == '\r':
			return "", p.syntaxError("newline not allowed in basic string", p.pos)
		case isForbiddenControl(c):
			return "", p.syntaxError("control characters must be escaped in basic string", p.pos)
		case c == '\\':
			p.pos++
			if err := p.appendEscape(&sb); err != nil {
				return "", err
			}
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.syntaxError("unterminated basic string", p.pos)
}

func (p *parser) parseLiteralString() (string, error) {
	p.pos++ // opening quote
	start := p.pos
	for !p.eof() {
		c := p.data[p.pos]
		switch {
		case c == '\'':
			s := p.data[start:p.pos]
			p.pos++
			return s, nil
		case c == '\n' || c == '\r':
			return "", p.syntaxError("newline not allowed in literal string", p.pos)
		case isForbiddenControl(c):
			return "", p.syntaxError("control characters not allowed in literal string", p.pos)
		default:
			p.pos++
		}
	}
	return "", p.syntaxError("unterminated literal string", p.pos)
}

// closeMultiline handles a run of three or more quote characters at the
// cursor: up to two may be literal content before the closing delimiter.
func (p *parser) closeMultiline(quote byte, sb *strings.Builder) (bool, error) {
	q := 3
	for p.pos+q < len(p.data) && p.data[p.pos+q] == quote {
		q++
	}
	if q > 5 {
		return false, p.syntaxError("too many quotes in multi-line string", p.pos)
	}
	for i := 0; i < q-3; i++ {
		sb.WriteByte(quote)
	}
	p.pos += q
	return true, nil
}

// skipLineContinuation consumes a backslash line continuation: the line
// break and every following whitespace character up to the next
// non-whitespace. ok is false when the backslash is not a continuation.
func (p *parser) skipLineContinuation() bool {
	// The backslash must be the last non-whitespace character on its line.
	j := p.pos + 1
	for j < len(p.data) && (p.data[j] == ' ' || p.data[j] == '\t') {
		j++
	}
	if j >= len(p.data) {
		return false
	}
	if c := p.data[j]; c != '\n' && !(c == '\r' && j+1 < len(p.data) && p.data[j+1] == '\n') {
		return false
	}
	p.pos = j
	for !p.eof() {
		switch c := p.data[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n':
			p.pos++
		case c == '\r' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '\n':
			p.pos += 2
		default:
			return true
		}
	}
	return true
}

func (p *parser) parseMultiBasicString() (string, error) {
	p.pos += 3
	p.skipNewline() // a newline immediately after the opener is stripped
	var sb strings.Builder
	for !p.eof() {
		c := p.data[p.pos]
		if c == '"' && p.hasTriple('"') {
			if done, err := p.closeMultiline('"', &sb); err != nil {
				return "", err
			} else if done {
				return sb.String(), nil
			}
		}
		switch {
		case c == '\\':
			if p.skipLineContinuation() {
				continue
			}
			p.pos++
			if err := p.appendEscape(&sb); err != nil {
				return "", err
			}
		case c == '\r':
			if p.pos+1 >= len(p.data) || p.data[p.pos+1] != '\n' {
				return "", p.syntaxError("bare carriage return not allowed in multi-line string", p.pos)
			}
			sb.WriteByte(c)
			p.pos++
		case c != '\n' && isForbiddenControl(c):
			return "", p.syntaxError("control characters must be escaped in multi-line string", p.pos)
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.syntaxError("unterminated multi-line basic string", p.pos)
}

func (p *parser) parseMultiLiteralString() (string, error) {
	p.pos += 3
	p.skipNewline()
	var sb strings.Builder
	for !p.eof() {
		c := p.data[p.pos]
		if c == '\'' && p.hasTriple('\'') {
			if done, err := p.closeMultiline('\'', &sb); err != nil {
				return "", err
			} else if done {
				return sb.String(), nil
			}
		}
		switch {
		case c == '\r':
			if p.pos+1 >= len(p.data) || p.data[p.pos+1] != '\n' {
				return "", p.syntaxError("bare carriage return not allowed in multi-line string", p.pos)
			}
			sb.WriteByte(c)
			p.pos++
		case c != '\n' && isForbiddenControl(c):
			return "", p.syntaxError("control characters not allowed in multi-line literal string", p.pos)
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.syntaxError("unterminated multi-line literal string", p.pos)
}

func (p *parser) parseArray() (*Value, error) {
	p.pos++ // '['
	arr := NewArray()
	expectValue := true
	for !p.eof() {
		if err := p.skipBlankLines(); err != nil {
			return nil, err
		}
		if p.eof() {
			break
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		if !expectValue {
			return nil, p.syntaxError("expected ',' or ']' in array", p.pos)
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr.Append(v)
		if err := p.skipBlankLines(); err != nil {
			return nil, err
		}
		if !p.eof() && p.data[p.pos] == ',' {
			p.pos++
			expectValue = true
		} else {
			expectValue = false
		}
	}
	return nil, p.syntaxError("unclosed array: missing ']'", p.pos)
}

// freezeInline marks every table reachable from v as inline: an inline
// table fully defines its key space, so nothing outside its braces may
// extend it or any table nested within it.
func freezeInline(v *Value) {
	switch v.t {
	case TableType:
		v.tab.inline = true
		for _, k := range v.tab.keys {
			c, _ := v.tab.get(k)
			freezeInline(c)
		}
	case ArrayType:
		for _, e := range v.arr {
			freezeInline(e)
		}
	}
}

func (p *parser) parseInlineTable() (*Value, error) {
	p.pos++ // '{'
	obj := NewTable()
	seenValue := false
	expectValue := false
	for !p.eof() {
		if err := p.skipWhitespaceAndComment(); err != nil {
			return nil, err
		}
		if p.eof() {
			break
		}
		if p.data[p.pos] == '}' {
			if expectValue && seenValue {
				return nil, p.syntaxError("trailing comma not allowed in inline table", p.pos)
			}
			p.pos++
			freezeInline(obj)
			return obj, nil
		}
		if seenValue && !expectValue {
			return nil, p.syntaxError("expected ',' or '}' in inline table", p.pos)
		}
		start := p.pos
		keys, v, err := p.parseKeyValue(false)
		if err != nil {
			return nil, err
		}
		if err := insertKeyValue(obj, keys, v, start); err != nil {
			return nil, err
		}
		seenValue = true
		if err := p.skipWhitespaceAndComment(); err != nil {
			return nil, err
		}
		if !p.eof() && p.data[p.pos] == ',' {
			p.pos++
			expectValue = true
		} else {
			expectValue = false
		}
	}
	return nil, p.syntaxError("unclosed inline table: missing '}'", p.pos)
}

// parseTableHeader reads "[path]" or "[[path]]" with the cursor on the
// first '['. It returns the key path and whether the header names an
// array of tables.
func (p *parser) parseTableHeader() ([]string, bool, error) {
	p.pos++ // '['
	isArray := !p.eof() && p.data[p.pos] == '['
	if isArray {
		p.pos++
	}
	path, err := p.parseKeyPath(true)
	if err != nil {
		return nil, false, err
	}
	if p.eof() || p.data[p.pos] != ']' {
		return nil, false, p.syntaxError("expected ']' to close table header", p.pos)
	}
	p.pos++
	if isArray {
		if p.eof() || p.data[p.pos] != ']' {
			return nil, false, p.syntaxError("expected ']]' to close array-of-tables header", p.pos)
		}
		p.pos++
	}
	return path, isArray, nil
}

func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}

// insertKeyValue stores v under the dotted key path in target, creating
// intermediate tables on demand. Redefining an existing key, extending an
// inline table, or routing through a non-table value is a StructuralError.
func insertKeyValue(target *Value, keys []string, v *Value, offset int) error {
	node := target
	for _, k := range keys[:len(keys)-1] {
		if node.t == EmptyType {
			*node = Value{t: TableType, tab: newTable()}
		}
		if node.t != TableType {
			return &StructuralError{Msg: fmt.Sprintf("key %q collides with a non-table value", k), Offset: offset}
		}
		if node.tab.inline {
			return &StructuralError{Msg: "cannot extend an inline table", Offset: offset}
		}
		child, ok := node.tab.get(k)
		if !ok {
			child = NewTable()
			node.tab.set(k, child)
		}
		node = child
	}
	last := keys[len(keys)-1]
	if node.t == EmptyType {
		*node = Value{t: TableType, tab: newTable()}
	}
	if node.t != TableType {
		return &StructuralError{Msg: fmt.Sprintf("key %q collides with a non-table value", last), Offset: offset}
	}
	if node.tab.inline {
		return &StructuralError{Msg: "cannot extend an inline table", Offset: offset}
	}
	if _, exists := node.tab.get(last); exists {
		return &StructuralError{Msg: fmt.Sprintf("duplicate key %q", last), Offset: offset}
	}
	node.tab.set(last, v)
	return nil
}

// resolveHeader walks the header path iteratively with a current-container
// cursor, creating intermediate tables on demand and descending into the
// last element of an intermediate array of tables. For "[path]" it returns
// the named table; for "[[path]]" it appends and returns a fresh table.
func (p *parser) resolveHeader(root *Value, path []string, isArray bool, offset int) (*Value, error) {
	cur := root
	for i, k := range path[:len(path)-1] {
		if cur.t != TableType {
			return nil, p.structuralError(fmt.Sprintf("key %q does not name a table", k), offset)
		}
		if cur.tab.inline {
			return nil, p.structuralError("cannot extend an inline table", offset)
		}
		child, ok := cur.tab.get(k)
		if !ok {
			child = NewTable()
			cur.tab.set(k, child)
			cur = child
			continue
		}
		switch child.t {
		case TableType:
			cur = child
		case ArrayType:
			if _, defined := p.aot[pathKey(path[:i+1])]; !defined {
				return nil, p.structuralError(fmt.Sprintf("cannot extend statically defined array %q", k), offset)
			}
			last := child.arr[len(child.arr)-1]
			if last.t != TableType {
				return nil, p.structuralError(fmt.Sprintf("array %q does not end in a table", k), offset)
			}
			cur = last
		default:
			return nil, p.structuralError(fmt.Sprintf("key %q collides with a non-container value", k), offset)
		}
	}

	last := path[len(path)-1]
	if cur.t != TableType {
		return nil, p.structuralError(fmt.Sprintf("key %q does not name a table", last), offset)
	}
	if cur.tab.inline {
		return nil, p.structuralError("cannot extend an inline table", offset)
	}
	child, ok := cur.tab.get(last)

	if isArray {
		full := pathKey(path)
		if !ok {
			child = NewArray()
			cur.tab.set(last, child)
			p.aot[full] = struct{}{}
		}
		if child.t != ArrayType {
			return nil, p.structuralError(fmt.Sprintf("cannot redefine %q as an array of tables", last), offset)
		}
		if _, defined := p.aot[full]; !defined {
			return nil, p.structuralError(fmt.Sprintf("cannot extend statically defined array %q", last), offset)
		}
		elem := NewTable()
		elem.tab.explicit = true
		child.arr = append(child.arr, elem)
		return elem, nil
	}

	if !ok {
		child = NewTable()
		child.tab.explicit = true
		cur.tab.set(last, child)
		return child, nil
	}
	switch child.t {
	case TableType:
		if child.tab.inline {
			return nil, p.structuralError("cannot redefine an inline table", offset)
		}
		if child.tab.explicit {
			return nil, p.structuralError(fmt.Sprintf("table %q is already defined", last), offset)
		}
		child.tab.explicit = true
		return child, nil
	default:
		return nil, p.structuralError(fmt.Sprintf("cannot redefine %q as a table", last), offset)
	}
}

// parseDocument assembles the whole document: leading key/value pairs
// populate the root table, then each table header is resolved and its
// key/value pairs populate the resolved table.
func (p *parser) parseDocument() (*Value, error) {
	root := NewTable()

	if err := p.skipBlankLines(); err != nil {
		return nil, err
	}
	for !p.eof() && p.data[p.pos] != '[' {
		start := p.pos
		keys, v, err := p.parseKeyValue(true)
		if err != nil {
			return nil, err
		}
		if err := insertKeyValue(root, keys, v, start); err != nil {
			return nil, err
		}
		if err := p.skipBlankLines(); err != nil {
			return nil, err
		}
	}

	for !p.eof() {
		if p.data[p.pos] != '[' {
			return nil, p.syntaxError("expected table header", p.pos)
		}
		headerStart := p.pos
		path, isArray, err := p.parseTableHeader()
		if err != nil {
			return nil, err
		}
		if err := p.endOfLine(); err != nil {
			return nil, err
		}
		cur, err := p.resolveHeader(root, path, isArray, headerStart)
		if err != nil {
			return nil, err
		}
		if err := p.skipBlankLines(); err != nil {
			return nil, err
		}
		for !p.eof() && p.data[p.pos] != '[' {
			start := p.pos
			keys, v, err := p.parseKeyValue(true)
			if err != nil {
				return nil, err
			}
			if err := insertKeyValue(cur, keys, v, start); err != nil {
				return nil, err
			}
			if err := p.skipBlankLines(); err != nil {
				return nil, err
			}
		}
	}
	return root, nil
}
