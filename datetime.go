package toml

import (
	"strconv"
	"strings"
	"time"
)

// DateTimeKind identifies which of the four TOML date/time variants a
// DateTime holds.
type DateTimeKind uint8

const (
	// NoDateTime is the kind of the zero DateTime.
	NoDateTime DateTimeKind = iota

	// OffsetDateTime is a date and time with a UTC offset, e.g.
	// 2025-07-22T15:00:00Z.
	OffsetDateTime

	// LocalDateTime is a date and time without an offset.
	LocalDateTime

	// LocalDate is a date without a time of day.
	LocalDate

	// LocalTime is a time of day without a date.
	LocalTime
)

// String implements fmt.Stringer for DateTimeKind.
func (k DateTimeKind) String() string {
	switch k {
	case NoDateTime:
		return "<no datetime>"
	case OffsetDateTime:
		return "offset date-time"
	case LocalDateTime:
		return "local date-time"
	case LocalDate:
		return "local date"
	case LocalTime:
		return "local time"
	default:
		return "<unknown kind>"
	}
}

// A DateTime is one of the four TOML date/time variants. It stores the
// calendar fields as parsed, without normalization; only the fields
// meaningful to the kind are readable. A DateTime is immutable once
// parsed except through whole-value reassignment.
type DateTime struct {
	kind                 DateTimeKind
	year, month, day     int
	hour, minute, second int
	nsec                 int
	offset               int // minutes east of UTC, OffsetDateTime only
}

func (dt DateTime) hasDate() bool {
	return dt.kind == LocalDate || dt.kind == LocalDateTime || dt.kind == OffsetDateTime
}

func (dt DateTime) hasTime() bool {
	return dt.kind == LocalTime || dt.kind == LocalDateTime || dt.kind == OffsetDateTime
}

// Kind returns the variant held by dt.
func (dt DateTime) Kind() DateTimeKind { return dt.kind }

// Year returns the year field; ok is false for kinds without a date part.
func (dt DateTime) Year() (int, bool) { return dt.year, dt.hasDate() }

// Month returns the month field (1-12); ok is false for kinds without a
// date part.
func (dt DateTime) Month() (int, bool) { return dt.month, dt.hasDate() }

// Day returns the day field; ok is false for kinds without a date part.
func (dt DateTime) Day() (int, bool) { return dt.day, dt.hasDate() }

// Hour returns the hour field; ok is false for kinds without a time part.
func (dt DateTime) Hour() (int, bool) { return dt.hour, dt.hasTime() }

// Minute returns the minute field; ok is false for kinds without a time part.
func (dt DateTime) Minute() (int, bool) { return dt.minute, dt.hasTime() }

// Second returns the second field; ok is false for kinds without a time part.
func (dt DateTime) Second() (int, bool) { return dt.second, dt.hasTime() }

// Nanosecond returns the fractional-second field in nanoseconds; ok is
// false for kinds without a time part.
func (dt DateTime) Nanosecond() (int, bool) { return dt.nsec, dt.hasTime() }

// Offset returns the UTC offset in minutes; ok is false unless dt is an
// OffsetDateTime.
func (dt DateTime) Offset() (int, bool) {
	return dt.offset, dt.kind == OffsetDateTime
}

// Equal reports whether dt and other hold the same variant and the same
// stored fields.
func (dt DateTime) Equal(other DateTime) bool { return dt == other }

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// daysIn returns the number of days in the given month, applying the
// leap-year rule for February.
func daysIn(month, year int) int {
	if month == 2 && isLeapYear(year) {
		return 29
	}
	return daysInMonth[month-1]
}

// parseDigits reads exactly count ASCII digits at *pos, advancing it.
func parseDigits(s string, pos *int, count int) (int, bool) {
	if *pos+count > len(s) {
		return 0, false
	}
	value := 0
	for i := 0; i < count; i++ {
		c := s[*pos+i]
		if c < '0' || c > '9' {
			return 0, false
		}
		value = value*10 + int(c-'0')
	}
	*pos += count
	return value, true
}

// ParseDateTime parses one of the four TOML date/time forms. It first
// tries a date optionally followed by a time of day, fractional seconds,
// and offset, then a bare time of day. The match must consume the entire
// input; anything else is a SyntaxError.
func ParseDateTime(s string) (DateTime, error) {
	if s == "" {
		return DateTime{}, &SyntaxError{Msg: "empty date/time"}
	}
	if dt, err, ok := parseDateForms(s); ok {
		return dt, err
	}
	if dt, ok := parseBareTime(s); ok {
		return dt, nil
	}
	return DateTime{}, &SyntaxError{Msg: "does not match any TOML date/time format"}
}

// parseDateForms handles local date, local date-time, and offset
// date-time. ok is false when the input does not even start with a valid
// date, in which case the caller may still match a bare time.
func parseDateForms(s string) (DateTime, error, bool) {
	pos := 0
	year, yok := parseDigits(s, &pos, 4)
	if !yok || pos >= len(s) || s[pos] != '-' {
		return DateTime{}, nil, false
	}
	pos++
	month, mok := parseDigits(s, &pos, 2)
	if !mok || month < 1 || month > 12 || pos >= len(s) || s[pos] != '-' {
		return DateTime{}, nil, false
	}
	pos++
	day, dok := parseDigits(s, &pos, 2)
	if !dok || day < 1 || day > daysIn(month, year) {
		return DateTime{}, nil, false
	}

	dt := DateTime{kind: LocalDate, year: year, month: month, day: day}
	if pos == len(s) {
		return dt, nil, true
	}

	if c := s[pos]; c != 'T' && c != 't' && c != ' ' {
		return DateTime{}, &SyntaxError{Msg: "invalid separator after date", Offset: pos}, true
	}
	pos++

	if err := dt.parseTimePart(s, &pos); err != nil {
		return DateTime{}, err, true
	}
	if pos != len(s) {
		return DateTime{}, &SyntaxError{Msg: "trailing characters after date/time", Offset: pos}, true
	}
	return dt, nil, true
}

// parseTimePart parses HH:MM:SS plus optional fraction and offset,
// upgrading dt's kind from LocalDate as it goes.
func (dt *DateTime) parseTimePart(s string, pos *int) error {
	hour, ok := parseDigits(s, pos, 2)
	if !ok || hour > 23 || *pos >= len(s) || s[*pos] != ':' {
		return &SyntaxError{Msg: "invalid hour", Offset: *pos}
	}
	*pos++
	minute, ok := parseDigits(s, pos, 2)
	if !ok || minute > 59 || *pos >= len(s) || s[*pos] != ':' {
		return &SyntaxError{Msg: "invalid minute", Offset: *pos}
	}
	*pos++
	second, ok := parseDigits(s, pos, 2)
	if !ok || second > 59 {
		return &SyntaxError{Msg: "invalid second", Offset: *pos}
	}

	dt.hour, dt.minute, dt.second = hour, minute, second
	dt.kind = LocalDateTime

	if *pos < len(s) && s[*pos] == '.' {
		*pos++
		if err := dt.parseFraction(s, pos); err != nil {
			return err
		}
	}
	if *pos < len(s) {
		if err := dt.parseOffset(s, pos); err != nil {
			return err
		}
	}
	return nil
}

// parseFraction reads one or more digits after the decimal point and
// right-pads them to nanosecond width.
func (dt *DateTime) parseFraction(s string, pos *int) error {
	start := *pos
	for *pos < len(s) && s[*pos] >= '0' && s[*pos] <= '9' {
		*pos++
	}
	if *pos == start {
		return &SyntaxError{Msg: "'.' must be followed by digits", Offset: start}
	}
	frac := s[start:*pos]
	if len(frac) > 9 {
		frac = frac[:9]
	}
	n, err := strconv.Atoi(frac)
	if err != nil {
		return &SyntaxError{Msg: "invalid fractional second", Offset: start}
	}
	for i := len(frac); i < 9; i++ {
		n *= 10
	}
	dt.nsec = n
	return nil
}

// parseOffset reads 'Z'/'z' or a signed HH:MM offset. A leading character
// that is not an offset introducer leaves dt unchanged.
func (dt *DateTime) parseOffset(s string, pos *int) error {
	switch c := s[*pos]; c {
	case 'Z', 'z':
		*pos++
		dt.offset = 0
		dt.kind = OffsetDateTime
		return nil
	case '+', '-':
		*pos++
		hour, ok := parseDigits(s, pos, 2)
		if !ok || hour > 23 || *pos >= len(s) || s[*pos] != ':' {
			return &SyntaxError{Msg: "invalid offset hour", Offset: *pos}
		}
		*pos++
		minute, ok := parseDigits(s, pos, 2)
		if !ok || minute > 59 {
			return &SyntaxError{Msg: "invalid offset minute", Offset: *pos}
		}
		sign := 1
		if c == '-' {
			sign = -1
		}
		dt.offset = sign * (hour*60 + minute)
		dt.kind = OffsetDateTime
		return nil
	}
	return nil
}

// parseBareTime handles the local time form HH:MM:SS[.frac].
func parseBareTime(s string) (DateTime, bool) {
	pos := 0
	dt := DateTime{}
	if err := dt.parseTimePart(s, &pos); err != nil {
		return DateTime{}, false
	}
	if pos != len(s) || dt.kind != LocalDateTime {
		// An offset on a bare time does not match any TOML form.
		return DateTime{}, false
	}
	dt.kind = LocalTime
	return dt, true
}

// FromTime converts a time.Time to an OffsetDateTime carrying the same
// wall-clock fields and UTC offset.
func FromTime(t time.Time) DateTime {
	_, secs := t.Zone()
	return DateTime{
		kind:   OffsetDateTime,
		year:   t.Year(),
		month:  int(t.Month()),
		day:    t.Day(),
		hour:   t.Hour(),
		minute: t.Minute(),
		second: t.Second(),
		nsec:   t.Nanosecond(),
		offset: secs / 60,
	}
}

// String renders dt in its canonical TOML form: the date zero-padded as
// YYYY-MM-DD, joined to the zero-padded time by 'T' when both are present,
// the fraction with trailing zeros stripped (omitted when zero), and a
// zero offset shown as 'Z'.
func (dt DateTime) String() string {
	var sb strings.Builder
	if dt.hasDate() {
		pad(&sb, dt.year, 4)
		sb.WriteByte('-')
		pad(&sb, dt.month, 2)
		sb.WriteByte('-')
		pad(&sb, dt.day, 2)
		if dt.hasTime() {
			sb.WriteByte('T')
		}
	}
	if dt.hasTime() {
		pad(&sb, dt.hour, 2)
		sb.WriteByte(':')
		pad(&sb, dt.minute, 2)
		sb.WriteByte(':')
		pad(&sb, dt.second, 2)
		if dt.nsec > 0 {
			frac := strconv.Itoa(dt.nsec)
			for len(frac) < 9 {
				frac = "0" + frac
			}
			frac = strings.TrimRight(frac, "0")
			sb.WriteByte('.')
			sb.WriteString(frac)
		}
	}
	if dt.kind == OffsetDateTime {
		if dt.offset == 0 {
			sb.WriteByte('Z')
		} else {
			off := dt.offset
			if off > 0 {
				sb.WriteByte('+')
			} else {
				sb.WriteByte('-')
				off = -off
			}
			pad(&sb, off/60, 2)
			sb.WriteByte(':')
			pad(&sb, off%60, 2)
		}
	}
	return sb.String()
}

func pad(sb *strings.Builder, n, width int) {
	s := strconv.Itoa(n)
	for i := len(s); i < width; i++ {
		sb.WriteByte('0')
	}
	sb.WriteString(s)
}

// Instant converts an OffsetDateTime to the absolute instant it denotes:
// the calendar fields are treated as a UTC wall clock, the fraction is
// added, and the stored offset is subtracted. Any other kind is a
// UsageError.
func (dt DateTime) Instant() (time.Time, error) {
	if dt.kind != OffsetDateTime {
		return time.Time{}, &UsageError{API: "DateTime.Instant", Msg: "only an offset date-time denotes an instant"}
	}
	t := time.Date(dt.year, time.Month(dt.month), dt.day, dt.hour, dt.minute, dt.second, dt.nsec, time.UTC)
	return t.Add(-time.Duration(dt.offset) * time.Minute), nil
}
