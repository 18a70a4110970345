package toml

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dtCompare lets go-cmp compare DateTime values without exporting fields.
var dtCompare = cmp.Comparer(func(a, b DateTime) bool { return a.Equal(b) })

func parseOne(t *testing.T, doc string) *Value {
	t.Helper()
	v, err := Parse(doc)
	require.NoError(t, err)
	return v
}

func parseTree(t *testing.T, doc string, expected interface{}) {
	t.Helper()
	v := parseOne(t, doc)
	if diff := cmp.Diff(expected, v.Interface(), dtCompare); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "\n", "# just a comment", "# comment\n\n  \t\n"} {
		v := parseOne(t, doc)
		assert.Equal(t, TableType, v.Type())
		assert.Equal(t, 0, v.Len())
	}
}

func TestParseBooleans(t *testing.T) {
	parseTree(t, "a = true\nb = false", map[string]interface{}{
		"a": true,
		"b": false,
	})

	_, err := Parse("a = truthy")
	require.Error(t, err)
}

func TestParseIntegers(t *testing.T) {
	test := func(lit string, expected int64) {
		t.Run(lit, func(t *testing.T) {
			v := parseOne(t, "n = "+lit)
			n, err := v.Get("n")
			require.NoError(t, err)
			i, err := n.AsInt()
			require.NoError(t, err)
			assert.Equal(t, expected, i)
		})
	}

	test("0", 0)
	test("+0", 0)
	test("-0", 0)
	test("42", 42)
	test("-17", -17)
	test("1_000", 1000)
	test("5_349_221", 5349221)
	test("0b1010", 10)
	test("0b1101_0101", 213)
	test("0o17", 15)
	test("0o0", 0)
	test("0x1A", 26)
	test("0xdead_beef", 0xdeadbeef)
	test("9223372036854775807", math.MaxInt64)
	test("-9223372036854775808", math.MinInt64)
}

func TestParseBadIntegers(t *testing.T) {
	test := func(lit string) {
		t.Run(lit, func(t *testing.T) {
			_, err := Parse("n = " + lit)
			require.Error(t, err)
			assert.IsType(t, &SyntaxError{}, err)
		})
	}

	test("1__000")
	test("_1")
	test("1_")
	test("01")
	test("0_1")
	test("0x")
	test("0b2")
	test("0o8")
	test("-0x1")
	test("+0b1")
	test("9223372036854775808")
}

func TestParseFloats(t *testing.T) {
	test := func(lit string, expected float64) {
		t.Run(lit, func(t *testing.T) {
			v := parseOne(t, "f = "+lit)
			c, err := v.Get("f")
			require.NoError(t, err)
			f, err := c.AsFloat()
			require.NoError(t, err)
			if math.IsNaN(expected) {
				assert.True(t, math.IsNaN(f))
			} else {
				assert.Equal(t, expected, f)
			}
		})
	}

	test("1.0", 1.0)
	test("3.1415", 3.1415)
	test("-0.01", -0.01)
	test("5e22", 5e22)
	test("1e06", 1e6)
	test("-2E-2", -0.02)
	test("6.626e-34", 6.626e-34)
	test("9_224_617.445_991_228_313", 9224617.445991228313)
	test("inf", math.Inf(1))
	test("+inf", math.Inf(1))
	test("-inf", math.Inf(-1))
	test("nan", math.NaN())
	test("+nan", math.NaN())
	test("-nan", math.NaN())
}

func TestParseBadFloats(t *testing.T) {
	test := func(lit string) {
		t.Run(lit, func(t *testing.T) {
			_, err := Parse("f = " + lit)
			require.Error(t, err)
		})
	}

	test(".7")
	test("7.")
	test("3.e+20")
	test("+.5")
	test("1._0")
	test("1.0_")
	test("1e_2")
	test("1e2_")
}

func TestParseBasicStrings(t *testing.T) {
	test := func(lit, expected string) {
		t.Run(lit, func(t *testing.T) {
			v := parseOne(t, "s = "+lit)
			c, err := v.Get("s")
			require.NoError(t, err)
			s, err := c.AsString()
			require.NoError(t, err)
			assert.Equal(t, expected, s)
		})
	}

	test(`""`, "")
	test(`"hello"`, "hello")
	test(`"tab\there"`, "tab\there")
	test(`"line\nbreak"`, "line\nbreak")
	test(`"quote\"backslash\\"`, "quote\"backslash\\")
	test(`"\b\f\r"`, "\b\f\r")
	test(`"\u00E9"`, "é")
	test(`"\U0001F600"`, "\U0001F600")
	test(`"ünïcödé passes through"`, "ünïcödé passes through")
}

func TestParseBadBasicStrings(t *testing.T) {
	test := func(lit string) {
		t.Run(lit, func(t *testing.T) {
			_, err := Parse("s = " + lit)
			require.Error(t, err)
		})
	}

	test(`"unterminated`)
	test(`"bad \q escape"`)
	test(`"bad \u12 escape"`)
	test(`"bad \uZZZZ escape"`)
	test("\"raw\nnewline\"")
	test("\"control \x01 byte\"")
}

func TestParseUnicodeEscapeRange(t *testing.T) {
	_, err := Parse(`s = "\uD800"`)
	require.Error(t, err)
	assert.IsType(t, &RangeError{}, err)

	_, err = Parse(`s = "\U00110000"`)
	require.Error(t, err)
	assert.IsType(t, &RangeError{}, err)
}

func TestParseLiteralStrings(t *testing.T) {
	test := func(lit, expected string) {
		t.Run(lit, func(t *testing.T) {
			v := parseOne(t, "s = "+lit)
			c, err := v.Get("s")
			require.NoError(t, err)
			s, err := c.AsString()
			require.NoError(t, err)
			assert.Equal(t, expected, s)
		})
	}

	test(`''`, "")
	test(`'C:\Users\nodejs\templates'`, `C:\Users\nodejs\templates`)
	test(`'Tom "Dubs" Preston-Werner'`, `Tom "Dubs" Preston-Werner`)
	test(`'<\i\c*\s*>'`, `<\i\c*\s*>`)
}

func TestParseMultilineBasicStrings(t *testing.T) {
	test := func(name, lit, expected string) {
		t.Run(name, func(t *testing.T) {
			v := parseOne(t, "s = "+lit)
			c, err := v.Get("s")
			require.NoError(t, err)
			s, err := c.AsString()
			require.NoError(t, err)
			assert.Equal(t, expected, s)
		})
	}

	test("plain", "\"\"\"hello\"\"\"", "hello")
	test("leading newline stripped", "\"\"\"\nRoses are red\nViolets are blue\"\"\"",
		"Roses are red\nViolets are blue")
	test("continuation", "\"\"\"a\\\n   b\"\"\"", "ab")
	test("continuation with trailing space", "\"\"\"a\\   \n   b\"\"\"", "ab")
	test("continuation across blank lines", "\"\"\"The quick brown \\\n\n  fox\"\"\"",
		"The quick brown fox")
	test("embedded single quote", "\"\"\"He said \"yes\".\"\"\"", "He said \"yes\".")
	test("embedded double quote", "\"\"\"two \"\" quotes\"\"\"", "two \"\" quotes")
	test("closing run of four", "\"\"\"x\"\"\"\"", "x\"")
	test("closing run of five", "\"\"\"x\"\"\"\"\"", "x\"\"")
	test("escapes still work", "\"\"\"tab\\there\"\"\"", "tab\there")
}

func TestParseMultilineLiteralStrings(t *testing.T) {
	test := func(name, lit, expected string) {
		t.Run(name, func(t *testing.T) {
			v := parseOne(t, "s = "+lit)
			c, err := v.Get("s")
			require.NoError(t, err)
			s, err := c.AsString()
			require.NoError(t, err)
			assert.Equal(t, expected, s)
		})
	}

	test("plain", "'''hello'''", "hello")
	test("leading newline stripped", "'''\nfirst\nsecond'''", "first\nsecond")
	test("no escapes", `'''no \n escape'''`, `no \n escape`)
	test("embedded quotes", "'''can't stop'''", "can't stop")
	test("closing run of four", "'''x''''", "x'")
}

func TestParseTooManyClosingQuotes(t *testing.T) {
	_, err := Parse("s = \"\"\"x\"\"\"\"\"\"")
	require.Error(t, err)
	assert.IsType(t, &SyntaxError{}, err)
}

func TestParseDateTimeValues(t *testing.T) {
	test := func(lit string, kind DateTimeKind) {
		t.Run(lit, func(t *testing.T) {
			v := parseOne(t, "d = "+lit)
			c, err := v.Get("d")
			require.NoError(t, err)
			dt, err := c.AsDateTime()
			require.NoError(t, err)
			assert.Equal(t, kind, dt.Kind())
			assert.Equal(t, lit, dt.String())
		})
	}

	test("1979-05-27T07:32:00Z", OffsetDateTime)
	test("1979-05-27T00:32:00-07:00", OffsetDateTime)
	test("1979-05-27T00:32:00.999999+02:30", OffsetDateTime)
	test("1979-05-27T07:32:00", LocalDateTime)
	test("1979-05-27", LocalDate)
	test("07:32:00", LocalTime)
	test("00:32:00.999", LocalTime)
}

func TestParseDateTimeSpaceSeparator(t *testing.T) {
	v := parseOne(t, "d = 1979-05-27 07:32:00Z")
	c, err := v.Get("d")
	require.NoError(t, err)
	dt, err := c.AsDateTime()
	require.NoError(t, err)
	assert.Equal(t, OffsetDateTime, dt.Kind())
	assert.Equal(t, "1979-05-27T07:32:00Z", dt.String())
}

func TestParseBadDates(t *testing.T) {
	test := func(lit string) {
		t.Run(lit, func(t *testing.T) {
			_, err := Parse("d = " + lit)
			require.Error(t, err)
		})
	}

	test("2021-02-29")
	test("2021-13-01")
	test("2021-00-01")
	test("2021-01-32")
	test("2021-01-01T24:00:00")
	test("2021-01-01T00:60:00")
	test("2021-01-01T00:00:61")
	test("2021-01-01T00:00:00+24:00")
}

func TestParseDateNumberDisambiguation(t *testing.T) {
	// A leap day parses as a date, the same shape in a non-leap year does
	// not parse at all rather than falling back to arithmetic.
	v := parseOne(t, "d = 2024-02-29")
	c, err := v.Get("d")
	require.NoError(t, err)
	assert.Equal(t, DateTimeType, c.Type())

	// Four digits without a dash stay numeric.
	v = parseOne(t, "n = 1979")
	c, err = v.Get("n")
	require.NoError(t, err)
	assert.Equal(t, IntType, c.Type())
}

func TestParseArrays(t *testing.T) {
	parseTree(t, "a = [1, 2, 3]", map[string]interface{}{
		"a": []interface{}{int64(1), int64(2), int64(3)},
	})
	parseTree(t, "a = []", map[string]interface{}{
		"a": []interface{}{},
	})
	parseTree(t, "a = [1, 2, 3,]", map[string]interface{}{
		"a": []interface{}{int64(1), int64(2), int64(3)},
	})
	parseTree(t, "a = [[1, 2], [3]]", map[string]interface{}{
		"a": []interface{}{
			[]interface{}{int64(1), int64(2)},
			[]interface{}{int64(3)},
		},
	})
	parseTree(t, "a = [1, \"two\", 3.0]", map[string]interface{}{
		"a": []interface{}{int64(1), "two", 3.0},
	})
	parseTree(t, "a = [\n  1, # one\n  2, # two\n]", map[string]interface{}{
		"a": []interface{}{int64(1), int64(2)},
	})
}

func TestParseBadArrays(t *testing.T) {
	test := func(doc string) {
		t.Run(doc, func(t *testing.T) {
			_, err := Parse(doc)
			require.Error(t, err)
		})
	}

	test("a = [1, 2")
	test("a = [1 2]")
	test("a = [,]")
	test("a = [1,, 2]")
}

func TestParseInlineTables(t *testing.T) {
	parseTree(t, `name = { first = "Tom", last = "Preston-Werner" }`, map[string]interface{}{
		"name": map[string]interface{}{
			"first": "Tom",
			"last":  "Preston-Werner",
		},
	})
	parseTree(t, "point = { x = 1, y = 2 }", map[string]interface{}{
		"point": map[string]interface{}{"x": int64(1), "y": int64(2)},
	})
	parseTree(t, "animal = { type.name = \"pug\" }", map[string]interface{}{
		"animal": map[string]interface{}{
			"type": map[string]interface{}{"name": "pug"},
		},
	})
	parseTree(t, "empty = {}", map[string]interface{}{
		"empty": map[string]interface{}{},
	})
}

func TestParseBadInlineTables(t *testing.T) {
	test := func(doc string) {
		t.Run(doc, func(t *testing.T) {
			_, err := Parse(doc)
			require.Error(t, err)
		})
	}

	test("t = { x = 1, }")
	test("t = { x = 1 y = 2 }")
	test("t = { x = 1, x = 2 }")
	test("t = { x = 1")
	test("t = { x = 1,\n y = 2 }")
}

func TestParseInlineTableFrozen(t *testing.T) {
	test := func(doc string) {
		t.Run(doc, func(t *testing.T) {
			_, err := Parse(doc)
			require.Error(t, err)
			assert.IsType(t, &StructuralError{}, err)
		})
	}

	test("a = { b = 1 }\na.c = 2")
	test("a = { b = 1 }\n[a]\nc = 2")
	test("a = { b = 1 }\n[a.c]\nd = 2")
	test("a = { b = { c = 1 } }\n[a.b.d]\ne = 2")
}

func TestParseDottedKeys(t *testing.T) {
	parseTree(t, "physical.color = \"orange\"\nphysical.shape = \"round\"", map[string]interface{}{
		"physical": map[string]interface{}{
			"color": "orange",
			"shape": "round",
		},
	})
	parseTree(t, `site."google.com" = true`, map[string]interface{}{
		"site": map[string]interface{}{"google.com": true},
	})
	parseTree(t, "a . b . c = 1", map[string]interface{}{
		"a": map[string]interface{}{
			"b": map[string]interface{}{"c": int64(1)},
		},
	})
}

func TestParseQuotedKeys(t *testing.T) {
	parseTree(t, `"127.0.0.1" = "value"`, map[string]interface{}{
		"127.0.0.1": "value",
	})
	parseTree(t, `'quoted "value"' = 1`, map[string]interface{}{
		`quoted "value"`: int64(1),
	})
	parseTree(t, `"" = "blank"`, map[string]interface{}{
		"": "blank",
	})
}

func TestParseTableHeaders(t *testing.T) {
	doc := `
[table-1]
key1 = "some string"
key2 = 123

[table-2]
key1 = "another string"
`
	parseTree(t, doc, map[string]interface{}{
		"table-1": map[string]interface{}{
			"key1": "some string",
			"key2": int64(123),
		},
		"table-2": map[string]interface{}{
			"key1": "another string",
		},
	})
}

func TestParseDottedHeaders(t *testing.T) {
	doc := `
[a.b.c]
d = 1

[a]
e = 2
`
	parseTree(t, doc, map[string]interface{}{
		"a": map[string]interface{}{
			"b": map[string]interface{}{
				"c": map[string]interface{}{"d": int64(1)},
			},
			"e": int64(2),
		},
	})
}

func TestParseDuplicateKeys(t *testing.T) {
	test := func(doc string) {
		t.Run(doc, func(t *testing.T) {
			_, err := Parse(doc)
			require.Error(t, err)
			assert.IsType(t, &StructuralError{}, err)
		})
	}

	test("a = 1\na = 2")
	test("a = 1\na.b = 2")
	test("a.b = 1\na.b.c = 2")
	test("[a]\n[a]")
	test("[a]\nb = 1\n[a]\nc = 2")
	test("[a.b]\n[a.b]")
}

func TestParseHeaderAfterDottedKeys(t *testing.T) {
	// A table created implicitly by a dotted key or an intermediate header
	// segment may still be defined explicitly once.
	v := parseOne(t, "[a.b]\nc = 1\n[a]\nd = 2")
	a, err := v.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())
}

func TestParseArrayOfTables(t *testing.T) {
	doc := `
[[products]]
name = "Hammer"
sku = 738594937

[[products]]

[[products]]
name = "Nail"
sku = 284758393
color = "gray"
`
	v := parseOne(t, doc)
	products, err := v.Get("products")
	require.NoError(t, err)
	require.Equal(t, ArrayType, products.Type())
	require.Equal(t, 3, products.Len())

	first, err := products.At(0)
	require.NoError(t, err)
	name, err := first.Get("name")
	require.NoError(t, err)
	s, err := name.AsString()
	require.NoError(t, err)
	assert.Equal(t, "Hammer", s)

	second, err := products.At(1)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Len())

	third, err := products.At(2)
	require.NoError(t, err)
	assert.Equal(t, 3, third.Len())
}

func TestParseNestedArrayOfTables(t *testing.T) {
	doc := `
[[fruit]]
name = "apple"

[fruit.physical]
color = "red"
shape = "round"

[[fruit.variety]]
name = "red delicious"

[[fruit.variety]]
name = "granny smith"

[[fruit]]
name = "banana"

[[fruit.variety]]
name = "plantain"
`
	parseTree(t, doc, map[string]interface{}{
		"fruit": []interface{}{
			map[string]interface{}{
				"name": "apple",
				"physical": map[string]interface{}{
					"color": "red",
					"shape": "round",
				},
				"variety": []interface{}{
					map[string]interface{}{"name": "red delicious"},
					map[string]interface{}{"name": "granny smith"},
				},
			},
			map[string]interface{}{
				"name": "banana",
				"variety": []interface{}{
					map[string]interface{}{"name": "plantain"},
				},
			},
		},
	})
}

func TestParseStaticArrayConflicts(t *testing.T) {
	test := func(doc string) {
		t.Run(doc, func(t *testing.T) {
			_, err := Parse(doc)
			require.Error(t, err)
			assert.IsType(t, &StructuralError{}, err)
		})
	}

	test("a = [1, 2]\n[[a]]")
	test("a = [{ b = 1 }]\n[[a]]")
	test("a = [{ b = 1 }]\n[a.c]")
	test("[[a]]\n[a]")
	test("[a]\n[[a]]")
	test("a = 1\n[[a]]")
	test("a = 1\n[a.b]")
}

func TestParseComments(t *testing.T) {
	doc := `# top comment
key = "value" # trailing comment
# [not-a-table]
other = 1
`
	parseTree(t, doc, map[string]interface{}{
		"key":   "value",
		"other": int64(1),
	})

	_, err := Parse("# bad \x01 control\nkey = 1")
	require.Error(t, err)
}

func TestParseLineEndings(t *testing.T) {
	parseTree(t, "a = 1\r\nb = 2\r\n", map[string]interface{}{
		"a": int64(1),
		"b": int64(2),
	})

	// A bare carriage return is not a line ending.
	_, err := Parse("a = 1\rb = 2")
	require.Error(t, err)
}

func TestParseMissingNewlineBetweenPairs(t *testing.T) {
	_, err := Parse("a = 1 b = 2")
	require.Error(t, err)
	assert.IsType(t, &SyntaxError{}, err)
}

func TestParseBadHeaders(t *testing.T) {
	test := func(doc string) {
		t.Run(doc, func(t *testing.T) {
			_, err := Parse(doc)
			require.Error(t, err)
		})
	}

	test("[]")
	test("[a")
	test("[[a]")
	test("[a]]")
	test("[a] b = 1")
	test("[a.]")
	test("[.a]")
}

func TestParseNestingDepthLimit(t *testing.T) {
	deep := "a = " + strings.Repeat("[", 300) + strings.Repeat("]", 300)
	_, err := Parse(deep)
	require.Error(t, err)
	assert.IsType(t, &SyntaxError{}, err)

	ok := "a = " + strings.Repeat("[", 100) + strings.Repeat("]", 100)
	_, err = Parse(ok)
	require.NoError(t, err)

	longPath := strings.Repeat("k.", 300) + "k = 1"
	_, err = Parse(longPath)
	require.Error(t, err)
	assert.IsType(t, &SyntaxError{}, err)
}

func TestParseSyntaxErrorOffset(t *testing.T) {
	_, err := Parse("good = 1\nbad = @")
	require.Error(t, err)
	se, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Equal(t, strings.IndexByte("good = 1\nbad = @", '@'), se.Offset)
}

func TestParseFullDocument(t *testing.T) {
	doc := `# This is a TOML document.

title = "TOML Example"

[owner]
name = "Tom Preston-Werner"
dob = 1979-05-27T07:32:00-08:00

[database]
server = "192.168.1.1"
ports = [ 8001, 8001, 8002 ]
connection_max = 5000
enabled = true

[servers.alpha]
ip = "10.0.0.1"
dc = "eqdc10"

[servers.beta]
ip = "10.0.0.2"
dc = "eqdc10"

[clients]
data = [ ["gamma", "delta"], [1, 2] ]
hosts = [
  "alpha",
  "omega"
]
`
	v := parseOne(t, doc)

	title, err := v.Get("title")
	require.NoError(t, err)
	s, err := title.AsString()
	require.NoError(t, err)
	assert.Equal(t, "TOML Example", s)

	owner, err := v.Get("owner")
	require.NoError(t, err)
	dob, err := owner.Get("dob")
	require.NoError(t, err)
	dt, err := dob.AsDateTime()
	require.NoError(t, err)
	assert.Equal(t, OffsetDateTime, dt.Kind())
	off, ok := dt.Offset()
	require.True(t, ok)
	assert.Equal(t, -8*60, off)

	db, err := v.Get("database")
	require.NoError(t, err)
	ports, err := db.Get("ports")
	require.NoError(t, err)
	assert.Equal(t, 3, ports.Len())

	servers, err := v.Get("servers")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, servers.Keys())
}
