package toml

import (
	"encoding/json"
	"testing"

	burntsushi "github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// interopDoc deliberately avoids date-times and arrays of tables: other
// decoders map those to implementation-specific types that defeat a
// whole-tree comparison. Those cases get their own spot checks below.
const interopDoc = `
title = "interop"
count = 42
ratio = 0.5
enabled = true
tags = ["x", "y", "z"]
matrix = [[1, 2], [3, 4]]

[server]
host = "localhost"
port = 8080

[server.limits]
max_conns = 100
`

func TestInteropTOMLOutput(t *testing.T) {
	v := parseOne(t, interopDoc)
	rendered := stringify(t, v, FormatTOML, 0)

	var theirs map[string]interface{}
	require.NoError(t, burntsushi.Unmarshal([]byte(rendered), &theirs))

	if diff := cmp.Diff(v.Interface(), theirs); diff != "" {
		t.Errorf("independent decoder disagrees (-ours +theirs):\n%s", diff)
	}
}

func TestInteropTOMLInput(t *testing.T) {
	// The reverse direction: a document this parser accepts decodes to the
	// same tree under an independent implementation.
	var theirs map[string]interface{}
	require.NoError(t, burntsushi.Unmarshal([]byte(interopDoc), &theirs))

	v := parseOne(t, interopDoc)
	if diff := cmp.Diff(v.Interface(), theirs); diff != "" {
		t.Errorf("independent decoder disagrees (-ours +theirs):\n%s", diff)
	}
}

func TestInteropArrayOfTables(t *testing.T) {
	doc := `
[[servers]]
name = "alpha"

[[servers]]
name = "beta"
`
	v := parseOne(t, doc)
	rendered := stringify(t, v, FormatTOML, 0)

	var theirs struct {
		Servers []struct {
			Name string `toml:"name"`
		} `toml:"servers"`
	}
	require.NoError(t, burntsushi.Unmarshal([]byte(rendered), &theirs))
	require.Len(t, theirs.Servers, 2)
	assert.Equal(t, "alpha", theirs.Servers[0].Name)
	assert.Equal(t, "beta", theirs.Servers[1].Name)
}

func TestInteropJSONOutput(t *testing.T) {
	v := parseOne(t, interopDoc)
	rendered := stringify(t, v, FormatJSON, 2)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))

	assert.Equal(t, "interop", decoded["title"])
	assert.EqualValues(t, 42, decoded["count"])
	assert.Equal(t, 0.5, decoded["ratio"])
	assert.Equal(t, true, decoded["enabled"])
	assert.Len(t, decoded["tags"], 3)

	server, ok := decoded["server"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 8080, server["port"])
}

func TestInteropJSONCompactOutput(t *testing.T) {
	v := parseOne(t, interopDoc)
	rendered := stringify(t, v, FormatJSON, 0)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	assert.Equal(t, "interop", decoded["title"])
}

func TestInteropYAMLOutput(t *testing.T) {
	v := parseOne(t, interopDoc)
	rendered := stringify(t, v, FormatYAML, 2)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(rendered), &decoded))

	assert.Equal(t, "interop", decoded["title"])
	assert.EqualValues(t, 42, decoded["count"])
	assert.Equal(t, true, decoded["enabled"])

	tags, ok := decoded["tags"].([]interface{})
	require.True(t, ok)
	require.Len(t, tags, 3)
	assert.Equal(t, "x", tags[0])

	server, ok := decoded["server"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "localhost", server["host"])
	limits, ok := server["limits"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 100, limits["max_conns"])
}

func TestInteropJSONStringEscaping(t *testing.T) {
	v := NewTable()
	v.Insert("s", String("quote\" slash\\ tab\t ctrl\x01"))
	rendered := stringify(t, v, FormatJSON, 0)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	assert.Equal(t, "quote\" slash\\ tab\t ctrl\x01", decoded["s"])
}

func TestInteropTOMLStringEscaping(t *testing.T) {
	v := NewTable()
	v.Insert("s", String("quote\" slash\\ tab\t nl\n ctrl\x01"))
	rendered := stringify(t, v, FormatTOML, 0)

	var decoded map[string]string
	require.NoError(t, burntsushi.Unmarshal([]byte(rendered), &decoded))
	assert.Equal(t, "quote\" slash\\ tab\t nl\n ctrl\x01", decoded["s"])
}
