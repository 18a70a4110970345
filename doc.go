// Package toml parses TOML documents into a typed value tree and
// serializes that tree back to TOML, or alternatively to JSON or YAML.
//
// The tree is built from Value nodes: a discriminated union over booleans,
// 64-bit integers, 64-bit floats, strings, date/time values, ordered arrays,
// and insertion-ordered tables. Parse produces a tree, Stringify renders one:
//
//	v, err := toml.Parse(`title = "example"`)
//	...
//	out, err := toml.Stringify(v, toml.FormatJSON, 2)
//
// Parsing always consumes the entire document; any malformed token or
// conflicting table definition aborts the parse with a positioned error.
// The library is fully synchronous and a Value tree carries no internal
// locking; concurrent mutation requires external synchronization.
package toml
