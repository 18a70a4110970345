package toml

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"
)

// A Marshaler can convert itself to a Value tree. Types implementing it
// take full control of their TOML representation.
type Marshaler interface {
	MarshalTOML() (*Value, error)
}

// Marshal converts a Go value to a Value tree. Types implementing
// Marshaler are asked first; otherwise booleans, integers, floats,
// strings, time.Time, DateTime, maps with string keys, slices, arrays,
// and structs are converted field by field. Struct fields may carry a
// `toml:"name"` tag; "-" skips the field. Map keys are emitted in sorted
// order so output is deterministic.
func Marshal(v interface{}) (*Value, error) {
	return marshalValue(reflect.ValueOf(v))
}

var (
	marshalerType = reflect.TypeOf((*Marshaler)(nil)).Elem()
	timeType      = reflect.TypeOf(time.Time{})
	dateTimeType  = reflect.TypeOf(DateTime{})
	valueType     = reflect.TypeOf(Value{})
)

func marshalValue(rv reflect.Value) (*Value, error) {
	if !rv.IsValid() {
		return nil, &UsageError{API: "Marshal", Msg: "cannot marshal nil"}
	}
	if rv.Type().Implements(marshalerType) {
		return rv.Interface().(Marshaler).MarshalTOML()
	}

	switch rv.Type() {
	case timeType:
		return Date(FromTime(rv.Interface().(time.Time))), nil
	case dateTimeType:
		return Date(rv.Interface().(DateTime)), nil
	case valueType:
		v := rv.Interface().(Value)
		return v.Clone(), nil
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, &UsageError{API: "Marshal", Msg: "cannot marshal nil; TOML has no null"}
		}
		return marshalValue(rv.Elem())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, &RangeError{Msg: fmt.Sprintf("%v overflows a TOML integer", u)}
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		return marshalSequence(rv)
	case reflect.Map:
		return marshalMap(rv)
	case reflect.Struct:
		return marshalStruct(rv)
	}
	return nil, &UsageError{API: "Marshal", Msg: fmt.Sprintf("unsupported type %v", rv.Type())}
}

func marshalSequence(rv reflect.Value) (*Value, error) {
	arr := NewArray()
	for i := 0; i < rv.Len(); i++ {
		e, err := marshalValue(rv.Index(i))
		if err != nil {
			return nil, err
		}
		arr.Append(e)
	}
	return arr, nil
}

func marshalMap(rv reflect.Value) (*Value, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, &UsageError{API: "Marshal", Msg: "map keys must be strings"}
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	tab := NewTable()
	for _, k := range keys {
		e, err := marshalValue(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
		if err != nil {
			return nil, err
		}
		tab.Insert(k, e)
	}
	return tab, nil
}

// fieldName returns the TOML key for a struct field, honoring the
// `toml:"name"` tag; ok is false when the field is skipped.
func fieldName(f reflect.StructField) (string, bool) {
	if f.PkgPath != "" {
		return "", false // unexported
	}
	tag := f.Tag.Get("toml")
	if tag == "-" {
		return "", false
	}
	if i := strings.IndexByte(tag, ','); i >= 0 {
		tag = tag[:i]
	}
	if tag != "" {
		return tag, true
	}
	return f.Name, true
}

func marshalStruct(rv reflect.Value) (*Value, error) {
	tab := NewTable()
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		name, ok := fieldName(t.Field(i))
		if !ok {
			continue
		}
		fv := rv.Field(i)
		if fv.Kind() == reflect.Ptr && fv.IsNil() {
			continue // TOML has no null; absent field
		}
		e, err := marshalValue(fv)
		if err != nil {
			return nil, err
		}
		tab.Insert(name, e)
	}
	return tab, nil
}
