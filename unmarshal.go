package toml

import (
	"fmt"
	"math"
	"reflect"
)

// An Unmarshaler can populate itself from a Value tree. Types implementing
// it take full control of their TOML decoding.
type Unmarshaler interface {
	UnmarshalTOML(*Value) error
}

// Unmarshal copies a Value tree into out, which must be a non-nil pointer.
// Types implementing Unmarshaler are asked first; otherwise scalars, maps
// with string keys, slices, arrays, structs (with `toml:"name"` tags),
// time.Time (from an offset date-time), DateTime, *Value, and
// interface{} targets are supported.
func Unmarshal(v *Value, out interface{}) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &UsageError{API: "Unmarshal", Msg: "target must be a non-nil pointer"}
	}
	return unmarshalValue(v, rv.Elem())
}

var unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()

func unmarshalValue(v *Value, rv reflect.Value) error {
	if rv.CanAddr() && rv.Addr().Type().Implements(unmarshalerType) {
		return rv.Addr().Interface().(Unmarshaler).UnmarshalTOML(v)
	}

	switch rv.Type() {
	case timeType:
		dt, err := v.AsDateTime()
		if err != nil {
			return err
		}
		t, err := dt.Instant()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(t))
		return nil
	case dateTimeType:
		dt, err := v.AsDateTime()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(dt))
		return nil
	}

	switch rv.Kind() {
	case reflect.Ptr:
		if rv.Type() == reflect.TypeOf((*Value)(nil)) {
			rv.Set(reflect.ValueOf(v.Clone()))
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return unmarshalValue(v, rv.Elem())
	case reflect.Interface:
		if rv.NumMethod() == 0 {
			rv.Set(reflect.ValueOf(v.Interface()))
			return nil
		}
	case reflect.Bool:
		b, err := v.AsBool()
		if err != nil {
			return err
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := v.AsInt()
		if err != nil {
			return err
		}
		if rv.OverflowInt(i) {
			return &RangeError{Msg: fmt.Sprintf("%v overflows %v", i, rv.Type())}
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := v.AsInt()
		if err != nil {
			return err
		}
		if i < 0 || rv.OverflowUint(uint64(i)) {
			return &RangeError{Msg: fmt.Sprintf("%v overflows %v", i, rv.Type())}
		}
		rv.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := v.AsFloat()
		if err != nil {
			return err
		}
		if rv.Kind() == reflect.Float32 && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return &RangeError{Msg: fmt.Sprintf("%v overflows float32", f)}
		}
		rv.SetFloat(f)
		return nil
	case reflect.String:
		s, err := v.AsString()
		if err != nil {
			return err
		}
		rv.SetString(s)
		return nil
	case reflect.Slice:
		return unmarshalSlice(v, rv)
	case reflect.Map:
		return unmarshalMap(v, rv)
	case reflect.Struct:
		return unmarshalStruct(v, rv)
	}
	return &UsageError{API: "Unmarshal", Msg: fmt.Sprintf("unsupported target type %v", rv.Type())}
}

func unmarshalSlice(v *Value, rv reflect.Value) error {
	items, err := v.AsArray()
	if err != nil {
		return err
	}
	out := reflect.MakeSlice(rv.Type(), len(items), len(items))
	for i, item := range items {
		if err := unmarshalValue(item, out.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func unmarshalMap(v *Value, rv reflect.Value) error {
	if v.Type() != TableType {
		return &TypeError{Want: TableType, Got: v.Type()}
	}
	if rv.Type().Key().Kind() != reflect.String {
		return &UsageError{API: "Unmarshal", Msg: "map keys must be strings"}
	}
	out := reflect.MakeMapWithSize(rv.Type(), v.Len())
	elemType := rv.Type().Elem()
	for _, k := range v.Keys() {
		c, _ := v.Get(k)
		elem := reflect.New(elemType).Elem()
		if err := unmarshalValue(c, elem); err != nil {
			return err
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()), elem)
	}
	rv.Set(out)
	return nil
}

func unmarshalStruct(v *Value, rv reflect.Value) error {
	if v.Type() != TableType {
		return &TypeError{Want: TableType, Got: v.Type()}
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		name, ok := fieldName(t.Field(i))
		if !ok {
			continue
		}
		c, err := v.Get(name)
		if err != nil {
			continue // absent keys leave the field at its zero value
		}
		if err := unmarshalValue(c, rv.Field(i)); err != nil {
			return err
		}
	}
	return nil
}
