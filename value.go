package toml

import "math"

// A Value is a node in a TOML document tree. The zero Value is Empty: it
// carries no content and serves as the placeholder slot created by
// autovivification. Insert and Append coerce an Empty (or any other) Value
// into a table or array respectively, which is what lets a freshly created
// placeholder become either container on first write.
//
// A container exclusively owns its children. Clone deep-copies, Take moves.
type Value struct {
	t   Type
	b   bool
	i   int64
	f   float64
	s   string
	dt  DateTime
	arr []*Value
	tab *table
}

// table is the payload of a TableType Value: an insertion-ordered map.
// The inline and explicit flags are parser bookkeeping: inline tables are
// frozen once their closing brace is read, and a table already defined by a
// [header] may not be defined again.
type table struct {
	keys     []string
	index    map[string]*Value
	inline   bool
	explicit bool
}

func newTable() *table {
	return &table{index: make(map[string]*Value)}
}

func (t *table) get(key string) (*Value, bool) {
	v, ok := t.index[key]
	return v, ok
}

func (t *table) set(key string, v *Value) {
	if _, ok := t.index[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.index[key] = v
}

// Bool returns a Value holding a boolean.
func Bool(b bool) *Value { return &Value{t: BoolType, b: b} }

// Int returns a Value holding a 64-bit signed integer.
func Int(i int64) *Value { return &Value{t: IntType, i: i} }

// Float returns a Value holding a 64-bit float.
func Float(f float64) *Value { return &Value{t: FloatType, f: f} }

// String returns a Value holding a string.
func String(s string) *Value { return &Value{t: StringType, s: s} }

// Date returns a Value holding a DateTime.
func Date(dt DateTime) *Value { return &Value{t: DateTimeType, dt: dt} }

// NewArray returns a Value holding an empty array.
func NewArray() *Value { return &Value{t: ArrayType} }

// NewTable returns a Value holding an empty table.
func NewTable() *Value { return &Value{t: TableType, tab: newTable()} }

// Type returns the variant currently held by v.
func (v *Value) Type() Type { return v.t }

// IsEmpty reports whether v is an untouched placeholder.
func (v *Value) IsEmpty() bool { return v.t == EmptyType }

// AsBool returns the boolean held by v, or a TypeError.
func (v *Value) AsBool() (bool, error) {
	if v.t != BoolType {
		return false, &TypeError{Want: BoolType, Got: v.t}
	}
	return v.b, nil
}

// AsInt returns the value held by v as an int64. Integers are returned
// directly, floats are truncated, and booleans convert to 0 or 1; any
// other variant is a TypeError.
func (v *Value) AsInt() (int64, error) {
	switch v.t {
	case IntType:
		return v.i, nil
	case FloatType:
		return int64(v.f), nil
	case BoolType:
		if v.b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, &TypeError{Want: IntType, Got: v.t}
}

// AsFloat returns the value held by v as a float64. Floats are returned
// directly, integers are widened, and booleans convert to 0 or 1; any
// other variant is a TypeError.
func (v *Value) AsFloat() (float64, error) {
	switch v.t {
	case FloatType:
		return v.f, nil
	case IntType:
		return float64(v.i), nil
	case BoolType:
		if v.b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, &TypeError{Want: FloatType, Got: v.t}
}

// AsString returns the string held by v, or a TypeError.
func (v *Value) AsString() (string, error) {
	if v.t != StringType {
		return "", &TypeError{Want: StringType, Got: v.t}
	}
	return v.s, nil
}

// AsDateTime returns the DateTime held by v, or a TypeError.
func (v *Value) AsDateTime() (DateTime, error) {
	if v.t != DateTimeType {
		return DateTime{}, &TypeError{Want: DateTimeType, Got: v.t}
	}
	return v.dt, nil
}

// AsArray returns the elements held by v, or a TypeError. The returned
// slice is the array's backing storage, not a copy.
func (v *Value) AsArray() ([]*Value, error) {
	if v.t != ArrayType {
		return nil, &TypeError{Want: ArrayType, Got: v.t}
	}
	return v.arr, nil
}

// AsTable returns the key/value mapping held by v, or a TypeError. The
// returned map is the table's backing index, not a copy; Keys gives the
// insertion order.
func (v *Value) AsTable() (map[string]*Value, error) {
	if v.t != TableType {
		return nil, &TypeError{Want: TableType, Got: v.t}
	}
	return v.tab.index, nil
}

// Len returns the number of elements or keys in a container, and 0 for
// any non-container variant.
func (v *Value) Len() int {
	switch v.t {
	case ArrayType:
		return len(v.arr)
	case TableType:
		return len(v.tab.keys)
	}
	return 0
}

// Keys returns a table's keys in insertion order, or nil for any other
// variant. The returned slice must not be modified.
func (v *Value) Keys() []string {
	if v.t != TableType {
		return nil
	}
	return v.tab.keys
}

// At returns the i'th array element. An out-of-range index is a RangeError
// and a non-array receiver is a TypeError.
func (v *Value) At(i int) (*Value, error) {
	if v.t != ArrayType {
		return nil, &TypeError{Want: ArrayType, Got: v.t}
	}
	if i < 0 || i >= len(v.arr) {
		return nil, &RangeError{Msg: "array index out of range"}
	}
	return v.arr[i], nil
}

// Slot returns a writable reference to the i'th array element, growing the
// array with Empty placeholders up to i+1 if needed. A negative index is a
// RangeError. An Empty receiver becomes an array; any other non-array
// receiver is a TypeError.
func (v *Value) Slot(i int) (*Value, error) {
	if i < 0 {
		return nil, &RangeError{Msg: "negative array index"}
	}
	if v.t == EmptyType {
		*v = Value{t: ArrayType}
	}
	if v.t != ArrayType {
		return nil, &TypeError{Want: ArrayType, Got: v.t}
	}
	for len(v.arr) <= i {
		v.arr = append(v.arr, &Value{})
	}
	return v.arr[i], nil
}

// Get returns the value stored under key. A missing key is a KeyError and
// a non-table receiver is a TypeError.
func (v *Value) Get(key string) (*Value, error) {
	if v.t != TableType {
		return nil, &TypeError{Want: TableType, Got: v.t}
	}
	c, ok := v.tab.get(key)
	if !ok {
		return nil, &KeyError{Key: key}
	}
	return c, nil
}

// Entry returns a writable reference to the slot for key, inserting an
// Empty placeholder when the key is absent. An Empty receiver becomes a
// table; any other non-table receiver is a TypeError.
func (v *Value) Entry(key string) (*Value, error) {
	if v.t == EmptyType {
		*v = Value{t: TableType, tab: newTable()}
	}
	if v.t != TableType {
		return nil, &TypeError{Want: TableType, Got: v.t}
	}
	if c, ok := v.tab.get(key); ok {
		return c, nil
	}
	c := &Value{}
	v.tab.set(key, c)
	return c, nil
}

// Insert sets key to val. If v is not already a table its current content
// is discarded and it becomes an empty table first. An existing key is
// overwritten. The tree takes ownership of val.
func (v *Value) Insert(key string, val *Value) {
	if v.t != TableType {
		*v = Value{t: TableType, tab: newTable()}
	}
	v.tab.set(key, val)
}

// Append appends val. If v is not already an array its current content is
// discarded and it becomes an empty array first. The tree takes ownership
// of val.
func (v *Value) Append(val *Value) {
	if v.t != ArrayType {
		*v = Value{t: ArrayType}
	}
	v.arr = append(v.arr, val)
}

// Clone returns a deep copy of v; container children are copied
// transitively.
func (v *Value) Clone() *Value {
	c := &Value{t: v.t, b: v.b, i: v.i, f: v.f, s: v.s, dt: v.dt}
	switch v.t {
	case ArrayType:
		c.arr = make([]*Value, len(v.arr))
		for i, e := range v.arr {
			c.arr[i] = e.Clone()
		}
	case TableType:
		c.tab = newTable()
		c.tab.inline = v.tab.inline
		c.tab.explicit = v.tab.explicit
		for _, k := range v.tab.keys {
			e, _ := v.tab.get(k)
			c.tab.set(k, e.Clone())
		}
	}
	return c
}

// Take moves v's content into a new Value and resets v to Empty.
func (v *Value) Take() *Value {
	moved := &Value{}
	*moved = *v
	*v = Value{}
	return moved
}

// Equal reports structural equality: same variant and same content, with
// key order ignored for tables but element order significant for arrays.
// For the purpose of this comparison NaN equals NaN, so a tree containing
// nan still round-trips as equal.
func (v *Value) Equal(o *Value) bool {
	if v.t != o.t {
		return false
	}
	switch v.t {
	case EmptyType:
		return true
	case BoolType:
		return v.b == o.b
	case IntType:
		return v.i == o.i
	case FloatType:
		if math.IsNaN(v.f) && math.IsNaN(o.f) {
			return true
		}
		return v.f == o.f
	case StringType:
		return v.s == o.s
	case DateTimeType:
		return v.dt.Equal(o.dt)
	case ArrayType:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case TableType:
		if len(v.tab.keys) != len(o.tab.keys) {
			return false
		}
		for _, k := range v.tab.keys {
			oc, ok := o.tab.get(k)
			if !ok {
				return false
			}
			vc, _ := v.tab.get(k)
			if !vc.Equal(oc) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v to a plain Go value: bool, int64, float64, string,
// DateTime, []interface{} for arrays, and map[string]interface{} for
// tables. Empty converts to an empty map. Convenient for comparison
// helpers and for handing a tree to code that does not know about Value.
func (v *Value) Interface() interface{} {
	switch v.t {
	case BoolType:
		return v.b
	case IntType:
		return v.i
	case FloatType:
		return v.f
	case StringType:
		return v.s
	case DateTimeType:
		return v.dt
	case ArrayType:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case TableType:
		out := make(map[string]interface{}, len(v.tab.keys))
		for _, k := range v.tab.keys {
			e, _ := v.tab.get(k)
			out[k] = e.Interface()
		}
		return out
	}
	return map[string]interface{}{}
}
