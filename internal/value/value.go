package value

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// #region constructors
// Null returns the null value.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps f.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Object builds an object value. The map is copied.
func Object(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindObject, fields: cp}
}

// List builds an object keyed by decimal index and marks it for list rendering.
func List(items ...Value) Value {
	fields := make(map[string]Value, len(items))
	for i, it := range items {
		fields[strconv.Itoa(i)] = it
	}
	return Value{kind: KindObject, fields: fields, list: true}
}

// #endregion constructors

// #region accessors
// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric payload.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

// IsList reports whether v was built from a sequence.
func (v Value) IsList() bool { return v.kind == KindObject && v.list }

// Len returns the number of fields of an object, 0 otherwise.
func (v Value) Len() int { return len(v.fields) }

// Get looks up a field of an object.
func (v Value) Get(key string) (Value, bool) {
	f, ok := v.fields[key]
	return f, ok
}

// Keys returns the object's field names in canonical order: numeric order for
// lists, lexical order otherwise.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	if v.list {
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
		return keys
	}
	sort.Strings(keys)
	return keys
}

// Items returns the elements of a list value in index order.
func (v Value) Items() []Value {
	if !v.IsList() {
		return nil
	}
	keys := v.Keys()
	items := make([]Value, len(keys))
	for i, k := range keys {
		items[i] = v.fields[k]
	}
	return items
}

// #endregion accessors

// #region equality
// Equal reports deep equality. NaN equals NaN so that every value equals
// itself; the list flag is ignored.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num || (math.IsNaN(a.num) && math.IsNaN(b.num))
	case KindBool:
		return a.flag == b.flag
	case KindObject:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for k, av := range a.fields {
			bv, ok := b.fields[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// EqualMaps reports deep equality of two argument maps.
func EqualMaps(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

// #endregion equality

// #region conversion
// FromAny converts decoded JSON/YAML data into a Value. Unknown types are
// stringified with fmt.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int8:
		return Number(float64(t))
	case int16:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint:
		return Number(float64(t))
	case uint8:
		return Number(float64(t))
	case uint16:
		return Number(float64(t))
	case uint32:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return Number(f)
		}
		return String(t.String())
	case map[string]any:
		return Value{kind: KindObject, fields: FromMap(t)}
	case map[any]any:
		fields := make(map[string]Value, len(t))
		for k, v := range t {
			fields[fmt.Sprint(k)] = FromAny(v)
		}
		return Value{kind: KindObject, fields: fields}
	case map[string]Value:
		return Object(t)
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = FromAny(it)
		}
		return List(items...)
	case []Value:
		return List(t...)
	default:
		return String(fmt.Sprint(t))
	}
}

// FromMap converts a decoded argument map.
func FromMap(m map[string]any) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = FromAny(v)
	}
	return out
}

// ToAny converts v back into plain Go data: nil, string, float64, bool,
// map[string]any or []any.
func (v Value) ToAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindObject:
		if v.list {
			items := v.Items()
			out := make([]any, len(items))
			for i, it := range items {
				out[i] = it.ToAny()
			}
			return out
		}
		out := make(map[string]any, len(v.fields))
		for k, f := range v.fields {
			out[k] = f.ToAny()
		}
		return out
	default:
		return nil
	}
}

// ToMap converts an argument map back into plain Go data.
func ToMap(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.ToAny()
	}
	return out
}

// #endregion conversion

// #region json
// MarshalJSON encodes v as plain JSON. Non-finite numbers are rejected by
// encoding/json.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToAny())
}

// UnmarshalJSON decodes any JSON document into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}

// #endregion json
