// Package value provides the common dynamically typed value tree used by the
// configuration layer. File providers decode into a Value, the environment
// provider overlays onto it, and sections of the merged tree are bound to
// typed structs.
package value

import (
	"fmt"
	"sort"
)

// Kind enumerates the value variants.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is an immutable-by-convention scalar or collection. The zero Value
// is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps a slice of values.
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

// Object wraps a map of values. The map is taken by reference.
func Object(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindObject, obj: m}
}

// FromAny converts a decoded JSON/YAML/TOML tree into a Value.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint64:
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = FromAny(e)
		}
		return Array(arr...)
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			obj[k] = FromAny(e)
		}
		return Object(obj)
	case map[any]any:
		// yaml.v2-style maps; keys are stringified.
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			obj[fmt.Sprint(k)] = FromAny(e)
		}
		return Object(obj)
	default:
		return String(fmt.Sprint(t))
	}
}

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload. Floats with integral values convert.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == float64(int64(v.f)) {
			return int64(v.f), true
		}
	}
	return 0, false
}

// AsFloat returns the float payload. Ints widen.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Get returns the member value for an object key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Null(), false
	}
	e, ok := v.obj[key]
	return e, ok
}

// Index returns the i-th element of an array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Null(), false
	}
	return v.arr[i], true
}

// Len returns the element count for arrays and objects, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	}
	return 0
}

// Keys returns the sorted object keys.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interface converts v back into a plain Go tree suitable for re-encoding.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Interface()
		}
		return out
	}
	return nil
}

// Merge deep-merges overlay onto v and returns the result. Objects merge
// recursively; any other kind in the overlay replaces the base wholesale.
func (v Value) Merge(overlay Value) Value {
	if v.kind != KindObject || overlay.kind != KindObject {
		if overlay.IsNull() {
			return v
		}
		return overlay
	}
	merged := make(map[string]Value, len(v.obj)+len(overlay.obj))
	for k, e := range v.obj {
		merged[k] = e
	}
	for k, e := range overlay.obj {
		if base, ok := merged[k]; ok {
			merged[k] = base.Merge(e)
		} else {
			merged[k] = e
		}
	}
	return Object(merged)
}

// GetPath descends the object tree along path.
func (v Value) GetPath(path Path) (Value, bool) {
	cur := v
	for _, seg := range path.Segments() {
		var ok bool
		switch {
		case seg.IsIndex:
			cur, ok = cur.Index(seg.Index)
		default:
			cur, ok = cur.Get(seg.Key)
		}
		if !ok {
			return Null(), false
		}
	}
	return cur, true
}

// SetPath returns a copy of v with the leaf at path replaced, creating
// intermediate objects as needed. Index segments cannot be created.
func (v Value) SetPath(path Path, leaf Value) Value {
	segs := path.Segments()
	if len(segs) == 0 {
		return leaf
	}
	seg := segs[0]
	if seg.IsIndex {
		if v.kind == KindArray && seg.Index >= 0 && seg.Index < len(v.arr) {
			arr := make([]Value, len(v.arr))
			copy(arr, v.arr)
			arr[seg.Index] = arr[seg.Index].SetPath(Path{segments: segs[1:]}, leaf)
			return Array(arr...)
		}
		return v
	}
	obj := map[string]Value{}
	if v.kind == KindObject {
		for k, e := range v.obj {
			obj[k] = e
		}
	}
	child := obj[seg.Key]
	obj[seg.Key] = child.SetPath(Path{segments: segs[1:]}, leaf)
	return Object(obj)
}
