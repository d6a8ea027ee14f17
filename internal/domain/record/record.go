// Package record defines the in-flight data unit that flows between pipeline
// steps: a heterogeneous field map modeled as a tagged sum type so the
// engine never has to guess a field's shape at runtime.
package record

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a tagged union over the JSON value space (null, bool, number,
// string, array, object). It is the atomic unit stored in a Record's field
// map; strategies and loaders pattern-match on Kind rather than asserting
// concrete Go types.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	arr    []Value
	obj    map[string]Value
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64; pipeline records never distinguish int/float at
// the wire level, mirroring JSON's own number type.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps an ordered sequence of values.
func Array(vs []Value) Value { return Value{kind: KindArray, arr: vs} }

// Object wraps a nested field map.
func Object(m map[string]Value) Value { return Value{kind: KindObject, obj: m} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload and whether v is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the numeric payload and whether v is a number.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string payload and whether v is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsArray returns the array payload and whether v is an array.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsObject returns the object payload and whether v is an object.
func (v Value) AsObject() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// String renders a human-readable form, primarily for logging samples.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindNumber:
		return fmt.Sprintf("%g", v.n)
	case KindString:
		return v.s
	case KindArray:
		return fmt.Sprintf("array[%d]", len(v.arr))
	case KindObject:
		return fmt.Sprintf("object[%d]", len(v.obj))
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.n)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		return json.Marshal(v.arr)
	case KindObject:
		return json.Marshal(v.obj)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler, inferring the Kind from the
// decoded Go type the way encoding/json's interface{} decoding does.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// FromAny converts a decoded interface{} (as produced by encoding/json) into
// a Value tree.
func FromAny(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case string:
		return String(t)
	case []interface{}:
		vs := make([]Value, len(t))
		for i, item := range t {
			vs[i] = FromAny(item)
		}
		return Array(vs)
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			m[k] = FromAny(item)
		}
		return Object(m)
	default:
		return Null()
	}
}

// ToAny unwraps a Value back into plain Go interface{} form, useful when
// handing a record off to an external executor that expects raw JSON shapes.
func (v Value) ToAny() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, item := range v.obj {
			out[k] = item.ToAny()
		}
		return out
	default:
		return nil
	}
}

// Record is the in-flight datum passed between steps: a field map
// produced by EXTRACT or a seed, mutated by TRANSFORM/ENRICH, and consumed by
// LOAD/EXPORT/FEED/SINK.
type Record map[string]Value

// Clone returns a shallow defensive copy of the record's top-level map;
// records flow "by value" between steps the way the orchestrator hands
// slices of them to successors.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the field value and whether the field is present.
func (r Record) Get(field string) (Value, bool) {
	v, ok := r[field]
	return v, ok
}

// Set returns a new record with field set to value, leaving r untouched.
func (r Record) Set(field string, value Value) Record {
	out := r.Clone()
	out[field] = value
	return out
}

// Merge returns a new record with patch's fields shallow-merged on top of r,
// the shape used by RecordError retry (`patch` shallow-merges into
// `payload`).
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// BranchOutput is the result of a ROUTE step: a mapping from branch name to
// the ordered sequence of records routed into it. Successors whose edge
// carries a matching branch label consume only that sequence.
type BranchOutput map[string][]Record

// Total returns the number of records across all branches, used to update
// counters.routed.
func (b BranchOutput) Total() int {
	total := 0
	for _, records := range b {
		total += len(records)
	}
	return total
}

// Flatten concatenates all branch sequences in a stable (sorted) branch-name
// order; used when an edge into a successor does not specify a branch.
func (b BranchOutput) Flatten() []Record {
	var out []Record
	for _, name := range sortedBranchNames(b) {
		out = append(out, b[name]...)
	}
	return out
}

func sortedBranchNames(b BranchOutput) []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	// Insertion sort is fine: branch counts are small (user-authored ROUTE
	// configs), and avoids importing sort for one call site's worth of use.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}
