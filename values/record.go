package values

import (
	"iter"
	"strings"
)

// Record is an insertion-ordered mapping from field names to values. A nil
// *Record behaves as an empty record for every read operation.
type Record struct {
	keys   []string
	fields map[string]Value
}

func NewRecord() *Record {
	return &Record{fields: make(map[string]Value)}
}

// RecordOf builds a record from alternating name/value pairs. Values are
// converted with Of.
//
//	values.RecordOf("InstanceID", 0, "Channel", "Master")
func RecordOf(pairs ...any) *Record {
	r := NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			continue
		}
		r.Set(name, Of(pairs[i+1]))
	}
	return r
}

// Set stores v under name. A new name is appended at the end of the order,
// an existing one keeps its position.
func (r *Record) Set(name string, v Value) *Record {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	if _, ok := r.fields[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.fields[name] = v
	return r
}

func (r *Record) Get(name string) (Value, bool) {
	if r == nil {
		return Null(), false
	}
	v, ok := r.fields[name]
	return v, ok
}

// Value returns the field value or Null when the field is absent.
func (r *Record) Value(name string) Value {
	v, _ := r.Get(name)
	return v
}

func (r *Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

func (r *Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if r == nil {
			return
		}
		for _, k := range r.keys {
			if !yield(k, r.fields[k]) {
				return
			}
		}
	}
}

// Map returns the record as nested native Go maps.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, r.Len())
	for k, v := range r.All() {
		if sub, ok := v.AsRecord(); ok {
			m[k] = sub.Map()
			continue
		}
		m[k] = v.Interface()
	}
	return m
}

func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	for k, v := range r.All() {
		ov, ok := o.Get(k)
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for k, v := range r.All() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(v.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
