// Package values defines the tagged value model used for action arguments,
// SOAP response bodies and action results.
package values

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindReal
	KindBoolean
	KindTime
	KindRecord
)

var kindNames = [...]string{
	"null",
	"text",
	"integer",
	"real",
	"boolean",
	"time",
	"record",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Value is an immutable tagged value. The zero Value is Null.
type Value struct {
	kind    Kind
	text    string
	integer int64
	real    float64
	boolean bool
	time    time.Time
	record  *Record
}

func Null() Value { return Value{} }
func Text(s string) Value { return Value{kind: KindText, text: s} }
func Integer(i int64) Value { return Value{kind: KindInteger, integer: i} }
func Real(f float64) Value { return Value{kind: KindReal, real: f} }
func Boolean(b bool) Value { return Value{kind: KindBoolean, boolean: b} }
func Time(t time.Time) Value { return Value{kind: KindTime, time: t} }
func Nested(r *Record) Value { return Value{kind: KindRecord, record: r} }

// Of converts a native Go value into a Value. Unsupported types are rendered
// as text with fmt.Sprint.
func Of(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case Value:
		return val
	case string:
		return Text(val)
	case bool:
		return Boolean(val)
	case int:
		return Integer(int64(val))
	case int8:
		return Integer(int64(val))
	case int16:
		return Integer(int64(val))
	case int32:
		return Integer(int64(val))
	case int64:
		return Integer(val)
	case uint8:
		return Integer(int64(val))
	case uint16:
		return Integer(int64(val))
	case uint32:
		return Integer(int64(val))
	case uint:
		if uint64(val) > math.MaxInt64 {
			return Real(float64(val))
		}
		return Integer(int64(val))
	case uint64:
		if val > math.MaxInt64 {
			return Real(float64(val))
		}
		return Integer(int64(val))
	case float32:
		return Real(float64(val))
	case float64:
		return Real(val)
	case time.Time:
		return Time(val)
	case *Record:
		return Nested(val)
	default:
		return Text(fmt.Sprint(val))
	}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

func (v Value) AsInteger() (int64, bool) {
	return v.integer, v.kind == KindInteger
}

func (v Value) AsReal() (float64, bool) {
	return v.real, v.kind == KindReal
}

func (v Value) AsBoolean() (bool, bool) {
	return v.boolean, v.kind == KindBoolean
}

func (v Value) AsTime() (time.Time, bool) {
	return v.time, v.kind == KindTime
}

func (v Value) AsRecord() (*Record, bool) {
	return v.record, v.kind == KindRecord
}

// Number returns the numeric magnitude of Integer and Real values.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.integer), true
	case KindReal:
		return v.real, true
	default:
		return 0, false
	}
}

// Interface returns the native Go representation of the value.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return v.integer
	case KindReal:
		return v.real
	case KindBoolean:
		return v.boolean
	case KindTime:
		return v.time
	case KindRecord:
		return v.record
	default:
		return nil
	}
}

// String renders the value the way it is written on the wire. Booleans use
// the UPnP "1"/"0" encoding.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindReal:
		return strconv.FormatFloat(v.real, 'f', -1, 64)
	case KindBoolean:
		if v.boolean {
			return "1"
		}
		return "0"
	case KindTime:
		return v.time.Format(time.RFC3339)
	case KindRecord:
		return v.record.String()
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == o.text
	case KindInteger:
		return v.integer == o.integer
	case KindReal:
		return v.real == o.real
	case KindBoolean:
		return v.boolean == o.boolean
	case KindTime:
		return v.time.Equal(o.time)
	case KindRecord:
		return v.record.Equal(o.record)
	}
	return false
}
