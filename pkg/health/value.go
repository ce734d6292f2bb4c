package health

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Value is an optional measurement. The zero Value is absent, which means
// "unmeasured", never zero.
type Value struct {
	v  float64
	ok bool
}

// Some returns a present Value. NaN and infinities are treated as absent.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// None returns an absent Value.
func None() Value { return Value{} }

// FromPtr converts a nil-able pointer into a Value.
func FromPtr(p *float64) Value {
	if p == nil {
		return Value{}
	}
	return Some(*p)
}

// Get returns the value and whether it is present.
func (x Value) Get() (float64, bool) { return x.v, x.ok }

// OK reports whether the value is present.
func (x Value) OK() bool { return x.ok }

// Or returns the value, or def when absent.
func (x Value) Or(def float64) float64 {
	if !x.ok {
		return def
	}
	return x.v
}

// Ptr returns a pointer copy of the value, or nil when absent.
func (x Value) Ptr() *float64 {
	if !x.ok {
		return nil
	}
	v := x.v
	return &v
}

// Map applies fn to a present value.
func (x Value) Map(fn func(float64) float64) Value {
	if !x.ok {
		return x
	}
	return Some(fn(x.v))
}

// Clamp bounds a present value to [lo, hi].
func (x Value) Clamp(lo, hi float64) Value {
	return x.Map(func(v float64) float64 { return math.Max(lo, math.Min(hi, v)) })
}

func (x Value) String() string {
	if !x.ok {
		return "absent"
	}
	return strconv.FormatFloat(x.v, 'f', -1, 64)
}

// MarshalJSON encodes an absent value as null.
func (x Value) MarshalJSON() ([]byte, error) {
	if !x.ok {
		return []byte("null"), nil
	}
	return json.Marshal(x.v)
}

// UnmarshalJSON decodes null as absent.
func (x *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*x = Value{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*x = Some(v)
	return nil
}

// EncodeMsgpack encodes an absent value as nil.
func (x Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !x.ok {
		return enc.EncodeNil()
	}
	return enc.EncodeFloat64(x.v)
}

// DecodeMsgpack decodes nil as absent.
func (x *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if code == msgpcode.Nil {
		*x = Value{}
		return dec.DecodeNil()
	}
	v, err := dec.DecodeFloat64()
	if err != nil {
		return err
	}
	*x = Some(v)
	return nil
}
