package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// String returns the kind name
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a string, number or boolean attribute value.
// The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// StringValue creates a string Value
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue creates a numeric Value
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// IntValue creates a numeric Value from an integer
func IntValue(n int) Value {
	return Value{kind: KindNumber, num: float64(n)}
}

// BoolValue creates a boolean Value
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// ValueOf converts a decoded JSON/BSON/YAML scalar into a Value.
// Unsupported types yield null.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	case float64:
		return NumberValue(x)
	case float32:
		return NumberValue(float64(x))
	case int:
		return IntValue(x)
	case int32:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case uint:
		return NumberValue(float64(x))
	case uint32:
		return NumberValue(float64(x))
	case uint64:
		return NumberValue(float64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return NumberValue(f)
		}
		return StringValue(x.String())
	default:
		return Value{}
	}
}

// Kind returns the variant tag
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the value is null
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Interface returns the underlying Go scalar (string, float64, bool or nil)
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// AsString returns the textual form of any non-null value
func (v Value) AsString() (string, bool) {
	if v.kind == KindNull {
		return "", false
	}
	return v.String(), true
}

// AsFloat coerces numbers and numeric strings
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsInt coerces integral numbers and integer strings
func (v Value) AsInt() (int, bool) {
	switch v.kind {
	case KindNumber:
		if v.num != math.Trunc(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return int(v.num), true
	case KindString:
		n, err := strconv.Atoi(strings.TrimSpace(v.str))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// AsBool coerces booleans and "true"/"false" strings
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindString:
		b, err := strconv.ParseBool(strings.TrimSpace(v.str))
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

// String renders the value for messages and logs
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// MarshalJSON encodes the value as its natural JSON scalar
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON scalar
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := ValueOf(raw)
	if decoded.IsNull() && raw != nil {
		return fmt.Errorf("unsupported attribute value %s", string(data))
	}
	*v = decoded
	return nil
}

// Attributes is a free-form bag of typed values keyed by attribute name
type Attributes map[string]Value

// AttributesOf converts a decoded map into Attributes
func AttributesOf(m map[string]any) Attributes {
	if m == nil {
		return nil
	}
	attrs := make(Attributes, len(m))
	for k, v := range m {
		attrs[k] = ValueOf(v)
	}
	return attrs
}

// Clone returns a shallow copy
func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Get returns the value for key, reporting whether it is present and non-null
func (a Attributes) Get(key string) (Value, bool) {
	v, ok := a[key]
	if !ok || v.IsNull() {
		return Value{}, false
	}
	return v, true
}

// GetString returns key as a string
func (a Attributes) GetString(key string) (string, bool) {
	v, ok := a.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// GetFloat returns key coerced to a float
func (a Attributes) GetFloat(key string) (float64, bool) {
	v, ok := a.Get(key)
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

// GetInt returns key coerced to an integer
func (a Attributes) GetInt(key string) (int, bool) {
	v, ok := a.Get(key)
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

// GetBool returns key coerced to a boolean
func (a Attributes) GetBool(key string) (bool, bool) {
	v, ok := a.Get(key)
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// ToMap converts the attributes into plain Go scalars
func (a Attributes) ToMap() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v.Interface()
	}
	return out
}
