package models

import (
	"fmt"
	"strconv"
)

// Attributes is the free-form attribute bag carried by positions and
// events. Values arrive from JSON, so they are numbers, strings,
// booleans or nil. All lookups use a first-match-wins policy across
// the given key aliases.
type Attributes map[string]interface{}

// MergeAttributes flattens several bags into one. Later bags win on
// key collisions, matching how the translation ingress layers the
// record, position and raw attribute maps.
func MergeAttributes(bags ...Attributes) Attributes {
	merged := make(Attributes)
	for _, bag := range bags {
		for k, v := range bag {
			merged[k] = v
		}
	}
	return merged
}

// Raw returns the first present, non-nil value among the keys.
func (a Attributes) Raw(keys ...string) (interface{}, bool) {
	for _, key := range keys {
		if v, ok := a[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Float returns the first value among the keys that parses as a number.
func (a Attributes) Float(keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := a[key]
		if !ok || v == nil {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// FloatOr is Float with a default.
func (a Attributes) FloatOr(def float64, keys ...string) float64 {
	if f, ok := a.Float(keys...); ok {
		return f
	}
	return def
}

// String returns the first present, non-nil value among the keys,
// rendered as a string.
func (a Attributes) String(keys ...string) (string, bool) {
	if v, ok := a.Raw(keys...); ok {
		return Stringify(v), true
	}
	return "", false
}

// StringOr is String with a default.
func (a Attributes) StringOr(def string, keys ...string) string {
	if s, ok := a.String(keys...); ok {
		return s
	}
	return def
}

// FirstTruthy returns the first value among the keys that is truthy:
// present, non-nil, not false, not zero and not the empty string.
// Zero values fall through to the next alias, which is how the
// classification rules chain their fallbacks.
func (a Attributes) FirstTruthy(keys ...string) (interface{}, bool) {
	for _, key := range keys {
		if v, ok := a[key]; ok && Truthy(v) {
			return v, true
		}
	}
	return nil, false
}

// Truthy reports whether a JSON value counts as set: nil, false,
// numeric zero and "" do not.
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
		return true
	}
}

// NumericBool coerces a value to a number and reports whether it is
// non-zero. Booleans count as 1/0; unparsable values are false.
func NumericBool(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	f, ok := toFloat(v)
	return ok && f != 0
}

// Stringify renders a JSON value as a plain string. Numbers print
// without a trailing fraction when they are whole.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
