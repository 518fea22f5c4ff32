// Package coerce converts raw call-site values to declared parameter types
// and validates them.
//
// Coercion never fails. A value that cannot be converted is returned as is;
// Conforms then reports the mismatch so Validate can attach it to the field.
// This lets list items share the scalar coercer without carrying error
// context through it.
package coerce

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pthm/hxprops/lib/paramspec"
)

// Coerce converts value towards t. A nil t leaves value untouched.
func Coerce(value any, t paramspec.Type) any {
	switch t := t.(type) {
	case nil:
		return value
	case paramspec.Primitive:
		return primitive(value, t.Kind)
	case paramspec.Optional:
		if value == nil {
			return nil
		}
		return Coerce(value, t.Elem)
	case paramspec.ListOf:
		return list(value, t.Elem)
	case paramspec.Annotated:
		return Coerce(value, t.Elem)
	default:
		return value
	}
}

func list(value any, elem paramspec.Type) any {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return []any{}
		}
		parts := strings.Split(v, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = Coerce(strings.TrimSpace(p), elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Coerce(item, elem)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Coerce(rv.Index(i).Interface(), elem)
		}
		return out
	}
	return []any{Coerce(value, elem)}
}

func primitive(value any, k paramspec.Kind) any {
	switch k {
	case paramspec.Int:
		return toInt(value)
	case paramspec.Float:
		return toFloat(value)
	case paramspec.Bool:
		return toBool(value)
	case paramspec.String:
		return toString(value)
	case paramspec.Decimal:
		return toDecimal(value)
	default:
		return value
	}
}

func toInt(value any) any {
	switch v := value.(type) {
	case int:
		return v
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return int(reflect.ValueOf(v).Convert(reflect.TypeOf(0)).Int())
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v)
		}
	case float32:
		return toInt(float64(v))
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	case decimal.Decimal:
		if v.IsInteger() {
			return int(v.IntPart())
		}
	}
	return value
}

func toFloat(value any) any {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(v).Convert(reflect.TypeOf(int64(0))).Int())
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	case decimal.Decimal:
		return v.InexactFloat64()
	}
	return value
}

// toBool is closed-world: only the listed truthy forms are true and nothing
// is an error.
func toBool(value any) any {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	case int:
		return v == 1
	case float64:
		return v == 1
	default:
		return false
	}
}

func toString(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	case []any, map[string]any:
		return value
	default:
		return fmt.Sprint(v)
	}
}

func toDecimal(value any) any {
	switch v := value.(type) {
	case decimal.Decimal:
		return v
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return value
}

// Conforms reports whether value already has the shape t describes.
func Conforms(value any, t paramspec.Type) bool {
	switch t := t.(type) {
	case nil:
		return true
	case paramspec.Primitive:
		return isKind(value, t.Kind)
	case paramspec.Optional:
		return value == nil || Conforms(value, t.Elem)
	case paramspec.ListOf:
		items, ok := value.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if !Conforms(item, t.Elem) {
				return false
			}
		}
		return true
	case paramspec.Annotated:
		return Conforms(value, t.Elem)
	default:
		return false
	}
}

func isKind(value any, k paramspec.Kind) bool {
	switch k {
	case paramspec.Int:
		_, ok := value.(int)
		return ok
	case paramspec.Float:
		_, ok := value.(float64)
		return ok
	case paramspec.Bool:
		_, ok := value.(bool)
		return ok
	case paramspec.String:
		_, ok := value.(string)
		return ok
	case paramspec.Decimal:
		_, ok := value.(decimal.Decimal)
		return ok
	default:
		return false
	}
}

// mismatch describes the first part of value that does not conform to t.
func mismatch(value any, t paramspec.Type) string {
	switch t := t.(type) {
	case paramspec.Optional:
		return mismatch(value, t.Elem)
	case paramspec.Annotated:
		return mismatch(value, t.Elem)
	case paramspec.ListOf:
		items, ok := value.([]any)
		if !ok {
			return fmt.Sprintf("cannot convert '%v' to %s", value, t)
		}
		for i, item := range items {
			if !Conforms(item, t.Elem) {
				return fmt.Sprintf("item %d: %s", i+1, mismatch(item, t.Elem))
			}
		}
	}
	return fmt.Sprintf("cannot convert '%v' to %s", value, t)
}
