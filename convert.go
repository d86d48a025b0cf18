package gridify

import (
	"bytes"
	"cmp"
	"encoding"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

var (
	durationType        = reflect.TypeOf(time.Duration(0))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// convertValue parses raw into a value of typ. Pointer types are unwrapped:
// the result is always of the underlying type.
func convertValue(raw string, typ reflect.Type) (any, error) {
	if typ == nil {
		return raw, nil
	}
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() == reflect.String {
		return reflect.ValueOf(raw).Convert(typ).Interface(), nil
	}

	text := strings.TrimSpace(raw)
	switch typ {
	case timeType:
		t, err := cast.ToTimeE(text)
		return t, errors.Wrapf(err, "cannot convert %q to time", text)
	case durationType:
		d, err := cast.ToDurationE(text)
		return d, errors.Wrapf(err, "cannot convert %q to duration", text)
	case uuidType:
		u, err := uuid.Parse(text)
		return u, errors.Wrapf(err, "cannot convert %q to uuid", text)
	case decimalType:
		d, err := decimal.NewFromString(text)
		return d, errors.Wrapf(err, "cannot convert %q to decimal", text)
	}

	if reflect.PointerTo(typ).Implements(textUnmarshalerType) {
		v := reflect.New(typ)
		if err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return nil, errors.Wrapf(err, "cannot convert %q to %s", text, typ)
		}
		return v.Elem().Interface(), nil
	}

	v := reflect.New(typ).Elem()
	switch typ.Kind() {
	case reflect.Bool:
		b, err := cast.ToBoolE(text)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot convert %q to %s", text, typ)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, typ.Bits())
		if err != nil {
			return nil, errors.Wrapf(err, "cannot convert %q to %s", text, typ)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(text, 10, typ.Bits())
		if err != nil {
			return nil, errors.Wrapf(err, "cannot convert %q to %s", text, typ)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, typ.Bits())
		if err != nil {
			return nil, errors.Wrapf(err, "cannot convert %q to %s", text, typ)
		}
		v.SetFloat(f)
	case reflect.Interface:
		return raw, nil
	default:
		return nil, errors.Wrapf(errUnsupportedValue, "%s", typ)
	}
	return v.Interface(), nil
}

func isUUIDType(typ reflect.Type) bool {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ == uuidType
}

// compareValues orders two non-nil values. The second result is false when
// the values have no common ordering.
func compareValues(a, b any) (int, bool) {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), true
		}
	case decimal.Decimal:
		switch y := b.(type) {
		case decimal.Decimal:
			return x.Cmp(y), true
		case string:
			if d, err := decimal.NewFromString(y); err == nil {
				return x.Cmp(d), true
			}
			return 0, false
		}
	case uuid.UUID:
		switch y := b.(type) {
		case uuid.UUID:
			return bytes.Compare(x[:], y[:]), true
		case string:
			if u, err := uuid.Parse(y); err == nil {
				return bytes.Compare(x[:], u[:]), true
			}
			return 0, false
		}
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isInt(av) && isInt(bv):
		return cmp.Compare(av.Int(), bv.Int()), true
	case isUint(av) && isUint(bv):
		return cmp.Compare(av.Uint(), bv.Uint()), true
	case isNumber(av) && isNumber(bv):
		return cmp.Compare(toFloat(av), toFloat(bv)), true
	case av.Kind() == reflect.String && bv.Kind() == reflect.String:
		return strings.Compare(av.String(), bv.String()), true
	case av.Kind() == reflect.Bool && bv.Kind() == reflect.Bool:
		return cmp.Compare(boolRank(av.Bool()), boolRank(bv.Bool())), true
	case bv.Kind() == reflect.String && av.Kind() != reflect.String:
		// a custom convertor may hand back text for a typed field
		converted, err := convertValue(bv.String(), av.Type())
		if err != nil {
			return 0, false
		}
		return compareValues(a, converted)
	}
	return 0, false
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNumber(v reflect.Value) bool {
	return isInt(v) || isUint(v) || v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v):
		return float64(v.Int())
	case isUint(v):
		return float64(v.Uint())
	}
	return v.Float()
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
