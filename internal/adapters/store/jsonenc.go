package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/okian/minintup/internal/domain/record"
)

// appendObject encodes fields as one JSON object in a single pass. Field
// names are written as given, so names are never interpreted as paths.
func appendObject(dst []byte, fields []record.Field) ([]byte, error) {
	dst = append(dst, '{')
	for i, f := range fields {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = gjson.AppendJSONString(dst, f.Name)
		dst = append(dst, ':')
		var err error
		if dst, err = appendValue(dst, f.Value); err != nil {
			return dst, fmt.Errorf("encode field %s: %w", f.Name, err)
		}
	}
	return append(dst, '}'), nil
}

// appendFloat writes a finite float as a JSON number. NaN and infinities
// have no JSON form and are written as null, which reads back as missing.
func appendFloat(dst []byte, v float64, bits int) []byte {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return append(dst, "null"...)
	}
	return strconv.AppendFloat(dst, v, 'g', -1, bits)
}

func appendBool(dst []byte, v bool) []byte {
	return strconv.AppendBool(dst, v)
}

func appendSlice[T any](dst []byte, vs []T, elem func([]byte, T) []byte) []byte {
	dst = append(dst, '[')
	for i, v := range vs {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = elem(dst, v)
	}
	return append(dst, ']')
}

func appendInt[T int | int8 | int16 | int32 | int64](dst []byte, v T) []byte {
	return strconv.AppendInt(dst, int64(v), 10)
}

func appendUint[T uint16 | uint32 | uint64](dst []byte, v T) []byte {
	return strconv.AppendUint(dst, uint64(v), 10)
}

func appendValue(dst []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return append(dst, "null"...), nil
	case bool:
		return appendBool(dst, x), nil
	case string:
		return gjson.AppendJSONString(dst, x), nil
	case int:
		return appendInt(dst, x), nil
	case int8:
		return appendInt(dst, x), nil
	case int16:
		return appendInt(dst, x), nil
	case int32:
		return appendInt(dst, x), nil
	case int64:
		return appendInt(dst, x), nil
	case uint16:
		return appendUint(dst, x), nil
	case uint32:
		return appendUint(dst, x), nil
	case uint64:
		return appendUint(dst, x), nil
	case float32:
		return appendFloat(dst, float64(x), 32), nil
	case float64:
		return appendFloat(dst, x, 64), nil
	case []bool:
		return appendSlice(dst, x, appendBool), nil
	case []int8:
		return appendSlice(dst, x, appendInt[int8]), nil
	case []int32:
		return appendSlice(dst, x, appendInt[int32]), nil
	case []int64:
		return appendSlice(dst, x, appendInt[int64]), nil
	case []int:
		return appendSlice(dst, x, appendInt[int]), nil
	case []uint32:
		return appendSlice(dst, x, appendUint[uint32]), nil
	case []uint64:
		return appendSlice(dst, x, appendUint[uint64]), nil
	case []float32:
		return appendSlice(dst, x, func(b []byte, f float32) []byte { return appendFloat(b, float64(f), 32) }), nil
	case []float64:
		return appendSlice(dst, x, func(b []byte, f float64) []byte { return appendFloat(b, f, 64) }), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return dst, err
		}
		return append(dst, raw...), nil
	}
}
