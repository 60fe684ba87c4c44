// Package jsonenc is SharpInspect's structural JSON writer: it walks Go
// values with reflect and writes JSON text directly, without depending on
// encoding/json or any external JSON library (spec.md §4.8 calls for a
// "structural encoder without external dependencies").
//
// Grounded on payload/validator.go's reflection-over-interface{} walking
// style from the teacher repo (there applied to map[string]interface{} for
// schema diffing; here applied to live Go struct values).
//
// Keys are derived from Go struct field names by lowering only the first
// rune (internal/har documents why its own field names are written to
// make this safe for HTTP-archive vocabulary like "Url"/"HttpVersion").
// There are no struct tags to opt out of a field or rename it: every
// exported, non-indexed field of a struct is encoded.
package jsonenc

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"
)

// stringer mirrors fmt.Stringer without importing fmt: enum-like types
// (model.Level and friends) implement String() and are encoded as their
// name rather than their underlying integer (spec.md §4.8: "Enum → string
// name").
type stringer interface {
	String() string
}

// Marshal renders v as a JSON document.
func Marshal(v interface{}) []byte {
	var buf []byte
	buf = appendValue(buf, reflect.ValueOf(v))
	return buf
}

// MarshalString is Marshal as a string, convenient for the HTTP API layer.
func MarshalString(v interface{}) string {
	return string(Marshal(v))
}

var timeType = reflect.TypeOf(time.Time{})

func appendValue(buf []byte, v reflect.Value) []byte {
	if !v.IsValid() {
		return append(buf, "null"...)
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return append(buf, "null"...)
		}
		return appendValue(buf, v.Elem())
	}

	if v.Kind() != reflect.Struct && v.CanInterface() {
		if s, ok := v.Interface().(stringer); ok {
			return appendString(buf, s.String())
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(buf, v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.AppendUint(buf, v.Uint(), 10)
	case reflect.Float32:
		return appendFloat(buf, v.Float(), 32)
	case reflect.Float64:
		return appendFloat(buf, v.Float(), 64)
	case reflect.String:
		return appendString(buf, v.String())
	case reflect.Struct:
		if v.Type() == timeType {
			return appendTime(buf, v.Interface().(time.Time))
		}
		return appendStruct(buf, v)
	case reflect.Map:
		return appendMap(buf, v)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return append(buf, "null"...)
		}
		return appendSequence(buf, v)
	default:
		return append(buf, "null"...)
	}
}

func appendFloat(buf []byte, f float64, bits int) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(buf, "null"...)
	}
	return strconv.AppendFloat(buf, f, 'g', -1, bits)
}

// appendTime renders an ISO-8601 round-trip value, with a trailing Z when
// the value is UTC (spec.md §4.8).
func appendTime(buf []byte, t time.Time) []byte {
	layout := "2006-01-02T15:04:05.999999999Z07:00"
	if t.Location() == time.UTC {
		layout = "2006-01-02T15:04:05.999999999Z"
	}
	return appendString(buf, t.Format(layout))
}

func appendStruct(buf []byte, v reflect.Value) []byte {
	t := v.Type()
	buf = append(buf, '{')
	first := true
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" { // unexported
			continue
		}
		fv := v.Field(i)
		if !first {
			buf = append(buf, ',')
		}
		first = false
		buf = appendString(buf, lowerFirst(field.Name))
		buf = append(buf, ':')
		buf = appendValue(buf, fv)
	}
	buf = append(buf, '}')
	return buf
}

func appendMap(buf []byte, v reflect.Value) []byte {
	if v.IsNil() {
		return append(buf, "null"...)
	}
	keys := v.MapKeys()
	type kv struct {
		key string
		val reflect.Value
	}
	pairs := make([]kv, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, kv{key: stringifyKey(k), val: v.MapIndex(k)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	buf = append(buf, '{')
	for i, p := range pairs {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendString(buf, p.key)
		buf = append(buf, ':')
		buf = appendValue(buf, p.val)
	}
	buf = append(buf, '}')
	return buf
}

func stringifyKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return MarshalString(k.Interface())
}

func appendSequence(buf []byte, v reflect.Value) []byte {
	buf = append(buf, '[')
	n := v.Len()
	for i := 0; i < n; i++ {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendValue(buf, v.Index(i))
	}
	buf = append(buf, ']')
	return buf
}

// lowerFirst lowers only the first rune of s, leaving the rest untouched
// (spec.md §4.8: "first character lowered, rest preserved").
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

const hexDigits = "0123456789abcdef"

// appendString double-quotes s, escaping the characters spec.md §4.8
// names and \u00XX-escaping any code unit below 0x20; higher code points
// are emitted literally as UTF-8.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if r < 0x20 {
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[(r>>4)&0xF], hexDigits[r&0xF])
			} else {
				buf = append(buf, string(r)...)
			}
		}
	}
	buf = append(buf, '"')
	return buf
}
