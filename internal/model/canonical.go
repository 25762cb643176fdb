package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

// TimeTag is the object key marking an encoded Time value.
// Times travel as {"$time": "<RFC3339Nano UTC>"} so they survive the
// flat-string boundary without being confused with plain strings.
// Plain object values are not part of the Value union, so the tag
// cannot collide with user data.
const TimeTag = "$time"

// EncodeValue produces the canonical JSON encoding of a value.
//
// Canonical means deterministic: identical values always produce
// byte-identical output. Strings are NFC normalized, floats use the
// shortest round-trip representation, times normalize to UTC.
func EncodeValue(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := AppendValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AppendValue writes the canonical encoding of v to buf.
func AppendValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		// Treat an unset Value like an explicit null so optional
		// members encode uniformly.
		buf.WriteString("null")
		return nil
	case Null:
		buf.WriteString("null")
		return nil
	case String:
		data, err := CanonicalString(string(val))
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	case Number:
		buf.WriteString(FormatNumber(float64(val)))
		return nil
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case Time:
		stamp, err := CanonicalString(time.Time(val).UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		buf.WriteString(`{"` + TimeTag + `":`)
		buf.Write(stamp)
		buf.WriteByte('}')
		return nil
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := AppendValue(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		return fmt.Errorf("unsupported value type: %T", v)
	}
}

// CanonicalString produces a canonical JSON string literal:
// NFC normalized, no HTML escaping (< > & stay literal).
func CanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}

// FormatNumber formats a float with the shortest representation that
// round-trips exactly through ParseFloat. Keeps re-encoding of decoded
// params byte-identical.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// DecodeValueJSON parses JSON bytes into a Value.
// Numbers are decoded via json.Number to avoid premature float
// conversion surprises; times are recognized by the TimeTag object form.
func DecodeValueJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return DecodeValue(raw)
}

// DecodeValue converts a generic JSON-decoded value (string, bool,
// json.Number, float64, nil, []any, map with TimeTag) into a Value.
// Any other object shape is an error: nested objects are not values.
func DecodeValue(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Null{}, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number out of range: %s", val)
		}
		return Number(f), nil
	case float64:
		return Number(val), nil
	case int:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			decoded, err := DecodeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = decoded
		}
		return arr, nil
	case map[string]any:
		stamp, ok := val[TimeTag]
		if !ok || len(val) != 1 {
			return nil, fmt.Errorf("object is not a valid value (want single %q key): %v", TimeTag, raw)
		}
		s, ok := stamp.(string)
		if !ok {
			return nil, fmt.Errorf("%q must be an RFC 3339 string, got %T", TimeTag, stamp)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", TimeTag, err)
		}
		return Time(t), nil
	case Value:
		return val, nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", raw)
	}
}
