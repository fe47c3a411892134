package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
)

// Fields is an ordered attribute map. Keys preserve insertion order so the
// serialized form matches the order props were written in the source
// document, which downstream diffing relies on.
type Fields struct {
	keys   []string
	values map[string]any
}

// NewFields returns an empty ordered field set.
func NewFields() *Fields {
	return &Fields{values: map[string]any{}}
}

// FieldsFromMap builds a field set from a plain map. Keys are sorted so the
// result is deterministic; callers that care about source order should use
// Set directly.
func FieldsFromMap(m map[string]any) *Fields {
	f := NewFields()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f.Set(k, m[k])
	}
	return f
}

// Set stores value under name, appending the key on first write and keeping
// its original position on overwrite. Returns the receiver for chaining.
func (f *Fields) Set(name string, value any) *Fields {
	if f.values == nil {
		f.values = map[string]any{}
	}
	if _, exists := f.values[name]; !exists {
		f.keys = append(f.keys, name)
	}
	f.values[name] = value
	return f
}

// Get returns the value stored under name.
func (f *Fields) Get(name string) (any, bool) {
	if f == nil || f.values == nil {
		return nil, false
	}
	v, ok := f.values[name]
	return v, ok
}

// Has reports whether name is present.
func (f *Fields) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// String returns the value under name when it is a string.
func (f *Fields) String(name string) (string, bool) {
	v, ok := f.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the value under name coerced to int when it carries a numeric
// literal.
func (f *Fields) Int(name string) (int, bool) {
	v, ok := f.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// Len returns the number of keys.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Keys returns the key list in insertion order.
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Map returns a plain map copy. Ordering is lost; use Keys to recover it.
func (f *Fields) Map() map[string]any {
	if f == nil {
		return nil
	}
	out := make(map[string]any, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy. Nested container values are shared.
func (f *Fields) Clone() *Fields {
	if f == nil {
		return nil
	}
	out := &Fields{
		keys:   make([]string, len(f.keys)),
		values: make(map[string]any, len(f.values)),
	}
	copy(out.keys, f.keys)
	for k, v := range f.values {
		out.values[k] = v
	}
	return out
}

// Equal reports whether both field sets hold the same keys in the same order
// with deeply equal values.
func (f *Fields) Equal(other *Fields) bool {
	if f.Len() != other.Len() {
		return false
	}
	if f == nil || other == nil {
		return f.Len() == other.Len()
	}
	for i, k := range f.keys {
		if other.keys[i] != k {
			return false
		}
		if !reflect.DeepEqual(f.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the fields as a JSON object with keys in insertion
// order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	if f == nil || len(f.keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.values[k])
		if err != nil {
			return nil, fmt.Errorf("richtext: marshal field %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores key order from the wire form. Numbers decode to
// int64 when integral and float64 otherwise, matching how prop literals are
// extracted from source documents.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("richtext: fields must decode from a JSON object, got %v", tok)
	}

	f.keys = nil
	f.values = map[string]any{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("richtext: unexpected field key %v", keyTok)
		}
		value, err := decodeJSONValue(dec)
		if err != nil {
			return fmt.Errorf("richtext: decode field %q: %w", key, err)
		}
		f.Set(key, value)
	}
	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// DecodeValue parses a single JSON value with the same number handling as
// Fields.UnmarshalJSON: int64 for integral numbers, float64 otherwise. It
// rejects input with trailing non-space content.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	value, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("richtext: trailing data after JSON value")
	}
	return value, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			obj := map[string]any{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj[key] = val
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", v)
	case json.Number:
		return normalizeNumber(v), nil
	default:
		return v, nil
	}
}

func normalizeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if fl, err := n.Float64(); err == nil {
		return fl
	}
	return n.String()
}
