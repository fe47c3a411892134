package richtext

import (
	"encoding/json"
	"testing"
)

func TestFieldsPreservesInsertionOrder(t *testing.T) {
	fields := NewFields().
		Set("zebra", "z").
		Set("alpha", int64(1)).
		Set("mango", true)

	keys := fields.Keys()
	want := []string{"zebra", "alpha", "mango"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("key %d: expected %q, got %q", i, k, keys[i])
		}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal fields: %v", err)
	}
	expected := `{"zebra":"z","alpha":1,"mango":true}`
	if string(data) != expected {
		t.Fatalf("expected %s, got %s", expected, data)
	}
}

func TestFieldsSetKeepsPositionOnOverwrite(t *testing.T) {
	fields := NewFields().
		Set("first", 1).
		Set("second", 2).
		Set("first", 10)

	keys := fields.Keys()
	if len(keys) != 2 || keys[0] != "first" || keys[1] != "second" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	if v, _ := fields.Get("first"); v != 10 {
		t.Fatalf("expected overwritten value 10, got %v", v)
	}
}

func TestFieldsJSONRoundTrip(t *testing.T) {
	original := NewFields().
		Set("provider", "TXU Energy").
		Set("limit", int64(12)).
		Set("rate", 0.145).
		Set("featured", true).
		Set("fallback", nil).
		Set("plans", []any{"fixed", "variable"})

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal fields: %v", err)
	}

	decoded := NewFields()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("unmarshal fields: %v", err)
	}

	if !original.Equal(decoded) {
		t.Fatalf("round trip mismatch:\noriginal: %#v %#v\ndecoded:  %#v %#v",
			original.Keys(), original.Map(), decoded.Keys(), decoded.Map())
	}

	if v, _ := decoded.Get("limit"); v != int64(12) {
		t.Fatalf("expected integral number to decode as int64, got %T %v", v, v)
	}
	if v, _ := decoded.Get("rate"); v != 0.145 {
		t.Fatalf("expected fractional number to decode as float64, got %T %v", v, v)
	}
}

func TestFieldsEmptyStringSurvives(t *testing.T) {
	fields := NewFields().Set("title", "")

	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal fields: %v", err)
	}
	if string(data) != `{"title":""}` {
		t.Fatalf("expected empty string to serialize, got %s", data)
	}

	decoded := NewFields()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("unmarshal fields: %v", err)
	}
	v, ok := decoded.Get("title")
	if !ok || v != "" {
		t.Fatalf("expected empty string to survive round trip, got %v (present=%v)", v, ok)
	}
}

func TestFieldsFromMapIsDeterministic(t *testing.T) {
	fields := FieldsFromMap(map[string]any{"b": 2, "a": 1, "c": 3})
	keys := fields.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("expected sorted keys, got %v", keys)
	}
}

func TestFieldsClone(t *testing.T) {
	original := NewFields().Set("one", 1)
	clone := original.Clone()
	clone.Set("two", 2)

	if original.Has("two") {
		t.Fatal("mutating clone should not affect original")
	}
	if !clone.Has("one") {
		t.Fatal("clone should carry original entries")
	}
}
