package feature

import (
	"encoding/json"
	"testing"
)

func TestVectorMarshalPreservesOrder(t *testing.T) {
	vec := NewVector(3)
	vec.Set("zeta", 1.0)
	vec.Set("alpha", true)
	vec.Set("mid", "token")

	raw, err := json.Marshal(vec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"zeta":1,"alpha":true,"mid":"token"}`
	if string(raw) != want {
		t.Errorf("got %s, want %s", raw, want)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	vec := NewVector(2)
	vec.Set("b_feature", 2.5)
	vec.Set("a_feature", false)

	raw, err := json.Marshal(vec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Vector
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	names := decoded.Names()
	if len(names) != 2 || names[0] != "b_feature" || names[1] != "a_feature" {
		t.Errorf("order lost: %v", names)
	}

	if v, ok := decoded.Float("b_feature"); !ok || v != 2.5 {
		t.Errorf("b_feature = %v, %v", v, ok)
	}
	if v, ok := decoded.Bool("a_feature"); !ok || v {
		t.Errorf("a_feature = %v, %v", v, ok)
	}
}

func TestVectorSetOverwriteKeepsPosition(t *testing.T) {
	vec := NewVector(2)
	vec.Set("first", 1)
	vec.Set("second", 2)
	vec.Set("first", 10)

	if vec.Len() != 2 {
		t.Fatalf("Len = %d, want 2", vec.Len())
	}
	if vec.Names()[0] != "first" {
		t.Errorf("overwrite moved the entry: %v", vec.Names())
	}
	if v, _ := vec.Float("first"); v != 10 {
		t.Errorf("first = %v, want 10", v)
	}
}

func TestVectorFloatAndBoolCoercion(t *testing.T) {
	vec := NewVector(3)
	vec.Set("numeric_string", "3.5")
	vec.Set("token", "male")
	vec.Set("flag", true)

	if v, ok := vec.Float("numeric_string"); !ok || v != 3.5 {
		t.Errorf("numeric_string = %v, %v", v, ok)
	}
	if _, ok := vec.Float("token"); ok {
		t.Error("non-numeric token should not coerce to float")
	}
	if _, ok := vec.Float("missing"); ok {
		t.Error("missing name should report !ok")
	}
	if v, ok := vec.Bool("flag"); !ok || !v {
		t.Errorf("flag = %v, %v", v, ok)
	}
	if _, ok := vec.Bool("missing"); ok {
		t.Error("missing name should report !ok")
	}
}
