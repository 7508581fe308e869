package command

import (
	"testing"
)

func TestCoerce_Scalars(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
	}{
		{"3", KindNumber},
		{"-42", KindNumber},
		{"2.5", KindNumber},
		{"true", KindBool},
		{"FALSE", KindBool},
		{"null", KindNull},
		{"undefined", KindUndefined},
		{"hello", KindString},
		{"", KindString},
		{"3x", KindString},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Coerce(tt.raw)
			if got.Kind() != tt.kind {
				t.Errorf("Coerce(%q).Kind() = %v, want %v", tt.raw, got.Kind(), tt.kind)
			}
		})
	}
}

func TestCoerce_Values(t *testing.T) {
	if got := Coerce("3"); got.Num() != 3 {
		t.Errorf("Coerce(\"3\").Num() = %v, want 3", got.Num())
	}
	if got := Coerce("true"); !got.Bool() {
		t.Error("Coerce(\"true\").Bool() = false, want true")
	}
	if got := Coerce("null"); got.Interface() != nil {
		t.Errorf("Coerce(\"null\").Interface() = %v, want nil", got.Interface())
	}
}

func TestCoerce_Structured(t *testing.T) {
	arr := Coerce(`[1,2,3]`)
	if arr.Kind() != KindArray {
		t.Fatalf("Kind = %v, want array", arr.Kind())
	}
	if len(arr.Array()) != 3 {
		t.Errorf("Array() = %v, want 3 elements", arr.Array())
	}

	obj := Coerce(`{"a":1,"b":"x"}`)
	if obj.Kind() != KindObject {
		t.Fatalf("Kind = %v, want object", obj.Kind())
	}
	if obj.Object()["b"] != "x" {
		t.Errorf("Object()[b] = %v, want x", obj.Object()["b"])
	}
}

func TestCoerce_StructuredFallback(t *testing.T) {
	// Bracketed but malformed: keep the literal string.
	tests := []string{`[1,2`, `{broken}`, `[}`}
	for _, raw := range tests {
		got := Coerce(raw)
		if got.Kind() != KindString || got.Str() != raw {
			t.Errorf("Coerce(%q) = %v %q, want literal string", raw, got.Kind(), got.Str())
		}
	}
}

func TestValue_Interface(t *testing.T) {
	tests := []struct {
		v    Value
		want any
	}{
		{StringValue("s"), "s"},
		{NumberValue(2), float64(2)},
		{BoolValue(true), true},
		{NullValue(), nil},
		{UndefinedValue(), nil},
	}

	for _, tt := range tests {
		if got := tt.v.Interface(); got != tt.want {
			t.Errorf("Interface() = %v, want %v", got, tt.want)
		}
	}
}
