package cache

import (
	"strings"
	"testing"
)

func TestDefaultKeyer_Deterministic(t *testing.T) {
	k := NewDefaultKeyer()

	input := KeyInput{
		Name:       "build",
		Subcommand: "create",
		Arguments:  []string{"a", "b"},
		Options:    map[string]any{"env": "node", "count": float64(3)},
		WorkDir:    "/tmp/project",
		Principal:  "alice",
	}

	key1, err := k.Key(input)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	key2, err := k.Key(input)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if key1 != key2 {
		t.Errorf("keys differ: %q vs %q", key1, key2)
	}
	if !strings.HasPrefix(key1, "invoke:build:") {
		t.Errorf("key = %q, want invoke:build: prefix", key1)
	}
}

func TestDefaultKeyer_OptionOrderIndependent(t *testing.T) {
	k := NewDefaultKeyer()

	// The same options built in different insertion orders.
	a := map[string]any{}
	a["env"] = "node"
	a["flag"] = true
	a["count"] = float64(3)

	b := map[string]any{}
	b["count"] = float64(3)
	b["flag"] = true
	b["env"] = "node"

	keyA, err := k.Key(KeyInput{Name: "build", Options: a})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	keyB, err := k.Key(KeyInput{Name: "build", Options: b})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if keyA != keyB {
		t.Errorf("insertion order changed the key: %q vs %q", keyA, keyB)
	}
}

func TestDefaultKeyer_FieldSensitivity(t *testing.T) {
	k := NewDefaultKeyer()
	base := KeyInput{
		Name:       "build",
		Subcommand: "run",
		Arguments:  []string{"api"},
		Options:    map[string]any{"env": "node"},
		WorkDir:    "/work",
		Principal:  "alice",
	}
	baseKey, err := k.Key(base)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(in KeyInput) KeyInput
	}{
		{"name", func(in KeyInput) KeyInput { in.Name = "test"; return in }},
		{"subcommand", func(in KeyInput) KeyInput { in.Subcommand = "stop"; return in }},
		{"arguments", func(in KeyInput) KeyInput { in.Arguments = []string{"web"}; return in }},
		{"options", func(in KeyInput) KeyInput { in.Options = map[string]any{"env": "go"}; return in }},
		{"workdir", func(in KeyInput) KeyInput { in.WorkDir = "/other"; return in }},
		{"principal", func(in KeyInput) KeyInput { in.Principal = "bob"; return in }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := k.Key(tt.mutate(base))
			if err != nil {
				t.Fatalf("Key failed: %v", err)
			}
			if key == baseKey {
				t.Errorf("changing %s should change the key", tt.name)
			}
		})
	}
}

func TestDefaultKeyer_AdjacentFieldsDoNotCollide(t *testing.T) {
	k := NewDefaultKeyer()

	key1, err := k.Key(KeyInput{Name: "build", Arguments: []string{"ab", "c"}})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	key2, err := k.Key(KeyInput{Name: "build", Arguments: []string{"a", "bc"}})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if key1 == key2 {
		t.Error("argument boundaries should be part of the key")
	}

	key3, err := k.Key(KeyInput{Name: "build", Subcommand: "runx"})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	key4, err := k.Key(KeyInput{Name: "build", Subcommand: "run", Arguments: []string{"x"}})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if key3 == key4 {
		t.Error("subcommand and argument content should not run together")
	}
}

func TestDefaultKeyer_NestedOptionValues(t *testing.T) {
	k := NewDefaultKeyer()

	key1, err := k.Key(KeyInput{
		Name:    "build",
		Options: map[string]any{"matrix": []any{map[string]any{"os": "linux", "arch": "amd64"}}},
	})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	key2, err := k.Key(KeyInput{
		Name:    "build",
		Options: map[string]any{"matrix": []any{map[string]any{"arch": "amd64", "os": "linux"}}},
	})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if key1 != key2 {
		t.Error("nested map ordering should not affect the key")
	}
}

func TestDefaultKeyer_EmptyName(t *testing.T) {
	k := NewDefaultKeyer()

	if _, err := k.Key(KeyInput{}); err != ErrEmptyKeyName {
		t.Errorf("Key with empty name error = %v, want ErrEmptyKeyName", err)
	}
}

func TestDefaultKeyer_MinimalInput(t *testing.T) {
	k := NewDefaultKeyer()

	key, err := k.Key(KeyInput{Name: "build"})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if key == "" {
		t.Error("a bare command name should still produce a key")
	}
}
