package switcher

import (
	"errors"
	"testing"
)

func TestRegistry_SetAndLookup(t *testing.T) {
	r := NewRegistry()

	if err := r.Set(1, "Field 1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	scene, ok := r.Lookup(1)
	if !ok || scene != "Field 1" {
		t.Errorf("Lookup(1) = %q, %v; want %q, true", scene, ok, "Field 1")
	}

	if _, ok := r.Lookup(2); ok {
		t.Error("Lookup(2) = true, want false for unconfigured field")
	}
}

func TestRegistry_SetOverwrites(t *testing.T) {
	r := NewRegistry()

	if err := r.Set(1, "Field 1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := r.Set(1, "Field 1 Wide"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	scene, _ := r.Lookup(1)
	if scene != "Field 1 Wide" {
		t.Errorf("Lookup(1) = %q, want updated scene", scene)
	}
}

func TestRegistry_SetValidation(t *testing.T) {
	r := NewRegistry()

	if err := r.Set(0, "Field 0"); !errors.Is(err, ErrInvalidField) {
		t.Errorf("Set(0) error = %v, want ErrInvalidField", err)
	}
	if err := r.Set(-3, "Field"); !errors.Is(err, ErrInvalidField) {
		t.Errorf("Set(-3) error = %v, want ErrInvalidField", err)
	}
	if err := r.Set(1, "   "); !errors.Is(err, ErrEmptyScene) {
		t.Errorf("Set(1, blank) error = %v, want ErrEmptyScene", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after rejected sets, want 0", r.Len())
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()

	if err := r.Set(1, "Field 1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	r.Remove(1)

	if _, ok := r.Lookup(1); ok {
		t.Error("Lookup(1) = true after Remove, want false")
	}

	// Removing an absent field is a no-op.
	r.Remove(7)
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry()
	if err := r.Set(1, "Old"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	err := r.Replace(map[int]string{2: "Field 2", 3: "Field 3"})
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if _, ok := r.Lookup(1); ok {
		t.Error("Lookup(1) = true after Replace, want false")
	}
	if scene, _ := r.Lookup(3); scene != "Field 3" {
		t.Errorf("Lookup(3) = %q, want %q", scene, "Field 3")
	}
}

func TestRegistry_ReplaceAllOrNothing(t *testing.T) {
	r := NewRegistry()
	if err := r.Set(1, "Field 1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	err := r.Replace(map[int]string{2: "Field 2", 0: "Bad"})
	if !errors.Is(err, ErrInvalidField) {
		t.Fatalf("Replace() error = %v, want ErrInvalidField", err)
	}

	// The existing mapping must be untouched after a rejected replace.
	if scene, ok := r.Lookup(1); !ok || scene != "Field 1" {
		t.Errorf("Lookup(1) = %q, %v after failed Replace; want original entry", scene, ok)
	}
	if _, ok := r.Lookup(2); ok {
		t.Error("Lookup(2) = true after failed Replace, want false")
	}
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	if err := r.Set(1, "Field 1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	snap := r.Snapshot()
	snap[1] = "mutated"
	snap[2] = "added"

	if scene, _ := r.Lookup(1); scene != "Field 1" {
		t.Errorf("Lookup(1) = %q, want registry isolated from snapshot mutation", scene)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}
