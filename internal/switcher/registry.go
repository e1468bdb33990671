package switcher

import (
	"fmt"
	"strings"
	"sync"
)

// Registry is the mutable mapping from field number to OBS scene name.
//
// Front ends edit it while a monitoring session is running; the coordinator
// consults it on every decision, so the next match-show event observes any
// change. A field with no entry is a recoverable "no mapping" condition, not
// an error.
//
// Thread Safety: all methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	scenes map[int]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scenes: make(map[int]string)}
}

// Set adds or updates the scene for a field.
// The field number must be positive and the scene name non-blank.
func (r *Registry) Set(field int, scene string) error {
	if err := validateEntry(field, scene); err != nil {
		return err
	}
	r.mu.Lock()
	r.scenes[field] = scene
	r.mu.Unlock()
	return nil
}

// Remove deletes the entry for a field. Removing an absent field is a no-op;
// afterwards the field behaves exactly as if it had never been configured.
func (r *Registry) Remove(field int) {
	r.mu.Lock()
	delete(r.scenes, field)
	r.mu.Unlock()
}

// Lookup returns the scene mapped to a field.
func (r *Registry) Lookup(field int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	scene, ok := r.scenes[field]
	return scene, ok
}

// Replace swaps the entire mapping atomically. Every entry is validated
// before any change is applied; on error the existing mapping is untouched.
func (r *Registry) Replace(scenes map[int]string) error {
	next := make(map[int]string, len(scenes))
	for field, scene := range scenes {
		if err := validateEntry(field, scene); err != nil {
			return err
		}
		next[field] = scene
	}
	r.mu.Lock()
	r.scenes = next
	r.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current mapping.
func (r *Registry) Snapshot() map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cpy := make(map[int]string, len(r.scenes))
	for field, scene := range r.scenes {
		cpy[field] = scene
	}
	return cpy
}

// Len returns the number of configured fields.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scenes)
}

func validateEntry(field int, scene string) error {
	if field < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidField, field)
	}
	if strings.TrimSpace(scene) == "" {
		return fmt.Errorf("%w: field %d", ErrEmptyScene, field)
	}
	return nil
}
