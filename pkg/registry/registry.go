package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arthur-debert/datadeps/pkg/errors"
)

// Registry is a thread-safe name-to-item store. Dependencies live in
// one (see Dependencies); the type stays generic so callers can keep
// registries of their own fetch or post-fetch building blocks too.
type Registry[T any] interface {
	// Register adds an item under name. Names are unique; registering
	// an existing name fails.
	Register(name string, item T) error

	// Get retrieves the item registered under name
	Get(name string) (T, error)

	// Remove deletes the item registered under name
	Remove(name string) error

	// List returns all registered names, sorted
	List() []string

	// Has reports whether name is registered
	Has(name string) bool

	// Clear removes every item
	Clear()
}

type registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// New creates an empty Registry
func New[T any]() Registry[T] {
	return &registry[T]{
		items: make(map[string]T),
	}
}

func (r *registry[T]) Register(name string, item T) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "registry name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "%q is already registered", name)
	}

	r.items[name] = item
	return nil
}

func (r *registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[name]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "%q is not registered", name)
	}

	return item, nil
}

func (r *registry[T]) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; !exists {
		return errors.Newf(errors.ErrNotFound, "%q is not registered", name)
	}

	delete(r.items, name)
	return nil
}

func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

func (r *registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

func (r *registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]T)
}

// MustRegister registers an item and panics on failure, for init()
// registration where a clash is a programming error
func MustRegister[T any](reg Registry[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}
