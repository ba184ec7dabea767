package survival

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrModelExists  = errors.New("survival model already registered")
	ErrUnknownModel = errors.New("unknown survival model")
)

// Factory builds a model from its parameters.
type Factory func(p Params) (Model, error)

var registry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{
	m: map[string]Factory{
		"linear":  newLinear,
		"sigmoid": newSigmoid,
	},
}

// Register adds a named model factory.
func Register(name string, f Factory) error {
	if name == "" {
		return errors.New("survival model name is required")
	}
	if f == nil {
		return errors.New("survival model factory is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrModelExists, name)
	}
	registry.m[name] = f
	return nil
}

// New builds the named model.
func New(name string, p Params) (Model, error) {
	registry.mu.RLock()
	f, ok := registry.m[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownModel, name, Names())
	}
	m, err := f(p)
	if err != nil {
		return nil, fmt.Errorf("survival model %s: %w", name, err)
	}
	return m, nil
}

// Names lists the registered models.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unregisterForTests(name string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.m, name)
}
