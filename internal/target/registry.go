package target

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harrison/seqtarget/internal/logger"
)

// ErrUnknownResolver is returned by Lookup for names that were never registered
var ErrUnknownResolver = errors.New("unknown resolver")

// Registry maps resolver names, as written in configuration, to functions.
type Registry struct {
	funcs map[string]ResolveFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]ResolveFunc)}
}

// DefaultRegistry holds the built-in "metadata" and "generic" resolvers.
func DefaultRegistry(log logger.Logger, memoize bool) *Registry {
	builtin := NewResolver(log, WithMemoize(memoize))
	reg := NewRegistry()
	reg.Register("metadata", builtin.ResolveAll)
	reg.Register("generic", builtin.ResolveGeneric)
	return reg
}

// Register adds or replaces fn under name.
func (r *Registry) Register(name string, fn ResolveFunc) {
	r.funcs[strings.ToLower(name)] = fn
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (ResolveFunc, error) {
	fn, ok := r.funcs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownResolver, name, strings.Join(r.Names(), ", "))
	}
	return fn, nil
}

// Names lists registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
