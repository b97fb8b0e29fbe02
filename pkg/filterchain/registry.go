package filterchain

import (
	"fmt"
	"sort"
	"sync"
)

// Resolver resolves a filter name to a freshly constructed filter instance.
// Implementations must construct a new instance on every call — the chain
// relies on this so that two attachments of the same name carry independent
// configuration.
type Resolver interface {
	// Resolve constructs a filter for name, configured with options.
	Resolve(name string, options map[string]any) (Filter, error)
}

// FactoryFunc constructs a filter instance from an options bag.
type FactoryFunc func(options map[string]any) (Filter, error)

// Registry is a name-addressable collection of filter factories with alias
// support. It implements [Resolver]. Register more factories at any time;
// Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FactoryFunc
	aliases   map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FactoryFunc),
		aliases:   make(map[string]string),
	}
}

// Register adds a factory under the given canonical name, replacing any
// existing factory of that name.
func (r *Registry) Register(name string, factory FactoryFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = factory
}

// Alias maps a short alias to a canonical filter name. The canonical name
// does not need to be registered yet.
func (r *Registry) Alias(alias, canonical string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.aliases[alias] = canonical
}

// Resolve constructs a new filter instance for name (canonical or alias),
// forwarding options to its factory. Returns an error wrapping
// [ErrUnknownFilter] when the name is not registered.
func (r *Registry) Resolve(name string, options map[string]any) (Filter, error) {
	r.mu.RLock()

	canonical := name
	if target, ok := r.aliases[name]; ok {
		canonical = target
	}

	factory, ok := r.factories[canonical]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("resolving %q: %w", name, ErrUnknownFilter)
	}

	f, err := factory(options)
	if err != nil {
		return nil, fmt.Errorf("constructing filter %q: %w", name, err)
	}

	return f, nil
}

// Names returns the canonical names of all registered factories, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.aliases))
	for alias, canonical := range r.aliases {
		out[alias] = canonical
	}

	return out
}

// DefaultRegistry returns a registry pre-populated with the built-in filters
// and their aliases.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("lowercase", NewLowerCaseFromOptions)
	r.Register("uppercase", NewUpperCaseFromOptions)
	r.Register("stripuppercase", NewStripUpperCaseFromOptions)
	r.Register("stringtrim", NewStringTrimFromOptions)
	r.Register("striptags", NewStripTagsFromOptions)
	r.Register("stripnewlines", NewStripNewlinesFromOptions)
	r.Register("stringprefix", NewStringPrefixFromOptions)
	r.Register("urlnormalize", NewURLNormalizeFromOptions)

	r.Alias("lower", "lowercase")
	r.Alias("upper", "uppercase")
	r.Alias("stripupper", "stripuppercase")
	r.Alias("trim", "stringtrim")
	r.Alias("prefix", "stringprefix")

	return r
}

// Compile-time check that *Registry implements Resolver.
var _ Resolver = (*Registry)(nil)
