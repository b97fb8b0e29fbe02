package filterchain

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SpecVersion is the current chain-spec format version. Loaded spec files
// declaring a version outside the supported constraint are rejected.
const SpecVersion = "1.0.0"

// specVersionConstraint accepts any 1.x spec file.
const specVersionConstraint = ">= 1.0.0, < 2.0.0"

// Spec is the configuration structure a chain can be seeded from. Entries
// are applied in the order they are declared — callbacks first, then filters —
// but execution order is governed purely by the declared priorities.
type Spec struct {
	// Version is the spec format version. Optional when building specs
	// programmatically; validated against the supported constraint when
	// loading from a file.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Callbacks are callable transform entries. They can only be populated
	// programmatically; spec files cannot carry callables.
	Callbacks []CallbackSpec `yaml:"callbacks,omitempty" json:"callbacks,omitempty"`

	// Filters are named filter entries resolved through the chain's resolver.
	Filters []FilterSpec `yaml:"filters,omitempty" json:"filters,omitempty"`
}

// CallbackSpec describes a callable transform entry.
type CallbackSpec struct {
	// Callback is the transform to attach. Required.
	Callback Func `yaml:"-" json:"-"`

	// Priority overrides [DefaultPriority] when set.
	Priority *int `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// FilterSpec describes a named filter entry.
type FilterSpec struct {
	// Name is the canonical or alias name of the filter. Required.
	Name string `yaml:"name" json:"name"`

	// Options is the constructor options bag forwarded to the filter factory.
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`

	// Priority overrides [DefaultPriority] when set.
	Priority *int `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// NewFromSpec creates a chain seeded from spec using the default registry.
func NewFromSpec(spec *Spec) (*Chain, error) {
	c := New()
	if err := c.SetOptions(spec); err != nil {
		return nil, err
	}

	return c, nil
}

// SetOptions ingests spec into the chain: every callback entry and every
// filter entry is attached with its declared priority (or [DefaultPriority]
// when omitted). Ingestion is all-or-nothing — the spec is validated and all
// filter names resolved before the first entry is attached, so on any
// configuration or resolution error the chain is left untouched.
func (c *Chain) SetOptions(spec *Spec) error {
	if spec == nil {
		return fmt.Errorf("%w: spec is nil", ErrInvalidSpec)
	}

	for i, cb := range spec.Callbacks {
		if cb.Callback == nil {
			return fmt.Errorf("%w: callbacks[%d]: callback is required", ErrInvalidSpec, i)
		}
	}

	for i, fs := range spec.Filters {
		if fs.Name == "" {
			return fmt.Errorf("%w: filters[%d]: name is required", ErrInvalidSpec, i)
		}
	}

	// Resolve every named filter before attaching anything, so a resolution
	// failure cannot leave the chain partially configured.
	resolved := make([]*chainEntry, len(spec.Filters))

	for i, fs := range spec.Filters {
		f, err := c.Resolver().Resolve(fs.Name, fs.Options)
		if err != nil {
			return err
		}

		resolved[i] = &chainEntry{
			filter:  f,
			name:    fs.Name,
			options: copyOptions(fs.Options),
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cb := range spec.Callbacks {
		c.queue.Insert(&chainEntry{filter: cb.Callback}, specPriority(cb.Priority))
	}

	for i, fs := range spec.Filters {
		c.queue.Insert(resolved[i], specPriority(fs.Priority))
	}

	return nil
}

// LoadSpec parses a YAML chain spec. Decoding is strict: unknown keys are a
// configuration error, as is a version outside the supported constraint or a
// callbacks section (callables have no file representation).
func LoadSpec(data []byte) (*Spec, error) {
	var spec Spec

	if err := strictUnmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	if len(spec.Callbacks) > 0 {
		return nil, fmt.Errorf("%w: callback entries cannot be loaded from spec files", ErrInvalidSpec)
	}

	if spec.Version != "" {
		if err := checkSpecVersion(spec.Version); err != nil {
			return nil, err
		}
	}

	return &spec, nil
}

// strictUnmarshal decodes YAML with unknown-field rejection.
func strictUnmarshal(data []byte, target any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(target); err != nil {
		// An empty document is a valid (empty) spec.
		if errors.Is(err, io.EOF) {
			return nil
		}

		return err
	}

	return nil
}

// checkSpecVersion validates a declared spec version against the supported
// constraint.
func checkSpecVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: invalid version %q: %v", ErrInvalidSpec, version, err)
	}

	constraint, err := semver.NewConstraint(specVersionConstraint)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("%w: unsupported spec version %q (supported: %s)",
			ErrInvalidSpec, version, specVersionConstraint)
	}

	return nil
}

// specPriority returns the declared priority, or DefaultPriority when unset.
func specPriority(p *int) int {
	if p != nil {
		return *p
	}

	return DefaultPriority
}
