package filterchain

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// ChainState is the persistable representation of a chain: its entries in
// iteration order with their names, options, and priorities. Restoring a
// state reproduces identical Filter output for identical input.
type ChainState struct {
	// Version is the state format version.
	Version string `json:"version"`

	// Entries are the chain's entries in iteration order.
	Entries []EntryState `json:"entries"`
}

// EntryState is the persistable representation of a single chain entry.
type EntryState struct {
	// Name is the resolver name the filter was constructed from.
	Name string `json:"name"`

	// Options is the constructor options bag.
	Options map[string]any `json:"options,omitempty"`

	// Priority is the entry's attachment priority.
	Priority int `json:"priority"`
}

// State captures the chain's persistable state. Only entries attached by
// name carry enough information to be reconstructed; a chain holding
// callable or directly attached entries returns an error wrapping
// [ErrNotPersistable].
func (c *Chain) State() (*ChainState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := &ChainState{Version: SpecVersion}

	var err error

	c.queue.Each(func(e *chainEntry, priority int) {
		if err != nil {
			return
		}

		if e.name == "" {
			err = fmt.Errorf("%w: entry %T was not attached by name", ErrNotPersistable, e.filter)
			return
		}

		state.Entries = append(state.Entries, EntryState{
			Name:     e.name,
			Options:  copyOptions(e.options),
			Priority: priority,
		})
	})

	if err != nil {
		return nil, err
	}

	return state, nil
}

// Restore reconstructs a chain from a previously captured state, resolving
// each entry through r (the default registry when r is nil). Entries are
// reattached in the recorded iteration order with their recorded priorities,
// which reproduces the original ordering exactly, FIFO ties included.
func Restore(state *ChainState, r Resolver) (*Chain, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: state is nil", ErrInvalidSpec)
	}

	if state.Version != "" {
		if err := checkSpecVersion(state.Version); err != nil {
			return nil, err
		}
	}

	c := New()
	if r != nil {
		c.SetResolver(r)
	}

	for i, e := range state.Entries {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entries[%d]: name is required", ErrInvalidSpec, i)
		}

		if err := c.AttachByNamePriority(e.Name, e.Options, e.Priority); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// EncodeState serializes a chain state to YAML.
func EncodeState(state *ChainState) ([]byte, error) {
	data, err := yaml.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encoding chain state: %w", err)
	}

	return data, nil
}

// DecodeState parses a YAML chain state.
func DecodeState(data []byte) (*ChainState, error) {
	var state ChainState
	if err := yaml.UnmarshalStrict(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	return &state, nil
}
