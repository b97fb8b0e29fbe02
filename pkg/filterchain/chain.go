package filterchain

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/mohae/deepcopy"
)

// DefaultPriority is the priority used by Attach and AttachByName when the
// caller does not specify one.
const DefaultPriority = 1000

// chainEntry is a single transform attached to a chain. Entries created via
// AttachByName carry the resolver name and construction options so the chain
// can be persisted; entries attached directly or as callables do not.
type chainEntry struct {
	filter  Filter
	name    string
	options map[string]any
}

// Chain is a priority-ordered pipeline of filters. Filters run
// highest-priority-first; filters attached at equal priority run in
// attachment order.
//
// A Chain is safe for concurrent Filter calls. Mutation (attach, detach,
// merge) is serialized internally, but interleaving mutation with running
// Filter calls is a single-writer concern: a Filter call in progress operates
// on a snapshot and is never affected by concurrent mutation. Use [Chain.Clone]
// to give each goroutine an independent, mutable chain derived from a shared
// template.
type Chain struct {
	mu       sync.Mutex
	queue    *PriorityQueue[*chainEntry]
	resolver Resolver
}

// New creates an empty chain.
func New() *Chain {
	return &Chain{queue: NewPriorityQueue[*chainEntry]()}
}

// Attach appends f to the chain at [DefaultPriority] and returns the chain
// for call chaining. The filter's behavior is not validated at attach time.
func (c *Chain) Attach(f Filter) *Chain {
	return c.AttachPriority(f, DefaultPriority)
}

// AttachPriority appends f to the chain at the given priority and returns
// the chain for call chaining.
func (c *Chain) AttachPriority(f Filter, priority int) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue.Insert(&chainEntry{filter: f}, priority)

	return c
}

// AttachFunc appends a callable transform at [DefaultPriority] and returns
// the chain. Chains holding callable entries cannot be persisted.
func (c *Chain) AttachFunc(fn Func) *Chain {
	return c.AttachPriority(fn, DefaultPriority)
}

// AttachFuncPriority appends a callable transform at the given priority and
// returns the chain.
func (c *Chain) AttachFuncPriority(fn Func, priority int) *Chain {
	return c.AttachPriority(fn, priority)
}

// AttachByName resolves name via the chain's resolver, constructs a fresh
// filter instance configured with options, and attaches it at
// [DefaultPriority]. Each call constructs a new instance, so attaching the
// same name twice yields two independent entries whose options never collide.
func (c *Chain) AttachByName(name string, options map[string]any) error {
	return c.AttachByNamePriority(name, options, DefaultPriority)
}

// AttachByNamePriority resolves name and attaches the constructed filter at
// the given priority. On a resolution error the chain is left unchanged.
func (c *Chain) AttachByNamePriority(name string, options map[string]any, priority int) error {
	f, err := c.Resolver().Resolve(name, options)
	if err != nil {
		return err
	}

	entry := &chainEntry{
		filter:  f,
		name:    name,
		options: copyOptions(options),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue.Insert(entry, priority)

	return nil
}

// Detach removes a previously attached filter from the chain. The filter is
// matched by identity: the exact instance (or, for callable entries, the same
// function) must have been attached. Returns [ErrFilterNotFound] when the
// filter is not present.
func (c *Chain) Detach(f Filter) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.queue.Remove(func(e *chainEntry) bool {
		return sameFilter(e.filter, f)
	})
	if !removed {
		return ErrFilterNotFound
	}

	return nil
}

// Filter runs value through every attached filter in priority order and
// returns the final result. An empty chain is the identity. Errors from
// individual filters propagate unchanged and abort the remaining entries.
//
// The run operates on a snapshot of the chain taken at call time: every entry
// present at that moment is invoked exactly once, even if the chain is
// mutated concurrently.
func (c *Chain) Filter(value any) (any, error) {
	c.mu.Lock()
	entries := c.queue.Items()
	c.mu.Unlock()

	for _, e := range entries {
		out, err := e.filter.Filter(value)
		if err != nil {
			return nil, err
		}

		value = out
	}

	return value, nil
}

// Merge appends all entries of other into c, preserving each entry's original
// priority, and returns c. Entries from other are treated as attached after
// all of c's pre-existing entries: at equal priority, c's entries run before
// other's. The other chain is not modified.
func (c *Chain) Merge(other *Chain) *Chain {
	if other == nil || other == c {
		return c
	}

	other.mu.Lock()
	type mergeItem struct {
		entry    *chainEntry
		priority int
	}

	var items []mergeItem

	other.queue.Each(func(e *chainEntry, priority int) {
		items = append(items, mergeItem{entry: copyEntry(e), priority: priority})
	})
	other.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range items {
		c.queue.Insert(it.entry, it.priority)
	}

	return c
}

// Clone returns an independent copy of the chain. The clone shares no
// mutable entry storage with the original: attaching to or detaching from
// one never affects the other. Filter instances themselves are shared, which
// is safe for stateless filters; stateful filters must document their own
// sharing contract.
func (c *Chain) Clone() *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	clone := &Chain{
		queue:    NewPriorityQueue[*chainEntry](),
		resolver: c.resolver,
	}

	c.queue.Each(func(e *chainEntry, priority int) {
		clone.queue.Insert(copyEntry(e), priority)
	})

	return clone
}

// Count returns the number of attached entries.
func (c *Chain) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.queue.Len()
}

// Filters returns the attached filters in execution order. The returned
// slice is a snapshot; mutating it does not affect the chain.
func (c *Chain) Filters() []Filter {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.queue.Items()

	out := make([]Filter, len(entries))
	for i, e := range entries {
		out[i] = e.filter
	}

	return out
}

// Resolver returns the chain's filter resolver, lazily creating the default
// registry on first use.
func (c *Chain) Resolver() Resolver {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolver == nil {
		c.resolver = DefaultRegistry()
	}

	return c.resolver
}

// SetResolver replaces the chain's filter resolver and returns the chain.
func (c *Chain) SetResolver(r Resolver) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resolver = r

	return c
}

// copyEntry copies a chain entry, deep-copying its options bag so two chains
// derived from one never share mutable option storage.
func copyEntry(e *chainEntry) *chainEntry {
	return &chainEntry{
		filter:  e.filter,
		name:    e.name,
		options: copyOptions(e.options),
	}
}

// copyOptions deep-copies an options bag.
func copyOptions(options map[string]any) map[string]any {
	if options == nil {
		return nil
	}

	copied, ok := deepcopy.Copy(options).(map[string]any)
	if !ok {
		return nil
	}

	return copied
}

// sameFilter reports whether a and b are the same attached transform.
// Func values are not comparable with ==, so they are matched by function
// pointer; everything else is matched by interface identity when the dynamic
// type supports it.
func sameFilter(a, b Filter) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)

	if ra.Kind() == reflect.Func || rb.Kind() == reflect.Func {
		return ra.Kind() == reflect.Func && rb.Kind() == reflect.Func &&
			ra.Pointer() == rb.Pointer()
	}

	if !ra.Type().Comparable() || !rb.Type().Comparable() {
		return false
	}

	return a == b
}

// String returns a short human-readable description of the chain.
func (c *Chain) String() string {
	return fmt.Sprintf("filterchain.Chain(%d entries)", c.Count())
}
