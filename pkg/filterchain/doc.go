// Package filterchain implements a composable, priority-ordered pipeline of
// value filters.
//
// The package is built around the [Filter] interface, the [Chain] type, and a
// pluggable [Resolver] for name-based filter construction. Filters attached to
// a chain run highest-priority-first; filters attached at equal priority run
// in attachment order. Chains support dynamic mutation (attach, detach, merge,
// clone) while preserving these ordering guarantees, and chains built purely
// from named filters can be persisted and restored via [ChainState].
package filterchain
