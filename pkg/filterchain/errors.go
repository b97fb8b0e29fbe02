package filterchain

import "errors"

// Sentinel errors returned by chain and registry operations. Callers should
// test for them with errors.Is since they are usually wrapped with the
// identifier or field that triggered them.
var (
	// ErrUnknownFilter is returned when a filter name cannot be resolved.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrFilterNotFound is returned when detaching a filter that is not
	// attached to the chain.
	ErrFilterNotFound = errors.New("filter not attached")

	// ErrInvalidSpec is returned when a chain spec is malformed.
	ErrInvalidSpec = errors.New("invalid chain spec")

	// ErrNotPersistable is returned when persisting a chain that contains
	// callable entries, which have no name-based representation.
	ErrNotPersistable = errors.New("chain contains callable entries and cannot be persisted")
)
