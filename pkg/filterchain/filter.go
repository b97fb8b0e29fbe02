package filterchain

// Filter is the interface for all value filters.
// Filters are expected to be stateless with respect to individual calls —
// the same input must always produce the same output. A filter that does not
// understand the type of its input should return the value unchanged rather
// than fail; errors are reserved for inputs that are malformed within the
// filter's own domain.
type Filter interface {
	// Filter transforms value and returns the result.
	Filter(value any) (any, error)
}

// Func adapts an ordinary function to the Filter interface. It is the
// "callable" form of a chain entry: chains holding Func entries behave
// identically to chains holding declared filter types, but cannot be
// persisted (see [Chain.State]).
type Func func(value any) (any, error)

// Filter calls fn(value).
func (fn Func) Filter(value any) (any, error) {
	return fn(value)
}

// Compile-time check that Func implements Filter.
var _ Filter = (Func)(nil)
