package ports

// Source is indexable, length-bounded access to the examples of one domain
// for one split.
//
// Implementations must be safe for concurrent reads. Get must not change
// state observable by callers: repeated calls with the same index return
// equal values, and mutating a returned value does not affect later calls.
type Source interface {
	// Len returns the number of examples.
	Len() int

	// Get returns the payload at index. It returns an error matching
	// domain.ErrIndexOutOfRange when index is outside [0, Len()).
	Get(index int) (any, error)
}

// Transform is a pure, caller-supplied function applied to a domain payload.
type Transform func(any) (any, error)
