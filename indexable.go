package kdtree

import "cmp"

// Indexable compares two values of type V along one of Dims() axes. Axis
// rotates through 0..Dims()-1 as the tree descends; implementations
// should treat axes outside that range as undefined behavior, matching
// the engine's own branch-free contract.
type Indexable[V any] interface {
	Dims() int
	Less(axis int, a, b V) bool
}

// IndexableFunc adapts a K and a per-axis comparator function into an
// Indexable, for callers who don't want to declare a named type.
type IndexableFunc[V any] struct {
	K        int
	LessFunc func(axis int, a, b V) bool
}

// Dims returns f.K.
func (f IndexableFunc[V]) Dims() int { return f.K }

// Less calls f.LessFunc.
func (f IndexableFunc[V]) Less(axis int, a, b V) bool { return f.LessFunc(axis, a, b) }

type accessorIndexable[V any, K cmp.Ordered] struct {
	dims     int
	accessor func(axis int, v V) K
}

func (a accessorIndexable[V, K]) Dims() int { return a.dims }

func (a accessorIndexable[V, K]) Less(axis int, x, y V) bool {
	return a.accessor(axis, x) < a.accessor(axis, y)
}

// NewAccessorIndexable builds an Indexable from a per-axis field
// accessor, for values whose coordinates are all the same ordered type
// K (e.g. a point struct with Coord(axis int) float64).
func NewAccessorIndexable[V any, K cmp.Ordered](dims int, accessor func(axis int, v V) K) Indexable[V] {
	return accessorIndexable[V, K]{dims: dims, accessor: accessor}
}
