// Package kdtree implements a static-layout k-dimensional search index:
// an implicit, heap-style k-d tree stored in two parallel flat slices
// rather than linked nodes, supporting insert, find, erase, and
// per-axis minimum/maximum in a single owning goroutine.
package kdtree

import (
	"iter"

	"github.com/hupe1980/kdtree/internal/engine"
)

// Tree is a static-layout k-dimensional search index over values of type
// V, compared along Indexable's axes. A Tree is not safe for concurrent
// use; callers needing concurrency must provide their own synchronization.
type Tree[V any] struct {
	engine *engine.Engine[V]
	idx    Indexable[V]
	opts   *options
}

// Cursor identifies a slot within a Tree's flat live prefix, returned by
// All for callers that want the raw slot index alongside the value,
// e.g. to correlate with Diagnostics. All yields a Cursor for every slot
// in the live prefix, including Invalid ones, exposing the flat layout
// deliberately rather than filtering it; callers must gate on IsValid
// before trusting Value, which holds stale, meaningless data for an
// Invalid slot.
type Cursor[V any] struct {
	Slot  int
	Value V
	valid bool
}

// IsValid reports whether the slot currently holds a live value.
func (c Cursor[V]) IsValid() bool { return c.valid }

// New creates an empty Tree with no pre-sized storage; the first Insert
// lazily provisions a single slot.
func New[V any](idx Indexable[V], optFns ...Option) *Tree[V] {
	return NewWithCapacity[V](idx, 0, optFns...)
}

// NewWithCapacity creates an empty Tree whose backing storage is
// pre-sized to the smallest supported capacity >= capacityHint,
// avoiding reallocation during the first several inserts.
func NewWithCapacity[V any](idx Indexable[V], capacityHint int, optFns ...Option) *Tree[V] {
	o := defaultOptions()
	o.capacityHint = capacityHint
	for _, fn := range optFns {
		fn(o)
	}
	return &Tree[V]{
		engine: engine.New[V](o.capacityHint, idx),
		idx:    idx,
		opts:   o,
	}
}

// Insert places v into the tree and returns its slot index. Duplicate
// values (equal on every axis) are permitted.
func (t *Tree[V]) Insert(v V) int {
	slot := t.engine.Insert(v)
	t.opts.logger.LogInsert(t.idx.Dims(), t.engine.Len())
	return slot
}

// Find reports whether a value equal to v on every axis is present, and
// returns the stored copy if so.
func (t *Tree[V]) Find(v V) (V, bool) {
	slot, ok := t.engine.Find(v)
	t.opts.logger.LogFind(ok)
	if !ok {
		var zero V
		return zero, false
	}
	return t.engine.SlotValue(slot), true
}

// Contains reports whether a value equal to v on every axis is present.
func (t *Tree[V]) Contains(v V) bool {
	_, ok := t.engine.Find(v)
	return ok
}

// Erase removes one occurrence of v, if present, and reports whether a
// value was removed.
func (t *Tree[V]) Erase(v V) bool {
	found := t.engine.Erase(v)
	t.opts.logger.LogErase(found)
	return found
}

// Min returns the value with the minimum coordinate on axis. It returns
// ErrInvalidAxis if axis is out of range, or ErrEmptyTree if the tree
// holds no values.
func (t *Tree[V]) Min(axis int) (V, error) {
	var zero V
	if axis < 0 || axis >= t.idx.Dims() {
		return zero, &ErrInvalidAxis{Axis: axis, Dims: t.idx.Dims()}
	}
	slot, ok := t.engine.Min(axis)
	if !ok {
		return zero, ErrEmptyTree
	}
	return t.engine.SlotValue(slot), nil
}

// Max returns the value with the maximum coordinate on axis. It returns
// ErrInvalidAxis if axis is out of range, or ErrEmptyTree if the tree
// holds no values.
func (t *Tree[V]) Max(axis int) (V, error) {
	var zero V
	if axis < 0 || axis >= t.idx.Dims() {
		return zero, &ErrInvalidAxis{Axis: axis, Dims: t.idx.Dims()}
	}
	slot, ok := t.engine.Max(axis)
	if !ok {
		return zero, ErrEmptyTree
	}
	return t.engine.SlotValue(slot), nil
}

// Clear empties the tree without releasing backing storage.
func (t *Tree[V]) Clear() { t.engine.Clear() }

// Len reports the number of values currently held.
func (t *Tree[V]) Len() int { return t.engine.Len() }

// Cap reports the backing storage's slot capacity.
func (t *Tree[V]) Cap() int { return t.engine.Cap() }

// IsEmpty reports whether the tree holds no values.
func (t *Tree[V]) IsEmpty() bool { return t.engine.IsEmpty() }

// Shrink halves the live prefix when doing so provably discards no live
// value, and reports whether it did. See Engine.Shrink for the exact
// safety condition.
func (t *Tree[V]) Shrink() bool {
	collapsed := t.engine.Shrink()
	t.opts.logger.LogShrink(collapsed)
	return collapsed
}

// Clone returns a deep, independent copy of the tree.
func (t *Tree[V]) Clone() *Tree[V] {
	return &Tree[V]{
		engine: t.engine.Clone(),
		idx:    t.idx,
		opts:   t.opts,
	}
}

// All iterates every slot of the live prefix in slot order, including
// Invalid ones; callers that only want live values must gate on
// Cursor.IsValid themselves. Slot order is an implementation detail of
// the flat layout, not sorted by any axis.
func (t *Tree[V]) All() iter.Seq[Cursor[V]] {
	return func(yield func(Cursor[V]) bool) {
		length := t.engine.PrefixLen()
		for i := 0; i < length; i++ {
			cursor := Cursor[V]{Slot: i, Value: t.engine.SlotValue(i), valid: t.engine.SlotValid(i)}
			if !yield(cursor) {
				return
			}
		}
	}
}

// Diagnostics returns a read-only introspection snapshot of the tree's
// slot layout. It returns ErrDiagnosticsDisabled unless the tree was
// built with WithDiagnostics.
func (t *Tree[V]) Diagnostics() (*Diagnostics, error) {
	if !t.opts.diagnostics {
		return nil, ErrDiagnosticsDisabled
	}
	return newDiagnostics(t), nil
}

// NewFromSlice builds a Tree directly from values via balanced per-axis
// median placement (engine.NewFromValues): at each level it selects the
// rank-k element under that level's axis via quickselect, so the
// backing storage ends up perfectly shaped in one O(n log n) pass
// instead of len(values) individual Insert displacement dances.
//
// values is not modified; NewFromSlice copies it before reordering.
func NewFromSlice[V any](values []V, idx Indexable[V], optFns ...Option) *Tree[V] {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(o)
	}
	buf := make([]V, len(values))
	copy(buf, values)
	return &Tree[V]{
		engine: engine.NewFromValues[V](buf, idx),
		idx:    idx,
		opts:   o,
	}
}
