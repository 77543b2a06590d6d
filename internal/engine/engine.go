package engine

import (
	"github.com/hupe1980/kdtree/internal/slotstate"
	"github.com/hupe1980/kdtree/internal/storage"
)

// Indexable compares two values along one of Dims() axes. Axis rotates
// through 0..Dims()-1 as the tree descends.
type Indexable[V any] interface {
	Dims() int
	Less(axis int, a, b V) bool
}

// Engine drives a storage.Storage's live prefix as an implicit k-d tree.
type Engine[V any] struct {
	storage   *storage.Storage[V]
	idx       Indexable[V]
	count     int
	fullState slotstate.State
}

// New builds an engine over a freshly allocated storage sized to
// capacityHint.
func New[V any](capacityHint int, idx Indexable[V]) *Engine[V] {
	return &Engine[V]{
		storage:   storage.New[V](capacityHint),
		idx:       idx,
		fullState: slotstate.Heads,
	}
}

// NewFromValues builds an engine directly from values via balanced
// per-axis median placement, producing a perfectly-shaped live prefix
// in one pass instead of len(values) individual singleInsert calls.
// values is reordered in place by the selection process; callers that
// need to preserve the original order must pass a copy.
func NewFromValues[V any](values []V, idx Indexable[V]) *Engine[V] {
	e := &Engine[V]{
		storage:   storage.New[V](len(values)),
		idx:       idx,
		fullState: slotstate.Heads,
	}
	if len(values) == 0 {
		return e
	}

	length := e.storage.Cap()
	e.storage.SetLen(length)
	e.count = len(values)
	e.placeBalanced(0, rootOffset(length), rootIndex(length), values)
	return e
}

// placeBalanced fills the subtree shaped by (axis, offset, node) with
// values, picking each node's own value as the rank-leftCount element
// under axis (via quickselect) so that remaining values split evenly
// between the two children, capped by each child's slot capacity
// (2*offset-1, the size of a complete subtree with that half-width). It
// returns the state the caller should record for this subtree:
// fullState if every slot within it ended up occupied, Invalid if none
// did, Unsure otherwise — the same reduction singleInsert performs via
// Merge after an ordinary insert.
func (e *Engine[V]) placeBalanced(axis, offset, node int, values []V) slotstate.State {
	if len(values) == 0 {
		return slotstate.Invalid
	}
	if offset == 0 {
		e.storage.SetValue(node, values[0])
		e.storage.SetState(node, e.fullState)
		return e.fullState
	}

	childAxis := incAxis(axis, e.idx.Dims())
	childOffset := offset / 2
	childCap := 2*offset - 1
	left, right := node-offset, node+offset

	remaining := len(values) - 1
	leftCount := remaining / 2
	if leftCount > childCap {
		// Unreachable given NewFromValues' sizing (total never exceeds
		// 2*childCap+1 at any node), kept as a defensive clamp.
		leftCount = childCap
	}
	rightCount := remaining - leftCount

	nthElement(values, leftCount, func(a, b V) bool { return e.idx.Less(axis, a, b) })
	nodeValue := values[leftCount]
	leftVals := values[:leftCount]
	rightVals := values[leftCount+1 : leftCount+1+rightCount]

	leftState := e.placeBalanced(childAxis, childOffset, left, leftVals)
	rightState := e.placeBalanced(childAxis, childOffset, right, rightVals)

	e.storage.SetValue(node, nodeValue)
	state := slotstate.Merge(slotstate.Merge(leftState, rightState), e.fullState)
	e.storage.SetState(node, state)
	return state
}

// nthElement partitions values in place (Lomuto scheme) so that
// values[k] holds the element that would occupy position k under less,
// with every earlier element <= it and every later element >= it.
func nthElement[V any](values []V, k int, less func(a, b V) bool) {
	lo, hi := 0, len(values)-1
	for lo < hi {
		p := partitionByRank(values, lo, hi, less)
		switch {
		case k < p:
			hi = p - 1
		case k > p:
			lo = p + 1
		default:
			return
		}
	}
}

func partitionByRank[V any](values []V, lo, hi int, less func(a, b V) bool) int {
	mid := (lo + hi) / 2
	values[mid], values[hi] = values[hi], values[mid]
	pivot := values[hi]

	store := lo
	for i := lo; i < hi; i++ {
		if less(values[i], pivot) {
			values[i], values[store] = values[store], values[i]
			store++
		}
	}
	values[store], values[hi] = values[hi], values[store]
	return store
}

func incAxis(axis, dims int) int {
	axis++
	if axis == dims {
		return 0
	}
	return axis
}

// rootOffset returns the half-width of the root of a live prefix of the
// given length.
func rootOffset(length int) int { return (length + 1) / 4 }

// rootIndex returns the slot index of the root of a live prefix of the
// given length.
func rootIndex(length int) int { return length / 2 }

// Len reports the number of values currently held.
func (e *Engine[V]) Len() int { return e.count }

// Cap reports the backing storage's slot capacity.
func (e *Engine[V]) Cap() int { return e.storage.Cap() }

// IsEmpty reports whether the tree holds no values.
func (e *Engine[V]) IsEmpty() bool { return e.count == 0 }

// PrefixLen reports the current live prefix length, for callers that
// iterate the flat layout directly.
func (e *Engine[V]) PrefixLen() int { return e.storage.Len() }

// SlotValue returns the value at slot i of the live prefix.
func (e *Engine[V]) SlotValue(i int) V { return e.storage.Value(i) }

// SlotValid reports whether slot i of the live prefix currently holds a
// value.
func (e *Engine[V]) SlotValid(i int) bool { return e.storage.IsValid(i) }

// SlotState returns the balance state byte of slot i.
func (e *Engine[V]) SlotState(i int) slotstate.State { return e.storage.State(i) }

// FullState returns the tree-wide token that a freshly-placed value is
// stamped with; it flips every time the live prefix grows or shrinks by
// one level.
func (e *Engine[V]) FullState() slotstate.State { return e.fullState }

// Clear empties the tree without releasing backing storage.
func (e *Engine[V]) Clear() {
	e.storage.Reset()
	e.count = 0
	e.fullState = slotstate.Heads
}

// Clone returns a deep, independent copy of the engine.
func (e *Engine[V]) Clone() *Engine[V] {
	return &Engine[V]{
		storage:   e.storage.Clone(),
		idx:       e.idx,
		count:     e.count,
		fullState: e.fullState,
	}
}

// Insert places v into the tree, growing the live prefix first if it is
// currently full, and returns the slot it landed in.
func (e *Engine[V]) Insert(v V) int {
	switch {
	case e.count == 0:
		e.storage.PrepareFirstInsert()
	case e.count == e.storage.Len():
		e.storage.Expand()
		e.fullState = e.fullState.Flip()
	}
	e.count++

	length := e.storage.Len()
	return e.singleInsert(0, rootOffset(length), rootIndex(length), v)
}

// singleInsert is the rotating-axis insertion primitive. offset is the
// half-width of node's subtree: offset == 0 means node is a childless
// slot, offset == 1 means node's two children are themselves leaves,
// and offset > 1 means node has a further interior subtree on each side.
func (e *Engine[V]) singleInsert(axis, offset, node int, value V) int {
	if offset == 0 || !e.storage.IsValid(node) {
		// Erase only clears a slot with children once both children are
		// empty, so an Invalid node heads an all-Invalid subtree and the
		// value can take the node itself.
		state := e.fullState
		if offset > 0 {
			state = slotstate.Unsure
		}
		e.storage.SetValue(node, value)
		e.storage.SetState(node, state)
		return node
	}

	left, right := node-offset, node+offset

	if offset == 1 {
		return e.singleInsertLeafFrontier(axis, node, left, right, value)
	}

	childAxis := incAxis(axis, e.idx.Dims())
	childOffset := offset / 2

	var insert int
	switch {
	case e.idx.Less(axis, value, e.storage.Value(node)):
		if e.storage.State(left) == e.fullState {
			e.singleInsert(childAxis, childOffset, right, e.storage.Value(node))
			m := e.maxAxis(axis, childAxis, childOffset, left)
			if e.idx.Less(axis, value, e.storage.Value(m)) {
				e.storage.SetValue(node, e.storage.Value(m))
				e.eraseKnownSlot(childAxis, childOffset, left, m)
				insert = e.singleInsert(childAxis, childOffset, left, value)
			} else {
				e.storage.SetValue(node, value)
				insert = node
			}
		} else {
			insert = e.singleInsert(childAxis, childOffset, left, value)
		}
	case e.idx.Less(axis, e.storage.Value(node), value):
		if e.storage.State(right) == e.fullState {
			e.singleInsert(childAxis, childOffset, left, e.storage.Value(node))
			m := e.minAxis(axis, childAxis, childOffset, right)
			if e.idx.Less(axis, e.storage.Value(m), value) {
				e.storage.SetValue(node, e.storage.Value(m))
				e.eraseKnownSlot(childAxis, childOffset, right, m)
				insert = e.singleInsert(childAxis, childOffset, right, value)
			} else {
				e.storage.SetValue(node, value)
				insert = node
			}
		} else {
			insert = e.singleInsert(childAxis, childOffset, right, value)
		}
	default:
		// Equal on this axis: recurse into whichever side is not
		// already full, preferring right when both are open.
		if e.storage.State(right) == e.fullState {
			insert = e.singleInsert(childAxis, childOffset, left, value)
		} else {
			insert = e.singleInsert(childAxis, childOffset, right, value)
		}
	}

	state := slotstate.Merge(e.storage.State(left), e.storage.State(right))
	if state == slotstate.Invalid {
		state = slotstate.Unsure
	}
	e.storage.SetState(node, state)
	return insert
}

// singleInsertLeafFrontier handles offset == 1: left and right are
// themselves leaf slots with no children of their own.
func (e *Engine[V]) singleInsertLeafFrontier(axis, node, left, right int, value V) int {
	if e.idx.Less(axis, value, e.storage.Value(node)) {
		if e.storage.IsValid(left) {
			e.storage.SetValue(right, e.storage.Value(node))
			e.storage.SetState(right, e.fullState)
			e.storage.SetState(node, e.fullState)
			if e.idx.Less(axis, value, e.storage.Value(left)) {
				e.storage.SetValue(node, e.storage.Value(left))
				e.storage.SetValue(left, value)
				return left
			}
			e.storage.SetValue(node, value)
			return node
		}
		e.storage.SetValue(left, value)
		e.storage.SetState(left, e.fullState)
		if e.storage.IsValid(right) {
			e.storage.SetState(node, e.fullState)
		}
		return left
	}

	if e.storage.IsValid(right) {
		e.storage.SetValue(left, e.storage.Value(node))
		e.storage.SetState(left, e.fullState)
		e.storage.SetState(node, e.fullState)
		if e.idx.Less(axis, e.storage.Value(right), value) {
			e.storage.SetValue(node, e.storage.Value(right))
			e.storage.SetValue(right, value)
			return right
		}
		e.storage.SetValue(node, value)
		return node
	}
	e.storage.SetValue(right, value)
	e.storage.SetState(right, e.fullState)
	if e.storage.IsValid(left) {
		e.storage.SetState(node, e.fullState)
	}
	return right
}

// minAxis returns the slot index minimal on fixedAxis within the
// subtree rooted at (node, offset, nodeAxis).
func (e *Engine[V]) minAxis(fixedAxis, nodeAxis, offset, node int) int {
	best := node
	for offset > 1 {
		childAxis := incAxis(nodeAxis, e.idx.Dims())
		childOffset := offset / 2
		left := node - offset

		child := e.minAxis(fixedAxis, childAxis, childOffset, left)
		if e.storage.IsValid(child) && !e.idx.Less(fixedAxis, e.storage.Value(best), e.storage.Value(child)) {
			best = child
		}
		if nodeAxis == fixedAxis {
			return best
		}

		right := node + offset
		if !e.storage.IsValid(right) {
			return best
		}
		if !e.idx.Less(fixedAxis, e.storage.Value(best), e.storage.Value(right)) {
			best = right
		}

		node, nodeAxis, offset = right, childAxis, childOffset
	}
	if offset == 1 {
		left, right := node-1, node+1
		if e.storage.IsValid(left) && !e.idx.Less(fixedAxis, e.storage.Value(best), e.storage.Value(left)) {
			best = left
		}
		if e.storage.IsValid(right) && !e.idx.Less(fixedAxis, e.storage.Value(best), e.storage.Value(right)) {
			best = right
		}
	}
	return best
}

// maxAxis is minAxis's dual, favoring the right subtree.
func (e *Engine[V]) maxAxis(fixedAxis, nodeAxis, offset, node int) int {
	best := node
	for offset > 1 {
		childAxis := incAxis(nodeAxis, e.idx.Dims())
		childOffset := offset / 2
		right := node + offset

		child := e.maxAxis(fixedAxis, childAxis, childOffset, right)
		if e.storage.IsValid(child) && !e.idx.Less(fixedAxis, e.storage.Value(child), e.storage.Value(best)) {
			best = child
		}
		if nodeAxis == fixedAxis {
			return best
		}

		left := node - offset
		if !e.storage.IsValid(left) {
			return best
		}
		if !e.idx.Less(fixedAxis, e.storage.Value(left), e.storage.Value(best)) {
			best = left
		}

		node, nodeAxis, offset = left, childAxis, childOffset
	}
	if offset == 1 {
		left, right := node-1, node+1
		if e.storage.IsValid(left) && !e.idx.Less(fixedAxis, e.storage.Value(left), e.storage.Value(best)) {
			best = left
		}
		if e.storage.IsValid(right) && !e.idx.Less(fixedAxis, e.storage.Value(right), e.storage.Value(best)) {
			best = right
		}
	}
	return best
}

// Min returns the slot holding the minimum value on axis, or false if
// the tree is empty.
func (e *Engine[V]) Min(axis int) (int, bool) {
	if e.count == 0 {
		return 0, false
	}
	length := e.storage.Len()
	return e.minAxis(axis, 0, rootOffset(length), rootIndex(length)), true
}

// Max returns the slot holding the maximum value on axis, or false if
// the tree is empty.
func (e *Engine[V]) Max(axis int) (int, bool) {
	if e.count == 0 {
		return 0, false
	}
	length := e.storage.Len()
	return e.maxAxis(axis, 0, rootOffset(length), rootIndex(length)), true
}

// Find returns the slot holding a value equal to v on every axis, or
// false if none is present.
func (e *Engine[V]) Find(v V) (int, bool) {
	if e.count == 0 {
		return 0, false
	}
	length := e.storage.Len()
	return e.findRec(0, rootOffset(length), rootIndex(length), v)
}

func (e *Engine[V]) findRec(nodeAxis, offset, node int, val V) (int, bool) {
	for e.storage.IsValid(node) {
		leftOnly := e.idx.Less(nodeAxis, val, e.storage.Value(node))
		rightOnly := e.idx.Less(nodeAxis, e.storage.Value(node), val)
		if !leftOnly && !rightOnly && e.equalOnOtherAxes(nodeAxis, node, val) {
			return node, true
		}
		if offset == 0 {
			break
		}

		childAxis := incAxis(nodeAxis, e.idx.Dims())
		childOffset := offset / 2
		left, right := node-offset, node+offset

		if !rightOnly {
			if slot, ok := e.findRec(childAxis, childOffset, left, val); ok {
				return slot, true
			}
		}
		if leftOnly {
			break
		}
		node, nodeAxis, offset = right, childAxis, childOffset
	}
	return 0, false
}

func (e *Engine[V]) equalOnOtherAxes(skipAxis, node int, val V) bool {
	for ax := 0; ax < e.idx.Dims(); ax++ {
		if ax == skipAxis {
			continue
		}
		if e.idx.Less(ax, e.storage.Value(node), val) || e.idx.Less(ax, val, e.storage.Value(node)) {
			return false
		}
	}
	return true
}

// Erase removes one occurrence of v, if present, and reports whether a
// value was removed.
func (e *Engine[V]) Erase(v V) bool {
	if e.count == 0 {
		return false
	}
	length := e.storage.Len()
	target, ok := e.findRec(0, rootOffset(length), rootIndex(length), v)
	if !ok {
		return false
	}
	// Walking eraseKnownSlot from the root rather than straight to
	// target means every ancestor on the path has its state re-merged
	// on the way back up, the same way singleInsert's interior branch
	// does after a displacement.
	e.eraseKnownSlot(0, rootOffset(length), rootIndex(length), target)
	e.count--
	return true
}

// eraseKnownSlot removes the slot at index target, known to currently
// hold a value, from the subtree rooted at (node, offset, axis).
//
// When target == node and node's right subtree is non-empty, removal
// displaces the right subtree's minimum on this axis into node and
// recursively removes that slot — the invariant-preserving displacement
// insert's full-subtree case always uses (the right subtree is
// guaranteed non-empty whenever insert calls this, since it only ever
// targets a subtree it already knows is full; Erase can reach subtrees
// that are not).
//
// When target == node, its right subtree is empty, and its left
// subtree is not, removal mirrors the other case: it displaces the left
// subtree's maximum on this axis into node and recursively removes that
// slot. Promoting anything other than the left subtree's own per-axis
// maximum (e.g. an arbitrary element of it) would break the invariant
// that every left descendant compares strictly less than node on axis.
func (e *Engine[V]) eraseKnownSlot(axis, offset, node, target int) {
	if node != target {
		childAxis := incAxis(axis, e.idx.Dims())
		childOffset := offset / 2
		left, right := node-offset, node+offset
		if target < node {
			e.eraseKnownSlot(childAxis, childOffset, left, target)
		} else {
			e.eraseKnownSlot(childAxis, childOffset, right, target)
		}
		state := slotstate.Merge(e.storage.State(left), e.storage.State(right))
		if state == slotstate.Invalid {
			// node still holds its own value even though both children
			// are now empty.
			state = slotstate.Unsure
		}
		e.storage.SetState(node, state)
		return
	}

	if offset == 0 {
		e.clearSlot(node)
		return
	}

	childAxis := incAxis(axis, e.idx.Dims())
	childOffset := offset / 2
	left, right := node-offset, node+offset

	switch {
	case e.storage.IsValid(right):
		m := e.minAxis(axis, childAxis, childOffset, right)
		e.storage.SetValue(node, e.storage.Value(m))
		e.eraseKnownSlot(childAxis, childOffset, right, m)
	case e.storage.IsValid(left):
		m := e.maxAxis(axis, childAxis, childOffset, left)
		e.storage.SetValue(node, e.storage.Value(m))
		e.eraseKnownSlot(childAxis, childOffset, left, m)
	default:
		e.clearSlot(node)
		return
	}
	e.storage.SetState(node, slotstate.Unsure)
}

func (e *Engine[V]) clearSlot(node int) {
	var zero V
	e.storage.SetValue(node, zero)
	e.storage.SetState(node, slotstate.Invalid)
}

// Shrink halves the live prefix via Storage.Collapse, but only when
// doing so provably discards no live value: every slot at an even index
// must currently be Invalid. It reports whether a collapse happened.
//
// A full Expand always leaves even slots Invalid, but subsequent inserts
// are free to land values at any offset, so that property does not hold
// in general after real use; this guard keeps Shrink safe rather than
// assuming it.
func (e *Engine[V]) Shrink() bool {
	length := e.storage.Len()
	if length <= 1 {
		return false
	}
	for i := 0; i < length; i += 2 {
		if e.storage.IsValid(i) {
			return false
		}
	}
	e.storage.Collapse()
	e.fullState = e.fullState.Flip()
	return true
}
