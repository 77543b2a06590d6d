package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intAxis struct{}

func (intAxis) Dims() int                    { return 1 }
func (intAxis) Less(_ int, a, b int) bool    { return a < b }

type point struct{ X, Y int }

type pointAxis struct{}

func (pointAxis) Dims() int { return 2 }
func (pointAxis) Less(axis int, a, b point) bool {
	if axis == 0 {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// verifySubtree walks (node, offset, axis) checking that every valid
// left-descendant compares strictly less than node on axis, and every
// valid right-descendant compares not-less, recursing with the rotated
// axis throughout.
func verifySubtree(t *testing.T, e *Engine[int], axis, offset, node int) {
	t.Helper()
	if !e.SlotValid(node) || offset == 0 {
		return
	}
	childAxis := incAxis(axis, e.idx.Dims())
	childOffset := offset / 2
	left, right := node-offset, node+offset

	checkSide(t, e, axis, childAxis, childOffset, left, node, true)
	checkSide(t, e, axis, childAxis, childOffset, right, node, false)
}

func checkSide(t *testing.T, e *Engine[int], axis, childAxis, childOffset, child, node int, mustBeLess bool) {
	t.Helper()
	if !e.SlotValid(child) {
		return
	}
	if mustBeLess {
		assert.True(t, e.idx.Less(axis, e.SlotValue(child), e.SlotValue(node)),
			"left descendant %d (%v) must be < node %d (%v) on axis %d",
			child, e.SlotValue(child), node, e.SlotValue(node), axis)
	} else {
		assert.False(t, e.idx.Less(axis, e.SlotValue(child), e.SlotValue(node)),
			"right descendant %d (%v) must be >= node %d (%v) on axis %d",
			child, e.SlotValue(child), node, e.SlotValue(node), axis)
	}
	verifySubtree(t, e, childAxis, childOffset, child)
}

func checkInvariant(t *testing.T, e *Engine[int]) {
	t.Helper()
	length := e.PrefixLen()
	if length == 0 {
		return
	}
	verifySubtree(t, e, 0, rootOffset(length), rootIndex(length))
}

func TestInsertThenFindSingle(t *testing.T) {
	e := New[int](0, intAxis{})
	e.Insert(42)
	slot, ok := e.Find(42)
	require.True(t, ok)
	assert.Equal(t, 42, e.SlotValue(slot))
	_, ok = e.Find(7)
	assert.False(t, ok)
}

func TestInsertAscendingMaintainsInvariant(t *testing.T) {
	e := New[int](0, intAxis{})
	for i := 1; i <= 30; i++ {
		e.Insert(i)
	}
	assert.Equal(t, 30, e.Len())
	checkInvariant(t, e)
	for i := 1; i <= 30; i++ {
		_, ok := e.Find(i)
		assert.True(t, ok, "value %d must be found", i)
	}
}

func TestInsertDescendingMaintainsInvariant(t *testing.T) {
	e := New[int](0, intAxis{})
	for i := 30; i >= 1; i-- {
		e.Insert(i)
	}
	assert.Equal(t, 30, e.Len())
	checkInvariant(t, e)
	for i := 1; i <= 30; i++ {
		_, ok := e.Find(i)
		assert.True(t, ok, "value %d must be found", i)
	}
}

func TestInsertSameValueRepeatedly(t *testing.T) {
	e := New[int](0, intAxis{})
	for i := 0; i < 11; i++ {
		e.Insert(2)
	}
	assert.Equal(t, 11, e.Len())
	checkInvariant(t, e)
	_, ok := e.Find(2)
	assert.True(t, ok)
}

func TestMinMaxAscending(t *testing.T) {
	e := New[int](0, intAxis{})
	for i := 1; i <= 30; i++ {
		e.Insert(i)
	}
	minSlot, ok := e.Min(0)
	require.True(t, ok)
	assert.Equal(t, 1, e.SlotValue(minSlot))

	maxSlot, ok := e.Max(0)
	require.True(t, ok)
	assert.Equal(t, 30, e.SlotValue(maxSlot))
}

func TestMinMaxEmptyTree(t *testing.T) {
	e := New[int](0, intAxis{})
	_, ok := e.Min(0)
	assert.False(t, ok)
	_, ok = e.Max(0)
	assert.False(t, ok)
}

func Test2DInsertAndFind(t *testing.T) {
	e := New[point](0, pointAxis{})
	pts := []point{{3, 1}, {1, 4}, {4, 1}, {1, 5}, {9, 2}, {6, 5}, {3, 5}}
	for _, p := range pts {
		e.Insert(p)
	}
	for _, p := range pts {
		_, ok := e.Find(p)
		assert.True(t, ok, "point %v must be found", p)
	}
	_, ok := e.Find(point{0, 0})
	assert.False(t, ok)
}

func TestCapacityFollowsFtzRounding(t *testing.T) {
	e := New[int](10, intAxis{})
	assert.Equal(t, 15, e.Cap())
	e.Insert(1)
	assert.Equal(t, 1, e.PrefixLen())
	assert.Equal(t, 15, e.Cap(), "first insert into pre-sized storage must not grow capacity")
}

func TestEraseRemovesValue(t *testing.T) {
	e := New[int](0, intAxis{})
	for i := 1; i <= 20; i++ {
		e.Insert(i)
	}
	ok := e.Erase(10)
	require.True(t, ok)
	assert.Equal(t, 19, e.Len())
	_, found := e.Find(10)
	assert.False(t, found)
	checkInvariant(t, e)
	checkStateConsistency(t, e)

	for _, v := range []int{1, 5, 15, 20} {
		_, found := e.Find(v)
		assert.True(t, found, "value %d must survive erase of 10", v)
	}
}

// walkStateConsistency recurses (offset, node) bottom-up, asserting that a
// slot carries fullState exactly when every descendant slot in the live
// prefix is non-Invalid, and reports whether that held for this subtree.
func walkStateConsistency(t *testing.T, e *Engine[int], offset, node int) bool {
	t.Helper()
	if !e.SlotValid(node) {
		return false
	}
	full := true
	if offset > 0 {
		left, right := node-offset, node+offset
		leftFull := walkStateConsistency(t, e, offset/2, left)
		rightFull := walkStateConsistency(t, e, offset/2, right)
		full = leftFull && rightFull
	}
	if full {
		assert.Equal(t, e.FullState(), e.SlotState(node), "slot %d must be fullState: its whole subtree is valid", node)
	} else {
		assert.NotEqual(t, e.FullState(), e.SlotState(node), "slot %d must not be fullState: it has an Invalid descendant", node)
	}
	return full
}

func checkStateConsistency(t *testing.T, e *Engine[int]) {
	t.Helper()
	length := e.PrefixLen()
	if length == 0 {
		return
	}
	walkStateConsistency(t, e, rootOffset(length), rootIndex(length))
}

func TestEraseLeftSubtreeRebuildPreservesInvariant(t *testing.T) {
	e := New[int](0, intAxis{})
	for _, v := range []int{10, 5, 3, 1} {
		e.Insert(v)
	}
	require.True(t, e.Erase(10))
	require.True(t, e.Erase(5))
	assert.Equal(t, 2, e.Len())
	checkInvariant(t, e)
	checkStateConsistency(t, e)
	for _, v := range []int{3, 1} {
		_, found := e.Find(v)
		assert.True(t, found, "value %d must survive erase of 10 and 5", v)
	}
}

func TestEraseUpdatesAncestorFullState(t *testing.T) {
	e := New[int](0, intAxis{})
	for i := 1; i <= 20; i++ {
		e.Insert(i)
	}
	checkStateConsistency(t, e)

	require.True(t, e.Erase(3))
	assert.Equal(t, 19, e.Len())
	checkInvariant(t, e)
	checkStateConsistency(t, e)
}

func TestEraseMissingValueReportsFalse(t *testing.T) {
	e := New[int](0, intAxis{})
	e.Insert(1)
	assert.False(t, e.Erase(99))
	assert.Equal(t, 1, e.Len())
}

func TestEraseDownToEmpty(t *testing.T) {
	e := New[int](0, intAxis{})
	values := []int{5, 3, 8, 1, 4, 7, 9}
	for _, v := range values {
		e.Insert(v)
	}
	for _, v := range values {
		require.True(t, e.Erase(v), "erase of %d must succeed", v)
		checkInvariant(t, e)
		checkStateConsistency(t, e)
	}
	assert.Equal(t, 0, e.Len())
}

func TestClearResetsTree(t *testing.T) {
	e := New[int](0, intAxis{})
	for i := 1; i <= 10; i++ {
		e.Insert(i)
	}
	e.Clear()
	assert.Equal(t, 0, e.Len())
	assert.Equal(t, 0, e.PrefixLen())
	_, ok := e.Find(5)
	assert.False(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	e := New[int](0, intAxis{})
	for i := 1; i <= 10; i++ {
		e.Insert(i)
	}
	clone := e.Clone()
	clone.Insert(999)
	assert.Equal(t, 10, e.Len())
	assert.Equal(t, 11, clone.Len())
	_, ok := e.Find(999)
	assert.False(t, ok)
	_, ok = clone.Find(999)
	assert.True(t, ok)
}

func TestShrinkNoOpOnSingleton(t *testing.T) {
	e := New[int](0, intAxis{})
	e.Insert(1)
	assert.False(t, e.Shrink())
}

func TestNewFromValuesContainsEveryValue(t *testing.T) {
	values := []int{15, 3, 22, 1, 9, 27, 6, 18, 30, 2, 11, 25, 4}
	buf := make([]int, len(values))
	copy(buf, values)

	e := NewFromValues[int](buf, intAxis{})
	assert.Equal(t, len(values), e.Len())
	checkInvariant(t, e)
	for _, v := range values {
		_, ok := e.Find(v)
		assert.True(t, ok, "value %d must be found", v)
	}
}

func TestNewFromValuesSizesLikeSequentialInsert(t *testing.T) {
	buf := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	bulk := NewFromValues[int](buf, intAxis{})

	sequential := New[int](0, intAxis{})
	for _, v := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
		sequential.Insert(v)
	}

	assert.Equal(t, sequential.PrefixLen(), bulk.PrefixLen())
	assert.Equal(t, sequential.Cap(), bulk.Cap())
}

func TestNewFromValuesEmpty(t *testing.T) {
	e := NewFromValues[int](nil, intAxis{})
	assert.Equal(t, 0, e.Len())
	assert.True(t, e.IsEmpty())
}

func TestShrinkNoOpWhenEvenSlotsOccupied(t *testing.T) {
	e := New[int](0, intAxis{})
	for i := 1; i <= 10; i++ {
		e.Insert(i)
	}
	// Real usage fills even slots too, so Shrink must refuse rather than
	// silently drop data.
	assert.False(t, e.Shrink())
	assert.Equal(t, 10, e.Len())
}
