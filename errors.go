package kdtree

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTree is returned by operations that require at least one
	// value, such as Min and Max, when the tree currently holds none.
	ErrEmptyTree = errors.New("kdtree: tree is empty")

	// ErrDiagnosticsDisabled is returned by Tree.Diagnostics when the
	// tree was not constructed with WithDiagnostics.
	ErrDiagnosticsDisabled = errors.New("kdtree: diagnostics not enabled, use WithDiagnostics()")
)

// ErrInvalidAxis indicates an axis argument outside [0, Dims()).
//
// The core engine treats an out-of-range axis as undefined behavior, the
// same branch-free contract the original algorithm uses internally; the
// public API validates it instead, since an axis argument here typically
// comes from a caller rather than from the tree's own rotation logic.
type ErrInvalidAxis struct {
	Axis int
	Dims int
}

func (e *ErrInvalidAxis) Error() string {
	return fmt.Sprintf("kdtree: invalid axis %d for %d-dimensional index", e.Axis, e.Dims)
}
