// Package storage implements the tree's paired flat arrays: a value slice
// and a parallel state slice, always the same length, addressed by a
// common integer slot index.
//
// The live prefix of both slices is interpreted by the engine package as
// an implicit (heap-style) binary tree; storage itself only knows how to
// grow that prefix in place (Expand) or shrink it (Collapse), both O(n)
// single-pass transforms that never allocate a third buffer. Growth
// doubles-plus-one the live prefix length, matching the node count of a
// complete binary tree one level deeper; when the backing slices still
// have room the transform runs in place, otherwise it allocates fresh
// slices sized to the next capacity tier and interleaves into them.
package storage
