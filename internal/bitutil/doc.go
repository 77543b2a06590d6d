// Package bitutil provides small, branch-free bit manipulation primitives
// used to size the tree's flat storage.
//
// Ftz ("fill trailing zeros") rounds a capacity hint up to the nearest
// value of the form 2^n-1, which is exactly the node count of a complete
// binary tree of some depth n. This lets the storage layer allocate the
// smallest array that can hold a perfectly balanced implicit tree.
package bitutil
