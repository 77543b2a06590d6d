// Package engine implements the tree algorithms that interpret a
// storage.Storage's live prefix as an implicit, axis-rotating k-d tree:
// rotating-axis insertion with full-subtree displacement, equality
// lookup, per-axis minimum/maximum, and slot erasure.
//
// Every recursive entry point takes (axis, offset, node): axis is the
// dimension compared at node, offset is node's half-width (the distance
// to its direct children; offset == 1 marks the leaf frontier and
// offset == 0 marks a childless slot), and node is the slot's index in
// the flat arrays. Children of a node sit at node-offset and
// node+offset; descending halves offset and rotates axis by one mod K.
package engine
