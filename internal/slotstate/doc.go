// Package slotstate defines the one-byte occupancy/balance tag stored
// alongside every value slot in the tree's flat storage.
//
// A slot is either empty (Invalid) or holds a value, in which case its
// state also records whether the subtree rooted at that slot is known
// to be perfectly full under the tree's current parity epoch (Heads or
// Tails) or not (Unsure). Flip and Merge give O(1) local recomputation
// of a parent's state from its children, which is what keeps tree growth
// amortized O(1) per element instead of O(log n).
package slotstate
