package kdtree

import "github.com/RoaringBitmap/roaring/v2"

// Diagnostics offers read-only introspection into a Tree's slot layout.
// It is built lazily from a full scan of the live prefix and never
// affects insert, find, or erase paths; it exists for tests and offline
// tooling that want to inspect the state-byte balance invariant rather
// than trust it blindly.
type Diagnostics struct {
	valid     *roaring.Bitmap
	fullState *roaring.Bitmap
}

func newDiagnostics[V any](t *Tree[V]) *Diagnostics {
	valid := roaring.New()
	full := roaring.New()

	length := t.engine.PrefixLen()
	fs := t.engine.FullState()
	for i := 0; i < length; i++ {
		if t.engine.SlotValid(i) {
			valid.Add(uint32(i))
		}
		if t.engine.SlotState(i) == fs {
			full.Add(uint32(i))
		}
	}
	return &Diagnostics{valid: valid, fullState: full}
}

// ValidSlots returns the set of slot indices currently holding a value.
func (d *Diagnostics) ValidSlots() *roaring.Bitmap { return d.valid.Clone() }

// FullStateSlots returns the set of slot indices currently tagged with
// the tree-wide full_state token, the state a freshly placed value is
// stamped with.
func (d *Diagnostics) FullStateSlots() *roaring.Bitmap { return d.fullState.Clone() }

// ValidCount returns the number of valid slots, which must always equal
// the owning Tree's Len().
func (d *Diagnostics) ValidCount() uint64 { return d.valid.GetCardinality() }
