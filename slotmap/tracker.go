package slotmap

import (
	"sync"

	"github.com/dsearch/dsearch/cmn/debug"
)

// Availability is the result of CheckAvailability: Some(current_version)
// servable-stable, Some(0) servable-but-must-filter-by-slot ("unstable"),
// or not-ok (contract violation / mid-import target), per spec.md SS4.C.
type Availability struct {
	Version  uint32
	Unstable bool
}

// Tracker holds the three disjoint slot-range sets (local,
// partially-available, fully-available-not-owned) and the monotonically
// increasing key_space_version (spec.md SS3).
type Tracker struct {
	mu               sync.RWMutex
	local            []Range
	partial          []Range
	fullyAvailable   []Range
	keySpaceVersion  uint32
}

func New() *Tracker { return &Tracker{} }

func (t *Tracker) Version() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.keySpaceVersion
}

func (t *Tracker) Local() []Range          { return t.snapshot(&t.local) }
func (t *Tracker) Partial() []Range        { return t.snapshot(&t.partial) }
func (t *Tracker) FullyAvailable() []Range { return t.snapshot(&t.fullyAvailable) }

func (t *Tracker) snapshot(set *[]Range) []Range {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Range, len(*set))
	copy(out, *set)
	return out
}

// SetLocal bootstraps the local set and bumps the version once, per
// spec.md SS4.C.
func (t *Tracker) SetLocal(ranges []Range) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.local = Canonicalize(ranges)
	t.keySpaceVersion++
}

// CheckAvailability implements spec.md SS4.C's three-way semantics.
func (t *Tracker) CheckAvailability(query []Range) (Availability, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	query = Canonicalize(query)

	if ContainsAll(t.local, query) && !OverlapsAny(query, t.partial) {
		return Availability{Version: t.keySpaceVersion}, true
	}
	servable := Union(t.local, t.fullyAvailable)
	if ContainsAll(servable, query) && (OverlapsAny(query, t.partial) || OverlapsAny(query, t.fullyAvailable)) {
		return Availability{Version: 0, Unstable: true}, true
	}
	return Availability{}, false
}

// CanAccessSlot reports whether slot is servable under the current
// topology (local ∪ fully-available), matching CheckAvailability's
// servability condition for a single slot.
func (t *Tracker) CanAccessSlot(slot uint16) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return ContainsSlot(t.local, slot) || ContainsSlot(t.fullyAvailable, slot)
}

//
// ASM transitions (spec.md SS3 SS4.C/D):
//
//   outside --(StartImport)--> partial --(CompleteImport)--> local
//   local --(CompleteMigration)--> fully_available
//   fully_available --(StartTrim)--> partial --(CompleteTrim)--> outside
//
// StartImport/CompleteImport/StartTrim bump key_space_version;
// CompleteMigration/CompleteTrim do not (spec.md SS3, SS8 invariant).
//

// StartImport moves ranges into partial. Overlap with local is a caller
// bug (spec.md SS4.C "Failure mode"): asserted, not silently corrected.
func (t *Tracker) StartImport(ranges []Range) {
	ranges = Canonicalize(ranges)
	t.mu.Lock()
	defer t.mu.Unlock()
	if OverlapsAny(ranges, t.local) {
		// caller bug (spec.md SS4.C): importing a range already owned
		// locally can never be correct, so this is a hard panic in every
		// build, not a debug-only assertion.
		panic("slotmap: StartImport: ranges overlap local")
	}
	debug.Assert(true) // invariant above always checked; debug hook kept for symmetry with other transitions
	t.partial = Union(t.partial, ranges)
	t.keySpaceVersion++
}

// CompleteImport moves ranges from partial into local.
func (t *Tracker) CompleteImport(ranges []Range) {
	ranges = Canonicalize(ranges)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.partial = Subtract(t.partial, ranges)
	t.local = Union(t.local, ranges)
	t.keySpaceVersion++
}

// CompleteMigration moves ranges from local into fully-available
// (post-migration, pre-trim: safe to read, unsafe to mutate). Does not
// change what is servable, so the version is untouched.
func (t *Tracker) CompleteMigration(ranges []Range) {
	ranges = Canonicalize(ranges)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.local = Subtract(t.local, ranges)
	t.fullyAvailable = Union(t.fullyAvailable, ranges)
}

// StartTrim moves ranges from fully-available into partial, ahead of a
// physical trim; this changes servability for a client that pinned to a
// stable version, so the version is bumped.
func (t *Tracker) StartTrim(ranges []Range) {
	ranges = Canonicalize(ranges)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fullyAvailable = Subtract(t.fullyAvailable, ranges)
	t.partial = Union(t.partial, ranges)
	t.keySpaceVersion++
}

// CompleteTrim drops ranges from partial entirely (outside); this frees
// resources only, it does not change what remains servable, so the
// version is untouched.
func (t *Tracker) CompleteTrim(ranges []Range) {
	ranges = Canonicalize(ranges)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.partial = Subtract(t.partial, ranges)
}
