// Package state defines the locally persisted notification state and
// the store abstraction it survives restarts through.
package state

import (
	"github.com/attireworks/wardrobe/internal/rental"
)

// Snapshot is everything the diff engine remembers between passes.
// Detectors treat snapshots as immutable: they return fresh copies
// instead of mutating the input, so a failed pass leaves the persisted
// state untouched.
type Snapshot struct {
	// LastKnownStatus records the status last observed per reservation
	// ID, used to detect transitions.
	LastKnownStatus map[int64]rental.Status `json:"last_known_status"`

	// SeenPendingIDs holds reservations already surfaced as "new".
	// Grows monotonically; entries are never removed.
	SeenPendingIDs map[int64]bool `json:"seen_pending_ids"`

	// NotifiedDeadlineIDs holds reservations whose approaching deadline
	// has already been announced. Only consulted when deadline
	// de-duplication is enabled on the engine.
	NotifiedDeadlineIDs map[int64]bool `json:"notified_deadline_ids"`
}

// New returns an empty snapshot with all maps allocated.
func New() Snapshot {
	return Snapshot{
		LastKnownStatus:     make(map[int64]rental.Status),
		SeenPendingIDs:      make(map[int64]bool),
		NotifiedDeadlineIDs: make(map[int64]bool),
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		LastKnownStatus:     make(map[int64]rental.Status, len(s.LastKnownStatus)),
		SeenPendingIDs:      make(map[int64]bool, len(s.SeenPendingIDs)),
		NotifiedDeadlineIDs: make(map[int64]bool, len(s.NotifiedDeadlineIDs)),
	}
	for id, st := range s.LastKnownStatus {
		out.LastKnownStatus[id] = st
	}
	for id := range s.SeenPendingIDs {
		out.SeenPendingIDs[id] = true
	}
	for id := range s.NotifiedDeadlineIDs {
		out.NotifiedDeadlineIDs[id] = true
	}
	return out
}

// Normalize allocates any nil maps, e.g. after JSON decoding an older
// or partial snapshot.
func (s *Snapshot) Normalize() {
	if s.LastKnownStatus == nil {
		s.LastKnownStatus = make(map[int64]rental.Status)
	}
	if s.SeenPendingIDs == nil {
		s.SeenPendingIDs = make(map[int64]bool)
	}
	if s.NotifiedDeadlineIDs == nil {
		s.NotifiedDeadlineIDs = make(map[int64]bool)
	}
}
