// Package diff computes which notifiable events occurred between the
// previously persisted notification state and a freshly fetched list
// of reservations. The engine is pure: no network, no persistence,
// no side effects beyond the returned events and updated snapshot.
package diff

import (
	"time"

	"github.com/google/uuid"

	"github.com/attireworks/wardrobe/internal/rental"
	"github.com/attireworks/wardrobe/internal/state"
)

// DefaultDeadlineWindow is how many days before a rental's end date
// deadline reminders start firing.
const DefaultDeadlineWindow = 3

// Engine runs the three detectors against a reservation snapshot.
// The zero value is usable and matches the historical behavior of the
// mobile client: a 3-day deadline window with reminders repeating on
// every pass.
type Engine struct {
	// DeadlineWindow overrides DefaultDeadlineWindow when positive.
	DeadlineWindow int

	// DedupDeadlines suppresses repeat deadline reminders for a
	// reservation once one has been emitted. Off by default to keep
	// the original daily-reminder behavior.
	DedupDeadlines bool

	// now is overridable in tests for stable event timestamps.
	now func() time.Time
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

func (e *Engine) window() int {
	if e.DeadlineWindow > 0 {
		return e.DeadlineWindow
	}
	return DefaultDeadlineWindow
}

func (e *Engine) newEvent(t Type, r *rental.Reservation) Event {
	return Event{
		ID:          uuid.New(),
		Type:        t,
		OccurredAt:  e.clock(),
		Reservation: r,
	}
}

// DetectNewPending emits one event per pending reservation whose ID
// has not been surfaced before, plus one aggregate event when a single
// pass produces more than one. The returned seen-set is the union of
// the prior set and all newly observed pending IDs; it never shrinks.
//
// Each reservation ID is announced at most once for the lifetime of
// the seen-set, no matter how many passes observe it as pending.
func (e *Engine) DetectNewPending(fetched []rental.Reservation, seen map[int64]bool) ([]Event, map[int64]bool) {
	updated := make(map[int64]bool, len(seen)+len(fetched))
	for id := range seen {
		updated[id] = true
	}

	var events []Event
	for i := range fetched {
		r := &fetched[i]
		if r.EffectiveStatus() != rental.StatusPending {
			continue
		}
		if updated[r.ID] {
			continue
		}
		updated[r.ID] = true
		events = append(events, e.newEvent(TypeNewReservation, r))
	}

	if len(events) > 1 {
		agg := e.newEvent(TypeMultipleNewReservations, nil)
		agg.Count = len(events)
		events = append(events, agg)
	}

	return events, updated
}

// DetectStatusChanges emits one event per reservation whose fetched
// status differs from the last persisted observation. A first sighting
// establishes the baseline without an event. The baseline is updated
// unconditionally for every fetched reservation, so running the
// detector twice against the same snapshot yields no events the
// second time.
func (e *Engine) DetectStatusChanges(fetched []rental.Reservation, last map[int64]rental.Status) ([]Event, map[int64]rental.Status) {
	updated := make(map[int64]rental.Status, len(last)+len(fetched))
	for id, st := range last {
		updated[id] = st
	}

	var events []Event
	for i := range fetched {
		r := &fetched[i]
		current := r.EffectiveStatus()
		previous, known := updated[r.ID]
		if known && previous != current {
			ev := e.newEvent(TypeStatusChange, r)
			ev.Previous = previous
			ev.Current = current
			events = append(events, ev)
		}
		updated[r.ID] = current
	}

	return events, updated
}

// DetectApproachingDeadlines emits an event for each approved
// reservation ending within the deadline window, measured in whole
// days from today's midnight. Reservations with unparseable end dates
// are skipped rather than failing the pass.
//
// Without DedupDeadlines the notified-set passes through untouched and
// reminders repeat on every pass inside the window, matching the
// original client. With it, each reservation's deadline is announced
// once.
func (e *Engine) DetectApproachingDeadlines(fetched []rental.Reservation, today time.Time, notified map[int64]bool) ([]Event, map[int64]bool) {
	updated := make(map[int64]bool, len(notified))
	for id := range notified {
		updated[id] = true
	}

	var events []Event
	for i := range fetched {
		r := &fetched[i]
		if r.EffectiveStatus() != rental.StatusApproved {
			continue
		}
		end, err := rental.ParseDate(r.EndDate)
		if err != nil {
			continue
		}
		days := rental.DaysUntil(today, end)
		if days < 0 || days > e.window() {
			continue
		}
		if e.DedupDeadlines {
			if updated[r.ID] {
				continue
			}
			updated[r.ID] = true
		}
		ev := e.newEvent(TypeDeadline, r)
		ev.DaysUntil = days
		events = append(events, ev)
	}

	return events, updated
}

// Run executes all three detectors against the same fetched snapshot
// and prior state, returning the merged event list and the complete
// updated snapshot. The caller persists the snapshot as one unit and
// presents the events; Run itself never touches storage.
func (e *Engine) Run(fetched []rental.Reservation, prior state.Snapshot, today time.Time) ([]Event, state.Snapshot) {
	newEvents, seen := e.DetectNewPending(fetched, prior.SeenPendingIDs)
	changeEvents, last := e.DetectStatusChanges(fetched, prior.LastKnownStatus)
	deadlineEvents, notified := e.DetectApproachingDeadlines(fetched, today, prior.NotifiedDeadlineIDs)

	events := make([]Event, 0, len(newEvents)+len(changeEvents)+len(deadlineEvents))
	events = append(events, newEvents...)
	events = append(events, changeEvents...)
	events = append(events, deadlineEvents...)

	return events, state.Snapshot{
		LastKnownStatus:     last,
		SeenPendingIDs:      seen,
		NotifiedDeadlineIDs: notified,
	}
}
