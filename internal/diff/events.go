package diff

import (
	"time"

	"github.com/google/uuid"

	"github.com/attireworks/wardrobe/internal/rental"
)

// Type identifies the kind of notifiable event a diff pass produced.
type Type string

const (
	// TypeNewReservation fires once per reservation the first time it
	// is observed as pending.
	TypeNewReservation Type = "new_reservation"

	// TypeMultipleNewReservations is the aggregate emitted alongside
	// the individual events when a single pass surfaces more than one
	// new pending reservation.
	TypeMultipleNewReservations Type = "multiple_new_reservations"

	// TypeStatusChange fires when a reservation's status differs from
	// the last persisted observation.
	TypeStatusChange Type = "status_change"

	// TypeDeadline fires for approved reservations ending within the
	// deadline window.
	TypeDeadline Type = "deadline"
)

// Event is a single notifiable occurrence. It carries enough of the
// reservation to render a user-facing message without re-fetching.
type Event struct {
	ID          uuid.UUID           `json:"id"`
	Type        Type                `json:"type"`
	OccurredAt  time.Time           `json:"occurred_at"`
	Reservation *rental.Reservation `json:"reservation,omitempty"`

	// Previous and Current are set for status-change events.
	Previous rental.Status `json:"previous,omitempty"`
	Current  rental.Status `json:"current,omitempty"`

	// Count is set for the multiple-new-reservations aggregate and
	// counts events from the producing pass only, not cumulatively.
	Count int `json:"count,omitempty"`

	// DaysUntil is set for deadline events; 0 means the rental ends today.
	DaysUntil int `json:"days_until,omitempty"`
}
