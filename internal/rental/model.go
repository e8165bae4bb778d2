// Package rental holds the domain model shared with the costume rental backend.
package rental

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used by the backend for
// reservation start and end dates.
const DateLayout = "2006-01-02"

// Status is the lifecycle state of a reservation. The backend owns
// transitions; this service only observes them.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Costume mirrors the backend costume record.
type Costume struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Size  string  `json:"size"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// User mirrors the backend user record.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Reservation is a date-ranged booking of a costume as returned by the
// backend. Costume and User are denormalized references the server may
// omit; callers must tolerate them being nil.
type Reservation struct {
	ID        int64    `json:"id"`
	CostumeID int64    `json:"costume_id"`
	UserID    int64    `json:"user_id"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Status    Status   `json:"status"`
	Costume   *Costume `json:"costume,omitempty"`
	User      *User    `json:"user,omitempty"`
}

// EffectiveStatus returns the reservation status, treating a missing
// status as pending.
func (r Reservation) EffectiveStatus() Status {
	if r.Status == "" {
		return StatusPending
	}
	return r.Status
}

// CostumeLabel returns the costume name, or an identifier-based
// fallback when the server omitted the denormalized record.
func (r Reservation) CostumeLabel() string {
	if r.Costume != nil && r.Costume.Name != "" {
		return r.Costume.Name
	}
	return fmt.Sprintf("Costume #%d", r.CostumeID)
}

// UserLabel returns the client name, or an identifier-based fallback.
func (r Reservation) UserLabel() string {
	if r.User != nil && r.User.Name != "" {
		return r.User.Name
	}
	return fmt.Sprintf("User #%d", r.UserID)
}

// ParseDate parses a backend calendar date (yyyy-MM-dd).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DaysUntil returns the whole-day difference between today and the
// given date. Negative when the date is in the past. Both operands are
// reduced to their calendar date in a single zone first; backend dates
// parse as UTC while the clock may run in any local zone, and mixing
// locations would skew the difference by up to a day.
func DaysUntil(today, date time.Time) int {
	a := midnight(today)
	b := midnight(date)
	return int(b.Sub(a).Hours() / 24)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
