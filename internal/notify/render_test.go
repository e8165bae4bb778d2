package notify

import (
	"testing"

	"github.com/attireworks/wardrobe/internal/diff"
	"github.com/attireworks/wardrobe/internal/rental"
)

func TestRender_NewReservation(t *testing.T) {
	event := diff.Event{
		Type: diff.TypeNewReservation,
		Reservation: &rental.Reservation{
			ID:        1,
			StartDate: "2026-04-01",
			EndDate:   "2026-04-05",
			Costume:   &rental.Costume{ID: 2, Name: "Pirate"},
			User:      &rental.User{ID: 3, Name: "Maya"},
		},
	}

	msg := Render(event)
	if msg.Title != "New Reservation Request" {
		t.Errorf("title = %q", msg.Title)
	}
	want := "Maya requested to reserve Pirate from 2026-04-01 to 2026-04-05"
	if msg.Body != want {
		t.Errorf("body = %q, want %q", msg.Body, want)
	}
}

func TestRender_NewReservationFallbackLabels(t *testing.T) {
	event := diff.Event{
		Type: diff.TypeNewReservation,
		Reservation: &rental.Reservation{
			ID:        1,
			CostumeID: 2,
			UserID:    3,
			StartDate: "2026-04-01",
			EndDate:   "2026-04-05",
		},
	}

	msg := Render(event)
	want := "User #3 requested to reserve Costume #2 from 2026-04-01 to 2026-04-05"
	if msg.Body != want {
		t.Errorf("body = %q, want %q", msg.Body, want)
	}
}

func TestRender_MultipleNewReservations(t *testing.T) {
	msg := Render(diff.Event{Type: diff.TypeMultipleNewReservations, Count: 4})
	if msg.Body != "You have 4 new pending reservations waiting for approval." {
		t.Errorf("body = %q", msg.Body)
	}
}

func TestRender_StatusChange(t *testing.T) {
	event := diff.Event{
		Type:     diff.TypeStatusChange,
		Previous: rental.StatusPending,
		Current:  rental.StatusApproved,
		Reservation: &rental.Reservation{
			ID:      9,
			Costume: &rental.Costume{ID: 2, Name: "Vampire Cape"},
		},
	}

	msg := Render(event)
	if msg.Title != "Reservation Approved" {
		t.Errorf("title = %q", msg.Title)
	}
	if msg.Body != "Your reservation for Vampire Cape has been approved." {
		t.Errorf("body = %q", msg.Body)
	}
}

func TestRender_DeadlinePhrasing(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "Your rental of Witch Hat ends TODAY! Please return it."},
		{1, "Your rental of Witch Hat ends TOMORROW!"},
		{3, "Your rental of Witch Hat ends in 3 days."},
	}

	for _, tt := range tests {
		event := diff.Event{
			Type:      diff.TypeDeadline,
			DaysUntil: tt.days,
			Reservation: &rental.Reservation{
				ID:      5,
				Costume: &rental.Costume{ID: 7, Name: "Witch Hat"},
			},
		}
		if got := Render(event).Body; got != tt.want {
			t.Errorf("days=%d: body = %q, want %q", tt.days, got, tt.want)
		}
	}
}
