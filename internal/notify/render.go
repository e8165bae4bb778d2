// Package notify renders diff events into human-readable messages and
// delivers them through the configured channels.
package notify

import (
	"fmt"
	"strings"

	"github.com/attireworks/wardrobe/internal/diff"
)

// Message is a rendered notification.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Render builds the message for one diff event.
func Render(event diff.Event) Message {
	switch event.Type {
	case diff.TypeNewReservation:
		res := event.Reservation
		return Message{
			Title: "New Reservation Request",
			Body: fmt.Sprintf("%s requested to reserve %s from %s to %s",
				res.UserLabel(), res.CostumeLabel(), res.StartDate, res.EndDate),
		}

	case diff.TypeMultipleNewReservations:
		return Message{
			Title: "New Reservations",
			Body:  fmt.Sprintf("You have %d new pending reservations waiting for approval.", event.Count),
		}

	case diff.TypeStatusChange:
		res := event.Reservation
		return Message{
			Title: fmt.Sprintf("Reservation %s", capitalize(string(event.Current))),
			Body: fmt.Sprintf("Your reservation for %s has been %s.",
				res.CostumeLabel(), string(event.Current)),
		}

	case diff.TypeDeadline:
		res := event.Reservation
		return Message{
			Title: "Return Reminder",
			Body: fmt.Sprintf("Your rental of %s %s",
				res.CostumeLabel(), deadlinePhrase(event.DaysUntil)),
		}

	default:
		return Message{
			Title: "Reservation Update",
			Body:  fmt.Sprintf("Reservation event: %s", event.Type),
		}
	}
}

// deadlinePhrase spells out how soon the rental ends.
func deadlinePhrase(days int) string {
	switch days {
	case 0:
		return "ends TODAY! Please return it."
	case 1:
		return "ends TOMORROW!"
	default:
		return fmt.Sprintf("ends in %d days.", days)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
