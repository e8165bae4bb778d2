package sqs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/attireworks/wardrobe/internal/diff"
	"github.com/attireworks/wardrobe/internal/notify"
)

func TestBuildMessage(t *testing.T) {
	event := diff.Event{
		ID:    uuid.New(),
		Type:  diff.TypeStatusChange,
		Count: 0,
	}
	msg := notify.Message{Title: "Reservation Approved", Body: "done"}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	m := buildMessage(event, msg, now)

	if m.EventID != event.ID.String() {
		t.Errorf("event_id = %q", m.EventID)
	}
	if m.EventType != "status_change" {
		t.Errorf("event_type = %q", m.EventType)
	}
	if m.Title != "Reservation Approved" {
		t.Errorf("title = %q", m.Title)
	}
	if m.EnqueuedAt != now.UnixNano() {
		t.Errorf("enqueued_at = %d", m.EnqueuedAt)
	}
}

func TestMessageRoundTripsAsJSON(t *testing.T) {
	event := diff.Event{ID: uuid.New(), Type: diff.TypeDeadline, DaysUntil: 2}
	m := buildMessage(event, notify.Message{Title: "t", Body: "b"}, time.Now())

	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Message
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.EventID != m.EventID || decoded.Event.DaysUntil != 2 {
		t.Errorf("round trip lost fields: %+v", decoded)
	}
}
