package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/diff"
)

type fakeSender struct {
	name  string
	err   error
	calls int
}

func (f *fakeSender) Name() string { return f.name }

func (f *fakeSender) Send(ctx context.Context, event diff.Event, msg Message) error {
	f.calls++
	return f.err
}

func testEvent() diff.Event {
	return diff.Event{ID: uuid.New(), Type: diff.TypeMultipleNewReservations, Count: 2}
}

func TestMultiSender_FansOutToAllChannels(t *testing.T) {
	a := &fakeSender{name: "a"}
	b := &fakeSender{name: "b"}
	m := NewMultiSender(zap.NewNop(), a, b)

	if err := m.Send(context.Background(), testEvent(), Message{Title: "t"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d, %d, want 1 each", a.calls, b.calls)
	}
}

func TestMultiSender_ContinuesPastFailingChannel(t *testing.T) {
	failing := &fakeSender{name: "email", err: errors.New("smtp down")}
	working := &fakeSender{name: "webhook"}
	m := NewMultiSender(zap.NewNop(), failing, working)

	err := m.Send(context.Background(), testEvent(), Message{})
	if err == nil {
		t.Fatal("expected combined error")
	}
	if working.calls != 1 {
		t.Error("healthy channel should still be tried")
	}
}

func TestMultiSender_NoSendersIsNoop(t *testing.T) {
	m := NewMultiSender(zap.NewNop())
	if err := m.Send(context.Background(), testEvent(), Message{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogSender_NeverFails(t *testing.T) {
	s := NewLogSender(zap.NewNop())
	if err := s.Send(context.Background(), testEvent(), Message{Title: "x", Body: "y"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWebhookSender_PostsEvent(t *testing.T) {
	var gotType, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("X-Wardrobe-Event-Type")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewWebhookSender(WebhookConfig{URL: srv.URL}, zap.NewNop())
	event := testEvent()

	if err := s.Send(context.Background(), event, Message{Title: "t", Body: "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotType != string(diff.TypeMultipleNewReservations) {
		t.Errorf("event type header = %q", gotType)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
}

func TestWebhookSender_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewWebhookSender(WebhookConfig{URL: srv.URL}, zap.NewNop())
	if err := s.Send(context.Background(), testEvent(), Message{}); err == nil {
		t.Error("expected error for 502 response")
	}
}
