package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/diff"
)

// Sender delivers one rendered event over one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, event diff.Event, msg Message) error
}

// MultiSender fans one event out to every configured channel. A
// failing channel does not stop the others; the combined error is
// returned after all have been tried.
type MultiSender struct {
	senders []Sender
	logger  *zap.Logger
}

// NewMultiSender creates a fan-out over the given senders.
func NewMultiSender(logger *zap.Logger, senders ...Sender) *MultiSender {
	return &MultiSender{
		senders: senders,
		logger:  logger,
	}
}

func (m *MultiSender) Name() string { return "multi" }

// Send delivers the event through every channel.
func (m *MultiSender) Send(ctx context.Context, event diff.Event, msg Message) error {
	var errs []error
	for _, sender := range m.senders {
		if err := sender.Send(ctx, event, msg); err != nil {
			m.logger.Error("channel delivery failed",
				zap.String("channel", sender.Name()),
				zap.String("event_id", event.ID.String()),
				zap.String("event_type", string(event.Type)),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", sender.Name(), err))
			continue
		}
		m.logger.Debug("event delivered",
			zap.String("channel", sender.Name()),
			zap.String("event_id", event.ID.String()),
		)
	}
	return errors.Join(errs...)
}

// LogSender logs events instead of delivering them. Used in
// development and as a safety net when no real channel is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(ctx context.Context, event diff.Event, msg Message) error {
	s.logger.Info("notification",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", string(event.Type)),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
	)
	return nil
}
