// Package sqs streams diff events onto an SQS queue so other systems
// (analytics, audit, a future push gateway) can consume them.
package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/diff"
	"github.com/attireworks/wardrobe/internal/notify"
)

// Config holds SQS configuration.
type Config struct {
	Region   string
	QueueURL string
}

// Message is the payload placed on the queue for each diff event.
type Message struct {
	EventID    string     `json:"event_id"`
	EventType  string     `json:"event_type"`
	Event      diff.Event `json:"event"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	EnqueuedAt int64      `json:"enqueued_at"`
}

// Publisher sends diff events to SQS. It implements notify.Sender so
// the queue is just another fan-out channel.
type Publisher struct {
	client   *sqs.Client
	queueURL string
	logger   *zap.Logger
	now      func() time.Time
}

// NewPublisher creates an SQS publisher.
func NewPublisher(ctx context.Context, cfg Config, logger *zap.Logger) (*Publisher, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.QueueURL == "" {
		return nil, fmt.Errorf("sqs queue url is required")
	}

	logger.Info("sqs publisher initialized",
		zap.String("queue_url", cfg.QueueURL),
	)

	return &Publisher{
		client:   sqs.NewFromConfig(awsCfg),
		queueURL: cfg.QueueURL,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (p *Publisher) Name() string { return "sqs" }

// Send puts one event on the queue.
func (p *Publisher) Send(ctx context.Context, event diff.Event, msg notify.Message) error {
	body, err := json.Marshal(buildMessage(event, msg, p.now()))
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	}

	result, err := p.client.SendMessage(ctx, input)
	if err != nil {
		p.logger.Error("failed to send event to sqs",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return fmt.Errorf("sqs send failed: %w", err)
	}

	p.logger.Debug("event queued",
		zap.String("event_id", event.ID.String()),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)

	return nil
}

func buildMessage(event diff.Event, msg notify.Message, now time.Time) Message {
	return Message{
		EventID:    event.ID.String(),
		EventType:  string(event.Type),
		Event:      event,
		Title:      msg.Title,
		Body:       msg.Body,
		EnqueuedAt: now.UnixNano(),
	}
}
