package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/diff"
)

// SNSSender texts rendered events to the shop operator via AWS SNS.
type SNSSender struct {
	client      *sns.Client
	phoneNumber string
	logger      *zap.Logger
}

type SNSConfig struct {
	Region      string
	PhoneNumber string
}

func NewSNSSender(ctx context.Context, cfg SNSConfig, logger *zap.Logger) (*SNSSender, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config for SNS: %w", err)
	}
	if cfg.PhoneNumber == "" {
		return nil, fmt.Errorf("sns phone number is required")
	}

	return &SNSSender{
		client:      sns.NewFromConfig(awsCfg),
		phoneNumber: cfg.PhoneNumber,
		logger:      logger,
	}, nil
}

func (s *SNSSender) Name() string { return "sms" }

// Send delivers the rendered event as a single SMS.
func (s *SNSSender) Send(ctx context.Context, event diff.Event, msg Message) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(s.phoneNumber),
		Message:     aws.String(msg.Title + ": " + msg.Body),
	}

	result, err := s.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}

	s.logger.Info("SMS sent via SNS",
		zap.String("event_id", event.ID.String()),
		zap.String("phone_number", s.phoneNumber),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)

	return nil
}
