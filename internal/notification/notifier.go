// Package notification defines the outbound notification contract. Only
// the contract lives here; actual mail/SMS delivery is owned by the
// downstream notify service.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"lending-engine/internal/event"
	"lending-engine/internal/pkg/apperrors"
	"lending-engine/internal/pkg/clock"
)

// Sender requests delivery of a message to a recipient. A send failure
// is recoverable: callers log it and carry on, it never rolls back the
// state change that triggered it.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AMQPSender fulfils the contract by publishing a notification request
// event for the notify service to consume.
type AMQPSender struct {
	publisher event.Publisher
	clk       clock.Clock
	logger    *slog.Logger
}

func NewAMQPSender(publisher event.Publisher, clk clock.Clock, logger *slog.Logger) *AMQPSender {
	return &AMQPSender{
		publisher: publisher,
		clk:       clk,
		logger:    logger.With("component", "AMQPSender"),
	}
}

func (s *AMQPSender) Send(ctx context.Context, to, subject, body string) error {
	ev := event.NotificationRequestedEvent{
		To:        to,
		Subject:   subject,
		Body:      body,
		Timestamp: s.clk.Now(),
	}
	if err := s.publisher.PublishNotificationRequested(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish notification request", "to", to, slog.Any("error", err))
		return fmt.Errorf("%w: notification publish failed: %w", apperrors.ErrExternalDependency, err)
	}
	s.logger.InfoContext(ctx, "Notification request published", "to", to, "subject", subject)
	return nil
}
