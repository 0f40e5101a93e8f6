package memory

import (
	"context"

	"github.com/cercino/vointer/internal/application/auth"
	"github.com/cercino/vointer/internal/logger"
)

// NoopNotifier stands in for the broker in dev when RabbitMQ is down. It
// logs the event and reports success, so registration still completes.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) SendVerification(_ context.Context, evt auth.VerificationEvent) error {
	logger.Logger.Info().
		Str("user_id", evt.UserID).
		Str("url", evt.URL).
		Msg("noop notifier: verification email suppressed")
	return nil
}

func (n *NoopNotifier) SendReset(_ context.Context, evt auth.PasswordResetEvent) error {
	logger.Logger.Info().
		Str("user_id", evt.UserID).
		Str("url", evt.URL).
		Msg("noop notifier: reset email suppressed")
	return nil
}
