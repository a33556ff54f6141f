// Package notify delivers moderation decisions to the outbound automation.
package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"recruitdesk/internal/constants"
	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/models"
	"recruitdesk/pkg/circuitbreaker"
)

// Notifier sends one decision notification
type Notifier interface {
	Notify(ctx context.Context, n models.DecisionNotification) error
	Close() error
}

// New builds the notifier selected by cfg.Notifier ("webhook" or "amqp").
// A webhook notifier without a URL is returned as a notifier that always fails,
// so decisions are still recorded locally and audited as failed.
func New(cfg models.ModerationConfig, logger *logrus.Logger) (Notifier, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	switch cfg.Notifier {
	case "amqp":
		n, err := NewAMQPNotifier(cfg.AMQP, logger)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "", "webhook":
		if cfg.WebhookURL == "" {
			logger.Warn("No moderation webhook configured; decisions will not be delivered")
			return unconfigured{}, nil
		}
		timeout := time.Duration(cfg.TimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = constants.DefaultNotifierTimeoutSec * time.Second
		}
		breaker := circuitbreaker.NewWithLogger("moderation-webhook",
			cfg.CircuitBreaker.MaxFailures,
			time.Duration(cfg.CircuitBreaker.ResetTimeoutSec)*time.Second,
			logger)
		return NewWebhookNotifier(cfg.WebhookURL, &http.Client{Timeout: timeout}, breaker, logger), nil
	default:
		return nil, apperrors.NewConfigError("moderation.notifier", "unknown notifier "+cfg.Notifier)
	}
}

type unconfigured struct{}

func (unconfigured) Notify(context.Context, models.DecisionNotification) error {
	return apperrors.New(apperrors.ErrCodeNotifierAPI, "no moderation notifier configured")
}

func (unconfigured) Close() error { return nil }
