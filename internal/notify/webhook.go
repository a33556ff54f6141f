package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/models"
	"recruitdesk/internal/tracing"
	"recruitdesk/pkg/circuitbreaker"
)

// WebhookNotifier POSTs the decision as JSON. The response body is not interpreted.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *logrus.Logger
}

func NewWebhookNotifier(url string, httpClient *http.Client, breaker *circuitbreaker.CircuitBreaker, logger *logrus.Logger) *WebhookNotifier {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &WebhookNotifier{url: url, client: httpClient, breaker: breaker, logger: logger}
}

func (w *WebhookNotifier) Notify(ctx context.Context, n models.DecisionNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if w.breaker == nil {
		return w.post(ctx, body)
	}

	err = w.breaker.Execute(ctx, func(ctx context.Context) error {
		return w.post(ctx, body)
	})
	if circuitbreaker.IsCircuitBreakerError(err) {
		return apperrors.NewAPIError("notifier", w.url, 0, err).
			WithUserMessage("The moderation endpoint is temporarily unavailable")
	}
	return err
}

func (w *WebhookNotifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := tracing.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return apperrors.NewAPIError("notifier", w.url, 0, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewAPIError("notifier", w.url, resp.StatusCode,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody)))
	}

	w.logger.WithField("status_code", resp.StatusCode).Debug("Moderation webhook accepted notification")
	return nil
}

func (w *WebhookNotifier) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

// BreakerStats exposes the circuit breaker counters for the metrics endpoint
func (w *WebhookNotifier) BreakerStats() (circuitbreaker.Stats, bool) {
	if w.breaker == nil {
		return circuitbreaker.Stats{}, false
	}
	return w.breaker.GetStats(), true
}
