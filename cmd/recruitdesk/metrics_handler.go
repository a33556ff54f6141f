package main

import (
	"encoding/json"
	"net/http"

	"recruitdesk/internal/metrics"
	"recruitdesk/internal/service"
	"recruitdesk/internal/tracing"
	"recruitdesk/pkg/circuitbreaker"

	"github.com/sirupsen/logrus"
)

type metricsResponse struct {
	metrics.Snapshot
	CircuitBreakers []circuitbreaker.Stats `json:"circuit_breakers,omitempty"`
	SessionsActive  int                    `json:"sessions_active"`
}

// handleMetrics returns current application metrics
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestInfo := tracing.GetRequestInfo(r.Context())

		s.logger.WithFields(logrus.Fields{
			service.LogFieldRequestID: requestInfo.RequestID,
			service.LogFieldTraceID:   requestInfo.TraceID,
			service.LogFieldEndpoint:  "/metrics",
		}).Debug("Serving metrics endpoint")

		resp := metricsResponse{
			Snapshot:       metrics.GetSnapshot(),
			SessionsActive: s.sessions.Len(),
		}
		for _, b := range s.breakers {
			if stats, ok := b.BreakerStats(); ok {
				resp.CircuitBreakers = append(resp.CircuitBreakers, stats)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(resp); err != nil {
			s.logger.WithFields(logrus.Fields{
				service.LogFieldRequestID: requestInfo.RequestID,
				service.LogFieldTraceID:   requestInfo.TraceID,
				"error":                   err,
			}).Error("Failed to encode metrics response")

			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}
}
