package middleware

import (
	"net/http"
	"slices"
	"strings"

	"recruitdesk/internal/constants"
	"recruitdesk/internal/privacy"
	"recruitdesk/internal/service"
	"recruitdesk/internal/tracing"

	"github.com/sirupsen/logrus"
)

// DetailedLoggingConfig controls what the debug request logger emits
type DetailedLoggingConfig struct {
	LogRequestHeaders bool     `json:"log_request_headers"`
	SensitiveHeaders  []string `json:"sensitive_headers"`
	SkipEndpoints     []string `json:"skip_endpoints"`
}

func DefaultDetailedLoggingConfig() DetailedLoggingConfig {
	return DetailedLoggingConfig{
		LogRequestHeaders: true,
		SensitiveHeaders: []string{
			"authorization", "cookie", "x-api-key", "x-auth-token",
		},
		SkipEndpoints: []string{"/metrics", "/health"},
	}
}

// DetailedLoggingMiddleware logs each request's query and headers at debug level.
// It is a no-op unless the logger is at debug level.
func DetailedLoggingMiddleware(logger *logrus.Logger, config DetailedLoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !logger.IsLevelEnabled(logrus.DebugLevel) || slices.Contains(config.SkipEndpoints, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			fields := logrus.Fields{
				service.LogFieldRequestID: tracing.GetRequestID(r.Context()),
				service.LogFieldMethod:    r.Method,
				service.LogFieldURL:       r.URL.Path,
				"query":                   r.URL.RawQuery,
				"protocol":                r.Proto,
			}

			if config.LogRequestHeaders {
				headers := make(map[string]string, len(r.Header))
				for name, values := range r.Header {
					headers[name] = maskHeader(name, strings.Join(values, ", "), config.SensitiveHeaders)
				}
				fields["request_headers"] = headers
			}

			logger.WithFields(fields).Debug("Detailed request logging")
			next.ServeHTTP(w, r)
		})
	}
}

func maskHeader(name, value string, sensitive []string) string {
	if strings.EqualFold(name, constants.SessionHeader) {
		return privacy.MaskSessionID(value)
	}
	for _, s := range sensitive {
		if strings.EqualFold(s, name) {
			return "***MASKED***"
		}
	}
	return value
}
