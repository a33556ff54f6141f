package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"recruitdesk/internal/constants"
	"recruitdesk/internal/httputil"
	"recruitdesk/internal/metrics"
	"recruitdesk/internal/privacy"
	"recruitdesk/internal/service"
	"recruitdesk/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var timeNow = time.Now

// ObservabilityMiddleware adds request ids, a server span, request metrics and
// a completion log line to every request
func ObservabilityMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeTemplate(r)

			ctx, span := tracing.StartSpan(r.Context(), "HTTP "+r.Method+" "+route,
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("url.path", r.URL.Path),
				attribute.String("user_agent.original", r.Header.Get("User-Agent")),
				attribute.String("client.address", httputil.GetClientIP(r)),
			)
			defer span.End()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = tracing.GenerateRequestID()
			}
			ctx = tracing.WithRequestID(ctx, requestID)
			ctx = tracing.WithStartTime(ctx, timeNow())
			if sessionID := r.Header.Get(constants.SessionHeader); sessionID != "" {
				ctx = tracing.WithSessionID(ctx, sessionID)
			}
			r = r.WithContext(ctx)
			w.Header().Set("X-Request-ID", requestID)

			wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			metrics.AddToCounter("http_requests_active", 1, nil, "Currently active HTTP requests")
			defer metrics.AddToCounter("http_requests_active", -1, nil, "Currently active HTTP requests")

			next.ServeHTTP(wrapper, r)

			duration := tracing.Duration(ctx)
			status := strconv.Itoa(wrapper.statusCode)

			span.SetAttributes(
				attribute.Int("http.response.status_code", wrapper.statusCode),
				attribute.Int64("http.response.body.size", wrapper.responseSize),
			)
			if wrapper.statusCode >= 500 {
				span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", wrapper.statusCode))
			}

			labels := map[string]string{"method": r.Method, "route": route, "status_code": status}
			metrics.IncrementCounter("http_requests_total", labels, "HTTP requests by route and status")
			metrics.RecordTimer("http_request_duration", duration, map[string]string{"method": r.Method, "route": route})

			logLevel := logrus.InfoLevel
			if wrapper.statusCode >= 400 && wrapper.statusCode < 500 {
				logLevel = logrus.WarnLevel
			} else if wrapper.statusCode >= 500 {
				logLevel = logrus.ErrorLevel
			}

			info := tracing.GetRequestInfo(ctx)
			logger.WithFields(logrus.Fields{
				service.LogFieldRequestID:  info.RequestID,
				service.LogFieldTraceID:    traceID(span),
				service.LogFieldSession:    privacy.MaskSessionID(info.SessionID),
				service.LogFieldMethod:     r.Method,
				service.LogFieldURL:        r.URL.Path,
				service.LogFieldStatusCode: wrapper.statusCode,
				service.LogFieldDuration:   duration.Milliseconds(),
				service.LogFieldRemoteIP:   httputil.GetClientIP(r),
				service.LogFieldSize:       wrapper.responseSize,
			}).Log(logLevel, "HTTP request completed")
		})
	}
}

// routeTemplate keeps metric labels bounded by using the mux path template instead of the raw path
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func traceID(span oteltrace.Span) string {
	sc := span.SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// responseWrapper captures response metrics
type responseWrapper struct {
	http.ResponseWriter
	statusCode   int
	responseSize int64
	wroteHeader  bool
}

func (rw *responseWrapper) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWrapper) Write(data []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(data)
	rw.responseSize += int64(n)
	return n, err
}
