package tracing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	sessionIDKey contextKey = "session_id"
	startTimeKey contextKey = "start_time"
)

// RequestInfo carries the identifiers attached to one inbound request
type RequestInfo struct {
	RequestID string    `json:"request_id"`
	SessionID string    `json:"session_id,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	StartTime time.Time `json:"start_time"`
}

func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey, startTime)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

func GetStartTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(startTimeKey).(time.Time)
	return t
}

// GetRequestInfo collects every identifier known for the request in ctx
func GetRequestInfo(ctx context.Context) RequestInfo {
	return RequestInfo{
		RequestID: GetRequestID(ctx),
		SessionID: GetSessionID(ctx),
		TraceID:   GetOtelTraceID(ctx),
		StartTime: GetStartTime(ctx),
	}
}

// Duration is the time elapsed since the request started, or 0 when unknown
func Duration(ctx context.Context) time.Duration {
	start := GetStartTime(ctx)
	if start.IsZero() {
		return 0
	}
	return time.Since(start)
}
