package service

// Logging Standards for recruitdesk
//
// This file defines standard field names, log levels, and patterns
// to ensure consistent logging across the application.

// Standard Field Names
// Use these exact field names for consistency across all logging calls
const (
	// Core identifiers
	LogFieldSession     = "session_id"
	LogFieldCandidateID = "candidate_id"
	LogFieldChannel     = "channel"
	LogFieldDecision    = "decision"
	LogFieldTable       = "table"
	LogFieldPage        = "page"

	// Service and operation fields
	LogFieldService   = "service"
	LogFieldOperation = "operation"
	LogFieldComponent = "component"
	LogFieldMethod    = "method"

	// Tracing
	LogFieldRequestID = "request_id"
	LogFieldTraceID   = "trace_id"

	// Performance and metrics
	LogFieldDuration = "duration_ms"
	LogFieldCount    = "count"
	LogFieldSize     = "size_bytes"

	// Network and external services
	LogFieldURL        = "url"
	LogFieldEndpoint   = "endpoint"
	LogFieldStatusCode = "status_code"
	LogFieldRemoteIP   = "remote_ip"
	LogFieldUserAgent  = "user_agent"

	// Error and debugging
	LogFieldErrorCode  = "error_code"
	LogFieldRetryCount = "retry_count"
	LogFieldAttempt    = "attempt"
)

// Log Level Usage Guidelines
//
// DEBUG: per-page fetch details, alias resolution fallbacks.
//
// INFO: startup/shutdown, aggregation completed, stale fetch results discarded,
// scheduled cleanup results.
//
// WARN: substituted empty pages, moderation dispatch failures, 4xx responses,
// open circuit breakers.
//
// ERROR: audit log write failures, 5xx responses, cleanup failures.
//
// FATAL: configuration or database unavailable at startup.

// Standard Log Message Patterns
//
// Starting operations: "Starting [operation]"
// Completed operations: "Completed [operation]" or "[Operation] completed successfully"
// Failed operations: "Failed to [operation]"
// Skipping operations: "Skipping [operation]: [reason]"

// Example Usage:
//
// logger.WithFields(logrus.Fields{
//     LogFieldCandidateID: candidateID,
//     LogFieldChannel:     "mail",
//     LogFieldDecision:    "accept",
// }).Info("Crafted message approved")
