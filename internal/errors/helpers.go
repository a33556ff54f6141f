package errors

import (
	"fmt"
	"net/http"
)

// NewValidationError creates a validation error with field context
func NewValidationError(field, value, message string) *AppError {
	return New(ErrCodeInvalidInput, message).
		WithContext("field", field).
		WithContext("value", value).
		WithUserMessage(fmt.Sprintf("Invalid %s: %s", field, message))
}

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewDatabaseError creates a database error with operation context
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseQuery, fmt.Sprintf("database %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("Database operation failed")
}

// NewAPIError creates an API error for external service calls.
// Transport failures (statusCode 0), 5xx, 429 and 408 are retryable.
func NewAPIError(service, endpoint string, statusCode int, err error) *AppError {
	code := ErrCodeInternalError
	switch service {
	case "recordstore":
		code = ErrCodeUpstreamAPI
	case "notifier":
		code = ErrCodeNotifierAPI
	}

	appErr := Wrap(err, code, fmt.Sprintf("%s API call failed", service)).
		WithContext("service", service).
		WithContext("endpoint", endpoint).
		WithContext("status_code", statusCode)

	if statusCode == 0 || statusCode >= 500 || statusCode == 429 || statusCode == 408 {
		appErr.Retryable = true
	}

	return appErr
}

// NewNotFoundError creates a not found error with resource context
func NewNotFoundError(resource, identifier string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier).
		WithUserMessage(fmt.Sprintf("%s not found", resource))
}

// NewModerationRefusal blocks a moderation action before any network call
func NewModerationRefusal(reason, userMessage string) *AppError {
	return New(ErrCodeModerationRefused, reason).
		WithUserMessage(userMessage)
}

// NewSupersededError reports a fetch whose result was discarded because a newer one started
func NewSupersededError(sessionID string) *AppError {
	return New(ErrCodeSuperseded, "fetch superseded by a newer request").
		WithContext("session_id", sessionID).
		WithUserMessage("A newer request replaced this one")
}

// HTTPStatusCode maps error codes to appropriate HTTP status codes
func HTTPStatusCode(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeModerationRefused:
		return http.StatusUnprocessableEntity
	case ErrCodeSuperseded:
		return http.StatusConflict
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUpstreamAPI, ErrCodeNotifierAPI:
		return http.StatusBadGateway
	case ErrCodeDatabaseConnection, ErrCodeDatabaseQuery:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorResponse is the standardized error body
type HTTPErrorResponse struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
		Context any       `json:"context,omitempty"`
	} `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an error to a standardized HTTP response
func ToHTTPResponse(err error, requestID string) HTTPErrorResponse {
	response := HTTPErrorResponse{
		RequestID: requestID,
	}

	appErr, ok := As(err)
	if !ok {
		response.Error.Code = ErrCodeInternalError
		response.Error.Message = GetUserMessage(err)
		return response
	}

	response.Error.Code = appErr.Code
	response.Error.Message = GetUserMessage(err)
	if len(appErr.Context) > 0 {
		publicContext := make(map[string]any)
		for k, v := range appErr.Context {
			// identity keys and tokens never leave the process
			if k != "token" && k != "identity_key" {
				publicContext[k] = v
			}
		}
		if len(publicContext) > 0 {
			response.Error.Context = publicContext
		}
	}

	return response
}
