package errors

import (
	"recruitdesk/internal/privacy"

	"github.com/sirupsen/logrus"
)

// Entry attaches an error and its structured AppError context to a log entry.
// Context values under identity, email, phone and session keys are masked.
func Entry(logger logrus.FieldLogger, err error) *logrus.Entry {
	entry := logger.WithError(err)

	if appErr, ok := As(err); ok {
		entry = entry.WithFields(logrus.Fields{
			"error_code": appErr.Code,
			"retryable":  appErr.Retryable,
		})
		for k, v := range privacy.MaskSensitiveFields(appErr.Context) {
			entry = entry.WithField(k, v)
		}
	}

	return entry
}

// LogRetryableError logs a retryable error at warn level, non-retryable at error level
func LogRetryableError(logger logrus.FieldLogger, err error, message string, fields ...logrus.Fields) {
	entry := Entry(logger, err)
	for _, f := range fields {
		entry = entry.WithFields(f)
	}

	if IsRetryable(err) {
		entry.Warn(message)
		return
	}
	entry.Error(message)
}
