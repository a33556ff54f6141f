package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"recruitdesk/internal/constants"
	"recruitdesk/internal/errors"
	"recruitdesk/internal/models"
)

// ValidateCandidateID validates a candidate id taken from a request path
func ValidateCandidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationError("candidateId", id, "cannot be empty")
	}

	if len(id) > constants.MaxCandidateIDLength {
		return errors.NewValidationError("candidateId", id[:constants.MaxCandidateIDLength],
			fmt.Sprintf("too long (max %d characters)", constants.MaxCandidateIDLength))
	}

	if containsControl(id) {
		return errors.NewValidationError("candidateId", id, "contains invalid characters")
	}

	return nil
}

// ParseChannel accepts a channel name in any case, including "email" and "wa"
func ParseChannel(raw string) (models.Channel, error) {
	ch, ok := models.ParseChannel(raw)
	if !ok {
		return "", errors.NewValidationError("channel", raw, "must be one of mail, linkedin, whatsapp")
	}
	return ch, nil
}

// ParseIntParam parses an optional positive integer query parameter.
// An empty value yields def; values outside [1, max] are rejected.
func ParseIntParam(raw, fieldName string, def, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(fieldName, raw, "must be a number")
	}
	if err := ValidateNumericRange(n, fieldName, 1, max); err != nil {
		return 0, err
	}
	return n, nil
}

// ValidateQuery validates a free-text filter term
func ValidateQuery(q, fieldName string) error {
	if err := ValidateStringLength(q, fieldName, 0, constants.MaxQueryLength); err != nil {
		return err
	}
	if containsControl(q) {
		return errors.NewValidationError(fieldName, q, "contains invalid characters")
	}
	return nil
}

// ValidateStringLength validates string length against bounds
func ValidateStringLength(value, fieldName string, minLength, maxLength int) error {
	if len(value) < minLength {
		return errors.NewValidationError(fieldName, value,
			fmt.Sprintf("too short (min %d characters)", minLength))
	}

	if len(value) > maxLength {
		return errors.NewValidationError(fieldName, value[:maxLength],
			fmt.Sprintf("too long (max %d characters)", maxLength))
	}

	return nil
}

// ValidateNumericRange validates numeric values against bounds
func ValidateNumericRange(value int, fieldName string, min, max int) error {
	if value < min {
		return errors.NewValidationError(fieldName, strconv.Itoa(value),
			fmt.Sprintf("too small (min %d)", min))
	}

	if value > max {
		return errors.NewValidationError(fieldName, strconv.Itoa(value),
			fmt.Sprintf("too large (max %d)", max))
	}

	return nil
}

// ValidateTimeout validates timeout values
func ValidateTimeout(timeoutSec int, fieldName string) error {
	if timeoutSec < 1 {
		return errors.NewValidationError(fieldName, strconv.Itoa(timeoutSec), "must be at least 1 second")
	}

	if timeoutSec > 3600 {
		return errors.NewValidationError(fieldName, strconv.Itoa(timeoutSec), "too large (max 3600 seconds)")
	}

	return nil
}

// ValidateRetentionDays validates the audit log retention period
func ValidateRetentionDays(days int) error {
	return ValidateNumericRange(days, "retentionDays", 1, 3650)
}

func containsControl(s string) bool {
	return strings.ContainsFunc(s, unicode.IsControl)
}
