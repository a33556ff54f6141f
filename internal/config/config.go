package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"recruitdesk/internal/constants"
	"recruitdesk/internal/errors"
	"recruitdesk/internal/models"
	"recruitdesk/internal/security"
	"recruitdesk/internal/validation"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingRecordStoreURL = models.ConfigError{Message: "missing record store API URL"}
	ErrMissingProject        = models.ConfigError{Message: "missing record store project"}
	ErrMissingDBPath         = models.ConfigError{Message: "missing database path"}
)

func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated by security.ValidateFilePath above
	if err != nil {
		return nil, err
	}

	var config models.Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.RecordStore.APIBaseURL == "" {
		return ErrMissingRecordStoreURL
	}
	if u, err := url.Parse(c.RecordStore.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return models.ConfigError{Message: fmt.Sprintf("invalid record store API URL: %q", c.RecordStore.APIBaseURL)}
	}
	if c.RecordStore.Project == "" {
		return ErrMissingProject
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	switch c.Moderation.Notifier {
	case "":
		c.Moderation.Notifier = constants.DefaultNotifier
	case "webhook":
	case "amqp":
		if c.Moderation.AMQP.URL == "" {
			return models.ConfigError{Message: "moderation.amqp.url is required when notifier is amqp"}
		}
	default:
		return models.ConfigError{Message: fmt.Sprintf("unknown moderation notifier %q", c.Moderation.Notifier)}
	}

	setDefaults(c)

	if err := validation.ValidateTimeout(c.RecordStore.TimeoutSec, "recordStore.timeoutSec"); err != nil {
		return models.ConfigError{Message: errors.GetUserMessage(err)}
	}
	if err := validation.ValidateTimeout(c.Moderation.TimeoutSec, "moderation.timeoutSec"); err != nil {
		return models.ConfigError{Message: errors.GetUserMessage(err)}
	}
	if err := validation.ValidateRetentionDays(c.RetentionDays); err != nil {
		return models.ConfigError{Message: errors.GetUserMessage(err)}
	}
	return nil
}

// setDefaults fills every optional field left at its zero value
func setDefaults(c *models.Config) {
	rs := &c.RecordStore
	if rs.CandidatesTable == "" {
		rs.CandidatesTable = constants.DefaultCandidatesTable
	}
	if rs.JobsTable == "" {
		rs.JobsTable = constants.DefaultJobsTable
	}
	if rs.MaxPageSize <= 0 {
		rs.MaxPageSize = constants.DefaultMaxPageSize
	}
	if rs.MaxConcurrency <= 0 {
		rs.MaxConcurrency = constants.DefaultFetchConcurrency
	}
	if rs.TimeoutSec <= 0 {
		rs.TimeoutSec = constants.DefaultRecordStoreTimeout
	}
	if rs.SortKey == "" {
		rs.SortKey = constants.DefaultSortKey
	}

	m := &c.Moderation
	if m.TimeoutSec <= 0 {
		m.TimeoutSec = constants.DefaultNotifierTimeoutSec
	}
	if m.AMQP.Exchange == "" {
		m.AMQP.Exchange = constants.DefaultAMQPExchange
	}
	if m.AMQP.RoutingKey == "" {
		m.AMQP.RoutingKey = constants.DefaultAMQPRoutingKey
	}
	if m.CircuitBreaker.MaxFailures <= 0 {
		m.CircuitBreaker.MaxFailures = constants.DefaultCircuitMaxFailures
	}
	if m.CircuitBreaker.ResetTimeoutSec <= 0 {
		m.CircuitBreaker.ResetTimeoutSec = constants.DefaultCircuitResetSec
	}

	s := &c.Server
	if s.Port <= 0 {
		s.Port = constants.DefaultServerPort
	}
	if s.ReadTimeoutSec <= 0 {
		s.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if s.WriteTimeoutSec <= 0 {
		s.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if s.IdleTimeoutSec <= 0 {
		s.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}
	if s.DefaultPageSize <= 0 {
		s.DefaultPageSize = constants.DefaultPageSize
	}
	if s.DefaultPageSize > constants.MaxPageSize {
		s.DefaultPageSize = constants.MaxPageSize
	}
	if s.SessionIdleMinutes <= 0 {
		s.SessionIdleMinutes = constants.DefaultSessionIdleMinutes
	}
	if s.CleanupIntervalHours <= 0 {
		s.CleanupIntervalHours = constants.DefaultCleanupIntervalHours
	}

	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}

	if c.RetentionDays <= 0 {
		c.RetentionDays = constants.DefaultRetentionDays
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func applyEnvironmentOverrides(c *models.Config) {
	if u := os.Getenv("RECORDSTORE_API_URL"); u != "" {
		c.RecordStore.APIBaseURL = u
	}
	// SECURITY: tokens should come from the environment rather than the file
	if token := os.Getenv("RECORDSTORE_API_TOKEN"); token != "" {
		c.RecordStore.APIToken = token
	}
	if u := os.Getenv("MODERATION_WEBHOOK_URL"); u != "" {
		c.Moderation.WebhookURL = u
	}
	if u := os.Getenv("MODERATION_AMQP_URL"); u != "" {
		c.Moderation.AMQP.URL = u
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
}
