package models

// Config holds the application configuration
type Config struct {
	Server        ServerConfig      `json:"server" yaml:"server"`
	RecordStore   RecordStoreConfig `json:"recordStore" yaml:"recordStore"`
	Moderation    ModerationConfig  `json:"moderation" yaml:"moderation"`
	Database      DatabaseConfig    `json:"database" yaml:"database"`
	Retry         RetryConfig       `json:"retry" yaml:"retry"`
	Tracing       TracingConfig     `json:"tracing" yaml:"tracing"`
	LogLevel      string            `json:"log_level" yaml:"log_level"`
	RetentionDays int               `json:"retentionDays" yaml:"retentionDays"`
}

// ServerConfig holds HTTP server and session settings
type ServerConfig struct {
	Port                 int `json:"port" yaml:"port"`
	ReadTimeoutSec       int `json:"readTimeoutSec" yaml:"readTimeoutSec"`
	WriteTimeoutSec      int `json:"writeTimeoutSec" yaml:"writeTimeoutSec"`
	IdleTimeoutSec       int `json:"idleTimeoutSec" yaml:"idleTimeoutSec"`
	DefaultPageSize      int `json:"defaultPageSize" yaml:"defaultPageSize"`
	SessionIdleMinutes   int `json:"sessionIdleMinutes" yaml:"sessionIdleMinutes"`
	CleanupIntervalHours int `json:"cleanupIntervalHours" yaml:"cleanupIntervalHours"`
}

// RecordStoreConfig describes the upstream paginated record store
type RecordStoreConfig struct {
	APIBaseURL      string `json:"api_base_url" yaml:"api_base_url"`
	APIToken        string `json:"api_token" yaml:"api_token"`
	Project         string `json:"project" yaml:"project"`
	CandidatesTable string `json:"candidatesTable" yaml:"candidatesTable"`
	JobsTable       string `json:"jobsTable" yaml:"jobsTable"`
	MaxPageSize     int    `json:"maxPageSize" yaml:"maxPageSize"`
	MaxConcurrency  int    `json:"maxConcurrency" yaml:"maxConcurrency"`
	TimeoutSec      int    `json:"timeoutSec" yaml:"timeoutSec"`
	SortKey         string `json:"sortKey" yaml:"sortKey"`
}

// ModerationConfig selects and configures the outbound decision notifier
type ModerationConfig struct {
	Notifier       string               `json:"notifier" yaml:"notifier"`
	WebhookURL     string               `json:"webhook_url" yaml:"webhook_url"`
	TimeoutSec     int                  `json:"timeoutSec" yaml:"timeoutSec"`
	AMQP           AMQPConfig           `json:"amqp" yaml:"amqp"`
	CircuitBreaker CircuitBreakerConfig `json:"circuitBreaker" yaml:"circuitBreaker"`
}

// AMQPConfig holds the decision event publisher settings
type AMQPConfig struct {
	URL        string `json:"url" yaml:"url"`
	Exchange   string `json:"exchange" yaml:"exchange"`
	RoutingKey string `json:"routingKey" yaml:"routingKey"`
}

// CircuitBreakerConfig guards the webhook notifier
type CircuitBreakerConfig struct {
	MaxFailures     int `json:"maxFailures" yaml:"maxFailures"`
	ResetTimeoutSec int `json:"resetTimeoutSec" yaml:"resetTimeoutSec"`
}

// DatabaseConfig holds database related configurations
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// RetryConfig holds retry related configurations
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs" yaml:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs" yaml:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts" yaml:"maxAttempts"`
}

// TracingConfig holds OpenTelemetry exporter settings
type TracingConfig struct {
	ServiceName    string  `json:"service_name" yaml:"service_name"`
	ServiceVersion string  `json:"service_version" yaml:"service_version"`
	Environment    string  `json:"environment" yaml:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate" yaml:"sample_rate"`
	Enabled        bool    `json:"enabled" yaml:"enabled"`
	UseStdout      bool    `json:"use_stdout" yaml:"use_stdout"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
