package constants

// Upstream record store defaults
const (
	DefaultMaxPageSize        = 1000
	DefaultFetchConcurrency   = 4
	DefaultRecordStoreTimeout = 30
	DefaultCandidatesTable    = "candidates"
	DefaultJobsTable          = "jobs"
	DefaultSortKey            = "-CreatedAt"
)

// Default retry configuration values
const (
	DefaultRetryBackoffMs        = 500
	DefaultMaxBackoffMs          = 5000
	DefaultMaxAttempts           = 2
	DefaultDatabaseRetryAttempts = 3
)

// Moderation defaults
const (
	DefaultNotifier              = "webhook"
	DefaultNotifierTimeoutSec    = 10
	DefaultCircuitMaxFailures    = 5
	DefaultCircuitResetSec       = 30
	DefaultAMQPExchange          = "recruitdesk.moderation"
	DefaultAMQPRoutingKey        = "crafted.decision.v1"
	DefaultModerationEventsLimit = 100
	MaxModerationEventsLimit     = 1000
)

// Server and session defaults
const (
	DefaultServerPort            = 8082
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 60
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
	DefaultPageSize              = 20
	MaxPageSize                  = 200
	DefaultSessionIdleMinutes    = 120
	DefaultCleanupIntervalHours  = 1
	DefaultRetentionDays         = 30
	ServerErrorChannelSize       = 1
	SessionHeader                = "X-Session-ID"
)

// Validation limits
const (
	MaxCandidateIDLength = 128
	MaxQueryLength       = 256
	MaxPageNumber        = 100000
)
