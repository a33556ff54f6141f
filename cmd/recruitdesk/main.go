package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recruitdesk/internal/aggregator"
	"recruitdesk/internal/config"
	"recruitdesk/internal/constants"
	"recruitdesk/internal/database"
	"recruitdesk/internal/models"
	"recruitdesk/internal/moderation"
	"recruitdesk/internal/normalize"
	"recruitdesk/internal/notify"
	"recruitdesk/internal/retry"
	"recruitdesk/internal/service"
	"recruitdesk/internal/tracing"
	"recruitdesk/pkg/recordstore"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "recruitdesk",
		Short:         "Recruiting dashboard backend: candidate conversations and crafted-message moderation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.json", "Path to configuration file (JSON or YAML)")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging (includes request headers)")

	root.AddCommand(newServeCmd(opts), newConversationsCmd(opts), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "recruitdesk %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
			return err
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}
}

func newConversationsCmd(opts *rootOptions) *cobra.Command {
	var q service.ConversationsQuery

	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "Aggregate the candidates table once and print one page of conversations as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConversations(cmd.Context(), opts, q, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&q.PageSize, "page-size", 0, "Page size (0 uses the configured default)")
	cmd.Flags().StringVar(&q.Query, "q", "", "Filter applied before pagination")
	cmd.Flags().StringVar(&q.Search, "search", "", "Filter applied to the returned page")
	return cmd
}

// newLogger builds the process logger. Without --verbose the configured level is capped at info.
func newLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

func applyLogLevel(logger *logrus.Logger, level string, verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	if level == "" {
		logger.SetLevel(logrus.InfoLevel)
		return
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level %q, defaulting to info", level)
		logger.SetLevel(logrus.InfoLevel)
		return
	}
	if parsed > logrus.InfoLevel {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
}

// newDashboard wires the aggregation pipeline. recorder and events may be nil.
func newDashboard(cfg *models.Config, notifier moderation.Notifier, recorder moderation.EventRecorder, events service.EventLister, logger *logrus.Logger) *service.Dashboard {
	rs := cfg.RecordStore
	client := recordstore.NewClientWithLogger(rs.APIBaseURL, rs.APIToken,
		&http.Client{Timeout: time.Duration(rs.TimeoutSec) * time.Second}, logger)

	agg := aggregator.New(client, aggregator.Options{
		Project:        rs.Project,
		MaxPageSize:    rs.MaxPageSize,
		MaxConcurrency: rs.MaxConcurrency,
		Retry:          retry.FromRetryConfig(cfg.Retry),
	}, logger)

	norm := normalize.New(time.Now)
	wf := moderation.NewWorkflow(notifier, recorder,
		time.Duration(cfg.Moderation.TimeoutSec)*time.Second, logger, time.Now)

	return service.NewDashboard(agg, norm, wf, events, rs, cfg.Server.DefaultPageSize, logger)
}

func openDatabase(ctx context.Context, cfg *models.Config, logger *logrus.Logger) (*database.Database, error) {
	backoffConfig := retry.FromRetryConfig(cfg.Retry)
	backoffConfig.MaxAttempts = constants.DefaultDatabaseRetryAttempts

	var db *database.Database
	err := retry.NewBackoff(backoffConfig).Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.Warnf("Failed to initialize database: %v", initErr)
		}
		return initErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database after retries: %w", err)
	}
	return db, nil
}

func runServe(ctx context.Context, opts *rootOptions, logOut io.Writer) error {
	logger := newLogger(logOut)

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLogLevel(logger, cfg.LogLevel, opts.verbose)

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting recruitdesk")

	tracingManager := tracing.NewManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	notifier, err := notify.New(cfg.Moderation, logger)
	if err != nil {
		return fmt.Errorf("failed to create moderation notifier: %w", err)
	}
	defer notifier.Close()

	dashboard := newDashboard(cfg, notifier, db, db, logger)

	sessions := service.NewSessionStore(time.Duration(cfg.Server.SessionIdleMinutes)*time.Minute, logger)

	scheduler := service.NewScheduler(sessions, db, cfg.RetentionDays, cfg.Server.CleanupIntervalHours, logger)
	go scheduler.Start(ctx)
	defer scheduler.Stop()

	watcher := config.NewConfigWatcher(opts.configPath, logger)
	watcher.OnConfigChange(func(newCfg *models.Config) {
		applyLogLevel(logger, newCfg.LogLevel, opts.verbose)
		scheduler.SetRetentionDays(newCfg.RetentionDays)
	})
	go func() {
		if err := watcher.Start(ctx); err != nil {
			logger.WithError(err).Warn("Configuration watcher stopped")
		}
	}()

	var breakers []BreakerSource
	if b, ok := notifier.(BreakerSource); ok {
		breakers = append(breakers, b)
	}

	server := NewServer(cfg, dashboard, sessions, logger, breakers...)
	serverErrCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

// runConversations performs one aggregation without the audit log or a notifier
func runConversations(ctx context.Context, opts *rootOptions, q service.ConversationsQuery, out, logOut io.Writer) error {
	logger := newLogger(logOut)

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLogLevel(logger, cfg.LogLevel, opts.verbose)
	if !opts.verbose {
		logger.SetLevel(logrus.WarnLevel)
	}

	dashboard := newDashboard(cfg, nil, nil, nil, logger)
	sess := moderation.NewSession(uuid.NewString(), nil)

	page, err := dashboard.Conversations(ctx, sess, q)
	if err != nil {
		return fmt.Errorf("failed to aggregate conversations: %w", err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(page)
}
