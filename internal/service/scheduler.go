package service

import (
	"context"
	"sync/atomic"
	"time"

	"recruitdesk/internal/constants"

	"github.com/sirupsen/logrus"
)

// SessionEvictor drops idle dashboard sessions
type SessionEvictor interface {
	EvictIdle() int
}

// EventPurger removes audit rows past their retention
type EventPurger interface {
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type Scheduler struct {
	sessions      SessionEvictor
	events        EventPurger
	retentionDays atomic.Int64
	interval      time.Duration
	logger        *logrus.Logger
	stopCh        chan struct{}
}

// NewScheduler builds the periodic cleanup job. events may be nil when the audit log is disabled.
func NewScheduler(sessions SessionEvictor, events EventPurger, retentionDays, intervalHours int, logger *logrus.Logger) *Scheduler {
	if intervalHours <= 0 {
		intervalHours = constants.DefaultCleanupIntervalHours
	}
	s := &Scheduler{
		sessions: sessions,
		events:   events,
		interval: time.Duration(intervalHours) * time.Hour,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
	s.retentionDays.Store(int64(retentionDays))
	return s
}

// SetRetentionDays changes the retention applied from the next run on
func (s *Scheduler) SetRetentionDays(days int) {
	s.retentionDays.Store(int64(days))
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Starting cleanup scheduler")

	s.runCleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled, stopping")
			return
		case <-s.stopCh:
			s.logger.Info("Scheduler stop signal received, stopping")
			return
		case <-ticker.C:
			s.runCleanup(ctx)
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
}

func (s *Scheduler) runCleanup(ctx context.Context) {
	retentionDays := int(s.retentionDays.Load())
	s.logger.WithField("retentionDays", retentionDays).Info("Running scheduled cleanup")

	if s.sessions != nil {
		if n := s.sessions.EvictIdle(); n > 0 {
			s.logger.WithField(LogFieldCount, n).Info("Evicted idle sessions")
		}
	}

	if s.events == nil {
		return
	}
	deleted, err := s.events.CleanupOldEvents(ctx, retentionDays)
	if err != nil {
		s.logger.WithError(err).Error("Failed to cleanup old moderation events")
		return
	}
	s.logger.WithField(LogFieldCount, deleted).Info("Successfully completed cleanup")
}
