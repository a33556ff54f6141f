package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func event(id, candidate string, status models.DispatchStatus, at time.Time) models.ModerationEvent {
	return models.ModerationEvent{
		ID:          id,
		CandidateID: candidate,
		Channel:     models.ChannelMail,
		Decision:    models.DecisionAccept,
		Status:      status,
		CreatedAt:   at,
	}
}

func TestNew_InvalidPaths(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("audit\x00.db")
	assert.Error(t, err)

	_, err = New("../escape/audit.db")
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "missing", "dir", "audit.db"))
	assert.Error(t, err)
}

func TestRecordAndListEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.RecordEvent(ctx, event("e1", "rec1", models.DispatchSent, base)))
	failed := event("e2", "rec2", models.DispatchFailed, base.Add(time.Minute))
	failed.Decision = models.DecisionReject
	failed.Channel = models.ChannelWhatsApp
	failed.Error = "webhook returned 502"
	require.NoError(t, db.RecordEvent(ctx, failed))
	require.NoError(t, db.RecordEvent(ctx, event("e3", "rec1", models.DispatchSent, base.Add(2*time.Minute))))

	all, err := db.ListEvents(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"e3", "e2", "e1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	got := all[1]
	assert.Equal(t, "rec2", got.CandidateID)
	assert.Equal(t, models.ChannelWhatsApp, got.Channel)
	assert.Equal(t, models.DecisionReject, got.Decision)
	assert.Equal(t, models.DispatchFailed, got.Status)
	assert.Equal(t, "webhook returned 502", got.Error)
	assert.True(t, got.CreatedAt.Equal(base.Add(time.Minute)), "created_at round trip: %v", got.CreatedAt)
	assert.Empty(t, all[0].Error)

	forRec1, err := db.ListEvents(ctx, "rec1", 10)
	require.NoError(t, err)
	require.Len(t, forRec1, 2)
	assert.Equal(t, "e3", forRec1[0].ID)

	limited, err := db.ListEvents(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := db.ListEvents(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordEvent_Validation(t *testing.T) {
	db := setupTestDB(t)

	err := db.RecordEvent(context.Background(), models.ModerationEvent{CandidateID: "rec1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
}

func TestRecordEvent_DefaultsTimestamp(t *testing.T) {
	db := setupTestDB(t)
	fixed := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)
	db.now = func() time.Time { return fixed }

	require.NoError(t, db.RecordEvent(context.Background(), event("e1", "rec1", models.DispatchSent, time.Time{})))

	events, err := db.ListEvents(context.Background(), "rec1", 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].CreatedAt.Equal(fixed))
}

func TestRecordEvent_DuplicateIDIsNotRetried(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.RecordEvent(ctx, event("dup", "rec1", models.DispatchSent, at)))

	start := time.Now()
	err := db.RecordEvent(ctx, event("dup", "rec1", models.DispatchSent, at))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDatabaseQuery, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "non-retryable")
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestCleanupOldEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	for i, age := range []int{1, 10, 31, 90} {
		at := now.Add(-time.Duration(age) * 24 * time.Hour)
		require.NoError(t, db.RecordEvent(ctx, event(fmt.Sprintf("e%d", i), "rec1", models.DispatchSent, at)))
	}

	deleted, err := db.CleanupOldEvents(ctx, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	remaining, err := db.ListEvents(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "e0", remaining[0].ID)
	assert.Equal(t, "e1", remaining[1].ID)

	deleted, err = db.CleanupOldEvents(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestRetryableDBOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after lock contention", func(t *testing.T) {
		calls := 0
		err := retryableDBOperationNoReturn(ctx, func() error {
			calls++
			if calls < 2 {
				return errors.New("database is locked")
			}
			return nil
		}, "insert")
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("constraint errors stop immediately", func(t *testing.T) {
		calls := 0
		err := retryableDBOperationNoReturn(ctx, func() error {
			calls++
			return errors.New("UNIQUE constraint failed: moderation_events.id")
		}, "insert")
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Contains(t, err.Error(), "insert failed (non-retryable)")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := retryableDBOperationNoReturn(cancelled, func() error { return nil }, "insert")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsRetryableDBError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("database is locked"), true},
		{errors.New("disk I/O error"), true},
		{errors.New("no such table: moderation_events"), false},
		{context.DeadlineExceeded, false},
		{fmt.Errorf("wrapped: %w", context.Canceled), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isRetryableDBError(tt.err), "%v", tt.err)
	}
}
