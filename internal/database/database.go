package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/migrations"
	"recruitdesk/internal/models"
	"recruitdesk/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the SQLite moderation audit log
type Database struct {
	db  *sql.DB
	now func() time.Time
}

func New(dbPath string) (*Database, error) {
	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema, err := migrations.GetInitialSchema()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to read schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Database{db: db, now: time.Now}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// RecordEvent appends one dispatch outcome to the audit log
func (d *Database) RecordEvent(ctx context.Context, event models.ModerationEvent) error {
	if event.ID == "" {
		return apperrors.NewValidationError("id", "", "event id is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = d.now()
	}

	var errText sql.NullString
	if event.Error != "" {
		errText = sql.NullString{String: event.Error, Valid: true}
	}

	err := retryableDBOperationNoReturn(ctx, func() error {
		_, err := d.db.ExecContext(ctx, InsertModerationEventQuery,
			event.ID,
			event.CandidateID,
			string(event.Channel),
			string(event.Decision),
			string(event.Status),
			errText,
			event.CreatedAt.UTC(),
		)
		return err
	}, "record moderation event")
	if err != nil {
		return apperrors.NewDatabaseError("insert", err).WithContext("candidate_id", event.CandidateID)
	}
	return nil
}

// ListEvents returns the newest events first, optionally for a single candidate
func (d *Database) ListEvents(ctx context.Context, candidateID string, limit int) ([]models.ModerationEvent, error) {
	if limit <= 0 {
		return []models.ModerationEvent{}, nil
	}

	var (
		rows *sql.Rows
		err  error
	)
	if candidateID == "" {
		rows, err = d.db.QueryContext(ctx, SelectModerationEventsQuery, limit)
	} else {
		rows, err = d.db.QueryContext(ctx, SelectModerationEventsByCandidateQuery, candidateID, limit)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("select", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]models.ModerationEvent, 0, limit)
	for rows.Next() {
		var (
			event   models.ModerationEvent
			channel string
			dec     string
			status  string
			errText sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.CandidateID, &channel, &dec, &status, &errText, &event.CreatedAt); err != nil {
			return nil, apperrors.NewDatabaseError("scan", err)
		}
		event.Channel = models.Channel(channel)
		event.Decision = models.Decision(dec)
		event.Status = models.DispatchStatus(status)
		event.Error = errText.String
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("select", err)
	}

	return events, nil
}

// CleanupOldEvents deletes events older than retentionDays and reports how many were removed
func (d *Database) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := d.now().Add(-time.Duration(retentionDays) * 24 * time.Hour).UTC()

	var deleted int64
	err := retryableDBOperationNoReturn(ctx, func() error {
		res, err := d.db.ExecContext(ctx, DeleteModerationEventsBeforeQuery, cutoff)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	}, "cleanup moderation events")
	if err != nil {
		return 0, apperrors.NewDatabaseError("delete", err)
	}
	return deleted, nil
}
