package service

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"recruitdesk/internal/aggregator"
	"recruitdesk/internal/models"
	"recruitdesk/internal/moderation"
	"recruitdesk/internal/normalize"
	"recruitdesk/internal/retry"
	"recruitdesk/pkg/recordstore"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// tableStore serves in-memory tables one page at a time
type tableStore struct {
	mu     sync.Mutex
	tables map[string][]models.RawRecord
	calls  atomic.Int32

	// when set, the first call signals entered and waits on gate
	entered chan struct{}
	gate    chan struct{}
	failAll bool
}

func (s *tableStore) FetchPage(ctx context.Context, req recordstore.PageRequest) (*recordstore.Page, error) {
	if s.calls.Add(1) == 1 && s.gate != nil {
		close(s.entered)
		<-s.gate
	}
	if s.failAll {
		return nil, context.DeadlineExceeded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[req.Table]
	start := min((req.Page-1)*req.PageSize, len(rows))
	end := min(start+req.PageSize, len(rows))
	return &recordstore.Page{Records: rows[start:end], Total: len(rows), TotalKnown: true}, nil
}

func (s *tableStore) set(table string, rows []models.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = rows
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, n models.DecisionNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) ListEvents(ctx context.Context, candidateID string, limit int) ([]models.ModerationEvent, error) {
	args := m.Called(ctx, candidateID, limit)
	events, _ := args.Get(0).([]models.ModerationEvent)
	return events, args.Error(1)
}

func (m *mockEvents) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

type mockEvictor struct {
	mock.Mock
}

func (m *mockEvictor) EvictIdle() int {
	return m.Called().Int(0)
}

func candidateRows() []models.RawRecord {
	return []models.RawRecord{
		{
			"id":            "rec1",
			"name":          "Ada Lovelace",
			"email":         "ada@example.com",
			"created_at":    "2026-01-10",
			"messages":      []any{"Recruiter - mail: Hello Ada", "Candidate - mail: Hi there"},
			"linkedinUrl":   "https://linkedin.com/in/ada",
			"crafted_email": "Following up on the role",
		},
		{
			"Name":             "Grace Hopper",
			"ID":               "rec2",
			"CurrentEmployer":  "US Navy",
			"CreatedAt":        "2026-03-01",
			"crafted_whatsapp": "Quick question",
			"preferredChannel": "linkedin",
		},
		{
			"id":             "rec3",
			"full_name":      "Alan Turing",
			"last_contacted": "2026-02-01",
			"conversation":   "Recruiter - linkedin: Are you open to work?",
		},
		{
			"name": "No Id Person",
		},
	}
}

func newTestDashboard(store recordstore.Client, notifier moderation.Notifier, events EventLister) *Dashboard {
	logger := testLogger()
	agg := aggregator.New(store, aggregator.Options{
		Project:     "talent",
		MaxPageSize: 2,
		Retry:       retry.BackoffConfig{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1, MaxAttempts: 1},
	}, logger)
	now := func() time.Time { return fixedNow }
	wf := moderation.NewWorkflow(notifier, nil, time.Second, logger, now)
	cfg := models.RecordStoreConfig{CandidatesTable: "candidates", JobsTable: "jobs", SortKey: "-CreatedAt"}
	return NewDashboard(agg, normalize.New(now), wf, events, cfg, 2, logger)
}
