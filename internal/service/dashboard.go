package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"recruitdesk/internal/aggregator"
	"recruitdesk/internal/constants"
	"recruitdesk/internal/conversation"
	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/listing"
	"recruitdesk/internal/models"
	"recruitdesk/internal/moderation"
	"recruitdesk/internal/normalize"
	"recruitdesk/internal/privacy"
)

// EventLister reads the moderation audit log
type EventLister interface {
	ListEvents(ctx context.Context, candidateID string, limit int) ([]models.ModerationEvent, error)
}

// ConversationsQuery selects one page of the dashboard list
type ConversationsQuery struct {
	Page     int
	PageSize int
	// Query narrows the aggregated set before pagination
	Query string
	// Search narrows the returned page only
	Search string
	// Refresh forces a new upstream aggregation even when a snapshot exists
	Refresh bool
}

// ConversationsPage is the dashboard list response
type ConversationsPage struct {
	Conversations []models.Conversation             `json:"conversations"`
	Pagination    models.Pagination                 `json:"pagination"`
	Stats         models.Stats                      `json:"stats"`
	Prompts       map[string][]models.CraftedPrompt `json:"prompts"`
	FailedPages   []int                             `json:"failedPages,omitempty"`
}

// JobsQuery selects one page of jobs
type JobsQuery struct {
	Page     int
	PageSize int
	Query    string
}

// JobsPage is the jobs list response
type JobsPage struct {
	Jobs        []models.Job      `json:"jobs"`
	Pagination  models.Pagination `json:"pagination"`
	FailedPages []int             `json:"failedPages,omitempty"`
}

// Dashboard runs the fetch, normalize, assemble, sort and filter pipeline for sessions
type Dashboard struct {
	aggregator      *aggregator.Aggregator
	normalizer      *normalize.Normalizer
	workflow        *moderation.Workflow
	events          EventLister
	cfg             models.RecordStoreConfig
	defaultPageSize int
	logger          *logrus.Logger
}

// NewDashboard wires the pipeline. events may be nil when the audit log is disabled.
func NewDashboard(agg *aggregator.Aggregator, norm *normalize.Normalizer, wf *moderation.Workflow, events EventLister, cfg models.RecordStoreConfig, defaultPageSize int, logger *logrus.Logger) *Dashboard {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	if defaultPageSize <= 0 {
		defaultPageSize = constants.DefaultPageSize
	}
	return &Dashboard{
		aggregator:      agg,
		normalizer:      norm,
		workflow:        wf,
		events:          events,
		cfg:             cfg,
		defaultPageSize: defaultPageSize,
		logger:          logger,
	}
}

func (d *Dashboard) pageSize(requested int) int {
	if requested <= 0 {
		return d.defaultPageSize
	}
	return min(requested, constants.MaxPageSize)
}

// Conversations returns one page of the session's conversation list.
// The upstream set is aggregated when the session has no snapshot yet or when q.Refresh is set.
func (d *Dashboard) Conversations(ctx context.Context, sess *moderation.Session, q ConversationsQuery) (*ConversationsPage, error) {
	entries, stats, ok := sess.Snapshot()

	var failed []int
	if q.Refresh || !ok {
		var err error
		entries, stats, failed, err = d.refresh(ctx, sess)
		if err != nil {
			return nil, err
		}
	}

	filtered := listing.FilterQuery(entries, q.Query)
	pageEntries, pagination := listing.Paginate(filtered, q.Page, d.pageSize(q.PageSize))
	convs := listing.Search(listing.Conversations(pageEntries), q.Search)

	ids := make([]string, len(convs))
	for i, c := range convs {
		ids[i] = c.CandidateID
	}

	return &ConversationsPage{
		Conversations: convs,
		Pagination:    pagination,
		Stats:         stats,
		Prompts:       sess.AllPrompts(ids),
		FailedPages:   failed,
	}, nil
}

// refresh aggregates, assembles and commits a new snapshot under the session's fetch token
func (d *Dashboard) refresh(ctx context.Context, sess *moderation.Session) ([]listing.Entry, models.Stats, []int, error) {
	token := sess.BeginFetch()

	state, err := d.aggregator.FetchAll(ctx, d.cfg.CandidatesTable, "", d.cfg.SortKey)
	if err != nil {
		return nil, models.Stats{}, nil, err
	}

	entries := d.assemble(state.Collected)
	listing.Sort(entries)
	stats := listing.ComputeStats(entries)

	if !sess.Commit(token, entries, stats) {
		d.logger.WithFields(logrus.Fields{
			LogFieldSession: privacy.MaskSessionID(sess.ID),
			LogFieldCount:   len(entries),
		}).Info("Discarding stale fetch result")
		return nil, models.Stats{}, nil, apperrors.NewSupersededError(sess.ID)
	}

	d.logger.WithFields(logrus.Fields{
		LogFieldSession: privacy.MaskSessionID(sess.ID),
		LogFieldCount:   stats.Total,
		"with_messages": stats.WithMessages,
		"failed_pages":  len(state.FailedPages),
	}).Info("Completed conversation refresh")

	return entries, stats, state.FailedPages, nil
}

// assemble normalizes every record and builds its conversation.
// Records without an id get a positional one so they can still be addressed.
func (d *Dashboard) assemble(records []models.RawRecord) []listing.Entry {
	entries := make([]listing.Entry, 0, len(records))
	for i, r := range records {
		c := d.normalizer.Candidate(r)
		if c.ID == "" {
			c.ID = fmt.Sprintf("row-%d", i+1)
			d.logger.WithFields(logrus.Fields{
				LogFieldCandidateID: c.ID,
				"email":             privacy.MaskEmail(c.Email),
				"phone":             privacy.MaskPhoneNumber(c.Phone),
			}).Debug("Record has no id; using position")
		}
		entries = append(entries, listing.Entry{
			Candidate:    c,
			Conversation: conversation.Build(&c, d.normalizer.Now),
		})
	}
	return entries
}

// Conversation returns one conversation from the session's committed snapshot
func (d *Dashboard) Conversation(sess *moderation.Session, candidateID string) (models.Conversation, error) {
	conv, ok := sess.Conversation(candidateID)
	if !ok {
		return models.Conversation{}, apperrors.NewNotFoundError("Conversation", candidateID)
	}
	return conv, nil
}

// Prompts lists the visible crafted drafts of one candidate
func (d *Dashboard) Prompts(sess *moderation.Session, candidateID string) ([]models.CraftedPrompt, error) {
	if _, ok := sess.Conversation(candidateID); !ok {
		return nil, apperrors.NewNotFoundError("Conversation", candidateID)
	}
	return sess.Prompts(candidateID), nil
}

// Decide applies an accept or reject decision to a crafted draft
func (d *Dashboard) Decide(ctx context.Context, sess *moderation.Session, candidateID string, ch models.Channel, decision models.Decision) (*moderation.Result, error) {
	start := time.Now()

	var (
		result *moderation.Result
		err    error
	)
	switch decision {
	case models.DecisionAccept:
		result, err = d.workflow.Approve(ctx, sess, candidateID, ch)
	case models.DecisionReject:
		result, err = d.workflow.Reject(ctx, sess, candidateID, ch)
	default:
		return nil, apperrors.NewValidationError("decision", string(decision), "must be accept or reject")
	}
	if err != nil {
		return nil, err
	}

	d.logger.WithFields(logrus.Fields{
		LogFieldCandidateID: candidateID,
		LogFieldChannel:     ch,
		LogFieldDecision:    decision,
		"already_decided":   result.AlreadyDecided,
		LogFieldDuration:    time.Since(start).Milliseconds(),
	}).Debug("Crafted message decision handled")

	return result, nil
}

// Jobs aggregates the jobs table and returns one filtered page
func (d *Dashboard) Jobs(ctx context.Context, q JobsQuery) (*JobsPage, error) {
	state, err := d.aggregator.FetchAll(ctx, d.cfg.JobsTable, "", d.cfg.SortKey)
	if err != nil {
		return nil, err
	}

	jobs := make([]models.Job, 0, len(state.Collected))
	for _, r := range state.Collected {
		jobs = append(jobs, d.normalizer.Job(r))
	}

	page, pagination := listing.Paginate(listing.FilterJobs(jobs, q.Query), q.Page, d.pageSize(q.PageSize))
	return &JobsPage{Jobs: page, Pagination: pagination, FailedPages: state.FailedPages}, nil
}

// Events lists the newest moderation audit rows
func (d *Dashboard) Events(ctx context.Context, candidateID string, limit int) ([]models.ModerationEvent, error) {
	if d.events == nil {
		return []models.ModerationEvent{}, nil
	}
	if limit <= 0 {
		limit = constants.DefaultModerationEventsLimit
	}
	return d.events.ListEvents(ctx, candidateID, min(limit, constants.MaxModerationEventsLimit))
}
