// Package aggregator collects a complete table from the paginated record store.
package aggregator

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"recruitdesk/internal/constants"
	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/metrics"
	"recruitdesk/internal/models"
	"recruitdesk/internal/retry"
	"recruitdesk/internal/tracing"
	"recruitdesk/pkg/recordstore"
)

// Options configures one Aggregator
type Options struct {
	Project        string
	MaxPageSize    int
	MaxConcurrency int
	Retry          retry.BackoffConfig
	Metrics        *metrics.Registry
}

// State is the outcome of one aggregation run.
// len(Collected) never exceeds ReportedTotal.
type State struct {
	Collected         []models.RawRecord
	ReportedTotal     int
	EffectivePageSize int
	PagesFetched      int
	FailedPages       []int
}

type Aggregator struct {
	client  recordstore.Client
	opts    Options
	backoff *retry.Backoff
	metrics *metrics.Registry
	logger  *logrus.Logger
}

func New(client recordstore.Client, opts Options, logger *logrus.Logger) *Aggregator {
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = constants.DefaultMaxPageSize
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = constants.DefaultFetchConcurrency
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultBackoffConfig()
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.GetRegistry()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &Aggregator{
		client:  client,
		opts:    opts,
		backoff: retry.NewBackoff(opts.Retry),
		metrics: reg,
		logger:  logger,
	}
}

// FetchAll retrieves every record of table matching query.
// Page 1 is fetched first to learn the reported total and the page size the
// store actually honors; the remaining pages are fetched concurrently. A page
// that still fails after retries contributes no records. Only a failure of
// page 1 is returned as an error.
func (a *Aggregator) FetchAll(ctx context.Context, table, query, sortKey string) (*State, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "aggregator.FetchAll",
		attribute.String("table", table),
		attribute.Bool("has_query", query != ""),
	)
	defer span.End()

	base := recordstore.PageRequest{
		Project:  a.opts.Project,
		Table:    table,
		PageSize: a.opts.MaxPageSize,
		Query:    query,
		Sort:     sortKey,
	}

	first, err := a.fetchPage(ctx, base, 1)
	if err != nil {
		tracing.RecordError(ctx, err)
		a.metrics.IncrementCounter("aggregation_failures_total", map[string]string{"table": table}, "Aggregations aborted because page 1 failed")
		return nil, apperrors.Wrap(err, apperrors.GetCode(err), "failed to fetch first page").
			WithContext("table", table).
			WithUserMessage("The record store is unavailable")
	}

	state := &State{
		ReportedTotal:     reportedTotal(first),
		EffectivePageSize: effectivePageSize(len(first.Records), base.PageSize),
		PagesFetched:      1,
	}
	totalPages := pageCount(state.ReportedTotal, state.EffectivePageSize)

	pages := make([][]models.RawRecord, max(totalPages, 1))
	pages[0] = first.Records

	if totalPages > 1 {
		// follow-up pages use the size the store actually honored so page offsets line up
		base.PageSize = state.EffectivePageSize

		var (
			mu sync.Mutex
			g  errgroup.Group
		)
		g.SetLimit(a.opts.MaxConcurrency)

		for p := 2; p <= totalPages; p++ {
			g.Go(func() error {
				page, err := a.fetchPage(ctx, base, p)
				if err != nil && ctx.Err() != nil {
					// cancellation aborts the whole aggregation rather than one page
					return ctx.Err()
				}

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					state.FailedPages = append(state.FailedPages, p)
					return nil
				}
				pages[p-1] = page.Records
				state.PagesFetched++
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			tracing.RecordError(ctx, err)
			return nil, apperrors.Wrap(err, apperrors.ErrCodeTimeout, "aggregation cancelled").WithContext("table", table)
		}
		slices.Sort(state.FailedPages)
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTimeout, "aggregation cancelled").WithContext("table", table)
	}

	collected := make([]models.RawRecord, 0, state.ReportedTotal)
	for _, records := range pages {
		collected = append(collected, records...)
	}
	if len(collected) > state.ReportedTotal {
		collected = collected[:state.ReportedTotal]
	}
	state.Collected = collected

	span.SetAttributes(
		attribute.Int("reported_total", state.ReportedTotal),
		attribute.Int("effective_page_size", state.EffectivePageSize),
		attribute.Int("pages_total", totalPages),
		attribute.Int("pages_failed", len(state.FailedPages)),
	)
	a.metrics.RecordTimer("aggregation_duration", time.Since(start), map[string]string{"table": table})

	a.logger.WithFields(logrus.Fields{
		"table":               table,
		"reported_total":      state.ReportedTotal,
		"collected":           len(state.Collected),
		"effective_page_size": state.EffectivePageSize,
		"pages_total":         totalPages,
		"pages_failed":        len(state.FailedPages),
		"duration_ms":         time.Since(start).Milliseconds(),
	}).Debug("Aggregation completed")

	return state, nil
}

// fetchPage retries retryable failures. Errors are logged here so callers can substitute.
func (a *Aggregator) fetchPage(ctx context.Context, base recordstore.PageRequest, page int) (*recordstore.Page, error) {
	req := base
	req.Page = page
	labels := map[string]string{"table": req.Table}

	ctx, span := tracing.StartSpan(ctx, "aggregator.fetchPage", attribute.Int("page", page))
	defer span.End()

	var result *recordstore.Page
	err := a.backoff.RetryWithPredicate(ctx, func() error {
		var err error
		result, err = a.client.FetchPage(ctx, req)
		return err
	}, apperrors.IsRetryable)
	if err != nil {
		tracing.RecordError(ctx, err)
		a.metrics.IncrementCounter("record_pages_failed_total", labels, "Record store pages that failed after retries")
		apperrors.Entry(a.logger, err).WithFields(logrus.Fields{
			"table": req.Table,
			"page":  page,
		}).Warn("Record store page fetch failed")
		return nil, err
	}

	a.metrics.IncrementCounter("record_pages_fetched_total", labels, "Record store pages fetched")
	return result, nil
}

// reportedTotal falls back to the page 1 count when the store reports no total
func reportedTotal(first *recordstore.Page) int {
	if !first.TotalKnown {
		return len(first.Records)
	}
	return max(first.Total, 0)
}

func effectivePageSize(actual, requested int) int {
	if actual > 0 {
		return actual
	}
	return max(1, requested)
}

func pageCount(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
