// Package report builds the daily feedback report and the structured summary
// on top of the insight pipeline, memoizing results in date-keyed ttl cells.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedpulse/pkg/cache"
	"github.com/umputun/feedpulse/pkg/domain"
	"github.com/umputun/feedpulse/pkg/insight"
)

// storageHint is attached to every storage failure
const storageHint = "check that the database is reachable and the feedback table exists, then retry"

// Store reads feedback rows
type Store interface {
	ListFeedback(ctx context.Context) ([]domain.FeedbackRecord, error)
}

// StorageError reports a failed feedback read with a remediation hint
type StorageError struct {
	Err  error
	Hint string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("feedback storage unavailable: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Config holds report service settings
type Config struct {
	ReportTTL         time.Duration
	NarrativeTTL      time.Duration
	SummaryTTL        time.Duration
	EnterpriseSources []string
	MinSharePercent   int // 0 disables the oracle share check
	MaxPromptComments int
	HeadlineCount     int
	OracleTimeout     time.Duration
}

// Service produces reports and summaries. It is safe for concurrent use,
// overlapping requests may recompute the same expired entry.
type Service struct {
	store         Store
	oracle        insight.Oracle
	aggregator    *insight.Aggregator
	resolver      *insight.Resolver
	now           cache.Clock
	headlineCount int
	oracleTimeout time.Duration

	reports    cache.Store[domain.Report]
	narratives cache.Store[string]
	summaries  cache.Store[domain.SummaryView]
}

// Option customizes the service
type Option func(s *Service)

// WithClock sets the clock used for partitioning and cache validity
func WithClock(now cache.Clock) Option {
	return func(s *Service) { s.now = now }
}

// WithCaches replaces the default ttl cells, nil arguments keep the defaults
func WithCaches(reports cache.Store[domain.Report], narratives cache.Store[string], summaries cache.Store[domain.SummaryView]) Option {
	return func(s *Service) {
		if reports != nil {
			s.reports = reports
		}
		if narratives != nil {
			s.narratives = narratives
		}
		if summaries != nil {
			s.summaries = summaries
		}
	}
}

// NewService makes a report service. The oracle may be nil, then every
// oracle-backed step uses its deterministic fallback.
func NewService(store Store, oracle insight.Oracle, cfg Config, opts ...Option) *Service {
	if cfg.ReportTTL <= 0 {
		cfg.ReportTTL = 120 * time.Second
	}
	if cfg.NarrativeTTL <= 0 {
		cfg.NarrativeTTL = 300 * time.Second
	}
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = 30 * time.Second
	}
	if cfg.HeadlineCount <= 0 {
		cfg.HeadlineCount = insight.DefaultHeadlineCount
	}

	aggregator := insight.NewAggregator(cfg.EnterpriseSources)
	s := &Service{
		store:         store,
		oracle:        oracle,
		aggregator:    aggregator,
		headlineCount: cfg.HeadlineCount,
		oracleTimeout: cfg.OracleTimeout,
		now:           time.Now,
		resolver: insight.NewResolver(oracle, aggregator, insight.ResolverConfig{
			MinSharePercent:   cfg.MinSharePercent,
			MaxPromptComments: cfg.MaxPromptComments,
			Timeout:           cfg.OracleTimeout,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}

	// default cells share the service clock
	if s.reports == nil {
		s.reports = cache.NewCell[domain.Report](cfg.ReportTTL, s.now)
	}
	if s.narratives == nil {
		s.narratives = cache.NewCell[string](cfg.NarrativeTTL, s.now)
	}
	if s.summaries == nil {
		s.summaries = cache.NewCell[domain.SummaryView](cfg.SummaryTTL, s.now)
	}
	return s
}

// Report returns the rendered report for today, served from cache while valid
func (s *Service) Report(ctx context.Context) (domain.Report, error) {
	now := s.now().UTC()
	key := domain.DayKey(now)
	if rep, ok := s.reports.Get(key); ok {
		return rep, nil
	}

	records, err := s.load(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	rep := s.buildReport(ctx, records, now)
	s.reports.Put(key, rep)
	return rep, nil
}

// Summary returns the structured summary with KPI themes, served from cache while valid
func (s *Service) Summary(ctx context.Context) (domain.SummaryView, error) {
	now := s.now().UTC()
	key := domain.DayKey(now)
	if view, ok := s.summaries.Get(key); ok {
		return view, nil
	}

	records, err := s.load(ctx)
	if err != nil {
		return domain.SummaryView{}, err
	}
	view := s.buildSummary(ctx, records, now)
	s.summaries.Put(key, view)
	return view, nil
}

// Refresh recomputes report and summary from one storage read and replaces
// both cached entries. The narrative keeps its own ttl.
func (s *Service) Refresh(ctx context.Context) error {
	now := s.now().UTC()
	key := domain.DayKey(now)
	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	var rep domain.Report
	var view domain.SummaryView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rep = s.buildReport(gctx, records, now)
		return nil
	})
	g.Go(func() error {
		view = s.buildSummary(gctx, records, now)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh report: %w", err)
	}

	s.reports.Put(key, rep)
	s.summaries.Put(key, view)
	return nil
}

// Status describes cache state
type Status struct {
	Date              string    `json:"date"`
	OracleEnabled     bool      `json:"oracle_enabled"`
	ReportCachedAt    time.Time `json:"report_cached_at"`
	NarrativeCachedAt time.Time `json:"narrative_cached_at"`
	SummaryCachedAt   time.Time `json:"summary_cached_at"`
}

// Status reports when each cache was last filled, zero time for empty or custom caches
func (s *Service) Status() Status {
	return Status{
		Date:              domain.DayKey(s.now()),
		OracleEnabled:     s.oracle != nil,
		ReportCachedAt:    cachedAt(s.reports),
		NarrativeCachedAt: cachedAt(s.narratives),
		SummaryCachedAt:   cachedAt(s.summaries),
	}
}

func cachedAt(store any) time.Time {
	if c, ok := store.(interface{ CachedAt() time.Time }); ok {
		return c.CachedAt()
	}
	return time.Time{}
}

func (s *Service) load(ctx context.Context) ([]domain.FeedbackRecord, error) {
	records, err := s.store.ListFeedback(ctx)
	if err != nil {
		lgr.Printf("[ERROR] failed to read feedback: %v", err)
		return nil, &StorageError{Err: err, Hint: storageHint}
	}
	return records, nil
}

// inferWithTimeout calls the oracle with the configured timeout
func (s *Service) inferWithTimeout(ctx context.Context, prompt string) (string, error) {
	if s.oracle == nil {
		return "", fmt.Errorf("oracle is not configured")
	}
	if s.oracleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.oracleTimeout)
		defer cancel()
	}
	return s.oracle.Infer(ctx, prompt)
}
