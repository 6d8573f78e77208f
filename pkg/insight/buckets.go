package insight

import (
	"context"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedpulse/pkg/domain"
	"github.com/umputun/feedpulse/pkg/theme"
)

// Oracle is an external text-generation service
type Oracle interface {
	Infer(ctx context.Context, prompt string) (string, error)
}

// VariousFeedback labels low impact records without a usable theme
const VariousFeedback = "Various Feedback"

// PreferredMonitorTheme wins the monitor bucket whenever it has a matching record
const PreferredMonitorTheme = theme.Authentication

// neverSurface themes are not shown in monitor and low impact buckets
var neverSurface = []string{theme.Notifications, theme.TicketStatus}

// ResolverConfig holds bucket resolver settings
type ResolverConfig struct {
	MinSharePercent   int           // minimum share of the sample an oracle theme must cover, 0 disables the check
	MaxPromptComments int           // comments sent to the oracle per bucket
	Timeout           time.Duration // deadline for all oracle calls of one Resolve, 0 means no extra timeout
}

// Resolver picks one theme per sentiment bucket, using the oracle when
// available and the keyword matcher otherwise
type Resolver struct {
	oracle     Oracle
	aggregator *Aggregator
	cfg        ResolverConfig
}

// NewResolver makes a bucket resolver, oracle may be nil
func NewResolver(oracle Oracle, aggregator *Aggregator, cfg ResolverConfig) *Resolver {
	if cfg.MinSharePercent < 0 {
		cfg.MinSharePercent = 0
	}
	if cfg.MaxPromptComments <= 0 {
		cfg.MaxPromptComments = 50
	}
	return &Resolver{oracle: oracle, aggregator: aggregator, cfg: cfg}
}

// Resolve returns KPI themes for critical (negative), monitor (neutral) and
// low impact (positive) buckets. A theme is never shown in two buckets.
// Oracle calls for all buckets share one timeout.
func (r *Resolver) Resolve(ctx context.Context, records []domain.FeedbackRecord) domain.KpiThemes {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	var negative, neutral, positive []domain.FeedbackRecord
	for _, rec := range records {
		switch rec.Polarity() {
		case domain.SentimentNegative:
			negative = append(negative, rec)
		case domain.SentimentNeutral:
			neutral = append(neutral, rec)
		case domain.SentimentPositive:
			positive = append(positive, rec)
		}
	}

	res := domain.KpiThemes{}
	taken := map[string]bool{}

	res.Critical = r.classifyBucket(ctx, negative, nil, "")
	if res.Critical != nil {
		taken[res.Critical.Label] = true
	}

	monitorExcluded := union(taken, neverSurface)
	res.Monitor = r.classifyBucket(ctx, neutral, monitorExcluded, PreferredMonitorTheme)
	if res.Monitor != nil {
		taken[res.Monitor.Label] = true
	}

	if issues := r.lowImpact(positive, taken); len(issues) > 0 {
		res.Low = &domain.LowBucket{Issues: issues}
	}
	return res
}

// classifyBucket resolves a single theme for records. The preferred theme wins when
// present and allowed, then the oracle is asked, then the keyword majority is used.
func (r *Resolver) classifyBucket(ctx context.Context, records []domain.FeedbackRecord, excluded map[string]bool,
	preferred string) *domain.BucketKpi {
	if len(records) == 0 {
		return nil
	}

	if preferred != "" && !excluded[preferred] {
		if kpi := r.countTheme(records, preferred); kpi.Count > 0 {
			return &kpi
		}
	}

	kpi, err := r.oracleClassify(ctx, records, excluded)
	if err == nil {
		return kpi
	}
	lgr.Printf("[DEBUG] oracle classification of %d records rejected, using keyword fallback: %v", len(records), err)

	if ranked := r.rankThemes(records, excluded, false); len(ranked) > 0 {
		return &ranked[0]
	}
	return nil
}

// lowImpact returns up to three themes, relaxing exclusions step by step so the
// bucket is not empty as long as it has records
func (r *Resolver) lowImpact(records []domain.FeedbackRecord, taken map[string]bool) []domain.BucketKpi {
	if len(records) == 0 {
		return nil
	}
	if issues := top(r.rankThemes(records, union(taken, neverSurface), false), 3); len(issues) > 0 {
		return issues
	}
	if issues := top(r.rankThemes(records, taken, false), 3); len(issues) > 0 {
		return issues
	}
	return top(r.rankThemes(records, taken, true), 3)
}

// countTheme counts records matching a theme
func (r *Resolver) countTheme(records []domain.FeedbackRecord, label string) domain.BucketKpi {
	res := domain.BucketKpi{Label: label}
	for _, rec := range records {
		if theme.Classify(rec.Comment) != label {
			continue
		}
		res.Count++
		if r.aggregator.IsEnterprise(rec.Source) {
			res.EnterpriseCount++
		}
	}
	return res
}

// rankThemes counts keyword themes, skipping unclassified and excluded ones,
// sorted by count desc then label. With fold set, records without an allowed
// theme are counted as VariousFeedback.
func (r *Resolver) rankThemes(records []domain.FeedbackRecord, excluded map[string]bool, fold bool) []domain.BucketKpi {
	counts := map[string]*domain.BucketKpi{}
	for _, rec := range records {
		label := theme.Classify(rec.Comment)
		if label == theme.Unclassified || excluded[label] {
			if !fold || excluded[VariousFeedback] {
				continue
			}
			label = VariousFeedback
		}
		kpi, ok := counts[label]
		if !ok {
			kpi = &domain.BucketKpi{Label: label}
			counts[label] = kpi
		}
		kpi.Count++
		if r.aggregator.IsEnterprise(rec.Source) {
			kpi.EnterpriseCount++
		}
	}

	res := make([]domain.BucketKpi, 0, len(counts))
	for _, kpi := range counts {
		res = append(res, *kpi)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		return res[i].Label < res[j].Label
	})
	return res
}

func top(kpis []domain.BucketKpi, n int) []domain.BucketKpi {
	if len(kpis) > n {
		return kpis[:n]
	}
	return kpis
}

func union(set map[string]bool, extra []string) map[string]bool {
	res := make(map[string]bool, len(set)+len(extra))
	for k, v := range set {
		res[k] = v
	}
	for _, k := range extra {
		res[k] = true
	}
	return res
}
