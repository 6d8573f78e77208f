package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedpulse/pkg/domain"
	"github.com/umputun/feedpulse/pkg/insight"
	"github.com/umputun/feedpulse/pkg/llm"
)

// maxSummaryComments limits negative comments sent for the structured summary
const maxSummaryComments = 50

type summaryResponse struct {
	OverallSummary  string   `json:"overall_summary"`
	TopUrgentIssues []string `json:"top_urgent_issues"`
}

// buildSummary computes KPI themes over today's records and the structured
// summary over all records in parallel
func (s *Service) buildSummary(ctx context.Context, records []domain.FeedbackRecord, now time.Time) domain.SummaryView {
	view := domain.SummaryView{
		Date:        domain.DayKey(now),
		GeneratedAt: now,
		HasData:     len(records) > 0,
	}
	if len(records) == 0 {
		view.Summary = domain.Summary{
			OverallSummary:  domain.NoDataMessage,
			BySource:        []domain.SourceSummary{},
			TopUrgentIssues: []string{},
		}
		return view
	}

	today, yesterday := insight.Partition(records, now)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.KpiThemes = s.resolver.Resolve(gctx, today)
		return nil
	})
	g.Go(func() error {
		view.Summary = s.structuredSummary(gctx, records, today, yesterday)
		return nil
	})
	_ = g.Wait() // both steps absorb their own failures

	return view
}

// structuredSummary asks the oracle for the overall summary and urgent issues,
// by_source is always computed locally
func (s *Service) structuredSummary(ctx context.Context, records, today, yesterday []domain.FeedbackRecord) domain.Summary {
	res := s.fallbackSummary(records, today, yesterday)
	if s.oracle == nil {
		return res
	}

	content, err := s.inferWithTimeout(ctx, summaryPrompt(res.BySource, records))
	if err != nil {
		lgr.Printf("[WARN] structured summary failed, using fallback: %v", err)
		return res
	}
	var resp summaryResponse
	if err := llm.DecodeJSON(content, &resp); err != nil {
		lgr.Printf("[WARN] can't parse structured summary, using fallback: %v", err)
		return res
	}

	if overall := strings.TrimSpace(resp.OverallSummary); overall != "" {
		res.OverallSummary = overall
	}
	if issues := insight.NormalizeIssues(resp.TopUrgentIssues); len(issues) > 0 {
		res.TopUrgentIssues = issues
	}
	return res
}

// fallbackSummary builds the summary without the oracle, from headline themes
// and normalized negative comments
func (s *Service) fallbackSummary(records, today, yesterday []domain.FeedbackRecord) domain.Summary {
	headlines := insight.SelectHeadlines(insight.ScoreAll(s.aggregator.Aggregate(today, yesterday)), s.headlineCount)
	return domain.Summary{
		OverallSummary:  overallText(len(records), len(today), headlines),
		BySource:        insight.SourceSummaries(records),
		TopUrgentIssues: insight.UrgentIssues(records),
	}
}

func overallText(total, todayCount int, headlines []domain.ScoredTheme) string {
	text := fmt.Sprintf("%d feedback items in total, %d today.", total, todayCount)
	if len(headlines) == 0 {
		return text
	}
	names := make([]string, 0, len(headlines))
	for _, h := range headlines {
		names = append(names, h.Theme)
	}
	return fmt.Sprintf("%s Most pressing: %s (%d mentions, %s). Top themes: %s.", text,
		headlines[0].Theme, headlines[0].TotalMentions, headlines[0].RiskTier, strings.Join(names, ", "))
}

func summaryPrompt(bySource []domain.SourceSummary, records []domain.FeedbackRecord) string {
	var sb strings.Builder
	sb.WriteString("Summarize customer feedback for a product dashboard.\n\n")
	sb.WriteString("Sources:\n")
	for _, src := range bySource {
		fmt.Fprintf(&sb, "- %s: %d items, mostly %s, key issues: %s\n", src.Source, src.TotalItems,
			src.DominantSentiment, strings.Join(src.KeyIssues, ", "))
	}

	sb.WriteString("\nNegative comments:\n")
	n := 0
	for _, r := range records {
		if r.Polarity() != domain.SentimentNegative {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d. %s\n", n, truncate(r.Comment, 300))
		if n == maxSummaryComments {
			break
		}
	}

	sb.WriteString("\nRespond with valid JSON only: ")
	sb.WriteString(`{"overall_summary": "<2-3 sentences>", "top_urgent_issues": ["<short issue, 2-5 words>", ...]}`)
	sb.WriteString("\nList at most 5 urgent issues. Never include ticket numbers, ids or customer names.\n")
	return sb.String()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
