package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedpulse/pkg/domain"
	"github.com/umputun/feedpulse/pkg/insight"
)

// noTodayMessage is set when feedback exists but none of it is from today
const noTodayMessage = "No classified feedback for today yet."

// buildReport runs the headline pipeline over records for the day of now
func (s *Service) buildReport(ctx context.Context, records []domain.FeedbackRecord, now time.Time) domain.Report {
	rep := domain.Report{
		Date:            domain.DayKey(now),
		GeneratedAt:     now,
		HasData:         len(records) > 0,
		Headlines:       []domain.HeadlineLine{},
		Trends:          []domain.TrendDelta{},
		RecurringThemes: []string{},
		SourceVolumes:   []domain.SourceVolume{},
	}
	if len(records) == 0 {
		rep.Message = domain.NoDataMessage
		rep.Narrative = domain.NoDataMessage
		return rep
	}

	today, yesterday := insight.Partition(records, now)
	rep.SourceVolumes = insight.SourceVolumes(records, today)

	aggs := s.aggregator.Aggregate(today, yesterday)
	rep.RecurringThemes = recurringThemes(aggs)

	headlines := insight.SelectHeadlines(insight.ScoreAll(aggs), s.headlineCount)
	for _, h := range headlines {
		rep.Headlines = append(rep.Headlines, domain.HeadlineLine{ScoredTheme: h, Line: headlineLine(h)})
	}
	rep.Trends = trendDeltas(headlines)

	if len(headlines) == 0 {
		rep.Message = noTodayMessage
	}
	rep.Narrative = s.narrative(ctx, rep.Date, rep.Headlines, rep.Trends)
	return rep
}

// headlineLine renders one headline theme as a single line
func headlineLine(h domain.ScoredTheme) string {
	return fmt.Sprintf("%s: %d mentions (%d enterprise, %d self-serve), %d%% negative, %+d%% vs yesterday [%s, score %d]",
		h.Theme, h.TotalMentions, h.EnterpriseMentions, h.SelfServeMentions, h.PercentNegative, h.PercentChange,
		h.RiskTier, h.RiskScore)
}

// trendDeltas compares headline themes with yesterday, largest absolute change first
func trendDeltas(headlines []domain.ScoredTheme) []domain.TrendDelta {
	res := make([]domain.TrendDelta, 0, len(headlines))
	for _, h := range headlines {
		res = append(res, domain.TrendDelta{
			Theme:         h.Theme,
			Today:         h.TotalMentions,
			Yesterday:     h.YesterdayMentions,
			PercentChange: h.PercentChange,
		})
	}
	sort.SliceStable(res, func(i, j int) bool {
		di, dj := abs(res[i].Today-res[i].Yesterday), abs(res[j].Today-res[j].Yesterday)
		if di != dj {
			return di > dj
		}
		return res[i].Theme < res[j].Theme
	})
	return res
}

// recurringThemes lists themes mentioned both today and yesterday, sorted
func recurringThemes(aggs []domain.ThemeAggregate) []string {
	res := []string{}
	for _, a := range aggs {
		if a.TotalMentions > 0 && a.YesterdayMentions > 0 {
			res = append(res, a.Theme)
		}
	}
	sort.Strings(res)
	return res
}

// narrative returns the cached narrative for the date or makes a new one
func (s *Service) narrative(ctx context.Context, date string, headlines []domain.HeadlineLine, trends []domain.TrendDelta) string {
	if text, ok := s.narratives.Get(date); ok {
		return text
	}

	text := fallbackNarrative(headlines, trends)
	if len(headlines) > 0 && s.oracle != nil {
		resp, err := s.inferWithTimeout(ctx, narrativePrompt(headlines, trends))
		switch {
		case err != nil:
			lgr.Printf("[WARN] narrative generation failed, using fallback: %v", err)
		case strings.TrimSpace(resp) == "":
			lgr.Printf("[WARN] empty narrative from oracle, using fallback")
		default:
			text = strings.TrimSpace(resp)
		}
	}

	s.narratives.Put(date, text)
	return text
}

func narrativePrompt(headlines []domain.HeadlineLine, trends []domain.TrendDelta) string {
	var sb strings.Builder
	sb.WriteString("Write a short executive summary (3-4 sentences, plain text, no markdown) of today's customer feedback.\n")
	sb.WriteString("Focus on business risk and what changed since yesterday.\n\n")
	sb.WriteString("Top themes:\n")
	for _, h := range headlines {
		sb.WriteString("- ")
		sb.WriteString(h.Line)
		sb.WriteString("\n")
	}
	if len(trends) > 0 {
		sb.WriteString("\nChanges vs yesterday:\n")
		for _, t := range trends {
			fmt.Fprintf(&sb, "- %s: %d today, %d yesterday (%+d%%)\n", t.Theme, t.Today, t.Yesterday, t.PercentChange)
		}
	}
	return sb.String()
}

// fallbackNarrative composes a narrative without the oracle
func fallbackNarrative(headlines []domain.HeadlineLine, trends []domain.TrendDelta) string {
	if len(headlines) == 0 {
		return noTodayMessage
	}

	first := headlines[0]
	parts := []string{fmt.Sprintf("Top risk today is %s with %d mentions (%s tier, %d%% negative).",
		first.Theme, first.TotalMentions, first.RiskTier, first.PercentNegative)}
	if len(headlines) > 1 {
		others := make([]string, 0, len(headlines)-1)
		for _, h := range headlines[1:] {
			others = append(others, fmt.Sprintf("%s (%d)", h.Theme, h.TotalMentions))
		}
		parts = append(parts, "Also watch "+strings.Join(others, " and ")+".")
	}
	if len(trends) > 0 && trends[0].Today != trends[0].Yesterday {
		t := trends[0]
		parts = append(parts, fmt.Sprintf("Biggest change: %s moved from %d to %d mentions (%+d%%) versus yesterday.",
			t.Theme, t.Yesterday, t.Today, t.PercentChange))
	}
	return strings.Join(parts, " ")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
