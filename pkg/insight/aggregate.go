// Package insight turns feedback records into themes, risk scores,
// headline selections and per-sentiment KPI themes.
package insight

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/umputun/feedpulse/pkg/domain"
	"github.com/umputun/feedpulse/pkg/theme"
)

// Aggregator groups records by theme and splits counts by customer tier
type Aggregator struct {
	enterprise map[string]bool
}

// NewAggregator makes an aggregator treating the given sources as enterprise tier
func NewAggregator(enterpriseSources []string) *Aggregator {
	res := &Aggregator{enterprise: make(map[string]bool, len(enterpriseSources))}
	for _, src := range enterpriseSources {
		res.enterprise[strings.ToLower(strings.TrimSpace(src))] = true
	}
	return res
}

// IsEnterprise checks if source is an enterprise channel, case-insensitive
func (a *Aggregator) IsEnterprise(source string) bool {
	return a.enterprise[strings.ToLower(strings.TrimSpace(source))]
}

// Partition splits records into today and yesterday by UTC calendar day of now.
// Records with unparsable timestamps land in neither.
func Partition(records []domain.FeedbackRecord, now time.Time) (today, yesterday []domain.FeedbackRecord) {
	todayKey := domain.DayKey(now)
	yesterdayKey := domain.DayKey(now.UTC().AddDate(0, 0, -1))
	for _, r := range records {
		day, ok := r.DayKey()
		if !ok {
			continue
		}
		switch day {
		case todayKey:
			today = append(today, r)
		case yesterdayKey:
			yesterday = append(yesterday, r)
		}
	}
	return today, yesterday
}

type tally struct {
	total, enterprise, negative, yesterday int
}

// Aggregate counts today's records per theme and joins yesterday's counts.
// Unclassified records are counted but never returned. The result holds one
// entry per theme seen in either day, sorted by theme.
func (a *Aggregator) Aggregate(today, yesterday []domain.FeedbackRecord) []domain.ThemeAggregate {
	tallies := map[string]*tally{}
	get := func(th string) *tally {
		t, ok := tallies[th]
		if !ok {
			t = &tally{}
			tallies[th] = t
		}
		return t
	}

	for _, r := range today {
		t := get(theme.Classify(r.Comment))
		t.total++
		if a.IsEnterprise(r.Source) {
			t.enterprise++
		}
		if r.Polarity() == domain.SentimentNegative {
			t.negative++
		}
	}
	for _, r := range yesterday {
		get(theme.Classify(r.Comment)).yesterday++
	}

	res := make([]domain.ThemeAggregate, 0, len(tallies))
	for th, t := range tallies {
		if th == theme.Unclassified {
			continue
		}
		res = append(res, domain.ThemeAggregate{
			Theme:              th,
			TotalMentions:      t.total,
			EnterpriseMentions: t.enterprise,
			SelfServeMentions:  t.total - t.enterprise,
			PercentNegative:    percent(t.negative, t.total),
			YesterdayMentions:  t.yesterday,
			PercentChange:      PercentChange(t.total, t.yesterday),
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Theme < res[j].Theme })
	return res
}

// PercentChange is the rounded change vs yesterday. With no mentions yesterday
// it is 100 if there are mentions today and 0 otherwise.
func PercentChange(today, yesterday int) int {
	if yesterday > 0 {
		return int(math.Round(float64(today-yesterday) / float64(yesterday) * 100))
	}
	if today > 0 {
		return 100
	}
	return 0
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
