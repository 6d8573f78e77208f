package insight

import (
	"sort"
	"strings"

	"github.com/umputun/feedpulse/pkg/domain"
	"github.com/umputun/feedpulse/pkg/theme"
)

// unknownSource names records without a source
const unknownSource = "unknown"

// maxUrgentIssues limits the urgent issues list
const maxUrgentIssues = 5

func sourceName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownSource
	}
	return s
}

// SourceVolumes returns per-source counts for today and for all records,
// busiest sources first
func SourceVolumes(all, today []domain.FeedbackRecord) []domain.SourceVolume {
	byName := map[string]*domain.SourceVolume{}
	get := func(src string) *domain.SourceVolume {
		name := sourceName(src)
		v, ok := byName[name]
		if !ok {
			v = &domain.SourceVolume{Source: name}
			byName[name] = v
		}
		return v
	}
	for _, r := range all {
		get(r.Source).Total++
	}
	for _, r := range today {
		get(r.Source).Today++
	}

	res := make([]domain.SourceVolume, 0, len(byName))
	for _, v := range byName {
		res = append(res, *v)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Today != res[j].Today {
			return res[i].Today > res[j].Today
		}
		if res[i].Total != res[j].Total {
			return res[i].Total > res[j].Total
		}
		return res[i].Source < res[j].Source
	})
	return res
}

// SourceSummaries describes every source: item count, dominant sentiment and
// up to three most frequent themes. Sources are sorted by volume.
func SourceSummaries(records []domain.FeedbackRecord) []domain.SourceSummary {
	type acc struct {
		total     int
		sentiment map[domain.Sentiment]int
		themes    map[string]int
	}
	bySource := map[string]*acc{}
	for _, r := range records {
		name := sourceName(r.Source)
		a, ok := bySource[name]
		if !ok {
			a = &acc{sentiment: map[domain.Sentiment]int{}, themes: map[string]int{}}
			bySource[name] = a
		}
		a.total++
		if p := r.Polarity(); p != "" {
			a.sentiment[p]++
		}
		if th := theme.Classify(r.Comment); th != theme.Unclassified {
			a.themes[th]++
		}
	}

	res := make([]domain.SourceSummary, 0, len(bySource))
	for name, a := range bySource {
		res = append(res, domain.SourceSummary{
			Source:            name,
			TotalItems:        a.total,
			DominantSentiment: string(dominantSentiment(a.sentiment)),
			KeyIssues:         topLabels(a.themes, 3),
		})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].TotalItems != res[j].TotalItems {
			return res[i].TotalItems > res[j].TotalItems
		}
		return res[i].Source < res[j].Source
	})
	return res
}

// UrgentIssues normalizes negative comments into short labels, most frequent first
func UrgentIssues(records []domain.FeedbackRecord) []string {
	counts := map[string]int{}
	for _, r := range records {
		if r.Polarity() != domain.SentimentNegative {
			continue
		}
		if label, ok := theme.Normalize(r.Comment); ok {
			counts[label]++
		}
	}
	return topLabels(counts, maxUrgentIssues)
}

// NormalizeIssues turns raw issue phrases into unique short labels, keeping order
func NormalizeIssues(raw []string) []string {
	res := []string{}
	seen := map[string]bool{}
	for _, s := range raw {
		label, ok := theme.Normalize(s)
		if !ok || seen[strings.ToLower(label)] {
			continue
		}
		seen[strings.ToLower(label)] = true
		res = append(res, label)
		if len(res) == maxUrgentIssues {
			break
		}
	}
	return res
}

// dominantSentiment picks the most frequent sentiment, ties go to the more severe one
func dominantSentiment(counts map[domain.Sentiment]int) domain.Sentiment {
	res, best := domain.SentimentNeutral, 0
	for _, s := range []domain.Sentiment{domain.SentimentNegative, domain.SentimentNeutral, domain.SentimentPositive} {
		if counts[s] > best {
			res, best = s, counts[s]
		}
	}
	return res
}

func topLabels(counts map[string]int, n int) []string {
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	if len(labels) > n {
		labels = labels[:n]
	}
	return labels
}
