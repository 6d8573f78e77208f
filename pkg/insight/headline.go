package insight

import (
	"sort"

	"github.com/umputun/feedpulse/pkg/domain"
)

// DefaultHeadlineCount is the number of headline themes
const DefaultHeadlineCount = 3

// RankThemes returns a copy sorted by risk score desc, ties by theme label
func RankThemes(scored []domain.ScoredTheme) []domain.ScoredTheme {
	res := make([]domain.ScoredTheme, len(scored))
	copy(res, scored)
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].RiskScore != res[j].RiskScore {
			return res[i].RiskScore > res[j].RiskScore
		}
		return res[i].Theme < res[j].Theme
	})
	return res
}

// SelectHeadlines picks the top n themes by risk. If none of them is low impact
// while a low impact theme exists, the last slot goes to the best low impact one.
func SelectHeadlines(scored []domain.ScoredTheme, n int) []domain.ScoredTheme {
	if n < 1 {
		n = DefaultHeadlineCount
	}
	ranked := RankThemes(scored)
	if len(ranked) <= n {
		return ranked
	}

	top := ranked[:n:n]
	for _, s := range top {
		if s.RiskTier == domain.TierLowImpact {
			return top
		}
	}
	for _, s := range ranked[n:] {
		if s.RiskTier == domain.TierLowImpact {
			top[n-1] = s
			break
		}
	}
	return top
}
