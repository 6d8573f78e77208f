package insight

import "github.com/umputun/feedpulse/pkg/domain"

// risk score weights and tier thresholds
const (
	enterpriseWeight  = 3
	selfServeWeight   = 1
	negativeBonus     = 2
	negativeThreshold = 50
	criticalScore     = 20
	monitorScore      = 10
)

// Score computes risk score and tier of an aggregate
func Score(agg domain.ThemeAggregate) domain.ScoredTheme {
	score := enterpriseWeight*agg.EnterpriseMentions + selfServeWeight*agg.SelfServeMentions
	if agg.PercentNegative >= negativeThreshold {
		score += negativeBonus
	}
	return domain.ScoredTheme{ThemeAggregate: agg, RiskScore: score, RiskTier: TierFor(score)}
}

// TierFor maps a risk score to its tier
func TierFor(score int) domain.RiskTier {
	switch {
	case score >= criticalScore:
		return domain.TierCritical
	case score >= monitorScore:
		return domain.TierMonitor
	default:
		return domain.TierLowImpact
	}
}

// ScoreAll scores aggregates with mentions today, themes seen only yesterday are skipped
func ScoreAll(aggs []domain.ThemeAggregate) []domain.ScoredTheme {
	res := make([]domain.ScoredTheme, 0, len(aggs))
	for _, agg := range aggs {
		if agg.TotalMentions == 0 {
			continue
		}
		res = append(res, Score(agg))
	}
	return res
}
