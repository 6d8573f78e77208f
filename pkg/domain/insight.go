package domain

// RiskTier is the severity tier derived from a risk score
type RiskTier string

// risk tiers, ordered Critical > Monitor > LowImpact
const (
	TierCritical  RiskTier = "Critical"
	TierMonitor   RiskTier = "Monitor"
	TierLowImpact RiskTier = "LowImpact"
)

// ThemeAggregate holds per-theme counts for today joined with yesterday
type ThemeAggregate struct {
	Theme              string `json:"theme"`
	TotalMentions      int    `json:"total_mentions"`
	EnterpriseMentions int    `json:"enterprise_mentions"`
	SelfServeMentions  int    `json:"self_serve_mentions"`
	PercentNegative    int    `json:"percent_negative"`
	YesterdayMentions  int    `json:"yesterday_mentions"`
	PercentChange      int    `json:"percent_change_vs_yesterday"`
}

// ScoredTheme is an aggregate with its risk score and tier
type ScoredTheme struct {
	ThemeAggregate
	RiskScore int      `json:"risk_score"`
	RiskTier  RiskTier `json:"risk_tier"`
}

// BucketKpi is the resolved theme of a severity bucket
type BucketKpi struct {
	Label           string `json:"label"`
	Count           int    `json:"count"`
	EnterpriseCount int    `json:"enterpriseCount"`
}

// LowBucket holds up to three low-impact themes
type LowBucket struct {
	Issues []BucketKpi `json:"issues"`
}

// KpiThemes is one theme per sentiment bucket, nil buckets render as null
type KpiThemes struct {
	Critical *BucketKpi `json:"critical"`
	Monitor  *BucketKpi `json:"monitor"`
	Low      *LowBucket `json:"low"`
}
