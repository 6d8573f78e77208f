package domain

import "time"

// NoDataMessage is returned by every surface when there is no feedback
const NoDataMessage = "No feedback data yet."

// SourceSummary describes one feedback channel
type SourceSummary struct {
	Source            string   `json:"source"`
	TotalItems        int      `json:"total_items"`
	DominantSentiment string   `json:"dominant_sentiment"`
	KeyIssues         []string `json:"key_issues"`
}

// Summary is the structured summary consumed by the presentation layer
type Summary struct {
	OverallSummary  string          `json:"overall_summary"`
	BySource        []SourceSummary `json:"by_source"`
	TopUrgentIssues []string        `json:"top_urgent_issues"`
}

// SummaryView bundles structured summary with bucket KPIs
type SummaryView struct {
	Date        string    `json:"date"`
	GeneratedAt time.Time `json:"generated_at"`
	HasData     bool      `json:"has_data"`
	Summary     Summary   `json:"summary"`
	KpiThemes   KpiThemes `json:"kpi_themes"`
}

// HeadlineLine is a selected headline theme with its rendered line
type HeadlineLine struct {
	ScoredTheme
	Line string `json:"line"`
}

// TrendDelta compares today's mentions of a theme with yesterday's
type TrendDelta struct {
	Theme         string `json:"theme"`
	Today         int    `json:"today"`
	Yesterday     int    `json:"yesterday"`
	PercentChange int    `json:"percent_change"`
}

// SourceVolume is the per-source volume breakdown
type SourceVolume struct {
	Source string `json:"source"`
	Today  int    `json:"today"`
	Total  int    `json:"total"`
}

// Report is the fully rendered daily report
type Report struct {
	Date            string         `json:"date"`
	GeneratedAt     time.Time      `json:"generated_at"`
	HasData         bool           `json:"has_data"`
	Message         string         `json:"message"`
	Headlines       []HeadlineLine `json:"headlines"`
	Narrative       string         `json:"narrative"`
	Trends          []TrendDelta   `json:"trends"`
	RecurringThemes []string       `json:"recurring_themes"`
	SourceVolumes   []SourceVolume `json:"source_volumes"`
}
