package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedpulse/pkg/domain"
	"github.com/umputun/feedpulse/pkg/theme"
)

var testNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

const (
	todayTS     = "2025-03-10T09:00:00Z"
	yesterdayTS = "2025-03-09 18:30:00"
)

func rec(source, sentiment, comment, ts string) domain.FeedbackRecord {
	return domain.FeedbackRecord{Source: source, Sentiment: sentiment, Comment: comment, Timestamp: ts}
}

func repeat(n int, r domain.FeedbackRecord) []domain.FeedbackRecord {
	res := make([]domain.FeedbackRecord, n)
	for i := range res {
		res[i] = r
		res[i].ID = int64(i + 1)
	}
	return res
}

// loginDocsDay builds 10 negative login records (6 enterprise, 4 self-serve) and 2 positive docs records
func loginDocsDay(ts string) []domain.FeedbackRecord {
	var res []domain.FeedbackRecord
	res = append(res, repeat(4, rec("customer-support-tickets", "negative", "login fails", ts))...)
	res = append(res, repeat(2, rec("Email", "Negative", "login fails", ts))...)
	res = append(res, repeat(4, rec("app-store", "negative", "login fails", ts))...)
	res = append(res, repeat(2, rec("community-forum", "positive", "docs scattered", ts))...)
	return res
}

func testAggregator() *Aggregator {
	return NewAggregator([]string{"customer-support-tickets", "email"})
}

func TestPartition(t *testing.T) {
	records := []domain.FeedbackRecord{
		rec("email", "negative", "login fails", todayTS),
		rec("email", "negative", "login fails", "2025-03-10 00:00:00"),
		rec("email", "negative", "login fails", yesterdayTS),
		rec("email", "negative", "login fails", "2025-03-08T23:59:59Z"),
		rec("email", "negative", "login fails", "not a date"),
		rec("email", "negative", "login fails", ""),
		rec("email", "negative", "login fails", "2025-03-10T01:00:00+03:00"), // 2025-03-09 22:00 UTC
	}

	today, yesterday := Partition(records, testNow)
	assert.Len(t, today, 2)
	assert.Len(t, yesterday, 2)
	assert.Equal(t, "2025-03-10T01:00:00+03:00", yesterday[1].Timestamp)
}

func TestAggregator_IsEnterprise(t *testing.T) {
	a := testAggregator()
	assert.True(t, a.IsEnterprise("customer-support-tickets"))
	assert.True(t, a.IsEnterprise(" EMAIL "))
	assert.False(t, a.IsEnterprise("app-store"))
	assert.False(t, a.IsEnterprise(""))
}

func TestAggregator_Aggregate(t *testing.T) {
	a := testAggregator()
	res := a.Aggregate(loginDocsDay(todayTS), loginDocsDay(yesterdayTS))
	require.Len(t, res, 2)

	auth := findAggregate(t, res, theme.Authentication)
	assert.Equal(t, 10, auth.TotalMentions)
	assert.Equal(t, 6, auth.EnterpriseMentions)
	assert.Equal(t, 4, auth.SelfServeMentions)
	assert.Equal(t, 100, auth.PercentNegative)
	assert.Equal(t, 10, auth.YesterdayMentions)
	assert.Equal(t, 0, auth.PercentChange)

	docs := findAggregate(t, res, theme.Documentation)
	assert.Equal(t, 2, docs.TotalMentions)
	assert.Equal(t, 0, docs.EnterpriseMentions)
	assert.Equal(t, 0, docs.PercentNegative)
	assert.Equal(t, 0, docs.PercentChange)
}

func TestAggregator_AggregateTrends(t *testing.T) {
	a := testAggregator()
	today := append(repeat(5, rec("web", "negative", "api timed out", todayTS)),
		rec("web", "positive", "love the new colors", todayTS),
		rec("web", "neutral", "docs are fine", todayTS))
	yesterday := append(repeat(3, rec("web", "neutral", "the workflow is clunky", yesterdayTS)),
		repeat(3, rec("web", "neutral", "docs outdated", yesterdayTS))...)
	yesterday = append(yesterday, rec("web", "negative", "nothing to map here", yesterdayTS))

	res := a.Aggregate(today, yesterday)
	require.Len(t, res, 3, "unclassified is never returned")
	for _, agg := range res {
		assert.NotEqual(t, theme.Unclassified, agg.Theme)
		assert.Equal(t, agg.TotalMentions, agg.EnterpriseMentions+agg.SelfServeMentions)
		assert.GreaterOrEqual(t, agg.PercentNegative, 0)
		assert.LessOrEqual(t, agg.PercentNegative, 100)
	}

	api := findAggregate(t, res, theme.APITimeout)
	assert.Equal(t, 5, api.TotalMentions)
	assert.Equal(t, 0, api.YesterdayMentions)
	assert.Equal(t, 100, api.PercentChange, "new theme is +100")

	wf := findAggregate(t, res, theme.WorkflowFriction)
	assert.Equal(t, 0, wf.TotalMentions)
	assert.Equal(t, 3, wf.YesterdayMentions)
	assert.Equal(t, -100, wf.PercentChange)

	docs := findAggregate(t, res, theme.Documentation)
	assert.Equal(t, 1, docs.TotalMentions)
	assert.Equal(t, -67, docs.PercentChange)
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		today, yesterday, want int
	}{
		{5, 0, 100},
		{0, 0, 0},
		{10, 10, 0},
		{15, 10, 50},
		{1, 3, -67},
		{0, 4, -100},
		{7, 2, 250},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PercentChange(tt.today, tt.yesterday), "today=%d yesterday=%d", tt.today, tt.yesterday)
	}
}

func TestAggregator_PercentNegativeRounding(t *testing.T) {
	a := testAggregator()
	today := []domain.FeedbackRecord{
		rec("web", "negative", "login fails", todayTS),
		rec("web", "neutral", "login slow", todayTS),
		rec("web", "positive", "login works now", todayTS),
	}
	res := a.Aggregate(today, nil)
	require.Len(t, res, 1)
	assert.Equal(t, 33, res[0].PercentNegative)
}

func findAggregate(t *testing.T, aggs []domain.ThemeAggregate, name string) domain.ThemeAggregate {
	t.Helper()
	for _, a := range aggs {
		if a.Theme == name {
			return a
		}
	}
	require.Failf(t, "theme not found", "%s", name)
	return domain.ThemeAggregate{}
}
