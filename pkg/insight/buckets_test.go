package insight

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedpulse/pkg/domain"
	"github.com/umputun/feedpulse/pkg/theme"
)

// fakeOracle returns canned responses keyed by a substring of the prompt
type fakeOracle struct {
	mu        sync.Mutex
	responses map[string]string // prompt substring -> response
	fallback  string
	err       error
	prompts   []string
}

func (f *fakeOracle) Infer(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	for k, v := range f.responses {
		if strings.Contains(prompt, k) {
			return v, nil
		}
	}
	return f.fallback, nil
}

func newTestResolver(oracle Oracle) *Resolver {
	return NewResolver(oracle, testAggregator(), ResolverConfig{MinSharePercent: 5, MaxPromptComments: 50})
}

func TestResolver_NoOracle(t *testing.T) {
	r := NewResolver(nil, testAggregator(), ResolverConfig{})
	res := r.Resolve(context.Background(), loginDocsDay(todayTS))

	require.NotNil(t, res.Critical)
	assert.Equal(t, domain.BucketKpi{Label: theme.Authentication, Count: 10, EnterpriseCount: 6}, *res.Critical)
	assert.Nil(t, res.Monitor, "no neutral records")
	require.NotNil(t, res.Low)
	assert.Equal(t, []domain.BucketKpi{{Label: theme.Documentation, Count: 2}}, res.Low.Issues)
}

func TestResolver_EmptyRecords(t *testing.T) {
	res := newTestResolver(&fakeOracle{}).Resolve(context.Background(), nil)
	assert.Nil(t, res.Critical)
	assert.Nil(t, res.Monitor)
	assert.Nil(t, res.Low)
}

func TestResolver_OracleLabel(t *testing.T) {
	records := append(repeat(6, rec("email", "negative", "cannot export my invoices as pdf", todayTS)),
		repeat(4, rec("web", "negative", "login fails", todayTS))...)
	oracle := &fakeOracle{fallback: "```json\n{\"label\": \"Issues with invoice export\", \"matching_indices\": [1,2,3,4,5,6,6,99]}\n```"}

	res := newTestResolver(oracle).Resolve(context.Background(), records)
	require.NotNil(t, res.Critical)
	assert.Equal(t, "Invoice Export", res.Critical.Label)
	assert.Equal(t, 6, res.Critical.Count, "duplicate and out of range indices ignored")
	assert.Equal(t, 6, res.Critical.EnterpriseCount)

	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "1. cannot export my invoices as pdf")
	assert.Contains(t, oracle.prompts[0], "10. login fails")
}

func TestResolver_OracleLabelCanonicalized(t *testing.T) {
	records := repeat(10, rec("web", "negative", "something broke when signing", todayTS))
	oracle := &fakeOracle{fallback: `{"label": "Login Bugs", "matching_indices": [1, 2, 3]}`}

	res := newTestResolver(oracle).Resolve(context.Background(), records)
	require.NotNil(t, res.Critical)
	assert.Equal(t, theme.Authentication, res.Critical.Label)
	assert.Equal(t, 3, res.Critical.Count)
}

func TestResolver_OracleFallbacks(t *testing.T) {
	records := loginDocsDay(todayTS)[:10] // negative login records only
	want := domain.BucketKpi{Label: theme.Authentication, Count: 10, EnterpriseCount: 6}

	tests := []struct {
		name   string
		oracle *fakeOracle
	}{
		{name: "empty indices prose", oracle: &fakeOracle{fallback: `Here's the issue: "Login Bugs", matching_indices: []`}},
		{name: "empty indices json", oracle: &fakeOracle{fallback: `{"label": "Login Bugs", "matching_indices": []}`}},
		{name: "empty label", oracle: &fakeOracle{fallback: `{"label": "", "matching_indices": [1]}`}},
		{name: "too many words", oracle: &fakeOracle{fallback: `{"label": "users are very unhappy with everything", "matching_indices": [1]}`}},
		{name: "garbage", oracle: &fakeOracle{fallback: "I am not able to help with that."}},
		{name: "error", oracle: &fakeOracle{err: errors.New("connection refused")}},
		{name: "invalid indices", oracle: &fakeOracle{fallback: `{"label": "Pdf Export", "matching_indices": [0, 11, -1]}`}},
		{name: "unclassified label", oracle: &fakeOracle{fallback: `{"label": "unclassified", "matching_indices": [1]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestResolver(tt.oracle).Resolve(context.Background(), records)
			require.NotNil(t, res.Critical)
			assert.Equal(t, want, *res.Critical)
		})
	}
}

func TestResolver_MinShare(t *testing.T) {
	// 1 of 40 records is 2.5%, below 5%
	records := append(repeat(39, rec("web", "negative", "login fails", todayTS)),
		rec("web", "negative", "dark mode hurts my eyes", todayTS))
	oracle := &fakeOracle{fallback: `{"label": "Dark Mode", "matching_indices": [40]}`}

	res := newTestResolver(oracle).Resolve(context.Background(), records)
	require.NotNil(t, res.Critical)
	assert.Equal(t, theme.Authentication, res.Critical.Label)
	assert.Equal(t, 39, res.Critical.Count)

	// 2 of 40 is exactly 5%, accepted
	oracle = &fakeOracle{fallback: `{"label": "Dark Mode", "matching_indices": [39, 40]}`}
	res = newTestResolver(oracle).Resolve(context.Background(), records)
	require.NotNil(t, res.Critical)
	assert.Equal(t, "Dark Mode", res.Critical.Label)
	assert.Equal(t, 2, res.Critical.Count)
}

func TestResolver_PromptLimit(t *testing.T) {
	records := repeat(80, rec("web", "negative", "api timed out", todayTS))
	oracle := &fakeOracle{fallback: `{"label": "API timeouts", "matching_indices": [1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 50, 51]}`}

	res := newTestResolver(oracle).Resolve(context.Background(), records)
	require.NotNil(t, res.Critical)
	assert.Equal(t, theme.APITimeout, res.Critical.Label)
	assert.Equal(t, 41, res.Critical.Count, "11 confirmed in the sample, 30 unseen records matched by keywords")
	assert.Contains(t, oracle.prompts[0], "50. api timed out")
	assert.NotContains(t, oracle.prompts[0], "51. api timed out")
}

func TestResolver_LargeBucket(t *testing.T) {
	all := make([]int, 50)
	for i := range all {
		all[i] = i + 1
	}
	indices, err := json.Marshal(all)
	require.NoError(t, err)

	t.Run("known theme counted over the whole bucket", func(t *testing.T) {
		for _, n := range []int{200, 2000} {
			records := append(repeat(n/2, rec("email", "negative", "api timed out", todayTS)),
				repeat(n/2, rec("web", "negative", "api timed out", todayTS))...)
			oracle := &fakeOracle{fallback: `{"label": "API timeouts", "matching_indices": ` + string(indices) + `}`}

			res := newTestResolver(oracle).Resolve(context.Background(), records)
			require.NotNil(t, res.Critical)
			assert.Equal(t, domain.BucketKpi{Label: theme.APITimeout, Count: n, EnterpriseCount: n / 2}, *res.Critical,
				"bucket of %d", n)
			require.Len(t, oracle.prompts, 1)
		}
	})

	t.Run("free-form label scaled to the bucket", func(t *testing.T) {
		records := []domain.FeedbackRecord{}
		for i := 0; i < 50; i++ {
			records = append(records, rec("email", "negative", "dark mode hurts my eyes", todayTS),
				rec("web", "negative", "colors are too bright", todayTS))
		}
		oracle := &fakeOracle{fallback: `{"label": "Dark Mode", "matching_indices": ` + string(indices) + `}`}

		res := newTestResolver(oracle).Resolve(context.Background(), records)
		require.NotNil(t, res.Critical)
		assert.Equal(t, domain.BucketKpi{Label: "Dark Mode", Count: 100, EnterpriseCount: 50}, *res.Critical)
	})

	t.Run("share checked against the sample", func(t *testing.T) {
		records := repeat(3000, rec("web", "negative", "login fails", todayTS))
		oracle := &fakeOracle{fallback: `{"label": "Login problems", "matching_indices": [1, 2, 3]}`}

		res := newTestResolver(oracle).Resolve(context.Background(), records)
		require.NotNil(t, res.Critical)
		assert.Equal(t, theme.Authentication, res.Critical.Label, "3 of 50 sampled passes the 5% check")
		assert.Equal(t, 3+2950, res.Critical.Count, "unseen records counted by keywords")
	})
}

func TestResolver_MinShareDisabled(t *testing.T) {
	records := append(repeat(39, rec("web", "negative", "login fails", todayTS)),
		rec("web", "negative", "dark mode hurts my eyes", todayTS))
	oracle := &fakeOracle{fallback: `{"label": "Dark Mode", "matching_indices": [40]}`}

	r := NewResolver(oracle, testAggregator(), ResolverConfig{MinSharePercent: 0, MaxPromptComments: 50})
	res := r.Resolve(context.Background(), records)
	require.NotNil(t, res.Critical)
	assert.Equal(t, domain.BucketKpi{Label: "Dark Mode", Count: 1}, *res.Critical)
}

func TestResolver_PromptTruncatesByRunes(t *testing.T) {
	long := strings.Repeat("ошибка ", 100)
	prompt := buildBucketPrompt([]domain.FeedbackRecord{rec("web", "negative", long, todayTS)}, nil)
	line := prompt[strings.Index(prompt, "1. "):]
	line = line[:strings.Index(line, "\n")]

	assert.True(t, utf8.ValidString(prompt))
	assert.Equal(t, len("1. ")+maxCommentLen+len("..."), utf8.RuneCountInString(line))
	assert.True(t, strings.HasSuffix(line, "..."))
}

func TestResolver_MonitorExclusions(t *testing.T) {
	records := []domain.FeedbackRecord{}
	records = append(records, repeat(5, rec("email", "negative", "api timed out", todayTS))...)
	records = append(records, repeat(4, rec("web", "neutral", "api slow at night", todayTS))...)
	records = append(records, repeat(3, rec("web", "neutral", "ticket status unclear", todayTS))...)
	records = append(records, repeat(2, rec("web", "neutral", "export workflow is clunky", todayTS))...)

	res := NewResolver(nil, testAggregator(), ResolverConfig{}).Resolve(context.Background(), records)
	require.NotNil(t, res.Critical)
	assert.Equal(t, theme.APITimeout, res.Critical.Label)
	require.NotNil(t, res.Monitor)
	assert.Equal(t, theme.WorkflowFriction, res.Monitor.Label, "critical label and never-surface themes skipped")
	assert.Equal(t, 2, res.Monitor.Count)
}

func TestResolver_MonitorOracleExcluded(t *testing.T) {
	records := []domain.FeedbackRecord{}
	records = append(records, repeat(5, rec("email", "negative", "api timed out", todayTS))...)
	records = append(records, repeat(5, rec("web", "neutral", "too many alerts", todayTS))...)
	records = append(records, repeat(2, rec("web", "neutral", "docs outdated", todayTS))...)
	oracle := &fakeOracle{responses: map[string]string{
		"1. api timed out":   `{"label": "API timeouts", "matching_indices": [1, 2, 3, 4, 5]}`,
		"1. too many alerts": `{"label": "Alert fatigue", "matching_indices": [1, 2, 3, 4, 5]}`,
	}}

	res := newTestResolver(oracle).Resolve(context.Background(), records)
	require.NotNil(t, res.Monitor)
	assert.Equal(t, theme.Documentation, res.Monitor.Label, "oracle label maps to never-surface theme")
	require.Len(t, oracle.prompts, 2)
	assert.Contains(t, oracle.prompts[1], "Do not use these themes: API Timeouts / Performance, Ticket Status Visibility, Notifications / Alerts")
}

func TestResolver_MonitorPrefersAuthentication(t *testing.T) {
	records := []domain.FeedbackRecord{}
	records = append(records, repeat(6, rec("web", "neutral", "docs outdated", todayTS))...)
	records = append(records, rec("email", "neutral", "sso login sometimes slow", todayTS))
	oracle := &fakeOracle{fallback: `{"label": "Outdated docs", "matching_indices": [1, 2, 3, 4, 5, 6]}`}

	res := newTestResolver(oracle).Resolve(context.Background(), records)
	require.NotNil(t, res.Monitor)
	assert.Equal(t, domain.BucketKpi{Label: theme.Authentication, Count: 1, EnterpriseCount: 1}, *res.Monitor)
	assert.Empty(t, oracle.prompts, "preferred theme short-circuits the oracle")
}

func TestResolver_MonitorPreferredExcluded(t *testing.T) {
	records := []domain.FeedbackRecord{}
	records = append(records, repeat(3, rec("web", "negative", "login fails", todayTS))...)
	records = append(records, repeat(2, rec("web", "neutral", "login slow", todayTS))...)
	records = append(records, rec("web", "neutral", "docs outdated", todayTS))

	res := NewResolver(nil, testAggregator(), ResolverConfig{}).Resolve(context.Background(), records)
	require.NotNil(t, res.Critical)
	assert.Equal(t, theme.Authentication, res.Critical.Label)
	require.NotNil(t, res.Monitor)
	assert.Equal(t, theme.Documentation, res.Monitor.Label)
}

func TestResolver_LowImpactRelaxation(t *testing.T) {
	t.Run("top three by frequency", func(t *testing.T) {
		records := []domain.FeedbackRecord{}
		records = append(records, repeat(4, rec("web", "positive", "docs are great", todayTS))...)
		records = append(records, repeat(3, rec("web", "positive", "workflow is clunky but ok", todayTS))...)
		records = append(records, repeat(2, rec("email", "positive", "api fast now", todayTS))...)
		records = append(records, repeat(2, rec("web", "positive", "nice alerts", todayTS))...)
		records = append(records, rec("web", "positive", "sso login works", todayTS))

		res := NewResolver(nil, testAggregator(), ResolverConfig{}).Resolve(context.Background(), records)
		require.NotNil(t, res.Low)
		assert.Equal(t, []domain.BucketKpi{
			{Label: theme.Documentation, Count: 4},
			{Label: theme.WorkflowFriction, Count: 3},
			{Label: theme.APITimeout, Count: 2, EnterpriseCount: 2},
		}, res.Low.Issues)
	})

	t.Run("never-surface allowed when nothing else", func(t *testing.T) {
		records := repeat(2, rec("web", "positive", "love the reminders", todayTS))
		res := NewResolver(nil, testAggregator(), ResolverConfig{}).Resolve(context.Background(), records)
		require.NotNil(t, res.Low)
		assert.Equal(t, []domain.BucketKpi{{Label: theme.Notifications, Count: 2}}, res.Low.Issues)
	})

	t.Run("unclassified folded into various feedback", func(t *testing.T) {
		records := []domain.FeedbackRecord{}
		records = append(records, repeat(2, rec("web", "negative", "login fails", todayTS))...)
		records = append(records, repeat(3, rec("web", "positive", "great product", todayTS))...)
		records = append(records, rec("email", "positive", "login is smooth", todayTS))

		res := NewResolver(nil, testAggregator(), ResolverConfig{}).Resolve(context.Background(), records)
		require.NotNil(t, res.Low)
		assert.Equal(t, []domain.BucketKpi{{Label: VariousFeedback, Count: 4, EnterpriseCount: 1}}, res.Low.Issues)
	})
}

func TestResolver_UniqueLabels(t *testing.T) {
	records := []domain.FeedbackRecord{}
	for _, s := range []string{"negative", "neutral", "positive"} {
		records = append(records, repeat(5, rec("email", s, "login fails", todayTS))...)
		records = append(records, repeat(3, rec("web", s, "api timed out", todayTS))...)
		records = append(records, repeat(2, rec("web", s, "docs outdated", todayTS))...)
	}
	oracle := &fakeOracle{fallback: `{"label": "Login problems", "matching_indices": [1, 2, 3, 4, 5]}`}

	res := newTestResolver(oracle).Resolve(context.Background(), records)
	labels := map[string]bool{}
	require.NotNil(t, res.Critical)
	labels[res.Critical.Label] = true
	require.NotNil(t, res.Monitor)
	assert.False(t, labels[res.Monitor.Label])
	labels[res.Monitor.Label] = true
	require.NotNil(t, res.Low)
	for _, issue := range res.Low.Issues {
		assert.False(t, labels[issue.Label], "duplicate label %s", issue.Label)
		labels[issue.Label] = true
	}
	assert.Equal(t, theme.Authentication, res.Critical.Label)
	assert.Equal(t, theme.APITimeout, res.Monitor.Label)
	assert.Equal(t, []domain.BucketKpi{{Label: theme.Documentation, Count: 2}}, res.Low.Issues)
}

func TestResolver_OracleTimeout(t *testing.T) {
	records := loginDocsDay(todayTS)[:10]
	r := NewResolver(blockingOracle{}, testAggregator(), ResolverConfig{Timeout: 20 * time.Millisecond})

	st := time.Now()
	res := r.Resolve(context.Background(), records)
	assert.Less(t, time.Since(st), time.Second)
	require.NotNil(t, res.Critical)
	assert.Equal(t, theme.Authentication, res.Critical.Label)
}

func TestResolver_OracleTimeoutSharedByBuckets(t *testing.T) {
	records := append(repeat(5, rec("web", "negative", "api timed out", todayTS)),
		repeat(5, rec("web", "neutral", "docs outdated", todayTS))...)
	r := NewResolver(blockingOracle{}, testAggregator(), ResolverConfig{Timeout: 200 * time.Millisecond})

	st := time.Now()
	res := r.Resolve(context.Background(), records)
	elapsed := time.Since(st)

	assert.Less(t, elapsed, 350*time.Millisecond, "critical and monitor calls share one deadline")
	require.NotNil(t, res.Critical)
	assert.Equal(t, theme.APITimeout, res.Critical.Label)
	require.NotNil(t, res.Monitor)
	assert.Equal(t, theme.Documentation, res.Monitor.Label)
}

type blockingOracle struct{}

func (blockingOracle) Infer(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
