package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedpulse/pkg/domain"
)

func scored(name string, score int) domain.ScoredTheme {
	return domain.ScoredTheme{ThemeAggregate: domain.ThemeAggregate{Theme: name, TotalMentions: score},
		RiskScore: score, RiskTier: TierFor(score)}
}

func themesOf(list []domain.ScoredTheme) []string {
	res := make([]string, 0, len(list))
	for _, s := range list {
		res = append(res, s.Theme)
	}
	return res
}

func TestSelectHeadlines(t *testing.T) {
	tests := []struct {
		name  string
		input []domain.ScoredTheme
		want  []string
	}{
		{name: "empty", input: nil, want: []string{}},
		{name: "fewer than three", input: []domain.ScoredTheme{scored("b", 30), scored("a", 12)}, want: []string{"b", "a"}},
		{name: "low impact already in top", input: []domain.ScoredTheme{scored("a", 25), scored("b", 12), scored("c", 5),
			scored("d", 3)}, want: []string{"a", "b", "c"}},
		{name: "third slot replaced by best low impact", input: []domain.ScoredTheme{scored("a", 25), scored("b", 22),
			scored("c", 15), scored("d", 11), scored("e", 4), scored("f", 9)}, want: []string{"a", "b", "f"}},
		{name: "no low impact available", input: []domain.ScoredTheme{scored("a", 25), scored("b", 22),
			scored("c", 15), scored("d", 11)}, want: []string{"a", "b", "c"}},
		{name: "ties broken by label", input: []domain.ScoredTheme{scored("zeta", 5), scored("alpha", 5),
			scored("mid", 5), scored("beta", 5)}, want: []string{"alpha", "beta", "mid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectHeadlines(tt.input, 3)
			assert.Equal(t, tt.want, themesOf(got))
		})
	}
}

func TestSelectHeadlines_Properties(t *testing.T) {
	input := []domain.ScoredTheme{}
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		input = append(input, scored(name, 30-i*4)) // 30, 26, 22, 18, 14, 10, 6
	}

	got := SelectHeadlines(input, 3)
	require.Len(t, got, 3)
	seen := map[string]bool{}
	hasLow := false
	for _, s := range got {
		assert.False(t, seen[s.Theme], "duplicate theme %s", s.Theme)
		seen[s.Theme] = true
		if s.RiskTier == domain.TierLowImpact {
			hasLow = true
		}
	}
	assert.True(t, hasLow)
	assert.Equal(t, []string{"a", "b", "g"}, themesOf(got))

	// input is not modified
	assert.Equal(t, "a", input[0].Theme)
	assert.Equal(t, "c", input[2].Theme)
}

func TestSelectHeadlines_DefaultCount(t *testing.T) {
	input := []domain.ScoredTheme{scored("a", 1), scored("b", 2), scored("c", 3), scored("d", 4)}
	assert.Len(t, SelectHeadlines(input, 0), DefaultHeadlineCount)
}

func TestRankThemes(t *testing.T) {
	input := []domain.ScoredTheme{scored("b", 3), scored("a", 3), scored("c", 9)}
	assert.Equal(t, []string{"c", "a", "b"}, themesOf(RankThemes(input)))
	assert.Equal(t, "b", input[0].Theme)
}
