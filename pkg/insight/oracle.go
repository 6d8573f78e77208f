package insight

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/umputun/feedpulse/pkg/domain"
	"github.com/umputun/feedpulse/pkg/llm"
	"github.com/umputun/feedpulse/pkg/theme"
)

// maxCommentLen limits a single comment in the prompt
const maxCommentLen = 300

var errNoOracle = errors.New("oracle is not configured")

type bucketResponse struct {
	Label   string `json:"label"`
	Indices []int  `json:"matching_indices"`
}

// oracleClassify asks the oracle for the dominant issue label of records and the
// comments matching it. Any failed check is returned as error and means fallback.
// The oracle sees at most MaxPromptComments records, the share is checked against
// that sample and the count is extended to the whole bucket.
func (r *Resolver) oracleClassify(ctx context.Context, records []domain.FeedbackRecord, excluded map[string]bool) (*domain.BucketKpi, error) {
	if r.oracle == nil {
		return nil, errNoOracle
	}

	sample := records
	if len(sample) > r.cfg.MaxPromptComments {
		sample = sample[:r.cfg.MaxPromptComments]
	}

	content, err := r.oracle.Infer(ctx, buildBucketPrompt(sample, excluded))
	if err != nil {
		return nil, fmt.Errorf("oracle call: %w", err)
	}

	var resp bucketResponse
	if err := llm.DecodeJSON(content, &resp); err != nil {
		return nil, fmt.Errorf("oracle response: %w", err)
	}

	raw := strings.TrimSpace(resp.Label)
	if raw == "" {
		return nil, errors.New("empty label")
	}
	if len(resp.Indices) == 0 {
		return nil, fmt.Errorf("no matching comments for %q", raw)
	}
	if theme.WordCount(raw) > 5 {
		return nil, fmt.Errorf("label %q is too long", raw)
	}

	label := theme.Canonicalize(theme.CleanLabel(raw))
	if label == "" || strings.EqualFold(label, theme.Unclassified) {
		return nil, fmt.Errorf("label %q has no usable text", raw)
	}
	if excluded[label] {
		return nil, fmt.Errorf("label %q is excluded", label)
	}

	res := domain.BucketKpi{Label: label}
	seen := map[int]bool{}
	for _, idx := range resp.Indices {
		if idx < 1 || idx > len(sample) || seen[idx] {
			continue
		}
		seen[idx] = true
		res.Count++
		if r.aggregator.IsEnterprise(sample[idx-1].Source) {
			res.EnterpriseCount++
		}
	}
	if res.Count == 0 {
		return nil, fmt.Errorf("no valid comment indices for %q", label)
	}
	if res.Count*100 < r.cfg.MinSharePercent*len(sample) {
		return nil, fmt.Errorf("label %q covers %d of %d records, below %d%%", label, res.Count, len(sample),
			r.cfg.MinSharePercent)
	}

	rest := records[len(sample):]
	if len(rest) == 0 {
		return &res, nil
	}
	if theme.IsCanonical(label) {
		// known theme, the records the oracle has not seen are counted by keywords
		extra := r.countTheme(rest, label)
		res.Count += extra.Count
		res.EnterpriseCount += extra.EnterpriseCount
		return &res, nil
	}
	res.Count = scale(res.Count, len(records), len(sample))
	res.EnterpriseCount = scale(res.EnterpriseCount, len(records), len(sample))
	return &res, nil
}

// scale projects a count over a sample of sampleSize onto total records
func scale(count, total, sampleSize int) int {
	return int(math.Round(float64(count) * float64(total) / float64(sampleSize)))
}

func buildBucketPrompt(records []domain.FeedbackRecord, excluded map[string]bool) string {
	var sb strings.Builder
	sb.WriteString("Below are customer feedback comments with the same sentiment.\n")
	sb.WriteString("Find the single most common concrete issue and name it with a short label of 2-5 words.\n")
	sb.WriteString("Known themes (use one of these when it fits): ")
	sb.WriteString(strings.Join(theme.Vocabulary(), ", "))
	sb.WriteString("\n")

	if len(excluded) > 0 {
		labels := make([]string, 0, len(excluded))
		for _, v := range theme.Vocabulary() {
			if excluded[v] {
				labels = append(labels, v)
			}
		}
		extra := []string{}
		for v := range excluded {
			if !theme.IsCanonical(v) {
				extra = append(extra, v)
			}
		}
		sort.Strings(extra)
		labels = append(labels, extra...)
		sb.WriteString("Do not use these themes: ")
		sb.WriteString(strings.Join(labels, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString("\nComments:\n")
	for i, rec := range records {
		comment := strings.Join(strings.Fields(rec.Comment), " ")
		if utf8.RuneCountInString(comment) > maxCommentLen {
			comment = string([]rune(comment)[:maxCommentLen]) + "..."
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, comment))
	}

	sb.WriteString("\nRespond with JSON only: ")
	sb.WriteString(`{"label": "<short issue label>", "matching_indices": [<1-based numbers of comments about this issue>]}`)
	return sb.String()
}
