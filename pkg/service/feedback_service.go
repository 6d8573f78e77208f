// Package service validates and stores incoming feedback.
package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/feedpulse/pkg/domain"
)

// MaxCommentLen is the maximum accepted comment length in runes
const MaxCommentLen = 5000

// FeedbackStore persists and lists feedback rows
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, rec *domain.FeedbackRecord) error
	RecentFeedback(ctx context.Context, limit int) ([]domain.FeedbackRecord, error)
	CountFeedback(ctx context.Context) (int64, error)
}

// FeedbackInput is a feedback submission as received from clients
type FeedbackInput struct {
	Source    string `json:"source"`
	Sentiment string `json:"sentiment"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ValidationError is returned for rejected submissions
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FeedbackService validates, sanitizes and stores feedback
type FeedbackService struct {
	store  FeedbackStore
	policy *bluemonday.Policy
	now    func() time.Time
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(store FeedbackStore) *FeedbackService {
	return &FeedbackService{store: store, policy: bluemonday.StrictPolicy(), now: time.Now}
}

// Submit validates input and stores it. Sentiment is stored lowercase, markup is
// stripped from source and comment, and a missing timestamp means now.
func (s *FeedbackService) Submit(ctx context.Context, in FeedbackInput) (domain.FeedbackRecord, error) {
	source := s.plain(in.Source)
	if source == "" {
		return domain.FeedbackRecord{}, &ValidationError{Field: "source", Reason: "is required"}
	}

	sentiment, ok := domain.ParseSentiment(in.Sentiment)
	if !ok {
		return domain.FeedbackRecord{}, &ValidationError{Field: "sentiment",
			Reason: fmt.Sprintf("%q is not one of positive, neutral, negative", in.Sentiment)}
	}

	comment := s.plain(in.Comment)
	if comment == "" {
		return domain.FeedbackRecord{}, &ValidationError{Field: "comment", Reason: "is required"}
	}
	if utf8.RuneCountInString(comment) > MaxCommentLen {
		return domain.FeedbackRecord{}, &ValidationError{Field: "comment",
			Reason: fmt.Sprintf("longer than %d characters", MaxCommentLen)}
	}

	ts := s.now().UTC()
	if raw := strings.TrimSpace(in.Timestamp); raw != "" {
		parsed, err := dateparse.ParseIn(raw, time.UTC)
		if err != nil {
			return domain.FeedbackRecord{}, &ValidationError{Field: "timestamp", Reason: fmt.Sprintf("can't parse %q", raw)}
		}
		ts = parsed.UTC()
	}

	rec := domain.FeedbackRecord{
		Source:    source,
		Sentiment: string(sentiment),
		Comment:   comment,
		Timestamp: ts.Format(time.RFC3339),
	}
	if err := s.store.CreateFeedback(ctx, &rec); err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("store feedback: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit newest feedback rows, limit is clamped to 1..1000
func (s *FeedbackService) Recent(ctx context.Context, limit int) ([]domain.FeedbackRecord, error) {
	switch {
	case limit <= 0:
		limit = 100
	case limit > 1000:
		limit = 1000
	}
	records, err := s.store.RecentFeedback(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	if records == nil {
		records = []domain.FeedbackRecord{}
	}
	return records, nil
}

// Count returns the number of stored feedback rows
func (s *FeedbackService) Count(ctx context.Context) (int64, error) {
	count, err := s.store.CountFeedback(ctx)
	if err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return count, nil
}

// plain strips markup and returns trimmed plain text
func (s *FeedbackService) plain(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}
