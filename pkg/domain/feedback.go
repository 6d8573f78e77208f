package domain

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Sentiment is the normalized polarity of a feedback record
type Sentiment string

// sentiment values as stored and exposed
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment converts free-form input into a Sentiment, case-insensitive
func ParseSentiment(s string) (Sentiment, bool) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, true
	case SentimentNeutral:
		return SentimentNeutral, true
	case SentimentNegative:
		return SentimentNegative, true
	}
	return "", false
}

// FeedbackRecord is a single feedback row as read from storage.
// Timestamp is kept as stored, it is parsed lazily and may be invalid.
type FeedbackRecord struct {
	ID        int64  `db:"id" json:"id"`
	Source    string `db:"source" json:"source"`
	Sentiment string `db:"sentiment" json:"sentiment"`
	Comment   string `db:"comment" json:"comment"`
	Timestamp string `db:"timestamp" json:"timestamp"`
}

// Polarity returns normalized sentiment, empty for unknown values
func (r FeedbackRecord) Polarity() Sentiment {
	s, _ := ParseSentiment(r.Sentiment)
	return s
}

// Time parses the record timestamp, naive timestamps are treated as UTC
func (r FeedbackRecord) Time() (time.Time, bool) {
	if strings.TrimSpace(r.Timestamp) == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(r.Timestamp), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// DayKey returns the UTC calendar day of the record as YYYY-MM-DD
func (r FeedbackRecord) DayKey() (string, bool) {
	t, ok := r.Time()
	if !ok {
		return "", false
	}
	return DayKey(t), true
}

// DayKey formats t as a UTC calendar-day key
func DayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
