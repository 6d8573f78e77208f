package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedpulse/pkg/domain"
)

// FeedbackRepository handles feedback storage operations
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// ListFeedback returns all feedback rows ordered by id
func (r *FeedbackRepository) ListFeedback(ctx context.Context) ([]domain.FeedbackRecord, error) {
	query := `SELECT id, source, sentiment, comment, timestamp FROM feedback ORDER BY id`
	var records []domain.FeedbackRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return records, nil
}

// RecentFeedback returns up to limit most recent feedback rows, newest first
func (r *FeedbackRepository) RecentFeedback(ctx context.Context, limit int) ([]domain.FeedbackRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, source, sentiment, comment, timestamp FROM feedback ORDER BY id DESC LIMIT ?`
	var records []domain.FeedbackRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("get recent feedback: %w", err)
	}
	return records, nil
}

// CountFeedback returns the number of stored feedback rows
func (r *FeedbackRepository) CountFeedback(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM feedback`); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return count, nil
}

// CreateFeedback inserts a feedback row and sets its id, retrying on lock errors
func (r *FeedbackRepository) CreateFeedback(ctx context.Context, rec *domain.FeedbackRecord) error {
	query := `INSERT INTO feedback (source, sentiment, comment, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?)`
	createdAt := time.Now().UTC().Format(time.RFC3339)

	return withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, query, rec.Source, rec.Sentiment, rec.Comment, rec.Timestamp, createdAt)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("insert feedback: %w", err)}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get feedback id: %w", err)}
		}
		rec.ID = id
		return nil
	})
}
