package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// errStopRetry is matched by every criticalError and terminates the retry loop
var errStopRetry = errors.New("stop retry")

// criticalError wraps a non-lock error returned from a retried operation
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	return e.err.Error()
}

func (e *criticalError) Unwrap() error {
	return e.err
}

// Is reports criticalError as errStopRetry so repeater stops on it
func (e *criticalError) Is(target error) bool {
	return target == errStopRetry
}

// withRetry runs fn with backoff while it returns lock errors, a criticalError
// is returned right away
func withRetry(ctx context.Context, fn func() error) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, fn, errStopRetry)
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}
