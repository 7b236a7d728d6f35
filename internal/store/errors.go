package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ClaraBenejam/PAWSture/pkg/models"
)

// Error wraps a gateway failure with its taxonomy kind, following the sentinel
// + typed-wrapper convention of pkg/models.
type Error struct {
	Kind error // one of models.ErrTransient, models.ErrNotFound, models.ErrShapeMismatch
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Kind: models.ErrNotFound, Op: op, Err: err}
	}
	if isShapeMismatch(err) {
		// A row missing an expected column after schema evolution: the store is
		// reachable and the query ran, but the result set doesn't match what the
		// gateway expects. Retrying won't fix a schema problem, so surface it
		// immediately (§4.A).
		return &Error{Kind: models.ErrShapeMismatch, Op: op, Err: err}
	}
	var pgErr interface{ Field(byte) string }
	if errors.As(err, &pgErr) {
		// A driver-level error we can identify but don't have a special case
		// for is treated as transient: the row store is reachable but rejected
		// this particular statement, and retrying inside the bounded budget is
		// cheaper than surfacing a tick-wide failure.
		return &Error{Kind: models.ErrTransient, Op: op, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: models.ErrTransient, Op: op, Err: err}
	}
	return &Error{Kind: models.ErrTransient, Op: op, Err: err}
}

// isShapeMismatch reports whether err is database/sql's plain-string scan
// failure for a column count or name mismatch. database/sql does not export a
// sentinel or typed error for these, only a formatted message, so we match on
// its well-known prefixes rather than inventing our own wrapper type.
func isShapeMismatch(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sql: expected") && strings.Contains(msg, "destination arguments in Scan") ||
		strings.Contains(msg, "sql: Scan error on column")
}

// withRetry runs fn up to maxRetries+1 times, sleeping a jittered, exponentially
// backed-off delay between attempts, but only retries errors classified as
// transient. Shape and not-found errors surface immediately.
func withRetry(ctx context.Context, maxRetries int, delay time.Duration, backoff float64, fn func() error) error {
	var lastErr error
	d := delay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jitteredDelay(d)):
			}
			d = time.Duration(float64(d) * backoff)
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		var gwErr *Error
		if !errors.As(err, &gwErr) || !errors.Is(gwErr.Kind, models.ErrTransient) {
			return err
		}
	}

	return lastErr
}
