package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-connections/core"
)

const (
	defaultRetryMaxAttempts     = 3
	defaultRetryInitialInterval = 50 * time.Millisecond
	defaultRetryMaxInterval     = 500 * time.Millisecond
)

// withRetry re-runs an operation on transient driver failures. Business
// outcomes (not found, conflicts) are returned immediately; only the
// storage boundary retries, callers above never do.
func withRetry(ctx context.Context, operation func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = defaultRetryInitialInterval
	policy.MaxInterval = defaultRetryMaxInterval

	wrapped := func() error {
		err := operation()
		if err == nil {
			return nil
		}
		if isTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	return backoff.Retry(wrapped, backoff.WithContext(
		backoff.WithMaxRetries(policy, defaultRetryMaxAttempts-1),
		ctx,
	))
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrConflict) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, token := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"deadlock detected",
		"database is locked",
		"too many connections",
	} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}

// mapNotFound converts driver-level empty results into the domain sentinel so
// the service can keep its absent-vs-invisible semantics.
func mapNotFound(err error, kind string, id string) error {
	if err == nil {
		return nil
	}
	if isNotFoundError(err) {
		return fmt.Errorf("%w: %s %q", core.ErrNotFound, kind, id)
	}
	return err
}

func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryNotFound
	}
	return strings.Contains(strings.ToLower(err.Error()), "no rows in result set")
}
