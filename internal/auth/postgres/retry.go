// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const (
	defaultRetryBase  = 20 * time.Millisecond
	defaultMaxRetries = 3
	retryJitterPct    = 10
)

// Option configures a repository.
type Option func(*options)

type options struct {
	retryBase  time.Duration
	maxRetries uint64
	now        func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		retryBase:  defaultRetryBase,
		maxRetries: defaultMaxRetries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRetry sets the backoff base and the maximum number of retries after
// the first attempt. Zero retries disables retrying.
func WithRetry(base time.Duration, maxRetries uint64) Option {
	return func(o *options) {
		if base > 0 {
			o.retryBase = base
		}
		o.maxRetries = maxRetries
	}
}

// WithClock sets the clock used for read-time expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// withRetry runs fn, retrying transient database errors. Backoffs are
// stateful, so a new one is built per call.
func (o options) withRetry(ctx context.Context, fn func(context.Context) error) error {
	return o.retryWhen(ctx, isTransient, fn)
}

// withInsertRetry runs a non-idempotent INSERT. A dropped connection may
// have committed the row, so only errors that guarantee nothing was
// written are retried.
func (o options) withInsertRetry(ctx context.Context, fn func(context.Context) error) error {
	return o.retryWhen(ctx, isRetryableInsert, fn)
}

func (o options) retryWhen(ctx context.Context, retryable func(error) bool, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(o.maxRetries,
		retry.WithJitterPercent(retryJitterPct, retry.NewExponential(o.retryBase)))

	var attempts uint64
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := fn(ctx); err != nil {
			if retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil && attempts > o.maxRetries && retryable(err) {
		return oops.Code("STORE_RETRY_EXHAUSTED").With("attempts", attempts).Wrap(err)
	}
	return err //nolint:wrapcheck // callers attach codes
}

// isTransient reports whether err is worth retrying.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return true
		}
		return pgerrcode.IsConnectionException(pgErr.Code)
	}
	return pgconn.SafeToRetry(err)
}

// isRetryableInsert reports whether an INSERT failed without writing.
func isRetryableInsert(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return pgconn.SafeToRetry(err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
