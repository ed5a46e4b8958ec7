// Package await polls the Basiq API until server-side work becomes visible.
//
// Connection jobs complete out of band and accounts appear some time after
// the job finishes. The client itself never waits; callers that need the
// result use Job or Accounts, which poll with exponential backoff and stop
// early on failures that retrying cannot fix.
package await

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/jdenly/basiq-api/client"
)

// ErrTimeout is returned when the condition was not met before the maximum
// elapsed time.
var ErrTimeout = errors.New("await: condition not met before deadline")

// errNotReady signals the poll loop to try again.
var errNotReady = errors.New("not ready")

// JobGetter is satisfied by *client.Client.
type JobGetter interface {
	GetJob(ctx context.Context, jobID string) (*client.Job, error)
}

// AccountLister is satisfied by *client.Client.
type AccountLister interface {
	GetAccounts(ctx context.Context, userID string) (*client.AccountList, error)
}

// JobFailedError reports a job step that ended in failure.
type JobFailedError struct {
	Job  *client.Job
	Step client.JobStep
}

func (e *JobFailedError) Error() string {
	msg := fmt.Sprintf("await: job %s failed at step %q", e.Job.ID, e.Step.Title)
	if r := e.Step.Result; r != nil && (r.Code != "" || r.Detail != "") {
		msg += fmt.Sprintf(": %s %s", r.Code, r.Detail)
	}
	return msg
}

// Job polls jobID until every step succeeds. A failed step returns
// *JobFailedError. On timeout the last observed job is returned alongside
// ErrTimeout.
func Job(ctx context.Context, g JobGetter, jobID string, opts ...Option) (*client.Job, error) {
	cfg := newConfig(opts)
	return poll(ctx, cfg, "job "+jobID, func(ctx context.Context) (*client.Job, bool, error) {
		job, err := g.GetJob(ctx, jobID)
		if err != nil {
			return nil, false, err
		}
		if step, failed := job.FailedStep(); failed {
			return job, false, backoff.Permanent(&JobFailedError{Job: job, Step: step})
		}
		return job, job.Succeeded(), nil
	})
}

// Accounts polls the user's accounts until ready returns true. On timeout
// the last observed list is returned alongside ErrTimeout.
func Accounts(ctx context.Context, l AccountLister, userID string, ready func(*client.AccountList) bool, opts ...Option) (*client.AccountList, error) {
	if ready == nil {
		ready = NonEmpty
	}
	cfg := newConfig(opts)
	return poll(ctx, cfg, "accounts of "+userID, func(ctx context.Context) (*client.AccountList, bool, error) {
		list, err := l.GetAccounts(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return list, ready(list), nil
	})
}

// NonEmpty is ready once at least one account is listed.
func NonEmpty(l *client.AccountList) bool { return l != nil && len(l.Data) > 0 }

// ContainsAccountNumbers is ready once every given account number is listed.
func ContainsAccountNumbers(nums ...string) func(*client.AccountList) bool {
	return func(l *client.AccountList) bool {
		if l == nil {
			return false
		}
		have := l.AccountNumbers()
		for _, n := range nums {
			if !slices.Contains(have, n) {
				return false
			}
		}
		return true
	}
}

// poll runs fn with exponential backoff until it reports done, returns a
// permanent error, or the policy gives up.
func poll[T any](ctx context.Context, cfg config, what string, fn func(context.Context) (T, bool, error)) (T, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.initialInterval
	exp.Multiplier = cfg.multiplier
	exp.MaxInterval = cfg.maxInterval
	exp.MaxElapsedTime = cfg.maxElapsed
	exp.Reset()

	var last T
	attempts := 0
	op := func() error {
		attempts++
		v, done, err := fn(ctx)
		if err != nil {
			var perm *backoff.PermanentError
			if errors.As(err, &perm) {
				last = v
				return err
			}
			// Only transient API failures are worth another attempt.
			if client.IsRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		last = v
		if done {
			return nil
		}
		return errNotReady
	}
	notify := func(err error, wait time.Duration) {
		log.Debug().Err(err).Str("target", what).Int("attempt", attempts).Dur("wait", wait).Msg("await: retrying")
	}

	err := backoff.RetryNotify(op, backoff.WithContext(exp, ctx), notify)
	switch {
	case err == nil:
		return last, nil
	case errors.Is(err, errNotReady):
		return last, fmt.Errorf("%w: %s after %d attempts", ErrTimeout, what, attempts)
	case client.IsRetryable(err):
		return last, fmt.Errorf("%w: %s: %w", ErrTimeout, what, err)
	default:
		return last, err
	}
}
