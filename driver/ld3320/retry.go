package ld3320

import (
	"errors"
	"fmt"
)

// errAbort marks an attempt failure that must not be retried.
type errAbort struct{ err error }

func (e errAbort) Error() string { return e.err.Error() }
func (e errAbort) Unwrap() error { return e.err }

// retryPolicy runs an operation a bounded number of times, calling
// recover after every failed attempt.
type retryPolicy struct {
	attempts int
	recover  func() error
}

// do runs op until it succeeds, fails with errAbort or the attempts
// run out. A failed recovery does not end the loop; its error is
// reported with the final one.
func (r retryPolicy) do(op func(attempt int) error) error {
	var errs []error
	for i := range r.attempts {
		err := op(i)
		if err == nil {
			return nil
		}
		rerr := r.recover()
		var abort errAbort
		if errors.As(err, &abort) {
			return errors.Join(abort.err, rerr)
		}
		if rerr != nil {
			errs = append(errs, rerr)
		}
		if i == r.attempts-1 {
			errs = append([]error{err}, errs...)
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrStartFailed, r.attempts, errors.Join(errs...))
}
