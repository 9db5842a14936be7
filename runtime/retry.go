package runtime

import (
	"time"

	"github.com/jpillora/backoff"
)

// RetryPolicy spaces the attempts of a WAITING record exponentially.
// The envelope expiration is the only bound, checked by the dispatcher.
type RetryPolicy struct {
	Min    time.Duration
	Max    time.Duration
	Factor float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Min: 5 * time.Second, Max: 10 * time.Minute, Factor: 2}
}

// NextAttempt returns when a record that failed its n-th attempt (n >= 1) is due again.
func (p RetryPolicy) NextAttempt(attempts int, now time.Time) time.Time {
	b := &backoff.Backoff{Min: p.Min, Max: p.Max, Factor: p.Factor}
	return now.Add(b.ForAttempt(float64(max(attempts-1, 0))))
}
