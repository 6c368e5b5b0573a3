package playback

import "time"

// RetryPolicy bounds automatic reloads after playback errors.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   3 * time.Second,
		MaxDelay:    15 * time.Second,
	}
}

// Exhausted reports whether the 1-based attempt is past the budget.
func (p RetryPolicy) Exhausted(attempt int) bool {
	return attempt > p.MaxAttempts
}

// Delay returns the linear backoff for the given attempt, capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := p.BaseDelay * time.Duration(attempt)
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	return delay
}
