package retry

import "time"

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt (base * 2^attempt) and is
// clamped to max.
func ExponentialBackoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := base * (1 << attempt)
	if delay <= 0 || delay > max {
		return max
	}
	return delay
}
