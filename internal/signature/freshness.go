package signature

import "time"

// FreshnessChecker validates a callback timestamp against the receiver's
// clock. Stale timestamps guard against replay of captured requests; a small
// future allowance tolerates clock skew between the processor and us.
type FreshnessChecker struct {
	// MaxAge is how far in the past a timestamp may lie.
	MaxAge time.Duration
	// MaxFutureSkew is how far ahead of our clock a timestamp may lie.
	MaxFutureSkew time.Duration
}

// NewFreshnessChecker returns a checker with the given bounds.
func NewFreshnessChecker(maxAge, maxFutureSkew time.Duration) FreshnessChecker {
	return FreshnessChecker{MaxAge: maxAge, MaxFutureSkew: maxFutureSkew}
}

// Fresh reports whether the unix timestamp lies within the allowed window
// around now.
func (f FreshnessChecker) Fresh(timestamp int64, now time.Time) bool {
	age := now.Unix() - timestamp
	if age > int64(f.MaxAge/time.Second) {
		return false
	}
	if -age > int64(f.MaxFutureSkew/time.Second) {
		return false
	}
	return true
}
