package sealcrypt

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Rate limiting parameters for failed decryption attempts
const (
	// RateLimitThreshold is the number of consecutive failures after
	// which delays start
	RateLimitThreshold = 3

	// RateLimitBaseDelay is the delay applied at the threshold
	RateLimitBaseDelay = 2 * time.Second

	// RateLimitMaxDelay caps the exponential delay so a legitimate
	// user is slowed down, never locked out
	RateLimitMaxDelay = 30 * time.Second
)

// RateLimiter tracks consecutive failed decryption attempts and
// computes an exponential cool-down delay to slow password-guessing
// loops. The counter lives in memory for the lifetime of the engine
// instance; it is not persisted across restarts and is mutated only
// from the decrypt path, which is expected to run one operation at a
// time per instance.
type RateLimiter struct {
	failedAttempts int
	logger         *logrus.Logger

	// sleep is replaceable in tests
	sleep func(time.Duration)
}

// NewRateLimiter creates a rate limiter with a zeroed failure counter
func NewRateLimiter(logger *logrus.Logger) *RateLimiter {
	if logger == nil {
		logger = logrus.New()
	}
	return &RateLimiter{
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Delay returns the cool-down required before the next attempt:
// zero below the threshold, then base * 2^(failures-threshold)
// capped at RateLimitMaxDelay.
func (r *RateLimiter) Delay() time.Duration {
	if r.failedAttempts < RateLimitThreshold {
		return 0
	}
	delay := RateLimitBaseDelay
	for i := RateLimitThreshold; i < r.failedAttempts && delay < RateLimitMaxDelay; i++ {
		delay *= 2
	}
	if delay > RateLimitMaxDelay {
		delay = RateLimitMaxDelay
	}
	return delay
}

// Wait suspends the caller for the current cool-down delay, if any,
// and returns the delay that was applied.
func (r *RateLimiter) Wait() time.Duration {
	delay := r.Delay()
	if delay > 0 {
		r.logger.WithFields(logrus.Fields{
			"event":           "decrypt_rate_limited",
			"failed_attempts": r.failedAttempts,
			"delay":           delay,
		}).Warn("delaying decryption attempt after repeated failures")
		r.sleep(delay)
	}
	return delay
}

// RecordFailure increments the consecutive-failure counter. Only
// authentication failures count; malformed containers are not password
// guesses.
func (r *RateLimiter) RecordFailure() {
	r.failedAttempts++
}

// Reset clears the failure counter after a successful decryption
func (r *RateLimiter) Reset() {
	r.failedAttempts = 0
}

// FailedAttempts returns the current consecutive-failure count
func (r *RateLimiter) FailedAttempts() int {
	return r.failedAttempts
}
