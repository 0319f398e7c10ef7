// Package ratelimit tracks the upstream employee server's throttling signals
// and gates requests while the server has asked callers to back off.
// It watches for 429 Too Many Requests responses and their Retry-After header.
package ratelimit

import (
	"time"
)

// Cooldown bounds used when the upstream server throttles without a usable
// Retry-After header.
const (
	// DefaultCooldown is the first cooldown applied after a 429 response.
	DefaultCooldown = 10 * time.Second

	// MaxCooldown caps the cooldown that repeated 429 responses can build up.
	MaxCooldown = 5 * time.Minute
)

// ThrottleState represents the current upstream throttling state.
type ThrottleState struct {
	// BlockedUntil is when requests may be sent again.
	// The zero value means requests are not blocked.
	BlockedUntil time.Time

	// Consecutive counts 429 responses received without a success in between.
	Consecutive int
}

// IsBlocked returns true while the cooldown is active.
func (s ThrottleState) IsBlocked() bool {
	return time.Now().Before(s.BlockedUntil)
}

// TimeUntilReset returns the remaining cooldown.
// Returns 0 if the cooldown has already passed.
func (s ThrottleState) TimeUntilReset() time.Duration {
	duration := time.Until(s.BlockedUntil)
	if duration < 0 {
		return 0
	}
	return duration
}

// backoffCooldown doubles DefaultCooldown for every consecutive 429 after
// the first, capped at MaxCooldown.
func backoffCooldown(consecutive int) time.Duration {
	cooldown := DefaultCooldown
	for i := 1; i < consecutive; i++ {
		cooldown *= 2
		if cooldown >= MaxCooldown {
			return MaxCooldown
		}
	}
	return cooldown
}
