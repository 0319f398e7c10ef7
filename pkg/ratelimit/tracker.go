package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for upstream throttle tracking.
var (
	upstreamThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "employee_upstream_throttled_total",
		Help: "Total number of 429 responses received from the upstream employee server",
	})

	upstreamThrottleBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "employee_upstream_throttle_blocks_total",
		Help: "Total number of requests blocked locally during an upstream cooldown",
	})

	upstreamCooldownSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "employee_upstream_cooldown_seconds",
		Help: "Length of the most recent upstream cooldown in seconds",
	})
)

// Tracker records upstream throttling and gates requests during a cooldown.
// It is safe for concurrent use and is shared by every caller of one
// upstream server.
type Tracker struct {
	mu     sync.Mutex
	state  ThrottleState
	logger zerolog.Logger
}

// NewTracker creates a new throttle tracker in the unblocked state.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// GetState returns a snapshot of the current throttle state.
func (t *Tracker) GetState() ThrottleState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// UpdateFromResponse folds an upstream response into the throttle state.
// A 429 starts (or extends) a cooldown; any non-429 response resets the
// consecutive counter but leaves an active cooldown in place.
func (t *Tracker) UpdateFromResponse(statusCode int, headers http.Header) {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if statusCode != http.StatusTooManyRequests {
		t.state.Consecutive = 0
		return
	}

	t.state.Consecutive++
	cooldown, ok := parseRetryAfter(headers.Get("Retry-After"), now)
	if !ok {
		cooldown = backoffCooldown(t.state.Consecutive)
	}

	blockedUntil := now.Add(cooldown)
	if blockedUntil.After(t.state.BlockedUntil) {
		t.state.BlockedUntil = blockedUntil
	}

	upstreamThrottledTotal.Inc()
	upstreamCooldownSeconds.Set(cooldown.Seconds())

	t.logger.Warn().
		Int("consecutive", t.state.Consecutive).
		Dur("cooldown", cooldown).
		Time("blocked_until", t.state.BlockedUntil).
		Msg("Upstream throttled requests - cooling down")
}

// ShouldAllowRequest reports whether a request may be sent upstream now.
func (t *Tracker) ShouldAllowRequest() bool {
	state := t.GetState()

	if state.IsBlocked() {
		t.logger.Debug().
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("Upstream cooldown active - blocking request")
		upstreamThrottleBlocksTotal.Inc()
		return false
	}

	return true
}

// Reset clears any active cooldown.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = ThrottleState{}
}

// parseRetryAfter accepts both forms of the Retry-After header: a number of
// seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		if seconds > int(MaxCooldown/time.Second) {
			return MaxCooldown, true
		}
		return time.Duration(seconds) * time.Second, true
	}

	when, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	wait := when.Sub(now)
	if wait < 0 {
		wait = 0
	}
	return min(wait, MaxCooldown), true
}
