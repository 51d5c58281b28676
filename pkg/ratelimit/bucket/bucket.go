package bucket

import (
	"math"
	"sync"
	"time"

	"github.com/vnykmshr/gatrack/pkg/common/errors"
	"github.com/vnykmshr/gatrack/pkg/common/validation"
)

// RefillPolicy selects how elapsed time is converted into tokens.
type RefillPolicy int

const (
	// RefillQuantized credits tokens only once more than a full interval has
	// elapsed since the previous check. The credited amount is proportional
	// to the whole elapsed time, not truncated to whole intervals. A bucket
	// checked more often than once per interval never refills.
	RefillQuantized RefillPolicy = iota

	// RefillContinuous credits tokens for any positive elapsed time.
	RefillContinuous
)

func (p RefillPolicy) String() string {
	switch p {
	case RefillQuantized:
		return "quantized"
	case RefillContinuous:
		return "continuous"
	}
	return "unknown"
}

// ParseRefillPolicy resolves "quantized" (or "") and "continuous".
func ParseRefillPolicy(s string) (RefillPolicy, error) {
	switch s {
	case "", "quantized":
		return RefillQuantized, nil
	case "continuous":
		return RefillContinuous, nil
	}
	return 0, errors.NewValidationError("bucket", "policy", s, "unrecognized refill policy").
		WithHint("use quantized or continuous")
}

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Config holds configuration options for creating a TokenBucket or RateLimiter.
type Config struct {
	// Capacity is the maximum number of tokens the bucket can hold.
	// Zero makes the bucket unbounded: every request is admitted.
	Capacity float64

	// RefillRate is the number of tokens added per Interval.
	// Zero keeps the bucket permanently full.
	RefillRate float64

	// Interval is the length of one replenishment period.
	Interval Interval

	// Policy selects quantized (default) or continuous refill.
	Policy RefillPolicy

	// Clock provides the current time. If nil, SystemClock is used.
	Clock Clock

	// InitialLevel is the starting token count for a TokenBucket, clamped to
	// [0, Capacity]. RateLimiter ignores it and always starts full.
	InitialLevel float64
}

// DefaultConfig returns the admission settings used for analytics hits:
// bursts of 20, refilled at 2 tokens per second.
func DefaultConfig() Config {
	return Config{
		Capacity:   20,
		RefillRate: 2,
		Interval:   Second,
	}
}

// LegacyConfig returns the earlier, much looser setting of 60 tokens
// refilled at 2000 per second.
func LegacyConfig() Config {
	return Config{
		Capacity:   60,
		RefillRate: 2000,
		Interval:   Second,
	}
}

// Validate checks the configuration. Interval must be positive whenever
// the bucket is bounded and refills.
func (c Config) Validate() error {
	if err := validation.ValidateNonNegative("bucket", "capacity", c.Capacity); err != nil {
		return err
	}
	if math.IsInf(c.Capacity, 0) {
		return errors.NewValidationError("bucket", "capacity", c.Capacity, "must be finite").
			WithHint("use 0 for an unbounded bucket")
	}
	if err := validation.ValidateNonNegative("bucket", "refill_rate", c.RefillRate); err != nil {
		return err
	}
	if c.Capacity > 0 && c.RefillRate > 0 {
		if err := validation.ValidatePositiveFloat("bucket", "interval", c.Interval.Millis()); err != nil {
			return err
		}
	}
	if c.Policy != RefillQuantized && c.Policy != RefillContinuous {
		return errors.NewValidationError("bucket", "policy", int(c.Policy), "unrecognized refill policy")
	}
	return nil
}

// TokenBucket holds a bounded, lazily replenished supply of tokens.
// Replenishment is computed on demand at check time; there is no timer.
// It is safe for concurrent use.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64
	interval   time.Duration
	policy     RefillPolicy
	clock      Clock

	level      float64
	lastRefill time.Time
}

// NewTokenBucket creates an empty token bucket (or one holding
// config.InitialLevel tokens).
func NewTokenBucket(config Config) (*TokenBucket, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}

	tb := &TokenBucket{
		capacity:   config.Capacity,
		refillRate: config.RefillRate,
		interval:   config.Interval.Duration(),
		policy:     config.Policy,
		clock:      config.Clock,
		lastRefill: config.Clock.Now(),
	}
	tb.level = clamp(config.InitialLevel, 0, config.Capacity)
	return tb, nil
}

// Allow reports whether one token could be consumed now, consuming it if so.
func (tb *TokenBucket) Allow() bool {
	return tb.TryConsume(1)
}

// TryConsume removes count tokens and returns true, or returns false and
// leaves the level unchanged. An unbounded bucket admits everything and a
// count above capacity is always rejected without touching any state.
func (tb *TokenBucket) TryConsume(count float64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.capacity == 0 {
		return true
	}
	if math.IsNaN(count) || count > tb.capacity {
		return false
	}
	if count <= 0 {
		return true
	}

	tb.refill(tb.clock.Now())

	if count > tb.level {
		return false
	}
	tb.level -= count
	return true
}

// refill brings the level up to date and reports whether tokens were added.
// Must be called with tb.mu held.
func (tb *TokenBucket) refill(now time.Time) bool {
	if tb.refillRate == 0 {
		tb.level = tb.capacity
		return false
	}

	elapsed := now.Sub(tb.lastRefill)
	if elapsed < 0 {
		elapsed = 0
	}
	tb.lastRefill = now

	switch tb.policy {
	case RefillContinuous:
		if elapsed == 0 {
			return false
		}
	default:
		if elapsed <= tb.interval {
			return false
		}
	}

	delta := float64(elapsed) * tb.refillRate / float64(tb.interval)
	tb.level = math.Min(tb.level+delta, tb.capacity)
	return true
}

// fill sets the level to capacity.
func (tb *TokenBucket) fill() {
	tb.mu.Lock()
	tb.level = tb.capacity
	tb.mu.Unlock()
}

// Capacity returns the maximum number of tokens.
func (tb *TokenBucket) Capacity() float64 {
	return tb.capacity
}

// RefillRate returns the tokens added per interval.
func (tb *TokenBucket) RefillRate() float64 {
	return tb.refillRate
}

// Interval returns the replenishment interval.
func (tb *TokenBucket) Interval() Interval {
	return Interval(tb.interval)
}

// Policy returns the refill policy.
func (tb *TokenBucket) Policy() RefillPolicy {
	return tb.policy
}

// Level returns the token count as of the last check. It does not refill.
func (tb *TokenBucket) Level() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.level
}

// LastRefill returns the time of the last level update.
func (tb *TokenBucket) LastRefill() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill
}

func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
