package bucket

// Limiter decides whether a unit of work may proceed. Implementations
// never block: a rejected request is simply dropped by the caller.
type Limiter interface {
	// TryConsume removes count tokens and reports whether they were available.
	TryConsume(count float64) bool

	// Allow is TryConsume(1).
	Allow() bool
}

// RateLimiter owns a single TokenBucket that starts full, so callers may
// burst up to capacity immediately after construction.
type RateLimiter struct {
	bucket *TokenBucket
}

var (
	_ Limiter = (*RateLimiter)(nil)
	_ Limiter = (*TokenBucket)(nil)
)

// New creates a RateLimiter admitting bursts of capacity tokens, refilled at
// refillRate tokens per interval.
func New(capacity, refillRate float64, interval Interval) (*RateLimiter, error) {
	return NewWithConfig(Config{
		Capacity:   capacity,
		RefillRate: refillRate,
		Interval:   interval,
	})
}

// NewWithConfig creates a RateLimiter from config. config.InitialLevel is
// ignored; the bucket always starts full.
func NewWithConfig(config Config) (*RateLimiter, error) {
	tb, err := NewTokenBucket(config)
	if err != nil {
		return nil, err
	}
	tb.fill()
	return &RateLimiter{bucket: tb}, nil
}

// Allow is TryConsume(1).
func (rl *RateLimiter) Allow() bool {
	return rl.TryConsume(1)
}

// TryConsume rejects requests larger than the bucket capacity up front and
// otherwise delegates to the bucket.
func (rl *RateLimiter) TryConsume(count float64) bool {
	if rl.bucket.capacity > 0 && count > rl.bucket.capacity {
		return false
	}
	return rl.bucket.TryConsume(count)
}

// Bucket returns the owned token bucket for inspection.
func (rl *RateLimiter) Bucket() *TokenBucket {
	return rl.bucket
}

// Tokens returns the bucket level as of the last check.
func (rl *RateLimiter) Tokens() float64 {
	return rl.bucket.Level()
}
