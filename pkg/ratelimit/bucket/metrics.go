package bucket

import (
	"github.com/vnykmshr/gatrack/pkg/metrics"
)

const limiterType = "token_bucket"

// tokenReporter is implemented by limiters that can report their level.
type tokenReporter interface {
	Tokens() float64
}

// MetricsLimiter wraps a Limiter with Prometheus metrics collection.
type MetricsLimiter struct {
	limiter  Limiter
	name     string
	registry *metrics.Registry
}

// NewWithMetrics creates a RateLimiter from config and wraps it with metrics
// labelled name. With metrics disabled the plain RateLimiter is returned.
func NewWithMetrics(config Config, name string, metricsConfig metrics.Config) (Limiter, error) {
	rl, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}
	return Instrument(rl, name, metricsConfig), nil
}

// Instrument wraps any Limiter with metrics labelled name.
func Instrument(limiter Limiter, name string, metricsConfig metrics.Config) Limiter {
	if !metricsConfig.Enabled {
		return limiter
	}
	return &MetricsLimiter{
		limiter:  limiter,
		name:     name,
		registry: metrics.For(metricsConfig),
	}
}

// Allow is TryConsume(1).
func (ml *MetricsLimiter) Allow() bool {
	return ml.TryConsume(1)
}

// TryConsume delegates to the wrapped limiter and records the outcome.
func (ml *MetricsLimiter) TryConsume(count float64) bool {
	ml.registry.RateLimitRequests.WithLabelValues(limiterType, ml.name).Add(nonNegative(count))

	allowed := ml.limiter.TryConsume(count)

	if allowed {
		ml.registry.RateLimitAllowed.WithLabelValues(limiterType, ml.name).Add(nonNegative(count))
	} else {
		ml.registry.RateLimitDenied.WithLabelValues(limiterType, ml.name).Add(nonNegative(count))
	}

	if tr, ok := ml.limiter.(tokenReporter); ok {
		ml.registry.RateLimitTokens.WithLabelValues(limiterType, ml.name).Set(tr.Tokens())
	}

	return allowed
}

// Unwrap returns the instrumented limiter.
func (ml *MetricsLimiter) Unwrap() Limiter {
	return ml.limiter
}

// counters panic on negative or NaN adds
func nonNegative(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
