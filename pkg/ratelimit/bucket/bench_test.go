package bucket

import (
	"testing"
)

// mustNewLimiter creates a new limiter or panics on error (for benchmarks only)
func mustNewLimiter(capacity, rate float64) *RateLimiter {
	limiter, err := New(capacity, rate, Second)
	if err != nil {
		panic(err)
	}
	return limiter
}

// BenchmarkTryConsume measures the admission check under contention
func BenchmarkTryConsume(b *testing.B) {
	limiter := mustNewLimiter(1000, 1000000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			limiter.TryConsume(1)
		}
	})
}

// BenchmarkTryConsumeUnbounded measures the unbounded fast path
func BenchmarkTryConsumeUnbounded(b *testing.B) {
	limiter := mustNewLimiter(0, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.TryConsume(1)
	}
}

// BenchmarkTryConsumeRejected measures the over-capacity fast fail
func BenchmarkTryConsumeRejected(b *testing.B) {
	limiter := mustNewLimiter(10, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.TryConsume(11)
	}
}
