/*
Package ratelimit groups the client-side admission control used by gatrack.

The only limiter is bucket, a token bucket that gates outgoing analytics
hits so a chatty application cannot exceed the collect endpoint's quotas:

	limiter, _ := bucket.New(20, 2, bucket.Second) // burst 20, 2 tokens/s
	if limiter.TryConsume(1) {
		// send the hit
	}

Rejected requests are dropped, never queued. State lives in process
memory only.
*/
package ratelimit
