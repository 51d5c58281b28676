/*
Package bucket implements a token bucket admission controller.

A TokenBucket holds up to Capacity tokens and is replenished at RefillRate
tokens per Interval. Replenishment is lazy: each check reads the clock,
credits tokens for the time elapsed since the previous check and then
decides. No goroutine or timer is involved.

Under the default RefillQuantized policy tokens are credited only when more
than one full interval has passed since the previous check, and the credit
is proportional to the entire elapsed time:

	capacity=20, refillRate=2, interval=1000ms, level=0
	check after 1500ms  ->  level += 1500 * 2/1000 = 3
	check after  500ms  ->  level unchanged

A bucket that is checked more often than once per interval therefore never
refills. RefillContinuous credits any positive elapsed time instead.

RateLimiter wraps one TokenBucket that starts full and rejects requests
larger than the capacity before touching the bucket:

	limiter, err := bucket.New(20, 2, bucket.Second)
	if err != nil {
		return err
	}
	if !limiter.TryConsume(1) {
		return // dropped
	}

A zero capacity makes the bucket unbounded. Intervals may be given as
milliseconds (bucket.Millis(1500)) or parsed from the names second|sec,
minute|min, hour|hr and day with ParseInterval; any other name is a
configuration error.

All types are safe for concurrent use.
*/
package bucket
