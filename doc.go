/*
Package gatrack forwards application analytics hits to Google Analytics,
rate limited on the client so a misbehaving caller cannot exceed the
Measurement Protocol quotas.

Rate Limiting (pkg/ratelimit):
  - bucket: Token bucket with lazy, quantized refill and an optional
    continuous policy

Analytics (pkg/analytics):
  - Tracker: screen views, events and timings, admitted one token each
  - HTTPTransport and AsyncTransport: delivery to the collect endpoint
  - Middleware: records HTTP requests as events
  - clientid: persistent client ids in memory, a file or Redis

Task Scheduling (pkg/scheduling):
  - workerpool: Background hit delivery
  - scheduler: Cron and interval based heartbeats

Example usage:

	import (
		"github.com/vnykmshr/gatrack/pkg/analytics"
		"github.com/vnykmshr/gatrack/pkg/ratelimit/bucket"
	)

	limiter, _ := bucket.NewWithConfig(bucket.DefaultConfig()) // burst 20, 2 per second
	tracker, _ := analytics.New(limiter, analytics.NewHTTPTransport(analytics.DefaultEndpoint, 5*time.Second))
	_ = tracker.Init(analytics.AppInfo{TrackingID: "UA-XXXX-1", ClientID: cid})

	_ = tracker.TrackScreenView(ctx, "home")

The gatrack command (cmd/gatrack) runs the same stack as a daemon
configured from YAML.
*/
package gatrack
