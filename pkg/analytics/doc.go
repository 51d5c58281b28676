/*
Package analytics sends Google Analytics Measurement Protocol hits from
server side or application code, rate limited on the client.

A Tracker admits every hit through a bucket.Limiter before handing it to a
Transport. When the limiter has no token left the hit is dropped and
ErrRateLimited is returned; callers that fire and forget may ignore it.

Basic usage:

	limiter, _ := bucket.NewWithConfig(bucket.DefaultConfig())
	tracker, _ := analytics.New(limiter, analytics.NewHTTPTransport(analytics.DefaultEndpoint, 5*time.Second))
	_ = tracker.Init(analytics.AppInfo{
		TrackingID: "UA-XXXX-1",
		ClientID:   cid,
		AppID:      "com.example.app",
		AppName:    "Example",
		AppVersion: "1.0",
	})

	_ = tracker.TrackScreenView(ctx, "home")
	_ = tracker.TrackEvent(ctx, analytics.Event{Action: "click", Category: "mobile"})

Hits are sent synchronously by HTTPTransport. Wrap it in an AsyncTransport
to deliver from a bounded worker pool instead:

	async, _ := analytics.NewAsyncTransport(httpTransport, analytics.AsyncConfig{Workers: 2, QueueSize: 64})
	defer async.Close(ctx)

Middleware records each incoming HTTP request as an event, with the
category "mobile", the lowercased method as action and the path as label
unless a Binding says otherwise.

The default limiter admits a burst of 20 hits and then 2 per second.
*/
package analytics
