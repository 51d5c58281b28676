package analytics_test

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vnykmshr/gatrack/pkg/analytics"
	"github.com/vnykmshr/gatrack/pkg/ratelimit/bucket"
)

func Example() {
	limiter, _ := bucket.NewWithConfig(bucket.DefaultConfig())

	printer := analytics.TransportFunc(func(ctx context.Context, v url.Values) error {
		fmt.Println(v.Get("t"), v.Get("cd"))
		return nil
	})

	tracker, _ := analytics.New(limiter, printer)
	_ = tracker.Init(analytics.AppInfo{
		TrackingID: "UA-XXXX-1",
		ClientID:   "35009a79-1a05-49d7-b876-2b884d0f825b",
		AppName:    "Example",
	})

	_ = tracker.TrackScreenView(context.Background(), "home")
	// Output: screenview home
}

func ExampleTracker_Track_rateLimited() {
	limiter, _ := bucket.New(2, 1, bucket.Hour)
	tracker, _ := analytics.New(limiter, analytics.TransportFunc(func(context.Context, url.Values) error {
		return nil
	}))
	_ = tracker.Init(analytics.AppInfo{TrackingID: "UA-XXXX-1", ClientID: "cid"})

	for i := 0; i < 3; i++ {
		err := tracker.TrackEvent(context.Background(), analytics.Event{Action: "tap", Category: "mobile"})
		fmt.Println(err)
	}
	// Output:
	// <nil>
	// <nil>
	// rate limited
}
