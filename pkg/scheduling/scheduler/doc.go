/*
Package scheduler runs tasks at a fixed time, at a fixed interval or on a
cron schedule. Due tasks are handed to a workerpool.Pool without blocking;
a run that finds the pool full is skipped and logged, never queued twice.

	s, _ := scheduler.New()
	_ = s.ScheduleCron("heartbeat", "@every 1m", workerpool.TaskFunc(func(ctx context.Context) error {
		return tracker.TrackScreenView(ctx, "heartbeat")
	}))
	_ = s.Start()
	defer func() { <-s.Stop() }()

Cron expressions use the standard five fields (minute hour dom month dow)
and the descriptors understood by github.com/robfig/cron/v3, including
"@every <duration>".
*/
package scheduler
