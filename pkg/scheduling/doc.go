/*
Package scheduling provides the background execution used to deliver
analytics hits.

  - workerpool: Fixed worker pool with a bounded queue
  - scheduler: Time, interval and cron based task scheduling

Worker Pool:

	pool, _ := workerpool.New(2, 64) // 2 workers, queue size 64
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		return transport.Send(ctx, values)
	})

	if err := pool.TrySubmit(ctx, task); err != nil {
		// queue full: the hit is dropped
	}

Task Scheduler:

	s, _ := scheduler.New()
	_ = s.ScheduleCron("heartbeat", "@every 1m", task)
	_ = s.Start()
	defer func() { <-s.Stop() }()
*/
package scheduling
