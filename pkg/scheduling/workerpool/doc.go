/*
Package workerpool runs tasks on a fixed number of goroutines fed by a
bounded queue. gatrack uses it to deliver analytics hits off the caller's
goroutine.

Basic usage:

	pool, err := workerpool.New(2, 64) // 2 workers, queue size 64
	if err != nil {
		return err
	}
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		return transport.Send(ctx, hit)
	})

	if err := pool.TrySubmit(ctx, task); err != nil {
		// queue full or pool closed: the hit is dropped
	}

Results are reported through Config.OnTaskComplete rather than a channel,
so an unattended pool never blocks on undelivered results:

	pool, _ := workerpool.NewWithConfig(workerpool.Config{
		WorkerCount: 2,
		QueueSize:   64,
		TaskTimeout: 5 * time.Second,
		OnTaskComplete: func(workerID int, r workerpool.Result) {
			if r.Error != nil {
				logger.Warn("delivery failed", zap.Error(r.Error))
			}
		},
	})

Submit blocks while the queue is full; TrySubmit fails fast with an error
wrapping errors.ErrCapacityExceeded. Shutdown stops accepting work, runs
everything already queued and closes the returned channel when every worker
has exited. Panicking tasks are recovered and reported as errors.

With Config.Metrics enabled the pool publishes
gatrack_workerpool_active_workers and gatrack_workerpool_queued_tasks
labelled by Config.Name.
*/
package workerpool
