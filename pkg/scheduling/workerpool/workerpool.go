package workerpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	gfcontext "github.com/vnykmshr/gatrack/pkg/common/context"
	"github.com/vnykmshr/gatrack/pkg/common/errors"
)

// Submit queues a task, blocking while the queue is full.
func (p *workerPool) Submit(ctx context.Context, task Task) error {
	return p.submit(ctx, task, true)
}

// TrySubmit queues a task without blocking.
func (p *workerPool) TrySubmit(ctx context.Context, task Task) error {
	return p.submit(ctx, task, false)
}

func (p *workerPool) submit(ctx context.Context, task Task, block bool) error {
	if task == nil {
		return errors.NewValidationError("workerpool", "task", nil, "cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.isShutdown {
		return errors.NewOperationError("workerpool", "Submit", errors.ErrClosed)
	}

	// Check if context is already canceled before attempting to queue
	if gfcontext.IsCanceled(ctx) {
		return errors.NewOperationError("workerpool", "Submit", ctx.Err())
	}

	qt := queuedTask{task: task, ctx: ctx}

	if !block {
		select {
		case p.taskQueue <- qt:
			p.accepted()
			return nil
		default:
			return errors.NewOperationError("workerpool", "Submit", errors.ErrCapacityExceeded).
				WithContext(fmt.Sprintf("queue size %d", p.config.QueueSize))
		}
	}

	select {
	case p.taskQueue <- qt:
		p.accepted()
		return nil
	case <-p.shutdownCh:
		return errors.NewOperationError("workerpool", "Submit", errors.ErrClosed)
	case <-ctx.Done():
		return errors.NewOperationError("workerpool", "Submit", ctx.Err())
	}
}

func (p *workerPool) accepted() {
	p.totalSubmitted.Add(1)
	p.gauges.queued(len(p.taskQueue))
}

// Shutdown initiates a graceful shutdown of the pool.
func (p *workerPool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		// unblock waiting submitters before taking the write lock
		close(p.shutdownCh)

		p.mu.Lock()
		p.isShutdown = true
		p.mu.Unlock()

		// no submitter can enqueue from here on
		close(p.drainCh)

		go func() {
			p.workerWg.Wait()
			p.gauges.queued(0)
			close(p.done)
		}()
	})

	return p.done
}

// Size returns the number of workers in the pool.
func (p *workerPool) Size() int {
	return p.config.WorkerCount
}

// QueueSize returns the current number of queued tasks waiting for execution.
func (p *workerPool) QueueSize() int {
	return len(p.taskQueue)
}

// ActiveWorkers returns the number of workers currently executing tasks.
func (p *workerPool) ActiveWorkers() int {
	return int(p.activeWorkers.Load())
}

// TotalSubmitted returns the total number of tasks accepted by the pool.
func (p *workerPool) TotalSubmitted() int64 {
	return p.totalSubmitted.Load()
}

// TotalCompleted returns the total number of tasks completed by the pool.
func (p *workerPool) TotalCompleted() int64 {
	return p.totalCompleted.Load()
}

// run is the main loop for a worker.
func (p *workerPool) run(id int) {
	defer p.workerWg.Done()

	for {
		select {
		case qt := <-p.taskQueue:
			p.executeTask(id, qt)
		case <-p.drainCh:
			for {
				select {
				case qt := <-p.taskQueue:
					p.executeTask(id, qt)
				default:
					return
				}
			}
		}
	}
}

// executeTask executes a single task with the provided context.
func (p *workerPool) executeTask(id int, qt queuedTask) {
	p.gauges.active(p.activeWorkers.Add(1))
	p.gauges.queued(len(p.taskQueue))

	start := time.Now()
	var err error

	// Handle panics during task execution
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v\nStack trace:\n%s", r, debug.Stack())
			if p.config.PanicHandler != nil {
				p.config.PanicHandler(qt.task, r)
			}
		}

		p.totalCompleted.Add(1)
		p.gauges.active(p.activeWorkers.Add(-1))

		if p.config.OnTaskComplete != nil {
			p.config.OnTaskComplete(id, Result{
				Task:     qt.task,
				Error:    err,
				Duration: time.Since(start),
				WorkerID: id,
			})
		}
	}()

	ctx, cancel := gfcontext.WithOptionalTimeout(qt.ctx, p.config.TaskTimeout)
	defer cancel()

	err = qt.task.Execute(ctx)
}
