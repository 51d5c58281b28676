package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/gatrack/pkg/common/validation"
	"github.com/vnykmshr/gatrack/pkg/metrics"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task with the given context.
	// It should respect context cancellation and return any error encountered.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Result represents the result of a task execution.
type Result struct {
	// Task is the original task that was executed
	Task Task

	// Error is any error that occurred during task execution
	Error error

	// Duration is how long the task took to execute
	Duration time.Duration

	// WorkerID identifies which worker executed the task
	WorkerID int
}

// Pool runs tasks on a fixed set of workers fed by a bounded queue.
type Pool interface {
	// Submit queues a task, blocking while the queue is full until ctx is
	// done or the pool shuts down. ctx only bounds queuing; the task runs
	// with the context it was submitted with.
	Submit(ctx context.Context, task Task) error

	// TrySubmit queues a task without blocking. It returns an error
	// wrapping errors.ErrCapacityExceeded when the queue is full.
	TrySubmit(ctx context.Context, task Task) error

	// Shutdown stops accepting tasks and runs everything already queued.
	// The returned channel closes once all workers have exited.
	Shutdown() <-chan struct{}

	// Size returns the number of workers in the pool.
	Size() int

	// QueueSize returns the current number of queued tasks waiting for execution.
	QueueSize() int

	// ActiveWorkers returns the number of workers currently executing tasks.
	ActiveWorkers() int

	// TotalSubmitted returns the total number of tasks accepted by the pool.
	TotalSubmitted() int64

	// TotalCompleted returns the total number of tasks completed by the pool.
	TotalCompleted() int64
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// WorkerCount is the number of workers in the pool.
	// Must be greater than 0.
	WorkerCount int

	// QueueSize is the maximum number of tasks that can wait for a worker.
	// Zero means a task is only accepted when a worker is ready for it.
	QueueSize int

	// TaskTimeout bounds each task execution. Zero means no timeout.
	TaskTimeout time.Duration

	// PanicHandler is called when a task panics. The panic is always
	// recovered and reported as the task error.
	PanicHandler func(task Task, recovered interface{})

	// OnTaskComplete is called after a task completes (success or failure).
	OnTaskComplete func(workerID int, result Result)

	// Name labels the pool's metrics.
	Name string

	// Metrics enables the active worker and queue depth gauges.
	Metrics metrics.Config
}

type queuedTask struct {
	task Task
	ctx  context.Context
}

// workerPool implements the Pool interface.
type workerPool struct {
	config Config

	taskQueue    chan queuedTask
	shutdownCh   chan struct{}
	drainCh      chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	mu         sync.RWMutex
	isShutdown bool

	activeWorkers  atomic.Int64
	totalSubmitted atomic.Int64
	totalCompleted atomic.Int64

	workerWg sync.WaitGroup
	gauges   *poolGauges
}

// New creates a new worker pool with the specified number of workers and queue size.
func New(workerCount, queueSize int) (Pool, error) {
	return NewWithConfig(Config{
		WorkerCount: workerCount,
		QueueSize:   queueSize,
	})
}

// NewWithConfig creates a new worker pool with the specified configuration.
func NewWithConfig(config Config) (Pool, error) {
	if err := validation.ValidatePositive("workerpool", "workers", config.WorkerCount); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegative("workerpool", "queue_size", float64(config.QueueSize)); err != nil {
		return nil, err
	}
	if config.Name == "" {
		config.Name = "default"
	}

	pool := &workerPool{
		config:     config,
		taskQueue:  make(chan queuedTask, config.QueueSize),
		shutdownCh: make(chan struct{}),
		drainCh:    make(chan struct{}),
		done:       make(chan struct{}),
		gauges:     newPoolGauges(config.Name, config.Metrics),
	}

	for i := 0; i < config.WorkerCount; i++ {
		pool.workerWg.Add(1)
		go pool.run(i)
	}

	return pool, nil
}
