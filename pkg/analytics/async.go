package analytics

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	gfcontext "github.com/vnykmshr/gatrack/pkg/common/context"
	"github.com/vnykmshr/gatrack/pkg/common/errors"
	"github.com/vnykmshr/gatrack/pkg/metrics"
	"github.com/vnykmshr/gatrack/pkg/scheduling/workerpool"
)

// AsyncConfig configures an AsyncTransport.
type AsyncConfig struct {
	// Workers is the number of concurrent senders. Defaults to 2.
	Workers int

	// QueueSize is the number of hits that may wait for a sender. Hits
	// beyond it are dropped. Defaults to 64.
	QueueSize int

	// Timeout bounds each delivery. Zero means no timeout.
	Timeout time.Duration

	Logger  *zap.Logger
	Metrics metrics.Config
}

// AsyncTransport hands hits to a worker pool and returns without waiting
// for delivery. Delivery failures are logged and counted, never retried.
type AsyncTransport struct {
	next    Transport
	pool    workerpool.Pool
	logger  *zap.Logger
	metrics *metrics.Registry
}

type sendTask struct {
	next   Transport
	values url.Values
}

func (s *sendTask) Execute(ctx context.Context) error {
	return s.next.Send(ctx, s.values)
}

// NewAsyncTransport wraps next with a bounded dispatch queue.
func NewAsyncTransport(next Transport, cfg AsyncConfig) (*AsyncTransport, error) {
	if next == nil {
		return nil, errors.NewValidationError("analytics", "transport", nil, "cannot be nil")
	}
	if cfg.Workers == 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	at := &AsyncTransport{next: next, logger: cfg.Logger}
	if cfg.Metrics.Enabled {
		at.metrics = metrics.For(cfg.Metrics)
	}

	pool, err := workerpool.NewWithConfig(workerpool.Config{
		WorkerCount:    cfg.Workers,
		QueueSize:      cfg.QueueSize,
		TaskTimeout:    cfg.Timeout,
		Name:           "dispatch",
		Metrics:        cfg.Metrics,
		OnTaskComplete: at.completed,
		PanicHandler: func(task workerpool.Task, recovered interface{}) {
			at.logger.Error("transport panicked", zap.Any("panic", recovered))
		},
	})
	if err != nil {
		return nil, err
	}
	at.pool = pool
	return at, nil
}

// Send queues values for delivery. The caller's cancellation does not
// reach the queued delivery. A full queue returns an error wrapping
// errors.ErrCapacityExceeded.
func (at *AsyncTransport) Send(ctx context.Context, values url.Values) error {
	return at.pool.TrySubmit(gfcontext.Detach(ctx), &sendTask{next: at.next, values: values})
}

// Pending returns the number of hits waiting for a sender.
func (at *AsyncTransport) Pending() int {
	return at.pool.QueueSize()
}

// Close stops accepting hits and waits for queued ones to be delivered or
// for ctx to be done.
func (at *AsyncTransport) Close(ctx context.Context) error {
	select {
	case <-at.pool.Shutdown():
		return nil
	case <-ctx.Done():
		return errors.NewOperationError("analytics", "Close", ctx.Err()).
			WithContext("hits still queued")
	}
}

func (at *AsyncTransport) completed(_ int, result workerpool.Result) {
	if result.Error == nil {
		return
	}
	hitType := "unknown"
	if st, ok := result.Task.(*sendTask); ok && st.values.Get("t") != "" {
		hitType = st.values.Get("t")
	}
	if at.metrics != nil {
		at.metrics.SendFailures.WithLabelValues(hitType).Inc()
	}
	at.logger.Warn("async delivery failed",
		zap.String("hit_type", hitType),
		zap.Duration("duration", result.Duration),
		zap.Error(result.Error))
}
