package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vnykmshr/gatrack/pkg/common/errors"
	"github.com/vnykmshr/gatrack/pkg/metrics"
	"github.com/vnykmshr/gatrack/pkg/ratelimit/bucket"
)

// Tracker sends hits through a Transport once initialized, admitting each
// one through a rate limiter. Hits the limiter rejects are dropped.
type Tracker struct {
	limiter   bucket.Limiter
	transport Transport
	logger    *zap.Logger
	metrics   *metrics.Registry

	mu          sync.RWMutex
	info        AppInfo
	initialized bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics records sent, dropped and failed hits.
func WithMetrics(cfg metrics.Config) Option {
	return func(t *Tracker) {
		if cfg.Enabled {
			t.metrics = metrics.For(cfg)
		}
	}
}

// New creates a tracker. It must be initialized with Init before any hit is sent.
func New(limiter bucket.Limiter, transport Transport, opts ...Option) (*Tracker, error) {
	if limiter == nil {
		return nil, errors.NewValidationError("analytics", "limiter", nil, "cannot be nil").
			WithHint("use bucket.NewWithConfig(bucket.DefaultConfig())")
	}
	if transport == nil {
		return nil, errors.NewValidationError("analytics", "transport", nil, "cannot be nil")
	}

	t := &Tracker{
		limiter:   limiter,
		transport: transport,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Init sets the application identity. Only the first successful call takes
// effect; later calls return nil without changing anything.
func (t *Tracker) Init(info AppInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}
	t.info = info
	t.initialized = true
	t.logger.Info("tracker initialized",
		zap.String("tracking_id", info.TrackingID),
		zap.String("app_id", info.AppID),
		zap.String("app_version", info.AppVersion))
	return nil
}

// Initialized reports whether Init has succeeded.
func (t *Tracker) Initialized() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.initialized
}

// Info returns the application identity set by Init.
func (t *Tracker) Info() AppInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.info
}

// TrackScreenView sends a screen view hit.
func (t *Tracker) TrackScreenView(ctx context.Context, name string) error {
	return t.Track(ctx, ScreenView{Name: name})
}

// TrackEvent sends an event hit.
func (t *Tracker) TrackEvent(ctx context.Context, e Event) error {
	return t.Track(ctx, e)
}

// TrackTiming sends a timing hit.
func (t *Tracker) TrackTiming(ctx context.Context, timing Timing) error {
	return t.Track(ctx, timing)
}

// Track sends an arbitrary hit. It returns errors.ErrNotInitialized before
// Init and errors.ErrRateLimited when the limiter has no token to spare;
// in both cases nothing is sent.
func (t *Tracker) Track(ctx context.Context, h Hit) error {
	if h == nil {
		return errors.NewValidationError("analytics", "hit", nil, "cannot be nil")
	}

	t.mu.RLock()
	info, ok := t.info, t.initialized
	t.mu.RUnlock()

	if !ok {
		return errors.ErrNotInitialized
	}

	hitType := string(h.Type())
	if !t.limiter.TryConsume(1) {
		if t.metrics != nil {
			t.metrics.HitsDropped.WithLabelValues(hitType).Inc()
		}
		t.logger.Debug("hit dropped", zap.String("hit_type", hitType))
		return errors.ErrRateLimited
	}

	start := time.Now()
	err := t.transport.Send(ctx, Encode(info, h))
	if t.metrics != nil {
		t.metrics.SendDuration.WithLabelValues(hitType).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if t.metrics != nil {
			t.metrics.SendFailures.WithLabelValues(hitType).Inc()
		}
		t.logger.Warn("hit not delivered", zap.String("hit_type", hitType), zap.Error(err))
		return errors.NewOperationError("analytics", "Track", err).WithContext("hit_type=" + hitType)
	}

	if t.metrics != nil {
		t.metrics.HitsSent.WithLabelValues(hitType).Inc()
	}
	return nil
}
