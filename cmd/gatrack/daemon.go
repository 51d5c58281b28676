package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vnykmshr/gatrack/internal/config"
	"github.com/vnykmshr/gatrack/pkg/analytics"
	"github.com/vnykmshr/gatrack/pkg/analytics/clientid"
	gferrors "github.com/vnykmshr/gatrack/pkg/common/errors"
	"github.com/vnykmshr/gatrack/pkg/metrics"
	"github.com/vnykmshr/gatrack/pkg/ratelimit/bucket"
	"github.com/vnykmshr/gatrack/pkg/scheduling/scheduler"
	"github.com/vnykmshr/gatrack/pkg/scheduling/workerpool"
)

const shutdownTimeout = 10 * time.Second

type daemon struct {
	cfg     *config.Config
	logger  *zap.Logger
	tracker *analytics.Tracker
	async   *analytics.AsyncTransport
	sched   scheduler.Scheduler
	server  *http.Server
	redis   *redis.Client
}

func newDaemon(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*daemon, error) {
	d := &daemon{cfg: cfg, logger: logger}

	mc := metrics.Disabled()
	if cfg.Metrics.Enabled {
		mc = metrics.Config{Enabled: true, Registry: prometheus.DefaultRegisterer}
	}

	store, err := d.clientStore()
	if err != nil {
		return nil, err
	}
	cid, err := clientid.Resolve(ctx, store, cfg.DeviceID)
	if err != nil {
		d.close()
		return nil, err
	}

	bc, err := cfg.BucketConfig()
	if err != nil {
		d.close()
		return nil, err
	}
	limiter, err := bucket.NewWithMetrics(bc, "hits", mc)
	if err != nil {
		d.close()
		return nil, err
	}

	d.async, err = analytics.NewAsyncTransport(
		analytics.NewHTTPTransport(cfg.Endpoint, cfg.Dispatch.Timeout),
		analytics.AsyncConfig{
			Workers:   cfg.Dispatch.Workers,
			QueueSize: cfg.Dispatch.Queue,
			Logger:    logger,
			Metrics:   mc,
		})
	if err != nil {
		d.close()
		return nil, err
	}

	d.tracker, err = analytics.New(limiter, d.async, analytics.WithLogger(logger), analytics.WithMetrics(mc))
	if err != nil {
		d.close()
		return nil, err
	}
	if err := d.tracker.Init(cfg.AppInfo(cid)); err != nil {
		d.close()
		return nil, err
	}

	if err := d.scheduleHeartbeat(); err != nil {
		_ = d.async.Close(ctx)
		d.close()
		return nil, err
	}

	d.server = &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           newMux(d.tracker, d.async, cfg.Metrics.Enabled),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return d, nil
}

func (d *daemon) clientStore() (clientid.Store, error) {
	switch d.cfg.ClientID.Store {
	case config.StoreMemory:
		return clientid.NewMemoryStore(), nil
	case config.StoreRedis:
		d.redis = redis.NewClient(&redis.Options{Addr: d.cfg.ClientID.RedisAddr})
		return clientid.NewRedisStore(d.redis, d.cfg.ClientID.RedisKey, d.cfg.ClientID.RedisTTL)
	default:
		return clientid.NewFileStore(d.cfg.ClientIDPath())
	}
}

func (d *daemon) scheduleHeartbeat() error {
	if d.cfg.Heartbeat.Schedule == "" {
		return nil
	}
	s, err := scheduler.NewWithConfig(scheduler.Config{Logger: d.logger})
	if err != nil {
		return err
	}
	screen := d.cfg.Heartbeat.Screen
	err = s.ScheduleCron("heartbeat", d.cfg.Heartbeat.Schedule, workerpool.TaskFunc(func(ctx context.Context) error {
		if err := d.tracker.TrackScreenView(ctx, screen); err != nil && !errors.Is(err, gferrors.ErrRateLimited) {
			d.logger.Warn("heartbeat failed", zap.Error(err))
			return err
		}
		return nil
	}))
	if err != nil {
		<-s.Stop()
		return err
	}
	if err := s.Start(); err != nil {
		<-s.Stop()
		return err
	}
	d.sched = s
	return nil
}

// serve runs the HTTP listener until ctx is done, then drains everything.
func (d *daemon) serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("listening", zap.String("addr", d.server.Addr))
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		d.logger.Info("shutting down")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("http shutdown", zap.Error(err))
	}
	if d.sched != nil {
		<-d.sched.Stop()
	}
	if err := d.async.Close(shutdownCtx); err != nil {
		d.logger.Warn("undelivered hits", zap.Int("pending", d.async.Pending()), zap.Error(err))
	}
	d.close()
	return serveErr
}

func (d *daemon) close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

func newMux(t *analytics.Tracker, async *analytics.AsyncTransport, withMetrics bool) *http.ServeMux {
	h := &handlers{tracker: t, async: async}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("POST /track/screen", h.screen)
	mux.HandleFunc("POST /track/event", h.event)
	mux.HandleFunc("POST /track/timing", h.timing)
	if withMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}
