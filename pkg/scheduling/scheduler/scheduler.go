package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vnykmshr/gatrack/pkg/common/errors"
	"github.com/vnykmshr/gatrack/pkg/common/validation"
	"github.com/vnykmshr/gatrack/pkg/scheduling/workerpool"
)

// Entry describes a scheduled task.
type Entry struct {
	ID       string
	RunAt    time.Time
	Interval time.Duration // Zero for one-time and cron tasks
	Spec     string        // Cron expression, if any
	Created  time.Time
}

// Scheduler runs tasks at fixed times, fixed intervals or on cron
// schedules, handing each run to a worker pool.
type Scheduler interface {
	Schedule(id string, task workerpool.Task, runAt time.Time) error
	ScheduleRepeating(id string, task workerpool.Task, interval time.Duration) error

	// ScheduleCron accepts standard five field expressions and descriptors
	// such as "@hourly" or "@every 1m".
	ScheduleCron(id string, spec string, task workerpool.Task) error

	Cancel(id string) bool
	List() []Entry

	Start() error
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	// WorkerPool runs due tasks. If nil the scheduler owns a single worker
	// pool and shuts it down on Stop.
	WorkerPool workerpool.Pool

	Location     *time.Location // For cron scheduling (default: time.Local)
	TickInterval time.Duration  // How often to check for due tasks (default: 50ms)
	MaxTasks     int            // Maximum number of scheduled tasks (default: 1000)

	Logger *zap.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

type scheduledTask struct {
	id       string
	task     workerpool.Task
	runAt    time.Time
	interval time.Duration
	spec     string
	schedule cron.Schedule
	created  time.Time
}

type scheduler struct {
	pool         workerpool.Pool
	ownPool      bool
	location     *time.Location
	tickInterval time.Duration
	maxTasks     int
	logger       *zap.Logger
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	tasks   map[string]*scheduledTask
	running bool
	stopped bool
	loop    sync.WaitGroup
	done    chan struct{}
}

// New creates a scheduler with default configuration.
func New() (Scheduler, error) {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) (Scheduler, error) {
	pool := cfg.WorkerPool
	ownPool := false
	if pool == nil {
		p, err := workerpool.NewWithConfig(workerpool.Config{WorkerCount: 1, QueueSize: 16, Name: "scheduler"})
		if err != nil {
			return nil, err
		}
		pool = p
		ownPool = true
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 50 * time.Millisecond
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = 1000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &scheduler{
		pool:         pool,
		ownPool:      ownPool,
		location:     cfg.Location,
		tickInterval: cfg.TickInterval,
		maxTasks:     cfg.MaxTasks,
		logger:       cfg.Logger,
		now:          cfg.Now,
		ctx:          ctx,
		cancel:       cancel,
		tasks:        make(map[string]*scheduledTask),
		done:         make(chan struct{}),
	}, nil
}

func (s *scheduler) Schedule(id string, task workerpool.Task, runAt time.Time) error {
	if runAt.IsZero() {
		return errors.NewValidationError("scheduler", "run_at", runAt, "cannot be zero")
	}
	return s.add(&scheduledTask{id: id, task: task, runAt: runAt})
}

func (s *scheduler) ScheduleRepeating(id string, task workerpool.Task, interval time.Duration) error {
	if interval <= 0 {
		return errors.NewValidationError("scheduler", "interval", interval, "must be positive")
	}
	return s.add(&scheduledTask{id: id, task: task, runAt: s.now().Add(interval), interval: interval})
}

func (s *scheduler) ScheduleCron(id string, spec string, task workerpool.Task) error {
	if err := validation.ValidateNotEmpty("scheduler", "spec", spec); err != nil {
		return err
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return errors.NewValidationError("scheduler", "spec", spec, err.Error())
	}
	return s.add(&scheduledTask{
		id:       id,
		task:     task,
		runAt:    schedule.Next(s.now().In(s.location)),
		spec:     spec,
		schedule: schedule,
	})
}

func (s *scheduler) add(st *scheduledTask) error {
	if err := validation.ValidateNotEmpty("scheduler", "id", st.id); err != nil {
		return err
	}
	if st.task == nil {
		return errors.NewValidationError("scheduler", "task", nil, "cannot be nil")
	}
	st.created = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return errors.NewOperationError("scheduler", "Schedule", errors.ErrClosed)
	}
	if _, exists := s.tasks[st.id]; exists {
		return errors.NewValidationError("scheduler", "id", st.id, "already scheduled").
			WithHint("cancel the existing task first")
	}
	if len(s.tasks) >= s.maxTasks {
		return errors.NewOperationError("scheduler", "Schedule", errors.ErrCapacityExceeded).
			WithContext("max tasks reached")
	}
	s.tasks[st.id] = st
	return nil
}

func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; exists {
		delete(s.tasks, id)
		return true
	}
	return false
}

func (s *scheduler) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.tasks))
	for _, t := range s.tasks {
		entries = append(entries, Entry{
			ID:       t.id,
			RunAt:    t.runAt,
			Interval: t.interval,
			Spec:     t.spec,
			Created:  t.created,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RunAt.Before(entries[j].RunAt)
	})
	return entries
}

func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return errors.NewOperationError("scheduler", "Start", errors.ErrClosed)
	}
	if s.running {
		return errors.NewOperationError("scheduler", "Start", errors.ErrInvalidConfiguration).
			WithContext("already running")
	}
	s.running = true

	s.loop.Add(1)
	go s.run()
	return nil
}

// Stop halts scheduling and cancels the context passed to running tasks.
// The returned channel closes once the loop has exited and, for an owned
// pool, in-flight tasks have finished.
func (s *scheduler) Stop() <-chan struct{} {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return s.done
	}
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	go func() {
		s.loop.Wait()
		if s.ownPool {
			<-s.pool.Shutdown()
		}
		close(s.done)
	}()
	return s.done
}

func (s *scheduler) run() {
	defer s.loop.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.dispatchDue()
		}
	}
}

func (s *scheduler) dispatchDue() {
	now := s.now()

	s.mu.Lock()
	due := make([]*scheduledTask, 0, len(s.tasks))
	for id, t := range s.tasks {
		if now.Before(t.runAt) {
			continue
		}
		due = append(due, t)

		switch {
		case t.interval > 0:
			t.runAt = now.Add(t.interval)
		case t.schedule != nil:
			t.runAt = t.schedule.Next(now.In(s.location))
		default:
			delete(s.tasks, id)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		if err := s.pool.TrySubmit(s.ctx, t.task); err != nil {
			s.logger.Warn("scheduled run skipped", zap.String("task", t.id), zap.Error(err))
		}
	}
}
