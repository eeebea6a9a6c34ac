package cron

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrJobNotFound = errors.New("job not found")

// JobStatus represents the last known state of a job.
type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusFulfill JobStatus = "fulfill"
	StatusReject  JobStatus = "reject"
)

// Job defines a scheduled background task.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

// JobState holds runtime state for a registered job.
type JobState struct {
	Job
	Status    JobStatus
	Message   string
	LastRunAt *time.Time
	NextRunAt time.Time
	mu        sync.Mutex
}

// ListItem is the serializable representation of a job for the API.
type ListItem struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      JobStatus  `json:"status"`
	Interval    string     `json:"interval"`
	NextDate    *time.Time `json:"nextDate"`
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// TaskResult is returned when polling task execution status.
type TaskResult struct {
	Status  JobStatus `json:"status"`
	Message string    `json:"message,omitempty"`
}

type Option func(*Scheduler)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger.Named("CronService")
		}
	}
}

// Scheduler manages a collection of named interval jobs.
type Scheduler struct {
	mu     sync.RWMutex
	jobs   map[string]*JobState
	logger *zap.Logger
	wg     sync.WaitGroup
}

// New creates an empty Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:   make(map[string]*JobState),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a job to the scheduler. Must be called before Start.
// Jobs with a non-positive interval are ignored.
func (s *Scheduler) Register(job Job) {
	if job.Interval <= 0 || job.Fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &JobState{
		Job:       job,
		Status:    StatusIdle,
		NextRunAt: time.Now().Add(job.Interval),
	}
}

// Start launches all registered jobs in background goroutines. They stop when
// ctx is cancelled; Wait blocks until they have.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, js := range s.jobs {
		s.wg.Add(1)
		go func(js *JobState) {
			defer s.wg.Done()
			s.runLoop(ctx, js)
		}(js)
	}
}

// Wait blocks until every loop started by Start has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) runLoop(ctx context.Context, js *JobState) {
	for {
		js.mu.Lock()
		wait := time.Until(js.NextRunAt)
		js.mu.Unlock()
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.execute(ctx, js)
			js.mu.Lock()
			js.NextRunAt = time.Now().Add(js.Interval)
			js.mu.Unlock()
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, js *JobState) {
	js.mu.Lock()
	if js.Status == StatusRunning {
		js.mu.Unlock()
		return
	}
	js.Status = StatusRunning
	js.mu.Unlock()

	now := time.Now()
	err := js.Fn(ctx)

	js.mu.Lock()
	js.LastRunAt = &now
	if err != nil {
		js.Status = StatusReject
		js.Message = err.Error()
	} else {
		js.Status = StatusFulfill
		js.Message = ""
	}
	js.mu.Unlock()

	if err != nil {
		s.logger.Warn("job failed", zap.String("job", js.Name), zap.Error(err))
		return
	}
	s.logger.Debug("job finished", zap.String("job", js.Name), zap.Duration("took", time.Since(now)))
}

// Run triggers a job by name without waiting for it. The job runs detached
// from ctx so it outlives the triggering request.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	js, err := s.lookup(name)
	if err != nil {
		return err
	}
	go s.execute(context.WithoutCancel(ctx), js)
	return nil
}

// RunSync runs a job by name and returns its error.
func (s *Scheduler) RunSync(ctx context.Context, name string) error {
	js, err := s.lookup(name)
	if err != nil {
		return err
	}
	s.execute(ctx, js)
	js.mu.Lock()
	defer js.mu.Unlock()
	if js.Status == StatusReject {
		return errors.New(js.Message)
	}
	return nil
}

// GetTask returns the current execution state of a job.
func (s *Scheduler) GetTask(name string) (*TaskResult, error) {
	js, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	js.mu.Lock()
	defer js.mu.Unlock()
	return &TaskResult{Status: js.Status, Message: js.Message}, nil
}

// List returns a summary of all registered jobs sorted by name.
func (s *Scheduler) List() []ListItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ListItem, 0, len(s.jobs))
	for _, js := range s.jobs {
		js.mu.Lock()
		next := js.NextRunAt
		items = append(items, ListItem{
			Name:        js.Name,
			Description: js.Description,
			Status:      js.Status,
			Interval:    js.Interval.String(),
			NextDate:    &next,
			LastRunAt:   js.LastRunAt,
			Message:     js.Message,
		})
		js.mu.Unlock()
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

func (s *Scheduler) lookup(name string) (*JobState, error) {
	s.mu.RLock()
	js, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}
	return js, nil
}
