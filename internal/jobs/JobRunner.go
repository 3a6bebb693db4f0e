package jobs

import (
	"Sigil/internal/logging"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// JobFn is one run of a recurring background job. The context is cancelled
// when the manager stops or the job's timeout elapses.
type JobFn func(ctx context.Context) error

type queuedJob struct {
	name             string
	run              JobFn
	interval         time.Duration
	timeout          time.Duration
	startImmediately bool

	// busy guards against overlapping runs, a tick that arrives while the
	// previous run is still going is skipped.
	busy atomic.Bool
}

type JobOption func(*queuedJob)

func WithName(name string) JobOption {
	return func(j *queuedJob) {
		j.name = name
	}
}

func WithStartImmediate() JobOption {
	return func(j *queuedJob) {
		j.startImmediately = true
	}
}

func WithTimeout(timeout time.Duration) JobOption {
	return func(j *queuedJob) {
		j.timeout = timeout
	}
}

// JobManager runs the queued jobs on their intervals, one goroutine per job.
// Jobs are queued before Start and run until Stop or context cancellation.
type JobManager interface {
	QueueJob(jobFn JobFn, interval time.Duration, opts ...JobOption)
	Start(ctx context.Context)
	Stop()
}

type ManagerOption func(*jobManager)

func WithOnError(onError func(error)) ManagerOption {
	return func(m *jobManager) {
		m.onError = onError
	}
}

type jobManager struct {
	mu      sync.Mutex
	jobs    []*queuedJob
	onError func(error)
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewJobManager(opts ...ManagerOption) JobManager {
	m := &jobManager{}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *jobManager) QueueJob(jobFn JobFn, interval time.Duration, opts ...JobOption) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		panic("queueing jobs on a started manager")
	}

	j := &queuedJob{
		name:     fmt.Sprintf("job_%d", len(m.jobs)),
		run:      jobFn,
		interval: interval,
	}

	for _, opt := range opts {
		opt(j)
	}

	if j.interval <= 0 {
		j.interval = time.Second
	}

	m.jobs = append(m.jobs, j)
}

func (m *jobManager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}
	m.started = true

	ctx, m.cancel = context.WithCancel(ctx)

	for _, j := range m.jobs {
		m.wg.Add(1)
		go m.runLoop(ctx, j)
	}
}

func (m *jobManager) runLoop(ctx context.Context, j *queuedJob) {
	defer m.wg.Done()

	if j.startImmediately {
		m.runOnce(ctx, j)
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			m.runOnce(ctx, j)
		}
	}
}

func (m *jobManager) runOnce(ctx context.Context, j *queuedJob) {
	if !j.busy.CompareAndSwap(false, true) {
		logging.Logger.Debugw("previous run still going, skipping tick", "job", j.name)
		return
	}
	defer j.busy.Store(false)

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if j.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, j.timeout)
	}
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			m.reportError(fmt.Errorf("job %s panicked: %v", j.name, r))
		}
	}()

	if err := j.run(runCtx); err != nil {
		m.reportError(fmt.Errorf("job %s: %w", j.name, err))
	}
}

func (m *jobManager) reportError(err error) {
	if m.onError != nil {
		m.onError(err)
		return
	}

	logging.Logger.Errorf("background job failed: %v", err)
}

// Stop cancels all job contexts and waits for the run loops to exit, so an
// in-flight run is finished or cancelled before Stop returns.
func (m *jobManager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	m.mu.Lock()
	m.started = false
	m.mu.Unlock()
}
