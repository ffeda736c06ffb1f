package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scheduler enqueues a callback to run after a delay. Implementations
// must persist the job so it survives process restarts.
type Scheduler interface {
	Schedule(ctx context.Context, callbackID string, payload []byte, delay time.Duration) (uuid.UUID, error)
}

// Callback handles one due job. Returning an error retries the job
// until the attempt budget runs out, so callbacks must be idempotent.
type Callback func(ctx context.Context, payload []byte) error

type Store struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewStore(db *gorm.DB, now func() time.Time, logger ...*zap.Logger) *Store {
	l := zap.L().Named("scheduler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("scheduler")
	}
	if now == nil {
		now = time.Now
	}
	return &Store{repo: NewRepository(db), now: now, logger: l}
}

func (s *Store) Schedule(ctx context.Context, callbackID string, payload []byte, delay time.Duration) (uuid.UUID, error) {
	job := &Job{
		ID:         uuid.New(),
		CallbackID: callbackID,
		Payload:    payload,
		RunAt:      s.now().Add(delay),
		Status:     JobStatusPending,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return uuid.Nil, err
	}
	s.logger.Info("job scheduled",
		zap.String("job_id", job.ID.String()),
		zap.String("callback_id", callbackID),
		zap.Time("run_at", job.RunAt),
	)
	return job.ID, nil
}

// Runner polls for due jobs and dispatches them to registered
// callbacks. Register everything before calling Run.
type Runner struct {
	repo      Repository
	callbacks map[string]Callback
	logger    *zap.Logger
}

func NewRunner(db *gorm.DB, logger ...*zap.Logger) *Runner {
	l := zap.L().Named("scheduler.runner")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("scheduler.runner")
	}
	return &Runner{
		repo:      NewRepository(db),
		callbacks: make(map[string]Callback),
		logger:    l,
	}
}

func (r *Runner) Register(callbackID string, cb Callback) {
	r.callbacks[callbackID] = cb
}

func (r *Runner) Run(ctx context.Context, pollInterval time.Duration) {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	r.logger.Info("scheduler runner started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scheduler runner stopped")
			return
		case <-ticker.C:
			if err := r.processDueJobs(ctx); err != nil {
				r.logger.Error("process due jobs failed", zap.Error(err))
			}
		}
	}
}

func (r *Runner) processDueJobs(ctx context.Context) error {
	jobs, err := r.repo.ListDue(ctx, 50)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		r.runJob(ctx, job)
	}
	return nil
}

func (r *Runner) runJob(ctx context.Context, job Job) {
	cb, ok := r.callbacks[job.CallbackID]
	if !ok {
		err := fmt.Errorf("no callback registered for %q", job.CallbackID)
		r.logger.Error("job dropped", zap.String("job_id", job.ID.String()), zap.Error(err))
		_ = r.repo.MarkFailure(ctx, job.ID, err.Error(), true)
		return
	}

	if err := cb(ctx, job.Payload); err != nil {
		terminal := job.Attempts+1 >= maxAttempts
		r.logger.Warn("job attempt failed",
			zap.String("job_id", job.ID.String()),
			zap.String("callback_id", job.CallbackID),
			zap.Int("attempt", job.Attempts+1),
			zap.Bool("terminal", terminal),
			zap.Error(err),
		)
		_ = r.repo.MarkFailure(ctx, job.ID, err.Error(), terminal)
		return
	}

	if err := r.repo.MarkDone(ctx, job.ID); err != nil {
		r.logger.Error("mark job done failed", zap.String("job_id", job.ID.String()), zap.Error(err))
		return
	}
	r.logger.Info("job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("callback_id", job.CallbackID),
	)
}
