package scheduler

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, job *Job) error
	ListDue(ctx context.Context, limit int) ([]Job, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkFailure(ctx context.Context, id uuid.UUID, reason string, terminal bool) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, job *Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *repository) ListDue(ctx context.Context, limit int) ([]Job, error) {
	var jobs []Job
	err := r.db.WithContext(ctx).
		Where("status = ?", JobStatusPending).
		Where("run_at <= NOW()").
		Order("run_at ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *repository) MarkDone(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     JobStatusDone,
			"last_error": "",
		}).Error
}

// MarkFailure bumps the attempt counter; when terminal the job stops
// being picked up, otherwise it is retried on the next due scan after
// a one-minute delay.
func (r *repository) MarkFailure(ctx context.Context, id uuid.UUID, reason string, terminal bool) error {
	if len(reason) > 500 {
		reason = reason[:500]
	}
	updates := map[string]interface{}{
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": reason,
		"run_at":     gorm.Expr("NOW() + INTERVAL '1 minute'"),
	}
	if terminal {
		updates["status"] = JobStatusFailed
	}
	return r.db.WithContext(ctx).
		Model(&Job{}).
		Where("id = ?", id).
		Updates(updates).Error
}
