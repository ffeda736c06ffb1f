package employee

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindBySlackUserID(ctx context.Context, slackUserID string) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id string) error
	DetachReports(ctx context.Context, managerID string) error
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

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Preload("Team").
		Order("name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Preload("Team").
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindBySlackUserID(ctx context.Context, slackUserID string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Preload("Team").
		First(&e, "slack_user_id = ?", slackUserID).Error
	return &e, err
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Employee{}, "id = ?", id).Error
}

// DetachReports clears the manager reference on direct reports, so a
// manager's departure never cascades to their team.
func (r *repository) DetachReports(ctx context.Context, managerID string) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("manager_id = ?", managerID).
		Update("manager_id", nil).Error
}
