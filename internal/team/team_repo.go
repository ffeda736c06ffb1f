package team

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, t *Team) error
	FindAll(ctx context.Context) ([]Team, error)
	FindByID(ctx context.Context, id string) (*Team, error)
	Update(ctx context.Context, t *Team) error
	Delete(ctx context.Context, id string) error
	DetachEmployees(ctx context.Context, teamID string) error
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

func (r *repository) Create(ctx context.Context, t *Team) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Team, error) {
	var teams []Team
	err := r.db.WithContext(ctx).Order("name ASC").Find(&teams).Error
	return teams, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Team, error) {
	var t Team
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *repository) Update(ctx context.Context, t *Team) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Team{}, "id = ?", id).Error
}

// DetachEmployees clears the team reference on employees so removing a
// team never removes its members.
func (r *repository) DetachEmployees(ctx context.Context, teamID string) error {
	return r.db.WithContext(ctx).
		Table("employees").
		Where("team_id = ?", teamID).
		Update("team_id", nil).Error
}
