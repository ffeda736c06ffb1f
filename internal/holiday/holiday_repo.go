package holiday

import (
	"context"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/calendar"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, h *Holiday) error
	FindAll(ctx context.Context) ([]Holiday, error)
	Delete(ctx context.Context, id string) error
	DatesInRange(ctx context.Context, start, end time.Time) (calendar.DateSet, error)
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

func (r *repository) Create(ctx context.Context, h *Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Holiday, error) {
	var holidays []Holiday
	err := r.db.WithContext(ctx).Order("date ASC").Find(&holidays).Error
	return holidays, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Holiday{}, "id = ?", id).Error
}

// DatesInRange returns the holiday dates inside [start, end] as a
// lookup set for the business-day calculator.
func (r *repository) DatesInRange(ctx context.Context, start, end time.Time) (calendar.DateSet, error) {
	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", start, end).
		Find(&holidays).Error
	if err != nil {
		return nil, err
	}

	set := make(calendar.DateSet, len(holidays))
	for _, h := range holidays {
		set.Add(h.Date)
	}
	return set, nil
}
