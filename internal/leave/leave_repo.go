package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, r *Request) error
	Update(ctx context.Context, r *Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*Request, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Request, error)
	SetMessageHandle(ctx context.Context, id uuid.UUID, channelID, ts string) (bool, error)
	ListPendingByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Request, error)
	ListByEmployeeAndStatuses(ctx context.Context, employeeID uuid.UUID, statuses []string) ([]Request, error)
	HasOverlapping(ctx context.Context, employeeID uuid.UUID, start, end time.Time, statuses []string, excludeID *uuid.UUID) (bool, error)
	ListStartingInMonth(ctx context.Context, employeeID uuid.UUID, year int, month time.Month, statuses []string, excludeID *uuid.UUID) ([]Request, error)
	ListApprovedOverlappingRange(ctx context.Context, start, end time.Time) ([]Request, error)
	CreateAudit(ctx context.Context, a *Audit) error
	ListAudit(ctx context.Context, requestID uuid.UUID) ([]Audit, error)
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

func (r *repository) Create(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) Update(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("Employee.Manager").
		Preload("Employee.Team").
		Preload("LeaveType").
		Preload("Approver").
		First(&req, "id = ?", id).Error
	return &req, err
}

// FindByIDForUpdate takes a row lock so concurrent decisions on the
// same request serialize; the loser of the race sees the new status.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	return &req, err
}

// SetMessageHandle records where the approval prompt landed. The handle
// is write-once: a second delivery attempt for the same request must
// not clobber the message the manager is already looking at.
func (r *repository) SetMessageHandle(ctx context.Context, id uuid.UUID, channelID, ts string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Request{}).
		Where("id = ? AND (slack_message_ts IS NULL OR slack_message_ts = '')", id).
		Updates(map[string]interface{}{
			"slack_channel_id": channelID,
			"slack_message_ts": ts,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ListPendingByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Request, error) {
	return r.ListByEmployeeAndStatuses(ctx, employeeID, []string{StatusPending})
}

func (r *repository) ListByEmployeeAndStatuses(ctx context.Context, employeeID uuid.UUID, statuses []string) ([]Request, error) {
	var requests []Request
	q := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("employee_id = ?", employeeID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Order("start_date ASC").Find(&requests).Error
	return requests, err
}

// HasOverlapping treats ranges as inclusive on both ends, so two
// requests sharing a single boundary day do overlap.
func (r *repository) HasOverlapping(ctx context.Context, employeeID uuid.UUID, start, end time.Time, statuses []string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&Request{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", statuses).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// ListStartingInMonth scopes by the month of the start date, which is
// the month a request's working days are charged against.
func (r *repository) ListStartingInMonth(ctx context.Context, employeeID uuid.UUID, year int, month time.Month, statuses []string, excludeID *uuid.UUID) ([]Request, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var requests []Request
	q := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("employee_id = ?", employeeID).
		Where("start_date >= ? AND start_date < ?", from, to)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Order("start_date ASC").Find(&requests).Error
	return requests, err
}

func (r *repository) ListApprovedOverlappingRange(ctx context.Context, start, end time.Time) ([]Request, error) {
	var requests []Request
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("LeaveType").
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Order("start_date ASC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) CreateAudit(ctx context.Context, a *Audit) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) ListAudit(ctx context.Context, requestID uuid.UUID) ([]Audit, error) {
	var rows []Audit
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
