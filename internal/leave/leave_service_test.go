package leave

import (
	"context"
	"testing"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/calendar"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/events"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/holiday"
	leaveerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/leave/errors"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leavetype"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeTypeRepo struct {
	findByNameFn func(ctx context.Context, name string) (*leavetype.LeaveType, error)
	findByIDFn   func(ctx context.Context, id string) (*leavetype.LeaveType, error)
}

func (f *fakeTypeRepo) WithTx(tx *gorm.DB) leavetype.Repository { return f }
func (f *fakeTypeRepo) Create(ctx context.Context, lt *leavetype.LeaveType) error {
	return nil
}
func (f *fakeTypeRepo) FindAll(ctx context.Context) ([]leavetype.LeaveType, error) {
	return nil, nil
}
func (f *fakeTypeRepo) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeTypeRepo) FindByName(ctx context.Context, name string) (*leavetype.LeaveType, error) {
	return f.findByNameFn(ctx, name)
}
func (f *fakeTypeRepo) Update(ctx context.Context, lt *leavetype.LeaveType) error { return nil }
func (f *fakeTypeRepo) Delete(ctx context.Context, id string) error               { return nil }
func (f *fakeTypeRepo) CountRequestsReferencing(ctx context.Context, id string) (int64, error) {
	return 0, nil
}

type fakeHolidayRepo struct {
	fakeHolidays
}

func (f *fakeHolidayRepo) WithTx(tx *gorm.DB) holiday.Repository              { return f }
func (f *fakeHolidayRepo) Create(ctx context.Context, h *holiday.Holiday) error { return nil }
func (f *fakeHolidayRepo) FindAll(ctx context.Context) ([]holiday.Holiday, error) {
	return nil, nil
}
func (f *fakeHolidayRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *gorm.DB) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event *kafka.OutboxEvent) error {
	f.created = append(f.created, *event)
	return nil
}
func (f *fakeOutbox) ListDue(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return nil
}

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)
	return gdb, mock
}

func annualType() *leavetype.LeaveType {
	return &leavetype.LeaveType{ID: uuid.New(), Name: "Annual"}
}

func TestService_Create(t *testing.T) {
	gdb, mock := newTestDB(t)
	ctx := context.Background()
	emp := testEmployee(5)
	lt := annualType()

	var saved Request
	var audits []Audit
	repo := emptyValidatorRepo()
	repo.createFn = func(ctx context.Context, r *Request) error { saved = *r; return nil }
	repo.createAuditFn = func(ctx context.Context, a *Audit) error { audits = append(audits, *a); return nil }
	repo.findByIDFn = func(ctx context.Context, id uuid.UUID) (*Request, error) {
		assert.Equal(t, saved.ID, id)
		return &saved, nil
	}

	types := &fakeTypeRepo{findByNameFn: func(ctx context.Context, name string) (*leavetype.LeaveType, error) {
		assert.Equal(t, "Annual", name)
		return lt, nil
	}}
	outbox := &fakeOutbox{}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, repo, types, &fakeHolidayRepo{}, outbox, validator, testPolicy())

	mock.ExpectBegin()
	mock.ExpectCommit()
	req, err := svc.Create(ctx, CreateInput{
		Employee:      emp,
		LeaveTypeName: "Annual",
		StartDate:     date(2026, time.March, 18),
		EndDate:       date(2026, time.March, 19),
		Reason:        "family visit",
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, emp.ID, req.EmployeeID)
	assert.Equal(t, lt.ID, req.LeaveTypeID)

	if assert.Len(t, audits, 1) {
		assert.Equal(t, ActionCreated, audits[0].Action)
		assert.Equal(t, emp.ID, *audits[0].ActorID)
	}
	if assert.Len(t, outbox.created, 1) {
		ev := outbox.created[0]
		assert.Equal(t, events.LeaveRequestCreated, ev.EventType)
		assert.Equal(t, events.LeaveRequestsTopic, ev.Topic)
		assert.Equal(t, saved.ID.String(), ev.AggregateID)
		assert.Contains(t, string(ev.Payload), `"working_days":2`)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Update_AuditTrail(t *testing.T) {
	gdb, mock := newTestDB(t)
	ctx := context.Background()
	emp := testEmployee(5)
	lt := annualType()

	var saved Request
	var audits []Audit
	repo := emptyValidatorRepo()
	repo.createFn = func(ctx context.Context, r *Request) error { saved = *r; return nil }
	repo.updateFn = func(ctx context.Context, r *Request) error { saved = *r; return nil }
	repo.createAuditFn = func(ctx context.Context, a *Audit) error { audits = append(audits, *a); return nil }
	repo.findByIDFn = func(ctx context.Context, id uuid.UUID) (*Request, error) { return &saved, nil }
	repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*Request, error) {
		locked := saved
		return &locked, nil
	}

	types := &fakeTypeRepo{findByNameFn: func(ctx context.Context, name string) (*leavetype.LeaveType, error) {
		return lt, nil
	}}
	outbox := &fakeOutbox{}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, repo, types, &fakeHolidayRepo{}, outbox, validator, testPolicy())

	mock.ExpectBegin()
	mock.ExpectCommit()
	created, err := svc.Create(ctx, CreateInput{
		Employee:      emp,
		LeaveTypeName: "Annual",
		StartDate:     date(2026, time.March, 18),
		EndDate:       date(2026, time.March, 19),
		Reason:        "family visit",
	})
	assert.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "employees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slack_user_id", "name", "email", "monthly_leave_allowance"}).
			AddRow(emp.ID.String(), emp.SlackUserID, emp.Name, "asha@example.com", 5))
	mock.ExpectCommit()
	updated, err := svc.Update(ctx, created.ID, UpdateInput{
		LeaveTypeName: "Annual",
		StartDate:     date(2026, time.March, 19),
		EndDate:       date(2026, time.March, 20),
		Reason:        "family visit, moved a day",
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, updated.Status)
	assert.Equal(t, date(2026, time.March, 19), updated.StartDate)
	assert.Equal(t, date(2026, time.March, 20), updated.EndDate)

	// One audit row per transition, in order.
	if assert.Len(t, audits, 2) {
		assert.Equal(t, ActionCreated, audits[0].Action)
		assert.Equal(t, ActionUpdated, audits[1].Action)
		assert.Equal(t, created.ID, audits[1].RequestID)
		assert.Equal(t, emp.ID, *audits[1].ActorID)
	}
	if assert.Len(t, outbox.created, 2) {
		assert.Equal(t, events.LeaveRequestUpdated, outbox.created[1].EventType)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_UnknownLeaveType(t *testing.T) {
	gdb, mock := newTestDB(t)

	types := &fakeTypeRepo{findByNameFn: func(ctx context.Context, name string) (*leavetype.LeaveType, error) {
		return nil, gorm.ErrRecordNotFound
	}}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, emptyValidatorRepo(), types, &fakeHolidayRepo{}, &fakeOutbox{}, validator, testPolicy())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Create(context.Background(), CreateInput{
		Employee:      testEmployee(2),
		LeaveTypeName: "Sabbatical",
		StartDate:     date(2026, time.March, 18),
		EndDate:       date(2026, time.March, 18),
	})
	assert.ErrorIs(t, err, leaveerrors.ErrLeaveTypeUnknown)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_ValidationFailureRollsBack(t *testing.T) {
	gdb, mock := newTestDB(t)
	lt := annualType()

	created := false
	repo := emptyValidatorRepo()
	repo.createFn = func(ctx context.Context, r *Request) error { created = true; return nil }
	repo.hasOverlappingFn = func(ctx context.Context, employeeID uuid.UUID, start, end time.Time, statuses []string, excludeID *uuid.UUID) (bool, error) {
		return true, nil
	}
	types := &fakeTypeRepo{findByNameFn: func(ctx context.Context, name string) (*leavetype.LeaveType, error) {
		return lt, nil
	}}
	outbox := &fakeOutbox{}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, repo, types, &fakeHolidayRepo{}, outbox, validator, testPolicy())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Create(context.Background(), CreateInput{
		Employee:      testEmployee(2),
		LeaveTypeName: "Annual",
		StartDate:     date(2026, time.March, 18),
		EndDate:       date(2026, time.March, 18),
	})
	assert.ErrorIs(t, err, leaveerrors.ErrOverlap)
	assert.False(t, created)
	assert.Empty(t, outbox.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Decide_AlreadyActioned(t *testing.T) {
	gdb, mock := newTestDB(t)
	requestID := uuid.New()

	repo := emptyValidatorRepo()
	repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*Request, error) {
		return &Request{ID: id, Status: StatusApproved}, nil
	}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, repo, &fakeTypeRepo{}, &fakeHolidayRepo{}, &fakeOutbox{}, validator, testPolicy())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Decide(context.Background(), requestID, testEmployee(2), false)
	assert.ErrorIs(t, err, leaveerrors.ErrAlreadyActioned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Cancel_NotFound(t *testing.T) {
	gdb, mock := newTestDB(t)

	repo := emptyValidatorRepo()
	repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*Request, error) {
		return nil, gorm.ErrRecordNotFound
	}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, repo, &fakeTypeRepo{}, &fakeHolidayRepo{}, &fakeOutbox{}, validator, testPolicy())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Cancel(context.Background(), uuid.New())
	assert.ErrorIs(t, err, leaveerrors.ErrRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Decide_Approves(t *testing.T) {
	gdb, mock := newTestDB(t)
	requestID := uuid.New()
	emp := testEmployee(5)
	approver := testEmployee(5)
	lt := annualType()

	var updated Request
	var audits []Audit
	repo := emptyValidatorRepo()
	repo.findByIDForUpdateFn = func(ctx context.Context, id uuid.UUID) (*Request, error) {
		return &Request{
			ID:          id,
			EmployeeID:  emp.ID,
			LeaveTypeID: lt.ID,
			StartDate:   date(2026, time.March, 18),
			EndDate:     date(2026, time.March, 19),
			Status:      StatusPending,
		}, nil
	}
	repo.updateFn = func(ctx context.Context, r *Request) error { updated = *r; return nil }
	repo.createAuditFn = func(ctx context.Context, a *Audit) error { audits = append(audits, *a); return nil }
	repo.findByIDFn = func(ctx context.Context, id uuid.UUID) (*Request, error) { return &updated, nil }

	types := &fakeTypeRepo{findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
		assert.Equal(t, lt.ID.String(), id)
		return lt, nil
	}}
	outbox := &fakeOutbox{}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, repo, types, &fakeHolidayRepo{}, outbox, validator, testPolicy())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "employees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slack_user_id", "name", "email", "monthly_leave_allowance"}).
			AddRow(emp.ID.String(), emp.SlackUserID, emp.Name, "asha@example.com", 5))
	mock.ExpectCommit()

	req, err := svc.Decide(context.Background(), requestID, approver, true)
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, req.Status)
	assert.Equal(t, approver.ID, *req.ApproverID)

	if assert.Len(t, audits, 1) {
		assert.Equal(t, ActionApproved, audits[0].Action)
		assert.Equal(t, approver.ID, *audits[0].ActorID)
	}
	if assert.Len(t, outbox.created, 1) {
		assert.Equal(t, events.LeaveRequestApproved, outbox.created[0].EventType)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ListOverlappingActive(t *testing.T) {
	gdb, _ := newTestDB(t)
	employeeID := uuid.New()
	editing := uuid.New()

	inRange := Request{ID: uuid.New(), StartDate: date(2026, time.March, 18), EndDate: date(2026, time.March, 19)}
	boundary := Request{ID: uuid.New(), StartDate: date(2026, time.March, 20), EndDate: date(2026, time.March, 20)}
	outside := Request{ID: uuid.New(), StartDate: date(2026, time.March, 23), EndDate: date(2026, time.March, 24)}
	self := Request{ID: editing, StartDate: date(2026, time.March, 18), EndDate: date(2026, time.March, 18)}

	repo := emptyValidatorRepo()
	repo.listByStatusesFn = func(ctx context.Context, id uuid.UUID, statuses []string) ([]Request, error) {
		assert.Equal(t, employeeID, id)
		assert.ElementsMatch(t, []string{StatusPending, StatusApproved}, statuses)
		return []Request{inRange, boundary, outside, self}, nil
	}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, repo, &fakeTypeRepo{}, &fakeHolidayRepo{}, &fakeOutbox{}, validator, testPolicy())

	got, err := svc.ListOverlappingActive(context.Background(), employeeID,
		date(2026, time.March, 17), date(2026, time.March, 20), &editing)
	assert.NoError(t, err)
	if assert.Len(t, got, 2) {
		assert.Equal(t, inRange.ID, got[0].ID)
		assert.Equal(t, boundary.ID, got[1].ID)
	}
}

func TestService_MonthOverview(t *testing.T) {
	gdb, _ := newTestDB(t)
	emp := testEmployee(4)

	repo := emptyValidatorRepo()
	repo.listStartingInMonthFn = func(ctx context.Context, employeeID uuid.UUID, year int, month time.Month, statuses []string, excludeID *uuid.UUID) ([]Request, error) {
		return []Request{
			{StartDate: date(2026, time.March, 18), EndDate: date(2026, time.March, 19), Status: StatusApproved},
			{StartDate: date(2026, time.March, 23), EndDate: date(2026, time.March, 23), Status: StatusPending},
		}, nil
	}
	holidays := &fakeHolidayRepo{}
	holidays.datesInRangeFn = func(ctx context.Context, start, end time.Time) (calendar.DateSet, error) {
		return calendar.DateSet{}, nil
	}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, repo, &fakeTypeRepo{}, holidays, &fakeOutbox{}, validator, testPolicy())

	overview, err := svc.MonthOverview(context.Background(), emp, 2026, time.March)
	assert.NoError(t, err)
	assert.Equal(t, 4, overview.Allowance)
	assert.Equal(t, 3, overview.DaysTaken)
	assert.Equal(t, 1, overview.Remaining)
	assert.Len(t, overview.Requests, 2)
}

func TestService_AttachMessageHandle_WriteOnce(t *testing.T) {
	gdb, _ := newTestDB(t)
	requestID := uuid.New()

	attached := false
	repo := emptyValidatorRepo()
	repo.setMessageHandleFn = func(ctx context.Context, id uuid.UUID, channelID, ts string) (bool, error) {
		if attached {
			return false, nil
		}
		attached = true
		return true, nil
	}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, repo, &fakeTypeRepo{}, &fakeHolidayRepo{}, &fakeOutbox{}, validator, testPolicy())

	ok, err := svc.AttachMessageHandle(context.Background(), requestID, "C1", "111.222")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.AttachMessageHandle(context.Background(), requestID, "C2", "333.444")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_ListAudit_NewestFirst(t *testing.T) {
	gdb, mock := newTestDB(t)
	repo := NewRepository(gdb)
	requestID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "leave_request_audits" WHERE request_id = \$1 ORDER BY created_at DESC`).
		WithArgs(requestID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "action"}).
			AddRow(uuid.New().String(), requestID.String(), ActionUpdated).
			AddRow(uuid.New().String(), requestID.String(), ActionCreated))

	rows, err := repo.ListAudit(context.Background(), requestID)
	assert.NoError(t, err)
	if assert.Len(t, rows, 2) {
		assert.Equal(t, ActionUpdated, rows[0].Action)
		assert.Equal(t, ActionCreated, rows[1].Action)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetByID_NotFound(t *testing.T) {
	gdb, _ := newTestDB(t)

	repo := emptyValidatorRepo()
	repo.findByIDFn = func(ctx context.Context, id uuid.UUID) (*Request, error) {
		return nil, gorm.ErrRecordNotFound
	}
	validator := NewValidator(testPolicy(), func() time.Time { return testToday })
	svc := NewService(gdb, repo, &fakeTypeRepo{}, &fakeHolidayRepo{}, &fakeOutbox{}, validator, testPolicy())

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, leaveerrors.ErrRequestNotFound)
}
