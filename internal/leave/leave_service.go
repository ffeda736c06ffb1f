package leave

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/R-M-Tejaswini/slack-leave-app/internal/calendar"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/config"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/employee"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/events"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/holiday"
	leaveerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/leave/errors"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/leavetype"
	"github.com/R-M-Tejaswini/slack-leave-app/internal/messaging/kafka"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Request, error)
	Update(ctx context.Context, requestID uuid.UUID, input UpdateInput) (*Request, error)
	Cancel(ctx context.Context, requestID uuid.UUID) (*Request, error)
	Decide(ctx context.Context, requestID uuid.UUID, approver *employee.Employee, approve bool) (*Request, error)
	AttachMessageHandle(ctx context.Context, requestID uuid.UUID, channelID, ts string) (bool, error)
	GetByID(ctx context.Context, requestID uuid.UUID) (*Request, error)
	ListPendingByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Request, error)
	ListOverlappingActive(ctx context.Context, employeeID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]Request, error)
	MonthOverview(ctx context.Context, emp *employee.Employee, year int, month time.Month) (*MonthOverview, error)
	ApprovedInRange(ctx context.Context, start, end time.Time) ([]Request, error)
	DurationDays(ctx context.Context, r *Request) (int, error)
	History(ctx context.Context, requestID uuid.UUID) ([]Audit, error)
}

type service struct {
	db        *gorm.DB
	repo      Repository
	types     leavetype.Repository
	holidays  holiday.Repository
	outbox    kafka.OutboxRepository
	validator *Validator
	policy    config.LeavePolicy
	logger    *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	types leavetype.Repository,
	holidays holiday.Repository,
	outbox kafka.OutboxRepository,
	validator *Validator,
	policy config.LeavePolicy,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		types:     types,
		holidays:  holidays,
		outbox:    outbox,
		validator: validator,
		policy:    policy,
		logger:    l,
	}
}

// Create validates and persists a new pending request. The request
// row, its audit entry and the outbox event commit atomically; Slack
// delivery happens later, off the back of the committed state.
func (s *service) Create(ctx context.Context, input CreateInput) (*Request, error) {
	emp := input.Employee
	var id uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		lt, err := s.types.WithTx(tx).FindByName(ctx, input.LeaveTypeName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrLeaveTypeUnknown
			}
			return err
		}

		days, err := s.validator.Validate(ctx, qtx, s.holidays.WithTx(tx), emp, lt.Name, input.StartDate, input.EndDate, nil)
		if err != nil {
			return err
		}

		req := &Request{
			ID:          uuid.New(),
			EmployeeID:  emp.ID,
			LeaveTypeID: lt.ID,
			StartDate:   dateOnly(input.StartDate),
			EndDate:     dateOnly(input.EndDate),
			Reason:      input.Reason,
			Status:      StatusPending,
		}
		if err := qtx.Create(ctx, req); err != nil {
			return err
		}
		if err := qtx.CreateAudit(ctx, &Audit{
			ID:        uuid.New(),
			RequestID: req.ID,
			Action:    ActionCreated,
			ActorID:   &emp.ID,
		}); err != nil {
			return err
		}
		id = req.ID
		return s.enqueueEvent(ctx, tx, req, emp, lt.Name, events.LeaveRequestCreated, days)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave request created",
		zap.String("request_id", id.String()),
		zap.String("employee_id", emp.ID.String()),
	)
	return s.repo.FindByID(ctx, id)
}

// Update replaces the dates, type and reason of a pending request. The
// row is locked first, so an update can never race a decision: one of
// the two commits, the other sees a non-pending row and fails.
func (s *service) Update(ctx context.Context, requestID uuid.UUID, input UpdateInput) (*Request, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		req, err := s.lockPending(ctx, qtx, requestID)
		if err != nil {
			return err
		}
		emp, err := s.loadEmployee(ctx, tx, req.EmployeeID)
		if err != nil {
			return err
		}

		lt, err := s.types.WithTx(tx).FindByName(ctx, input.LeaveTypeName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrLeaveTypeUnknown
			}
			return err
		}

		days, err := s.validator.Validate(ctx, qtx, s.holidays.WithTx(tx), emp, lt.Name, input.StartDate, input.EndDate, &req.ID)
		if err != nil {
			return err
		}

		req.LeaveTypeID = lt.ID
		req.StartDate = dateOnly(input.StartDate)
		req.EndDate = dateOnly(input.EndDate)
		req.Reason = input.Reason
		if err := qtx.Update(ctx, req); err != nil {
			return err
		}
		if err := qtx.CreateAudit(ctx, &Audit{
			ID:        uuid.New(),
			RequestID: req.ID,
			Action:    ActionUpdated,
			ActorID:   &req.EmployeeID,
		}); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, req, emp, lt.Name, events.LeaveRequestUpdated, days)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, requestID)
}

// Cancel moves a pending request to cancelled on behalf of its owner.
func (s *service) Cancel(ctx context.Context, requestID uuid.UUID) (*Request, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		req, err := s.lockPending(ctx, qtx, requestID)
		if err != nil {
			return err
		}
		emp, err := s.loadEmployee(ctx, tx, req.EmployeeID)
		if err != nil {
			return err
		}

		req.Status = StatusCancelled
		if err := qtx.Update(ctx, req); err != nil {
			return err
		}
		if err := qtx.CreateAudit(ctx, &Audit{
			ID:        uuid.New(),
			RequestID: req.ID,
			Action:    ActionCancelled,
			ActorID:   &req.EmployeeID,
		}); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, req, emp, "", events.LeaveRequestCancelled, 0)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, requestID)
}

// Decide resolves a pending request. Losing a decide race returns the
// already-actioned conflict rather than silently flipping the status a
// second time.
func (s *service) Decide(ctx context.Context, requestID uuid.UUID, approver *employee.Employee, approve bool) (*Request, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		req, err := s.lockPending(ctx, qtx, requestID)
		if err != nil {
			return err
		}
		emp, err := s.loadEmployee(ctx, tx, req.EmployeeID)
		if err != nil {
			return err
		}

		action := ActionRejected
		eventType := events.LeaveRequestRejected
		req.Status = StatusRejected
		if approve {
			action = ActionApproved
			eventType = events.LeaveRequestApproved
			req.Status = StatusApproved
		}
		req.ApproverID = &approver.ID
		if err := qtx.Update(ctx, req); err != nil {
			return err
		}
		if err := qtx.CreateAudit(ctx, &Audit{
			ID:        uuid.New(),
			RequestID: req.ID,
			Action:    action,
			ActorID:   &approver.ID,
		}); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, req, emp, "", eventType, 0)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave request decided",
		zap.String("request_id", requestID.String()),
		zap.Bool("approved", approve),
		zap.String("approver_id", approver.ID.String()),
	)
	return s.repo.FindByID(ctx, requestID)
}

// AttachMessageHandle records the Slack location of the approval
// prompt. It reports false when a handle was already attached.
func (s *service) AttachMessageHandle(ctx context.Context, requestID uuid.UUID, channelID, ts string) (bool, error) {
	return s.repo.SetMessageHandle(ctx, requestID, channelID, ts)
}

func (s *service) GetByID(ctx context.Context, requestID uuid.UUID) (*Request, error) {
	req, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

func (s *service) ListPendingByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Request, error) {
	return s.repo.ListPendingByEmployee(ctx, employeeID)
}

// ListOverlappingActive returns the employee's pending and approved
// requests that intersect [start, end], for the manager's side-by-side
// view of a clashing request.
func (s *service) ListOverlappingActive(ctx context.Context, employeeID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]Request, error) {
	active, err := s.repo.ListByEmployeeAndStatuses(ctx, employeeID, []string{StatusPending, StatusApproved})
	if err != nil {
		return nil, err
	}
	start, end = dateOnly(start), dateOnly(end)
	out := make([]Request, 0, len(active))
	for _, r := range active {
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		if !r.StartDate.After(end) && !r.EndDate.Before(start) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *service) MonthOverview(ctx context.Context, emp *employee.Employee, year int, month time.Month) (*MonthOverview, error) {
	active := []string{StatusPending, StatusApproved}
	requests, err := s.repo.ListStartingInMonth(ctx, emp.ID, year, month, active, nil)
	if err != nil {
		return nil, err
	}

	taken := 0
	if len(requests) > 0 {
		spanStart, spanEnd := requests[0].StartDate, requests[0].EndDate
		for _, r := range requests[1:] {
			if r.StartDate.Before(spanStart) {
				spanStart = r.StartDate
			}
			if r.EndDate.After(spanEnd) {
				spanEnd = r.EndDate
			}
		}
		set, err := s.holidays.DatesInRange(ctx, spanStart, spanEnd)
		if err != nil {
			return nil, err
		}
		for _, r := range requests {
			taken += calendar.BusinessDays(r.StartDate, r.EndDate, set)
		}
	}

	return &MonthOverview{
		Year:      year,
		Month:     month,
		Requests:  requests,
		Allowance: emp.MonthlyLeaveAllowance,
		DaysTaken: taken,
		Remaining: emp.MonthlyLeaveAllowance - taken,
	}, nil
}

func (s *service) ApprovedInRange(ctx context.Context, start, end time.Time) ([]Request, error) {
	return s.repo.ListApprovedOverlappingRange(ctx, dateOnly(start), dateOnly(end))
}

// DurationDays derives the working-day cost of a request from the
// current holiday table.
func (s *service) DurationDays(ctx context.Context, r *Request) (int, error) {
	set, err := s.holidays.DatesInRange(ctx, r.StartDate, r.EndDate)
	if err != nil {
		return 0, err
	}
	return calendar.BusinessDays(r.StartDate, r.EndDate, set), nil
}

func (s *service) History(ctx context.Context, requestID uuid.UUID) ([]Audit, error) {
	return s.repo.ListAudit(ctx, requestID)
}

// lockPending loads the row under a FOR UPDATE lock and enforces the
// single legal precondition of every mutation: the request is pending.
func (s *service) lockPending(ctx context.Context, qtx Repository, requestID uuid.UUID) (*Request, error) {
	req, err := qtx.FindByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrRequestNotFound
		}
		return nil, err
	}
	if req.Terminal() {
		return nil, leaveerrors.ErrAlreadyActioned
	}
	return req, nil
}

func (s *service) loadEmployee(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) (*employee.Employee, error) {
	var emp employee.Employee
	err := tx.WithContext(ctx).
		Preload("Team").
		First(&emp, "id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// enqueueEvent writes the lifecycle event to the outbox inside the
// caller's transaction. An empty leaveTypeName or zero days means the
// value was not at hand; both are looked up so every event is complete.
func (s *service) enqueueEvent(ctx context.Context, tx *gorm.DB, req *Request, emp *employee.Employee, leaveTypeName, eventType string, days int) error {
	if leaveTypeName == "" {
		lt, err := s.types.WithTx(tx).FindByID(ctx, req.LeaveTypeID.String())
		if err != nil {
			return err
		}
		leaveTypeName = lt.Name
	}
	if days == 0 {
		set, err := s.holidays.WithTx(tx).DatesInRange(ctx, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		days = calendar.BusinessDays(req.StartDate, req.EndDate, set)
	}

	ev := events.LeaveRequestEvent{
		EventType:     eventType,
		RequestID:     req.ID.String(),
		EmployeeID:    emp.ID.String(),
		EmployeeName:  emp.Name,
		SlackUserID:   emp.SlackUserID,
		LeaveType:     leaveTypeName,
		Retrospective: s.policy.IsRetrospective(leaveTypeName),
		StartDate:     req.StartDate.Format("2006-01-02"),
		EndDate:       req.EndDate.Format("2006-01-02"),
		WorkingDays:   days,
		Status:        req.Status,
		OccurredAt:    time.Now().UTC(),
	}
	if emp.Team != nil {
		ev.TeamChannelID = emp.Team.SlackChannelID
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, &kafka.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "leave_request",
		AggregateID:   req.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveRequestsTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}
