package employee

import (
	"context"
	"errors"
	"fmt"

	employeeerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/employee/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultMonthlyAllowance = 2

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error

	// EnsureBySlackID provisions an employee record the first time a
	// Slack user interacts with the bot.
	EnsureBySlackID(ctx context.Context, slackUserID, name string) (*Employee, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	managerID, teamID, allowance, err := s.resolveRefs(req.ManagerID, req.TeamID, req.MonthlyLeaveAllowance, nil)
	if err != nil {
		return EmployeeResponse{}, err
	}

	e := &Employee{
		ID:                    uuid.New(),
		SlackUserID:           req.SlackUserID,
		Name:                  req.Name,
		Email:                 req.Email,
		ManagerID:             managerID,
		TeamID:                teamID,
		MonthlyLeaveAllowance: allowance,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		if isUniqueViolation(err) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeExists
		}
		s.logger.Error("create employee failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	s.logger.Info("employee created",
		zap.String("employee_id", e.ID.String()),
		zap.String("slack_user_id", e.SlackUserID),
	)
	return mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, err
	}

	managerID, teamID, allowance, err := s.resolveRefs(req.ManagerID, req.TeamID, req.MonthlyLeaveAllowance, &e.ID)
	if err != nil {
		return EmployeeResponse{}, err
	}

	e.Name = req.Name
	e.Email = req.Email
	e.ManagerID = managerID
	e.TeamID = teamID
	e.MonthlyLeaveAllowance = allowance
	e.Manager = nil
	e.Team = nil

	if err := s.repo.Update(ctx, e); err != nil {
		if isUniqueViolation(err) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeExists
		}
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

// Delete removes an employee and nulls the manager reference on their
// reports in the same transaction.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		if err := qtx.DetachReports(ctx, id); err != nil {
			return err
		}
		return qtx.Delete(ctx, id)
	})
}

func (s *service) EnsureBySlackID(ctx context.Context, slackUserID, name string) (*Employee, error) {
	e, err := s.repo.FindBySlackUserID(ctx, slackUserID)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	e = &Employee{
		ID:                    uuid.New(),
		SlackUserID:           slackUserID,
		Name:                  name,
		Email:                 fmt.Sprintf("%s@slackuser.com", slackUserID),
		MonthlyLeaveAllowance: defaultMonthlyAllowance,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent first interaction.
			return s.repo.FindBySlackUserID(ctx, slackUserID)
		}
		return nil, err
	}
	s.logger.Info("employee provisioned from slack",
		zap.String("employee_id", e.ID.String()),
		zap.String("slack_user_id", slackUserID),
	)
	return e, nil
}

func (s *service) resolveRefs(managerID, teamID *string, allowance *int, selfID *uuid.UUID) (*uuid.UUID, *uuid.UUID, int, error) {
	var mgr, tm *uuid.UUID
	if managerID != nil && *managerID != "" {
		id, err := uuid.Parse(*managerID)
		if err != nil {
			return nil, nil, 0, employeeerrors.ErrInvalidManagerID
		}
		if selfID != nil && id == *selfID {
			return nil, nil, 0, employeeerrors.ErrSelfManager
		}
		mgr = &id
	}
	if teamID != nil && *teamID != "" {
		id, err := uuid.Parse(*teamID)
		if err != nil {
			return nil, nil, 0, employeeerrors.ErrInvalidTeamID
		}
		tm = &id
	}

	days := defaultMonthlyAllowance
	if allowance != nil {
		if *allowance < 0 {
			return nil, nil, 0, employeeerrors.ErrInvalidAllowance
		}
		days = *allowance
	}
	return mgr, tm, days, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:                    e.ID.String(),
		SlackUserID:           e.SlackUserID,
		Name:                  e.Name,
		Email:                 e.Email,
		MonthlyLeaveAllowance: e.MonthlyLeaveAllowance,
	}
	if e.ManagerID != nil {
		v := e.ManagerID.String()
		resp.ManagerID = &v
	}
	if e.Manager != nil {
		resp.ManagerName = &e.Manager.Name
	}
	if e.TeamID != nil {
		v := e.TeamID.String()
		resp.TeamID = &v
	}
	if e.Team != nil {
		resp.TeamName = &e.Team.Name
	}
	return resp
}
