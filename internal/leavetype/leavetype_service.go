package leavetype

import (
	"context"
	"errors"

	leavetypeerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/leavetype/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db      *gorm.DB
	repo    Repository
	catalog *Catalog
	logger  *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, catalog *Catalog, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{db: db, repo: repo, catalog: catalog, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	lt := &LeaveType{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, lt); err != nil {
		if isUniqueViolation(err) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNameTaken
		}
		s.logger.Error("create leave type failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	s.invalidateCatalog(ctx)
	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveTypeResponse, error) {
	types, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveTypeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}
	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}
	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}

	lt.Name = req.Name
	lt.Description = req.Description
	if err := s.repo.Update(ctx, lt); err != nil {
		if isUniqueViolation(err) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNameTaken
		}
		return LeaveTypeResponse{}, err
	}
	s.invalidateCatalog(ctx)
	return mapToResponse(*lt), nil
}

// Delete refuses to remove a leave type while any request references it
// (protect-on-delete), checked and deleted in one transaction.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leavetypeerrors.ErrInvalidLeaveTypeID
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		count, err := qtx.CountRequestsReferencing(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return leavetypeerrors.ErrLeaveTypeInUse
		}
		return qtx.Delete(ctx, id)
	})
	if err == nil {
		s.invalidateCatalog(ctx)
	}
	return err
}

func (s *service) invalidateCatalog(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate leave type catalog failed", zap.Error(err))
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:          lt.ID.String(),
		Name:        lt.Name,
		Description: lt.Description,
	}
}
