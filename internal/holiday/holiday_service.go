package holiday

import (
	"context"
	"errors"
	"time"

	holidayerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/holiday/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	GetAll(ctx context.Context) ([]HolidayResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return HolidayResponse{}, holidayerrors.ErrInvalidDateFormat
	}

	h := &Holiday{
		ID:   uuid.New(),
		Name: req.Name,
		Date: date,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return HolidayResponse{}, holidayerrors.ErrHolidayDateTaken
		}
		s.logger.Error("create holiday failed", zap.Error(err))
		return HolidayResponse{}, err
	}
	return mapToResponse(*h), nil
}

func (s *service) GetAll(ctx context.Context) ([]HolidayResponse, error) {
	holidays, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		resp[i] = mapToResponse(h)
	}
	return resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return holidayerrors.ErrInvalidHolidayID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return holidayerrors.ErrHolidayNotFound
		}
		return err
	}
	return nil
}

func mapToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:   h.ID.String(),
		Name: h.Name,
		Date: h.Date.Format("2006-01-02"),
	}
}
