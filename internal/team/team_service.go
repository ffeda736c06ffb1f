package team

import (
	"context"
	"errors"

	teamerrors "github.com/R-M-Tejaswini/slack-leave-app/internal/team/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateTeamRequest) (TeamResponse, error)
	GetAll(ctx context.Context) ([]TeamResponse, error)
	GetByID(ctx context.Context, id string) (TeamResponse, error)
	Update(ctx context.Context, id string, req UpdateTeamRequest) (TeamResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("team.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("team.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateTeamRequest) (TeamResponse, error) {
	t := &Team{
		ID:             uuid.New(),
		Name:           req.Name,
		SlackChannelID: req.SlackChannelID,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		if isUniqueViolation(err) {
			return TeamResponse{}, teamerrors.ErrTeamNameTaken
		}
		s.logger.Error("create team failed", zap.Error(err))
		return TeamResponse{}, err
	}
	s.logger.Info("team created", zap.String("team_id", t.ID.String()), zap.String("name", t.Name))
	return mapToResponse(*t), nil
}

func (s *service) GetAll(ctx context.Context) ([]TeamResponse, error) {
	teams, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]TeamResponse, len(teams))
	for i, t := range teams {
		resp[i] = mapToResponse(t)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (TeamResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TeamResponse{}, teamerrors.ErrInvalidTeamID
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TeamResponse{}, teamerrors.ErrTeamNotFound
		}
		return TeamResponse{}, err
	}
	return mapToResponse(*t), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateTeamRequest) (TeamResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TeamResponse{}, teamerrors.ErrInvalidTeamID
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TeamResponse{}, teamerrors.ErrTeamNotFound
		}
		return TeamResponse{}, err
	}

	t.Name = req.Name
	t.SlackChannelID = req.SlackChannelID
	if err := s.repo.Update(ctx, t); err != nil {
		if isUniqueViolation(err) {
			return TeamResponse{}, teamerrors.ErrTeamNameTaken
		}
		return TeamResponse{}, err
	}
	return mapToResponse(*t), nil
}

// Delete detaches every member before removing the team, in one
// transaction, so employee rows survive team removal.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return teamerrors.ErrInvalidTeamID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		if err := qtx.DetachEmployees(ctx, id); err != nil {
			return err
		}
		return qtx.Delete(ctx, id)
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToResponse(t Team) TeamResponse {
	return TeamResponse{
		ID:             t.ID.String(),
		Name:           t.Name,
		SlackChannelID: t.SlackChannelID,
	}
}
