package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/repository"
)

// SessionUsecase records study session summaries.
type SessionUsecase interface {
	RecordSession(ctx context.Context, session *entity.ReviewSession) (*entity.ReviewSession, error)
	ListSessions(ctx context.Context, query *repository.ListSessionQuery) ([]entity.ReviewSession, int64, error)
}

// NewSessionUsecase wires the session store with default behaviour.
func NewSessionUsecase(repo repository.SessionRepository) SessionUsecase {
	return &sessionUsecase{
		repo:  repo,
		clock: time.Now,
		newID: uuid.NewString,
	}
}

type sessionUsecase struct {
	repo  repository.SessionRepository
	clock func() time.Time
	newID func() string
}

func (u *sessionUsecase) RecordSession(ctx context.Context, session *entity.ReviewSession) (*entity.ReviewSession, error) {
	if session == nil {
		return nil, entity.ErrInvalidSession
	}
	record := *session
	if err := record.Normalize(u.clock()); err != nil {
		return nil, err
	}
	if record.ID == "" {
		record.ID = u.newID()
	} else if _, err := uuid.Parse(record.ID); err != nil {
		return nil, entity.ErrInvalidSession
	}
	return u.repo.Create(ctx, &record)
}

func (u *sessionUsecase) ListSessions(ctx context.Context, query *repository.ListSessionQuery) ([]entity.ReviewSession, int64, error) {
	if query == nil {
		return nil, 0, entity.ErrInvalidLearnerID
	}
	learnerID, err := normalizeLearnerID(query.LearnerID)
	if err != nil {
		return nil, 0, err
	}
	query.LearnerID = learnerID
	return u.repo.List(ctx, query)
}
