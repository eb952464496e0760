package repository

import (
	"context"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

// ListSessionQuery holds parameters for listing review sessions.
type ListSessionQuery struct {
	Pagination

	LearnerID string
}

// SessionRepository stores immutable review session summaries.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.ReviewSession) (*entity.ReviewSession, error)
	List(ctx context.Context, query *ListSessionQuery) ([]entity.ReviewSession, int64, error)
}
