package repository

import (
	"context"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

// ListProgressQuery holds parameters for listing a learner's progress records.
type ListProgressQuery struct {
	Pagination
	FilterOrder

	LearnerID string
}

// ProgressRepository persists review state keyed by (learner, item).
type ProgressRepository interface {
	Get(ctx context.Context, learnerID, itemID string) (*entity.Progress, error)
	Snapshot(ctx context.Context, learnerID string) (map[string]entity.Progress, error)
	Upsert(ctx context.Context, progress *entity.Progress) (*entity.Progress, error)
	List(ctx context.Context, query *ListProgressQuery) ([]entity.Progress, int64, error)
}
