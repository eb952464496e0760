package repository

import (
	"context"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

// VocabularySource loads the normalized vocabulary dataset a deck is built from.
type VocabularySource interface {
	Load(ctx context.Context) (entity.VocabularyDataset, error)
}
