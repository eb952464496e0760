package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/repository"
)

// Deck is the read side of the deck catalog used by review flows.
type Deck interface {
	Deck() []entity.Item
	Item(id string) (entity.Item, bool)
}

// GradeRecorder observes grading outcomes, e.g. for metrics.
type GradeRecorder interface {
	RecordGrade(schedule entity.Schedule)
}

type noopGradeRecorder struct{}

func (noopGradeRecorder) RecordGrade(entity.Schedule) {}

// ReviewUsecase drives the flashcard loop for a learner.
type ReviewUsecase interface {
	NextCard(ctx context.Context, learnerID, skipItemID string) (*entity.Card, error)
	Grade(ctx context.Context, learnerID, itemID string, quality int) (*entity.Progress, error)
	Preview(ctx context.Context, learnerID, itemID string, qualities []int) ([]entity.IntervalPreview, error)
	ListProgress(ctx context.Context, query *repository.ListProgressQuery) ([]entity.Progress, int64, error)
	Stats(ctx context.Context, learnerID string) (*entity.ReviewStats, error)
}

// NewReviewUsecase wires the deck and progress store with default behaviour.
func NewReviewUsecase(deck Deck, repo repository.ProgressRepository, recorder GradeRecorder) ReviewUsecase {
	if recorder == nil {
		recorder = noopGradeRecorder{}
	}
	return &reviewUsecase{
		deck:     deck,
		repo:     repo,
		recorder: recorder,
		clock:    time.Now,
	}
}

type reviewUsecase struct {
	deck     Deck
	repo     repository.ProgressRepository
	recorder GradeRecorder
	clock    func() time.Time
}

// NextCard returns nil without error when there is nothing to study. A
// non-empty skipItemID is left out unless it is the only card in the deck.
func (u *reviewUsecase) NextCard(ctx context.Context, learnerID, skipItemID string) (*entity.Card, error) {
	learnerID, err := normalizeLearnerID(learnerID)
	if err != nil {
		return nil, err
	}

	deck := u.deck.Deck()
	if skip := strings.TrimSpace(skipItemID); skip != "" && len(deck) > 1 {
		filtered := make([]entity.Item, 0, len(deck))
		for _, item := range deck {
			if item.ID != skip {
				filtered = append(filtered, item)
			}
		}
		deck = filtered
	}

	snapshot, err := u.repo.Snapshot(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	item, ok := SelectNext(deck, snapshot, now)
	if !ok {
		return nil, nil
	}

	card := &entity.Card{Item: item}
	if record, seen := snapshot[item.ID]; seen {
		card.Progress = &record
	}
	card.Previews = PreviewIntervals(card.Progress, now)
	return card, nil
}

func (u *reviewUsecase) Grade(ctx context.Context, learnerID, itemID string, quality int) (*entity.Progress, error) {
	learnerID, err := normalizeLearnerID(learnerID)
	if err != nil {
		return nil, err
	}
	item, err := u.lookupItem(itemID)
	if err != nil {
		return nil, err
	}

	previous, err := u.existingProgress(ctx, learnerID, item.ID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	schedule := ComputeNext(previous, quality, now)
	next := UpsertProgress(schedule, previous, learnerID, item.ID, now)

	saved, err := u.repo.Upsert(ctx, &next)
	if err != nil {
		return nil, err
	}
	u.recorder.RecordGrade(schedule)
	return saved, nil
}

func (u *reviewUsecase) Preview(ctx context.Context, learnerID, itemID string, qualities []int) ([]entity.IntervalPreview, error) {
	learnerID, err := normalizeLearnerID(learnerID)
	if err != nil {
		return nil, err
	}
	item, err := u.lookupItem(itemID)
	if err != nil {
		return nil, err
	}
	previous, err := u.existingProgress(ctx, learnerID, item.ID)
	if err != nil {
		return nil, err
	}
	return PreviewIntervals(previous, u.clock(), qualities...), nil
}

func (u *reviewUsecase) ListProgress(ctx context.Context, query *repository.ListProgressQuery) ([]entity.Progress, int64, error) {
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

func (u *reviewUsecase) Stats(ctx context.Context, learnerID string) (*entity.ReviewStats, error) {
	learnerID, err := normalizeLearnerID(learnerID)
	if err != nil {
		return nil, err
	}
	snapshot, err := u.repo.Snapshot(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	deck := u.deck.Deck()
	stats := &entity.ReviewStats{DeckSize: len(deck), ComputedAt: now}
	for _, item := range deck {
		record, ok := snapshot[item.ID]
		if !ok {
			stats.New++
			continue
		}
		stats.Seen++
		stats.Lapses += record.LapseCount
		if record.Status == entity.StatusReview {
			stats.Review++
		} else {
			stats.Learning++
		}
		if record.IsDue(now) {
			stats.Due++
			continue
		}
		if stats.NextDueAt == nil || record.DueAt.Before(*stats.NextDueAt) {
			due := record.DueAt
			stats.NextDueAt = &due
		}
	}
	return stats, nil
}

func (u *reviewUsecase) lookupItem(itemID string) (entity.Item, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return entity.Item{}, entity.ErrInvalidItemID
	}
	item, ok := u.deck.Item(itemID)
	if !ok {
		if len(u.deck.Deck()) == 0 {
			return entity.Item{}, entity.ErrEmptyDeck
		}
		return entity.Item{}, entity.ErrItemNotFound
	}
	return item, nil
}

func (u *reviewUsecase) existingProgress(ctx context.Context, learnerID, itemID string) (*entity.Progress, error) {
	previous, err := u.repo.Get(ctx, learnerID, itemID)
	if errors.Is(err, entity.ErrProgressNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return previous, nil
}

func normalizeLearnerID(learnerID string) (string, error) {
	trimmed := strings.TrimSpace(learnerID)
	if trimmed == "" {
		return "", entity.ErrInvalidLearnerID
	}
	return trimmed, nil
}
