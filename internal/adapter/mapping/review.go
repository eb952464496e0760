package mapping

import (
	"strings"
	"time"

	"github.com/samber/lo"

	italianov1 "github.com/VastSea0/italiano-sub000/api/italiano/v1"
	"github.com/VastSea0/italiano-sub000/internal/entity"
)

func ToAPIItem(in entity.Item) *italianov1.Item {
	return &italianov1.Item{
		ID:       in.ID,
		Kind:     string(in.Kind),
		Prompt:   in.Prompt,
		Answer:   in.Answer,
		Category: in.Category.Code(),
		Hint:     in.Hint,
		Examples: in.Examples,
	}
}

func ToAPIProgress(in *entity.Progress) *italianov1.Progress {
	if in == nil {
		return nil
	}
	return &italianov1.Progress{
		LearnerID:       in.LearnerID,
		ItemID:          in.ItemID,
		IntervalDays:    int32(in.IntervalDays),
		RepetitionCount: int32(in.RepetitionCount),
		EaseFactor:      in.EaseFactor,
		DueAt:           in.DueAt,
		LastReviewedAt:  in.LastReviewedAt,
		LapseCount:      int32(in.LapseCount),
		StreakCount:     int32(in.StreakCount),
		Status:          string(in.Status),
		LastQuality:     int32(in.LastQuality),
		CreatedAt:       in.CreatedAt,
		UpdatedAt:       in.UpdatedAt,
	}
}

func ToAPIPreviews(in []entity.IntervalPreview) []*italianov1.IntervalPreview {
	return lo.Map(in, func(p entity.IntervalPreview, _ int) *italianov1.IntervalPreview {
		return &italianov1.IntervalPreview{
			Quality:      int32(p.Quality),
			IntervalDays: int32(p.IntervalDays),
			DueAt:        p.DueAt,
			Status:       string(p.Status),
		}
	})
}

func ToAPICard(in *entity.Card) *italianov1.Card {
	if in == nil {
		return nil
	}
	return &italianov1.Card{
		Item:     ToAPIItem(in.Item),
		Progress: ToAPIProgress(in.Progress),
		Previews: ToAPIPreviews(in.Previews),
	}
}

func ToAPIStats(in *entity.ReviewStats) *italianov1.ReviewStats {
	return &italianov1.ReviewStats{
		DeckSize:   int32(in.DeckSize),
		Seen:       int32(in.Seen),
		New:        int32(in.New),
		Due:        int32(in.Due),
		Learning:   int32(in.Learning),
		Review:     int32(in.Review),
		Lapses:     int32(in.Lapses),
		NextDueAt:  in.NextDueAt,
		ComputedAt: in.ComputedAt,
	}
}

func ToAPIDeckStats(in entity.DeckStats) *italianov1.DeckStats {
	return &italianov1.DeckStats{
		Entries: int32(in.Entries),
		Items:   int32(in.Items),
		Dropped: int32(in.Dropped),
		PerCategory: lo.MapEntries(in.PerCategory, func(c entity.Category, n int) (string, int32) {
			return c.Code(), int32(n)
		}),
		LoadedAt: in.LoadedAt,
	}
}

func FromAPIReviewSession(in *italianov1.ReviewSession) *entity.ReviewSession {
	if in == nil {
		return nil
	}
	return &entity.ReviewSession{
		ID:           strings.TrimSpace(in.ID),
		LearnerID:    strings.TrimSpace(in.LearnerID),
		ReviewCount:  int(in.ReviewCount),
		CorrectCount: int(in.CorrectCount),
		Duration:     time.Duration(in.DurationMs) * time.Millisecond,
		StartedAt:    lo.FromPtr(in.StartedAt),
		FinishedAt:   lo.FromPtr(in.FinishedAt),
	}
}

func ToAPIReviewSession(in entity.ReviewSession) *italianov1.ReviewSession {
	return &italianov1.ReviewSession{
		ID:           in.ID,
		LearnerID:    in.LearnerID,
		ReviewCount:  int32(in.ReviewCount),
		CorrectCount: int32(in.CorrectCount),
		Accuracy:     in.Accuracy,
		DurationMs:   in.Duration.Milliseconds(),
		StartedAt:    lo.ToPtr(in.StartedAt),
		FinishedAt:   lo.ToPtr(in.FinishedAt),
		CreatedAt:    lo.ToPtr(in.CreatedAt),
	}
}

// FromAPIQualities converts requested grades. An empty list stays empty so
// the scheduler previews its default grades.
func FromAPIQualities(in []int32) []int {
	if len(in) == 0 {
		return nil
	}
	return lo.Map(in, func(q int32, _ int) int { return int(q) })
}
