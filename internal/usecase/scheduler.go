package usecase

import (
	"math"
	"time"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

// DefaultPreviewQualities are the grades shown as Again, Hard, Good and Easy.
var DefaultPreviewQualities = []int{1, 3, 4, 5}

// SelectNext picks the item to present at now:
//  1. the due item with the earliest DueAt,
//  2. otherwise the first unseen item,
//  3. otherwise the item with the soonest future DueAt.
//
// Ties keep deck order. It returns false only for an empty deck.
func SelectNext(deck []entity.Item, progress map[string]entity.Progress, now time.Time) (entity.Item, bool) {
	due, upcoming, firstUnseen := -1, -1, -1
	var dueAt, upcomingAt time.Time
	for i, item := range deck {
		record, ok := progress[item.ID]
		if !ok {
			if firstUnseen < 0 {
				firstUnseen = i
			}
			continue
		}
		if !record.DueAt.After(now) {
			if due < 0 || record.DueAt.Before(dueAt) {
				due, dueAt = i, record.DueAt
			}
			continue
		}
		if upcoming < 0 || record.DueAt.Before(upcomingAt) {
			upcoming, upcomingAt = i, record.DueAt
		}
	}

	switch {
	case due >= 0:
		return deck[due], true
	case firstUnseen >= 0:
		return deck[firstUnseen], true
	case upcoming >= 0:
		return deck[upcoming], true
	default:
		return entity.Item{}, false
	}
}

// ComputeNext applies one SM-2 grading to the existing record (nil when the item
// was never graded). The quality is clamped and the interval saturates at
// entity.MaxIntervalDays; the computation never fails.
func ComputeNext(existing *entity.Progress, quality int, now time.Time) entity.Schedule {
	q := entity.ClampQuality(quality)

	ease := entity.DefaultEaseFactor
	reps, interval := 0, 0
	if existing != nil {
		ease = existing.CurrentEaseFactor()
		reps = max(existing.RepetitionCount, 0)
		interval = min(max(existing.IntervalDays, 0), entity.MaxIntervalDays)
	}

	if q < entity.PassingQuality {
		return entity.Schedule{
			IntervalDays:    0,
			RepetitionCount: 0,
			EaseFactor:      ease,
			DueAt:           now,
			Status:          entity.StatusLearning,
			Quality:         q,
		}
	}

	switch reps {
	case 0:
		interval = 1
	case 1:
		interval = 6
	default:
		next := math.Round(float64(interval) * ease)
		interval = int(min(next, entity.MaxIntervalDays))
	}
	reps++

	miss := float64(entity.MaxQuality - q)
	ease += 0.1 - miss*(0.08+miss*0.02)
	if ease < entity.MinEaseFactor {
		ease = entity.MinEaseFactor
	}

	status := entity.StatusLearning
	if reps > 1 {
		status = entity.StatusReview
	}

	return entity.Schedule{
		IntervalDays:    interval,
		RepetitionCount: reps,
		EaseFactor:      ease,
		DueAt:           now.AddDate(0, 0, interval),
		Status:          status,
		Quality:         q,
	}
}

// UpsertProgress turns a schedule into the record to persist for (learnerID, itemID).
func UpsertProgress(schedule entity.Schedule, previous *entity.Progress, learnerID, itemID string, now time.Time) entity.Progress {
	next := entity.Progress{
		LearnerID:       learnerID,
		ItemID:          itemID,
		IntervalDays:    schedule.IntervalDays,
		RepetitionCount: schedule.RepetitionCount,
		EaseFactor:      entity.RoundEaseFactor(schedule.EaseFactor),
		EaseFactorExact: schedule.EaseFactor,
		DueAt:           schedule.DueAt,
		Status:          schedule.Status,
		LastQuality:     schedule.Quality,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	reviewed := now
	next.LastReviewedAt = &reviewed

	if previous != nil {
		next.LapseCount = previous.LapseCount
		next.StreakCount = previous.StreakCount
		if !previous.CreatedAt.IsZero() {
			next.CreatedAt = previous.CreatedAt
		}
	}
	if schedule.Lapsed() {
		next.LapseCount++
		next.StreakCount = 0
	} else {
		next.StreakCount++
	}
	return next
}

// PreviewIntervals computes the schedule each candidate grade would produce
// without touching the existing record. Nil or empty qualities fall back to
// DefaultPreviewQualities.
func PreviewIntervals(existing *entity.Progress, now time.Time, qualities ...int) []entity.IntervalPreview {
	if len(qualities) == 0 {
		qualities = DefaultPreviewQualities
	}
	previews := make([]entity.IntervalPreview, 0, len(qualities))
	for _, q := range qualities {
		schedule := ComputeNext(existing.Clone(), q, now)
		previews = append(previews, entity.IntervalPreview{
			Quality:      schedule.Quality,
			IntervalDays: schedule.IntervalDays,
			DueAt:        schedule.DueAt,
			Status:       schedule.Status,
		})
	}
	return previews
}
