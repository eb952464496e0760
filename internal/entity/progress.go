package entity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// SM-2 constants.
const (
	MinQuality        = 0
	MaxQuality        = 5
	PassingQuality    = 3
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3

	// MaxIntervalDays caps the review interval at roughly a century so DueAt
	// stays representable in time.Time and in SQL timestamps.
	MaxIntervalDays = 36500
)

// Status is the learning stage of an item for one learner.
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusReview   Status = "review"
)

// ParseStatus converts a stored value into a Status, defaulting to StatusLearning.
func ParseStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusNew:
		return StatusNew
	case StatusReview:
		return StatusReview
	default:
		return StatusLearning
	}
}

// Progress is the per-learner, per-item review state.
type Progress struct {
	LearnerID       string
	ItemID          string
	IntervalDays    int
	RepetitionCount int
	// EaseFactor is rounded to two decimals for storage and display.
	EaseFactor float64
	// EaseFactorExact carries the unrounded value the scheduler continues from.
	EaseFactorExact float64
	DueAt           time.Time
	LastReviewedAt  *time.Time
	LapseCount      int
	StreakCount     int
	Status          Status
	LastQuality     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CurrentEaseFactor returns the full precision ease factor, falling back to the
// rounded value for records written without one. Stored values below
// MinEaseFactor are raised to the floor.
func (p *Progress) CurrentEaseFactor() float64 {
	if p == nil {
		return DefaultEaseFactor
	}
	if p.EaseFactorExact > 0 {
		return max(p.EaseFactorExact, MinEaseFactor)
	}
	if p.EaseFactor > 0 {
		return max(p.EaseFactor, MinEaseFactor)
	}
	return DefaultEaseFactor
}

// IsDue reports whether the item should be shown at now.
func (p *Progress) IsDue(now time.Time) bool {
	return p != nil && !p.DueAt.After(now)
}

// Clone returns a deep copy.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}
	cp := *p
	if p.LastReviewedAt != nil {
		t := *p.LastReviewedAt
		cp.LastReviewedAt = &t
	}
	return &cp
}

// Schedule is the outcome of grading an item once.
type Schedule struct {
	IntervalDays    int
	RepetitionCount int
	EaseFactor      float64
	DueAt           time.Time
	Status          Status
	Quality         int
}

// Lapsed reports whether the grade fell below the passing threshold.
func (s Schedule) Lapsed() bool {
	return s.Quality < PassingQuality
}

// IntervalPreview describes what a hypothetical grade would schedule.
type IntervalPreview struct {
	Quality      int
	IntervalDays int
	DueAt        time.Time
	Status       Status
}

// ClampQuality bounds a grade to [MinQuality, MaxQuality].
func ClampQuality(q int) int {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// NormalizeQuality converts loosely typed grade input into a clamped integer.
// Fractional values are rounded; anything non-numeric becomes MinQuality.
func NormalizeQuality(raw any) int {
	var f float64
	switch v := raw.(type) {
	case int:
		return ClampQuality(v)
	case int32:
		return ClampQuality(int(v))
	case int64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return MinQuality
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return MinQuality
		}
		f = parsed
	default:
		return MinQuality
	}
	if math.IsNaN(f) {
		return MinQuality
	}
	switch {
	case f >= MaxQuality:
		return MaxQuality
	case f <= MinQuality:
		return MinQuality
	}
	return ClampQuality(int(math.Round(f)))
}

// RoundEaseFactor rounds an ease factor to two decimals.
func RoundEaseFactor(ef float64) float64 {
	return math.Round(ef*100) / 100
}
