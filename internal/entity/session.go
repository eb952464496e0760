package entity

import (
	"strings"
	"time"
)

// ReviewSession is an immutable summary appended after a study session.
type ReviewSession struct {
	ID           string
	LearnerID    string
	ReviewCount  int
	CorrectCount int
	Accuracy     float64
	Duration     time.Duration
	StartedAt    time.Time
	FinishedAt   time.Time
	CreatedAt    time.Time
}

// Normalize validates counters and fills derived fields before persistence.
func (s *ReviewSession) Normalize(now time.Time) error {
	s.LearnerID = strings.TrimSpace(s.LearnerID)
	if s.LearnerID == "" {
		return ErrInvalidLearnerID
	}
	if s.ReviewCount < 0 || s.CorrectCount < 0 || s.CorrectCount > s.ReviewCount {
		return ErrInvalidSession
	}
	if s.FinishedAt.IsZero() {
		s.FinishedAt = now
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = s.FinishedAt.Add(-s.Duration)
	}
	if s.FinishedAt.Before(s.StartedAt) {
		return ErrInvalidSession
	}
	if s.Duration <= 0 {
		s.Duration = s.FinishedAt.Sub(s.StartedAt)
	}
	s.Accuracy = 0
	if s.ReviewCount > 0 {
		s.Accuracy = float64(s.CorrectCount) / float64(s.ReviewCount)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	return nil
}
