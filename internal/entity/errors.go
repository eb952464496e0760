package entity

import "errors"

// Domain errors surfaced by usecases and repositories.
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrProgressNotFound  = errors.New("progress not found")
	ErrSessionNotFound   = errors.New("review session not found")
	ErrInvalidLearnerID  = errors.New("invalid learner ID")
	ErrInvalidItemID     = errors.New("invalid item ID")
	ErrInvalidSession    = errors.New("invalid review session")
	ErrDuplicateSession  = errors.New("review session already exists")
	ErrDuplicateProgress = errors.New("progress already exists")
	ErrEmptyDeck         = errors.New("deck is empty")
	ErrVocabularySource  = errors.New("vocabulary source unavailable")
	ErrInvalidFilter     = errors.New("invalid filter or order_by")
)
