// Package italianov1 holds the JSON messages and procedure names of the
// italiano.v1 Connect services.
package italianov1

import "time"

const (
	DeckServiceName   = "italiano.v1.DeckService"
	ReviewServiceName = "italiano.v1.ReviewService"
)

const (
	DeckServiceListItemsProcedure  = "/italiano.v1.DeckService/ListItems"
	DeckServiceGetItemProcedure    = "/italiano.v1.DeckService/GetItem"
	DeckServiceReloadDeckProcedure = "/italiano.v1.DeckService/ReloadDeck"

	ReviewServiceNextCardProcedure         = "/italiano.v1.ReviewService/NextCard"
	ReviewServiceGradeProcedure            = "/italiano.v1.ReviewService/Grade"
	ReviewServicePreviewIntervalsProcedure = "/italiano.v1.ReviewService/PreviewIntervals"
	ReviewServiceListProgressProcedure     = "/italiano.v1.ReviewService/ListProgress"
	ReviewServiceGetStatsProcedure         = "/italiano.v1.ReviewService/GetStats"
	ReviewServiceRecordSessionProcedure    = "/italiano.v1.ReviewService/RecordSession"
	ReviewServiceListSessionsProcedure     = "/italiano.v1.ReviewService/ListSessions"
)

type PaginationRequest struct {
	PageNo   int32 `json:"page_no,omitempty"`
	PageSize int32 `json:"page_size,omitempty"`
}

func (p *PaginationRequest) GetPageNo() int32 {
	if p == nil {
		return 0
	}
	return p.PageNo
}

func (p *PaginationRequest) GetPageSize() int32 {
	if p == nil {
		return 0
	}
	return p.PageSize
}

type PaginationResponse struct {
	PageNo   int32 `json:"page_no"`
	PageSize int32 `json:"page_size"`
	Total    int32 `json:"total"`
}

// Item is a flashcard.
type Item struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Prompt   string   `json:"prompt"`
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
	Hint     string   `json:"hint,omitempty"`
	Examples []string `json:"examples,omitempty"`
}

type ListItemsRequest struct {
	Category   string             `json:"category,omitempty"`
	Kind       string             `json:"kind,omitempty"`
	Pagination *PaginationRequest `json:"pagination,omitempty"`
}

type ListItemsResponse struct {
	Items      []*Item             `json:"items"`
	Pagination *PaginationResponse `json:"pagination"`
}

type GetItemRequest struct {
	ID string `json:"id"`
}

type ReloadDeckRequest struct{}

type DeckStats struct {
	Entries     int32            `json:"entries"`
	Items       int32            `json:"items"`
	Dropped     int32            `json:"dropped"`
	PerCategory map[string]int32 `json:"per_category,omitempty"`
	LoadedAt    time.Time        `json:"loaded_at"`
}

type Progress struct {
	LearnerID       string     `json:"learner_id"`
	ItemID          string     `json:"item_id"`
	IntervalDays    int32      `json:"interval_days"`
	RepetitionCount int32      `json:"repetition_count"`
	EaseFactor      float64    `json:"ease_factor"`
	DueAt           time.Time  `json:"due_at"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at,omitempty"`
	LapseCount      int32      `json:"lapse_count"`
	StreakCount     int32      `json:"streak_count"`
	Status          string     `json:"status"`
	LastQuality     int32      `json:"last_quality"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type IntervalPreview struct {
	Quality      int32     `json:"quality"`
	IntervalDays int32     `json:"interval_days"`
	DueAt        time.Time `json:"due_at"`
	Status       string    `json:"status"`
}

type Card struct {
	Item     *Item              `json:"item"`
	Progress *Progress          `json:"progress,omitempty"`
	Previews []*IntervalPreview `json:"previews"`
}

type NextCardRequest struct {
	LearnerID  string `json:"learner_id"`
	SkipItemID string `json:"skip_item_id,omitempty"`
}

// NextCardResponse carries no card when nothing is available to study.
type NextCardResponse struct {
	Card *Card `json:"card,omitempty"`
}

// GradeRequest accepts the quality as any JSON value. Numbers are rounded and
// clamped to [0, 5]; anything else grades as 0.
type GradeRequest struct {
	LearnerID string `json:"learner_id"`
	ItemID    string `json:"item_id"`
	Quality   any    `json:"quality"`
}

type GradeResponse struct {
	Progress *Progress `json:"progress"`
}

type PreviewIntervalsRequest struct {
	LearnerID string  `json:"learner_id"`
	ItemID    string  `json:"item_id"`
	Qualities []int32 `json:"qualities,omitempty"`
}

type PreviewIntervalsResponse struct {
	Previews []*IntervalPreview `json:"previews"`
}

type ListProgressRequest struct {
	LearnerID  string             `json:"learner_id"`
	Filter     string             `json:"filter,omitempty"`
	OrderBy    string             `json:"order_by,omitempty"`
	Pagination *PaginationRequest `json:"pagination,omitempty"`
}

type ListProgressResponse struct {
	Progress   []*Progress         `json:"progress"`
	Pagination *PaginationResponse `json:"pagination"`
}

type GetStatsRequest struct {
	LearnerID string `json:"learner_id"`
}

type ReviewStats struct {
	DeckSize   int32      `json:"deck_size"`
	Seen       int32      `json:"seen"`
	New        int32      `json:"new"`
	Due        int32      `json:"due"`
	Learning   int32      `json:"learning"`
	Review     int32      `json:"review"`
	Lapses     int32      `json:"lapses"`
	NextDueAt  *time.Time `json:"next_due_at,omitempty"`
	ComputedAt time.Time  `json:"computed_at"`
}

type ReviewSession struct {
	ID           string     `json:"id,omitempty"`
	LearnerID    string     `json:"learner_id"`
	ReviewCount  int32      `json:"review_count"`
	CorrectCount int32      `json:"correct_count"`
	Accuracy     float64    `json:"accuracy"`
	DurationMs   int64      `json:"duration_ms"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

type RecordSessionRequest struct {
	Session *ReviewSession `json:"session"`
}

type ListSessionsRequest struct {
	LearnerID  string             `json:"learner_id"`
	Pagination *PaginationRequest `json:"pagination,omitempty"`
}

type ListSessionsResponse struct {
	Sessions   []*ReviewSession    `json:"sessions"`
	Pagination *PaginationResponse `json:"pagination"`
}

func (x *NextCardRequest) GetLearnerID() string         { return x.LearnerID }
func (x *GradeRequest) GetLearnerID() string            { return x.LearnerID }
func (x *PreviewIntervalsRequest) GetLearnerID() string { return x.LearnerID }
func (x *ListProgressRequest) GetLearnerID() string     { return x.LearnerID }
func (x *GetStatsRequest) GetLearnerID() string         { return x.LearnerID }
func (x *ListSessionsRequest) GetLearnerID() string     { return x.LearnerID }

func (x *RecordSessionRequest) GetLearnerID() string {
	if x.Session == nil {
		return ""
	}
	return x.Session.LearnerID
}
