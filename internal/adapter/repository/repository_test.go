package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/database/dbtest"
	"github.com/VastSea0/italiano-sub000/internal/repository"
)

var base = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func sampleProgress(learner, item string, offsetDays int) *entity.Progress {
	reviewed := base
	return &entity.Progress{
		LearnerID:       learner,
		ItemID:          item,
		IntervalDays:    offsetDays,
		RepetitionCount: 2,
		EaseFactor:      2.36,
		EaseFactorExact: 2.36,
		DueAt:           base.AddDate(0, 0, offsetDays),
		LastReviewedAt:  &reviewed,
		LapseCount:      offsetDays % 3,
		StreakCount:     2,
		Status:          entity.StatusReview,
		LastQuality:     4,
		CreatedAt:       base,
		UpdatedAt:       base,
	}
}

func TestProgressRepositoryUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository(dbtest.Open(t, dbtest.DSN(t, "progress")))

	if _, err := repo.Get(ctx, "anna", "essere"); !errors.Is(err, entity.ErrProgressNotFound) {
		t.Fatalf("expected ErrProgressNotFound, got %v", err)
	}

	first := sampleProgress("anna", "essere", 6)
	if _, err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.Get(ctx, "anna", "essere")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, first) {
		t.Fatalf("round trip mismatch:\nwant %#v\ngot  %#v", first, got)
	}

	second := first.Clone()
	second.IntervalDays = 0
	second.RepetitionCount = 0
	second.LapseCount = 1
	second.StreakCount = 0
	second.Status = entity.StatusLearning
	second.LastReviewedAt = nil
	second.CreatedAt = base.AddDate(0, 1, 0)
	second.UpdatedAt = base.AddDate(0, 0, 6)
	if _, err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = repo.Get(ctx, "anna", "essere")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IntervalDays != 0 || got.Status != entity.StatusLearning || got.LastReviewedAt != nil {
		t.Fatalf("upsert did not overwrite: %+v", got)
	}
	if !got.CreatedAt.Equal(base) {
		t.Fatalf("created_at must be preserved on conflict, got %v", got.CreatedAt)
	}
}

func TestProgressRepositorySnapshotIsPerLearner(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository(dbtest.Open(t, dbtest.DSN(t, "snapshot")))

	for _, p := range []*entity.Progress{
		sampleProgress("anna", "essere", 1),
		sampleProgress("anna", "avere", 6),
		sampleProgress("marco", "essere", 15),
	} {
		if _, err := repo.Upsert(ctx, p); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	snapshot, err := repo.Snapshot(ctx, "anna")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot) != 2 || snapshot["essere"].IntervalDays != 1 || snapshot["avere"].IntervalDays != 6 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	empty, err := repo.Snapshot(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty snapshot, got %v (%v)", empty, err)
	}
}

func TestProgressRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository(dbtest.Open(t, dbtest.DSN(t, "list")))

	for i := 1; i <= 6; i++ {
		p := sampleProgress("anna", fmt.Sprintf("item-%d", i), i)
		if i%2 == 0 {
			p.Status = entity.StatusLearning
		}
		if _, err := repo.Upsert(ctx, p); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if _, err := repo.Upsert(ctx, sampleProgress("marco", "item-1", 1)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	all, total, err := repo.List(ctx, &repository.ListProgressQuery{LearnerID: "anna"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 6 || len(all) != 6 || all[0].ItemID != "item-1" || all[5].ItemID != "item-6" {
		t.Fatalf("default order should be due_at asc, got %d rows total %d", len(all), total)
	}

	query := &repository.ListProgressQuery{
		LearnerID:   "anna",
		FilterOrder: repository.FilterOrder{Filter: "status == 'review' && due_at <= timestamp('2024-01-05T08:00:00Z')", OrderBy: "due_at desc"},
	}
	filtered, total, err := repo.List(ctx, query)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if total != 2 || len(filtered) != 2 || filtered[0].ItemID != "item-3" || filtered[1].ItemID != "item-1" {
		t.Fatalf("unexpected filtered rows: %+v", filtered)
	}

	paged, total, err := repo.List(ctx, &repository.ListProgressQuery{
		LearnerID:   "anna",
		Pagination:  repository.Pagination{PageNo: 2, PageSize: 4},
		FilterOrder: repository.FilterOrder{Filter: "item_id.startsWith('item-')"},
	})
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	if total != 6 || len(paged) != 2 || paged[0].ItemID != "item-5" {
		t.Fatalf("unexpected page: total %d rows %+v", total, paged)
	}

	in, _, err := repo.List(ctx, &repository.ListProgressQuery{
		LearnerID:   "anna",
		FilterOrder: repository.FilterOrder{Filter: "item_id in ['item-2', 'item-4'] && lapse_count >= 1", OrderBy: "item_id desc"},
	})
	if err != nil {
		t.Fatalf("in list: %v", err)
	}
	if len(in) != 2 || in[0].ItemID != "item-4" {
		t.Fatalf("unexpected in rows: %+v", in)
	}

	if _, _, err := repo.List(ctx, &repository.ListProgressQuery{
		LearnerID:   "anna",
		FilterOrder: repository.FilterOrder{Filter: "status == 'review' || lapse_count >= 1"},
	}); !errors.Is(err, entity.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if _, _, err := repo.List(ctx, &repository.ListProgressQuery{
		LearnerID:   "anna",
		FilterOrder: repository.FilterOrder{OrderBy: "streak_count"},
	}); !errors.Is(err, entity.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter for order_by, got %v", err)
	}
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(dbtest.Open(t, dbtest.DSN(t, "sessions")))

	sessions := []entity.ReviewSession{
		{ID: "00000000-0000-0000-0000-000000000001", LearnerID: "anna", ReviewCount: 10, CorrectCount: 7, Accuracy: 0.7, Duration: 90 * time.Second, StartedAt: base, FinishedAt: base.Add(90 * time.Second), CreatedAt: base.Add(90 * time.Second)},
		{ID: "00000000-0000-0000-0000-000000000002", LearnerID: "anna", ReviewCount: 4, CorrectCount: 4, Accuracy: 1, Duration: time.Minute, StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Minute), CreatedAt: base.Add(time.Hour + time.Minute)},
		{ID: "00000000-0000-0000-0000-000000000003", LearnerID: "marco", ReviewCount: 1, StartedAt: base, FinishedAt: base, CreatedAt: base},
	}
	for i := range sessions {
		if _, err := repo.Create(ctx, &sessions[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := repo.Create(ctx, &sessions[0]); !errors.Is(err, entity.ErrDuplicateSession) {
		t.Fatalf("expected ErrDuplicateSession, got %v", err)
	}

	got, total, err := repo.List(ctx, &repository.ListSessionQuery{LearnerID: "anna"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("expected 2 sessions, got %d (total %d)", len(got), total)
	}
	if !reflect.DeepEqual(got[0], sessions[1]) || !reflect.DeepEqual(got[1], sessions[0]) {
		t.Fatalf("sessions should come back newest first:\nwant %#v\ngot  %#v", []entity.ReviewSession{sessions[1], sessions[0]}, got)
	}
}
