package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/repository"
)

type fakeProgressRepo struct {
	mu      sync.RWMutex
	items   map[string]map[string]*entity.Progress
	upserts int
	failGet error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{items: make(map[string]map[string]*entity.Progress)}
}

func (r *fakeProgressRepo) Get(ctx context.Context, learnerID, itemID string) (*entity.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.failGet != nil {
		return nil, r.failGet
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.items[learnerID][itemID]
	if !ok {
		return nil, entity.ErrProgressNotFound
	}
	return record.Clone(), nil
}

func (r *fakeProgressRepo) Snapshot(ctx context.Context, learnerID string) (map[string]entity.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]entity.Progress, len(r.items[learnerID]))
	for id, record := range r.items[learnerID] {
		out[id] = *record.Clone()
	}
	return out, nil
}

func (r *fakeProgressRepo) Upsert(ctx context.Context, progress *entity.Progress) (*entity.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[progress.LearnerID] == nil {
		r.items[progress.LearnerID] = make(map[string]*entity.Progress)
	}
	r.items[progress.LearnerID][progress.ItemID] = progress.Clone()
	r.upserts++
	return progress.Clone(), nil
}

func (r *fakeProgressRepo) List(ctx context.Context, query *repository.ListProgressQuery) ([]entity.Progress, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if query.Filter != "" {
		return nil, 0, errors.New("fake repo does not support filters")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([]entity.Progress, 0, len(r.items[query.LearnerID]))
	for _, record := range r.items[query.LearnerID] {
		rows = append(rows, *record.Clone())
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ItemID < rows[j].ItemID })
	total := int64(len(rows))
	start := int(query.Offset())
	if start > len(rows) {
		start = len(rows)
	}
	end := start + int(query.Limit())
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], total, nil
}

func (r *fakeProgressRepo) put(record entity.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[record.LearnerID] == nil {
		r.items[record.LearnerID] = make(map[string]*entity.Progress)
	}
	r.items[record.LearnerID][record.ItemID] = record.Clone()
}

type fakeSessionRepo struct {
	mu    sync.RWMutex
	items []entity.ReviewSession
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ReviewSession) (*entity.ReviewSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ID == session.ID {
			return nil, entity.ErrDuplicateSession
		}
	}
	r.items = append(r.items, *session)
	cp := *session
	return &cp, nil
}

func (r *fakeSessionRepo) List(ctx context.Context, query *repository.ListSessionQuery) ([]entity.ReviewSession, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.ReviewSession
	for _, s := range r.items {
		if s.LearnerID == query.LearnerID {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

type fakeSource struct {
	mu    sync.Mutex
	data  entity.VocabularyDataset
	err   error
	loads int
}

func (s *fakeSource) Load(ctx context.Context) (entity.VocabularyDataset, error) {
	if err := ctx.Err(); err != nil {
		return entity.VocabularyDataset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return entity.VocabularyDataset{}, s.err
	}
	return s.data, nil
}

type recordingRecorder struct {
	mu        sync.Mutex
	schedules []entity.Schedule
}

func (r *recordingRecorder) RecordGrade(schedule entity.Schedule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules = append(r.schedules, schedule)
}
