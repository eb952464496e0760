package connectrpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/sirupsen/logrus"

	italianov1 "github.com/VastSea0/italiano-sub000/api/italiano/v1"
	"github.com/VastSea0/italiano-sub000/internal/adapter/mapping"
	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/repository"
	"github.com/VastSea0/italiano-sub000/internal/usecase"
)

type staticSource struct {
	data entity.VocabularyDataset
}

func (s staticSource) Load(context.Context) (entity.VocabularyDataset, error) {
	return s.data, nil
}

type memoryProgress struct {
	mu      sync.Mutex
	records map[string]entity.Progress
}

func (m *memoryProgress) Get(_ context.Context, learnerID, itemID string) (*entity.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[learnerID+"/"+itemID]
	if !ok {
		return nil, entity.ErrProgressNotFound
	}
	return record.Clone(), nil
}

func (m *memoryProgress) Snapshot(_ context.Context, learnerID string) (map[string]entity.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]entity.Progress{}
	for _, record := range m.records {
		if record.LearnerID == learnerID {
			out[record.ItemID] = record
		}
	}
	return out, nil
}

func (m *memoryProgress) Upsert(_ context.Context, progress *entity.Progress) (*entity.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = map[string]entity.Progress{}
	}
	m.records[progress.LearnerID+"/"+progress.ItemID] = *progress.Clone()
	return progress.Clone(), nil
}

// List supports no filter expressions.
func (m *memoryProgress) List(ctx context.Context, query *repository.ListProgressQuery) ([]entity.Progress, int64, error) {
	if query.Filter != "" || query.OrderBy != "" {
		return nil, 0, entity.ErrInvalidFilter
	}
	snapshot, _ := m.Snapshot(ctx, query.LearnerID)
	out := make([]entity.Progress, 0, len(snapshot))
	for _, record := range snapshot {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, int64(len(out)), nil
}

type memorySessions struct {
	mu       sync.Mutex
	sessions []entity.ReviewSession
}

func (m *memorySessions) Create(_ context.Context, session *entity.ReviewSession) (*entity.ReviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.ID == session.ID {
			return nil, entity.ErrDuplicateSession
		}
	}
	m.sessions = append(m.sessions, *session)
	saved := *session
	return &saved, nil
}

func (m *memorySessions) List(_ context.Context, query *repository.ListSessionQuery) ([]entity.ReviewSession, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ReviewSession
	for _, s := range m.sessions {
		if s.LearnerID == query.LearnerID {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	catalog := usecase.NewDeckCatalog(staticSource{data: entity.VocabularyDataset{
		Verbs: []entity.Entry{
			{Kind: entity.KindVerb, Base: "essere", Translation: "to be", Present: []string{"sono", "sei", "è"}},
			{Kind: entity.KindVerb, Base: "avere", Translation: "to have"},
		},
		Nouns: []entity.Entry{
			{Kind: entity.KindWord, Base: "casa", Translation: "house", Gender: "feminine"},
		},
	}}, logger)
	if _, err := catalog.Reload(context.Background()); err != nil {
		t.Fatalf("reload deck: %v", err)
	}

	review := usecase.NewReviewUsecase(catalog, &memoryProgress{}, nil)
	sessions := usecase.NewSessionUsecase(&memorySessions{})
	interceptors := connect.WithInterceptors(mapping.ErrorInterceptor())

	mux := http.NewServeMux()
	mux.Handle(NewDeckServiceHandler(NewDeckServiceServer(catalog), interceptors))
	mux.Handle(NewReviewServiceHandler(NewReviewServiceServer(review, sessions), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func call[Req, Res any](t *testing.T, server *httptest.Server, procedure string, req *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](server.Client(), server.URL+procedure, connect.WithCodec(JSONCodec{}))
	resp, err := client.CallUnary(context.Background(), connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func TestDeckService(t *testing.T) {
	server := newTestServer(t)

	list, err := call[italianov1.ListItemsRequest, italianov1.ListItemsResponse](t, server,
		italianov1.DeckServiceListItemsProcedure, &italianov1.ListItemsRequest{Kind: "verb"})
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(list.Items) != 2 || list.Items[0].ID != "essere" || list.Pagination.Total != 2 {
		t.Fatalf("unexpected verbs: %+v", list)
	}

	paged, err := call[italianov1.ListItemsRequest, italianov1.ListItemsResponse](t, server,
		italianov1.DeckServiceListItemsProcedure, &italianov1.ListItemsRequest{Pagination: &italianov1.PaginationRequest{PageNo: 2, PageSize: 2}})
	if err != nil {
		t.Fatalf("paged items: %v", err)
	}
	if len(paged.Items) != 1 || paged.Items[0].ID != "casa" || paged.Pagination.Total != 3 {
		t.Fatalf("unexpected page: %+v", paged)
	}

	_, err = call[italianov1.ListItemsRequest, italianov1.ListItemsResponse](t, server,
		italianov1.DeckServiceListItemsProcedure, &italianov1.ListItemsRequest{Category: "colors"})
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument for unknown category, got %v", err)
	}

	item, err := call[italianov1.GetItemRequest, italianov1.Item](t, server,
		italianov1.DeckServiceGetItemProcedure, &italianov1.GetItemRequest{ID: "casa"})
	if err != nil || item.Answer != "house" || item.Category != "nouns" {
		t.Fatalf("unexpected item: %+v (%v)", item, err)
	}
	_, err = call[italianov1.GetItemRequest, italianov1.Item](t, server,
		italianov1.DeckServiceGetItemProcedure, &italianov1.GetItemRequest{ID: "gatto"})
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}

	stats, err := call[italianov1.ReloadDeckRequest, italianov1.DeckStats](t, server,
		italianov1.DeckServiceReloadDeckProcedure, &italianov1.ReloadDeckRequest{})
	if err != nil || stats.Items != 3 || stats.PerCategory["verbs"] != 2 {
		t.Fatalf("unexpected reload stats: %+v (%v)", stats, err)
	}
}

func TestReviewServiceFlow(t *testing.T) {
	server := newTestServer(t)

	next, err := call[italianov1.NextCardRequest, italianov1.NextCardResponse](t, server,
		italianov1.ReviewServiceNextCardProcedure, &italianov1.NextCardRequest{LearnerID: "anna"})
	if err != nil {
		t.Fatalf("next card: %v", err)
	}
	if next.Card == nil || next.Card.Item.ID != "essere" || next.Card.Progress != nil || len(next.Card.Previews) == 0 {
		t.Fatalf("unexpected first card: %+v", next.Card)
	}

	graded, err := call[italianov1.GradeRequest, italianov1.GradeResponse](t, server,
		italianov1.ReviewServiceGradeProcedure, &italianov1.GradeRequest{LearnerID: "anna", ItemID: "essere", Quality: "5"})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if graded.Progress.IntervalDays != 1 || graded.Progress.RepetitionCount != 1 || graded.Progress.Status != "learning" {
		t.Fatalf("unexpected first grade: %+v", graded.Progress)
	}

	graded, err = call[italianov1.GradeRequest, italianov1.GradeResponse](t, server,
		italianov1.ReviewServiceGradeProcedure, &italianov1.GradeRequest{LearnerID: "anna", ItemID: "essere", Quality: 4.6})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if graded.Progress.IntervalDays != 6 || graded.Progress.LastQuality != 5 {
		t.Fatalf("fractional quality should round up: %+v", graded.Progress)
	}

	next, err = call[italianov1.NextCardRequest, italianov1.NextCardResponse](t, server,
		italianov1.ReviewServiceNextCardProcedure, &italianov1.NextCardRequest{LearnerID: "anna", SkipItemID: "avere"})
	if err != nil || next.Card == nil || next.Card.Item.ID != "casa" {
		t.Fatalf("expected casa after skipping avere, got %+v (%v)", next.Card, err)
	}

	preview, err := call[italianov1.PreviewIntervalsRequest, italianov1.PreviewIntervalsResponse](t, server,
		italianov1.ReviewServicePreviewIntervalsProcedure, &italianov1.PreviewIntervalsRequest{LearnerID: "anna", ItemID: "essere", Qualities: []int32{1, 5}})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(preview.Previews) != 2 || preview.Previews[0].IntervalDays != 0 || preview.Previews[1].IntervalDays != 16 {
		t.Fatalf("unexpected previews: %+v", preview.Previews)
	}

	progress, err := call[italianov1.ListProgressRequest, italianov1.ListProgressResponse](t, server,
		italianov1.ReviewServiceListProgressProcedure, &italianov1.ListProgressRequest{LearnerID: "anna"})
	if err != nil || len(progress.Progress) != 1 || progress.Pagination.Total != 1 {
		t.Fatalf("unexpected progress list: %+v (%v)", progress, err)
	}
	_, err = call[italianov1.ListProgressRequest, italianov1.ListProgressResponse](t, server,
		italianov1.ReviewServiceListProgressProcedure, &italianov1.ListProgressRequest{LearnerID: "anna", Filter: "status == 'review'"})
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument from filter error, got %v", err)
	}

	stats, err := call[italianov1.GetStatsRequest, italianov1.ReviewStats](t, server,
		italianov1.ReviewServiceGetStatsProcedure, &italianov1.GetStatsRequest{LearnerID: "anna"})
	if err != nil || stats.DeckSize != 3 || stats.Seen != 1 || stats.New != 2 || stats.Review != 1 || stats.NextDueAt == nil {
		t.Fatalf("unexpected stats: %+v (%v)", stats, err)
	}
}

func TestReviewServiceErrors(t *testing.T) {
	server := newTestServer(t)

	_, err := call[italianov1.NextCardRequest, italianov1.NextCardResponse](t, server,
		italianov1.ReviewServiceNextCardProcedure, &italianov1.NextCardRequest{LearnerID: "  "})
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument for blank learner, got %v", err)
	}
	_, err = call[italianov1.GradeRequest, italianov1.GradeResponse](t, server,
		italianov1.ReviewServiceGradeProcedure, &italianov1.GradeRequest{LearnerID: "anna", ItemID: "gatto", Quality: 5})
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("expected not_found for unknown item, got %v", err)
	}
	_, err = call[italianov1.RecordSessionRequest, italianov1.ReviewSession](t, server,
		italianov1.ReviewServiceRecordSessionProcedure, &italianov1.RecordSessionRequest{})
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument for missing session, got %v", err)
	}
}

func TestReviewServiceSessions(t *testing.T) {
	server := newTestServer(t)

	session := &italianov1.ReviewSession{
		ID:           "00000000-0000-0000-0000-00000000000a",
		LearnerID:    "anna",
		ReviewCount:  4,
		CorrectCount: 3,
		DurationMs:   60000,
	}
	saved, err := call[italianov1.RecordSessionRequest, italianov1.ReviewSession](t, server,
		italianov1.ReviewServiceRecordSessionProcedure, &italianov1.RecordSessionRequest{Session: session})
	if err != nil {
		t.Fatalf("record session: %v", err)
	}
	if saved.Accuracy != 0.75 || saved.FinishedAt == nil || saved.StartedAt == nil {
		t.Fatalf("unexpected saved session: %+v", saved)
	}
	if saved.FinishedAt.Sub(*saved.StartedAt).Milliseconds() != 60000 {
		t.Fatalf("started_at should be derived from duration: %+v", saved)
	}

	_, err = call[italianov1.RecordSessionRequest, italianov1.ReviewSession](t, server,
		italianov1.ReviewServiceRecordSessionProcedure, &italianov1.RecordSessionRequest{Session: session})
	if connect.CodeOf(err) != connect.CodeAlreadyExists {
		t.Fatalf("expected already_exists, got %v", err)
	}

	list, err := call[italianov1.ListSessionsRequest, italianov1.ListSessionsResponse](t, server,
		italianov1.ReviewServiceListSessionsProcedure, &italianov1.ListSessionsRequest{LearnerID: "anna"})
	if err != nil || len(list.Sessions) != 1 || list.Pagination.Total != 1 || list.Pagination.PageSize != repository.DefaultPageSize {
		t.Fatalf("unexpected sessions: %+v (%v)", list, err)
	}
}
