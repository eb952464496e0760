package connectrpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/samber/lo"

	italianov1 "github.com/VastSea0/italiano-sub000/api/italiano/v1"
	"github.com/VastSea0/italiano-sub000/internal/adapter/mapping"
	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/repository"
	"github.com/VastSea0/italiano-sub000/internal/usecase"
)

type ReviewServiceServer struct {
	review   usecase.ReviewUsecase
	sessions usecase.SessionUsecase
}

func NewReviewServiceServer(review usecase.ReviewUsecase, sessions usecase.SessionUsecase) *ReviewServiceServer {
	return &ReviewServiceServer{review: review, sessions: sessions}
}

func (s *ReviewServiceServer) NextCard(ctx context.Context, req *connect.Request[italianov1.NextCardRequest]) (*connect.Response[italianov1.NextCardResponse], error) {
	if req.Msg == nil {
		return nil, invalidArgument("request required")
	}
	card, err := s.review.NextCard(ctx, req.Msg.LearnerID, req.Msg.SkipItemID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&italianov1.NextCardResponse{Card: mapping.ToAPICard(card)}), nil
}

func (s *ReviewServiceServer) Grade(ctx context.Context, req *connect.Request[italianov1.GradeRequest]) (*connect.Response[italianov1.GradeResponse], error) {
	if req.Msg == nil {
		return nil, invalidArgument("request required")
	}
	msg := req.Msg
	progress, err := s.review.Grade(ctx, msg.LearnerID, msg.ItemID, entity.NormalizeQuality(msg.Quality))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&italianov1.GradeResponse{Progress: mapping.ToAPIProgress(progress)}), nil
}

func (s *ReviewServiceServer) PreviewIntervals(ctx context.Context, req *connect.Request[italianov1.PreviewIntervalsRequest]) (*connect.Response[italianov1.PreviewIntervalsResponse], error) {
	if req.Msg == nil {
		return nil, invalidArgument("request required")
	}
	msg := req.Msg
	previews, err := s.review.Preview(ctx, msg.LearnerID, msg.ItemID, mapping.FromAPIQualities(msg.Qualities))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&italianov1.PreviewIntervalsResponse{Previews: mapping.ToAPIPreviews(previews)}), nil
}

func (s *ReviewServiceServer) ListProgress(ctx context.Context, req *connect.Request[italianov1.ListProgressRequest]) (*connect.Response[italianov1.ListProgressResponse], error) {
	if req.Msg == nil {
		return nil, invalidArgument("request required")
	}
	msg := req.Msg
	query := &repository.ListProgressQuery{
		Pagination: convertPagination(msg.Pagination),
		FilterOrder: repository.FilterOrder{
			Filter:  msg.Filter,
			OrderBy: msg.OrderBy,
		},
		LearnerID: msg.LearnerID,
	}
	records, total, err := s.review.ListProgress(ctx, query)
	if err != nil {
		return nil, err
	}
	page, err := paginationResponse(query.Pagination, total)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&italianov1.ListProgressResponse{
		Progress: lo.Map(records, func(p entity.Progress, _ int) *italianov1.Progress {
			return mapping.ToAPIProgress(&p)
		}),
		Pagination: page,
	}), nil
}

func (s *ReviewServiceServer) GetStats(ctx context.Context, req *connect.Request[italianov1.GetStatsRequest]) (*connect.Response[italianov1.ReviewStats], error) {
	if req.Msg == nil {
		return nil, invalidArgument("request required")
	}
	stats, err := s.review.Stats(ctx, req.Msg.LearnerID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(mapping.ToAPIStats(stats)), nil
}

func (s *ReviewServiceServer) RecordSession(ctx context.Context, req *connect.Request[italianov1.RecordSessionRequest]) (*connect.Response[italianov1.ReviewSession], error) {
	if req.Msg == nil || req.Msg.Session == nil {
		return nil, invalidArgument("session payload required")
	}
	saved, err := s.sessions.RecordSession(ctx, mapping.FromAPIReviewSession(req.Msg.Session))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(mapping.ToAPIReviewSession(*saved)), nil
}

func (s *ReviewServiceServer) ListSessions(ctx context.Context, req *connect.Request[italianov1.ListSessionsRequest]) (*connect.Response[italianov1.ListSessionsResponse], error) {
	if req.Msg == nil {
		return nil, invalidArgument("request required")
	}
	query := &repository.ListSessionQuery{
		Pagination: convertPagination(req.Msg.Pagination),
		LearnerID:  req.Msg.LearnerID,
	}
	sessions, total, err := s.sessions.ListSessions(ctx, query)
	if err != nil {
		return nil, err
	}
	page, err := paginationResponse(query.Pagination, total)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&italianov1.ListSessionsResponse{
		Sessions:   lo.Map(sessions, func(session entity.ReviewSession, _ int) *italianov1.ReviewSession { return mapping.ToAPIReviewSession(session) }),
		Pagination: page,
	}), nil
}

// NewReviewServiceHandler returns the mount path and handler for the review service.
func NewReviewServiceHandler(svc *ReviewServiceServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	readOpts := readOnlyOptions(opts)
	handlers := map[string]http.Handler{
		italianov1.ReviewServiceNextCardProcedure:         connect.NewUnaryHandler(italianov1.ReviewServiceNextCardProcedure, svc.NextCard, readOpts...),
		italianov1.ReviewServiceGradeProcedure:            connect.NewUnaryHandler(italianov1.ReviewServiceGradeProcedure, svc.Grade, opts...),
		italianov1.ReviewServicePreviewIntervalsProcedure: connect.NewUnaryHandler(italianov1.ReviewServicePreviewIntervalsProcedure, svc.PreviewIntervals, readOpts...),
		italianov1.ReviewServiceListProgressProcedure:     connect.NewUnaryHandler(italianov1.ReviewServiceListProgressProcedure, svc.ListProgress, readOpts...),
		italianov1.ReviewServiceGetStatsProcedure:         connect.NewUnaryHandler(italianov1.ReviewServiceGetStatsProcedure, svc.GetStats, readOpts...),
		italianov1.ReviewServiceRecordSessionProcedure:    connect.NewUnaryHandler(italianov1.ReviewServiceRecordSessionProcedure, svc.RecordSession, opts...),
		italianov1.ReviewServiceListSessionsProcedure:     connect.NewUnaryHandler(italianov1.ReviewServiceListSessionsProcedure, svc.ListSessions, readOpts...),
	}
	return "/" + italianov1.ReviewServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
