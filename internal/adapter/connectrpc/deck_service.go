package connectrpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/samber/lo"

	italianov1 "github.com/VastSea0/italiano-sub000/api/italiano/v1"
	"github.com/VastSea0/italiano-sub000/internal/adapter/mapping"
	"github.com/VastSea0/italiano-sub000/internal/entity"
)

// DeckCatalog is the deck state the deck service reads and reloads.
type DeckCatalog interface {
	Filter(category entity.Category, kind entity.Kind) []entity.Item
	Item(id string) (entity.Item, bool)
	Reload(ctx context.Context) (entity.DeckStats, error)
}

type DeckServiceServer struct {
	catalog DeckCatalog
}

func NewDeckServiceServer(catalog DeckCatalog) *DeckServiceServer {
	return &DeckServiceServer{catalog: catalog}
}

func (s *DeckServiceServer) ListItems(ctx context.Context, req *connect.Request[italianov1.ListItemsRequest]) (*connect.Response[italianov1.ListItemsResponse], error) {
	if req.Msg == nil {
		return nil, invalidArgument("request required")
	}
	msg := req.Msg

	category := entity.ParseCategory(msg.Category)
	if strings.TrimSpace(msg.Category) != "" && category == entity.CategoryUnspecified {
		return nil, invalidArgument("unknown category " + msg.Category)
	}
	var kind entity.Kind
	if strings.TrimSpace(msg.Kind) != "" {
		kind = entity.ParseKind(msg.Kind)
	}

	items := s.catalog.Filter(category, kind)
	pagination := convertPagination(msg.Pagination)
	start := min(int(pagination.Offset()), len(items))
	end := min(start+int(pagination.Limit()), len(items))

	page, err := paginationResponse(pagination, int64(len(items)))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&italianov1.ListItemsResponse{
		Items:      lo.Map(items[start:end], func(item entity.Item, _ int) *italianov1.Item { return mapping.ToAPIItem(item) }),
		Pagination: page,
	}), nil
}

func (s *DeckServiceServer) GetItem(ctx context.Context, req *connect.Request[italianov1.GetItemRequest]) (*connect.Response[italianov1.Item], error) {
	if req.Msg == nil || strings.TrimSpace(req.Msg.ID) == "" {
		return nil, entity.ErrInvalidItemID
	}
	item, ok := s.catalog.Item(strings.TrimSpace(req.Msg.ID))
	if !ok {
		return nil, entity.ErrItemNotFound
	}
	return connect.NewResponse(mapping.ToAPIItem(item)), nil
}

func (s *DeckServiceServer) ReloadDeck(ctx context.Context, req *connect.Request[italianov1.ReloadDeckRequest]) (*connect.Response[italianov1.DeckStats], error) {
	stats, err := s.catalog.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(mapping.ToAPIDeckStats(stats)), nil
}

// NewDeckServiceHandler returns the mount path and handler for the deck service.
func NewDeckServiceHandler(svc *DeckServiceServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	readOpts := readOnlyOptions(opts)
	listItems := connect.NewUnaryHandler(italianov1.DeckServiceListItemsProcedure, svc.ListItems, readOpts...)
	getItem := connect.NewUnaryHandler(italianov1.DeckServiceGetItemProcedure, svc.GetItem, readOpts...)
	reloadDeck := connect.NewUnaryHandler(italianov1.DeckServiceReloadDeckProcedure, svc.ReloadDeck, opts...)

	return "/" + italianov1.DeckServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case italianov1.DeckServiceListItemsProcedure:
			listItems.ServeHTTP(w, r)
		case italianov1.DeckServiceGetItemProcedure:
			getItem.ServeHTTP(w, r)
		case italianov1.DeckServiceReloadDeckProcedure:
			reloadDeck.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
