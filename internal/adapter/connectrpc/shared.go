package connectrpc

import (
	"errors"

	"connectrpc.com/connect"

	italianov1 "github.com/VastSea0/italiano-sub000/api/italiano/v1"
	"github.com/VastSea0/italiano-sub000/internal/repository"
)

func convertPagination(p *italianov1.PaginationRequest) repository.Pagination {
	pageNo := p.GetPageNo()
	if pageNo <= 0 {
		pageNo = 1
	}
	pagination := repository.Pagination{PageNo: pageNo, PageSize: p.GetPageSize()}
	pagination.PageSize = pagination.Limit()
	return pagination
}

func paginationResponse(p repository.Pagination, total int64) (*italianov1.PaginationResponse, error) {
	t, err := safeInt32("total", total)
	if err != nil {
		return nil, err
	}
	return &italianov1.PaginationResponse{PageNo: p.PageNo, PageSize: p.Limit(), Total: t}, nil
}

func invalidArgument(msg string) error {
	return connect.NewError(connect.CodeInvalidArgument, errors.New(msg))
}

// handlerOptions puts the JSON codec ahead of caller supplied options.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

// readOnlyOptions marks procedures as side effect free so clients may use GET.
func readOnlyOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append(opts[:len(opts):len(opts)], connect.WithIdempotency(connect.IdempotencyNoSideEffects))
}
