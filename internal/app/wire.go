//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/VastSea0/italiano-sub000/internal/adapter/connectrpc"
	"github.com/VastSea0/italiano-sub000/internal/adapter/repository"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/config"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/database"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/server"
	"github.com/VastSea0/italiano-sub000/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.NewDriver,
)

var repositorySet = wire.NewSet(
	repository.NewProgressRepository,
	repository.NewSessionRepository,
	NewVocabularySource,
)

var usecaseSet = wire.NewSet(
	usecase.NewDeckCatalog,
	wire.Bind(new(usecase.Deck), new(*usecase.DeckCatalog)),
	usecase.NewReviewUsecase,
	usecase.NewSessionUsecase,
	NewReloader,
)

var serviceSet = wire.NewSet(
	connectrpc.NewDeckServiceServer,
	connectrpc.NewReviewServiceServer,
	wire.Bind(new(connectrpc.DeckCatalog), new(*usecase.DeckCatalog)),
)

var serverSet = wire.NewSet(
	server.NewLogger,
	server.NewMetrics,
	wire.Bind(new(server.DeckSizer), new(*usecase.DeckCatalog)),
	wire.Bind(new(usecase.GradeRecorder), new(*server.Metrics)),
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
