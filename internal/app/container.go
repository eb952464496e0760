package app

import (
	"entgo.io/ent/dialect"
	"github.com/sirupsen/logrus"

	"github.com/VastSea0/italiano-sub000/internal/infrastructure/config"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/scheduler"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/server"
	"github.com/VastSea0/italiano-sub000/internal/usecase"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Driver   dialect.Driver
	Catalog  *usecase.DeckCatalog
	Reloader *scheduler.Reloader
	Server   *server.Server
}
