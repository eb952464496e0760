package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/VastSea0/italiano-sub000/internal/adapter/cache"
	"github.com/VastSea0/italiano-sub000/internal/adapter/dataset"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/config"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/scheduler"
	"github.com/VastSea0/italiano-sub000/internal/repository"
	"github.com/VastSea0/italiano-sub000/internal/usecase"
)

// NewVocabularySource picks the deck source. A configured URL wins over the
// local path; the Redis cache is attached only to remote sources.
func NewVocabularySource(cfg *config.Config, logger *logrus.Logger) (repository.VocabularySource, func(), error) {
	vocab := cfg.Vocabulary
	url := strings.TrimSpace(vocab.URL)
	if url == "" {
		path := strings.TrimSpace(vocab.Path)
		if path == "" {
			return nil, nil, fmt.Errorf("vocabulary: either path or url must be configured")
		}
		return &dataset.FileSource{Path: path}, func() {}, nil
	}

	source := &dataset.HTTPSource{
		URL:      url,
		Client:   &http.Client{Timeout: vocab.FetchTimeout},
		CacheTTL: vocab.CacheTTL,
		Logger:   logger,
	}
	cleanup := func() {}
	if redisURL := strings.TrimSpace(cfg.Redis.URL); redisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), vocab.FetchTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		source.Cache = rc
		cleanup = func() {
			if err := rc.Close(); err != nil {
				logger.WithError(err).Warn("close redis")
			}
		}
	}
	return source, cleanup, nil
}

// NewReloader schedules periodic deck reloads from the vocabulary config.
func NewReloader(cfg *config.Config, catalog *usecase.DeckCatalog, logger *logrus.Logger) *scheduler.Reloader {
	return scheduler.NewReloader(catalog, cfg.Vocabulary.ReloadInterval, cfg.Vocabulary.FetchTimeout, logger)
}
