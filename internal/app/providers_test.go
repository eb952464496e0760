package app

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/VastSea0/italiano-sub000/internal/adapter/dataset"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/config"
)

func TestNewVocabularySource(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{Vocabulary: config.VocabularyConfig{Path: "data/vocabulary.json"}}
	source, cleanup, err := NewVocabularySource(cfg, logger)
	if err != nil {
		t.Fatalf("file source: %v", err)
	}
	cleanup()
	if fs, ok := source.(*dataset.FileSource); !ok || fs.Path != "data/vocabulary.json" {
		t.Fatalf("expected file source, got %#v", source)
	}

	cfg.Vocabulary.URL = " https://example.com/vocabulary.json "
	cfg.Vocabulary.FetchTimeout = 3 * time.Second
	cfg.Vocabulary.CacheTTL = time.Hour
	source, cleanup, err = NewVocabularySource(cfg, logger)
	if err != nil {
		t.Fatalf("http source: %v", err)
	}
	cleanup()
	hs, ok := source.(*dataset.HTTPSource)
	if !ok || hs.URL != "https://example.com/vocabulary.json" || hs.Cache != nil || hs.Client.Timeout != 3*time.Second {
		t.Fatalf("url should win over path without a cache, got %#v", source)
	}

	if _, _, err := NewVocabularySource(&config.Config{}, logger); err == nil {
		t.Fatalf("expected error without path or url")
	}
}

func TestNewReloaderFollowsConfig(t *testing.T) {
	cfg := &config.Config{}
	if NewReloader(cfg, nil, logrus.New()).Enabled() {
		t.Fatalf("zero interval should disable reloads")
	}
	cfg.Vocabulary.ReloadInterval = time.Minute
	if !NewReloader(cfg, nil, logrus.New()).Enabled() {
		t.Fatalf("positive interval should enable reloads")
	}
}
