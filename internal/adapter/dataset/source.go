package dataset

import (
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/repository"
)

// maxPayloadBytes bounds remote vocabulary downloads.
const maxPayloadBytes = 64 << 20

// FileSource loads a JSON or xlsx vocabulary file from disk.
type FileSource struct {
	Path string
}

var _ repository.VocabularySource = (*FileSource)(nil)

func (s *FileSource) Load(ctx context.Context) (entity.VocabularyDataset, error) {
	if err := ctx.Err(); err != nil {
		return entity.VocabularyDataset{}, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return entity.VocabularyDataset{}, fmt.Errorf("%w: read %s: %v", entity.ErrVocabularySource, s.Path, err)
	}
	return DecodeBytes(data)
}

// Cache stores the last good remote payload.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// HTTPSource fetches the vocabulary over HTTP. With a Cache configured, a
// successful fetch is stored and reused when the upstream is unavailable.
type HTTPSource struct {
	URL      string
	Client   *http.Client
	Cache    Cache
	CacheTTL time.Duration
	Logger   *logrus.Logger
}

var _ repository.VocabularySource = (*HTTPSource)(nil)

func (s *HTTPSource) Load(ctx context.Context) (entity.VocabularyDataset, error) {
	data, fetchErr := s.fetch(ctx)
	if fetchErr == nil {
		dataset, err := DecodeBytes(data)
		if err != nil {
			return entity.VocabularyDataset{}, err
		}
		s.store(ctx, data)
		return dataset, nil
	}

	if cached, ok := s.cached(ctx); ok {
		s.logger().WithError(fetchErr).WithField("url", s.URL).Warn("vocabulary fetch failed, using cached copy")
		return DecodeBytes(cached)
	}
	return entity.VocabularyDataset{}, fetchErr
}

// CacheKey names the cache entry for a source URL.
func CacheKey(url string) string {
	return fmt.Sprintf("vocabulary:%08x", crc32.ChecksumIEEE([]byte(url)))
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", entity.ErrVocabularySource, err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrVocabularySource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", entity.ErrVocabularySource, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", entity.ErrVocabularySource, err)
	}
	return data, nil
}

func (s *HTTPSource) store(ctx context.Context, data []byte) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, CacheKey(s.URL), data, s.CacheTTL); err != nil {
		s.logger().WithError(err).Warn("store vocabulary in cache")
	}
}

func (s *HTTPSource) cached(ctx context.Context) ([]byte, bool) {
	if s.Cache == nil {
		return nil, false
	}
	data, ok, err := s.Cache.Get(ctx, CacheKey(s.URL))
	if err != nil {
		s.logger().WithError(err).Warn("read vocabulary from cache")
		return nil, false
	}
	return data, ok
}

func (s *HTTPSource) logger() *logrus.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logrus.StandardLogger()
}
