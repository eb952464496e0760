package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/repository"
)

// DeckCatalog owns the deck for the running process. Every reload rebuilds the
// deck from the source and swaps it in whole; readers never see a partial deck.
type DeckCatalog struct {
	source repository.VocabularySource
	logger *logrus.Logger
	clock  func() time.Time

	mu    sync.RWMutex
	deck  []entity.Item
	index map[string]int
	stats entity.DeckStats
}

// NewDeckCatalog returns an empty catalog. Call Reload to populate it.
func NewDeckCatalog(source repository.VocabularySource, logger *logrus.Logger) *DeckCatalog {
	return &DeckCatalog{
		source: source,
		logger: logger,
		clock:  time.Now,
		deck:   []entity.Item{},
		index:  map[string]int{},
	}
}

// Reload fetches the dataset and rebuilds the deck. On failure the current
// deck stays in place.
func (c *DeckCatalog) Reload(ctx context.Context) (entity.DeckStats, error) {
	vocabulary, err := c.source.Load(ctx)
	if err != nil {
		return entity.DeckStats{}, fmt.Errorf("load vocabulary: %w", err)
	}
	vocabulary.Normalize()

	deck := BuildDeck(vocabulary)
	index := make(map[string]int, len(deck))
	for i, item := range deck {
		index[item.ID] = i
	}

	stats := entity.DeckStats{
		Entries:     vocabulary.Len(),
		Items:       len(deck),
		Dropped:     vocabulary.Len() - len(deck),
		PerCategory: make(map[entity.Category]int, len(entity.Categories)),
		LoadedAt:    c.clock(),
	}
	for _, item := range deck {
		stats.PerCategory[item.Category]++
	}

	c.mu.Lock()
	c.deck = deck
	c.index = index
	c.stats = stats
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"entries": stats.Entries,
			"items":   stats.Items,
			"dropped": stats.Dropped,
		}).Info("deck rebuilt")
	}
	return stats, nil
}

// Deck returns the current deck. The slice is shared and must not be modified.
func (c *DeckCatalog) Deck() []entity.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deck
}

// Item looks up a card by ID.
func (c *DeckCatalog) Item(id string) (entity.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.index[id]
	if !ok {
		return entity.Item{}, false
	}
	return c.deck[idx], true
}

// Filter returns the items matching category and kind. Zero values match everything.
func (c *DeckCatalog) Filter(category entity.Category, kind entity.Kind) []entity.Item {
	deck := c.Deck()
	return lo.Filter(deck, func(item entity.Item, _ int) bool {
		if category != entity.CategoryUnspecified && item.Category != category {
			return false
		}
		return kind == "" || item.Kind == kind
	})
}

// Len returns the number of items in the current deck.
func (c *DeckCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.deck)
}

// Stats returns the statistics of the last successful reload.
func (c *DeckCatalog) Stats() entity.DeckStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
