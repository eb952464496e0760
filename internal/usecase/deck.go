package usecase

import (
	"strings"

	"github.com/samber/lo"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

const maxHintPresentForms = 3

// BuildDeck derives the flashcard deck from a vocabulary dataset. Verbs come
// first, then the remaining categories in entity.Categories order, each in
// source order. Entries whose base form slugifies to "" are skipped. When two
// entries share an ID the first one wins.
func BuildDeck(vocabulary entity.VocabularyDataset) []entity.Item {
	deck := make([]entity.Item, 0, vocabulary.Len())
	seen := make(map[string]struct{}, vocabulary.Len())
	for _, category := range entity.Categories {
		for _, entry := range vocabulary.Entries(category) {
			item, ok := buildItem(category, entry)
			if !ok {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			deck = append(deck, item)
		}
	}
	return deck
}

func buildItem(category entity.Category, entry entity.Entry) (entity.Item, bool) {
	prompt := strings.TrimSpace(entry.Base)
	id := entity.Slugify(prompt)
	if id == "" {
		return entity.Item{}, false
	}

	kind := entry.Kind
	if category == entity.CategoryVerbs {
		kind = entity.KindVerb
	}
	if kind != entity.KindVerb {
		kind = entity.KindWord
	}

	item := entity.Item{
		ID:       id,
		Kind:     kind,
		Prompt:   prompt,
		Answer:   strings.TrimSpace(entry.Translation),
		Category: category,
		Examples: exampleSentences(entry.Examples),
	}
	switch kind {
	case entity.KindVerb:
		item.Hint = verbHint(entry)
	default:
		item.Hint = wordHint(entry)
	}
	return item, true
}

func verbHint(entry entity.Entry) string {
	present := nonEmpty(entry.Present)
	if len(present) > 0 {
		if len(present) > maxHintPresentForms {
			present = present[:maxHintPresentForms]
		}
		return strings.Join(present, ", ")
	}
	if past := nonEmpty(entry.Past); len(past) > 0 {
		return past[0]
	}
	return ""
}

func wordHint(entry entity.Entry) string {
	for _, candidate := range []string{entry.Plural, entry.Gender, entry.Subtype} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// exampleSentences keeps the non-empty strings of a raw example list.
func exampleSentences(raw any) []string {
	var values []any
	switch v := raw.(type) {
	case []any:
		values = v
	case []string:
		values = lo.ToAnySlice(v)
	default:
		return []string{}
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		str, ok := value.(string)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(str); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func nonEmpty(values []string) []string {
	return lo.FilterMap(values, func(v string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(v)
		return trimmed, trimmed != ""
	})
}
