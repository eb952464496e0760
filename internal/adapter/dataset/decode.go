// Package dataset loads raw vocabulary files and normalizes them into
// entity.VocabularyDataset.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

// Field aliases accepted by the decoders, most specific first.
var (
	baseKeys        = []string{"word", "base", "italian", "base_form"}
	translationKeys = []string{"translation", "english", "meaning"}
	subtypeKeys     = []string{"subtype", "type"}
)

const infinitiveKey = "infinitive"

// Decode parses a JSON document shaped as {"<category>": [{...}, ...]}.
// Only a malformed top-level document is an error; unknown categories,
// non-array categories and non-object elements are skipped.
func Decode(r io.Reader) (entity.VocabularyDataset, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return entity.VocabularyDataset{}, fmt.Errorf("decode vocabulary: %w", err)
	}

	// Keys are visited in sorted order so aliases of one category merge
	// deterministically.
	var dataset entity.VocabularyDataset
	keys := lo.Keys(raw)
	sort.Strings(keys)
	for _, key := range keys {
		value := raw[key]
		category := entity.ParseCategory(key)
		if !category.Valid() {
			continue
		}
		var elements []json.RawMessage
		if err := json.Unmarshal(value, &elements); err != nil {
			continue
		}
		for _, element := range elements {
			var fields map[string]any
			if err := json.Unmarshal(element, &fields); err != nil || fields == nil {
				continue
			}
			dataset.Append(category, entryFromFields(category, fields))
		}
	}
	dataset.Normalize()
	return dataset, nil
}

// DecodeBytes picks the workbook or JSON decoder from the payload signature.
func DecodeBytes(data []byte) (entity.VocabularyDataset, error) {
	if IsWorkbook(data) {
		return DecodeWorkbook(bytes.NewReader(data))
	}
	return Decode(bytes.NewReader(data))
}

// IsWorkbook reports whether data starts with the zip signature used by xlsx.
func IsWorkbook(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

func entryFromFields(category entity.Category, fields map[string]any) entity.Entry {
	fields = lowerKeys(fields)
	infinitive := stringField(fields, infinitiveKey)

	entry := entity.Entry{
		Kind:        entity.KindWord,
		Base:        stringField(fields, baseKeys...),
		Translation: stringField(fields, translationKeys...),
		Examples:    fields["examples"],
	}
	if category == entity.CategoryVerbs || infinitive != "" {
		entry.Kind = entity.KindVerb
		if infinitive != "" {
			entry.Base = infinitive
		}
		conjugations, _ := fields["conjugations"].(map[string]any)
		conjugations = lowerKeys(conjugations)
		entry.Present = firstList(fields["present"], conjugations["present"])
		entry.Past = firstList(fields["past"], conjugations["past"])
		return entry
	}

	entry.Plural = stringField(fields, "plural")
	entry.Gender = stringField(fields, "gender")
	entry.Subtype = stringField(fields, subtypeKeys...)
	return entry
}

func lowerKeys(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return out
}

func stringField(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := fields[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func firstList(candidates ...any) []string {
	for _, candidate := range candidates {
		if list := stringList(candidate); len(list) > 0 {
			return list
		}
	}
	return nil
}

func stringList(value any) []string {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case []string:
		return stringList(lo.ToAnySlice(v))
	default:
		return nil
	}
}
