package entity

import "strings"

// Category is the part-of-speech bucket a vocabulary entry belongs to.
type Category string

const (
	CategoryUnspecified  Category = ""
	CategoryVerbs        Category = "verbs"
	CategoryNouns        Category = "nouns"
	CategoryAdjectives   Category = "adjectives"
	CategoryAdverbs      Category = "adverbs"
	CategoryPronouns     Category = "pronouns"
	CategoryPrepositions Category = "prepositions"
	CategoryConjunctions Category = "conjunctions"
	CategoryExpressions  Category = "expressions"
)

// Categories lists every category in deck order. Verbs always come first.
var Categories = []Category{
	CategoryVerbs,
	CategoryNouns,
	CategoryAdjectives,
	CategoryAdverbs,
	CategoryPronouns,
	CategoryPrepositions,
	CategoryConjunctions,
	CategoryExpressions,
}

// Code returns the lowercase category code.
func (c Category) Code() string {
	return strings.TrimSpace(string(c))
}

// Valid reports whether the category is one of the known buckets.
func (c Category) Valid() bool {
	return c.Rank() >= 0
}

// Rank returns the position of the category in deck order, or -1 when unknown.
func (c Category) Rank() int {
	for i, known := range Categories {
		if known == c {
			return i
		}
	}
	return -1
}

// ParseCategory converts a raw dataset key into a Category. English and Italian
// names are both accepted; unknown keys map to CategoryUnspecified.
func ParseCategory(raw string) Category {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "verbs", "verb", "verbi":
		return CategoryVerbs
	case "nouns", "noun", "nomi", "sostantivi":
		return CategoryNouns
	case "adjectives", "adjective", "aggettivi":
		return CategoryAdjectives
	case "adverbs", "adverb", "avverbi":
		return CategoryAdverbs
	case "pronouns", "pronoun", "pronomi":
		return CategoryPronouns
	case "prepositions", "preposition", "preposizioni":
		return CategoryPrepositions
	case "conjunctions", "conjunction", "congiunzioni":
		return CategoryConjunctions
	case "expressions", "expression", "espressioni", "phrases":
		return CategoryExpressions
	default:
		return CategoryUnspecified
	}
}

// Kind discriminates verb entries from every other word class.
type Kind string

const (
	KindVerb Kind = "verb"
	KindWord Kind = "word"
)

// ParseKind returns the kind for a raw value, defaulting to KindWord.
func ParseKind(raw string) Kind {
	if strings.EqualFold(strings.TrimSpace(raw), string(KindVerb)) {
		return KindVerb
	}
	return KindWord
}
