package usecase

import (
	"reflect"
	"testing"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

func sampleVocabulary() entity.VocabularyDataset {
	return entity.VocabularyDataset{
		Nouns: []entity.Entry{
			{Kind: entity.KindWord, Base: "Casa", Translation: "house", Plural: "case", Gender: "f", Examples: []any{"La casa è grande.", "", 42, "  "}},
			{Kind: entity.KindWord, Base: "casa!", Translation: "home"},
			{Kind: entity.KindWord, Base: "libro", Translation: "book", Gender: "m"},
		},
		Verbs: []entity.Entry{
			{Kind: entity.KindVerb, Base: "essere", Translation: "to be", Present: []string{"sono", "sei", "è", "siamo"}, Past: []string{"stato"}},
			{Kind: entity.KindVerb, Base: "andare", Translation: "to go", Past: []string{"andato"}},
			{Kind: entity.KindVerb, Base: "???", Translation: "nothing"},
		},
		Adverbs: []entity.Entry{
			{Kind: entity.KindWord, Base: "sempre", Translation: "always", Subtype: "time", Examples: "not a list"},
		},
		Expressions: []entity.Entry{
			{Kind: entity.KindWord, Base: "In bocca al lupo", Translation: "good luck"},
		},
	}
}

func TestBuildDeckOrderAndFields(t *testing.T) {
	deck := BuildDeck(sampleVocabulary())

	wantIDs := []string{"essere", "andare", "casa", "libro", "sempre", "in-bocca-al-lupo"}
	gotIDs := make([]string, len(deck))
	for i, item := range deck {
		gotIDs[i] = item.ID
	}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Fatalf("unexpected deck order: got %v want %v", gotIDs, wantIDs)
	}

	essere := deck[0]
	if essere.Kind != entity.KindVerb || essere.Prompt != "essere" || essere.Answer != "to be" {
		t.Fatalf("unexpected verb item: %+v", essere)
	}
	if essere.Hint != "sono, sei, è" {
		t.Fatalf("expected first three present forms, got %q", essere.Hint)
	}
	if deck[1].Hint != "andato" {
		t.Fatalf("expected past form hint, got %q", deck[1].Hint)
	}

	casa := deck[2]
	if casa.Category != entity.CategoryNouns || casa.Hint != "case" {
		t.Fatalf("unexpected noun item: %+v", casa)
	}
	if !reflect.DeepEqual(casa.Examples, []string{"La casa è grande."}) {
		t.Fatalf("examples should keep only non-empty strings, got %#v", casa.Examples)
	}
	if deck[3].Hint != "m" {
		t.Fatalf("expected gender hint, got %q", deck[3].Hint)
	}
	if deck[4].Hint != "time" {
		t.Fatalf("expected subtype hint, got %q", deck[4].Hint)
	}
	if deck[4].Examples == nil || len(deck[4].Examples) != 0 {
		t.Fatalf("non-list examples should give an empty slice, got %#v", deck[4].Examples)
	}
	if deck[5].Hint != "" {
		t.Fatalf("expected no hint, got %q", deck[5].Hint)
	}
}

func TestBuildDeckIsIdempotent(t *testing.T) {
	vocabulary := sampleVocabulary()
	first := BuildDeck(vocabulary)
	second := BuildDeck(vocabulary)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("deck build not idempotent:\n%#v\n%#v", first, second)
	}
}

func TestBuildDeckSlugCollisionFirstWins(t *testing.T) {
	deck := BuildDeck(sampleVocabulary())
	count := 0
	for _, item := range deck {
		if item.ID == "casa" {
			count++
			if item.Answer != "house" {
				t.Fatalf("expected the first entry to win, got answer %q", item.Answer)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one casa item, got %d", count)
	}
}

func TestBuildDeckCollisionAcrossCategories(t *testing.T) {
	deck := BuildDeck(entity.VocabularyDataset{
		Verbs: []entity.Entry{{Base: "dovere", Translation: "must"}},
		Nouns: []entity.Entry{{Base: "Dovere", Translation: "duty"}},
	})
	if len(deck) != 1 {
		t.Fatalf("expected one item, got %d", len(deck))
	}
	if deck[0].Kind != entity.KindVerb || deck[0].Answer != "must" {
		t.Fatalf("verb should win as it comes first in deck order, got %+v", deck[0])
	}
}

func TestBuildDeckEmpty(t *testing.T) {
	deck := BuildDeck(entity.VocabularyDataset{})
	if deck == nil || len(deck) != 0 {
		t.Fatalf("expected empty non-nil deck, got %#v", deck)
	}
}

func TestBuildDeckKindFromEntry(t *testing.T) {
	deck := BuildDeck(entity.VocabularyDataset{
		Expressions: []entity.Entry{{Kind: entity.KindVerb, Base: "farcela", Translation: "to make it", Present: []string{"ce la faccio"}}},
	})
	if len(deck) != 1 || deck[0].Kind != entity.KindVerb || deck[0].Hint != "ce la faccio" {
		t.Fatalf("verb-kind entry outside verbs should keep verb semantics, got %+v", deck)
	}
}
