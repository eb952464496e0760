package entity

import "time"

// Card is the next item to study together with its current state and the
// intervals each grade would produce.
type Card struct {
	Item     Item
	Progress *Progress
	Previews []IntervalPreview
}

// ReviewStats summarizes a learner's position in the deck.
type ReviewStats struct {
	DeckSize   int
	Seen       int
	New        int
	Due        int
	Learning   int
	Review     int
	Lapses     int
	NextDueAt  *time.Time
	ComputedAt time.Time
}

// DeckStats describes the outcome of building a deck from a dataset.
type DeckStats struct {
	Entries     int
	Items       int
	Dropped     int
	PerCategory map[Category]int
	LoadedAt    time.Time
}
