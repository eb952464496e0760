package entity

// Entry is one normalized vocabulary record. Kind is decided once when the raw
// record is parsed; verb-only and word-only fields are left empty for the other kind.
type Entry struct {
	Kind        Kind
	Base        string
	Translation string

	// verb forms
	Present []string
	Past    []string

	// word attributes
	Plural  string
	Gender  string
	Subtype string

	// Examples keeps the raw example value. It may be nil, a list of mixed
	// values or anything else the source carried.
	Examples any
}

// VocabularyDataset partitions entries into the fixed category buckets.
type VocabularyDataset struct {
	Verbs        []Entry
	Nouns        []Entry
	Adjectives   []Entry
	Adverbs      []Entry
	Pronouns     []Entry
	Prepositions []Entry
	Conjunctions []Entry
	Expressions  []Entry
}

// Entries returns the entries stored under the given category.
func (d *VocabularyDataset) Entries(category Category) []Entry {
	if bucket := d.bucket(category); bucket != nil {
		return *bucket
	}
	return nil
}

// Append adds an entry to the category bucket. Unknown categories are ignored.
func (d *VocabularyDataset) Append(category Category, entry Entry) {
	if bucket := d.bucket(category); bucket != nil {
		*bucket = append(*bucket, entry)
	}
}

// Len returns the number of entries across all categories.
func (d *VocabularyDataset) Len() int {
	total := 0
	for _, category := range Categories {
		total += len(d.Entries(category))
	}
	return total
}

// Normalize replaces every nil bucket with an empty slice.
func (d *VocabularyDataset) Normalize() {
	for _, category := range Categories {
		if bucket := d.bucket(category); bucket != nil && *bucket == nil {
			*bucket = []Entry{}
		}
	}
}

func (d *VocabularyDataset) bucket(category Category) *[]Entry {
	switch category {
	case CategoryVerbs:
		return &d.Verbs
	case CategoryNouns:
		return &d.Nouns
	case CategoryAdjectives:
		return &d.Adjectives
	case CategoryAdverbs:
		return &d.Adverbs
	case CategoryPronouns:
		return &d.Pronouns
	case CategoryPrepositions:
		return &d.Prepositions
	case CategoryConjunctions:
		return &d.Conjunctions
	case CategoryExpressions:
		return &d.Expressions
	default:
		return nil
	}
}
