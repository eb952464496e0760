package entity

import (
	"strings"
	"unicode"
)

// Item is a flashcard derived from one vocabulary entry. Items are value
// objects identified only by ID.
type Item struct {
	ID       string
	Kind     Kind
	Prompt   string
	Answer   string
	Category Category
	Hint     string
	Examples []string
}

// Slugify derives a stable identifier from free text: lowercase, every run of
// non-alphanumeric runes collapsed into one "-" and no leading or trailing "-".
// The result is empty when the text has no letters or digits.
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSep := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
