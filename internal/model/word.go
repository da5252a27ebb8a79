package model

import (
	"regexp"
	"strings"
)

// WordEntry is a single vocabulary item shown on a card.
type WordEntry struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Example     string `json:"example"`
	Phonetic    string `json:"phonetic,omitempty"`
}

// Valid reports whether the required fields are present.
func (w WordEntry) Valid() bool {
	return strings.TrimSpace(w.Word) != "" &&
		strings.TrimSpace(w.Translation) != "" &&
		strings.TrimSpace(w.Example) != ""
}

const blank = "_____"

// MaskedExample returns the example sentence with every occurrence of the word
// blanked out, ignoring case. Used by the spelling drill.
func (w WordEntry) MaskedExample() string {
	word := strings.TrimSpace(w.Word)
	if word == "" {
		return w.Example
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))
	return re.ReplaceAllString(w.Example, blank)
}

// Hint shows the first revealed letters of the word and hides the rest.
func (w WordEntry) Hint(revealed int) string {
	letters := []rune(w.Word)
	out := make([]string, len(letters))
	for i, r := range letters {
		if i < revealed {
			out[i] = string(r)
		} else {
			out[i] = "_"
		}
	}
	return strings.Join(out, " ")
}

// CheckSpelling compares an answer against the word, ignoring case and
// surrounding whitespace.
func (w WordEntry) CheckSpelling(input string) bool {
	return strings.ToLower(strings.TrimSpace(input)) == strings.ToLower(strings.TrimSpace(w.Word))
}

// Topic is a thematic vocabulary category.
type Topic struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// Name returns the English part of a bilingual label such as "Animals (动物)".
func (t Topic) Name() string {
	if i := strings.Index(t.Label, "("); i > 0 {
		return strings.TrimSpace(t.Label[:i])
	}
	return strings.TrimSpace(t.Label)
}
