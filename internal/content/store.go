// Package content holds the curated vocabulary used whenever the generative
// service is unavailable.
package content

import (
	"strings"

	"github.com/windfall/kidvocab_service/internal/model"
)

// Store serves the fixed topic set and the offline word lists.
type Store struct {
	topics  []model.Topic
	words   map[string][]model.WordEntry
	general []model.WordEntry
}

// NewStore creates a store backed by the built-in tables.
func NewStore() *Store {
	return &Store{
		topics:  topics,
		words:   curated,
		general: defaultWords,
	}
}

// Topics returns the topics in display order.
func (s *Store) Topics() []model.Topic {
	out := make([]model.Topic, len(s.topics))
	copy(out, s.topics)
	return out
}

// Topic finds a topic by id.
func (s *Store) Topic(id string) (model.Topic, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, t := range s.topics {
		if t.ID == id {
			return t, true
		}
	}
	return model.Topic{}, false
}

// Resolve matches a topic by label, id or the English part of its label.
func (s *Store) Resolve(label string) (model.Topic, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return model.Topic{}, false
	}
	for _, t := range s.topics {
		if strings.ToLower(t.Label) == key || t.ID == key || strings.ToLower(t.Name()) == key {
			return t, true
		}
	}
	return model.Topic{}, false
}

// Lookup returns the offline word list for a topic label. Unknown labels get
// the general list. The result is never empty and is safe to modify.
func (s *Store) Lookup(label string) []model.WordEntry {
	src := s.general
	if t, ok := s.Resolve(label); ok {
		if words := s.words[t.ID]; len(words) > 0 {
			src = words
		}
	}
	out := make([]model.WordEntry, len(src))
	copy(out, src)
	return out
}
