package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EveryTopicHasValidWords(t *testing.T) {
	s := NewStore()
	require.Len(t, s.Topics(), 8)

	for _, topic := range s.Topics() {
		words := s.Lookup(topic.Label)
		require.NotEmpty(t, words, topic.ID)
		for _, w := range words {
			assert.True(t, w.Valid(), "%s: %+v", topic.ID, w)
			assert.Contains(t, strings.ToLower(w.Example), strings.ToLower(w.Word), "%s: example should contain word", topic.ID)
		}
	}
}

func TestStore_UnknownLabelUsesGeneralList(t *testing.T) {
	s := NewStore()

	words := s.Lookup("Dinosaurs")
	require.NotEmpty(t, words)
	assert.Equal(t, "apple", words[0].Word)
	assert.Equal(t, words, s.Lookup(""))
}

func TestStore_LookupMatchesIDLabelAndName(t *testing.T) {
	s := NewStore()

	byLabel := s.Lookup("Food (食物)")
	assert.Equal(t, byLabel, s.Lookup("food"))
	assert.Equal(t, byLabel, s.Lookup("FOOD"))
	assert.Equal(t, "bread", byLabel[0].Word)
}

func TestStore_LookupReturnsCopy(t *testing.T) {
	s := NewStore()

	words := s.Lookup("animals")
	words[0].Word = "changed"
	assert.Equal(t, "panda", s.Lookup("animals")[0].Word)
}

func TestStore_Topic(t *testing.T) {
	s := NewStore()

	topic, ok := s.Topic("Nature")
	require.True(t, ok)
	assert.Equal(t, "🌳", topic.Emoji)

	_, ok = s.Topic("space")
	assert.False(t, ok)
}
