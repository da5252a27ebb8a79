package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/client"
	"github.com/windfall/kidvocab_service/internal/content"
	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/model"
)

// VocabularyOptions bounds vocabulary requests.
type VocabularyOptions struct {
	DefaultCount int
	MaxCount     int
	Timeout      time.Duration
}

// VocabularyResult is a word list and where it came from.
type VocabularyResult struct {
	Topic  string            `json:"topic"`
	Words  []model.WordEntry `json:"words"`
	Source Source            `json:"source"`
}

// VocabularyService produces word lists for a topic.
type VocabularyService struct {
	generator TextGenerator
	store     *content.Store
	opts      VocabularyOptions
	log       zerolog.Logger
}

// NewVocabularyService creates a new vocabulary service. A nil generator
// means every request is served from the static store.
func NewVocabularyService(generator TextGenerator, store *content.Store, opts VocabularyOptions, log zerolog.Logger) *VocabularyService {
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = 5
	}
	if opts.MaxCount < opts.DefaultCount {
		opts.MaxCount = opts.DefaultCount
	}
	return &VocabularyService{
		generator: generator,
		store:     store,
		opts:      opts,
		log:       log,
	}
}

// FetchVocabulary returns a non-empty list of valid entries for the topic.
// It never fails.
func (s *VocabularyService) FetchVocabulary(ctx context.Context, topicLabel string, count int) []model.WordEntry {
	return s.Fetch(ctx, topicLabel, count).Words
}

// Fetch is FetchVocabulary with the result's source attached.
func (s *VocabularyService) Fetch(ctx context.Context, topicLabel string, count int) VocabularyResult {
	count = s.normalizeCount(count)

	remote := func(ctx context.Context) (VocabularyResult, error) {
		words, err := s.generate(ctx, topicLabel, count)
		if err != nil {
			return VocabularyResult{}, err
		}
		return VocabularyResult{Topic: topicLabel, Words: words, Source: SourceRemote}, nil
	}
	fallback := func(error) VocabularyResult {
		return VocabularyResult{
			Topic:  topicLabel,
			Words:  truncate(s.store.Lookup(topicLabel), count),
			Source: SourceFallback,
		}
	}

	return WithFallback(ctx, s.log, "fetch_vocabulary", remote, fallback)
}

func (s *VocabularyService) normalizeCount(count int) int {
	if count <= 0 {
		return s.opts.DefaultCount
	}
	if count > s.opts.MaxCount {
		return s.opts.MaxCount
	}
	return count
}

func (s *VocabularyService) generate(ctx context.Context, topicLabel string, count int) ([]model.WordEntry, error) {
	if s.generator == nil {
		return nil, errors.MissingCredential("ai text")
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	text, err := s.generator.GenerateJSON(ctx, vocabularyPrompt(topicLabel, count), client.ShapeWordList)
	if err != nil {
		return nil, err
	}

	words, err := parseWordList(text)
	if err != nil {
		return nil, err
	}

	valid := words[:0]
	for _, w := range words {
		if w.Valid() {
			valid = append(valid, w)
		}
	}
	if len(valid) == 0 {
		return nil, errors.Unparsable("no valid vocabulary entries", nil)
	}

	return truncate(valid, count), nil
}

func vocabularyPrompt(topicLabel string, count int) string {
	return fmt.Sprintf(`Generate %d English vocabulary words from the Chinese Primary School English curriculum (PEP) related to the topic "%s".
For each word, provide:
1. The word itself (simple, suitable for primary students).
2. A concise Chinese translation.
3. A simple English example sentence that contains the word.
4. The IPA phonetic transcription.

Ensure the words are strictly suitable for children learning English (ages 6-12).`, count, topicLabel)
}

// parseWordList accepts a bare JSON array or an object wrapping it as "words".
func parseWordList(text string) ([]model.WordEntry, error) {
	raw := []byte(cleanJSON(text))
	if len(raw) == 0 {
		return nil, errors.Unparsable("empty vocabulary response", nil)
	}

	var words []model.WordEntry
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &words); err != nil {
			return nil, errors.Unparsable("failed to parse vocabulary list", err)
		}
		return words, nil
	}

	var wrapped struct {
		Words []model.WordEntry `json:"words"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.Unparsable("failed to parse vocabulary object", err)
	}
	return wrapped.Words, nil
}

func truncate(words []model.WordEntry, n int) []model.WordEntry {
	if n > 0 && len(words) > n {
		return words[:n]
	}
	return words
}
