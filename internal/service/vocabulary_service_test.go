package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windfall/kidvocab_service/internal/client"
	"github.com/windfall/kidvocab_service/internal/content"
	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/logger"
)

func newVocabularyService(gen TextGenerator) *VocabularyService {
	return NewVocabularyService(gen, content.NewStore(), VocabularyOptions{
		DefaultCount: 5,
		MaxCount:     20,
		Timeout:      time.Second,
	}, logger.NewNop())
}

func respondWith(text string, err error) *textGeneratorMock {
	return &textGeneratorMock{
		GenerateJSONFunc: func(ctx context.Context, prompt string, shape client.Shape) (string, error) {
			return text, err
		},
	}
}

func TestFetchVocabulary_NoCredential_EveryTopic(t *testing.T) {
	svc := newVocabularyService(nil)

	for _, topic := range content.NewStore().Topics() {
		t.Run(topic.ID, func(t *testing.T) {
			words := svc.FetchVocabulary(context.Background(), topic.Label, 0)
			require.NotEmpty(t, words)
			assert.LessOrEqual(t, len(words), 5)
			for _, w := range words {
				assert.True(t, w.Valid(), "invalid entry %+v", w)
			}
		})
	}
}

func TestFetchVocabulary_UnknownTopicUsesDefaultList(t *testing.T) {
	words := newVocabularyService(nil).FetchVocabulary(context.Background(), "Dinosaurs", 3)
	require.Len(t, words, 3)
	assert.Equal(t, "apple", words[0].Word)
}

func TestFetchVocabulary_FailuresConvergeOnFallback(t *testing.T) {
	topic := "Animals (动物)"
	want := newVocabularyService(nil).FetchVocabulary(context.Background(), topic, 5)

	tests := []struct {
		name string
		gen  *textGeneratorMock
	}{
		{"network failure", respondWith("", errors.AIService("boom", fmt.Errorf("dial tcp")))},
		{"malformed json", respondWith(`[{"word": "cat",`, nil)},
		{"empty array", respondWith(`[]`, nil)},
		{"empty text", respondWith("", nil)},
		{"only invalid entries", respondWith(`[{"word":"cat","translation":"","example":""}]`, nil)},
		{"wrong shape", respondWith(`{"score": 3}`, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newVocabularyService(tt.gen).Fetch(context.Background(), topic, 5)
			assert.Equal(t, want, res.Words)
			assert.Equal(t, SourceFallback, res.Source)
			assert.Equal(t, 1, tt.gen.Calls(), "exactly one request, no retry")
		})
	}
}

func TestFetchVocabulary_Remote(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"array", `[{"word":"cat","translation":"猫","example":"The cat sleeps.","phonetic":"/kæt/"},{"word":"dog","translation":"狗","example":"A dog runs."}]`},
		{"fenced", "```json\n[{\"word\":\"cat\",\"translation\":\"猫\",\"example\":\"The cat sleeps.\"},{\"word\":\"dog\",\"translation\":\"狗\",\"example\":\"A dog runs.\"}]\n```"},
		{"wrapped", `{"words":[{"word":"cat","translation":"猫","example":"The cat sleeps."},{"word":"dog","translation":"狗","example":"A dog runs."}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := respondWith(tt.text, nil)
			res := newVocabularyService(gen).Fetch(context.Background(), "Animals (动物)", 5)

			assert.Equal(t, SourceRemote, res.Source)
			require.Len(t, res.Words, 2)
			assert.Equal(t, "cat", res.Words[0].Word)
			assert.Equal(t, "dog", res.Words[1].Word)
		})
	}
}

func TestFetchVocabulary_DropsInvalidAndTruncates(t *testing.T) {
	gen := respondWith(`[
		{"word":"cat","translation":"猫","example":"The cat sleeps."},
		{"word":"","translation":"空","example":"Nothing."},
		{"word":"dog","translation":"狗","example":"A dog runs."},
		{"word":"fish","translation":"鱼","example":"A fish swims."}
	]`, nil)

	words := newVocabularyService(gen).FetchVocabulary(context.Background(), "Animals (动物)", 2)
	require.Len(t, words, 2)
	assert.Equal(t, "cat", words[0].Word)
	assert.Equal(t, "dog", words[1].Word)
}

func TestFetchVocabulary_PromptAndCountClamp(t *testing.T) {
	gen := respondWith(`[]`, nil)
	svc := newVocabularyService(gen)

	svc.FetchVocabulary(context.Background(), "Food (食物)", 99)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, client.ShapeWordList, gen.calls[0].Shape)
	assert.Contains(t, gen.calls[0].Prompt, "Generate 20 English vocabulary words")
	assert.Contains(t, gen.calls[0].Prompt, `"Food (食物)"`)
}

func TestFetchVocabulary_TimeoutFallsBack(t *testing.T) {
	gen := &textGeneratorMock{
		GenerateJSONFunc: func(ctx context.Context, prompt string, shape client.Shape) (string, error) {
			<-ctx.Done()
			return "", errors.Wrap(errors.ErrTimeout, "deadline", ctx.Err())
		},
	}
	svc := NewVocabularyService(gen, content.NewStore(), VocabularyOptions{Timeout: 10 * time.Millisecond}, logger.NewNop())

	res := svc.Fetch(context.Background(), "Colors (颜色)", 0)
	assert.Equal(t, SourceFallback, res.Source)
	assert.NotEmpty(t, res.Words)
}
