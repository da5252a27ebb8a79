package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/model"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewGeminiClient(t.Context(), "test-key", GeminiOptions{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestNewGeminiClient_MissingKey(t *testing.T) {
	_, err := NewGeminiClient(t.Context(), "", GeminiOptions{})
	assert.True(t, errors.Is(err, errors.ErrMissingCredential))
}

func TestNewGeminiClientWithServiceAccount_Missing(t *testing.T) {
	_, err := NewGeminiClientWithServiceAccount(t.Context(), nil, "us-central1", GeminiOptions{})
	assert.True(t, errors.Is(err, errors.ErrMissingCredential))
}

func TestGeminiClient_GenerateJSON(t *testing.T) {
	var body map[string]interface{}
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-2.5-flash:generateContent"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"[{\"word\":\"cat\",\"translation\":\"猫\",\"example\":\"A cat naps.\"}]"}]}}]}`)
	})

	text, err := c.GenerateJSON(t.Context(), "animals", ShapeWordList)
	require.NoError(t, err)
	assert.Contains(t, text, `"word":"cat"`)

	cfg, ok := body["generationConfig"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "application/json", cfg["responseMimeType"])
}

func TestGeminiClient_GenerateSpeech(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xff, 0x7f}
	var body map[string]interface{}
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-2.5-flash-preview-tts:generateContent"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"role":"model","parts":[{"inlineData":{"mimeType":"audio/L16;rate=24000","data":%q}}]}}]}`,
			base64.StdEncoding.EncodeToString(pcm))
	})

	data, err := c.GenerateSpeech(t.Context(), SpeechRequest{Text: "apple", Prompt: "Say apple", Accent: model.AccentUK})
	require.NoError(t, err)
	assert.Equal(t, pcm, data)
	assert.Contains(t, fmt.Sprint(body["generationConfig"]), "Puck")
}

func TestGeminiClient_GenerateSpeech_NoAudio(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"sorry"}]}}]}`)
	})

	_, err := c.GenerateSpeech(t.Context(), SpeechRequest{Text: "apple", Accent: model.AccentUS})
	assert.True(t, errors.Is(err, errors.ErrUnparsableResponse))
}

func TestGeminiClient_ServiceError(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	})

	_, err := c.GenerateJSON(t.Context(), "animals", ShapeWordList)
	assert.True(t, errors.Is(err, errors.ErrAIService))
}
