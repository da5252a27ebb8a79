package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, ProviderGemini, cfg.AIProvider)
	assert.Equal(t, 5, cfg.VocabWordCount)
	assert.Equal(t, 40, cfg.GradeMismatchScore)
	assert.Equal(t, 0.8, cfg.LocalSpeechRate)
	assert.Equal(t, 20*time.Second, cfg.AIRequestTimeout)
	assert.Equal(t, "Kore", cfg.GeminiVoiceUS)
	assert.Equal(t, "Puck", cfg.GeminiVoiceUK)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddress())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("VOCAB_WORD_COUNT", "8")
	t.Setenv("GRADE_FALLBACK_MISMATCH_SCORE", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.AIProvider)
	assert.True(t, cfg.HasAICredential())
	assert.Equal(t, 8, cfg.VocabWordCount)
	assert.Equal(t, 0, cfg.GradeMismatchScore)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown provider", "AI_PROVIDER", "claude"},
		{"zero word count", "VOCAB_WORD_COUNT", "0"},
		{"score above range", "GRADE_FALLBACK_MISMATCH_SCORE", "101"},
		{"negative speech rate", "LOCAL_SPEECH_RATE", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestHasAICredential(t *testing.T) {
	cfg := &Config{AIProvider: ProviderGemini}
	assert.False(t, cfg.HasAICredential())

	cfg.GeminiSABase64 = "e30="
	assert.True(t, cfg.HasAICredential())

	cfg = &Config{AIProvider: ProviderOpenAI, GeminiAPIKey: "key"}
	assert.False(t, cfg.HasAICredential())
}

func TestHasR2(t *testing.T) {
	cfg := &Config{
		CloudflareAccessKeyID: "id",
		CloudflareSecretKey:   "secret",
		CloudflareR2Endpoint:  "https://r2.example",
	}
	assert.False(t, cfg.HasR2())

	cfg.CloudflareBucketName = "clips"
	assert.True(t, cfg.HasR2())
}
