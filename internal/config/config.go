package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AI provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Host     string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	HTTPPort int    `envconfig:"SERVER_HTTP_PORT" default:"8080"`
	GRPCPort int    `envconfig:"SERVER_GRPC_PORT" default:"9090"`

	Environment string `envconfig:"SERVER_ENV" default:"development"`

	// Timeouts
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// AI Services
	AIProvider       string        `envconfig:"AI_PROVIDER" default:"gemini"`
	AIRequestTimeout time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"20s"`

	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`
	GeminiSABase64    string `envconfig:"GEMINI_SA_BASE64"`
	GCPLocation       string `envconfig:"GCP_LOCATION" default:"us-central1"`
	GeminiModel       string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	GeminiTTSModel    string `envconfig:"GEMINI_TTS_MODEL" default:"gemini-2.5-flash-preview-tts"`
	GeminiGraderModel string `envconfig:"GEMINI_GRADER_MODEL" default:"gemini-2.5-flash-lite"`
	GeminiVoiceUS     string `envconfig:"GEMINI_VOICE_US" default:"Kore"`
	GeminiVoiceUK     string `envconfig:"GEMINI_VOICE_UK" default:"Puck"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel    string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAITTSModel string `envconfig:"OPENAI_TTS_MODEL" default:"tts-1"`
	OpenAIVoiceUS  string `envconfig:"OPENAI_VOICE_US" default:"nova"`
	OpenAIVoiceUK  string `envconfig:"OPENAI_VOICE_UK" default:"fable"`

	// Learning
	VocabWordCount      int           `envconfig:"VOCAB_WORD_COUNT" default:"5"`
	VocabMaxWordCount   int           `envconfig:"VOCAB_MAX_WORD_COUNT" default:"20"`
	GradeMismatchScore  int           `envconfig:"GRADE_FALLBACK_MISMATCH_SCORE" default:"40"`
	LocalSpeechRate     float64       `envconfig:"LOCAL_SPEECH_RATE" default:"0.8"`
	AudioCacheTTL       time.Duration `envconfig:"AUDIO_CACHE_TTL" default:"24h"`
	AttemptHistoryLimit int           `envconfig:"ATTEMPT_HISTORY_LIMIT" default:"50"`
	AttemptMemoryTTL    time.Duration `envconfig:"ATTEMPT_MEMORY_TTL" default:"1h"`
	WSMaxMessageBytes   int64         `envconfig:"WS_MAX_MESSAGE_BYTES" default:"65536"`
	WSSendBuffer        int           `envconfig:"WS_SEND_BUFFER" default:"64"`
	WSPlaybackGrace     time.Duration `envconfig:"WS_PLAYBACK_GRACE" default:"2s"`

	// Redis
	RedisURL string `envconfig:"REDIS_URL"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Cloudflare R2
	CloudflareAccessKeyID string `envconfig:"CLOUDFLARE_ACCESS_KEY_ID"`
	CloudflareSecretKey   string `envconfig:"CLOUDFLARE_SECRET_ACCESS_KEY"`
	CloudflareR2Endpoint  string `envconfig:"CLOUDFLARE_R2_ENDPOINT"`
	CloudflarePublicURL   string `envconfig:"CLOUDFLARE_PUBLIC_URL"`
	CloudflareBucketName  string `envconfig:"CLOUDFLARE_BUCKET_NAME"`

	// Google Cloud Storage
	GCSBucketName string `envconfig:"GCS_BUCKET_NAME"`

	// Pub/Sub
	PubSubProjectID string `envconfig:"PUBSUB_PROJECT_ID"`
	PubSubTopicID   string `envconfig:"PUBSUB_TOPIC_ID" default:"practice-attempts"`

	// CORS
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	CORSAllowedMethods []string `envconfig:"CORS_ALLOWED_METHODS" default:"GET,POST,OPTIONS"`
	CORSAllowedHeaders []string `envconfig:"CORS_ALLOWED_HEADERS" default:"Accept,Content-Type,X-Request-ID"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	c.AIProvider = strings.ToLower(strings.TrimSpace(c.AIProvider))
	switch c.AIProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("AI_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.AIProvider)
	}
	if c.VocabWordCount <= 0 {
		return fmt.Errorf("VOCAB_WORD_COUNT must be positive")
	}
	if c.VocabMaxWordCount < c.VocabWordCount {
		return fmt.Errorf("VOCAB_MAX_WORD_COUNT must be >= VOCAB_WORD_COUNT")
	}
	if c.GradeMismatchScore < 0 || c.GradeMismatchScore > 100 {
		return fmt.Errorf("GRADE_FALLBACK_MISMATCH_SCORE must be within 0..100")
	}
	if c.LocalSpeechRate <= 0 {
		return fmt.Errorf("LOCAL_SPEECH_RATE must be positive")
	}
	return nil
}

// HasAICredential reports whether the selected provider has a credential.
// Running without one is the supported fallback mode.
func (c *Config) HasAICredential() bool {
	if c.AIProvider == ProviderOpenAI {
		return c.OpenAIAPIKey != ""
	}
	return c.GeminiAPIKey != "" || c.GeminiSABase64 != ""
}

// HasR2 reports whether Cloudflare R2 is fully configured.
func (c *Config) HasR2() bool {
	return c.CloudflareAccessKeyID != "" && c.CloudflareSecretKey != "" &&
		c.CloudflareR2Endpoint != "" && c.CloudflareBucketName != ""
}

// HTTPAddress returns the HTTP server address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// GRPCAddress returns the gRPC server address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
