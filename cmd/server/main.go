package main

import (
	"context"
	"encoding/base64"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/client"
	"github.com/windfall/kidvocab_service/internal/config"
	"github.com/windfall/kidvocab_service/internal/content"
	grpchandler "github.com/windfall/kidvocab_service/internal/handler/grpc"
	"github.com/windfall/kidvocab_service/internal/handler/http"
	"github.com/windfall/kidvocab_service/internal/handler/ws"
	"github.com/windfall/kidvocab_service/internal/logger"
	"github.com/windfall/kidvocab_service/internal/repository"
	"github.com/windfall/kidvocab_service/internal/server"
	"github.com/windfall/kidvocab_service/internal/service"
	"github.com/windfall/kidvocab_service/internal/speech"
)

// generators are the remote model clients. Any field may be nil, which puts
// that feature in fallback mode.
type generators struct {
	text   service.TextGenerator
	grader service.TextGenerator
	speech service.SpeechGenerator
	close  []func()
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("env", cfg.Environment).Str("ai_provider", cfg.AIProvider).Msg("Starting kidvocab_service")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gens := initGenerators(ctx, cfg, log)
	remote := gens.text != nil || gens.speech != nil
	if !remote {
		log.Warn().Msg("No AI credential configured, running in fallback mode")
	}

	// Initialize Redis client
	var redisClient *client.RedisClient
	if cfg.RedisURL != "" {
		redisClient, err = client.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Redis client")
		} else {
			log.Info().Msg("Redis client initialized")
		}
	}

	// Clip store: Cloudflare R2, then Google Cloud Storage
	var clipStore service.ClipStore
	var storageClient *client.StorageClient
	if cfg.HasR2() {
		r2, err := client.NewCloudflareClient(ctx,
			cfg.CloudflareAccessKeyID,
			cfg.CloudflareSecretKey,
			cfg.CloudflareR2Endpoint,
			cfg.CloudflareBucketName,
			cfg.CloudflarePublicURL,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Cloudflare client")
		} else {
			clipStore = r2
			log.Info().Msg("Cloudflare R2 client initialized")
		}
	} else if cfg.GCSBucketName != "" {
		storageClient, err = client.NewStorageClient(ctx, cfg.GCSBucketName)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize GCS client")
		} else {
			clipStore = storageClient
			log.Info().Str("bucket", cfg.GCSBucketName).Msg("GCS client initialized")
		}
	}

	// Attempts: Postgres when configured, otherwise process memory
	var attemptRepo repository.AttemptRepository = repository.NewInMemoryAttemptRepository(cfg.AttemptHistoryLimit, cfg.AttemptMemoryTTL)
	var postgresClient *client.PostgresClient
	if cfg.DatabaseURL != "" {
		postgresClient, err = client.NewPostgresClient(ctx, cfg.DatabaseURL, 10)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Postgres client, keeping attempts in memory")
		} else {
			attemptRepo = repository.NewPostgresAttemptRepository(postgresClient.Pool)
			log.Info().Msg("Postgres client initialized")
		}
	}

	var pubsubClient *client.PubSubClient
	if cfg.PubSubProjectID != "" {
		pubsubClient, err = client.NewPubSubClient(ctx, cfg.PubSubProjectID, cfg.PubSubTopicID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Pub/Sub client")
		} else {
			log.Info().Str("topic", cfg.PubSubTopicID).Msg("Pub/Sub client initialized")
		}
	}

	// Initialize services
	store := content.NewStore()
	vocabularyService := service.NewVocabularyService(gens.text, store, service.VocabularyOptions{
		DefaultCount: cfg.VocabWordCount,
		MaxCount:     cfg.VocabMaxWordCount,
		Timeout:      cfg.AIRequestTimeout,
	}, log)
	gradingService := service.NewGradingService(gens.grader, service.GradingOptions{
		MismatchScore: cfg.GradeMismatchScore,
		Timeout:       cfg.AIRequestTimeout,
	}, log)
	speechService := service.NewSpeechService(gens.speech, service.SpeechOptions{
		Timeout:   cfg.AIRequestTimeout,
		CacheTTL:  cfg.AudioCacheTTL,
		LocalRate: cfg.LocalSpeechRate,
	}, log)
	if redisClient != nil {
		speechService.WithCache(redisClient)
	}
	if clipStore != nil {
		speechService.WithClipStore(clipStore)
	}
	progressService := service.NewProgressService(attemptRepo, cfg.AttemptHistoryLimit, log)
	if pubsubClient != nil {
		progressService.WithPublisher(pubsubClient)
	}

	// Initialize handlers
	healthHandler := http.NewHealthHandler(remote)
	apiHandler := http.NewAPIHandler(log, store, vocabularyService, speechService, gradingService, progressService)

	deps := ws.Deps{
		Topics:        store,
		Vocabulary:    vocabularyService,
		Grader:        gradingService,
		Utterance:     speechService.LocalUtterance,
		Recorder:      progressService,
		WordCount:     cfg.VocabWordCount,
		PlaybackGrace: cfg.WSPlaybackGrace,
	}
	if speechService.RemoteAvailable() {
		deps.Remote = speech.RemoteSynthesizer(speechService)
	}
	hub := server.NewWebSocketHub(ws.NewHandler(deps, log), cfg.WSMaxMessageBytes, cfg.WSSendBuffer, log)

	grpcHealth := grpchandler.NewHandler(log, remote)

	// Initialize servers
	httpServer := server.NewHTTPServer(cfg, log, server.NewRouter(cfg, log, healthHandler, apiHandler, hub))
	grpcServer := server.NewGRPCServer(cfg, log, grpcHealth)

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			cancel()
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			log.Error().Err(err).Msg("gRPC server error")
			cancel()
		}
	}()

	log.Info().
		Str("http_addr", cfg.HTTPAddress()).
		Str("grpc_addr", cfg.GRPCAddress()).
		Str("ai_mode", healthHandler.AIMode()).
		Msg("Servers started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down servers...")
	healthHandler.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	hub.Broadcast(ws.TypeNotice, ws.NoticePayload{Kind: "shutdown", Message: "server is restarting"})
	if err := hub.CloseAll(shutdownCtx); err != nil {
		log.Warn().Err(err).Int("clients", hub.ClientCount()).Msg("WebSocket clients did not disconnect in time")
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	grpcServer.GracefulStop()

	// Close clients
	for _, closeFn := range gens.close {
		closeFn()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if storageClient != nil {
		storageClient.Close()
	}
	if pubsubClient != nil {
		pubsubClient.Close()
	}
	if postgresClient != nil {
		postgresClient.Close()
	}

	log.Info().Msg("Server stopped")
}

func initGenerators(ctx context.Context, cfg *config.Config, log zerolog.Logger) generators {
	var gens generators

	if cfg.AIProvider == config.ProviderOpenAI {
		if cfg.OpenAIAPIKey == "" {
			return gens
		}
		openaiClient, err := client.NewOpenAIClient(cfg.OpenAIAPIKey, client.OpenAIOptions{
			Model:    cfg.OpenAIModel,
			TTSModel: cfg.OpenAITTSModel,
			VoiceUS:  cfg.OpenAIVoiceUS,
			VoiceUK:  cfg.OpenAIVoiceUK,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize OpenAI client")
			return gens
		}
		log.Info().Msg("OpenAI client initialized")
		gens.text, gens.grader, gens.speech = openaiClient, openaiClient, openaiClient
		return gens
	}

	opts := client.GeminiOptions{
		Model:    cfg.GeminiModel,
		TTSModel: cfg.GeminiTTSModel,
		VoiceUS:  cfg.GeminiVoiceUS,
		VoiceUK:  cfg.GeminiVoiceUK,
	}

	var geminiClient *client.GeminiClient
	switch {
	case cfg.GeminiSABase64 != "":
		log.Info().Msg("Initializing Gemini with Base64 Service Account")
		saJSON, err := base64.StdEncoding.DecodeString(cfg.GeminiSABase64)
		if err != nil {
			log.Error().Err(err).Msg("Failed to decode GEMINI_SA_BASE64")
			break
		}
		geminiClient, err = client.NewGeminiClientWithServiceAccount(ctx, saJSON, cfg.GCPLocation, opts)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Gemini client")
			break
		}
		log.Info().Str("project_id", geminiClient.ProjectID()).Str("location", cfg.GCPLocation).Msg("Gemini client initialized")

	case cfg.GeminiAPIKey != "":
		var err error
		geminiClient, err = client.NewGeminiClient(ctx, cfg.GeminiAPIKey, opts)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Gemini client")
			break
		}
		log.Info().Msg("Gemini client initialized")
	}

	if geminiClient == nil {
		return gens
	}
	gens.text, gens.grader, gens.speech = geminiClient, geminiClient, geminiClient
	gens.close = append(gens.close, geminiClient.Close)

	// Grading runs on flash-lite when an API key is set.
	if cfg.GeminiAPIKey != "" {
		grader, err := client.NewGeminiFlashLiteClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize grading client, grading with the main model")
		} else {
			gens.grader = grader.WithModel(cfg.GeminiGraderModel)
			gens.close = append(gens.close, grader.Close)
		}
	}

	return gens
}
