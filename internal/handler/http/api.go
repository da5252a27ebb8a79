package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/audio"
	"github.com/windfall/kidvocab_service/internal/content"
	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/model"
	"github.com/windfall/kidvocab_service/internal/service"
	"github.com/windfall/kidvocab_service/pkg/response"
)

// APIHandler handles REST API endpoints.
type APIHandler struct {
	log             zerolog.Logger
	topics          *content.Store
	vocabulary      *service.VocabularyService
	speechService   *service.SpeechService
	gradingService  *service.GradingService
	progressService *service.ProgressService
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	log zerolog.Logger,
	topics *content.Store,
	vocabulary *service.VocabularyService,
	speechService *service.SpeechService,
	gradingService *service.GradingService,
	progressService *service.ProgressService,
) *APIHandler {
	return &APIHandler{
		log:             log,
		topics:          topics,
		vocabulary:      vocabulary,
		speechService:   speechService,
		gradingService:  gradingService,
		progressService: progressService,
	}
}

// ListTopics handles GET /api/v1/topics
func (h *APIHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics := h.topics.Topics()
	response.JSONWithMeta(w, http.StatusOK, topics, &response.Meta{Total: len(topics)})
}

// GetVocabulary handles GET /api/v1/vocabulary?topic=&count=
func (h *APIHandler) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	label := strings.TrimSpace(r.URL.Query().Get("topic"))
	if label == "" {
		h.handleError(w, errors.Validation("topic is required"))
		return
	}
	if t, ok := h.topics.Topic(label); ok {
		label = t.Label
	}

	count, err := intParam(r, "count")
	if err != nil {
		h.handleError(w, err)
		return
	}

	result := h.vocabulary.Fetch(r.Context(), label, count)
	response.JSON(w, http.StatusOK, result)
}

// SynthesizeRequest is the body of POST /api/v1/speech/synthesize.
type SynthesizeRequest struct {
	Text   string `json:"text"`
	Accent string `json:"accent"`
}

// SynthesizeResponse tells the client how to play a word. Mode "remote"
// carries PCM; mode "local" carries a device synthesis request.
type SynthesizeResponse struct {
	Mode        string           `json:"mode"`
	Encoding    string           `json:"encoding,omitempty"`
	SampleRate  int              `json:"sample_rate,omitempty"`
	Channels    int              `json:"channels,omitempty"`
	AudioBase64 string           `json:"audio_base64,omitempty"`
	AudioURL    string           `json:"audio_url,omitempty"`
	Cached      bool             `json:"cached,omitempty"`
	Utterance   *model.Utterance `json:"utterance,omitempty"`
}

// Synthesize handles POST /api/v1/speech/synthesize
func (h *APIHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, errors.Validation("invalid request body"))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		h.handleError(w, errors.Validation("text is required"))
		return
	}

	accent, err := model.ParseAccent(req.Accent)
	if err != nil {
		h.handleError(w, errors.Validation(err.Error()))
		return
	}

	result := service.WithFallback(r.Context(), h.log, "speech.synthesize",
		func(ctx context.Context) (SynthesizeResponse, error) {
			clip, err := h.speechService.Synthesize(ctx, text, accent)
			if err != nil {
				return SynthesizeResponse{}, err
			}
			return SynthesizeResponse{
				Mode:        string(service.SourceRemote),
				Encoding:    "pcm_s16le",
				SampleRate:  audio.SampleRate,
				Channels:    audio.Channels,
				AudioBase64: base64.StdEncoding.EncodeToString(clip.PCM),
				AudioURL:    clip.URL,
				Cached:      clip.Cached,
			}, nil
		},
		func(error) SynthesizeResponse {
			u := h.speechService.LocalUtterance(text, accent)
			return SynthesizeResponse{Mode: "local", Utterance: &u}
		},
	)

	response.JSON(w, http.StatusOK, result)
}

// GradeRequest is the body of POST /api/v1/pronunciation/grade.
type GradeRequest struct {
	TargetWord     string `json:"target_word"`
	RecognizedText string `json:"recognized_text"`
}

// GradeResponse is a grade plus its presentation tier.
type GradeResponse struct {
	Score    int        `json:"score"`
	Feedback string     `json:"feedback"`
	Tier     model.Tier `json:"tier"`
}

// Grade handles POST /api/v1/pronunciation/grade
func (h *APIHandler) Grade(w http.ResponseWriter, r *http.Request) {
	var req GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, errors.Validation("invalid request body"))
		return
	}

	grade := h.gradingService.Grade(r.Context(), req.TargetWord, req.RecognizedText)
	response.JSON(w, http.StatusOK, GradeResponse{
		Score:    grade.Score,
		Feedback: grade.Feedback,
		Tier:     grade.Tier(),
	})
}

// ListAttempts handles GET /api/v1/sessions/{sessionID}/attempts
func (h *APIHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	limit, err := intParam(r, "limit")
	if err != nil {
		h.handleError(w, err)
		return
	}

	attempts, err := h.progressService.ListBySession(r.Context(), sessionID, limit)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, attempts, &response.Meta{Total: len(attempts), Limit: limit})
}

func (h *APIHandler) handleError(w http.ResponseWriter, err error) {
	if errors.CodeOf(err) == errors.ErrInternal {
		h.log.Error().Err(err).Msg("Internal server error")
	}
	response.AppError(w, err)
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Validation(name + " must be a non-negative integer")
	}
	return n, nil
}
