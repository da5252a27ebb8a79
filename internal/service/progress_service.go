package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/model"
	"github.com/windfall/kidvocab_service/internal/repository"
)

const eventAttemptRecorded = "attempt.recorded"

// EventPublisher delivers practice events to downstream consumers.
type EventPublisher interface {
	PublishWithAttributes(ctx context.Context, data interface{}, attrs map[string]string) error
}

// AttemptEvent is the payload published for every recorded attempt.
type AttemptEvent struct {
	Type    string         `json:"type"`
	Attempt *model.Attempt `json:"attempt"`
}

// ProgressService records practice attempts.
type ProgressService struct {
	repo         repository.AttemptRepository
	events       EventPublisher
	historyLimit int
	log          zerolog.Logger
}

// NewProgressService creates a new progress service.
func NewProgressService(repo repository.AttemptRepository, historyLimit int, log zerolog.Logger) *ProgressService {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &ProgressService{
		repo:         repo,
		historyLimit: historyLimit,
		log:          log,
	}
}

// WithPublisher enables attempt events.
func (s *ProgressService) WithPublisher(events EventPublisher) *ProgressService {
	s.events = events
	return s
}

// Record stores an attempt and publishes it. A failed publish is logged only.
func (s *ProgressService) Record(ctx context.Context, attempt *model.Attempt) error {
	if attempt == nil || attempt.SessionID == "" || strings.TrimSpace(attempt.Word) == "" {
		return errors.Validation("attempt requires session_id and word")
	}
	attempt.Score = model.ClampScore(attempt.Score)

	if err := s.repo.Create(ctx, attempt); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to record attempt", err)
	}

	if s.events != nil {
		attrs := map[string]string{
			"event_type": eventAttemptRecorded,
			"session_id": attempt.SessionID,
			"mode":       string(attempt.Mode),
		}
		if err := s.events.PublishWithAttributes(ctx, AttemptEvent{Type: eventAttemptRecorded, Attempt: attempt}, attrs); err != nil {
			s.log.Warn().
				Err(err).
				Str("code", string(errors.CodeOf(err))).
				Str("attempt_id", attempt.ID.String()).
				Msg("Failed to publish attempt event")
		}
	}

	return nil
}

// ListBySession returns the newest attempts of a session. limit <= 0 or above
// the configured history limit uses the history limit.
func (s *ProgressService) ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.Attempt, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.Validation("session_id is required")
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}

	attempts, err := s.repo.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list attempts", err)
	}
	if attempts == nil {
		attempts = []*model.Attempt{}
	}
	return attempts, nil
}
