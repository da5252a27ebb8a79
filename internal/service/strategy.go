package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/client"
	"github.com/windfall/kidvocab_service/internal/errors"
)

// TextGenerator produces schema-constrained JSON text.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, shape client.Shape) (string, error)
}

// SpeechGenerator produces raw 16-bit PCM speech.
type SpeechGenerator interface {
	GenerateSpeech(ctx context.Context, req client.SpeechRequest) ([]byte, error)
}

// Source tells a caller which stage produced a result.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// WithFallback runs the remote stage and, on any failure, returns the local
// stage's result instead. A missing credential is expected in fallback mode
// and only logged at debug. Failures outside the recoverable set point at a
// bug rather than an outage and are logged as errors.
func WithFallback[T any](
	ctx context.Context,
	log zerolog.Logger,
	op string,
	attemptRemote func(ctx context.Context) (T, error),
	fallback func(err error) T,
) T {
	v, err := attemptRemote(ctx)
	if err == nil {
		return v
	}

	var ev *zerolog.Event
	switch {
	case errors.Is(err, errors.ErrMissingCredential):
		ev = log.Debug()
	case errors.Recoverable(err):
		ev = log.Warn()
	default:
		ev = log.Error()
	}
	ev.Err(err).
		Str("op", op).
		Str("code", string(errors.CodeOf(err))).
		Bool("recoverable", errors.Recoverable(err)).
		Msg("Remote stage failed, using local fallback")

	return fallback(err)
}

// cleanJSON strips markdown code fences some models wrap around JSON.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
