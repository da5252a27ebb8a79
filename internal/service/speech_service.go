package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/audio"
	"github.com/windfall/kidvocab_service/internal/client"
	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/model"
)

const audioCacheKeyPrefix = "tts:"

// AudioCache stores synthesized PCM by key.
type AudioCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ClipStore publishes encoded clips and returns their public URL.
type ClipStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// SpeechOptions configures speech synthesis.
type SpeechOptions struct {
	Timeout   time.Duration
	CacheTTL  time.Duration
	LocalRate float64
}

// Clip is a synthesized, decoded word.
type Clip struct {
	Text   string
	Accent model.Accent
	PCM    []byte
	Buffer *audio.Buffer
	URL    string
	Cached bool
}

// SpeechService synthesizes words with the remote speech model.
type SpeechService struct {
	generator SpeechGenerator
	cache     AudioCache
	clips     ClipStore
	opts      SpeechOptions
	log       zerolog.Logger
}

// NewSpeechService creates a new speech service. A nil generator means only
// local synthesis is available.
func NewSpeechService(generator SpeechGenerator, opts SpeechOptions, log zerolog.Logger) *SpeechService {
	if opts.LocalRate <= 0 {
		opts.LocalRate = 0.8
	}
	return &SpeechService{
		generator: generator,
		opts:      opts,
		log:       log,
	}
}

// WithCache enables the audio cache.
func (s *SpeechService) WithCache(cache AudioCache) *SpeechService {
	s.cache = cache
	return s
}

// WithClipStore enables clip publishing.
func (s *SpeechService) WithClipStore(clips ClipStore) *SpeechService {
	s.clips = clips
	return s
}

// RemoteAvailable reports whether a remote speech model is configured.
func (s *SpeechService) RemoteAvailable() bool {
	return s.generator != nil
}

// Synthesize returns the decoded clip for text.
func (s *SpeechService) Synthesize(ctx context.Context, text string, accent model.Accent) (*Clip, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("text is required")
	}
	if s.generator == nil {
		return nil, errors.MissingCredential("ai speech")
	}

	key := audioCacheKey(text, accent)
	if pcm, ok := s.cached(ctx, key); ok {
		buf, err := audio.NewSpeechBuffer(pcm)
		if err == nil {
			return &Clip{Text: text, Accent: accent, PCM: pcm, Buffer: buf, Cached: true}, nil
		}
		s.log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt cached audio")
	}

	pcm, err := s.generate(ctx, text, accent)
	if err != nil {
		return nil, err
	}

	buf, err := audio.NewSpeechBuffer(pcm)
	if err != nil {
		return nil, errors.Unparsable("speech payload is not 16-bit pcm", err)
	}

	clip := &Clip{Text: text, Accent: accent, PCM: pcm, Buffer: buf}
	s.store(ctx, key, pcm)
	clip.URL = s.publish(ctx, key, pcm)

	return clip, nil
}

// SynthesizePCM returns the raw PCM for text.
func (s *SpeechService) SynthesizePCM(ctx context.Context, text string, accent model.Accent) ([]byte, error) {
	clip, err := s.Synthesize(ctx, text, accent)
	if err != nil {
		return nil, err
	}
	return clip.PCM, nil
}

// LocalUtterance builds the request for the device synthesizer.
func (s *SpeechService) LocalUtterance(text string, accent model.Accent) model.Utterance {
	return model.Utterance{
		Text:   text,
		Lang:   accent.LanguageTag(),
		Rate:   s.opts.LocalRate,
		Pitch:  1,
		Volume: 1,
	}
}

func (s *SpeechService) generate(ctx context.Context, text string, accent model.Accent) ([]byte, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	return s.generator.GenerateSpeech(ctx, client.SpeechRequest{
		Text:   text,
		Prompt: speechPrompt(text, accent),
		Accent: accent,
	})
}

func (s *SpeechService) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	pcm, ok, err := s.cache.GetBytes(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Audio cache read failed")
		return nil, false
	}
	return pcm, ok
}

func (s *SpeechService) store(ctx context.Context, key string, pcm []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetBytes(ctx, key, pcm, s.opts.CacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Audio cache write failed")
	}
}

func (s *SpeechService) publish(ctx context.Context, key string, pcm []byte) string {
	if s.clips == nil {
		return ""
	}
	objectKey := "clips/" + strings.TrimPrefix(key, audioCacheKeyPrefix) + ".wav"
	objectKey = strings.ReplaceAll(objectKey, ":", "/")

	url, err := s.clips.Upload(ctx, objectKey, audio.EncodeWAV(audio.SpeechFormat, pcm), "audio/wav")
	if err != nil {
		s.log.Warn().Err(err).Str("code", string(errors.CodeOf(err))).Str("object", objectKey).Msg("Failed to publish speech clip")
		return ""
	}
	return url
}

func speechPrompt(text string, accent model.Accent) string {
	article := "an"
	if accent == model.AccentUK {
		article = "a"
	}
	return fmt.Sprintf("Say the following word clearly with %s %s accent suitable for children: %s",
		article, accent.Describe(), text)
}

func audioCacheKey(text string, accent model.Accent) string {
	sum := sha1.Sum([]byte(strings.ToLower(text)))
	return audioCacheKeyPrefix + string(accent) + ":" + hex.EncodeToString(sum[:])
}
