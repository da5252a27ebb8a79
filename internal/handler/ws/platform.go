package ws

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/audio"
	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/model"
	"github.com/windfall/kidvocab_service/internal/speech"
)

// Outbox queues messages for one client. Send must not block; it is called
// while session and orchestrator locks are held.
type Outbox interface {
	Send(msgType string, payload interface{}) error
}

var (
	_ speech.AudioDevice      = (*AudioDevice)(nil)
	_ speech.Playback         = (*playback)(nil)
	_ speech.LocalSynthesizer = (*LocalSpeech)(nil)
)

// AudioDevice plays clips on the client. Each clip gets its own playback id
// that the client acknowledges with playback_ended.
type AudioDevice struct {
	out   Outbox
	grace time.Duration
	log   zerolog.Logger

	mu      sync.Mutex
	pending map[string]chan struct{}
}

// NewAudioDevice creates a device over out. grace is how long past the clip
// duration Play waits for the client's acknowledgement.
func NewAudioDevice(out Outbox, grace time.Duration, log zerolog.Logger) *AudioDevice {
	return &AudioDevice{
		out:     out,
		grace:   grace,
		log:     log,
		pending: make(map[string]chan struct{}),
	}
}

// Open allocates a client audio context.
func (d *AudioDevice) Open(format audio.Format) (speech.Playback, error) {
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, errors.Validation("invalid audio format")
	}

	id := uuid.NewString()
	done := make(chan struct{})

	d.mu.Lock()
	d.pending[id] = done
	d.mu.Unlock()

	return &playback{d: d, id: id, done: done}, nil
}

// Ended marks a playback as finished. It reports false for unknown ids.
func (d *AudioDevice) Ended(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	done, ok := d.pending[id]
	if !ok {
		return false
	}
	close(done)
	delete(d.pending, id)
	return true
}

// Pending returns the number of open audio contexts.
func (d *AudioDevice) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *AudioDevice) release(id string) {
	d.mu.Lock()
	delete(d.pending, id)
	d.mu.Unlock()
}

type playback struct {
	d    *AudioDevice
	id   string
	done chan struct{}
	once sync.Once
}

// Play sends the samples and waits for the client to finish them. A client
// that never acknowledges is released once the clip should have ended.
func (p *playback) Play(ctx context.Context, buf *audio.Buffer) error {
	err := p.d.out.Send(TypePlayAudio, PlayAudioPayload{
		PlaybackID:       p.id,
		SampleRate:       buf.Format.SampleRate,
		Channels:         buf.Format.Channels,
		SamplesF32Base64: base64.StdEncoding.EncodeToString(audio.Float32Bytes(buf.Samples)),
	})
	if err != nil {
		return errors.UnsupportedPlatform("audio output").WithDetails(map[string]interface{}{"cause": err.Error()})
	}

	timer := time.NewTimer(buf.Duration() + p.d.grace)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		p.d.log.Debug().Str("playback_id", p.id).Msg("Playback not acknowledged, assuming finished")
		return nil
	}
}

// Close releases the client audio context.
func (p *playback) Close() error {
	var err error
	p.once.Do(func() {
		p.d.release(p.id)
		err = p.d.out.Send(TypeReleaseAudio, ReleaseAudioPayload{PlaybackID: p.id})
	})
	return err
}

// LocalSpeech asks the client's speech synthesizer to speak.
type LocalSpeech struct {
	out Outbox
}

// NewLocalSpeech creates a local synthesizer over out.
func NewLocalSpeech(out Outbox) *LocalSpeech {
	return &LocalSpeech{out: out}
}

// Speak sends a local_speak request.
func (l *LocalSpeech) Speak(u model.Utterance) error {
	return l.out.Send(TypeLocalSpeak, u)
}

// Cancel silences anything the client synthesizer is saying.
func (l *LocalSpeech) Cancel() {
	_ = l.out.Send(TypeCancelLocalSpeech, struct{}{})
}

// Recognizer forwards recognition aborts to the client.
type Recognizer struct {
	out Outbox
}

// NewRecognizer creates a recognizer over out.
func NewRecognizer(out Outbox) *Recognizer {
	return &Recognizer{out: out}
}

// Abort cancels the client recognition session id.
func (r *Recognizer) Abort(id string) {
	_ = r.out.Send(TypeRecognitionAbort, RecognitionAbortPayload{SessionID: id})
}
