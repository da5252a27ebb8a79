// Package speech plays a word aloud, preferring synthesized audio and falling
// back to the device's own speech synthesizer.
package speech

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/audio"
	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/model"
)

// RemoteSynthesizer returns raw 16-bit PCM for a word.
type RemoteSynthesizer interface {
	SynthesizePCM(ctx context.Context, text string, accent model.Accent) ([]byte, error)
}

// AudioDevice opens one output context per clip.
type AudioDevice interface {
	Open(format audio.Format) (Playback, error)
}

// Playback is an open output context. Play blocks until the buffer has been
// played or ctx is done. Close releases the context and is always called.
type Playback interface {
	Play(ctx context.Context, buf *audio.Buffer) error
	Close() error
}

// LocalSynthesizer is the device speech engine.
type LocalSynthesizer interface {
	Cancel()
	Speak(u model.Utterance) error
}

// UtteranceFunc builds the local synthesis request for a word.
type UtteranceFunc func(text string, accent model.Accent) model.Utterance

// Options wires an Orchestrator. Remote and Device may be nil.
type Options struct {
	Remote    RemoteSynthesizer
	Device    AudioDevice
	Local     LocalSynthesizer
	Utterance UtteranceFunc
	// OnTransition observes every state change of every request.
	OnTransition func(gen uint64, from, to State)
}

// Orchestrator runs at most one speak request at a time. Starting a new
// request supersedes the previous one.
type Orchestrator struct {
	opts Options
	log  zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(opts Options, log zerolog.Logger) *Orchestrator {
	if opts.Utterance == nil {
		opts.Utterance = func(text string, accent model.Accent) model.Utterance {
			return model.Utterance{Text: text, Lang: accent.LanguageTag(), Rate: 0.8, Pitch: 1, Volume: 1}
		}
	}
	return &Orchestrator{opts: opts, log: log}
}

// State returns the state of the current request.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Speak starts speaking text and returns immediately. The channel receives
// exactly one Outcome and is then closed.
func (o *Orchestrator) Speak(ctx context.Context, text string, accent model.Accent) <-chan Outcome {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.gen++
	gen := o.gen
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.state = StateIdle
	o.mu.Unlock()

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		defer cancel()
		out <- o.run(runCtx, gen, text, accent)
	}()
	return out
}

// Stop supersedes the in-flight request and silences the local synthesizer.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.gen++
	o.state = StateIdle
	if o.opts.Local != nil {
		o.opts.Local.Cancel()
	}
}

type run struct {
	o   *Orchestrator
	gen uint64
	cur State
}

func (r *run) step(to State) {
	if !CanTransition(r.cur, to) {
		r.o.log.Error().
			Str("from", r.cur.String()).
			Str("to", to.String()).
			Msg("Illegal speech state transition")
		return
	}
	from := r.cur
	r.cur = to

	r.o.mu.Lock()
	if r.o.gen == r.gen {
		r.o.state = to
	}
	r.o.mu.Unlock()

	if r.o.opts.OnTransition != nil {
		r.o.opts.OnTransition(r.gen, from, to)
	}
}

// finish returns the run to Idle. Runs that never left Idle stay put.
func (r *run) finish() {
	if r.cur != StateIdle {
		r.step(StateIdle)
	}
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, text string, accent model.Accent) Outcome {
	r := &run{o: o, gen: gen, cur: StateIdle}
	log := o.log.With().Uint64("speech_gen", gen).Str("accent", string(accent)).Logger()

	if o.opts.Remote != nil {
		err := o.playRemote(ctx, r, text, accent)
		if o.superseded(ctx, gen) {
			r.finish()
			return OutcomeSuperseded
		}
		if err == nil {
			r.finish()
			return OutcomeRemote
		}
		ev := log.Warn()
		if errors.Is(err, errors.ErrMissingCredential) {
			ev = log.Debug()
		}
		ev.Err(err).Str("state", r.cur.String()).Msg("Remote speech failed, falling back to local synthesis")
	}

	return o.fallback(ctx, r, text, accent)
}

func (o *Orchestrator) playRemote(ctx context.Context, r *run, text string, accent model.Accent) error {
	r.step(StateRequestingRemoteAudio)
	pcm, err := o.opts.Remote.SynthesizePCM(ctx, text, accent)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.step(StateDecodingPCM)
	buf, err := audio.NewSpeechBuffer(pcm)
	if err != nil {
		return errors.Unparsable("speech payload is not 16-bit pcm", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.step(StatePlaying)
	return o.play(ctx, buf)
}

func (o *Orchestrator) play(ctx context.Context, buf *audio.Buffer) error {
	if o.opts.Device == nil {
		return errors.UnsupportedPlatform("audio output")
	}

	pb, err := o.opts.Device.Open(buf.Format)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pb.Close(); cerr != nil {
			o.log.Warn().Err(cerr).Msg("Failed to release audio output")
		}
	}()

	return pb.Play(ctx, buf)
}

// fallback asks the local synthesizer to speak. The supersession check and
// the call happen under the lock so a superseded request never speaks.
func (o *Orchestrator) fallback(ctx context.Context, r *run, text string, accent model.Accent) Outcome {
	o.mu.Lock()
	if ctx.Err() != nil || o.gen != r.gen {
		o.mu.Unlock()
		r.finish()
		return OutcomeSuperseded
	}
	if o.opts.Local == nil {
		o.mu.Unlock()
		o.log.Warn().Msg("No local speech synthesizer available")
		r.finish()
		return OutcomeSilent
	}
	o.mu.Unlock()

	r.step(StateLocalSynthesisFallback)

	o.mu.Lock()
	superseded := o.gen != r.gen
	var err error
	if !superseded {
		o.opts.Local.Cancel()
		err = o.opts.Local.Speak(o.opts.Utterance(text, accent))
	}
	o.mu.Unlock()

	r.finish()
	if superseded {
		return OutcomeSuperseded
	}
	if err != nil {
		o.log.Warn().Err(err).Msg("Local speech synthesis failed")
		return OutcomeSilent
	}
	return OutcomeLocal
}

func (o *Orchestrator) superseded(ctx context.Context, gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen != gen || stderrors.Is(ctx.Err(), context.Canceled)
}
