package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/content"
	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/logger"
	"github.com/windfall/kidvocab_service/internal/model"
	"github.com/windfall/kidvocab_service/internal/session"
	"github.com/windfall/kidvocab_service/internal/speech"
)

// Notice kinds.
const (
	NoticeSpeech                 = "speech"
	NoticeRecognitionUnsupported = "recognition_unsupported"
)

const recognitionUnsupportedMessage = "当前浏览器不支持语音识别。Speech recognition is not available on this device."

// queueSize bounds the requests waiting behind a slow one.
const queueSize = 64

// Deps are the services shared by every practice session. Remote may be nil.
type Deps struct {
	Topics        *content.Store
	Vocabulary    session.Vocabulary
	Grader        session.Grader
	Remote        speech.RemoteSynthesizer
	Utterance     speech.UtteranceFunc
	Recorder      session.AttemptRecorder
	WordCount     int
	PlaybackGrace time.Duration
}

// Handler creates practice sessions for WebSocket connections.
type Handler struct {
	deps Deps
	log  zerolog.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(deps Deps, log zerolog.Logger) *Handler {
	if deps.PlaybackGrace <= 0 {
		deps.PlaybackGrace = 2 * time.Second
	}
	return &Handler{deps: deps, log: log}
}

// Session binds one connection to one practice session.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	ctrl   *session.Controller
	device *AudioDevice
	out    Outbox
	log    zerolog.Logger

	queue chan request
	wg    sync.WaitGroup
}

type request struct {
	msgType string
	payload json.RawMessage
}

// NewSession starts a practice session that writes to out. The session lives
// until Close or until ctx is done.
func (h *Handler) NewSession(ctx context.Context, out Outbox) *Session {
	ctx, cancel := context.WithCancel(ctx)

	device := NewAudioDevice(out, h.deps.PlaybackGrace, h.log)
	orch := speech.NewOrchestrator(speech.Options{
		Remote:    h.deps.Remote,
		Device:    device,
		Local:     NewLocalSpeech(out),
		Utterance: h.deps.Utterance,
	}, h.log.With().Str("component", "speech").Logger())

	ctrl := session.NewController(session.Config{
		Topics:     h.deps.Topics,
		Vocabulary: h.deps.Vocabulary,
		Grader:     h.deps.Grader,
		Speaker:    orch,
		Recognizer: NewRecognizer(out),
		Recorder:   h.deps.Recorder,
		WordCount:  h.deps.WordCount,
		Log:        h.log,
	})

	s := &Session{
		ctx:    ctx,
		cancel: cancel,
		ctrl:   ctrl,
		device: device,
		out:    out,
		log:    logger.ForSession(h.log, ctrl.ID()),
		queue:  make(chan request, queueSize),
	}
	s.wg.Add(1)
	go s.work()
	return s
}

// ID returns the practice session id.
func (s *Session) ID() string {
	return s.ctrl.ID()
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() session.Snapshot {
	return s.ctrl.Snapshot()
}

// Handle processes one incoming message. Pings and playback acks are answered
// at once; everything else runs on the session worker in arrival order.
func (s *Session) Handle(msgType string, payload json.RawMessage) {
	s.log.Debug().Str("type", msgType).Msg("Handling WebSocket message")

	switch msgType {
	case TypePing:
		s.send(TypePong, map[string]string{"message": "pong"})

	case TypePlaybackEnded:
		var p playbackEndedPayload
		if s.decode(msgType, payload, &p) && !s.device.Ended(p.PlaybackID) {
			s.log.Debug().Str("playback_id", p.PlaybackID).Msg("Ignoring ack for unknown playback")
		}

	default:
		if s.ctx.Err() != nil {
			return
		}
		select {
		case s.queue <- request{msgType: msgType, payload: payload}:
		default:
			s.fail(msgType, errors.New(errors.ErrSessionBusy, "too many pending requests"))
		}
	}
}

func (s *Session) work() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case req := <-s.queue:
			s.dispatch(req.msgType, req.payload)
		}
	}
}

func (s *Session) dispatch(msgType string, payload json.RawMessage) {
	switch msgType {
	case TypeHello:
		var p HelloPayload
		if s.decode(msgType, payload, &p) {
			s.sendState(s.ctrl.SetCapabilities(session.Capabilities{SpeechRecognition: p.SpeechRecognition}))
		}

	case TypeSelectTopic:
		var p selectTopicPayload
		if s.decode(msgType, payload, &p) {
			snap, err := s.ctrl.SelectTopic(s.ctx, p.TopicID)
			if err != nil {
				s.fail(msgType, err)
				return
			}
			s.sendState(snap)
		}

	case TypeNext:
		snap, err := s.ctrl.Next(s.ctx)
		if err != nil {
			s.fail(msgType, err)
			return
		}
		s.sendState(snap)

	case TypePrev:
		s.sendState(s.ctrl.Prev())

	case TypeSetMode:
		var p setModePayload
		if s.decode(msgType, payload, &p) {
			mode, err := model.ParseMode(p.Mode)
			if err != nil {
				s.fail(msgType, errors.Validation(err.Error()))
				return
			}
			s.sendState(s.ctrl.SetMode(mode))
		}

	case TypeSetAccent:
		var p setAccentPayload
		if s.decode(msgType, payload, &p) {
			accent, err := model.ParseAccent(p.Accent)
			if err != nil {
				s.fail(msgType, errors.Validation(err.Error()))
				return
			}
			s.sendState(s.ctrl.SetAccent(accent))
		}

	case TypeSpeak:
		s.speak()

	case TypeSpellingSubmit:
		var p spellingSubmitPayload
		if s.decode(msgType, payload, &p) {
			res, err := s.ctrl.SubmitSpelling(s.ctx, p.Input)
			if err != nil {
				s.fail(msgType, err)
				return
			}
			s.send(TypeSpellingResult, res)
		}

	case TypeHint:
		if _, err := s.ctrl.RevealHint(); err != nil {
			s.fail(msgType, err)
			return
		}
		s.sendState(s.ctrl.Snapshot())

	case TypeRecognitionStart:
		s.startRecognition()

	case TypeRecognitionResult:
		var p recognitionResultPayload
		if s.decode(msgType, payload, &p) {
			grade, delivered := s.ctrl.HandleRecognitionResult(s.ctx, p.SessionID, p.Transcript)
			if delivered {
				s.send(TypeGrade, GradePayload{
					SessionID: p.SessionID,
					Score:     grade.Score,
					Feedback:  grade.Feedback,
					Tier:      grade.Tier(),
				})
			}
			s.sendState(s.ctrl.Snapshot())
		}

	case TypeRecognitionError:
		var p recognitionErrorPayload
		if s.decode(msgType, payload, &p) {
			if err := s.ctrl.HandleRecognitionError(p.SessionID, p.Error); errors.Is(err, errors.ErrRecognitionAborted) {
				s.log.Debug().Str("recognition_id", p.SessionID).Msg("Recognition aborted")
			}
			s.sendState(s.ctrl.Snapshot())
		}

	case TypeRecognitionEnd:
		var p recognitionEndPayload
		if s.decode(msgType, payload, &p) {
			s.ctrl.HandleRecognitionEnd(p.SessionID)
			s.sendState(s.ctrl.Snapshot())
		}

	default:
		s.fail(msgType, errors.Validation("unknown message type: "+msgType))
	}
}

// Close stops speech, aborts recognition and waits for the worker and any
// pending speech outcome.
func (s *Session) Close() {
	s.cancel()
	s.ctrl.Close()
	s.wg.Wait()
}

func (s *Session) speak() {
	outcomes, err := s.ctrl.Speak(s.ctx)
	if err != nil {
		s.fail(TypeSpeak, err)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		outcome := <-outcomes
		switch outcome {
		case speech.OutcomeSuperseded:
			return
		case speech.OutcomeSilent:
			s.send(TypeNotice, NoticePayload{
				Kind:    NoticeSpeech,
				Message: "speech is unavailable",
				Outcome: string(outcome),
			})
		default:
			s.send(TypeNotice, NoticePayload{
				Kind:    NoticeSpeech,
				Message: "speech finished",
				Outcome: string(outcome),
			})
		}
	}()
}

func (s *Session) startRecognition() {
	start, err := s.ctrl.StartRecognition()
	if errors.Is(err, errors.ErrUnsupportedPlatform) {
		s.send(TypeNotice, NoticePayload{
			Kind:    NoticeRecognitionUnsupported,
			Message: recognitionUnsupportedMessage,
		})
		return
	}
	if err != nil {
		s.fail(TypeRecognitionStart, err)
		return
	}
	s.send(TypeRecognitionStarted, start)
	s.sendState(s.ctrl.Snapshot())
}

func (s *Session) decode(msgType string, payload json.RawMessage, v interface{}) bool {
	if len(payload) == 0 {
		return true
	}
	if err := json.Unmarshal(payload, v); err != nil {
		s.fail(msgType, errors.Validation("invalid "+msgType+" payload"))
		return false
	}
	return true
}

func (s *Session) sendState(snap session.Snapshot) {
	s.send(TypeState, snap)
}

func (s *Session) fail(request string, err error) {
	code := errors.CodeOf(err)
	msg := "internal error"
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		msg = appErr.Message
	}
	if code == errors.ErrInternal {
		s.log.Error().Err(err).Str("request", request).Msg("WebSocket request failed")
	}
	s.send(TypeError, ErrorPayload{Code: string(code), Message: msg, Request: request})
}

func (s *Session) send(msgType string, payload interface{}) {
	if err := s.out.Send(msgType, payload); err != nil {
		s.log.Debug().Err(err).Str("type", msgType).Msg("Dropping outgoing message")
	}
}
