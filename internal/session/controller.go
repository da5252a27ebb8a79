// Package session holds the state of one child's practice session.
package session

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/content"
	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/logger"
	"github.com/windfall/kidvocab_service/internal/model"
	"github.com/windfall/kidvocab_service/internal/speech"
)

// Spelling feedback shown to the child.
const (
	SpellingCorrectMessage   = "🎉 太棒了！答对了！"
	SpellingIncorrectMessage = "🦊 哎呀！再试一次吧。"
)

// Vocabulary supplies word lists.
type Vocabulary interface {
	FetchVocabulary(ctx context.Context, topicLabel string, count int) []model.WordEntry
}

// Grader scores a pronunciation attempt.
type Grader interface {
	Grade(ctx context.Context, targetWord, recognizedText string) model.GradeResult
}

// Speaker plays words aloud.
type Speaker interface {
	Speak(ctx context.Context, text string, accent model.Accent) <-chan speech.Outcome
	Stop()
}

// AttemptRecorder receives spelling and speaking attempts.
type AttemptRecorder interface {
	Record(ctx context.Context, attempt *model.Attempt) error
}

// Capabilities are what the hosting device reported it can do.
type Capabilities struct {
	SpeechRecognition bool `json:"speech_recognition"`
}

// Config wires a Controller. Recorder is optional.
type Config struct {
	Topics     *content.Store
	Vocabulary Vocabulary
	Grader     Grader
	Speaker    Speaker
	Recognizer Recognizer
	Recorder   AttemptRecorder
	WordCount  int
	Log        zerolog.Logger
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	SessionID     string            `json:"session_id"`
	Topic         *model.Topic      `json:"topic,omitempty"`
	Words         []model.WordEntry `json:"words"`
	Index         int               `json:"index"`
	Current       *model.WordEntry  `json:"current,omitempty"`
	MaskedExample string            `json:"masked_example,omitempty"`
	Hint          string            `json:"hint,omitempty"`
	Mode          model.Mode        `json:"mode"`
	Accent        model.Accent      `json:"accent"`
	Loading       bool              `json:"loading"`
	Recognition   RecognitionState  `json:"recognition"`
	Capabilities  Capabilities      `json:"capabilities"`
}

// SpellingResult is the outcome of a spelling submission.
type SpellingResult struct {
	Correct bool   `json:"correct"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

// RecognitionStart is returned when a listening session opens.
type RecognitionStart struct {
	ID       string              `json:"session_id"`
	Word     string              `json:"word"`
	Settings RecognitionSettings `json:"settings"`
}

// Controller owns one practice session. All methods are safe for concurrent
// use; service calls run without holding the lock.
type Controller struct {
	cfg Config
	id  string
	log zerolog.Logger

	mu      sync.Mutex
	caps    Capabilities
	topic   *model.Topic
	words   []model.WordEntry
	index   int
	mode    model.Mode
	accent  model.Accent
	loading bool
	loadSeq uint64
	hint    int
	rec     *recognition
}

// NewController creates a session with a fresh id in flashcard mode.
func NewController(cfg Config) *Controller {
	id := uuid.NewString()
	return &Controller{
		cfg:    cfg,
		id:     id,
		log:    logger.ForSession(cfg.Log, id),
		mode:   model.ModeFlashcard,
		accent: model.AccentUS,
	}
}

// ID returns the session id.
func (c *Controller) ID() string {
	return c.id
}

// SetCapabilities records what the device supports.
func (c *Controller) SetCapabilities(caps Capabilities) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.caps = caps
	return c.snapshotLocked()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SelectTopic loads a topic's words and resets to the first card.
func (c *Controller) SelectTopic(ctx context.Context, topicID string) (Snapshot, error) {
	topic, ok := c.cfg.Topics.Topic(topicID)
	if !ok {
		if topic, ok = c.cfg.Topics.Resolve(topicID); !ok {
			return c.Snapshot(), errors.Validation("unknown topic: " + topicID)
		}
	}
	return c.load(ctx, topic), nil
}

// Next advances to the next card. On the last card it reloads the topic.
func (c *Controller) Next(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if len(c.words) == 0 || c.topic == nil {
		c.mu.Unlock()
		return c.Snapshot(), errors.Validation("no topic selected")
	}
	if c.index >= len(c.words)-1 {
		topic := *c.topic
		c.mu.Unlock()
		return c.load(ctx, topic), nil
	}
	c.abortRecognitionLocked()
	c.index++
	c.hint = 0
	c.mu.Unlock()

	c.cfg.Speaker.Stop()
	return c.Snapshot(), nil
}

// Prev moves back one card. It does nothing on the first card.
func (c *Controller) Prev() Snapshot {
	c.mu.Lock()
	if c.index == 0 {
		s := c.snapshotLocked()
		c.mu.Unlock()
		return s
	}
	c.abortRecognitionLocked()
	c.index--
	c.hint = 0
	c.mu.Unlock()

	c.cfg.Speaker.Stop()
	return c.Snapshot()
}

// SetMode switches the practice view. Leaving speaking mode cancels any
// pending recognition.
func (c *Controller) SetMode(mode model.Mode) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == model.ModeSpeaking && mode != model.ModeSpeaking {
		c.abortRecognitionLocked()
	}
	if c.mode != mode {
		c.hint = 0
	}
	c.mode = mode
	return c.snapshotLocked()
}

// SetAccent selects the pronunciation accent.
func (c *Controller) SetAccent(accent model.Accent) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accent = accent
	return c.snapshotLocked()
}

// Speak plays the current word in the session accent.
func (c *Controller) Speak(ctx context.Context) (<-chan speech.Outcome, error) {
	c.mu.Lock()
	word, ok := c.currentLocked()
	accent := c.accent
	c.mu.Unlock()
	if !ok {
		return nil, errors.Validation("no active word")
	}
	return c.cfg.Speaker.Speak(ctx, word.Word, accent), nil
}

// SubmitSpelling checks an answer for the current word.
func (c *Controller) SubmitSpelling(ctx context.Context, input string) (SpellingResult, error) {
	c.mu.Lock()
	word, ok := c.currentLocked()
	if !ok {
		c.mu.Unlock()
		return SpellingResult{}, errors.Validation("no active word")
	}
	correct := word.CheckSpelling(input)
	res := SpellingResult{Correct: correct, Message: SpellingIncorrectMessage, Hint: word.Hint(c.hint)}
	if correct {
		res.Message = SpellingCorrectMessage
	}
	topic := c.topicLabelLocked()
	c.mu.Unlock()

	score := 0
	if correct {
		score = 100
	}
	c.record(ctx, &model.Attempt{
		Topic:   topic,
		Word:    word.Word,
		Mode:    model.ModeSpelling,
		Input:   input,
		Score:   score,
		Correct: correct,
	})
	return res, nil
}

// RevealHint shows one more letter of the current word.
func (c *Controller) RevealHint() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	word, ok := c.currentLocked()
	if !ok {
		return "", errors.Validation("no active word")
	}
	if n := utf8.RuneCountInString(word.Word); c.hint < n {
		c.hint++
	}
	return word.Hint(c.hint), nil
}

// StartRecognition opens a listening session bound to the current word,
// aborting any session still listening.
func (c *Controller) StartRecognition() (RecognitionStart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.caps.SpeechRecognition {
		return RecognitionStart{}, errors.UnsupportedPlatform("speech recognition")
	}
	word, ok := c.currentLocked()
	if !ok {
		return RecognitionStart{}, errors.Validation("no active word")
	}

	c.abortRecognitionLocked()
	c.rec = &recognition{
		id:        uuid.NewString(),
		word:      word.Word,
		wordIndex: c.index,
		loadSeq:   c.loadSeq,
		state:     RecognitionListening,
	}

	return RecognitionStart{ID: c.rec.id, Word: word.Word, Settings: DefaultRecognitionSettings}, nil
}

// HandleRecognitionResult grades a final transcript. delivered is false when
// the result belongs to a cancelled session or the child has since moved to
// another word; such grades must not be shown.
func (c *Controller) HandleRecognitionResult(ctx context.Context, id, transcript string) (grade model.GradeResult, delivered bool) {
	c.mu.Lock()
	rec := c.rec
	if rec == nil || rec.id != id || rec.state != RecognitionListening {
		c.mu.Unlock()
		c.log.Debug().Str("recognition_id", id).Msg("Ignoring result for inactive recognition")
		return model.GradeResult{}, false
	}
	c.moveRecognitionLocked(RecognitionCompleted)
	target, index, seq := rec.word, rec.wordIndex, rec.loadSeq
	topic := c.topicLabelLocked()
	c.mu.Unlock()

	grade = c.cfg.Grader.Grade(ctx, target, transcript)

	c.mu.Lock()
	current := c.rec == rec && c.index == index && c.loadSeq == seq
	c.mu.Unlock()
	if !current {
		c.log.Debug().Str("recognition_id", id).Msg("Dropping grade for a word no longer shown")
		return grade, false
	}

	c.record(ctx, &model.Attempt{
		Topic:   topic,
		Word:    target,
		Mode:    model.ModeSpeaking,
		Input:   transcript,
		Score:   grade.Score,
		Correct: grade.Score >= 60,
	})
	return grade, true
}

// HandleRecognitionError ends a listening session after a platform error. An
// "aborted" code returns a RECOGNITION_ABORTED error and is not logged.
func (c *Controller) HandleRecognitionError(id, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rec == nil || c.rec.id != id || c.rec.state != RecognitionListening {
		return nil
	}
	if code == recognitionErrorAborted {
		c.moveRecognitionLocked(RecognitionAborted)
		return errors.RecognitionAborted(id)
	}
	c.log.Warn().Str("recognition_id", id).Str("error", code).Msg("Speech recognition failed")
	c.moveRecognitionLocked(RecognitionIdle)
	return nil
}

// HandleRecognitionEnd closes a listening session that produced no result.
func (c *Controller) HandleRecognitionEnd(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rec != nil && c.rec.id == id && c.rec.state == RecognitionListening {
		c.moveRecognitionLocked(RecognitionIdle)
	}
}

// Close releases platform resources held by the session.
func (c *Controller) Close() {
	c.mu.Lock()
	c.abortRecognitionLocked()
	c.mu.Unlock()
	c.cfg.Speaker.Stop()
}

func (c *Controller) load(ctx context.Context, topic model.Topic) Snapshot {
	c.mu.Lock()
	c.abortRecognitionLocked()
	c.loadSeq++
	seq := c.loadSeq
	c.topic = &topic
	c.loading = true
	c.mu.Unlock()

	c.cfg.Speaker.Stop()
	words := c.cfg.Vocabulary.FetchVocabulary(ctx, topic.Label, c.cfg.WordCount)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.loadSeq {
		// a newer load owns the session
		return c.snapshotLocked()
	}
	c.words = words
	c.index = 0
	c.hint = 0
	c.loading = false
	c.log.Info().Str("topic", topic.ID).Int("words", len(words)).Msg("Topic loaded")
	return c.snapshotLocked()
}

func (c *Controller) record(ctx context.Context, attempt *model.Attempt) {
	if c.cfg.Recorder == nil {
		return
	}
	attempt.SessionID = c.id
	if err := c.cfg.Recorder.Record(ctx, attempt); err != nil {
		c.log.Warn().Err(err).Str("word", attempt.Word).Msg("Failed to record attempt")
	}
}

func (c *Controller) abortRecognitionLocked() {
	if c.rec == nil || c.rec.state != RecognitionListening {
		return
	}
	c.moveRecognitionLocked(RecognitionAborted)
	if c.cfg.Recognizer != nil {
		c.cfg.Recognizer.Abort(c.rec.id)
	}
}

func (c *Controller) moveRecognitionLocked(to RecognitionState) {
	if !c.rec.state.canMove(to) {
		c.log.Error().
			Str("from", c.rec.state.String()).
			Str("to", to.String()).
			Msg("Illegal recognition transition")
		return
	}
	c.rec.state = to
}

func (c *Controller) currentLocked() (model.WordEntry, bool) {
	if c.loading || c.index < 0 || c.index >= len(c.words) {
		return model.WordEntry{}, false
	}
	return c.words[c.index], true
}

func (c *Controller) topicLabelLocked() string {
	if c.topic == nil {
		return ""
	}
	return c.topic.Label
}

func (c *Controller) snapshotLocked() Snapshot {
	words := make([]model.WordEntry, len(c.words))
	copy(words, c.words)

	s := Snapshot{
		SessionID:    c.id,
		Words:        words,
		Index:        c.index,
		Mode:         c.mode,
		Accent:       c.accent,
		Loading:      c.loading,
		Recognition:  RecognitionIdle,
		Capabilities: c.caps,
	}
	if c.topic != nil {
		t := *c.topic
		s.Topic = &t
	}
	if c.rec != nil {
		s.Recognition = c.rec.state
	}
	if w, ok := c.currentLocked(); ok {
		s.Current = &w
		if c.mode == model.ModeSpelling {
			s.MaskedExample = w.MaskedExample()
			s.Hint = w.Hint(c.hint)
		}
	}
	return s
}
