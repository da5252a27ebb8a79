package ws

import (
	"encoding/json"

	"github.com/windfall/kidvocab_service/internal/model"
)

// Client to server message types.
const (
	TypeHello             = "hello"
	TypeSelectTopic       = "select_topic"
	TypeNext              = "next"
	TypePrev              = "prev"
	TypeSetMode           = "set_mode"
	TypeSetAccent         = "set_accent"
	TypeSpeak             = "speak"
	TypeSpellingSubmit    = "spelling_submit"
	TypeHint              = "hint"
	TypeRecognitionStart  = "recognition_start"
	TypeRecognitionResult = "recognition_result"
	TypeRecognitionError  = "recognition_error"
	TypeRecognitionEnd    = "recognition_end"
	TypePlaybackEnded     = "playback_ended"
	TypePing              = "ping"
)

// Server to client message types.
const (
	TypeState              = "state"
	TypeGrade              = "grade"
	TypeSpellingResult     = "spelling_result"
	TypeRecognitionStarted = "recognition_started"
	TypeRecognitionAbort   = "recognition_abort"
	TypePlayAudio          = "play_audio"
	TypeReleaseAudio       = "release_audio"
	TypeLocalSpeak         = "local_speak"
	TypeCancelLocalSpeech  = "cancel_local_speech"
	TypeNotice             = "notice"
	TypeError              = "error"
	TypePong               = "pong"
)

// Message is an incoming envelope.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Response represents a WebSocket response.
type Response struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// HelloPayload reports device capabilities.
type HelloPayload struct {
	SpeechRecognition bool `json:"speech_recognition"`
}

type selectTopicPayload struct {
	TopicID string `json:"topic_id"`
}

type setModePayload struct {
	Mode string `json:"mode"`
}

type setAccentPayload struct {
	Accent string `json:"accent"`
}

type spellingSubmitPayload struct {
	Input string `json:"input"`
}

type recognitionResultPayload struct {
	SessionID  string `json:"session_id"`
	Transcript string `json:"transcript"`
}

type recognitionErrorPayload struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
}

type recognitionEndPayload struct {
	SessionID string `json:"session_id"`
}

type playbackEndedPayload struct {
	PlaybackID string `json:"playback_id"`
}

// GradePayload is a delivered pronunciation grade.
type GradePayload struct {
	SessionID string     `json:"session_id"`
	Word      string     `json:"word,omitempty"`
	Score     int        `json:"score"`
	Feedback  string     `json:"feedback"`
	Tier      model.Tier `json:"tier"`
}

// PlayAudioPayload asks the client to play normalized samples.
type PlayAudioPayload struct {
	PlaybackID       string `json:"playback_id"`
	SampleRate       int    `json:"sample_rate"`
	Channels         int    `json:"channels"`
	SamplesF32Base64 string `json:"samples_f32_base64"`
}

// ReleaseAudioPayload closes a client audio context.
type ReleaseAudioPayload struct {
	PlaybackID string `json:"playback_id"`
}

// RecognitionAbortPayload cancels a client recognition session.
type RecognitionAbortPayload struct {
	SessionID string `json:"session_id"`
}

// NoticePayload is an informational message for the child or parent.
type NoticePayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Outcome string `json:"outcome,omitempty"`
}

// ErrorPayload reports a failed request.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}
