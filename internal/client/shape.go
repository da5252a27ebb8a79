package client

import "github.com/windfall/kidvocab_service/internal/model"

// Shape names the JSON document a structured generation must return.
type Shape int

const (
	// ShapeWordList is an array of {word, translation, example, phonetic?}.
	ShapeWordList Shape = iota
	// ShapeGrade is an object {score, feedback}.
	ShapeGrade
)

func (s Shape) String() string {
	switch s {
	case ShapeWordList:
		return "word_list"
	case ShapeGrade:
		return "grade"
	default:
		return "unknown"
	}
}

// SpeechRequest is a single text-to-speech call. Prompt carries the
// accent-specific phrasing for models that take instructions; Text is the
// literal text for models that read their input verbatim.
type SpeechRequest struct {
	Text   string
	Prompt string
	Accent model.Accent
}
