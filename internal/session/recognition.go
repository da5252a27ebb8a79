package session

import "fmt"

// RecognitionState is the lifecycle of one speech recognition session.
type RecognitionState int

const (
	RecognitionIdle RecognitionState = iota
	RecognitionListening
	RecognitionCompleted
	RecognitionAborted
)

func (s RecognitionState) String() string {
	switch s {
	case RecognitionIdle:
		return "idle"
	case RecognitionListening:
		return "listening"
	case RecognitionCompleted:
		return "completed"
	case RecognitionAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON.
func (s RecognitionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *RecognitionState) UnmarshalText(text []byte) error {
	for st := RecognitionIdle; st <= RecognitionAborted; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown recognition state %q", text)
}

// Platform error code reported when a recognition session is cancelled.
const recognitionErrorAborted = "aborted"

// RecognitionSettings are the parameters the platform recognizer must use.
type RecognitionSettings struct {
	Lang            string `json:"lang"`
	InterimResults  bool   `json:"interim_results"`
	MaxAlternatives int    `json:"max_alternatives"`
}

// DefaultRecognitionSettings listens for a single final US English result.
var DefaultRecognitionSettings = RecognitionSettings{
	Lang:            "en-US",
	InterimResults:  false,
	MaxAlternatives: 1,
}

// Recognizer is the platform speech recognition capability.
type Recognizer interface {
	Abort(id string)
}

// recognition binds one listening session to the word it was started for.
type recognition struct {
	id        string
	word      string
	wordIndex int
	loadSeq   uint64
	state     RecognitionState
}

// canMove lists legal recognition transitions.
func (s RecognitionState) canMove(to RecognitionState) bool {
	switch s {
	case RecognitionIdle:
		return to == RecognitionListening
	case RecognitionListening:
		return to == RecognitionCompleted || to == RecognitionAborted || to == RecognitionIdle
	case RecognitionCompleted, RecognitionAborted:
		return to == RecognitionIdle || to == RecognitionListening
	default:
		return false
	}
}
