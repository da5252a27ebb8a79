package speech

// State is the orchestrator's position in a single speak request.
type State int

const (
	StateIdle State = iota
	StateRequestingRemoteAudio
	StateDecodingPCM
	StatePlaying
	StateLocalSynthesisFallback
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingRemoteAudio:
		return "requesting_remote_audio"
	case StateDecodingPCM:
		return "decoding_pcm"
	case StatePlaying:
		return "playing"
	case StateLocalSynthesisFallback:
		return "local_synthesis_fallback"
	default:
		return "unknown"
	}
}

// transitions lists the legal next states. Every active state may return to
// Idle when its request is superseded.
var transitions = map[State][]State{
	StateIdle:                   {StateRequestingRemoteAudio, StateLocalSynthesisFallback},
	StateRequestingRemoteAudio:  {StateDecodingPCM, StateLocalSynthesisFallback, StateIdle},
	StateDecodingPCM:            {StatePlaying, StateLocalSynthesisFallback, StateIdle},
	StatePlaying:                {StateIdle, StateLocalSynthesisFallback},
	StateLocalSynthesisFallback: {StateIdle},
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Outcome is how a speak request ended.
type Outcome string

const (
	// OutcomeRemote means the synthesized clip played to the end.
	OutcomeRemote Outcome = "remote"
	// OutcomeLocal means the device synthesizer was asked to speak.
	OutcomeLocal Outcome = "local"
	// OutcomeSuperseded means a newer request or Stop cancelled this one.
	OutcomeSuperseded Outcome = "superseded"
	// OutcomeSilent means neither remote audio nor a local synthesizer was usable.
	OutcomeSilent Outcome = "silent"
)
