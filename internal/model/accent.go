package model

import (
	"fmt"
	"strings"
)

// Accent selects pronunciation phrasing and voice.
type Accent string

const (
	AccentUS Accent = "US"
	AccentUK Accent = "UK"
)

// ParseAccent parses an accent name. Empty input means US.
func ParseAccent(s string) (Accent, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "US", "EN-US":
		return AccentUS, nil
	case "UK", "GB", "EN-GB":
		return AccentUK, nil
	default:
		return "", fmt.Errorf("unknown accent %q", s)
	}
}

// LanguageTag returns the BCP 47 tag used for local synthesis.
func (a Accent) LanguageTag() string {
	if a == AccentUK {
		return "en-GB"
	}
	return "en-US"
}

// Describe is the accent phrasing used in speech prompts.
func (a Accent) Describe() string {
	if a == AccentUK {
		return "British"
	}
	return "American"
}

// Mode is the active practice view.
type Mode string

const (
	ModeFlashcard Mode = "FLASHCARD"
	ModeSpelling  Mode = "SPELLING"
	ModeSpeaking  Mode = "SPEAKING"
)

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeFlashcard:
		return ModeFlashcard, nil
	case ModeSpelling:
		return ModeSpelling, nil
	case ModeSpeaking:
		return ModeSpeaking, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}
