// Package audio handles the raw PCM contract of synthesized speech.
package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// Synthesized speech is always 16-bit little-endian mono at 24 kHz.
const (
	SampleRate     = 24000
	Channels       = 1
	BitDepth       = 16
	BytesPerSample = BitDepth / 8
)

// ErrEmptyPCM is returned when a payload carries no samples.
var ErrEmptyPCM = errors.New("empty pcm payload")

// ErrOddPCM is returned when a payload is not a whole number of samples.
var ErrOddPCM = errors.New("pcm payload is not 16-bit aligned")

// Format describes a PCM stream.
type Format struct {
	SampleRate int `json:"sample_rate"`
	Channels   int `json:"channels"`
	BitDepth   int `json:"bit_depth"`
}

// SpeechFormat is the format returned by the speech models.
var SpeechFormat = Format{SampleRate: SampleRate, Channels: Channels, BitDepth: BitDepth}

// Buffer holds normalized samples ready for playback.
type Buffer struct {
	Format  Format
	Samples []float32
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.Format.SampleRate == 0 || b.Format.Channels == 0 {
		return 0
	}
	frames := len(b.Samples) / b.Format.Channels
	return time.Duration(frames) * time.Second / time.Duration(b.Format.SampleRate)
}

// DecodePCM16LE converts raw 16-bit little-endian samples to floats in [-1, 1).
func DecodePCM16LE(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPCM
	}
	if len(data)%BytesPerSample != 0 {
		return nil, ErrOddPCM
	}
	samples := make([]float32, len(data)/BytesPerSample)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*BytesPerSample:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples, nil
}

// NewSpeechBuffer decodes a speech payload into a playable buffer.
func NewSpeechBuffer(data []byte) (*Buffer, error) {
	samples, err := DecodePCM16LE(data)
	if err != nil {
		return nil, err
	}
	return &Buffer{Format: SpeechFormat, Samples: samples}, nil
}

// EncodePCM16LE is the inverse of DecodePCM16LE for integer samples.
func EncodePCM16LE(samples []int16) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(s))
	}
	return out
}

// Float32Bytes packs samples as little-endian IEEE 754 floats, the layout a
// browser AudioBuffer channel expects.
func Float32Bytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}
