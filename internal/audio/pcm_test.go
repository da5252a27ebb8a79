package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePCM16LE_RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 1234, -1234, math.MaxInt16, math.MinInt16, 16384, -16384}

	decoded, err := DecodePCM16LE(EncodePCM16LE(samples))
	require.NoError(t, err)
	require.Len(t, decoded, len(samples))

	for i, s := range samples {
		assert.InDelta(t, float64(s)/32768.0, float64(decoded[i]), 1.0/32768.0)
		back := int16(math.Round(float64(decoded[i]) * 32768.0))
		assert.Equal(t, s, back, "sample %d", i)
	}
}

func TestDecodePCM16LE_Range(t *testing.T) {
	decoded, err := DecodePCM16LE(EncodePCM16LE([]int16{math.MinInt16, math.MaxInt16}))
	require.NoError(t, err)
	assert.Equal(t, float32(-1.0), decoded[0])
	assert.Less(t, decoded[1], float32(1.0))
}

func TestDecodePCM16LE_Errors(t *testing.T) {
	_, err := DecodePCM16LE(nil)
	assert.ErrorIs(t, err, ErrEmptyPCM)

	_, err = DecodePCM16LE([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrOddPCM)
}

func TestBuffer_Duration(t *testing.T) {
	buf, err := NewSpeechBuffer(make([]byte, SampleRate*BytesPerSample/2))
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, buf.Duration())

	var empty *Buffer
	assert.Zero(t, empty.Duration())
}

func TestFloat32Bytes(t *testing.T) {
	out := Float32Bytes([]float32{0.5, -1})
	require.Len(t, out, 8)
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(out[0:])))
	assert.Equal(t, float32(-1), math.Float32frombits(binary.LittleEndian.Uint32(out[4:])))
}

func TestEncodeWAV_Header(t *testing.T) {
	pcm := EncodePCM16LE([]int16{1, 2, 3, 4})
	wav := EncodeWAV(SpeechFormat, pcm)

	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:]))
	assert.Equal(t, uint32(SampleRate), binary.LittleEndian.Uint32(wav[24:]))
	assert.Equal(t, uint32(SampleRate*2), binary.LittleEndian.Uint32(wav[28:]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, pcm, wav[44:])
}
