package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func pcmFromSamples(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestRMSSilenceIsZero(t *testing.T) {
	require.Zero(t, RMS(nil))
	require.Zero(t, RMS(pcmFromSamples(make([]int16, 320))))
}

func TestRMSFullScale(t *testing.T) {
	samples := make([]int16, 320)
	for i := range samples {
		samples[i] = math.MaxInt16
	}
	require.InDelta(t, 1.0, RMS(pcmFromSamples(samples)), 0.001)
}

func TestRMSIgnoresOddTrailingByte(t *testing.T) {
	pcm := append(pcmFromSamples([]int16{0, 0}), 0xFF)
	require.Zero(t, RMS(pcm))
}

func TestRMSScalesWithAmplitude(t *testing.T) {
	quiet := make([]int16, 320)
	loud := make([]int16, 320)
	for i := range quiet {
		quiet[i] = 1000
		loud[i] = 20000
	}
	require.Less(t, RMS(pcmFromSamples(quiet)), RMS(pcmFromSamples(loud)))
}
