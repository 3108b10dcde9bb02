package beeper

import (
	"encoding/binary"
	"math"
)

// tone synthesizes a sine wave as signed 16-bit little-endian PCM with
// a short linear fade at both ends to avoid clicks.
func tone(freq float64, d, fade float64) []byte {
	n := int(d * sampleRate)
	fadeN := int(fade * sampleRate)
	out := make([]byte, 2*n)

	for i := 0; i < n; i++ {
		s := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)

		gain := 0.4
		if i < fadeN {
			gain *= float64(i) / float64(fadeN)
		}
		if n-i < fadeN {
			gain *= float64(n-i) / float64(fadeN)
		}

		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(s*gain*math.MaxInt16)))
	}
	return out
}

// silence produces d seconds of PCM silence.
func silence(d float64) []byte {
	return make([]byte, 2*int(d*sampleRate))
}

// attentionChime is two mid-high pings: "come look at the vessel".
func attentionChime() []byte {
	var out []byte
	out = append(out, tone(880, 0.15, 0.01)...)
	out = append(out, silence(0.08)...)
	out = append(out, tone(880, 0.15, 0.01)...)
	return out
}

// finishChime is a rising three-note figure: "recipe complete".
func finishChime() []byte {
	var out []byte
	out = append(out, tone(659.25, 0.14, 0.01)...) // E5
	out = append(out, tone(783.99, 0.14, 0.01)...) // G5
	out = append(out, tone(1046.5, 0.28, 0.02)...) // C6
	return out
}
