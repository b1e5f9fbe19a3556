// Package audio provides the microphone capture and playback boundary for
// LemmeTalk, plus the PCM conversion helpers shared by the STT path.
//
// Capture and playback are deliberately thin: the interesting state machine
// lives in the routing core, so this package only defines two narrow
// interfaces and exec-backed implementations that lean on the standard
// command-line audio tools (sox/arecord for capture, afplay/aplay/paplay for
// playback).
package audio

import "context"

// Recorder captures one utterance of microphone audio.
type Recorder interface {
	// Record captures 16 kHz mono float32 PCM until ctx is cancelled, then
	// returns everything captured so far. Cancellation is the normal stop
	// signal, not an error; Record returns an error only when capture could
	// not run at all (missing device, missing tool).
	//
	// A nil or empty result means no usable audio was captured.
	Record(ctx context.Context) ([]float32, error)
}

// Player plays back a complete WAV file image.
type Player interface {
	// Play blocks until playback finishes or ctx is cancelled.
	Play(ctx context.Context, wav []byte) error
}

// BytesToFloat32 converts 16-bit little-endian signed PCM bytes to float32
// samples in [-1, 1]. A trailing odd byte is ignored.
func BytesToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(pcm[2*i]) | int16(pcm[2*i+1])<<8
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Float32ToBytes converts float32 samples in [-1, 1] to 16-bit little-endian
// signed PCM bytes, clamping out-of-range values.
func Float32ToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, f := range samples {
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		s := int16(f * 32767)
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}
