// Package stt defines the Provider interface for Speech-to-Text backends.
//
// LemmeTalk is turn-based: a full utterance is recorded, then transcribed in
// one shot. The interface therefore takes a complete buffer of 16 kHz mono
// float32 PCM samples and returns the recognised text. An empty string is a
// valid result and means the provider heard silence or could not make out any
// words — callers must treat it as "no input", not as an error.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// SampleRate is the PCM sample rate (Hz) all providers expect.
const SampleRate = 16000

// Provider is the abstraction over any STT backend.
type Provider interface {
	// Transcribe runs speech recognition over samples (16 kHz mono float32
	// PCM, range [-1, 1]) and returns the recognised text with surrounding
	// whitespace trimmed.
	//
	// Returns "" (and a nil error) for silence or unintelligible audio.
	// Returns an error only for provider failures: model errors, cancelled
	// context, malformed input.
	Transcribe(ctx context.Context, samples []float32) (string, error)
}
