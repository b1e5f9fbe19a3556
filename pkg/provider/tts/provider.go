// Package tts defines the interfaces for Text-to-Speech backends.
//
// Two abstractions are exposed:
//
//   - Provider turns text into playable audio bytes (a WAV file image).
//   - Speaker turns text into sound: it is what the assistant loop consumes.
//
// A Provider becomes a Speaker by pairing it with an audio.Player via
// NewSpeaker. Backends that drive the operating system's own voice directly
// (see the sysvoice package) implement Speaker without a Provider — that path
// has no network or server dependency and serves as the always-available
// fallback when the primary synthesis backend is down.
//
// Implementations must be safe for concurrent use.
package tts

import (
	"context"
	"fmt"

	"github.com/hemanthsagarb9/LemmeTalk/pkg/audio"
)

// Provider is the abstraction over any batch TTS backend.
type Provider interface {
	// Synthesize converts text to a complete WAV file image. Returns an error
	// if synthesis fails or ctx is cancelled. Empty text returns an error.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Speaker speaks text out loud and returns once playback has finished.
type Speaker interface {
	// Speak synthesises and plays text. Speaking an empty string is a no-op.
	Speak(ctx context.Context, text string) error
}

// speaker adapts a Provider plus an audio.Player into a Speaker.
type speaker struct {
	provider Provider
	player   audio.Player
}

// NewSpeaker returns a Speaker that synthesises text with provider and plays
// the result through player.
func NewSpeaker(provider Provider, player audio.Player) Speaker {
	return &speaker{provider: provider, player: player}
}

func (s *speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	wav, err := s.provider.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("tts: synthesize: %w", err)
	}
	if err := s.player.Play(ctx, wav); err != nil {
		return fmt.Errorf("tts: play: %w", err)
	}
	return nil
}
