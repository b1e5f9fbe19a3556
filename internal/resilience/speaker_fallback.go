package resilience

import (
	"context"

	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/tts"
)

// SpeakerFallback implements [tts.Speaker] with automatic failover across
// multiple speech backends. The usual wiring is the Coqui HTTP synthesizer
// as primary and the OS voice (say/espeak) as the always-available last
// resort, so the assistant is never mute.
type SpeakerFallback struct {
	group *FallbackGroup[tts.Speaker]
}

var _ tts.Speaker = (*SpeakerFallback)(nil)

// NewSpeakerFallback creates a SpeakerFallback with primary as the preferred
// backend.
func NewSpeakerFallback(primary tts.Speaker, primaryName string, cfg FallbackConfig) *SpeakerFallback {
	return &SpeakerFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional speaker as a fallback.
func (f *SpeakerFallback) AddFallback(name string, speaker tts.Speaker) {
	f.group.AddFallback(name, speaker)
}

// Speak voices text through the first healthy backend.
func (f *SpeakerFallback) Speak(ctx context.Context, text string) error {
	return f.group.Execute(func(s tts.Speaker) error {
		return s.Speak(ctx, text)
	})
}
