// Package mock provides test doubles for the tts.Provider and tts.Speaker
// interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/tts"
)

// Provider is a mock implementation of tts.Provider.
type Provider struct {
	mu sync.Mutex

	// WAV is returned by every Synthesize call.
	WAV []byte

	// Err, if non-nil, is returned by every Synthesize call.
	Err error

	// Texts records the text passed to each Synthesize call in order.
	Texts []string
}

// Synthesize records the call and returns WAV, Err.
func (p *Provider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Texts = append(p.Texts, text)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.WAV, nil
}

// Ensure Provider implements tts.Provider at compile time.
var _ tts.Provider = (*Provider)(nil)

// Speaker is a mock implementation of tts.Speaker.
type Speaker struct {
	mu sync.Mutex

	// Err, if non-nil, is returned by every Speak call.
	Err error

	// Spoken records the text passed to each Speak call in order.
	Spoken []string
}

// Speak records the call and returns Err.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Spoken = append(s.Spoken, text)
	return s.Err
}

// Ensure Speaker implements tts.Speaker at compile time.
var _ tts.Speaker = (*Speaker)(nil)
