// Package mock provides a test double for the stt.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Samples is the PCM buffer passed to Transcribe.
	Samples []float32
}

// Provider is a mock implementation of stt.Provider.
// Texts are returned by successive Transcribe calls in order; once exhausted,
// "" is returned. Set Err to inject a provider failure.
type Provider struct {
	mu sync.Mutex

	// Texts are the transcripts returned by successive Transcribe calls.
	Texts []string

	// Err, if non-nil, is returned by every Transcribe call.
	Err error

	// Calls records every invocation of Transcribe in order.
	Calls []TranscribeCall
}

// Transcribe records the call and returns the next configured text.
func (p *Provider) Transcribe(ctx context.Context, samples []float32) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf := make([]float32, len(samples))
	copy(buf, samples)
	p.Calls = append(p.Calls, TranscribeCall{Samples: buf})

	if p.Err != nil {
		return "", p.Err
	}
	idx := len(p.Calls) - 1
	if idx >= len(p.Texts) {
		return "", nil
	}
	return p.Texts[idx], nil
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)
