// Package mock provides test doubles for the audio.Recorder and audio.Player
// interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/hemanthsagarb9/LemmeTalk/pkg/audio"
)

// Recorder is a mock implementation of audio.Recorder. Successive Record
// calls return the configured sample buffers in order; once exhausted, nil.
type Recorder struct {
	mu sync.Mutex

	// Buffers are returned by successive Record calls.
	Buffers [][]float32

	// Err, if non-nil, is returned by every Record call.
	Err error

	// CallCount is the number of times Record was called.
	CallCount int
}

// Record returns the next configured buffer.
func (r *Recorder) Record(ctx context.Context) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.CallCount
	r.CallCount++
	if r.Err != nil {
		return nil, r.Err
	}
	if idx >= len(r.Buffers) {
		return nil, nil
	}
	return r.Buffers[idx], nil
}

// Ensure Recorder implements audio.Recorder at compile time.
var _ audio.Recorder = (*Recorder)(nil)

// Player is a mock implementation of audio.Player.
type Player struct {
	mu sync.Mutex

	// Err, if non-nil, is returned by every Play call.
	Err error

	// Played records the WAV payloads passed to Play in order.
	Played [][]byte
}

// Play records the call and returns Err.
func (p *Player) Play(ctx context.Context, wav []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf := make([]byte, len(wav))
	copy(buf, wav)
	p.Played = append(p.Played, buf)
	return p.Err
}

// Ensure Player implements audio.Player at compile time.
var _ audio.Player = (*Player)(nil)
