// Package sysvoice implements tts.Speaker using the operating system's own
// speech command: "say" on macOS, "espeak" (or "espeak-ng") on Linux. It has
// no server or network dependency, which makes it the always-available
// fallback path when the primary TTS backend fails. The original assistant's
// behaviour on macOS — shelling out to `say` when the neural voice breaks —
// is exactly this.
package sysvoice

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/tts"
)

// Compile-time interface assertion.
var _ tts.Speaker = (*Speaker)(nil)

// Speaker speaks text through an OS speech command.
type Speaker struct {
	command string
	args    []string
}

// Option is a functional option for configuring a Speaker.
type Option func(*Speaker)

// WithCommand overrides the speech command and its leading arguments. The
// text to speak is appended as the final argument.
func WithCommand(command string, args ...string) Option {
	return func(s *Speaker) {
		s.command = command
		s.args = args
	}
}

// New creates a Speaker using the platform's default speech command.
// Returns an error if no speech command can be found on PATH.
func New(opts ...Option) (*Speaker, error) {
	s := &Speaker{}
	for _, o := range opts {
		o(s)
	}
	if s.command == "" {
		cmd, err := defaultCommand()
		if err != nil {
			return nil, err
		}
		s.command = cmd
	}
	return s, nil
}

// Speak implements tts.Speaker. It blocks until the command exits.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	args := append(append([]string(nil), s.args...), text)
	cmd := exec.CommandContext(ctx, s.command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("sysvoice: %s: %w: %s", s.command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// defaultCommand picks the first available OS speech command.
func defaultCommand() (string, error) {
	var candidates []string
	if runtime.GOOS == "darwin" {
		candidates = []string{"say"}
	} else {
		candidates = []string{"espeak-ng", "espeak", "spd-say"}
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c); err == nil {
			return c, nil
		}
	}
	return "", errors.New("sysvoice: no speech command found on PATH (tried " + strings.Join(candidates, ", ") + ")")
}
