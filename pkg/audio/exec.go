package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
)

// captureSampleRate matches stt.SampleRate; duplicated here to keep the
// package free of provider imports.
const captureSampleRate = 16000

// ExecRecorder implements Recorder by running a command-line capture tool
// that writes raw 16-bit little-endian mono PCM to stdout.
type ExecRecorder struct {
	command string
	args    []string
}

// Compile-time interface assertion.
var _ Recorder = (*ExecRecorder)(nil)

// NewExecRecorder creates a recorder using the first available capture tool
// (sox's "rec", then "arecord"). Returns an error if none is on PATH.
func NewExecRecorder() (*ExecRecorder, error) {
	if _, err := exec.LookPath("rec"); err == nil {
		return &ExecRecorder{
			command: "rec",
			args: []string{"-q", "-r", fmt.Sprint(captureSampleRate),
				"-c", "1", "-b", "16", "-e", "signed-integer", "-t", "raw", "-"},
		}, nil
	}
	if _, err := exec.LookPath("arecord"); err == nil {
		return &ExecRecorder{
			command: "arecord",
			args: []string{"-q", "-f", "S16_LE", "-r", fmt.Sprint(captureSampleRate),
				"-c", "1", "-t", "raw"},
		}, nil
	}
	return nil, errors.New("audio: no capture tool found on PATH (tried rec, arecord)")
}

// Record implements Recorder. The capture process runs until ctx is
// cancelled; whatever was written to stdout by then is converted and
// returned.
func (r *ExecRecorder) Record(ctx context.Context) ([]float32, error) {
	cmd := exec.CommandContext(ctx, r.command, r.args...)
	// Ask the tool to flush and exit rather than being killed mid-write.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGINT)
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf

	err := cmd.Run()
	if err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("audio: %s: %w", r.command, err)
	}

	return BytesToFloat32(buf.Bytes()), nil
}

// ExecPlayer implements Player by handing a temporary WAV file to the
// platform's playback command.
type ExecPlayer struct {
	command string
}

// Compile-time interface assertion.
var _ Player = (*ExecPlayer)(nil)

// NewExecPlayer creates a player using the first available playback tool.
func NewExecPlayer() (*ExecPlayer, error) {
	var candidates []string
	if runtime.GOOS == "darwin" {
		candidates = []string{"afplay"}
	} else {
		candidates = []string{"paplay", "aplay", "play"}
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c); err == nil {
			return &ExecPlayer{command: c}, nil
		}
	}
	return nil, errors.New("audio: no playback tool found on PATH (tried " + strings.Join(candidates, ", ") + ")")
}

// Play implements Player.
func (p *ExecPlayer) Play(ctx context.Context, wav []byte) error {
	if len(wav) == 0 {
		return nil
	}

	f, err := os.CreateTemp("", "lemmetalk-*.wav")
	if err != nil {
		return fmt.Errorf("audio: temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(wav); err != nil {
		f.Close()
		return fmt.Errorf("audio: write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("audio: close temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.command, f.Name())
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("audio: %s: %w: %s", p.command, err, strings.TrimSpace(string(out)))
	}
	return nil
}
