// Package coqui provides a local Coqui TTS-backed provider that connects to a
// standard Coqui TTS server (ghcr.io/coqui-ai/tts-cpu) via its REST API.
// Synthesis is performed via GET /api/tts with URL query parameters; the
// server answers with a complete WAV file, which suits LemmeTalk's turn-based
// speak-the-whole-reply model.
//
// Typical usage:
//
//	p, err := coqui.New("http://localhost:5002",
//	    coqui.WithLanguage("en"),
//	    coqui.WithTimeout(15*time.Second),
//	)
//	wav, err := p.Synthesize(ctx, "Hello there")
package coqui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/tts"
)

const (
	defaultLanguage = "en"
	defaultTimeout  = 30 * time.Second
	ttsEndpoint     = "/api/tts"
)

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

// Provider implements tts.Provider against a Coqui TTS server.
type Provider struct {
	baseURL  string
	language string
	speaker  string
	client   *http.Client
}

// Option is a functional option for configuring a Coqui Provider.
type Option func(*Provider)

// WithLanguage sets the language ID sent to the TTS server (e.g., "en").
// Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// WithSpeaker selects a speaker ID for multi-speaker models. Empty uses the
// server's default voice.
func WithSpeaker(id string) Option {
	return func(p *Provider) { p.speaker = id }
}

// WithTimeout sets the HTTP timeout for synthesis requests. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.client.Timeout = d }
}

// New creates a Provider targeting the Coqui server at baseURL
// (e.g., "http://localhost:5002").
func New(baseURL string, opts ...Option) (*Provider, error) {
	if baseURL == "" {
		return nil, errors.New("coqui: baseURL must not be empty")
	}
	p := &Provider{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: defaultLanguage,
		client:   &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Synthesize implements tts.Provider. The returned bytes are a complete WAV
// file as produced by the server.
func (p *Provider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("coqui: text must not be empty")
	}

	q := url.Values{}
	q.Set("text", text)
	q.Set("language_id", p.language)
	if p.speaker != "" {
		q.Set("speaker_id", p.speaker)
	}

	reqURL := p.baseURL + ttsEndpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("coqui: build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coqui: synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("coqui: server returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coqui: read audio: %w", err)
	}
	if len(wav) == 0 {
		return nil, errors.New("coqui: server produced no audio")
	}
	return wav, nil
}
