// Command lemmetalk is the voice assistant's main entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hemanthsagarb9/LemmeTalk/internal/app"
	"github.com/hemanthsagarb9/LemmeTalk/internal/config"
	"github.com/hemanthsagarb9/LemmeTalk/internal/observe"
	"github.com/hemanthsagarb9/LemmeTalk/internal/resilience"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/audio"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm/anyllm"
	oaidirect "github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm/openai"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/stt"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/stt/whisper"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/tts"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/tts/coqui"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/tts/sysvoice"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "lemmetalk: config file %q not found — copy config.example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "lemmetalk: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("lemmetalk starting",
		"config", *configPath,
		"log_level", cfg.Server.LogLevel,
		"storage", cfg.Storage.Backend,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "lemmetalk",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	if addr := cfg.Server.MetricsAddr; addr != "" {
		go serveMetrics(addr)
	}

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Instantiate providers ─────────────────────────────────────────────────
	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	application, err := app.New(cfg, providers, app.WithLogger(logger))
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			slog.Warn("close error", "err", err)
		}
	}()

	slog.Info("assistant ready — press Ctrl+C to shut down",
		"workflows", application.Workflows())

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────
	// openai, anthropic, gemini, deepseek, mistral, groq, llamacpp, llamafile
	// all share the same pattern: optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"openai", "anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			p, err := anyllm.New(providerName, entry.Model, opts...)
			if err != nil {
				return nil, err
			}
			return p, nil
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		p, err := anyllm.New("ollama", entry.Model, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	// openai-direct talks to the OpenAI API through the official SDK instead
	// of the any-llm abstraction, for tool-calling parity with new models.
	reg.RegisterLLM("openai-direct", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oaidirect.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaidirect.WithBaseURL(entry.BaseURL))
		}
		if org := entry.StringOption("organization"); org != "" {
			opts = append(opts, oaidirect.WithOrganization(org))
		}
		p, err := oaidirect.New(entry.APIKey, entry.Model, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("whisper-native", func(entry config.ProviderEntry) (stt.Provider, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = entry.StringOption("model_path")
		}
		var opts []whisper.Option
		if lang := entry.StringOption("language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		p, err := whisper.New(modelPath, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("coqui", func(entry config.ProviderEntry) (tts.Speaker, error) {
		var opts []coqui.Option
		if lang := entry.StringOption("language"); lang != "" {
			opts = append(opts, coqui.WithLanguage(lang))
		}
		if id := entry.StringOption("speaker"); id != "" {
			opts = append(opts, coqui.WithSpeaker(id))
		}
		p, err := coqui.New(entry.BaseURL, opts...)
		if err != nil {
			return nil, err
		}
		player, err := audio.NewExecPlayer()
		if err != nil {
			return nil, err
		}
		return tts.NewSpeaker(p, player), nil
	})

	reg.RegisterTTS("sysvoice", func(entry config.ProviderEntry) (tts.Speaker, error) {
		var opts []sysvoice.Option
		if cmd := entry.StringOption("command"); cmd != "" {
			opts = append(opts, sysvoice.WithCommand(cmd))
		}
		s, err := sysvoice.New(opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// buildProviders instantiates the providers named in cfg using the registry.
// The speaker is always wrapped in a circuit-breaking fallback chain ending
// at the OS voice, so a dead TTS server never leaves the assistant mute. The
// LLM gets a breaker too, turning repeated provider outages into fast
// failures on the classification path.
func buildProviders(cfg *config.Config, reg *config.Registry) (app.Providers, error) {
	var ps app.Providers

	p, err := reg.CreateLLM(cfg.Providers.LLM)
	if err != nil {
		return ps, fmt.Errorf("create llm provider %q: %w", cfg.Providers.LLM.Name, err)
	}
	ps.LLM = resilience.NewLLMFallback(p, cfg.Providers.LLM.Name, resilience.FallbackConfig{})
	slog.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name)

	if name := cfg.Providers.STT.Name; name != "" {
		sp, err := reg.CreateSTT(cfg.Providers.STT)
		if err != nil {
			return ps, fmt.Errorf("create stt provider %q: %w", name, err)
		}
		ps.STT = sp
		slog.Info("provider created", "kind", "stt", "name", name)
	}

	osVoice, err := sysvoice.New()
	if err != nil {
		return ps, fmt.Errorf("create system voice: %w", err)
	}
	if name := cfg.Providers.TTS.Name; name != "" && name != "sysvoice" {
		speaker, err := reg.CreateTTS(cfg.Providers.TTS)
		if err != nil {
			return ps, fmt.Errorf("create tts provider %q: %w", name, err)
		}
		chain := resilience.NewSpeakerFallback(speaker, name, resilience.FallbackConfig{})
		chain.AddFallback("sysvoice", osVoice)
		ps.Speaker = chain
		slog.Info("provider created", "kind", "tts", "name", name, "fallback", "sysvoice")
	} else {
		ps.Speaker = osVoice
		slog.Info("provider created", "kind", "tts", "name", "sysvoice")
	}

	recorder, err := audio.NewExecRecorder()
	if err != nil {
		return ps, fmt.Errorf("create recorder: %w", err)
	}
	ps.Recorder = recorder

	return ps, nil
}

// ── Metrics endpoint ──────────────────────────────────────────────────────────

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics endpoint listening", "addr", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics endpoint error", "err", err)
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        LemmeTalk — startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	printProvider("STT", cfg.Providers.STT.Name, cfg.Providers.STT.Model)
	printProvider("TTS", cfg.Providers.TTS.Name, cfg.Providers.TTS.Model)
	workflows := cfg.Workflows.Enabled
	if len(workflows) == 0 {
		workflows = config.KnownWorkflows
	}
	fmt.Printf("║  Workflows       : %-19d ║\n", len(workflows))
	fmt.Printf("║  Storage         : %-19s ║\n", storageSummary(cfg))
	if cfg.Server.MetricsAddr != "" {
		fmt.Printf("║  Metrics addr    : %-19s ║\n", cfg.Server.MetricsAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func storageSummary(cfg *config.Config) string {
	if cfg.Storage.Backend == config.StorageSQLite {
		return "sqlite"
	}
	return "file"
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}
