// Package app wires configuration, providers, storage, and workflows into
// the running assistant and owns the per-turn control flow.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/hemanthsagarb9/LemmeTalk/internal/chat"
	"github.com/hemanthsagarb9/LemmeTalk/internal/config"
	"github.com/hemanthsagarb9/LemmeTalk/internal/observe"
	"github.com/hemanthsagarb9/LemmeTalk/internal/session"
	"github.com/hemanthsagarb9/LemmeTalk/internal/storage"
	"github.com/hemanthsagarb9/LemmeTalk/internal/workflow"
	"github.com/hemanthsagarb9/LemmeTalk/internal/workflows/news"
	"github.com/hemanthsagarb9/LemmeTalk/internal/workflows/reminders"
	"github.com/hemanthsagarb9/LemmeTalk/internal/workflows/shopping"
	"github.com/hemanthsagarb9/LemmeTalk/internal/workflows/weather"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/audio"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/stt"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/tts"
)

// Spoken fixed phrases of the turn loop.
const (
	didNotCatchPrompt = "I didn't catch that. Could you say it again?"
	farewellPhrase    = "Goodbye!"
)

// Providers bundles the external collaborators the assistant needs. All
// fields are required by Run; tests exercising ProcessTurn only need LLM.
type Providers struct {
	LLM      llm.Provider
	STT      stt.Provider
	Speaker  tts.Speaker
	Recorder audio.Recorder
}

// App is the assembled assistant.
type App struct {
	cfg       *config.Config
	log       *slog.Logger
	providers Providers

	conv     *session.Conversation
	registry *workflow.Registry
	router   *workflow.Router
	executor *workflow.Executor
	chat     *chat.Chat
	metrics  *observe.Metrics

	storeOverride map[string]storage.ListStore
	sqliteDB      *storage.SQLiteDB
	closers       []func() error
}

// Option is a functional option for New.
type Option func(*App)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.log = logger
		}
	}
}

// WithMetrics overrides the metrics instance. Default: observe.DefaultMetrics().
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithStores overrides the workflow list stores, keyed by workflow name.
// Used in tests to avoid touching the filesystem.
func WithStores(stores map[string]storage.ListStore) Option {
	return func(a *App) { a.storeOverride = stores }
}

// New builds the assistant: conversation state, storage, the workflow
// registry (static registration, duplicates are fatal), router, executor,
// and the conversational fallback.
func New(cfg *config.Config, providers Providers, opts ...Option) (*App, error) {
	if providers.LLM == nil {
		return nil, errors.New("app: an LLM provider is required")
	}

	a := &App{
		cfg:       cfg,
		log:       slog.Default(),
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	convOpts := []session.Option{}
	if n := cfg.Assistant.MaxHistoryTurns; n > 0 {
		convOpts = append(convOpts, session.WithMaxTurns(n))
	}
	a.conv = session.New(chat.SystemPrompt, convOpts...)

	if err := a.registerWorkflows(); err != nil {
		return nil, err
	}

	routerOpts := []workflow.RouterOption{workflow.WithRouterLogger(a.log)}
	if d := cfg.Timeouts.Classify.Std(); d > 0 {
		routerOpts = append(routerOpts, workflow.WithClassifyTimeout(d))
	}
	if k := cfg.Assistant.ContextTurns; k > 0 {
		routerOpts = append(routerOpts, workflow.WithContextTurns(k))
	}
	a.router = workflow.NewRouter(a.registry, providers.LLM, a.conv, routerOpts...)

	deps := workflow.Deps{
		UserID:       cfg.Assistant.UserID,
		Conversation: a.conv,
	}
	if deps.UserID == "" {
		deps.UserID = "default"
	}
	execOpts := []workflow.ExecutorOption{workflow.WithExecutorLogger(a.log)}
	if d := cfg.Timeouts.Workflow.Std(); d > 0 {
		execOpts = append(execOpts, workflow.WithExecuteTimeout(d))
	}
	a.executor = workflow.NewExecutor(a.registry, deps, execOpts...)

	a.chat = chat.New(providers.LLM, a.conv, chat.WithLogger(a.log))

	return a, nil
}

// newStore returns the list store for a workflow, honoring WithStores
// overrides and sharing a single SQLite handle across workflows.
func (a *App) newStore(name string) (storage.ListStore, error) {
	if a.storeOverride != nil {
		if s, ok := a.storeOverride[name]; ok {
			return s, nil
		}
	}

	switch a.cfg.Storage.Backend {
	case config.StorageSQLite:
		if a.sqliteDB == nil {
			db, err := storage.OpenSQLite(a.cfg.Storage.SQLitePath)
			if err != nil {
				return nil, err
			}
			a.sqliteDB = db
			a.closers = append(a.closers, db.Close)
		}
		return a.sqliteDB.List(name), nil

	default:
		dir := a.cfg.Storage.Dir
		if dir == "" {
			dir = ".lemmetalk"
		}
		return storage.NewFileStore(filepath.Join(dir, name+".json"))
	}
}

// registerWorkflows builds and registers every enabled workflow. A duplicate
// name is a configuration bug and fails construction.
func (a *App) registerWorkflows() error {
	a.registry = workflow.NewRegistry()

	enabled := a.cfg.Workflows.Enabled
	if len(enabled) == 0 {
		enabled = config.KnownWorkflows
	}

	for _, name := range enabled {
		var (
			h   workflow.Handler
			err error
		)
		switch name {
		case "shopping":
			var store storage.ListStore
			if store, err = a.newStore("shopping"); err == nil {
				h = shopping.New(a.providers.LLM, store)
			}
		case "reminders":
			var store storage.ListStore
			if store, err = a.newStore("reminders"); err == nil {
				h = reminders.New(a.providers.LLM, store)
			}
		case "weather":
			h = weather.New(a.providers.LLM)
		case "news":
			newsOpts := []news.Option{news.WithLogger(a.log)}
			if n := a.cfg.Workflows.News.StoryCount; n > 0 {
				newsOpts = append(newsOpts, news.WithStoryCount(n))
			}
			h = news.New(a.providers.LLM, newsOpts...)
		default:
			err = fmt.Errorf("app: unknown workflow %q", name)
		}
		if err != nil {
			return fmt.Errorf("app: build workflow %q: %w", name, err)
		}
		if err := a.registry.Register(h); err != nil {
			return fmt.Errorf("app: register workflow: %w", err)
		}
		a.log.Info("workflow registered", "name", name)
	}
	return nil
}

// Conversation exposes the transcript, mainly for tests.
func (a *App) Conversation() *session.Conversation { return a.conv }

// Workflows returns the names of the registered workflows in order.
func (a *App) Workflows() []string { return a.registry.Names() }

// ProcessTurn handles one transcribed utterance end to end: append the user
// turn, route, execute the chosen workflow or fall back to conversation,
// append the assistant turn, and return the speakable reply.
//
// ProcessTurn never fails for workflow-level errors — those surface as
// apologetic replies. The returned error covers only the fallback
// conversation path, where there is no other way to produce output.
func (a *App) ProcessTurn(ctx context.Context, utterance string) (string, error) {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "assistant.turn")
	defer span.End()

	a.conv.Append(session.RoleUser, utterance)

	classifyStart := time.Now()
	decision, err := a.router.Route(ctx, utterance)
	if err != nil {
		return "", fmt.Errorf("app: route: %w", err)
	}
	a.metrics.ClassifyDuration.Record(ctx, time.Since(classifyStart).Seconds())
	a.metrics.RecordRouterDecision(ctx, decision.Workflow, decision.Method)

	var reply string
	if decision.Fallback() {
		a.log.Debug("routing to conversation", "utterance", utterance)
		reply, err = a.chat.Reply(ctx, utterance)
		if err != nil {
			return "", fmt.Errorf("app: chat: %w", err)
		}
	} else {
		a.log.Info("routing to workflow", "workflow", decision.Workflow, "method", decision.Method)
		wfStart := time.Now()
		result := a.executor.Execute(ctx, decision.Workflow, utterance)
		a.metrics.WorkflowDuration.Record(ctx, time.Since(wfStart).Seconds())
		a.metrics.RecordWorkflowRun(ctx, result.Workflow, result.Succeeded)
		reply = result.Response
	}

	a.conv.Append(session.RoleAssistant, reply)
	a.metrics.TurnDuration.Record(ctx, time.Since(start).Seconds())
	return reply, nil
}

// Run drives the capture → transcribe → process → speak loop until ctx is
// cancelled, then says goodbye.
func (a *App) Run(ctx context.Context) error {
	if a.providers.STT == nil || a.providers.Speaker == nil || a.providers.Recorder == nil {
		return errors.New("app: Run requires STT, Speaker, and Recorder providers")
	}

	if err := a.speak(ctx, a.greeting()); err != nil {
		a.log.Warn("greeting failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			a.sayFarewell()
			return nil
		default:
		}

		samples, err := a.providers.Recorder.Record(ctx)
		if err != nil {
			if ctx.Err() != nil {
				a.sayFarewell()
				return nil
			}
			a.log.Error("recording failed", "error", err)
			continue
		}

		sttStart := time.Now()
		utterance, err := a.providers.STT.Transcribe(ctx, samples)
		if err != nil {
			if ctx.Err() != nil {
				a.sayFarewell()
				return nil
			}
			a.log.Error("transcription failed", "error", err)
			a.metrics.RecordProviderError(ctx, "stt", "transcribe")
			continue
		}
		a.metrics.STTDuration.Record(ctx, time.Since(sttStart).Seconds())

		utterance = strings.TrimSpace(utterance)
		if utterance == "" {
			a.metrics.EmptyTranscriptions.Add(ctx, 1)
			if err := a.speak(ctx, didNotCatchPrompt); err != nil {
				a.log.Warn("speaking prompt failed", "error", err)
			}
			continue
		}
		a.log.Info("heard", "utterance", utterance)

		reply, err := a.ProcessTurn(ctx, utterance)
		if err != nil {
			if ctx.Err() != nil {
				a.sayFarewell()
				return nil
			}
			a.log.Error("turn failed", "error", err)
			reply = "Sorry, I'm having trouble thinking right now."
		}

		if err := a.speak(ctx, reply); err != nil {
			a.log.Error("speaking failed", "error", err)
		}
	}
}

// Close releases storage handles.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// greeting announces the registered workflows so the user knows what they
// can ask for.
func (a *App) greeting() string {
	names := a.registry.Names()
	if len(names) == 0 {
		return "Hello! I'm listening."
	}
	return fmt.Sprintf("Hello! I can help with %s, or we can just chat.",
		strings.Join(names, ", "))
}

func (a *App) speak(ctx context.Context, text string) error {
	start := time.Now()
	err := a.providers.Speaker.Speak(ctx, text)
	a.metrics.SpeakDuration.Record(ctx, time.Since(start).Seconds())
	return err
}

// sayFarewell speaks the goodbye phrase outside the cancelled loop context.
func (a *App) sayFarewell() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.providers.Speaker.Speak(ctx, farewellPhrase); err != nil {
		a.log.Warn("farewell failed", "error", err)
	}
}
