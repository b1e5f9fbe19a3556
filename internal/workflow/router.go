package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hemanthsagarb9/LemmeTalk/internal/phonetic"
	"github.com/hemanthsagarb9/LemmeTalk/internal/session"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
)

// fallbackToken is the reply the classifier must give when no workflow
// applies and the utterance should go to general conversation.
const fallbackToken = "none"

const (
	defaultClassifyTimeout = 10 * time.Second
	defaultContextTurns    = 4
	defaultClassifyTokens  = 16
)

// Decision is the router's verdict for one utterance. The zero value routes
// to the conversational fallback.
type Decision struct {
	// Workflow is the name of the chosen handler, or "" for the
	// conversational fallback. When non-empty it is always a registered name.
	Workflow string

	// Method records how the decision was made: "llm", "keyword",
	// "phonetic", or "fallback". Diagnostic only.
	Method string
}

// Fallback reports whether the decision routes to general conversation.
func (d Decision) Fallback() bool { return d.Workflow == "" }

// RouterOption is a functional option for NewRouter.
type RouterOption func(*Router)

// WithClassifyTimeout bounds the LLM classification call. On expiry the
// router falls back to keyword matching. Default: 10s.
func WithClassifyTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		if d > 0 {
			r.classifyTimeout = d
		}
	}
}

// WithContextTurns sets how many recent conversation turns are included in
// the classification prompt so follow-ups ("add eggs too") route like their
// antecedent. Default: 4.
func WithContextTurns(k int) RouterOption {
	return func(r *Router) {
		if k >= 0 {
			r.contextTurns = k
		}
	}
}

// WithRouterLogger sets the logger. Default: slog.Default().
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithMatcher overrides the phonetic trigger matcher. Default: phonetic.New().
func WithMatcher(m *phonetic.Matcher) RouterOption {
	return func(r *Router) {
		if m != nil {
			r.matcher = m
		}
	}
}

// Router decides which workflow, if any, should handle an utterance.
//
// The primary path asks the LLM to classify the utterance against every
// registered descriptor. When classification fails (provider error, timeout,
// unparseable reply) the router degrades to a deterministic trigger-keyword
// scan in registration order, tolerant of speech-to-text mishearings via
// phonetic matching. A routing decision is therefore always produced; the
// worst case is the conversational fallback, never an error surfaced to the
// user.
type Router struct {
	registry *Registry
	provider llm.Provider
	conv     *session.Conversation
	matcher  *phonetic.Matcher
	log      *slog.Logger

	classifyTimeout time.Duration
	contextTurns    int
}

// NewRouter creates a Router over the given registry. conv may be nil, in
// which case classification runs without conversation context.
func NewRouter(registry *Registry, provider llm.Provider, conv *session.Conversation, opts ...RouterOption) *Router {
	r := &Router{
		registry:        registry,
		provider:        provider,
		conv:            conv,
		matcher:         phonetic.New(),
		log:             slog.Default(),
		classifyTimeout: defaultClassifyTimeout,
		contextTurns:    defaultContextTurns,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Route classifies utterance and returns a decision. The returned error is
// nil in all non-programming-error cases: classification failures degrade to
// keyword matching and then to the fallback decision.
func (r *Router) Route(ctx context.Context, utterance string) (Decision, error) {
	if strings.TrimSpace(utterance) == "" {
		return Decision{Method: "fallback"}, nil
	}
	if r.registry.Len() == 0 {
		return Decision{Method: "fallback"}, nil
	}

	name, err := r.classify(ctx, utterance)
	if err != nil {
		r.log.Warn("classification failed, using keyword fallback", "error", err)
		return r.keywordScan(utterance), nil
	}

	if name == fallbackToken {
		return Decision{Method: "llm"}, nil
	}

	// The classifier is instructed to answer with a registered name, but a
	// model can always go off-script. An unknown name routes to fallback
	// rather than to a nonexistent handler.
	if _, lookupErr := r.registry.Get(name); lookupErr != nil {
		r.log.Warn("classifier returned unknown workflow", "name", name)
		return Decision{Method: "fallback"}, nil
	}
	return Decision{Workflow: name, Method: "llm"}, nil
}

// classify asks the LLM which workflow, if any, the utterance belongs to.
// Returns the lowercased trimmed reply, which is either a registered name,
// the fallback token, or garbage the caller must reject.
func (r *Router) classify(ctx context.Context, utterance string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.classifyTimeout)
	defer cancel()

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: r.classifyPrompt(),
		Messages: []llm.Message{
			{Role: session.RoleUser, Content: r.classifyInput(utterance)},
		},
		Temperature: 0,
		MaxTokens:   defaultClassifyTokens,
	})
	if err != nil {
		return "", fmt.Errorf("workflow: classify: %w", err)
	}

	reply := strings.ToLower(strings.TrimSpace(resp.Content))
	reply = strings.Trim(reply, `"'.`)
	if reply == "" {
		return "", fmt.Errorf("workflow: classify: empty reply")
	}
	return reply, nil
}

// classifyPrompt builds the classification system prompt from the registered
// descriptors.
func (r *Router) classifyPrompt() string {
	var b strings.Builder
	b.WriteString("You are an intent classifier for a voice assistant. ")
	b.WriteString("Decide which workflow should handle the user's request.\n\n")
	b.WriteString("Workflows:\n")
	for _, d := range r.registry.Descriptors() {
		fmt.Fprintf(&b, "- %s: %s", d.Name, d.Description)
		if len(d.Triggers) > 0 {
			fmt.Fprintf(&b, " (trigger words: %s)", strings.Join(d.Triggers, ", "))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nAnswer with exactly one workflow name from the list above, or %q if the request is general conversation that matches no workflow. Answer with that single word only.", fallbackToken)
	return b.String()
}

// classifyInput renders the utterance, prefixed with recent conversation
// turns when available, so follow-up requests classify in context.
func (r *Router) classifyInput(utterance string) string {
	if r.conv == nil || r.contextTurns == 0 {
		return utterance
	}
	// The turn loop appends the user's turn before routing, so a plain tail
	// would end by repeating the utterance being classified. Fetch one extra
	// turn and drop that duplicate so the full window is prior context.
	tail := r.conv.Tail(r.contextTurns + 1)
	if cur := session.RoleUser + ": " + utterance; strings.HasSuffix(tail, cur) {
		tail = strings.TrimRight(strings.TrimSuffix(tail, cur), "\n")
	} else {
		tail = r.conv.Tail(r.contextTurns)
	}
	if tail == "" {
		return utterance
	}
	return fmt.Sprintf("Recent conversation:\n%s\n\nClassify this request: %s", tail, utterance)
}

// keywordScan is the deterministic degraded path: case-insensitive substring
// match of each handler's triggers against the utterance, in registration
// order, followed by a phonetic pass that tolerates mishearings such as
// "remined me" for "remind me".
func (r *Router) keywordScan(utterance string) Decision {
	lower := strings.ToLower(utterance)

	for _, h := range r.registry.List() {
		if h.CanHandle(utterance) {
			return Decision{Workflow: h.Describe().Name, Method: "keyword"}
		}
		for _, trigger := range h.Describe().Triggers {
			if trigger != "" && strings.Contains(lower, strings.ToLower(trigger)) {
				return Decision{Workflow: h.Describe().Name, Method: "keyword"}
			}
		}
	}

	for _, h := range r.registry.List() {
		desc := h.Describe()
		if len(desc.Triggers) == 0 {
			continue
		}
		if r.matcher.MatchText(lower, desc.Triggers) {
			r.log.Debug("phonetic trigger match", "workflow", desc.Name, "utterance", utterance)
			return Decision{Workflow: desc.Name, Method: "phonetic"}
		}
	}

	return Decision{Method: "fallback"}
}
