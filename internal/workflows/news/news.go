// Package news reads the top Hacker News stories as a podcast-style
// bulletin.
//
// The pipeline fetches the front-page ranking, hydrates each story with a
// bounded number of concurrent workers, extracts a short content preview
// from external article pages, and asks the LLM for a conversational
// summary. When the summary call fails the bulletin degrades to reading the
// headlines, so the user always hears something.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hemanthsagarb9/LemmeTalk/internal/speech"
	"github.com/hemanthsagarb9/LemmeTalk/internal/workflow"
	"github.com/hemanthsagarb9/LemmeTalk/pkg/provider/llm"
)

const summarySystemPrompt = "You are a tech news podcast host. Create engaging, conversational summaries."

const (
	defaultStoryCount  = 10
	fetchConcurrency   = 4
	headlineFallbackN  = 5
	summaryTemperature = 0.7
	summaryMaxTokens   = 1000
)

var descriptor = workflow.Descriptor{
	Name:        "news",
	Description: "Read the top Hacker News articles like a news bulletin",
	Triggers: []string{
		"news", "hacker news", "hn", "top articles", "news bulletin",
		"read news", "latest news", "tech news",
	},
}

// Article is one hydrated story ready for summarization.
type Article struct {
	Title   string
	URL     string
	Score   int
	Author  string
	Preview string
}

// Handler is the news workflow.
type Handler struct {
	provider llm.Provider
	client   *Client
	http     *http.Client
	log      *slog.Logger
	count    int
}

var _ workflow.Handler = (*Handler)(nil)

// Option is a functional option for New.
type Option func(*Handler)

// WithClient overrides the Hacker News API client.
func WithClient(c *Client) Option {
	return func(h *Handler) {
		if c != nil {
			h.client = c
		}
	}
}

// WithArticleHTTPClient overrides the client used to fetch article pages.
func WithArticleHTTPClient(hc *http.Client) Option {
	return func(h *Handler) {
		if hc != nil {
			h.http = hc
		}
	}
}

// WithStoryCount sets how many stories make the bulletin. Default: 10.
func WithStoryCount(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.count = n
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.log = logger
		}
	}
}

// New creates the news workflow.
func New(provider llm.Provider, opts ...Option) *Handler {
	h := &Handler{
		provider: provider,
		client:   NewClient(),
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      slog.Default(),
		count:    defaultStoryCount,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Describe implements workflow.Handler.
func (h *Handler) Describe() workflow.Descriptor { return descriptor }

// CanHandle implements workflow.Handler.
func (h *Handler) CanHandle(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range descriptor.Triggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Run implements workflow.Handler.
func (h *Handler) Run(ctx context.Context, input string, deps workflow.Deps) (workflow.Result, error) {
	articles, err := h.fetchArticles(ctx)
	if err != nil {
		return workflow.Result{}, fmt.Errorf("news: %w", err)
	}
	if len(articles) == 0 {
		return workflow.Result{
			Response:  "I couldn't find any news stories right now.",
			Succeeded: true,
			Workflow:  descriptor.Name,
		}, nil
	}

	summary := h.podcastSummary(ctx, articles)
	return workflow.Result{
		Response:  speech.Normalize(summary),
		Succeeded: true,
		Workflow:  descriptor.Name,
	}, nil
}

// fetchArticles hydrates the top stories with bounded concurrency,
// preserving front-page rank order. Individual story failures are logged
// and skipped.
func (h *Handler) fetchArticles(ctx context.Context) ([]Article, error) {
	ids, err := h.client.TopStories(ctx, h.count)
	if err != nil {
		return nil, err
	}

	results := make([]*Article, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			story, err := h.client.Story(gctx, id)
			if err != nil {
				h.log.Warn("story fetch failed", "id", id, "error", err)
				return nil
			}
			if story == nil {
				return nil
			}

			a := Article{
				Title:  story.Title,
				URL:    story.URL,
				Score:  story.Score,
				Author: story.By,
			}
			if a.URL == "" {
				a.URL = story.DiscussionURL()
			} else if !strings.HasPrefix(a.URL, "https://news.ycombinator.com") {
				a.Preview = extractPreview(gctx, h.http, a.URL)
			}
			results[i] = &a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	articles := make([]Article, 0, len(results))
	for _, a := range results {
		if a != nil {
			articles = append(articles, *a)
		}
	}
	return articles, nil
}

// podcastSummary asks the LLM for a bulletin over the articles, degrading to
// plain headlines when the call fails.
func (h *Handler) podcastSummary(ctx context.Context, articles []Article) string {
	resp, err := h.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: summarySystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: summaryPrompt(articles)},
		},
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil || resp == nil || strings.TrimSpace(resp.Content) == "" {
		h.log.Warn("podcast summary failed, reading headlines", "error", err)
		return headlineSummary(articles)
	}
	return resp.Content
}

// summaryPrompt renders the article data for the summary request.
func summaryPrompt(articles []Article) string {
	var b strings.Builder
	b.WriteString("Create a podcast-style news summary for these Hacker News articles. ")
	b.WriteString("Write as if you're hosting a tech news podcast. Use natural speech patterns, ")
	b.WriteString("avoid reading numbers, and make it engaging for voice output.\n\nArticles:\n")
	for i, a := range articles {
		fmt.Fprintf(&b, "Article %d: %s", i+1, a.Title)
		if a.Preview != "" {
			fmt.Fprintf(&b, " - Content: %s", trimPreview(a.Preview, 200))
		}
		if a.Score > 0 {
			fmt.Fprintf(&b, " - Score: %d", a.Score)
		}
		b.WriteByte('\n')
	}
	b.WriteString("\nFormat the response as a conversational podcast intro and then cover each story briefly. ")
	b.WriteString("Keep it engaging and natural for voice output.")
	return b.String()
}

// headlineSummary is the deterministic fallback bulletin.
func headlineSummary(articles []Article) string {
	var b strings.Builder
	b.WriteString("Here are the top stories from Hacker News today.")
	for i, a := range articles {
		if i >= headlineFallbackN {
			break
		}
		fmt.Fprintf(&b, " %s.", a.Title)
	}
	return b.String()
}
