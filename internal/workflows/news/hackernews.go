package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultHNBaseURL = "https://hacker-news.firebaseio.com/v0"

// Story is one Hacker News item as served by the Firebase API.
type Story struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	By    string `json:"by"`
}

// DiscussionURL returns the HN comments page, used when a story has no
// external URL (Ask HN, Show HN text posts).
func (s Story) DiscussionURL() string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", s.ID)
}

// Client calls the Hacker News Firebase API. All requests share a rate
// limiter so a burst of story lookups stays polite.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

// ClientOption is a functional option for NewClient.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(l *rate.Limiter) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// NewClient returns a Client with a 30s HTTP timeout and a 10 req/s limit.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultHNBaseURL,
		limiter: rate.NewLimiter(rate.Limit(10), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TopStories returns up to limit IDs from the front page ranking.
func (c *Client) TopStories(ctx context.Context, limit int) ([]int64, error) {
	var ids []int64
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("news: top stories: %w", err)
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Story fetches one item by ID. Deleted or malformed items come back as nil
// with no error; callers skip them.
func (c *Client) Story(ctx context.Context, id int64) (*Story, error) {
	var s Story
	if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.baseURL, id), &s); err != nil {
		return nil, fmt.Errorf("news: story %d: %w", id, err)
	}
	if s.Title == "" {
		return nil, nil
	}
	if s.ID == 0 {
		s.ID = id
	}
	return &s, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
