package news

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// previewLen caps the extracted article text fed into the summary prompt.
const previewLen = 300

// contentSelectors are tried in order; the first match is taken as the
// article body.
var contentSelectors = []string{
	"article", "main", ".content", ".post-content", ".entry-content",
	".article-content", ".story-content", "[role=main]",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// userAgent identifies the fetcher as an ordinary browser; several news
// sites serve stripped pages to unknown agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// extractPreview fetches url and returns a short plain-text preview of its
// main content. Failures return "" so a paywalled or broken article never
// sinks the bulletin.
func extractPreview(ctx context.Context, hc *http.Client, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	return previewFromDocument(doc)
}

// previewFromDocument pulls the main content text out of a parsed page.
func previewFromDocument(doc *goquery.Document) string {
	doc.Find("script, style").Remove()

	var content *goquery.Selection
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			content = s
			break
		}
	}
	if content == nil {
		content = doc.Find("body").First()
	}
	if content.Length() == 0 {
		return ""
	}

	text := whitespaceRun.ReplaceAllString(strings.TrimSpace(content.Text()), " ")
	return trimPreview(text, previewLen)
}

// trimPreview shortens s for inclusion in the summary prompt, truncating on
// a rune boundary so multi-byte characters are never split.
func trimPreview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...", s[:cut])
}
