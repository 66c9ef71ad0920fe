package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

var _ Backend = (*DuckDuckGo)(nil)

// DuckDuckGo scrapes the HTML results page of DuckDuckGo.
type DuckDuckGo struct {
	baseURL    string
	httpClient *http.Client
}

func NewDuckDuckGo(baseURL string, timeout time.Duration) *DuckDuckGo {
	return &DuckDuckGo{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	searchURL := d.baseURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query duckduckgo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	return parseResults(resp.Body, limit)
}

func parseResults(r io.Reader, limit int) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var results []Result

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(results) >= limit {
			return
		}

		if isElement(n, "div") && hasClass(n, "result") {
			title := findElement(n, "a", "result__a")
			snippet := findElement(n, "a", "result__snippet")

			if title != nil && snippet != nil {
				results = append(results, Result{
					Title:   textContent(title),
					URL:     resolveLink(attr(title, "href")),
					Snippet: textContent(snippet),
				})
			}

			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

// resolveLink unwraps DuckDuckGo redirect links to the target url.
func resolveLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}

	if target := u.Query().Get("uddg"); target != "" {
		return target
	}

	return href
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}

	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

func findElement(n *html.Node, tag, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, tag) && hasClass(c, class) {
			return c
		}

		if found := findElement(c, tag, class); found != nil {
			return found
		}
	}

	return nil
}

func textContent(n *html.Node) string {
	var parts []string

	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	return strings.Join(parts, " ")
}
