package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ludo/app/config"

	"github.com/samber/do"
)

type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Backend performs one uncached search.
type Backend interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

var _ do.Shutdownable = (*Client)(nil)

// Client is the cached search entry point used for grounding.
type Client struct {
	backend       Backend
	cache         *cache
	limit         int
	snippetLength int
	timeout       time.Duration
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	var backend Backend
	switch cfg.Search.Provider {
	case "mcp":
		backend = NewMCP(cfg.Search.MCP)
	default:
		backend = NewDuckDuckGo(cfg.Search.BaseURL, cfg.Search.Timeout)
	}

	return NewCachedClient(backend, cfg.Search), nil
}

func NewCachedClient(backend Backend, cfg config.Search) *Client {
	return &Client{
		backend:       backend,
		cache:         newCache(cfg.CacheSize),
		limit:         cfg.Results,
		snippetLength: cfg.SnippetLength,
		timeout:       cfg.Timeout,
	}
}

// Search returns results for query, serving repeated queries from cache.
// Failed searches are not cached.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	if results, ok := c.cache.get(key); ok {
		slog.Debug("Using cached search results", "query", query)
		return results, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	results, err := c.backend.Search(ctx, query, c.limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if c.limit > 0 && len(results) > c.limit {
		results = results[:c.limit]
	}

	for i := range results {
		results[i].Snippet = clip(results[i].Snippet, c.snippetLength)
	}

	c.cache.put(key, results)

	return results, nil
}

func (c *Client) Close() error {
	if closer, ok := c.backend.(interface{ Close() error }); ok {
		return closer.Close()
	}

	return nil
}

func (c *Client) Shutdown() error {
	return c.Close()
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}

	return string(runes[:limit]) + "..."
}
