package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ludo/app/config"

	"github.com/mark3labs/mcp-go/mcp"
)

type fakeBackend struct {
	calls   int
	results []Result
	err     error
}

func (b *fakeBackend) Search(_ context.Context, _ string, _ int) ([]Result, error) {
	b.calls++
	out := make([]Result, len(b.results))
	copy(out, b.results)
	return out, b.err
}

func TestClient_CachesByNormalizedQuery(t *testing.T) {
	backend := &fakeBackend{results: []Result{{Title: "a", Snippet: "b"}}}
	c := NewCachedClient(backend, config.Search{Results: 3, CacheSize: 20})

	if _, err := c.Search(context.Background(), "Weather in Paris"); err != nil {
		t.Fatalf("Search() returned unexpected error: %v", err)
	}
	if _, err := c.Search(context.Background(), "  weather in paris "); err != nil {
		t.Fatalf("Search() returned unexpected error: %v", err)
	}

	if backend.calls != 1 {
		t.Errorf("expected one backend call, got %d", backend.calls)
	}
}

func TestClient_ErrorsNotCached(t *testing.T) {
	backend := &fakeBackend{err: errors.New("offline")}
	c := NewCachedClient(backend, config.Search{Results: 3, CacheSize: 20})

	for i := 0; i < 2; i++ {
		if _, err := c.Search(context.Background(), "q"); err == nil {
			t.Fatal("expected error")
		}
	}

	if backend.calls != 2 {
		t.Errorf("expected two backend calls, got %d", backend.calls)
	}
}

func TestClient_ClipsAndLimits(t *testing.T) {
	backend := &fakeBackend{results: []Result{
		{Snippet: strings.Repeat("s", 250)},
		{Snippet: "short"},
		{Snippet: "third"},
	}}
	c := NewCachedClient(backend, config.Search{Results: 2, CacheSize: 20, SnippetLength: 200})

	results, err := c.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search() returned unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Snippet != strings.Repeat("s", 200)+"..." {
		t.Errorf("expected clipped snippet, got %d chars", len(results[0].Snippet))
	}
	if results[1].Snippet != "short" {
		t.Errorf("unexpected snippet %q", results[1].Snippet)
	}
}

func TestCache_EvictsOldest(t *testing.T) {
	c := newCache(2)

	c.put("a", nil)
	c.put("b", nil)
	c.put("a", []Result{{Title: "updated"}})
	c.put("c", nil)

	if c.len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.len())
	}
	if _, ok := c.get("a"); ok {
		t.Error("expected oldest insertion to be evicted")
	}
	for _, key := range []string{"b", "c"} {
		if _, ok := c.get(key); !ok {
			t.Errorf("expected %q to be cached", key)
		}
	}
}

func TestCache_Disabled(t *testing.T) {
	c := newCache(0)
	c.put("a", nil)

	if c.len() != 0 {
		t.Errorf("expected empty cache, got %d", c.len())
	}
}

func TestToolArguments(t *testing.T) {
	cases := []struct {
		name  string
		props map[string]any
		want  map[string]any
	}{
		{
			name:  "query and limit",
			props: map[string]any{"query": map[string]any{}, "max_results": map[string]any{}},
			want:  map[string]any{"query": "go", "max_results": 3},
		},
		{
			name:  "short query name",
			props: map[string]any{"q": map[string]any{}, "count": map[string]any{}},
			want:  map[string]any{"q": "go", "count": 3},
		},
		{
			name:  "single unknown property",
			props: map[string]any{"text": map[string]any{}},
			want:  map[string]any{"text": "go"},
		},
		{
			name:  "unknown property next to limit",
			props: map[string]any{"limit": map[string]any{}, "text": map[string]any{}},
			want:  map[string]any{"limit": 3, "text": "go"},
		},
		{
			name:  "no schema",
			props: nil,
			want:  map[string]any{"input": "go"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tool := mcp.Tool{Name: "search"}
			tool.InputSchema.Properties = tc.props

			got := toolArguments(tool, "go", 3)
			if fmt.Sprint(got) != fmt.Sprint(tc.want) {
				t.Errorf("toolArguments = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestContentTexts(t *testing.T) {
	contents := []mcp.Content{
		mcp.NewTextContent(" first result "),
		mcp.NewTextContent("   "),
		mcp.NewTextContent("second result"),
	}

	got := contentTexts(contents)
	if len(got) != 2 || got[0] != "first result" || got[1] != "second result" {
		t.Errorf("unexpected texts %q", got)
	}
}

func TestMCP_NotConfigured(t *testing.T) {
	m := NewMCP(config.MCPSearch{Tool: "search"})

	if _, err := m.Search(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error without command")
	}
}
