package grounding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ludo/app/client/websearch"
)

type fakeSearcher struct {
	results []websearch.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]websearch.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func TestGround_Disabled(t *testing.T) {
	res := NewService(nil).Ground(context.Background(), "latest news about Go")

	if res.Text != "" || !res.Online || res.Searched {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestGround_NoSearchNeeded(t *testing.T) {
	searcher := &fakeSearcher{}
	res := NewService(searcher).Ground(context.Background(), "tell me a joke about cats")

	if res.Text != "" || !res.Online || res.Searched {
		t.Errorf("unexpected result %+v", res)
	}
	if len(searcher.queries) != 0 {
		t.Errorf("expected no search, got %v", searcher.queries)
	}
}

func TestGround_Offline(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("dial tcp: no route to host")}
	res := NewService(searcher).Ground(context.Background(), "latest news about Go")

	if res.Online || !res.Searched {
		t.Errorf("expected offline searched result, got %+v", res)
	}
	if !strings.Contains(res.Text, "no connection available") {
		t.Errorf("unexpected text %q", res.Text)
	}
}

func TestGround_NoResults(t *testing.T) {
	res := NewService(&fakeSearcher{}).Ground(context.Background(), "latest news about Go")

	if !res.Online || res.Text != noResultsNotice {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestGround_FormatsResults(t *testing.T) {
	searcher := &fakeSearcher{results: []websearch.Result{
		{Title: "Go 1.26 released", Snippet: "The Go team announced..."},
		{Snippet: "untitled snippet"},
	}}

	res := NewService(searcher).Ground(context.Background(), "latest news about Go")

	want := "\n\n[REAL-TIME WEB RESULTS]:\n" +
		"1. Go 1.26 released\nThe Go team announced...\n" +
		"2. untitled snippet\n" +
		"[Use these current results to answer accurately.]\n"

	if res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if res.Count != 2 || !res.Online {
		t.Errorf("unexpected result %+v", res)
	}
}
