package grounding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ludo/app/client/websearch"
	"ludo/app/config"

	"github.com/samber/do"
)

const (
	offlineNotice   = "\n[SYSTEM: Internet search attempted but no connection available. Provide answer from training knowledge and inform user internet is unavailable.]\n"
	noResultsNotice = "\n[SYSTEM: Web search found no results. Use training knowledge.]\n"
	resultsHeader   = "\n\n[REAL-TIME WEB RESULTS]:\n"
	resultsFooter   = "[Use these current results to answer accurately.]\n"
)

type Searcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

// Result is the grounding text for one query. Online is false only when a
// search was attempted and the search transport failed.
type Result struct {
	Text     string
	Online   bool
	Searched bool
	Count    int
}

type Service struct {
	enabled  bool
	searcher Searcher
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if !cfg.Search.Enabled {
		return NewService(nil), nil
	}

	return NewService(do.MustInvoke[*websearch.Client](di)), nil
}

// NewService builds a grounding service; a nil searcher disables search.
func NewService(searcher Searcher) *Service {
	return &Service{
		enabled:  searcher != nil,
		searcher: searcher,
	}
}

func (s *Service) Ground(ctx context.Context, query string) Result {
	if !s.enabled || !NeedsInternet(query) {
		return Result{Online: true}
	}

	slog.Info("Query requires internet search", "query", query)

	results, err := s.searcher.Search(ctx, query)
	if err != nil {
		slog.Warn("Web search failed", "query", query, "error", err)
		return Result{Text: offlineNotice, Online: false, Searched: true}
	}

	if len(results) == 0 {
		return Result{Text: noResultsNotice, Online: true, Searched: true}
	}

	slog.Info("Found web results", "query", query, "count", len(results))

	return Result{
		Text:     formatResults(results),
		Online:   true,
		Searched: true,
		Count:    len(results),
	}
}

func formatResults(results []websearch.Result) string {
	var builder strings.Builder

	builder.WriteString(resultsHeader)

	for i, r := range results {
		if r.Title != "" {
			builder.WriteString(fmt.Sprintf("%d. %s\n%s\n", i+1, r.Title, r.Snippet))
		} else {
			builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Snippet))
		}
	}

	builder.WriteString(resultsFooter)

	return builder.String()
}
