package search

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jcdickinson/dukedoc/internal/db"
)

// Rank orders how closely a name matched the query.
type Rank int

const (
	RankExact Rank = iota
	RankPrefix
	RankSubstring
)

func (r Rank) String() string {
	switch r {
	case RankExact:
		return "exact"
	case RankPrefix:
		return "prefix"
	default:
		return "substring"
	}
}

type Result struct {
	db.Hit
	Rank Rank
}

// URI addresses the class the result belongs to.
func (r Result) URI() string {
	return fmt.Sprintf("jdoc://%s/%s", r.Namespace, r.Class)
}

type Searcher struct {
	db *db.DB
}

func NewSearcher(database *db.DB) *Searcher {
	return &Searcher{db: database}
}

// Search finds classes and members whose name contains query. Exact matches
// come first, then prefix matches, then the rest; ties keep index order.
func (s *Searcher) Search(query string, filter db.Filter, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	slog.Debug("search", "query", query, "kind", filter.Kind, "namespace", filter.Namespace, "limit", limit)

	hits, err := s.db.SearchNames(query, filter, 0)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{Hit: h, Rank: rank(h.Name, query)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Rank < results[j].Rank
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	slog.Debug("search done", "candidates", len(hits), "returned", len(results))
	return results, nil
}

func rank(name, query string) Rank {
	name, query = strings.ToLower(name), strings.ToLower(query)
	switch {
	case name == query:
		return RankExact
	case strings.HasPrefix(name, query):
		return RankPrefix
	default:
		return RankSubstring
	}
}
