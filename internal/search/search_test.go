package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jcdickinson/dukedoc/internal/db"
)

func TestRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, query string
		want        Rank
	}{
		{"size", "size", RankExact},
		{"Size", "sIZE", RankExact},
		{"sizeOf", "size", RankPrefix},
		{"getSize", "size", RankSubstring},
	}
	for _, tt := range tests {
		if got := rank(tt.name, tt.query); got != tt.want {
			t.Errorf("rank(%q, %q) = %v, want %v", tt.name, tt.query, got, tt.want)
		}
	}
}

func TestSearch_Ordering(t *testing.T) {
	t.Parallel()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	records := []db.ClassRecord{{
		Class: db.Class{Namespace: "p", Name: "Box", Kind: "class", ContentHash: "h"},
		Members: []db.Member{
			{Kind: db.KindMethod, Name: "getSize", Signature: "int getSize()"},
			{Kind: db.KindMethod, Name: "sizeOf", Signature: "int sizeOf(Object o)"},
			{Kind: db.KindField, Name: "size", Signature: "int size"},
			{Kind: db.KindMethod, Name: "resize", Signature: "void resize(int size)"},
		},
	}}
	if err := database.ReplaceAll(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	s := NewSearcher(database)
	results, err := s.Search("size", db.Filter{}, 0)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, r := range results {
		got = append(got, r.Name)
	}
	want := []string{"size", "sizeOf", "getSize", "resize"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if results[0].URI() != "jdoc://p/Box" {
		t.Errorf("URI = %q", results[0].URI())
	}

	limited, err := s.Search("size", db.Filter{}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].Name != "size" {
		t.Errorf("limit applied after ranking, got %+v", limited)
	}

	if _, err := s.Search("  ", db.Filter{}, 0); err == nil {
		t.Error("expected an error for an empty query")
	}
}
