package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jcdickinson/dukedoc/internal/cas"
	"github.com/jcdickinson/dukedoc/internal/docs"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("creating test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

const widgetPage = `<html><body>
<div class="header"><div class="sub-title"><a href="package-summary.html">com.example.ui</a></div></div>
<section class="class-description">
<div class="type-signature"><span class="modifiers">public class </span><span class="element-name">Widget</span></div>
<div class="block">A widget.</div>
</section>
<section class="field-details"><ul class="member-list">
<li><section class="detail"><div class="member-signature"><span class="modifiers">public</span> <span class="return-type">int</span> <span class="element-name">size</span></div></section></li>
</ul></section>
<section class="constructor-details"><ul class="member-list">
<li><section class="detail"><div class="member-signature"><span class="modifiers">public</span> <span class="element-name">Widget</span><span class="parameters">(int size)</span></div></section></li>
</ul></section>
<section id="method-detail"><ul class="member-list">
<li><section class="detail"><div class="member-signature"><span class="modifiers">public</span> <span class="return-type">int</span> <span class="element-name">getSize</span>()</div><div class="block">Returns the size.</div></section></li>
<li><section class="detail"><div class="member-signature"><span class="modifiers">public</span> <span class="return-type">void</span> <span class="element-name">resize</span><span class="parameters">(int size)</span></div></section></li>
</ul></section>
</body></html>`

func testCatalog(t *testing.T) *docs.Catalog {
	t.Helper()
	c, err := docs.ParseClass(context.Background(), strings.NewReader(widgetPage), docs.ParseOptions{})
	if err != nil {
		t.Fatalf("parsing widget: %v", err)
	}
	cat := docs.NewCatalog()
	cat.Add(c)
	return cat
}

func TestIndexCatalog(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	store := cas.New(t.TempDir())
	ctx := context.Background()

	if err := db.IndexCatalog(ctx, testCatalog(t), store, docs.Encoder{}); err != nil {
		t.Fatalf("IndexCatalog: %v", err)
	}

	c, err := db.GetClass("com.example.ui", "Widget")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("class not indexed")
	}
	if c.Kind != "class" || c.Notes != "A widget." {
		t.Errorf("unexpected class row: %+v", c)
	}

	data, err := store.Read(c.ContentHash)
	if err != nil {
		t.Fatalf("reading stored document: %v", err)
	}
	doc, err := docs.DecodeClassJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if doc.QualifiedName() != "com.example.ui.Widget" || len(doc.Methods) != 2 {
		t.Errorf("unexpected stored document: %+v", doc)
	}

	missing, err := db.GetClass("com.example.ui", "Nope")
	if err != nil || missing != nil {
		t.Errorf("GetClass(missing) = %v, %v", missing, err)
	}
}

func TestIndexCatalog_Reindex(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	store := cas.New(t.TempDir())
	ctx := context.Background()

	for range 2 {
		if err := db.IndexCatalog(ctx, testCatalog(t), store, docs.Encoder{}); err != nil {
			t.Fatalf("IndexCatalog: %v", err)
		}
	}

	n, err := db.CountClasses()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected reindex to replace rows, got %d classes", n)
	}

	if err := db.ReplaceAll(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.CountClasses(); n != 0 {
		t.Errorf("expected empty index, got %d", n)
	}
}

func TestListNamespaces(t *testing.T) {
	t.Parallel()
	db := testDB(t)

	records := []ClassRecord{
		{Class: Class{Namespace: "b.pkg", Name: "Two", Kind: "class", ContentHash: "h2"}},
		{Class: Class{Namespace: "a.pkg", Name: "One", Kind: "enum", ContentHash: "h1"}},
		{Class: Class{Namespace: "b.pkg", Name: "Three", Kind: "interface", ContentHash: "h3"}},
	}
	if err := db.ReplaceAll(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListNamespaces()
	if err != nil {
		t.Fatal(err)
	}
	want := []NamespaceSummary{{"a.pkg", 1}, {"b.pkg", 2}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}

	classes, err := db.ListClasses("b.pkg")
	if err != nil {
		t.Fatal(err)
	}
	if len(classes) != 2 || classes[0].Name != "Three" || classes[1].Name != "Two" {
		t.Errorf("unexpected classes: %+v", classes)
	}

	found, err := db.FindClasses("One")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].Namespace != "a.pkg" {
		t.Errorf("FindClasses = %+v", found)
	}
}

func TestSearchNames(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	if err := db.IndexCatalog(context.Background(), testCatalog(t), cas.New(t.TempDir()), docs.Encoder{}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		query  string
		filter Filter
		want   []string
	}{
		{"case insensitive", "SIZE", Filter{}, []string{"method getSize", "method resize", "field size"}},
		{"kind filter", "size", Filter{Kind: KindField}, []string{"field size"}},
		{"class and constructor", "widget", Filter{}, []string{"class Widget", "constructor Widget"}},
		{"namespace filter", "size", Filter{Namespace: "other"}, nil},
		{"no match", "zzz", Filter{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := db.SearchNames(tt.query, tt.filter, 0)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, h := range hits {
				got = append(got, h.Kind+" "+h.Name)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	hits, err := db.SearchNames("size", Filter{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("limit ignored: %d hits", len(hits))
	}
}

func TestResolveClass(t *testing.T) {
	t.Parallel()
	db := testDB(t)

	records := []ClassRecord{
		{Class: Class{Namespace: "a.pkg", Name: "Shared", Kind: "class", ContentHash: "h1"}},
		{Class: Class{Namespace: "b.pkg", Name: "Shared", Kind: "class", ContentHash: "h2"}},
		{Class: Class{Namespace: "b.pkg", Name: "Only", Kind: "class", ContentHash: "h3"}},
	}
	if err := db.ReplaceAll(context.Background(), records); err != nil {
		t.Fatal(err)
	}

	c, err := db.ResolveClass("Only")
	if err != nil || c.Namespace != "b.pkg" {
		t.Errorf("ResolveClass(Only) = %+v, %v", c, err)
	}
	c, err = db.ResolveClass("a.pkg.Shared")
	if err != nil || c.ContentHash != "h1" {
		t.Errorf("ResolveClass(a.pkg.Shared) = %+v, %v", c, err)
	}
	if _, err := db.ResolveClass("Shared"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguity error, got %v", err)
	}
	if _, err := db.ResolveClass("c.pkg.Missing"); err == nil {
		t.Error("expected an error for a missing class")
	}
}
