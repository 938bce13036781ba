package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jcdickinson/dukedoc/internal/cas"
	"github.com/jcdickinson/dukedoc/internal/db"
	"github.com/jcdickinson/dukedoc/internal/docs"
)

const gadgetPage = `<html><body>
<div class="header"><div class="sub-title"><a href="package-summary.html">com.example.tools</a></div></div>
<section class="class-description">
<div class="type-signature"><span class="modifiers">public final class </span><span class="element-name">Gadget</span></div>
<div class="block">Does things.</div>
</section>
<section class="field-details"><ul class="member-list">
<li><section class="detail"><div class="member-signature"><span class="modifiers">public static final</span> <span class="return-type">int</span> <span class="element-name">LIMIT</span></div></section></li>
</ul></section>
<section id="method-detail"><ul class="member-list">
<li><section class="detail"><div class="member-signature"><span class="modifiers">public</span> <span class="return-type">void</span> <span class="element-name">start</span><span class="parameters">(int speed)</span></div>
<div class="block">Starts the gadget.</div>
<dl class="notes"><dt>Parameters:</dt><dd><code>speed</code> - how fast</dd></dl>
</section></li>
</ul></section>
</body></html>`

func testServer(t *testing.T) *Server {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })

	c, err := docs.ParseClass(context.Background(), strings.NewReader(gadgetPage), docs.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	cat := docs.NewCatalog()
	cat.Add(c)

	store := cas.New(t.TempDir())
	if err := database.IndexCatalog(context.Background(), cat, store, docs.Encoder{}); err != nil {
		t.Fatal(err)
	}
	return NewServer(database, store, "test")
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned a protocol error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return text.Text, res.IsError
}

func TestLookupClass(t *testing.T) {
	t.Parallel()
	s := testServer(t)

	text, isErr := callTool(t, s.handleLookupClass, map[string]any{"name": "com.example.tools.Gadget"})
	if isErr {
		t.Fatalf("lookup failed: %s", text)
	}
	for _, want := range []string{
		"---\nfields: jdoc://com.example.tools/Gadget#fields\nmethods: jdoc://com.example.tools/Gadget#methods\n---\n",
		"# com.example.tools.Gadget",
		"public void start(int speed)",
		"- `speed`: how fast",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}

	text, isErr = callTool(t, s.handleLookupClass, map[string]any{"name": "Gadget", "section": "Fields"})
	if isErr || !strings.HasPrefix(text, "## Fields") || strings.Contains(text, "## Methods") {
		t.Errorf("unexpected section result (error=%v):\n%s", isErr, text)
	}

	if _, isErr := callTool(t, s.handleLookupClass, map[string]any{"name": "Gadget", "section": "constructors"}); !isErr {
		t.Error("expected an error for a missing section")
	}
	if _, isErr := callTool(t, s.handleLookupClass, map[string]any{"name": "Nope"}); !isErr {
		t.Error("expected an error for an unknown class")
	}
	if _, isErr := callTool(t, s.handleLookupClass, map[string]any{}); !isErr {
		t.Error("expected an error without a name")
	}
}

func TestLookupClass_ConcurrentRenders(t *testing.T) {
	t.Parallel()
	s := testServer(t)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.db.ResolveClass("Gadget")
			if err != nil {
				t.Error(err)
				return
			}
			results[i], err = s.renderClass(c)
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	for _, r := range results[1:] {
		if r != results[0] {
			t.Fatal("concurrent renders disagree")
		}
	}
}

func TestSearchMembers(t *testing.T) {
	t.Parallel()
	s := testServer(t)

	text, isErr := callTool(t, s.handleSearchMembers, map[string]any{"query": "start"})
	if isErr {
		t.Fatalf("search failed: %s", text)
	}
	for _, want := range []string{`"kind": "method"`, `"match": "exact"`, `"uri": "jdoc://com.example.tools/Gadget"`} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %s in %s", want, text)
		}
	}

	text, _ = callTool(t, s.handleSearchMembers, map[string]any{"query": "start", "kind": "field"})
	if strings.TrimSpace(text) != "[]" {
		t.Errorf("kind filter ignored: %s", text)
	}

	if _, isErr := callTool(t, s.handleSearchMembers, map[string]any{}); !isErr {
		t.Error("expected an error without a query")
	}
}

func TestListNamespaces(t *testing.T) {
	t.Parallel()
	s := testServer(t)

	text, _ := callTool(t, s.handleListNamespaces, map[string]any{})
	if text != "com.example.tools (1 classes)\n" {
		t.Errorf("got %q", text)
	}

	text, _ = callTool(t, s.handleListNamespaces, map[string]any{"namespace": "com.example.tools"})
	if text != "class Gadget jdoc://com.example.tools/Gadget\n" {
		t.Errorf("got %q", text)
	}

	if _, isErr := callTool(t, s.handleListNamespaces, map[string]any{"namespace": "nope"}); !isErr {
		t.Error("expected an error for an unknown namespace")
	}
}

func TestReadResource(t *testing.T) {
	t.Parallel()
	s := testServer(t)

	read := func(uri string) ([]mcp.ResourceContents, error) {
		var req mcp.ReadResourceRequest
		req.Params.URI = uri
		return s.handleReadResource(context.Background(), req)
	}

	contents, err := read("jdoc://com.example.tools/Gadget#methods")
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if tc.MIMEType != "text/markdown" || !strings.HasPrefix(tc.Text, "## Methods") {
		t.Errorf("unexpected resource: %+v", tc)
	}

	for _, bad := range []string{"http://x/y", "jdoc://onlynamespace", "jdoc://com.example.tools/Missing"} {
		if _, err := read(bad); err == nil {
			t.Errorf("expected an error for %s", bad)
		}
	}
}
