package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/singleflight"

	"github.com/jcdickinson/dukedoc/internal/cas"
	"github.com/jcdickinson/dukedoc/internal/db"
	md "github.com/jcdickinson/dukedoc/internal/markdown"
	"github.com/jcdickinson/dukedoc/internal/search"
)

//go:embed instructions.md
var instructions string

const uriScheme = "jdoc://"

type Server struct {
	mcpServer *server.MCPServer
	db        *db.DB
	store     *cas.Store
	searcher  *search.Searcher
	renders   singleflight.Group
}

func NewServer(database *db.DB, store *cas.Store, version string) *Server {
	s := &Server{
		db:       database,
		store:    store,
		searcher: search.NewSearcher(database),
	}

	mcpServer := server.NewMCPServer(
		"dukedoc",
		version,
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("lookup_class",
			mcp.WithDescription("Read the documentation of one class, interface or enum as markdown: declaration, notes, fields, constructors and methods."),
			mcp.WithString("name",
				mcp.Description("Qualified name such as \"java.util.List\", or a simple name when it is unique"),
				mcp.Required(),
			),
			mcp.WithString("section",
				mcp.Description("Optional section to return: fields, constructors or methods"),
			),
		),
		s.handleLookupClass,
	)

	mcpServer.AddTool(
		mcp.NewTool("search_members",
			mcp.WithDescription("Search indexed classes and members by name. Returns signatures and jdoc:// URIs that can be read as resources."),
			mcp.WithString("query",
				mcp.Description("Name or part of a name"),
				mcp.Required(),
			),
			mcp.WithString("kind",
				mcp.Description("Optional kind filter: class, field, constructor or method"),
			),
			mcp.WithString("namespace",
				mcp.Description("Optional namespace to search within"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 20)"),
			),
		),
		s.handleSearchMembers,
	)

	mcpServer.AddTool(
		mcp.NewTool("list_namespaces",
			mcp.WithDescription("List indexed namespaces with their class counts, or the classes of one namespace."),
			mcp.WithString("namespace",
				mcp.Description("Optional namespace whose classes should be listed"),
			),
		),
		s.handleListNamespaces,
	)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			uriScheme+"{namespace}/{class}",
			"Javadoc class",
			mcp.WithTemplateDescription("Read one documented class. Search results return these URIs."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReadResource,
	)
}

// renderClass returns the class page with a front-matter block pointing at
// each of its sections. Concurrent requests for one class share a render.
func (s *Server) renderClass(c *db.Class) (string, error) {
	key := c.QualifiedName()
	v, err, _ := s.renders.Do(key, func() (interface{}, error) {
		doc, err := db.LoadDocument(s.store, c)
		if err != nil {
			return "", fmt.Errorf("loading %s: %w", key, err)
		}
		page := md.RenderClass(doc)

		fragments := make(map[string]string)
		for _, heading := range md.Outline(page) {
			slug := md.Slug(heading)
			fragments[slug] = classURI(c) + "#" + slug
		}
		return md.AddFrontMatter(page, fragments), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func classURI(c *db.Class) string {
	return uriScheme + c.Namespace + "/" + c.Name
}

func section(page, fragment string) (string, error) {
	if fragment == "" {
		return page, nil
	}
	sec, ok := md.Section(page, fragment)
	if !ok {
		return "", fmt.Errorf("no %s section", fragment)
	}
	return sec, nil
}

func (s *Server) handleLookupClass(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	fragment, _ := args["section"].(string)

	c, err := s.db.ResolveClass(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := s.renderClass(c)
	if err != nil {
		slog.ErrorContext(ctx, "render failed", "class", c.QualifiedName(), "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to render %s: %v", c.QualifiedName(), err)), nil
	}

	text, err := section(page, strings.ToLower(fragment))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s has %v", c.QualifiedName(), err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

type searchResult struct {
	Kind      string `json:"kind"`
	Class     string `json:"class"`
	Name      string `json:"name"`
	Signature string `json:"signature"`
	Notes     string `json:"notes,omitempty"`
	Match     string `json:"match"`
	URI       string `json:"uri"`
}

func (s *Server) handleSearchMembers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	var filter db.Filter
	filter.Kind, _ = args["kind"].(string)
	filter.Namespace, _ = args["namespace"].(string)
	limit := 20
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	results, err := s.searcher.Search(query, filter, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	out := make([]searchResult, 0, len(results))
	for _, r := range results {
		out = append(out, searchResult{
			Kind:      r.Kind,
			Class:     r.Namespace + "." + r.Class,
			Name:      r.Name,
			Signature: r.Signature,
			Notes:     r.Notes,
			Match:     r.Rank.String(),
			URI:       r.URI(),
		})
	}

	resultJSON, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleListNamespaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	if namespace, _ := args["namespace"].(string); namespace != "" {
		classes, err := s.db.ListClasses(namespace)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing classes: %v", err)), nil
		}
		if len(classes) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("namespace %s is not indexed", namespace)), nil
		}
		var b strings.Builder
		for _, c := range classes {
			deprecated := ""
			if c.Deprecated {
				deprecated = " (deprecated)"
			}
			fmt.Fprintf(&b, "%s %s%s %s\n", c.Kind, c.Name, deprecated, classURI(&c))
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	namespaces, err := s.db.ListNamespaces()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing namespaces: %v", err)), nil
	}
	if len(namespaces) == 0 {
		return mcp.NewToolResultText("The index is empty. Run `dukedoc build` first."), nil
	}
	var b strings.Builder
	for _, ns := range namespaces {
		fmt.Fprintf(&b, "%s (%d classes)\n", ns.Name, ns.Classes)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	trimmed, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}

	var fragment string
	if idx := strings.LastIndex(trimmed, "#"); idx >= 0 {
		fragment = trimmed[idx+1:]
		trimmed = trimmed[:idx]
	}

	namespace, name, ok := strings.Cut(trimmed, "/")
	if !ok || namespace == "" || name == "" {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}

	c, err := s.db.GetClass(namespace, name)
	if err != nil {
		return nil, fmt.Errorf("getting class: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("class %s.%s is not indexed", namespace, name)
	}

	page, err := s.renderClass(c)
	if err != nil {
		return nil, err
	}
	text, err := section(page, fragment)
	if err != nil {
		return nil, fmt.Errorf("%s has %w", c.QualifiedName(), err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     text,
		},
	}, nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}
