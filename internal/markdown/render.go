package markdown

import (
	"fmt"
	"sort"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"

	"github.com/jcdickinson/dukedoc/internal/docs"
)

const (
	SectionFields       = "Fields"
	SectionConstructors = "Constructors"
	SectionMethods      = "Methods"
)

// RenderClass renders a class document as markdown with one level-2 section
// per non-empty member group.
func RenderClass(d *docs.ClassDocument) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", d.QualifiedName())
	fmt.Fprintf(&b, "```java\n%s\n```\n\n", d.Declaration())
	if d.Deprecated {
		b.WriteString("**Deprecated.**\n\n")
	}
	if d.Notes != "" {
		b.WriteString(d.Notes + "\n\n")
	}

	if len(d.Fields) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", SectionFields)
		for _, f := range d.Fields {
			member(&b, f.Name, f.Signature(), f.Deprecated, f.Notes)
		}
	}

	if len(d.Constructors) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", SectionConstructors)
		for _, c := range d.Constructors {
			member(&b, d.Name, c.Signature(d.Name), c.Deprecated, c.Notes)
			parameters(&b, c.Parameters)
		}
	}

	if len(d.Methods) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", SectionMethods)
		for _, m := range d.Methods {
			member(&b, m.Name, m.Signature(), m.Deprecated, m.Notes)
			parameters(&b, m.Parameters)
			if m.Returns.Notes != "" {
				fmt.Fprintf(&b, "Returns: %s\n\n", m.Returns.Notes)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func member(b *strings.Builder, name, signature string, deprecated bool, notes string) {
	fmt.Fprintf(b, "### %s\n\n```java\n%s\n```\n\n", name, signature)
	if deprecated {
		b.WriteString("**Deprecated.**\n\n")
	}
	if notes != "" {
		b.WriteString(notes + "\n\n")
	}
}

func parameters(b *strings.Builder, params []docs.ParameterDocument) {
	var documented []docs.ParameterDocument
	for _, p := range params {
		if p.Notes != "" {
			documented = append(documented, p)
		}
	}
	if len(documented) == 0 {
		return
	}
	b.WriteString("Parameters:\n\n")
	for _, p := range documented {
		fmt.Fprintf(b, "- `%s`: %s\n", p.Name, p.Notes)
	}
	b.WriteString("\n")
}

// Outline returns the text of every level-2 heading in src, in order.
func Outline(src string) []string {
	doc := gm.Parse([]byte(src), gmparser.NewWithExtensions(gmparser.CommonExtensions))

	var out []string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		h, ok := node.(*ast.Heading)
		if !ok || !entering {
			return ast.GoToNext
		}
		if h.Level == 2 {
			out = append(out, headingText(h))
		}
		return ast.SkipChildren
	})
	return out
}

func headingText(h *ast.Heading) string {
	var b strings.Builder
	ast.WalkFunc(h, func(node ast.Node, entering bool) ast.WalkStatus {
		if leaf := node.AsLeaf(); entering && leaf != nil {
			b.Write(leaf.Literal)
		}
		return ast.GoToNext
	})
	return strings.TrimSpace(b.String())
}

// Slug turns a heading into the fragment used to address it.
func Slug(heading string) string {
	return strings.ToLower(strings.Join(strings.Fields(heading), "-"))
}

// Section returns the level-2 section of src whose heading slug is fragment,
// heading included.
func Section(src, fragment string) (string, bool) {
	lines := strings.Split(src, "\n")
	start := -1
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(line, "## ") {
			continue
		}
		if start >= 0 {
			return strings.TrimRight(strings.Join(lines[start:i], "\n"), "\n") + "\n", true
		}
		if Slug(strings.TrimPrefix(line, "## ")) == fragment {
			start = i
		}
	}
	if start < 0 {
		return "", false
	}
	return strings.TrimRight(strings.Join(lines[start:], "\n"), "\n") + "\n", true
}

// AddFrontMatter prepends a YAML front-matter block listing fragment URIs.
func AddFrontMatter(src string, fragments map[string]string) string {
	if len(fragments) == 0 {
		return src
	}

	keys := make([]string, 0, len(fragments))
	for k := range fragments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("---\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%s: %s\n", k, fragments[k]))
	}
	b.WriteString("---\n\n")
	b.WriteString(src)
	return b.String()
}
