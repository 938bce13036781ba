package docs

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jcdickinson/dukedoc/internal/sink"
)

// DiscoverClasses reads the index page and returns the class page refs it
// links to, in document order and without duplicates. Only relative .html
// links below a package directory that start with prefix are kept; package
// summaries, class-use and doc-files pages are skipped.
func DiscoverClasses(ctx context.Context, src Source, indexFile, prefix string) ([]string, error) {
	rc, err := src.Open(ctx, indexFile)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", indexFile, err)
	}
	defer rc.Close()

	doc, err := goquery.NewDocumentFromReader(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing index %s: %w", indexFile, err)
	}

	seen := make(map[string]bool)
	var refs []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, ok := classRef(href, prefix)
		if !ok || ref == indexFile || seen[ref] {
			return
		}
		seen[ref] = true
		refs = append(refs, ref)
	})
	return refs, nil
}

func classRef(href, prefix string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.IsAbs() || u.Host != "" {
		return "", false
	}
	ref := u.Path
	if !strings.HasSuffix(ref, ".html") || !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	if !strings.Contains(ref, "/") || strings.HasPrefix(path.Base(ref), "package-") {
		return "", false
	}
	for _, seg := range strings.Split(path.Dir(ref), "/") {
		if seg == "class-use" || seg == "doc-files" {
			return "", false
		}
	}
	if sink.ValidatePath(ref) != nil {
		return "", false
	}
	return ref, true
}
