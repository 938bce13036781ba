package docs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	slogctx "github.com/veqryn/slog-context"
)

// Namespace groups the classes declared in one package.
type Namespace struct {
	Name    string
	classes map[string]*Class
}

func newNamespace(name string) *Namespace {
	return &Namespace{Name: name, classes: make(map[string]*Class)}
}

// Add registers c under its simple name. A class already registered under
// that name is replaced and replaced reports true.
func (ns *Namespace) Add(c *Class) (replaced bool) {
	_, replaced = ns.classes[c.Name]
	ns.classes[c.Name] = c
	return replaced
}

// Class looks up a class by simple name.
func (ns *Namespace) Class(name string) (*Class, bool) {
	c, ok := ns.classes[name]
	return c, ok
}

// Classes returns the namespace's classes sorted by simple name.
func (ns *Namespace) Classes() []*Class {
	out := make([]*Class, 0, len(ns.classes))
	for _, name := range sortedKeys(ns.classes) {
		out = append(out, ns.classes[name])
	}
	return out
}

func (ns *Namespace) Len() int {
	return len(ns.classes)
}

// Catalog is the root of everything parsed during one run.
type Catalog struct {
	namespaces map[string]*Namespace
}

func NewCatalog() *Catalog {
	return &Catalog{namespaces: make(map[string]*Namespace)}
}

// Add files c under its own namespace, creating the namespace on first use.
func (cat *Catalog) Add(c *Class) (replaced bool) {
	ns, ok := cat.namespaces[c.Namespace]
	if !ok {
		ns = newNamespace(c.Namespace)
		cat.namespaces[c.Namespace] = ns
	}
	return ns.Add(c)
}

// Namespace looks up a namespace by name.
func (cat *Catalog) Namespace(name string) (*Namespace, bool) {
	ns, ok := cat.namespaces[name]
	return ns, ok
}

// Namespaces returns all namespaces sorted by name.
func (cat *Catalog) Namespaces() []*Namespace {
	out := make([]*Namespace, 0, len(cat.namespaces))
	for _, name := range sortedKeys(cat.namespaces) {
		out = append(out, cat.namespaces[name])
	}
	return out
}

// ClassCount returns the number of classes across all namespaces.
func (cat *Catalog) ClassCount() int {
	n := 0
	for _, ns := range cat.namespaces {
		n += ns.Len()
	}
	return n
}

// PageResult is the outcome of processing one page: either Class or Err is set.
type PageResult struct {
	Ref   string
	Class *Class
	Err   error
}

// Failure records a page that could not be turned into a class.
type Failure struct {
	Ref string
	Err error
}

// Report summarizes a build.
type Report struct {
	Pages    int
	Parsed   int
	Replaced int
	Failures []Failure
}

// FailedRefs lists the refs of failed pages in processing order.
func (r *Report) FailedRefs() []string {
	refs := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		refs = append(refs, f.Ref)
	}
	return refs
}

// Err folds every page failure into one error, or returns nil.
func (r *Report) Err() error {
	var merr *multierror.Error
	for _, f := range r.Failures {
		merr = multierror.Append(merr, fmt.Errorf("%s: %w", f.Ref, f.Err))
	}
	return merr.ErrorOrNil()
}

// Record applies one page outcome to the catalog and the report.
func (r *Report) Record(ctx context.Context, cat *Catalog, res PageResult) {
	r.Pages++
	if res.Err != nil {
		slog.ErrorContext(ctx, "failed to scrape page", "error", res.Err)
		r.Failures = append(r.Failures, Failure{Ref: res.Ref, Err: res.Err})
		return
	}
	r.Parsed++
	if cat.Add(res.Class) {
		r.Replaced++
		slog.WarnContext(ctx, "class registered twice, keeping the later page", "class", res.Class.QualifiedName())
	}
}

// ParsePage loads ref from src and parses it into a class.
func ParsePage(ctx context.Context, src Source, ref string, opts ParseOptions) PageResult {
	rc, err := src.Open(ctx, ref)
	if err != nil {
		return PageResult{Ref: ref, Err: fmt.Errorf("opening page: %w", err)}
	}
	defer rc.Close()

	c, err := ParseClass(ctx, rc, opts)
	if err != nil {
		return PageResult{Ref: ref, Err: err}
	}
	return PageResult{Ref: ref, Class: c}
}

// Build processes refs one at a time, in order. A page that fails is logged
// and recorded in the report; the remaining pages are still processed.
func Build(ctx context.Context, src Source, refs []string, opts ParseOptions) (*Catalog, *Report) {
	cat := NewCatalog()
	report := &Report{}

	for _, ref := range refs {
		if ctx.Err() != nil {
			report.Record(ctx, cat, PageResult{Ref: ref, Err: ctx.Err()})
			continue
		}
		pageCtx := slogctx.Append(ctx, "page", ref)
		res := ParsePage(pageCtx, src, ref, opts)
		report.Record(pageCtx, cat, res)
		if res.Err == nil {
			slog.DebugContext(pageCtx, "parsed class", "class", res.Class.QualifiedName(),
				"fields", len(res.Class.fields), "methods", res.Class.MethodCount())
		}
	}

	slog.InfoContext(ctx, "catalog built", "pages", report.Pages, "classes", cat.ClassCount(),
		"namespaces", len(cat.namespaces), "failed", len(report.Failures))
	return cat, report
}
