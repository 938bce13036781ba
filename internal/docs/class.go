package docs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	selNamespace      = ".header > .sub-title > a"
	selClassModifiers = ".type-signature > .modifiers"
	selClassName      = ".type-signature > .element-name"
	selExtends        = ".class-description .extends-implements > a"
	selClassNotes     = ".class-description .block"
	selClassDesc      = ".class-description"
	selEnumConstants  = ".constant-details > .member-list"
	selFields         = ".field-details > .member-list"
	selConstructors   = ".constructor-details > .member-list"
	selMethods        = "#method-detail"
)

// ParseOptions tunes class extraction.
type ParseOptions struct {
	// SkipBrokenMembers drops a member that lacks a mandatory node instead
	// of failing the whole page.
	SkipBrokenMembers bool
}

// ParseClass reads one class page.
func ParseClass(ctx context.Context, r io.Reader, opts ParseOptions) (*Class, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return ParseClassDocument(ctx, doc.Selection, opts)
}

// ParseClassDocument extracts a Class from an already parsed page.
// The returned Class holds no references into the document.
func ParseClassDocument(ctx context.Context, root *goquery.Selection, opts ParseOptions) (*Class, error) {
	n := node{sel: root}
	c := newClass()

	namespace, err := n.require("namespace", selNamespace)
	if err != nil {
		return nil, err
	}
	c.Namespace = strings.TrimSpace(namespace)

	modifierLine, err := n.require("modifier line", selClassModifiers)
	if err != nil {
		return nil, err
	}
	c.Kind, c.Modifiers = splitModifierLine(modifierLine)

	name, err := n.require("class name", selClassName)
	if err != nil {
		return nil, err
	}
	name, _, _ = strings.Cut(name, "<")
	c.Name = strings.TrimSpace(name)
	if c.Name == "" {
		return nil, absent("class name", selClassName)
	}

	if ext, ok := n.text(selExtends); ok {
		c.Extends = strings.TrimSpace(ext)
	}
	c.Notes = n.notes(selClassNotes)
	c.Deprecated = node{sel: n.first(selClassDesc)}.deprecated()

	p := classParser{ctx: ctx, opts: opts, class: c}

	if c.Kind == KindEnum {
		if err := p.each(n, selEnumConstants, "enum constant", p.field); err != nil {
			return nil, err
		}
	}
	if err := p.each(n, selFields, "field", p.field); err != nil {
		return nil, err
	}
	if err := p.each(n, selConstructors, "constructor", p.constructor); err != nil {
		return nil, err
	}
	if err := p.each(n, selMethods, "method", p.method); err != nil {
		return nil, err
	}

	return c, nil
}

// splitModifierLine consumes the kind keyword and keeps every other word,
// in order, as a modifier.
func splitModifierLine(line string) (Kind, []string) {
	kind := KindUnknown
	var mods []string
	for _, word := range strings.Fields(line) {
		switch k := Kind(word); k {
		case KindClass, KindEnum, KindInterface:
			kind = k
		default:
			mods = append(mods, word)
		}
	}
	return kind, mods
}

type classParser struct {
	ctx   context.Context
	opts  ParseOptions
	class *Class
}

// each calls fn for every li below the first match of selector that wraps a
// detail section. Index-style entries with no section are not members.
func (p *classParser) each(n node, selector, kind string, fn func(*goquery.Selection) error) error {
	var err error
	n.first(selector).Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if li.Find("section").Length() == 0 {
			return true
		}
		if ferr := fn(li); ferr != nil {
			err = p.memberFailed(kind, ferr)
		}
		return err == nil
	})
	return err
}

func (p *classParser) memberFailed(kind string, err error) error {
	if p.opts.SkipBrokenMembers {
		slog.WarnContext(p.ctx, "skipping member", "class", p.class.QualifiedName(), "kind", kind, "error", err)
		return nil
	}
	return fmt.Errorf("%s: %w", kind, err)
}

func (p *classParser) field(li *goquery.Selection) error {
	f, err := parseField(li)
	if err != nil {
		return err
	}
	p.class.addField(f)
	return nil
}

func (p *classParser) constructor(li *goquery.Selection) error {
	ctor, err := parseConstructor(li)
	if err != nil {
		return err
	}
	p.class.addConstructor(ctor)
	return nil
}

func (p *classParser) method(li *goquery.Selection) error {
	m, err := parseMethod(li)
	if err != nil {
		return err
	}
	p.class.addMethod(m)
	return nil
}
