package docs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrStructuralAbsence is matched by every *StructuralError.
var ErrStructuralAbsence = errors.New("mandatory structural location missing")

// StructuralError reports a mandatory node that a page does not contain.
type StructuralError struct {
	What     string
	Selector string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s not found (%s)", e.What, e.Selector)
}

func (e *StructuralError) Unwrap() error {
	return ErrStructuralAbsence
}

func absent(what, selector string) error {
	return &StructuralError{What: what, Selector: selector}
}

// node wraps a selection with the lookups the extractors need.
type node struct {
	sel *goquery.Selection
}

func (n node) first(selector string) *goquery.Selection {
	return n.sel.Find(selector).First()
}

func (n node) has(selector string) bool {
	return n.sel.Find(selector).Length() > 0
}

// text returns the text of the first match. ok is false when nothing matches.
func (n node) text(selector string) (string, bool) {
	s := n.first(selector)
	if s.Length() == 0 {
		return "", false
	}
	return s.Text(), true
}

func (n node) require(what, selector string) (string, error) {
	t, ok := n.text(selector)
	if !ok {
		return "", absent(what, selector)
	}
	return t, nil
}

// leadingText returns the text of the first child node of the first match,
// which for description blocks is the opening paragraph.
func (n node) leadingText(selector string) (string, bool) {
	s := n.first(selector)
	if s.Length() == 0 {
		return "", false
	}
	child := s.Contents().First()
	if child.Length() == 0 {
		return "", false
	}
	return child.Text(), true
}

func (n node) notes(selector string) string {
	t, ok := n.leadingText(selector)
	if !ok {
		return ""
	}
	return Unescape(strings.TrimSpace(t))
}

func (n node) deprecated() bool {
	return n.has(".deprecation-block, .deprecated-block")
}

// Unescape decodes &lt; &gt; &amp; and &nbsp;, in that order. No other
// entities are touched. Non-breaking space characters become plain spaces.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.ReplaceAll(s, "\u00a0", " ")
}
