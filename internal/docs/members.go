package docs

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	selMemberName      = ".member-signature > .element-name"
	selFieldName       = ".element-name"
	selMemberModifiers = ".member-signature > .modifiers"
	selReturnType      = ".member-signature > .return-type"
	selParameters      = ".member-signature > .parameters"
	selBlock           = ".block"

	labelReturns    = "Returns:"
	labelParameters = "Parameters:"
)

// memberDocs is what the dt/dd annotation list of a member contributes.
type memberDocs struct {
	returns string
	params  []paramNote
}

type paramNote struct {
	name string
	note string
}

func parseField(li *goquery.Selection) (Field, error) {
	n := node{sel: li}

	name, err := memberName(n, "field name", selFieldName)
	if err != nil {
		return Field{}, err
	}

	typeText, err := n.require("field type", selReturnType)
	if err != nil {
		return Field{}, err
	}

	return Field{
		Name:       name,
		Modifiers:  memberModifiers(n),
		Deprecated: n.deprecated(),
		Type:       NewType(cleanTypeText(typeText)),
		Notes:      n.notes(selBlock),
	}, nil
}

func parseConstructor(li *goquery.Selection) (Constructor, error) {
	n := node{sel: li}

	if _, err := memberName(n, "constructor name", selMemberName); err != nil {
		return Constructor{}, err
	}

	docs := scanMemberDocs(n)
	return Constructor{
		Modifiers:  memberModifiers(n),
		Parameters: withParamNotes(memberParameters(n), docs.params),
		Notes:      n.notes(selBlock),
		Deprecated: n.deprecated(),
	}, nil
}

func parseMethod(li *goquery.Selection) (Method, error) {
	n := node{sel: li}

	name, err := memberName(n, "method name", selMemberName)
	if err != nil {
		return Method{}, err
	}

	returnText, err := n.require("return type", selReturnType)
	if err != nil {
		return Method{}, err
	}

	docs := scanMemberDocs(n)
	return Method{
		Name:       name,
		Modifiers:  memberModifiers(n),
		Parameters: withParamNotes(memberParameters(n), docs.params),
		Returns:    Returns{Type: NewType(cleanTypeText(returnText)), Notes: docs.returns},
		Notes:      n.notes(selBlock),
		Deprecated: n.deprecated(),
	}, nil
}

func memberName(n node, what, selector string) (string, error) {
	name, err := n.require(what, selector)
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", absent(what, selector)
	}
	return name, nil
}

func memberModifiers(n node) []string {
	text, ok := n.text(selMemberModifiers)
	if !ok {
		return nil
	}
	return strings.Fields(text)
}

func memberParameters(n node) []Parameter {
	text, ok := n.text(selParameters)
	if !ok {
		return nil
	}

	tokens := SplitParameters(text)
	params := make([]Parameter, 0, len(tokens))
	for _, tok := range tokens {
		params = append(params, Parameter{Name: tok.Name, Type: typeFromToken(tok)})
	}
	return params
}

func cleanTypeText(s string) string {
	return strings.TrimSpace(paramListCleaner.Replace(s))
}

// scanMemberDocs walks the member's dt labels. A "Parameters:" label owns
// every dd up to the next dt; each payload reads "name - note".
func scanMemberDocs(n node) memberDocs {
	var docs memberDocs
	n.sel.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		switch strings.TrimSpace(dt.Text()) {
		case labelReturns:
			if dd := dt.Next(); dd.Is("dd") {
				docs.returns = Unescape(strings.TrimSpace(dd.Text()))
			}
		case labelParameters:
			dt.NextUntil("dt").Filter("dd").Each(func(_ int, dd *goquery.Selection) {
				name, note, ok := strings.Cut(strings.TrimSpace(dd.Text()), " -")
				if !ok {
					return
				}
				note = strings.TrimSpace(note)
				if note == "" {
					return
				}
				docs.params = append(docs.params, paramNote{
					name: strings.TrimSpace(name),
					note: Unescape(note),
				})
			})
		}
	})
	return docs
}

// withParamNotes returns a copy of params with each note attached to the
// first parameter of the same name. Notes naming no parameter are dropped.
func withParamNotes(params []Parameter, notes []paramNote) []Parameter {
	if len(notes) == 0 {
		return params
	}
	out := slices.Clone(params)
	for _, pn := range notes {
		for i := range out {
			if out[i].Name == pn.name {
				out[i].Notes = pn.note
				break
			}
		}
	}
	return out
}
