package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jcdickinson/dukedoc/internal/cas"
	"github.com/jcdickinson/dukedoc/internal/docs"
)

const (
	KindField       = "field"
	KindConstructor = "constructor"
	KindMethod      = "method"
)

// IndexCatalog stores every class document of cat in store and replaces the
// index rows with the classes and members of cat.
func (db *DB) IndexCatalog(ctx context.Context, cat *docs.Catalog, store *cas.Store, enc docs.Encoder) error {
	var records []ClassRecord
	for _, ns := range cat.Namespaces() {
		for _, c := range ns.Classes() {
			doc := enc.ClassDocument(c)
			data, err := doc.JSON()
			if err != nil {
				return err
			}
			hash, err := store.Write(data)
			if err != nil {
				return fmt.Errorf("storing %s: %w", doc.QualifiedName(), err)
			}
			records = append(records, classRecord(doc, hash))
		}
	}

	if err := db.ReplaceAll(ctx, records); err != nil {
		return err
	}
	slog.InfoContext(ctx, "index updated", "classes", len(records))
	return nil
}

func classRecord(doc *docs.ClassDocument, hash string) ClassRecord {
	rec := ClassRecord{Class: Class{
		Namespace:   doc.Namespace,
		Name:        doc.Name,
		Kind:        string(doc.JavaType),
		Deprecated:  doc.Deprecated,
		ContentHash: hash,
		Notes:       doc.Notes,
	}}
	for _, f := range doc.Fields {
		rec.Members = append(rec.Members, Member{Kind: KindField, Name: f.Name, Signature: f.Signature(), Notes: f.Notes})
	}
	for _, c := range doc.Constructors {
		rec.Members = append(rec.Members, Member{Kind: KindConstructor, Name: doc.Name, Signature: c.Signature(doc.Name), Notes: c.Notes})
	}
	for _, m := range doc.Methods {
		rec.Members = append(rec.Members, Member{Kind: KindMethod, Name: m.Name, Signature: m.Signature(), Notes: m.Notes})
	}
	return rec
}

// ResolveClass accepts "namespace.Class" or a bare simple name. A bare name
// must identify exactly one indexed class.
func (db *DB) ResolveClass(name string) (*Class, error) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		c, err := db.GetClass(name[:i], name[i+1:])
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("class %s is not indexed", name)
		}
		return c, nil
	}

	matches, err := db.FindClasses(name)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("class %s is not indexed", name)
	case 1:
		return &matches[0], nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.QualifiedName())
	}
	return nil, fmt.Errorf("class name %s is ambiguous: %s", name, strings.Join(names, ", "))
}

// LoadDocument reads the stored document of an indexed class.
func LoadDocument(store *cas.Store, c *Class) (*docs.ClassDocument, error) {
	data, err := store.Read(c.ContentHash)
	if err != nil {
		return nil, err
	}
	return docs.DecodeClassJSON(data)
}
