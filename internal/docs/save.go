package docs

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/jcdickinson/dukedoc/internal/sink"
)

// SaveOptions selects what Catalog.Save writes.
type SaveOptions struct {
	Formats []Format
	Encoder Encoder
}

// ClassPath is "<format>/<namespace as directories>/<Name>.<format>".
func ClassPath(f Format, namespace, name string) string {
	return path.Join(string(f), strings.ReplaceAll(namespace, ".", "/"), name+"."+string(f))
}

// NamespacePath is "<format>/<namespace with dashes>.<format>".
func NamespacePath(f Format, namespace string) string {
	return path.Join(string(f), strings.ReplaceAll(namespace, ".", "-")+"."+string(f))
}

// Save writes one file per class and one aggregate file per namespace, for
// every requested format, in sorted namespace then class order.
func (cat *Catalog) Save(ctx context.Context, out sink.OutputSink, opts SaveOptions) error {
	written := 0
	for _, f := range opts.Formats {
		for _, ns := range cat.Namespaces() {
			for _, c := range ns.Classes() {
				data, err := opts.Encoder.Class(c, f)
				if err != nil {
					return err
				}
				if err := out.WriteFile(ctx, ClassPath(f, ns.Name, c.Name), data); err != nil {
					return fmt.Errorf("saving %s: %w", c.QualifiedName(), err)
				}
				written++
			}

			data, err := opts.Encoder.Namespace(ns, f)
			if err != nil {
				return err
			}
			if err := out.WriteFile(ctx, NamespacePath(f, ns.Name), data); err != nil {
				return fmt.Errorf("saving namespace %s: %w", ns.Name, err)
			}
			written++
		}
	}
	slog.InfoContext(ctx, "catalog saved", "files", written)
	return nil
}
