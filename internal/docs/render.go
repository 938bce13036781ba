package docs

import "strings"

// String returns the full generic form when there is one.
func (t TypeDocument) String() string {
	if t.Full != "" {
		return t.Full
	}
	return t.Basic
}

func paramList(params []ParameterDocument) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if t := p.Type.String(); t != "" {
			parts = append(parts, t+" "+p.Name)
		} else {
			parts = append(parts, p.Name)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func withModifiers(mods []string, rest string) string {
	if len(mods) == 0 {
		return rest
	}
	return strings.Join(mods, " ") + " " + rest
}

// Signature renders the field as a declaration, e.g. "public static int count".
func (f FieldDocument) Signature() string {
	return withModifiers(f.Modifiers, f.Type.String()+" "+f.Name)
}

// Signature renders the constructor of class as a declaration.
func (c ConstructorDocument) Signature(class string) string {
	return withModifiers(c.Modifiers, class+paramList(c.Parameters))
}

// Signature renders the method as a declaration, e.g. "public int size()".
func (m MethodDocument) Signature() string {
	return withModifiers(m.Modifiers, m.Returns.Type.String()+" "+m.Name+paramList(m.Parameters))
}

// Declaration renders the type header, e.g. "public abstract class Widget extends Base".
func (d *ClassDocument) Declaration() string {
	decl := withModifiers(d.Modifiers, string(d.JavaType)+" "+d.Name)
	if d.Extends != "" {
		decl += " extends " + d.Extends
	}
	return decl
}
