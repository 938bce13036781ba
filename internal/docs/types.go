package docs

import (
	"slices"
	"strings"
)

// Kind is the declared kind of a documented type.
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindUnknown   Kind = "unknown"
)

// Type is an erased type name plus its full generic rendering.
// Full is empty unless it differs from Basic.
type Type struct {
	Basic string
	Full  string
}

// NewType builds a Type from a rendered type expression such as "List<String>".
func NewType(expr string) Type {
	expr = strings.TrimSpace(expr)
	basic, _, generic := strings.Cut(expr, "<")
	if !generic {
		return Type{Basic: expr}
	}
	return normalizeType(strings.TrimSpace(basic), expr)
}

func normalizeType(basic, full string) Type {
	if full == basic {
		full = ""
	}
	return Type{Basic: basic, Full: full}
}

// Parameter is a single constructor or method parameter.
type Parameter struct {
	Name  string
	Type  Type
	Notes string
}

// Returns describes a method's return type.
type Returns struct {
	Type  Type
	Notes string
}

// Field is a field or enum constant.
type Field struct {
	Name       string
	Modifiers  []string
	Deprecated bool
	Type       Type
	Notes      string
}

// Constructor is one documented constructor. Its identity is positional.
type Constructor struct {
	Modifiers  []string
	Parameters []Parameter
	Notes      string
	Deprecated bool
}

// Method is one documented method.
type Method struct {
	Name       string
	Modifiers  []string
	Parameters []Parameter
	Returns    Returns
	Notes      string
	Deprecated bool
}

// MethodCluster groups the overloads sharing a simple name, in encounter order.
type MethodCluster struct {
	Name    string
	Methods []Method
}

// Class is the parsed form of one class, interface or enum page.
type Class struct {
	Namespace  string
	Name       string
	Kind       Kind
	Modifiers  []string
	Extends    string
	Notes      string
	Deprecated bool

	fields       map[string]Field
	methods      map[string][]Method
	constructors []Constructor
}

func newClass() *Class {
	return &Class{
		Kind:    KindUnknown,
		fields:  make(map[string]Field),
		methods: make(map[string][]Method),
	}
}

// QualifiedName returns "namespace.Name".
func (c *Class) QualifiedName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "." + c.Name
}

// addField stores f under its name. Later fields replace earlier ones.
func (c *Class) addField(f Field) {
	c.fields[f.Name] = f
}

func (c *Class) addConstructor(ctor Constructor) {
	c.constructors = append(c.constructors, ctor)
}

func (c *Class) addMethod(m Method) {
	c.methods[m.Name] = append(c.methods[m.Name], m)
}

// Field looks up a field by name.
func (c *Class) Field(name string) (Field, bool) {
	f, ok := c.fields[name]
	return f, ok
}

// Fields returns all fields sorted by name.
func (c *Class) Fields() []Field {
	names := sortedKeys(c.fields)
	out := make([]Field, 0, len(names))
	for _, name := range names {
		out = append(out, c.fields[name])
	}
	return out
}

// Constructors returns constructors in document order.
func (c *Class) Constructors() []Constructor {
	return slices.Clone(c.constructors)
}

// Methods returns the overload cluster for name, or nil.
func (c *Class) Methods(name string) []Method {
	return slices.Clone(c.methods[name])
}

// MethodClusters returns all overload clusters sorted by name.
func (c *Class) MethodClusters() []MethodCluster {
	names := sortedKeys(c.methods)
	out := make([]MethodCluster, 0, len(names))
	for _, name := range names {
		out = append(out, MethodCluster{Name: name, Methods: slices.Clone(c.methods[name])})
	}
	return out
}

// MethodCount returns the number of methods across all clusters.
func (c *Class) MethodCount() int {
	n := 0
	for _, ms := range c.methods {
		n += len(ms)
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
