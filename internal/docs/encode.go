package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output serialization.
type Format string

const (
	FormatYAML Format = "yml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yml", "yaml" and "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yml", "yaml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q (want yml or json)", s)
}

// OverloadOrder decides how the methods of one cluster are emitted.
type OverloadOrder string

const (
	// OverloadEncounter keeps document order.
	OverloadEncounter OverloadOrder = "encounter"
	// OverloadParameters orders by parameter count, ties in document order.
	OverloadParameters OverloadOrder = "parameters"
)

func ParseOverloadOrder(s string) (OverloadOrder, error) {
	switch o := OverloadOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "", OverloadEncounter:
		return OverloadEncounter, nil
	case OverloadParameters:
		return o, nil
	}
	return "", fmt.Errorf("unknown overload order %q (want encounter or parameters)", s)
}

type TypeDocument struct {
	Basic string `json:"basic" yaml:"basic"`
	Full  string `json:"full,omitempty" yaml:"full,omitempty"`
}

type ParameterDocument struct {
	Name  string       `json:"name" yaml:"name"`
	Type  TypeDocument `json:"type" yaml:"type"`
	Notes string       `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type ReturnsDocument struct {
	Type  TypeDocument `json:"type" yaml:"type"`
	Notes string       `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type FieldDocument struct {
	Name       string       `json:"name" yaml:"name"`
	Modifiers  []string     `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Deprecated bool         `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Type       TypeDocument `json:"type" yaml:"type"`
	Notes      string       `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type ConstructorDocument struct {
	Modifiers  []string            `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Deprecated bool                `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Parameters []ParameterDocument `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Notes      string              `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type MethodDocument struct {
	Name       string              `json:"name" yaml:"name"`
	Modifiers  []string            `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Deprecated bool                `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Parameters []ParameterDocument `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Returns    ReturnsDocument     `json:"returns" yaml:"returns"`
	Notes      string              `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ClassDocument is the serialized form of a Class.
type ClassDocument struct {
	Name         string                `json:"name" yaml:"name"`
	Namespace    string                `json:"namespace" yaml:"namespace"`
	JavaType     Kind                  `json:"javaType" yaml:"javaType"`
	Modifiers    []string              `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Extends      string                `json:"extends,omitempty" yaml:"extends,omitempty"`
	Deprecated   bool                  `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Notes        string                `json:"notes,omitempty" yaml:"notes,omitempty"`
	Fields       []FieldDocument       `json:"fields,omitempty" yaml:"fields,omitempty"`
	Constructors []ConstructorDocument `json:"constructors,omitempty" yaml:"constructors,omitempty"`
	Methods      []MethodDocument      `json:"methods,omitempty" yaml:"methods,omitempty"`
}

// QualifiedName returns "namespace.Name".
func (d *ClassDocument) QualifiedName() string {
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "." + d.Name
}

// YAML renders the document with a "# namespace.Name" header line.
func (d *ClassDocument) YAML() ([]byte, error) {
	body, err := marshalYAML(d)
	if err != nil {
		return nil, fmt.Errorf("encoding %s as YAML: %w", d.QualifiedName(), err)
	}
	return append([]byte("# "+d.QualifiedName()+"\n"), body...), nil
}

// JSON renders the document as compact JSON.
func (d *ClassDocument) JSON() ([]byte, error) {
	out, err := marshalJSON(d, false)
	if err != nil {
		return nil, fmt.Errorf("encoding %s as JSON: %w", d.QualifiedName(), err)
	}
	return out, nil
}

// Encode renders the document in format f.
func (d *ClassDocument) Encode(f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return d.YAML()
	case FormatJSON:
		return d.JSON()
	}
	return nil, fmt.Errorf("unknown format %q", f)
}

// DecodeClassJSON reads a document produced by ClassDocument.JSON.
func DecodeClassJSON(data []byte) (*ClassDocument, error) {
	var d ClassDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding class document: %w", err)
	}
	return &d, nil
}

// Encoder turns model values into documents.
type Encoder struct {
	OverloadOrder OverloadOrder
}

// ClassDocument builds the serialized form of c. Fields come out sorted by
// name, method clusters sorted by name, constructors in document order.
func (e Encoder) ClassDocument(c *Class) *ClassDocument {
	d := &ClassDocument{
		Name:       c.Name,
		Namespace:  c.Namespace,
		JavaType:   c.Kind,
		Modifiers:  c.Modifiers,
		Extends:    c.Extends,
		Deprecated: c.Deprecated,
		Notes:      c.Notes,
	}

	for _, f := range c.Fields() {
		d.Fields = append(d.Fields, FieldDocument{
			Name:       f.Name,
			Modifiers:  f.Modifiers,
			Deprecated: f.Deprecated,
			Type:       typeDocument(f.Type),
			Notes:      f.Notes,
		})
	}

	for _, ctor := range c.Constructors() {
		d.Constructors = append(d.Constructors, ConstructorDocument{
			Modifiers:  ctor.Modifiers,
			Deprecated: ctor.Deprecated,
			Parameters: parameterDocuments(ctor.Parameters),
			Notes:      ctor.Notes,
		})
	}

	for _, cluster := range c.MethodClusters() {
		methods := cluster.Methods
		if e.OverloadOrder == OverloadParameters {
			sort.SliceStable(methods, func(i, j int) bool {
				return len(methods[i].Parameters) < len(methods[j].Parameters)
			})
		}
		for _, m := range methods {
			d.Methods = append(d.Methods, MethodDocument{
				Name:       m.Name,
				Modifiers:  m.Modifiers,
				Deprecated: m.Deprecated,
				Parameters: parameterDocuments(m.Parameters),
				Returns:    ReturnsDocument{Type: typeDocument(m.Returns.Type), Notes: m.Returns.Notes},
				Notes:      m.Notes,
			})
		}
	}

	return d
}

// Class renders c in format f.
func (e Encoder) Class(c *Class, f Format) ([]byte, error) {
	return e.ClassDocument(c).Encode(f)
}

// Namespace renders every class of ns, keyed by simple name, under a
// top-level "namespaces" key.
func (e Encoder) Namespace(ns *Namespace, f Format) ([]byte, error) {
	classes := ns.Classes()
	entries := make(classMap, 0, len(classes))
	for _, c := range classes {
		entries = append(entries, namedClass{name: c.Name, doc: e.ClassDocument(c)})
	}
	doc := namespaceDocument{Namespaces: map[string]classMap{ns.Name: entries}}

	var (
		out []byte
		err error
	)
	switch f {
	case FormatYAML:
		out, err = marshalYAML(doc)
	case FormatJSON:
		out, err = marshalJSON(doc, true)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding namespace %s: %w", ns.Name, err)
	}
	return out, nil
}

func typeDocument(t Type) TypeDocument {
	d := TypeDocument{Basic: t.Basic}
	if t.Full != t.Basic {
		d.Full = t.Full
	}
	return d
}

func parameterDocuments(params []Parameter) []ParameterDocument {
	if len(params) == 0 {
		return nil
	}
	out := make([]ParameterDocument, 0, len(params))
	for _, p := range params {
		out = append(out, ParameterDocument{Name: p.Name, Type: typeDocument(p.Type), Notes: p.Notes})
	}
	return out
}

type namespaceDocument struct {
	Namespaces map[string]classMap `json:"namespaces" yaml:"namespaces"`
}

type namedClass struct {
	name string
	doc  *ClassDocument
}

// classMap is a mapping that keeps its entries in slice order when encoded.
type classMap []namedClass

func (m classMap) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m {
		var value yaml.Node
		if err := value.Encode(e.doc); err != nil {
			return nil, err
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.name}
		out.Content = append(out.Content, key, &value)
	}
	return out, nil
}

func (m classMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalJSON(e.name, false)
		if err != nil {
			return nil, err
		}
		value, err := marshalJSON(e.doc, false)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalJSON encodes without HTML escaping so generic types keep their
// angle brackets. Indented output ends with a newline, compact output does not.
func marshalJSON(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if indent {
		return buf.Bytes(), nil
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
