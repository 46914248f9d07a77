// Package template synthesizes the node templates offered by block pickers
// and defines the record format nodes are persisted in.
package template

import (
	"github.com/Yamashou/gqlblock/schema"
)

type Kind string

const (
	KindField   Kind = "field"
	KindEnum    Kind = "enum"
	KindDict    Kind = "dict"
	KindPair    Kind = "pair"
	KindList    Kind = "list"
	KindNull    Kind = "null"
	KindText    Kind = "text"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// IsLiteral reports whether nodes of kind k hold plain literal text.
func (k Kind) IsLiteral() bool {
	return k == KindText || k == KindNumber || k == KindBoolean
}

// Template is the structural record of a node. A field template without a
// parent is a fragment spread on the type Name.
type Template struct {
	Kind         Kind   `yaml:"kind"`
	Endpoint     string `yaml:"gql_url,omitempty"`
	Parent       string `yaml:"gql_parent,omitempty"`
	Name         string `yaml:"gql_name,omitempty"`
	HasChildren  bool   `yaml:"gql_fields,omitempty"`
	HasArguments bool   `yaml:"gql_arguments,omitempty"`
	BaseType     string `yaml:"gql_base_type,omitempty"`
	EnumValue    string `yaml:"gql_value,omitempty"`
	Type         string `yaml:"gql_type,omitempty"`
	Quote        bool   `yaml:"gql_quote,omitempty"`
	Text         string `yaml:"text,omitempty"`
	Description  string `yaml:"description,omitempty"`

	Arguments *Template   `yaml:"arguments,omitempty"`
	Key       *Template   `yaml:"key,omitempty"`
	Value     *Template   `yaml:"value,omitempty"`
	Items     []*Template `yaml:"items,omitempty"`
}

// Synthesize returns the templates offered under baseType: one field
// template per field in declaration order, one fragment template per possible
// type, then one pair template per input field.
func Synthesize(s *schema.Schema, endpoint, baseType string) []*Template {
	if s == nil {
		return nil
	}

	t, ok := s.Type(baseType)
	if !ok {
		return nil
	}

	var templates []*Template
	for _, f := range t.Fields() {
		tmpl := &Template{
			Kind:        KindField,
			Endpoint:    endpoint,
			Parent:      t.Name,
			Name:        f.Name,
			Description: f.Description,
		}
		if base := schema.BaseType(f.Type); base != nil && base.Kind.IsComposite() {
			tmpl.HasChildren = true
		}
		if len(f.Args) > 0 {
			anon := schema.AnonymousTypeName(t.Name, f.Name)
			tmpl.HasArguments = true
			tmpl.Arguments = &Template{
				Kind:     KindDict,
				Endpoint: endpoint,
				BaseType: anon,
				Items:    Synthesize(s, endpoint, anon),
			}
		}
		templates = append(templates, tmpl)
	}

	for _, ref := range t.PossibleTypes {
		base := schema.BaseType(ref)
		if base == nil || base.Name == "" {
			continue
		}
		templates = append(templates, &Template{
			Kind:        KindField,
			Endpoint:    endpoint,
			Name:        base.Name,
			HasChildren: true,
		})
	}

	for _, in := range t.InputFields {
		templates = append(templates, pair(endpoint, t.Name, in))
	}

	return templates
}

func pair(endpoint, inputType string, in *schema.ArgumentDef) *Template {
	return &Template{
		Kind:        KindPair,
		Endpoint:    endpoint,
		BaseType:    inputType,
		Quote:       schema.RequiresQuoting(schema.TypeString(in.Type)),
		Description: in.Description,
		Key: &Template{
			Kind:      KindEnum,
			Endpoint:  endpoint,
			BaseType:  inputType,
			EnumValue: in.Name,
		},
	}
}

// ValueTemplates returns the picker content for a value of type typeString.
func ValueTemplates(s *schema.Schema, endpoint, typeString string) []*Template {
	var templates []*Template
	name := schema.TrimNonNull(typeString)
	if elem, ok := schema.ListElem(typeString); ok {
		name = ""
		templates = append(templates, &Template{
			Kind:     KindList,
			Endpoint: endpoint,
			Type:     elem,
			Quote:    schema.RequiresQuoting(elem),
		})
	}

	switch name {
	case "": // list
	case "Boolean":
		templates = append(templates, &Template{Kind: KindBoolean, Text: "false"})
	case "Int", "Float":
		templates = append(templates, &Template{Kind: KindNumber, Text: "0"})
	case "String", "ID":
		templates = append(templates, &Template{Kind: KindText})
	default:
		if s == nil {
			break
		}
		t, ok := s.Type(name)
		if !ok {
			break
		}
		switch t.Kind {
		case schema.Enum:
			if len(t.EnumValues) > 0 {
				templates = append(templates, &Template{
					Kind:      KindEnum,
					Endpoint:  endpoint,
					BaseType:  name,
					EnumValue: t.EnumValues[0].Name,
				})
			}
		case schema.InputObject, schema.Object:
			templates = append(templates, &Template{
				Kind:     KindDict,
				Endpoint: endpoint,
				BaseType: name,
				Items:    Synthesize(s, endpoint, name),
			})
		}
	}

	if schema.IsNullable(typeString) {
		templates = append(templates, &Template{Kind: KindNull})
	}

	return templates
}
