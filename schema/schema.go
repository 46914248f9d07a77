// Package schema holds the normalized type graph of one endpoint.
//
// A Schema is built once from an introspection result and never mutated
// afterwards; a refresh replaces it wholesale.
package schema

import (
	"strings"
)

// RootTypeName names the synthetic type holding the query and mutation roots.
// It is not a legal GraphQL name, so it cannot collide with a schema type.
const RootTypeName = "[root]"

// TypenameField is appended to every type during normalization.
const TypenameField = "__typename"

// anonymousSeparator joins parent type and field name in anonymous input type names.
const anonymousSeparator = "."

type TypeKind string

const (
	Scalar      TypeKind = "SCALAR"
	Object      TypeKind = "OBJECT"
	Interface   TypeKind = "INTERFACE"
	Union       TypeKind = "UNION"
	Enum        TypeKind = "ENUM"
	InputObject TypeKind = "INPUT_OBJECT"
	List        TypeKind = "LIST"
	NonNull     TypeKind = "NON_NULL"
)

// IsWrapper reports whether k wraps another type reference.
func (k TypeKind) IsWrapper() bool {
	return k == List || k == NonNull
}

// IsComposite reports whether values of kind k have selection sets.
func (k TypeKind) IsComposite() bool {
	return k == Object || k == Interface || k == Union
}

type TypeRef struct {
	Kind   TypeKind
	Name   string
	OfType *TypeRef
}

type ArgumentDef struct {
	Name         string
	Description  string
	Type         *TypeRef
	DefaultValue *string
}

type FieldDef struct {
	Name              string
	Description       string
	Args              []*ArgumentDef
	Type              *TypeRef
	Deprecated        bool
	DeprecationReason string
}

type EnumValue struct {
	Name        string
	Description string
	Deprecated  bool
}

type TypeDef struct {
	Kind          TypeKind
	Name          string
	Description   string
	InputFields   []*ArgumentDef
	PossibleTypes []*TypeRef
	EnumValues    []*EnumValue
	Interfaces    []string

	fields     []*FieldDef
	fieldIndex map[string]*FieldDef
}

// Fields returns the fields in declaration order.
func (t *TypeDef) Fields() []*FieldDef {
	return t.fields
}

func (t *TypeDef) Field(name string) (*FieldDef, bool) {
	f, ok := t.fieldIndex[name]
	return f, ok
}

func (t *TypeDef) InputField(name string) (*ArgumentDef, bool) {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f, true
		}
	}

	return nil, false
}

// HasPossibleType reports whether name is t itself or one of its possible types.
func (t *TypeDef) HasPossibleType(name string) bool {
	if t.Name == name {
		return true
	}

	for _, ref := range t.PossibleTypes {
		if BaseType(ref).Name == name {
			return true
		}
	}

	return false
}

// addField appends f, replacing an earlier field of the same name in place.
func (t *TypeDef) addField(f *FieldDef) {
	if t.fieldIndex == nil {
		t.fieldIndex = make(map[string]*FieldDef)
	}

	if _, ok := t.fieldIndex[f.Name]; ok {
		for i, existing := range t.fields {
			if existing.Name == f.Name {
				t.fields[i] = f
			}
		}
	} else {
		t.fields = append(t.fields, f)
	}

	t.fieldIndex[f.Name] = f
}

type Schema struct {
	QueryType    string
	MutationType string

	types map[string]*TypeDef
	order []string
}

func (s *Schema) Type(name string) (*TypeDef, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Types returns every type, synthetic ones included, in registration order.
func (s *Schema) Types() []*TypeDef {
	types := make([]*TypeDef, 0, len(s.order))
	for _, name := range s.order {
		types = append(types, s.types[name])
	}

	return types
}

// Root returns the synthetic root type.
func (s *Schema) Root() *TypeDef {
	return s.types[RootTypeName]
}

func (s *Schema) add(t *TypeDef) {
	if s.types == nil {
		s.types = make(map[string]*TypeDef)
	}

	if _, ok := s.types[t.Name]; !ok {
		s.order = append(s.order, t.Name)
	}

	s.types[t.Name] = t
}

// AnonymousTypeName names the synthetic input type holding the arguments of
// parent.field.
func AnonymousTypeName(parent, field string) string {
	return parent + anonymousSeparator + field
}

// IsAnonymousTypeName reports whether name denotes an argument list rather than
// a named input object.
func IsAnonymousTypeName(name string) bool {
	return strings.Contains(name, anonymousSeparator)
}
