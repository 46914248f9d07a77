package introspection

import (
	"maps"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
)

// FromAST renders a parsed SDL schema in the shape an endpoint would answer
// Document with, so that local schema files go through the same normalization
// as remote ones. Types are ordered by name.
func FromAST(schema *ast.Schema) *Query {
	var q Query

	if schema.Query != nil {
		q.Schema.QueryType = &RootType{Name: ptr(schema.Query.Name)}
	}

	if schema.Mutation != nil {
		q.Schema.MutationType = &RootType{Name: ptr(schema.Mutation.Name)}
	}

	for _, name := range slices.Sorted(maps.Keys(schema.Types)) {
		q.Schema.Types = append(q.Schema.Types, fullTypeFromDefinition(schema, schema.Types[name]))
	}

	return &q
}

func fullTypeFromDefinition(schema *ast.Schema, def *ast.Definition) *FullType {
	t := &FullType{
		Kind:        TypeKind(def.Kind),
		Name:        ptr(def.Name),
		Description: optional(def.Description),
	}

	switch def.Kind {
	case ast.Object, ast.Interface:
		t.Fields = make([]*FieldValue, 0, len(def.Fields))
		for _, f := range def.Fields {
			// introspection fields such as __schema are implicit in SDL
			if f.Name == "__schema" || f.Name == "__type" || f.Name == "__typename" {
				continue
			}
			reason, deprecated := deprecation(f.Directives)
			t.Fields = append(t.Fields, &FieldValue{
				Name:              f.Name,
				Description:       optional(f.Description),
				Args:              inputValuesFromArguments(schema, f.Arguments),
				Type:              typeRefFromAST(schema, f.Type),
				IsDeprecated:      deprecated,
				DeprecationReason: reason,
			})
		}
		for _, name := range def.Interfaces {
			t.Interfaces = append(t.Interfaces, namedRef(TypeKindInterface, name))
		}
	case ast.InputObject:
		t.InputFields = make([]*InputValue, 0, len(def.Fields))
		for _, f := range def.Fields {
			t.InputFields = append(t.InputFields, &InputValue{
				Name:         f.Name,
				Description:  optional(f.Description),
				Type:         typeRefFromAST(schema, f.Type),
				DefaultValue: valueString(f.DefaultValue),
			})
		}
	case ast.Enum:
		t.EnumValues = make([]*EnumValue, 0, len(def.EnumValues))
		for _, v := range def.EnumValues {
			reason, deprecated := deprecation(v.Directives)
			t.EnumValues = append(t.EnumValues, &EnumValue{
				Name:              v.Name,
				Description:       optional(v.Description),
				IsDeprecated:      deprecated,
				DeprecationReason: reason,
			})
		}
	}

	if def.Kind == ast.Interface || def.Kind == ast.Union {
		for _, possible := range schema.GetPossibleTypes(def) {
			t.PossibleTypes = append(t.PossibleTypes, namedRef(TypeKind(possible.Kind), possible.Name))
		}
	}

	return t
}

func inputValuesFromArguments(schema *ast.Schema, args ast.ArgumentDefinitionList) []*InputValue {
	values := make([]*InputValue, 0, len(args))
	for _, arg := range args {
		values = append(values, &InputValue{
			Name:         arg.Name,
			Description:  optional(arg.Description),
			Type:         typeRefFromAST(schema, arg.Type),
			DefaultValue: valueString(arg.DefaultValue),
		})
	}

	return values
}

// typeRefFromAST keeps the full wrapper chain; SDL has no depth limit.
func typeRefFromAST(schema *ast.Schema, t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}

	var ref *TypeRef
	if t.Elem != nil {
		ref = &TypeRef{Kind: TypeKindList, OfType: typeRefFromAST(schema, t.Elem)}
	} else {
		kind := TypeKindScalar
		if def, ok := schema.Types[t.NamedType]; ok {
			kind = TypeKind(def.Kind)
		}
		ref = &TypeRef{Kind: kind, Name: ptr(t.NamedType)}
	}

	if t.NonNull {
		return &TypeRef{Kind: TypeKindNonNull, OfType: ref}
	}

	return ref
}

func namedRef(kind TypeKind, name string) *TypeRef {
	return &TypeRef{Kind: kind, Name: ptr(name)}
}

func deprecation(directives ast.DirectiveList) (*string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return nil, false
	}

	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return ptr(arg.Value.Raw), true
	}

	return nil, true
}

func valueString(v *ast.Value) *string {
	if v == nil {
		return nil
	}

	return ptr(v.String())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func ptr[T any](v T) *T {
	return &v
}
