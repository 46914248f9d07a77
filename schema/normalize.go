package schema

import (
	"errors"
	"strings"

	"github.com/Yamashou/gqlblock/introspection"
)

// FromIntrospection normalizes an introspection result:
//   - fields are indexed by name and get a synthetic __typename,
//   - every field with arguments gets an anonymous INPUT_OBJECT "<Type>.<field>",
//   - a root type named RootTypeName exposes "query" and "mutation" and lists
//     every OBJECT and INTERFACE as a possible type.
func FromIntrospection(q *introspection.Query) (*Schema, error) {
	if q == nil {
		return nil, errors.New("introspection result is empty")
	}

	s := &Schema{}
	if q.Schema.QueryType != nil && q.Schema.QueryType.Name != nil {
		s.QueryType = *q.Schema.QueryType.Name
	}
	if q.Schema.MutationType != nil && q.Schema.MutationType.Name != nil {
		s.MutationType = *q.Schema.MutationType.Name
	}

	root := &TypeDef{Kind: Object, Name: RootTypeName}

	for _, raw := range q.Schema.Types {
		if raw == nil || raw.Name == nil {
			continue
		}

		t := &TypeDef{
			Kind:        TypeKind(raw.Kind),
			Name:        *raw.Name,
			Description: deref(raw.Description),
			InputFields: argumentDefs(raw.InputFields),
		}
		s.add(t)

		for _, rawField := range raw.Fields {
			if rawField == nil {
				continue
			}
			f := &FieldDef{
				Name:              rawField.Name,
				Description:       deref(rawField.Description),
				Args:              argumentDefs(rawField.Args),
				Type:              typeRef(rawField.Type),
				Deprecated:        rawField.IsDeprecated,
				DeprecationReason: deref(rawField.DeprecationReason),
			}
			t.addField(f)

			if len(f.Args) > 0 {
				s.add(&TypeDef{
					Kind:        InputObject,
					Name:        AnonymousTypeName(t.Name, f.Name),
					InputFields: f.Args,
				})
			}
		}

		if _, ok := t.Field(TypenameField); !ok {
			t.addField(&FieldDef{
				Name: TypenameField,
				Type: &TypeRef{Kind: NonNull, OfType: &TypeRef{Kind: Scalar, Name: "String"}},
			})
		}

		for _, v := range raw.EnumValues {
			if v == nil {
				continue
			}
			t.EnumValues = append(t.EnumValues, &EnumValue{
				Name:        v.Name,
				Description: deref(v.Description),
				Deprecated:  v.IsDeprecated,
			})
		}

		for _, ref := range raw.PossibleTypes {
			if r := typeRef(ref); r != nil {
				t.PossibleTypes = append(t.PossibleTypes, r)
			}
		}

		for _, ref := range raw.Interfaces {
			if ref != nil && ref.Name != nil {
				t.Interfaces = append(t.Interfaces, *ref.Name)
			}
		}

		if (t.Kind == Object || t.Kind == Interface) && !strings.HasPrefix(t.Name, "__") {
			root.PossibleTypes = append(root.PossibleTypes, &TypeRef{Kind: t.Kind, Name: t.Name})
		}
	}

	if s.QueryType != "" {
		root.addField(&FieldDef{
			Name:        "query",
			Description: "A GraphQL query.",
			Type:        &TypeRef{Kind: Object, Name: s.QueryType},
		})
	}
	if s.MutationType != "" {
		root.addField(&FieldDef{
			Name:        "mutation",
			Description: "A GraphQL mutation.",
			Type:        &TypeRef{Kind: Object, Name: s.MutationType},
		})
	}
	s.add(root)

	return s, nil
}

func argumentDefs(values []*introspection.InputValue) []*ArgumentDef {
	if len(values) == 0 {
		return nil
	}

	args := make([]*ArgumentDef, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		args = append(args, &ArgumentDef{
			Name:         v.Name,
			Description:  deref(v.Description),
			Type:         typeRef(v.Type),
			DefaultValue: v.DefaultValue,
		})
	}

	return args
}

func typeRef(ref *introspection.TypeRef) *TypeRef {
	if ref == nil {
		return nil
	}

	return &TypeRef{
		Kind:   TypeKind(ref.Kind),
		Name:   deref(ref.Name),
		OfType: typeRef(ref.OfType),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
