package node

import (
	"github.com/Yamashou/gqlblock/schema"
	"github.com/Yamashou/gqlblock/template"
)

// Output tags.
const (
	TagGraphQL = "GraphQL"
	TagEnum    = "GraphQLEnum"
	TagDict    = "GraphQLDict"
	TagPair    = "GraphQLPair"
	TagList    = "GraphQLList"
	TagNull    = "GraphQLNull"
	TagString  = "String"
	TagNumber  = "Number"
	TagBoolean = "Boolean"
)

func tagOf(kind template.Kind) string {
	switch kind {
	case template.KindField:
		return TagGraphQL
	case template.KindEnum:
		return TagEnum
	case template.KindDict:
		return TagDict
	case template.KindPair:
		return TagPair
	case template.KindList:
		return TagList
	case template.KindNull:
		return TagNull
	case template.KindText:
		return TagString
	case template.KindNumber:
		return TagNumber
	case template.KindBoolean:
		return TagBoolean
	default:
		return ""
	}
}

// ValueShapes returns the tags a value of type typeString may take. List
// types take a list, custom scalars no shape; either takes null when nullable.
func ValueShapes(s *schema.Schema, typeString string) []string {
	var shapes []string
	name := schema.TrimNonNull(typeString)
	if _, ok := schema.ListElem(typeString); ok {
		name = ""
		shapes = append(shapes, TagList)
	}

	switch name {
	case "": // list
	case "Int", "Float":
		shapes = append(shapes, TagNumber)
	case "ID", "String":
		shapes = append(shapes, TagString)
	case "Boolean":
		shapes = append(shapes, TagBoolean)
	default:
		if s == nil {
			break
		}
		if t, ok := s.Type(name); ok {
			switch t.Kind {
			case schema.Enum:
				shapes = append(shapes, TagEnum)
			case schema.Object, schema.InputObject:
				shapes = append(shapes, TagDict)
			}
		}
	}

	if schema.IsNullable(typeString) {
		shapes = append(shapes, TagNull)
	}

	return shapes
}

// namedType strips every list and non-null marker from a type string.
func namedType(typeString string) string {
	for {
		typeString = schema.TrimNonNull(typeString)
		elem, ok := schema.ListElem(typeString)
		if !ok {
			return typeString
		}
		typeString = elem
	}
}
