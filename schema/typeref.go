package schema

import (
	"strings"
)

// BaseType peels LIST and NON_NULL wrappers. A chain truncated by the
// introspection depth stops at the last wrapper that was returned.
func BaseType(ref *TypeRef) *TypeRef {
	for ref != nil && ref.Kind.IsWrapper() && ref.OfType != nil {
		ref = ref.OfType
	}

	return ref
}

// StripNonNull removes one outer NON_NULL wrapper.
func StripNonNull(ref *TypeRef) *TypeRef {
	if ref != nil && ref.Kind == NonNull && ref.OfType != nil {
		return ref.OfType
	}

	return ref
}

// TypeString renders ref in GraphQL notation, e.g. "[String!]!".
func TypeString(ref *TypeRef) string {
	var b strings.Builder
	writeTypeString(&b, ref)

	return b.String()
}

func writeTypeString(b *strings.Builder, ref *TypeRef) {
	if ref == nil {
		return
	}

	switch ref.Kind {
	case NonNull:
		writeTypeString(b, ref.OfType)
		b.WriteByte('!')
	case List:
		b.WriteByte('[')
		writeTypeString(b, ref.OfType)
		b.WriteByte(']')
	default:
		b.WriteString(ref.Name)
	}
}

// IsNullable reports whether a type string accepts null.
func IsNullable(typeString string) bool {
	return !strings.HasSuffix(typeString, "!")
}

// TrimNonNull drops a trailing "!".
func TrimNonNull(typeString string) string {
	return strings.TrimSuffix(typeString, "!")
}

// ListElem returns the element type string of a list type string, ignoring
// the outer nullability.
func ListElem(typeString string) (string, bool) {
	typeString = TrimNonNull(typeString)
	if len(typeString) < 2 || typeString[0] != '[' || typeString[len(typeString)-1] != ']' {
		return "", false
	}

	return typeString[1 : len(typeString)-1], true
}

// RequiresQuoting reports whether values of the type are written as string
// literals. Only String and ID qualify; custom scalars and lists never do.
func RequiresQuoting(typeString string) bool {
	switch TrimNonNull(typeString) {
	case "String", "ID":
		return true
	default:
		return false
	}
}
