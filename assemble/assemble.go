// Package assemble renders attached node trees as GraphQL query text.
package assemble

import (
	"strings"

	"github.com/Yamashou/gqlblock/graphqljson"
	"github.com/Yamashou/gqlblock/node"
	"github.com/Yamashou/gqlblock/schema"
	"github.com/Yamashou/gqlblock/template"
)

// Text renders n. Incomplete parts such as a pair without a value render as
// the empty string and are dropped by their container.
func Text(n *node.Node) string {
	if n == nil {
		return ""
	}

	switch n.Kind {
	case template.KindField:
		return field(n)
	case template.KindDict:
		return dict(n)
	case template.KindPair:
		return pair(n)
	case template.KindList:
		return list(n)
	case template.KindEnum:
		return n.EnumValue
	case template.KindNull:
		return "null"
	case template.KindText, template.KindNumber, template.KindBoolean:
		return n.Text
	default:
		return ""
	}
}

// Operation renders the nodes attached to a root slot. Fields of the query
// type are grouped into one shorthand query.
func Operation(slot *node.Slot) string {
	var parts, shorthand []string
	for _, n := range slot.Nodes() {
		text := Text(n)
		if text == "" {
			continue
		}
		if n.Kind == template.KindField && n.Parent != schema.RootTypeName {
			shorthand = append(shorthand, text)
			continue
		}
		parts = append(parts, text)
	}

	if len(shorthand) > 0 {
		parts = append(parts, "{ "+strings.Join(shorthand, " ")+" }")
	}

	return strings.Join(parts, " ")
}

func field(n *node.Node) string {
	if !n.HasChildren {
		return n.Name
	}

	var b strings.Builder
	if n.IsFragment() {
		b.WriteString("... on ")
	}
	b.WriteString(n.Name)

	if n.Arguments != nil {
		b.WriteString(Text(n.Arguments.Node()))
	}

	var selections []string
	if n.Selection != nil {
		selections = texts(n.Selection.Nodes(), false)
	}
	if len(selections) == 0 {
		b.WriteString(" { }")
	} else {
		b.WriteString(" { ")
		b.WriteString(strings.Join(selections, " "))
		b.WriteString(" }")
	}

	return b.String()
}

func dict(n *node.Node) string {
	pairs := texts(n.Items.Nodes(), false)

	if schema.IsAnonymousTypeName(n.BaseType) {
		// empty argument lists are omitted
		if len(pairs) == 0 {
			return ""
		}
		return "(" + strings.Join(pairs, ", ") + ")"
	}

	return "{" + strings.Join(pairs, ", ") + "}"
}

func pair(n *node.Node) string {
	key := Text(n.Key.Node())
	value := quoted(n.Value.Node(), n.Quote)
	if key == "" || value == "" {
		return ""
	}

	return key + ": " + value
}

func list(n *node.Node) string {
	return "[" + strings.Join(texts(n.Items.Nodes(), n.Quote), ", ") + "]"
}

func texts(nodes []*node.Node, quote bool) []string {
	var out []string
	for _, n := range nodes {
		if text := quoted(n, quote); text != "" {
			out = append(out, text)
		}
	}

	return out
}

// quoted renders n, writing literal text as a string literal when quote is set.
func quoted(n *node.Node, quote bool) string {
	if n != nil && quote && n.Kind.IsLiteral() {
		return graphqljson.Quote(n.Text)
	}

	return Text(n)
}
