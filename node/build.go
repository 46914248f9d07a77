package node

import (
	"github.com/Yamashou/gqlblock/template"
)

// Build creates the node tree described by t. Children are connected without
// compatibility checks; run a checker over the result to validate it.
func Build(t *template.Template) *Node {
	if t == nil {
		return nil
	}

	n := newNode(t.Kind)
	n.Endpoint = t.Endpoint
	n.Name = t.Name
	n.Parent = t.Parent
	n.HasChildren = t.HasChildren
	n.HasArguments = t.HasArguments
	n.BaseType = t.BaseType
	n.EnumValue = t.EnumValue
	n.Type = t.Type
	n.Quote = t.Quote
	n.Text = t.Text
	n.Description = t.Description

	switch t.Kind {
	case template.KindField:
		n.setFieldSlots()
		if n.Arguments != nil && t.Arguments != nil {
			Connect(n.Arguments, Build(t.Arguments))
		}
		if n.Selection != nil {
			connectAll(n.Selection, t.Items)
		}
	case template.KindPair:
		if t.Key != nil {
			Connect(n.Key, Build(t.Key))
		}
		if t.Value != nil {
			Connect(n.Value, Build(t.Value))
		}
	case template.KindDict, template.KindList:
		connectAll(n.Items, t.Items)
	}

	return n
}

func connectAll(s *Slot, items []*template.Template) {
	for _, item := range items {
		if item != nil {
			Connect(s, Build(item))
		}
	}
}

// Snapshot records n and its attached children. Derived state is not kept.
func Snapshot(n *Node) *template.Template {
	if n == nil {
		return nil
	}

	t := &template.Template{
		Kind:         n.Kind,
		Endpoint:     n.Endpoint,
		Parent:       n.Parent,
		Name:         n.Name,
		HasChildren:  n.HasChildren,
		HasArguments: n.HasArguments,
		EnumValue:    n.EnumValue,
		Type:         n.Type,
		Quote:        n.Quote,
		Text:         n.Text,
		Description:  n.Description,
	}
	if n.Kind != template.KindField {
		t.BaseType = n.BaseType
	}

	switch n.Kind {
	case template.KindField:
		if n.Arguments != nil {
			t.Arguments = Snapshot(n.Arguments.Node())
		}
		if n.Selection != nil {
			t.Items = snapshotAll(n.Selection)
		}
	case template.KindPair:
		t.Key = Snapshot(n.Key.Node())
		t.Value = Snapshot(n.Value.Node())
	case template.KindDict, template.KindList:
		t.Items = snapshotAll(n.Items)
	}

	return t
}

func snapshotAll(s *Slot) []*template.Template {
	var items []*template.Template
	for _, child := range s.Nodes() {
		items = append(items, Snapshot(child))
	}

	return items
}
