package node

import (
	"slices"

	"github.com/Yamashou/gqlblock/schema"
	"github.com/Yamashou/gqlblock/template"
)

type PathStep struct {
	Name   string
	IsList bool
}

// GetterPath returns the response path of field, outermost first. Fragments
// add no step and the query or mutation root ends the path.
func GetterPath(field *Node) []PathStep {
	var steps []PathStep
	for n := field; n != nil && n.Kind == template.KindField && n.Parent != schema.RootTypeName; n = n.parentNode() {
		if n.IsFragment() {
			continue
		}
		_, isList := schema.ListElem(n.FieldType)
		steps = append(steps, PathStep{Name: n.Name, IsList: isList})
	}

	slices.Reverse(steps)

	return steps
}

func (n *Node) parentNode() *Node {
	if n.slot == nil {
		return nil
	}

	return n.slot.Owner
}
