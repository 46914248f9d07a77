package node

import (
	"errors"
	"fmt"

	"github.com/Yamashou/gqlblock/schema"
	"github.com/Yamashou/gqlblock/template"
)

// ErrUnresolvedReference is returned when a node names a type or field its
// endpoint's schema no longer has.
var ErrUnresolvedReference = errors.New("unresolved reference")

// SchemaSource resolves schemas by endpoint and instances to endpoints.
type SchemaSource interface {
	Schema(endpoint string) (*schema.Schema, bool)
	Endpoint(instanceID string) (string, bool)
}

// Resync recomputes the derived state of n from the current schema of its
// endpoint. Without a schema the derived state is cleared and n waits for the
// next refresh. A failed lookup marks n broken.
func (n *Node) Resync(src SchemaSource) error {
	if n.broken || n.Endpoint == "" {
		return nil
	}

	s, ok := src.Schema(n.Endpoint)
	if !ok {
		n.clearDerived()
		return nil
	}

	if err := n.resync(s); err != nil {
		n.broken = true
		n.clearDerived()
		return fmt.Errorf("resync %s node %s: %w", n.Kind, n.id, err)
	}

	return nil
}

func (n *Node) resync(s *schema.Schema) error {
	switch n.Kind {
	case template.KindField:
		if n.IsFragment() {
			if _, ok := s.Type(n.Name); !ok {
				return fmt.Errorf("%w: type %s", ErrUnresolvedReference, n.Name)
			}
			n.BaseType = n.Name
			n.FieldType = n.Name

			return nil
		}

		parent, ok := s.Type(n.Parent)
		if !ok {
			return fmt.Errorf("%w: type %s", ErrUnresolvedReference, n.Parent)
		}
		f, ok := parent.Field(n.Name)
		if !ok {
			return fmt.Errorf("%w: field %s.%s", ErrUnresolvedReference, n.Parent, n.Name)
		}
		if base := schema.BaseType(f.Type); base != nil {
			n.BaseType = base.Name
		}
		n.FieldType = schema.TypeString(f.Type)
	case template.KindDict, template.KindEnum:
		if _, ok := s.Type(n.BaseType); !ok {
			return fmt.Errorf("%w: type %s", ErrUnresolvedReference, n.BaseType)
		}
	case template.KindPair:
		if _, ok := s.Type(n.BaseType); !ok {
			return fmt.Errorf("%w: type %s", ErrUnresolvedReference, n.BaseType)
		}
		// the persisted quoting flag survives a refresh
		if err := n.configurePair(s, false); err != nil {
			return err
		}
	case template.KindList:
		if _, ok := s.Type(namedType(n.Type)); !ok {
			return fmt.Errorf("%w: type %s", ErrUnresolvedReference, n.Type)
		}
		n.Items.Check = ValueShapes(s, n.Type)
		n.Items.ValueType = n.Type
	}

	return nil
}

func (n *Node) clearDerived() {
	switch n.Kind {
	case template.KindField:
		n.BaseType = ""
		n.FieldType = ""
	case template.KindPair:
		n.Value.Check = nil
		n.Value.ValueType = ""
		n.Value.Description = ""
	case template.KindList:
		n.Items.Check = nil
		n.Items.ValueType = ""
	}
}

// ConfigurePair points the value slot of a pair at the input field named by
// its key: accepted shapes, value type, quoting and description. A pair
// without a key is left unconfigured. A key naming no input field of the
// pair's type yields ErrUnresolvedReference and leaves the value slot
// unconfigured.
func (n *Node) ConfigurePair(s *schema.Schema) error {
	if n.Kind != template.KindPair {
		return nil
	}

	return n.configurePair(s, true)
}

func (n *Node) configurePair(s *schema.Schema, updateQuote bool) error {
	in, err := n.keyField(s)
	if in == nil {
		n.Value.Check = nil
		n.Value.ValueType = ""
		n.Value.Description = ""

		return err
	}

	typeString := schema.TypeString(in.Type)
	n.Value.Check = ValueShapes(s, typeString)
	n.Value.ValueType = typeString
	n.Value.Description = in.Description
	if updateQuote {
		n.Quote = schema.RequiresQuoting(typeString)
	}

	return nil
}

func (n *Node) keyField(s *schema.Schema) (*schema.ArgumentDef, error) {
	key := n.Key.Node()
	if key == nil || s == nil {
		return nil, nil
	}

	t, ok := s.Type(n.BaseType)
	if !ok {
		return nil, fmt.Errorf("%w: type %s", ErrUnresolvedReference, n.BaseType)
	}
	in, ok := t.InputField(key.EnumValue)
	if !ok {
		return nil, fmt.Errorf("%w: input field %s.%s", ErrUnresolvedReference, n.BaseType, key.EnumValue)
	}

	return in, nil
}

// Options lists the choices of an enum node: input field names when it names
// a pair key, enum values otherwise.
func (n *Node) Options(s *schema.Schema) []string {
	if n.Kind != template.KindEnum || s == nil {
		return nil
	}

	t, ok := s.Type(n.BaseType)
	if !ok {
		return nil
	}

	var options []string
	switch t.Kind {
	case schema.InputObject:
		for _, in := range t.InputFields {
			options = append(options, in.Name)
		}
	case schema.Enum:
		for _, v := range t.EnumValues {
			options = append(options, v.Name)
		}
	}

	return options
}
