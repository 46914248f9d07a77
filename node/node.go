// Package node is the editor-side tree of query blocks: nodes connected
// through typed slots.
package node

import (
	"slices"

	"github.com/google/uuid"

	"github.com/Yamashou/gqlblock/template"
)

// SlotKind tells the checker which rule governs a slot.
type SlotKind int

const (
	SlotGeneric SlotKind = iota
	SlotRoot
	SlotSelection
	SlotArguments
	SlotPairKey
	SlotPairValue
	SlotDictItem
	SlotListItem
)

func (k SlotKind) String() string {
	switch k {
	case SlotRoot:
		return "root"
	case SlotSelection:
		return "selection"
	case SlotArguments:
		return "arguments"
	case SlotPairKey:
		return "pair key"
	case SlotPairValue:
		return "pair value"
	case SlotDictItem:
		return "dict item"
	case SlotListItem:
		return "list item"
	default:
		return "generic"
	}
}

// Slot is an input of a node, or a top-level input bound to an instance.
type Slot struct {
	Kind SlotKind
	// Owner is nil for root and generic top-level slots.
	Owner *Node
	// InstanceID binds a root slot to a registered instance.
	InstanceID string
	// Check lists the accepted output tags. Empty accepts every tag.
	Check []string
	// ValueType is the declared type string of values held by pair value
	// and list item slots.
	ValueType   string
	Description string

	multi bool
	nodes []*Node
}

// NewRootSlot returns a slot accepting query and mutation fields of the instance.
func NewRootSlot(instanceID string) *Slot {
	return &Slot{Kind: SlotRoot, InstanceID: instanceID, Check: []string{TagGraphQL}, multi: true}
}

// NewSlot returns a slot accepting any node whose tag is in check.
func NewSlot(check ...string) *Slot {
	return &Slot{Kind: SlotGeneric, Check: check}
}

func (s *Slot) Nodes() []*Node {
	return s.nodes
}

// Node returns the first attached node.
func (s *Slot) Node() *Node {
	if len(s.nodes) == 0 {
		return nil
	}

	return s.nodes[0]
}

// Connect attaches n to s without any compatibility check, detaching it from
// its previous slot. A single-valued slot drops its previous occupant.
func Connect(s *Slot, n *Node) {
	Disconnect(n)

	if s.multi {
		s.nodes = append(s.nodes, n)
	} else {
		if prev := s.Node(); prev != nil {
			prev.slot = nil
		}
		s.nodes = []*Node{n}
	}
	n.slot = s
}

// Disconnect detaches n from its slot.
func Disconnect(n *Node) {
	if n.slot == nil {
		return
	}

	n.slot.nodes = slices.DeleteFunc(n.slot.nodes, func(m *Node) bool { return m == n })
	n.slot = nil
}

// Node is one block of a query tree. Which fields are meaningful depends on
// Kind; they mirror template.Template.
type Node struct {
	id string

	Kind     template.Kind
	Endpoint string
	// Name is the field name, or the type name of a fragment.
	Name string
	// Parent is the declaring type of a field. Fragments have none.
	Parent       string
	HasChildren  bool
	HasArguments bool
	// BaseType is persisted for dict, pair and enum nodes and derived by
	// Resync for fields.
	BaseType string
	// FieldType is the declared type string of a field, derived by Resync.
	FieldType string
	EnumValue string
	// Type is the element type string of a list.
	Type string
	// Quote marks pair values and list elements written as string literals.
	Quote       bool
	Text        string
	Description string

	Arguments *Slot
	Selection *Slot
	Key       *Slot
	Value     *Slot
	Items     *Slot

	slot   *Slot
	broken bool
}

// newNode creates a detached node of the given kind with its slots. Field
// slots depend on the field flags and are added by setFieldSlots.
func newNode(kind template.Kind) *Node {
	n := &Node{id: uuid.NewString(), Kind: kind}

	switch kind {
	case template.KindDict:
		n.Items = &Slot{Kind: SlotDictItem, Owner: n, Check: []string{TagPair}, multi: true}
	case template.KindPair:
		n.Key = &Slot{Kind: SlotPairKey, Owner: n, Check: []string{TagEnum}}
		n.Value = &Slot{Kind: SlotPairValue, Owner: n}
	case template.KindList:
		n.Items = &Slot{Kind: SlotListItem, Owner: n, multi: true}
	}

	return n
}

func (n *Node) ID() string {
	return n.id
}

// Slot returns the slot n is attached to.
func (n *Node) Slot() *Slot {
	return n.slot
}

// IsFragment reports whether a field node is a fragment spread.
func (n *Node) IsFragment() bool {
	return n.Kind == template.KindField && n.Parent == ""
}

// Broken reports whether a reference of n failed to resolve. Broken nodes
// stay broken until recreated.
func (n *Node) Broken() bool {
	return n.broken
}

// Tag is the output tag matched against slot checks.
func (n *Node) Tag() string {
	return tagOf(n.Kind)
}

// Slots returns the inputs of n that exist.
func (n *Node) Slots() []*Slot {
	var slots []*Slot
	for _, s := range []*Slot{n.Arguments, n.Selection, n.Key, n.Value, n.Items} {
		if s != nil {
			slots = append(slots, s)
		}
	}

	return slots
}

func (n *Node) setFieldSlots() {
	n.Arguments, n.Selection = nil, nil
	if n.HasArguments {
		n.Arguments = &Slot{Kind: SlotArguments, Owner: n, Check: []string{TagDict}}
	}
	if n.HasChildren {
		n.Selection = &Slot{Kind: SlotSelection, Owner: n, Check: []string{TagGraphQL}, multi: true}
	}
}

// Walk calls fn for n and every node attached below it, parents first.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}

	fn(n)
	for _, s := range n.Slots() {
		for _, child := range s.Nodes() {
			Walk(child, fn)
		}
	}
}
