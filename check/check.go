// Package check decides whether a node may be attached to a slot.
package check

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Yamashou/gqlblock/node"
	"github.com/Yamashou/gqlblock/schema"
	"github.com/Yamashou/gqlblock/template"
)

// ErrMalformedAttachment is wrapped by every refused attachment.
var ErrMalformedAttachment = errors.New("malformed attachment")

type Checker struct {
	src    node.SchemaSource
	logger *zap.Logger
	locker sync.Locker
}

type Option func(*Checker)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithLocker makes every Checker method hold l while it reads or changes
// nodes. Pass the lock of the registry resyncing those nodes.
func WithLocker(l sync.Locker) Option {
	return func(c *Checker) {
		c.locker = l
	}
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

func New(src node.SchemaSource, options ...Option) *Checker {
	c := &Checker{
		src:    src,
		logger: zap.NewNop(),
		locker: nopLocker{},
	}
	for _, option := range options {
		option(c)
	}

	return c
}

// MayAttach reports whether child may be attached to slot. Missing schema
// data rejects, except for the root rule which accepts until the instance's
// schema has loaded. The root takes query and mutation, or fields of the
// query type as a shorthand query.
func (c *Checker) MayAttach(child *node.Node, slot *node.Slot) bool {
	c.locker.Lock()
	defer c.locker.Unlock()

	return c.mayAttach(child, slot)
}

func (c *Checker) mayAttach(child *node.Node, slot *node.Slot) bool {
	if child == nil || slot == nil || child.Broken() {
		return false
	}
	if slot.Owner != nil && slot.Owner.Broken() {
		return false
	}

	switch RuleFor(child.Kind, slot.Kind) {
	case RuleRoot:
		return c.root(child, slot)
	case RuleSelection:
		return c.selection(child, slot)
	case RuleEnumKey:
		return true
	case RuleEnumValue:
		return c.enumValue(child, slot)
	case RuleArguments:
		return c.arguments(child, slot)
	case RuleDictValue:
		return c.dictValue(child, slot)
	case RuleListValue:
		return c.listValue(child, slot)
	case RulePair:
		return c.pair(child, slot)
	case RulePlain:
		return plain(child, slot)
	default:
		return false
	}
}

// plain accepts a tag listed by the slot. Value slots list nothing until
// their type is known and then refuse everything.
func plain(child *node.Node, slot *node.Slot) bool {
	switch slot.Kind {
	case node.SlotPairValue, node.SlotListItem:
		if slot.ValueType == "" {
			return false
		}
	default:
		if len(slot.Check) == 0 {
			return true
		}
	}

	return slices.Contains(slot.Check, child.Tag())
}

func (c *Checker) root(child *node.Node, slot *node.Slot) bool {
	endpoint, ok := c.src.Endpoint(slot.InstanceID)
	if !ok || child.Endpoint != endpoint {
		return false
	}

	s, ok := c.src.Schema(endpoint)
	if !ok {
		return true
	}

	if child.Parent == schema.RootTypeName {
		root := s.Root()
		if root == nil {
			return false
		}
		_, ok = root.Field(child.Name)

		return ok
	}

	// query shorthand: fields of the query type stand at the root
	if child.IsFragment() || s.QueryType == "" || child.Parent != s.QueryType {
		return false
	}
	query, ok := s.Type(s.QueryType)
	if !ok {
		return false
	}
	_, ok = query.Field(child.Name)

	return ok
}

func (c *Checker) selection(child *node.Node, slot *node.Slot) bool {
	owner := slot.Owner
	if owner == nil || child.Endpoint != owner.Endpoint {
		return false
	}
	if owner.BaseType == "" || child.BaseType == "" {
		return false
	}

	s, ok := c.src.Schema(child.Endpoint)
	if !ok {
		return false
	}

	if child.IsFragment() {
		target, ok := s.Type(owner.BaseType)
		return ok && target.HasPossibleType(child.Name)
	}

	if owner.BaseType != child.Parent {
		return false
	}
	parent, ok := s.Type(child.Parent)
	if !ok {
		return false
	}
	_, ok = parent.Field(child.Name)

	return ok
}

func (c *Checker) enumValue(child *node.Node, slot *node.Slot) bool {
	if slot.ValueType == "" || !c.resolved(child) {
		return false
	}

	return child.BaseType == schema.TrimNonNull(slot.ValueType)
}

func (c *Checker) arguments(child *node.Node, slot *node.Slot) bool {
	owner := slot.Owner
	if owner == nil || owner.IsFragment() || child.Endpoint != owner.Endpoint || !c.resolved(child) {
		return false
	}

	return child.BaseType == schema.AnonymousTypeName(owner.Parent, owner.Name)
}

func (c *Checker) dictValue(child *node.Node, slot *node.Slot) bool {
	if !sameEndpoint(child, slot) || slot.ValueType == "" || !c.resolved(child) {
		return false
	}

	return child.BaseType == schema.TrimNonNull(slot.ValueType)
}

func (c *Checker) listValue(child *node.Node, slot *node.Slot) bool {
	if !sameEndpoint(child, slot) || !c.resolved(child) {
		return false
	}

	elem, ok := schema.ListElem(slot.ValueType)
	if !ok {
		return false
	}

	return schema.TrimNonNull(child.Type) == schema.TrimNonNull(elem)
}

func (c *Checker) pair(child *node.Node, slot *node.Slot) bool {
	if !sameEndpoint(child, slot) || !c.resolved(child) {
		return false
	}

	return child.BaseType == slot.Owner.BaseType
}

// resolved reports whether the schema of n's endpoint is loaded.
func (c *Checker) resolved(n *node.Node) bool {
	_, ok := c.src.Schema(n.Endpoint)
	return ok
}

func sameEndpoint(child *node.Node, slot *node.Slot) bool {
	return slot.Owner != nil && child.Endpoint == slot.Owner.Endpoint
}

// Attach connects child to slot when MayAttach allows it. A key attached to
// a pair reconfigures the pair's value slot.
func (c *Checker) Attach(child *node.Node, slot *node.Slot) error {
	c.locker.Lock()
	defer c.locker.Unlock()

	if !c.mayAttach(child, slot) {
		return malformed(child, slot)
	}

	node.Connect(slot, child)

	if slot.Kind == node.SlotPairKey {
		c.configure(slot.Owner)
	}
	if child.Kind == template.KindPair {
		c.configure(child)
	}

	return nil
}

// SetEnumValue changes the choice of an enum node. A changed pair key
// reconfigures its pair.
func (c *Checker) SetEnumValue(enum *node.Node, value string) error {
	c.locker.Lock()
	defer c.locker.Unlock()

	if enum == nil || enum.Kind != template.KindEnum {
		return fmt.Errorf("set enum value: not an enum node")
	}

	s, ok := c.src.Schema(enum.Endpoint)
	if !ok {
		return fmt.Errorf("set enum value: schema of %s is not loaded", enum.Endpoint)
	}
	if !slices.Contains(enum.Options(s), value) {
		return fmt.Errorf("set enum value: %q is not a choice of %s", value, enum.BaseType)
	}

	enum.EnumValue = value
	if slot := enum.Slot(); slot != nil && slot.Kind == node.SlotPairKey {
		c.configure(slot.Owner)
	}

	return nil
}

func (c *Checker) configure(pair *node.Node) {
	s, ok := c.src.Schema(pair.Endpoint)
	if !ok {
		c.logger.Debug("pair left unconfigured, schema not loaded", zap.String("endpoint", pair.Endpoint))
		return
	}

	if err := pair.ConfigurePair(s); err != nil {
		c.logger.Debug("pair left unconfigured", zap.String("node", pair.ID()), zap.Error(err))
	}
}

// Validate re-checks every attachment below slot.
func (c *Checker) Validate(slot *node.Slot) error {
	c.locker.Lock()
	defer c.locker.Unlock()

	return c.validate(slot)
}

func (c *Checker) validate(slot *node.Slot) error {
	var errs []error
	for _, child := range slot.Nodes() {
		if !c.mayAttach(child, slot) {
			errs = append(errs, malformed(child, slot))
		}
		for _, s := range child.Slots() {
			if err := c.validate(s); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func malformed(child *node.Node, slot *node.Slot) error {
	if child == nil || slot == nil {
		return fmt.Errorf("%w: missing node or slot", ErrMalformedAttachment)
	}

	return fmt.Errorf("%w: %s node %s cannot attach to %s slot", ErrMalformedAttachment, child.Kind, label(child), slot.Kind)
}

func label(n *node.Node) string {
	switch {
	case n.Kind == template.KindField && n.IsFragment():
		return "... on " + n.Name
	case n.Kind == template.KindField:
		return n.Parent + "." + n.Name
	case n.Kind == template.KindEnum:
		return n.EnumValue
	case n.Kind.IsLiteral():
		return n.Text
	default:
		return n.BaseType
	}
}
