package check

import (
	"github.com/Yamashou/gqlblock/node"
	"github.com/Yamashou/gqlblock/template"
)

// Rule names the attachment rule applied to a (node kind, slot kind) pair.
type Rule int

const (
	// RulePlain accepts a node whose tag is listed by the slot.
	RulePlain Rule = iota
	RuleRoot
	RuleSelection
	RuleEnumKey
	RuleEnumValue
	RuleArguments
	RuleDictValue
	RuleListValue
	RulePair
	RuleReject
)

func (r Rule) String() string {
	switch r {
	case RulePlain:
		return "plain"
	case RuleRoot:
		return "root"
	case RuleSelection:
		return "selection"
	case RuleEnumKey:
		return "enum key"
	case RuleEnumValue:
		return "enum value"
	case RuleArguments:
		return "arguments"
	case RuleDictValue:
		return "dict value"
	case RuleListValue:
		return "list value"
	case RulePair:
		return "pair"
	default:
		return "reject"
	}
}

type ruleKey struct {
	kind template.Kind
	slot node.SlotKind
}

var rules = map[ruleKey]Rule{
	{template.KindField, node.SlotRoot}:      RuleRoot,
	{template.KindField, node.SlotSelection}: RuleSelection,

	{template.KindEnum, node.SlotPairKey}:   RuleEnumKey,
	{template.KindEnum, node.SlotPairValue}: RuleEnumValue,
	{template.KindEnum, node.SlotListItem}:  RuleEnumValue,
	{template.KindEnum, node.SlotRoot}:      RuleReject,

	{template.KindDict, node.SlotArguments}: RuleArguments,
	{template.KindDict, node.SlotPairValue}: RuleDictValue,
	{template.KindDict, node.SlotListItem}:  RuleDictValue,
	{template.KindDict, node.SlotRoot}:      RuleReject,

	{template.KindList, node.SlotPairValue}: RuleListValue,
	{template.KindList, node.SlotListItem}:  RuleListValue,
	{template.KindList, node.SlotRoot}:      RuleReject,

	{template.KindPair, node.SlotDictItem}:  RulePair,
	{template.KindPair, node.SlotGeneric}:   RuleReject,
	{template.KindPair, node.SlotRoot}:      RuleReject,
	{template.KindPair, node.SlotSelection}: RuleReject,
	{template.KindPair, node.SlotArguments}: RuleReject,
	{template.KindPair, node.SlotPairKey}:   RuleReject,
	{template.KindPair, node.SlotPairValue}: RuleReject,
	{template.KindPair, node.SlotListItem}:  RuleReject,
}

// RuleFor returns the rule deciding whether a node of kind may attach to a
// slot of slotKind. Unlisted combinations fall back to RulePlain.
func RuleFor(kind template.Kind, slotKind node.SlotKind) Rule {
	if r, ok := rules[ruleKey{kind, slotKind}]; ok {
		return r
	}

	return RulePlain
}
