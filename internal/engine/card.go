package engine

import (
	"fmt"
	"strings"
)

// Tool is a piece of mining equipment that can be broken and repaired.
type Tool int

const (
	Pick Tool = iota
	Lamp
	Truck
)

var toolNames = map[Tool]string{
	Pick:  "pick",
	Lamp:  "lamp",
	Truck: "truck",
}

func (t Tool) String() string {
	if s, ok := toolNames[t]; ok {
		return s
	}
	return "unknown"
}

func ParseTool(s string) (Tool, error) {
	for t, name := range toolNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: tool %q", ErrUnknownName, s)
}

// ToolSet is a bitmask of broken tools.
type ToolSet uint8

func (s ToolSet) Has(t Tool) bool { return s&(1<<t) != 0 }

func (s ToolSet) With(t Tool) ToolSet { return s | 1<<t }

func (s ToolSet) Without(t Tool) ToolSet { return s &^ (1 << t) }

func (s ToolSet) Empty() bool { return s == 0 }

// Tools returns the members in a stable order.
func (s ToolSet) Tools() []Tool {
	var out []Tool
	for _, t := range []Tool{Pick, Lamp, Truck} {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// CardKind identifies the card variant.
type CardKind int

const (
	KindTunnel CardKind = iota
	KindInvestigate
	KindCollapse
	KindHeal
	KindHealAlternative
	KindDebuff
)

var cardKindNames = map[CardKind]string{
	KindTunnel:          "tunnel",
	KindInvestigate:     "investigate",
	KindCollapse:        "collapse",
	KindHeal:            "heal",
	KindHealAlternative: "heal_alternative",
	KindDebuff:          "debuff",
}

func (k CardKind) String() string {
	if s, ok := cardKindNames[k]; ok {
		return s
	}
	return "unknown"
}

func ParseCardKind(s string) (CardKind, error) {
	for k, name := range cardKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: card kind %q", ErrUnknownName, s)
}

// Card is an immutable game card. The set of implementations is closed.
type Card interface {
	Kind() CardKind
	// Equal reports structural equality.
	Equal(other Card) bool
	isCard()
}

// TunnelCard is a tile with one or more connectors.
type TunnelCard struct {
	Outs     DirectionSet
	Deadlock bool
}

func NewTunnelCard(deadlock bool, outs ...Direction) (TunnelCard, error) {
	set := NewDirectionSet(outs...)
	if set == 0 {
		return TunnelCard{}, ErrNoConnectors
	}
	return TunnelCard{Outs: set, Deadlock: deadlock}, nil
}

func (c TunnelCard) Kind() CardKind { return KindTunnel }
func (c TunnelCard) Equal(other Card) bool {
	o, ok := other.(TunnelCard)
	return ok && o == c
}
func (TunnelCard) isCard() {}

func (c TunnelCard) String() string {
	if c.Deadlock {
		return "deadlock[" + c.Outs.String() + "]"
	}
	return "tunnel[" + c.Outs.String() + "]"
}

// InvestigateCard peeks at one end.
type InvestigateCard struct{}

func (InvestigateCard) Kind() CardKind { return KindInvestigate }
func (InvestigateCard) Equal(other Card) bool {
	_, ok := other.(InvestigateCard)
	return ok
}
func (InvestigateCard) isCard() {}

// CollapseCard destroys a built tunnel.
type CollapseCard struct{}

func (CollapseCard) Kind() CardKind { return KindCollapse }
func (CollapseCard) Equal(other Card) bool {
	_, ok := other.(CollapseCard)
	return ok
}
func (CollapseCard) isCard() {}

// HealCard repairs one tool.
type HealCard struct {
	Tool Tool
}

func (HealCard) Kind() CardKind { return KindHeal }
func (c HealCard) Equal(other Card) bool {
	o, ok := other.(HealCard)
	return ok && o.Tool == c.Tool
}
func (HealCard) isCard() {}

// HealAlternativeCard repairs either of two distinct tools.
type HealAlternativeCard struct {
	First  Tool
	Second Tool
}

func NewHealAlternativeCard(first, second Tool) (HealAlternativeCard, error) {
	if first == second {
		return HealAlternativeCard{}, fmt.Errorf("%w: %s", ErrSameTools, first)
	}
	return HealAlternativeCard{First: first, Second: second}, nil
}

func (HealAlternativeCard) Kind() CardKind { return KindHealAlternative }

// Equal ignores which tool is named first.
func (c HealAlternativeCard) Equal(other Card) bool {
	o, ok := other.(HealAlternativeCard)
	if !ok {
		return false
	}
	return (o.First == c.First && o.Second == c.Second) ||
		(o.First == c.Second && o.Second == c.First)
}
func (HealAlternativeCard) isCard() {}

// DebuffCard breaks one tool of the target player.
type DebuffCard struct {
	Tool Tool
}

func (DebuffCard) Kind() CardKind { return KindDebuff }
func (c DebuffCard) Equal(other Card) bool {
	o, ok := other.(DebuffCard)
	return ok && o.Tool == c.Tool
}
func (DebuffCard) isCard() {}
