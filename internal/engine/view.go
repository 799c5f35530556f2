package engine

import (
	"cmp"
	"fmt"
	"slices"
)

// CardView is the plain form of a card used on the wire.
type CardView struct {
	Kind     string   `json:"kind"`
	Outs     []string `json:"outs,omitempty"`
	Deadlock bool     `json:"deadlock,omitempty"`
	Tool     string   `json:"tool,omitempty"`
	Tools    []string `json:"tools,omitempty"`
}

func ViewOfCard(c Card) CardView {
	switch c := c.(type) {
	case TunnelCard:
		return CardView{Kind: c.Kind().String(), Outs: c.Outs.Strings(), Deadlock: c.Deadlock}
	case HealCard:
		return CardView{Kind: c.Kind().String(), Tool: c.Tool.String()}
	case DebuffCard:
		return CardView{Kind: c.Kind().String(), Tool: c.Tool.String()}
	case HealAlternativeCard:
		return CardView{Kind: c.Kind().String(), Tools: []string{c.First.String(), c.Second.String()}}
	case nil:
		return CardView{}
	default:
		return CardView{Kind: c.Kind().String()}
	}
}

// Card converts the view back into a card.
func (v CardView) Card() (Card, error) {
	kind, err := ParseCardKind(v.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindTunnel:
		outs, err := ParseDirectionSet(v.Outs)
		if err != nil {
			return nil, err
		}
		return NewTunnelCard(v.Deadlock, outs.Directions()...)
	case KindInvestigate:
		return InvestigateCard{}, nil
	case KindCollapse:
		return CollapseCard{}, nil
	case KindHeal, KindDebuff:
		tool, err := ParseTool(v.Tool)
		if err != nil {
			return nil, err
		}
		if kind == KindHeal {
			return HealCard{Tool: tool}, nil
		}
		return DebuffCard{Tool: tool}, nil
	case KindHealAlternative:
		if len(v.Tools) != 2 {
			return nil, fmt.Errorf("%w: heal_alternative needs two tools", ErrInvalidAction)
		}
		first, err := ParseTool(v.Tools[0])
		if err != nil {
			return nil, err
		}
		second, err := ParseTool(v.Tools[1])
		if err != nil {
			return nil, err
		}
		return NewHealAlternativeCard(first, second)
	}
	return nil, ErrInvalidAction
}

// CellView is a cell as shown on the board. Ends nobody has reached yet
// are shown as hidden.
type CellView struct {
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Kind      string   `json:"kind"`
	Outs      []string `json:"outs"`
	Links     []string `json:"links,omitempty"`
	Deadlock  bool     `json:"deadlock,omitempty"`
	Collapsed bool     `json:"collapsed,omitempty"`
}

// PublicViewData is the game state visible to everyone.
type PublicViewData struct {
	Round    int                `json:"round"`
	Current  string             `json:"current"`
	Ended    bool               `json:"ended"`
	Winners  []string           `json:"winners,omitempty"`
	Rules    Rules              `json:"rules"`
	DeckSize int                `json:"deck_size"`
	GoldLeft int                `json:"gold_left"`
	Players  []PublicPlayerData `json:"players"`
	Cells    []CellView         `json:"cells"`
}

type PublicPlayerData struct {
	Name     string   `json:"name"`
	Gold     int      `json:"gold"`
	HandSize int      `json:"hand_size"`
	Debuffs  []string `json:"debuffs,omitempty"`
}

// PlayerViewData adds what only one player can see.
type PlayerViewData struct {
	PublicViewData
	Name     string            `json:"name"`
	Role     string            `json:"role"`
	Hand     []CardView        `json:"hand"`
	Ends     map[string]string `json:"ends"`
	IsMyTurn bool              `json:"is_my_turn"`
}

func (g *Game) PublicView() PublicViewData {
	pv := PublicViewData{
		Round:    g.round,
		Current:  g.CurrentPlayer().Name,
		Ended:    g.ended,
		Rules:    g.config.Rules,
		DeckSize: g.deck.Len(),
		GoldLeft: g.gold.Value(),
	}
	if g.ended {
		pv.Winners = g.endResult().Winners
	}
	for _, p := range g.players {
		ppd := PublicPlayerData{
			Name:     p.Name,
			Gold:     p.Gold,
			HandSize: len(p.Hand),
		}
		for _, t := range p.Debuffs.Tools() {
			ppd.Debuffs = append(ppd.Debuffs, t.String())
		}
		pv.Players = append(pv.Players, ppd)
	}
	pv.Cells = g.cellViews()
	return pv
}

func (g *Game) cellViews() []CellView {
	cells := g.field.Cells()
	slices.SortFunc(cells, func(a, b *Cell) int {
		if c := cmp.Compare(b.Pos.Y, a.Pos.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.Pos.X, b.Pos.X)
	})

	hidden := make(map[CellID]bool)
	for _, v := range EndVariants {
		if !g.field.Connected(v) {
			hidden[g.field.End(v).ID] = true
		}
	}

	out := make([]CellView, 0, len(cells))
	for _, c := range cells {
		cv := CellView{
			X:         c.Pos.X,
			Y:         c.Pos.Y,
			Kind:      c.Kind.String(),
			Outs:      c.Connectors().Strings(),
			Deadlock:  c.Deadlock,
			Collapsed: c.Collapsed,
		}
		if hidden[c.ID] {
			cv.Kind = "hidden"
		}
		for _, d := range Directions {
			if _, ok := c.Link(d); ok {
				cv.Links = append(cv.Links, d.String())
			}
		}
		out = append(out, cv)
	}
	return out
}

// ViewFor returns the state as seen by the named player.
func (g *Game) ViewFor(name string) PlayerViewData {
	view := PlayerViewData{PublicViewData: g.PublicView(), Name: name}
	p := g.GetPlayer(name)
	if p == nil {
		return view
	}
	view.Role = p.Role.String()
	view.IsMyTurn = !g.ended && g.CurrentPlayer() == p
	for _, c := range p.Hand {
		view.Hand = append(view.Hand, ViewOfCard(c))
	}
	view.Ends = make(map[string]string, len(p.Ends))
	for v, s := range p.Ends {
		view.Ends[v.String()] = s.String()
	}
	return view
}
