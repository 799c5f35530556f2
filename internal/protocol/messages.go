package protocol

import (
	"fmt"

	"saboteur/internal/engine"
)

// Message types: Server → Client
const (
	MsgGameState   = "game_state"
	MsgPlayerState = "player_state"
	MsgTurnResult  = "turn_result"
	MsgEvent       = "event"
	MsgError       = "error"
)

// Message types: Client → Server
const (
	MsgAction = "action"
)

// Action kinds carried by ActionMsg.
const (
	ActionSkip            = "skip"
	ActionBuild           = "build"
	ActionCollapse        = "collapse"
	ActionInvestigate     = "investigate"
	ActionDebuff          = "debuff"
	ActionHeal            = "heal"
	ActionHealAlternative = "heal_alternative"
)

// ActionMsg is a turn submitted by a player.
// Params depend on Kind:
// skip: Card (omitted only with an empty hand)
// build: Card, X, Y (the cell built from), Direction
// collapse: X, Y
// investigate: End
// debuff, heal, heal_alternative: Card, Target
type ActionMsg struct {
	Kind      string           `json:"kind"`
	Card      *engine.CardView `json:"card,omitempty"`
	X         int              `json:"x,omitempty"`
	Y         int              `json:"y,omitempty"`
	Direction string           `json:"direction,omitempty"`
	End       string           `json:"end,omitempty"`
	Target    string           `json:"target,omitempty"`
}

// ToAction converts the message into an engine action.
func (m ActionMsg) ToAction() (engine.TurnAction, error) {
	var card engine.Card
	if m.Card != nil {
		c, err := m.Card.Card()
		if err != nil {
			return nil, err
		}
		card = c
	}

	switch m.Kind {
	case ActionSkip:
		return engine.SkipAction{Discard: card}, nil
	case ActionBuild:
		tc, ok := card.(engine.TunnelCard)
		if !ok {
			return nil, fmt.Errorf("%w: build needs a tunnel card", engine.ErrInvalidAction)
		}
		d, err := engine.ParseDirection(m.Direction)
		if err != nil {
			return nil, err
		}
		return engine.BuildAction{Tunnel: tc, X: m.X, Y: m.Y, Direction: d}, nil
	case ActionCollapse:
		return engine.CollapseAction{X: m.X, Y: m.Y}, nil
	case ActionInvestigate:
		end, err := engine.ParseEndVariant(m.End)
		if err != nil {
			return nil, err
		}
		return engine.InvestigateAction{End: end}, nil
	case ActionDebuff:
		dc, ok := card.(engine.DebuffCard)
		if !ok {
			return nil, fmt.Errorf("%w: debuff needs a debuff card", engine.ErrInvalidAction)
		}
		return engine.DebuffAction{Debuff: dc, Target: m.Target}, nil
	case ActionHeal:
		hc, ok := card.(engine.HealCard)
		if !ok {
			return nil, fmt.Errorf("%w: heal needs a heal card", engine.ErrInvalidAction)
		}
		return engine.HealAction{Heal: hc, Target: m.Target}, nil
	case ActionHealAlternative:
		hc, ok := card.(engine.HealAlternativeCard)
		if !ok {
			return nil, fmt.Errorf("%w: heal_alternative needs a heal_alternative card", engine.ErrInvalidAction)
		}
		return engine.HealAlternativeAction{Heal: hc, Target: m.Target}, nil
	}
	return nil, fmt.Errorf("%w: kind %q", engine.ErrInvalidAction, m.Kind)
}

// FromAction is the inverse of ToAction.
func FromAction(a engine.TurnAction) ActionMsg {
	var m ActionMsg
	if c := a.Card(); c != nil {
		v := engine.ViewOfCard(c)
		m.Card = &v
	}
	switch a := a.(type) {
	case engine.SkipAction:
		m.Kind = ActionSkip
	case engine.BuildAction:
		m.Kind = ActionBuild
		m.X, m.Y = a.X, a.Y
		m.Direction = a.Direction.String()
	case engine.CollapseAction:
		m.Kind = ActionCollapse
		m.X, m.Y = a.X, a.Y
		m.Card = nil
	case engine.InvestigateAction:
		m.Kind = ActionInvestigate
		m.End = a.End.String()
		m.Card = nil
	case engine.DebuffAction:
		m.Kind = ActionDebuff
		m.Target = a.Target
	case engine.HealAction:
		m.Kind = ActionHeal
		m.Target = a.Target
	case engine.HealAlternativeAction:
		m.Kind = ActionHealAlternative
		m.Target = a.Target
	}
	return m
}

// TurnResultMsg reports the outcome of a turn to everyone at the table.
type TurnResultMsg struct {
	Outcome string   `json:"outcome"`
	Actor   string   `json:"actor"`
	Player  string   `json:"player,omitempty"`
	Round   int      `json:"round,omitempty"`
	Winners []string `json:"winners,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// NewTurnResultMsg flattens an engine result.
func NewTurnResultMsg(actor string, res engine.TurnResult) TurnResultMsg {
	m := TurnResultMsg{Outcome: res.Outcome().String(), Actor: actor}
	switch r := res.(type) {
	case engine.NewTurn:
		m.Player = r.Player
	case engine.NewRound:
		m.Player = r.Player
		m.Round = r.Round
	case engine.EndGame:
		m.Winners = r.Winners
	case engine.Unacceptable:
		m.Reason = r.Error()
	}
	return m
}

// SearchRequest asks the pool for a table. Omitted fields match any table.
type SearchRequest struct {
	PartySize        *int  `json:"party_size,omitempty"`
	WithoutDeadlocks *bool `json:"without_deadlocks,omitempty"`
	SkipLoosers      *bool `json:"skip_loosers,omitempty"`
}

// SearchStatus answers a poll on a pool ticket.
type SearchStatus struct {
	Ticket  string   `json:"ticket"`
	Party   string   `json:"party,omitempty"`
	Players []string `json:"players,omitempty"`
	Ready   bool     `json:"ready"`
	Table   string   `json:"table,omitempty"`
}

// ErrorMsg is sent to a client on error.
type ErrorMsg struct {
	Message string `json:"message"`
}
