package engine

// TurnAction is a move submitted by the current player. Every action
// spends the card it carries. The set of implementations is closed.
type TurnAction interface {
	Card() Card
	isAction()
}

// SkipAction discards a card. Discard may be nil only when the hand is empty.
type SkipAction struct {
	Discard Card
}

// BuildAction places Tunnel next to the cell at (X, Y) in Direction.
type BuildAction struct {
	Tunnel    TunnelCard
	X, Y      int
	Direction Direction
}

// Near returns the coordinate of the cell being built from.
func (a BuildAction) Near() Point { return Point{X: a.X, Y: a.Y} }

// Target returns the coordinate the tile would occupy.
func (a BuildAction) Target() Point { return a.Near().Step(a.Direction) }

// CollapseAction destroys the tunnel at (X, Y).
type CollapseAction struct {
	X, Y int
}

// InvestigateAction looks behind one end.
type InvestigateAction struct {
	End EndVariant
}

// DebuffAction breaks a tool of the named player.
type DebuffAction struct {
	Debuff DebuffCard
	Target string
}

// HealAction repairs a tool of the named player.
type HealAction struct {
	Heal   HealCard
	Target string
}

// HealAlternativeAction repairs one of two tools, the first if both are broken.
type HealAlternativeAction struct {
	Heal   HealAlternativeCard
	Target string
}

func (a SkipAction) Card() Card            { return a.Discard }
func (a BuildAction) Card() Card           { return a.Tunnel }
func (CollapseAction) Card() Card          { return CollapseCard{} }
func (InvestigateAction) Card() Card       { return InvestigateCard{} }
func (a DebuffAction) Card() Card          { return a.Debuff }
func (a HealAction) Card() Card            { return a.Heal }
func (a HealAlternativeAction) Card() Card { return a.Heal }

func (SkipAction) isAction()            {}
func (BuildAction) isAction()           {}
func (CollapseAction) isAction()        {}
func (InvestigateAction) isAction()     {}
func (DebuffAction) isAction()          {}
func (HealAction) isAction()            {}
func (HealAlternativeAction) isAction() {}

// EventType identifies events emitted by the engine.
type EventType string

const (
	EventCardPlayed   EventType = "card_played"
	EventRejected     EventType = "rejected"
	EventTunnelBuilt  EventType = "tunnel_built"
	EventCollapsed    EventType = "collapsed"
	EventEndRevealed  EventType = "end_revealed"
	EventInvestigated EventType = "investigated"
	EventDebuffed     EventType = "debuffed"
	EventHealed       EventType = "healed"
	EventGoldPaid     EventType = "gold_paid"
	EventTurnEnd      EventType = "turn_end"
	EventRoundEnd     EventType = "round_end"
	EventRoundStart   EventType = "round_start"
	EventGameOver     EventType = "game_over"
)

// Event is emitted by the engine after state changes. Private events are
// meant for Player only.
type Event struct {
	Type    EventType `json:"type"`
	Player  string    `json:"player,omitempty"`
	Private bool      `json:"private,omitempty"`
	Data    any       `json:"data,omitempty"`
}
