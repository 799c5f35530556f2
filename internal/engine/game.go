package engine

import (
	"errors"
	"fmt"
)

var (
	ErrPlayerCount   = errors.New("player count out of range")
	ErrDuplicateName = errors.New("duplicate player name")
	ErrEmptyName     = errors.New("empty player name")
	ErrBadCatalog    = errors.New("invalid card catalog")
	ErrUnknownName   = errors.New("unknown name")
	ErrNoConnectors  = errors.New("tunnel has no connectors")
	ErrSameTools     = errors.New("alternative heal needs two different tools")

	ErrInvalidAction   = errors.New("invalid action")
	ErrCardNotInHand   = errors.New("card not in hand")
	ErrBrokenTools     = errors.New("cannot build with broken tools")
	ErrDeadlockBanned  = errors.New("deadlocks are not allowed")
	ErrAlreadyKnown    = errors.New("end already known")
	ErrInvalidTarget   = errors.New("invalid target")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrAlreadyDebuffed = errors.New("tool already broken")
	ErrNotDebuffed     = errors.New("tool is not broken")
)

// Game holds the entire state of one table. It is not safe for concurrent use.
type Game struct {
	players []*Player
	config  GameConfig
	rng     Rand

	round      int
	cursor     int
	deck       *Deck
	gold       *GoldHeap
	field      *Field
	skipStreak int
	ended      bool
	result     EndGame

	events []Event
}

// NewGame seats the players in the given order and deals the first round.
// A nil rng is seeded from crypto/rand.
func NewGame(names []string, config GameConfig, rng Rand) (*Game, error) {
	if len(names) < MinPlayers || len(names) > MaxPlayers {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrPlayerCount, len(names), MinPlayers, MaxPlayers)
	}
	seen := make(map[string]bool, len(names))
	players := make([]*Player, len(names))
	for i, name := range names {
		if name == "" {
			return nil, ErrEmptyName
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[name] = true
		players[i] = NewPlayer(name)
	}

	if config.Catalog.Size() == 0 {
		config.Catalog = DefaultCatalog()
	}
	if need := len(names) * handSize(len(names)); config.Catalog.Size() < need {
		return nil, fmt.Errorf("%w: %d cards, need at least %d", ErrBadCatalog, config.Catalog.Size(), need)
	}

	if rng == nil {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		rng = NewRand(seed)
	}

	g := &Game{
		players: players,
		config:  config,
		rng:     rng,
		round:   1,
		gold:    NewGoldHeap(config.Catalog.Gold),
	}
	g.prepareRound()
	return g, nil
}

// Round returns the current round, starting at 1.
func (g *Game) Round() int { return g.round }

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player { return g.players[g.cursor] }

// Players returns the players in turn order.
func (g *Game) Players() []*Player {
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// GetPlayer returns the player with the given name, or nil.
func (g *Game) GetPlayer(name string) *Player {
	for _, p := range g.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (g *Game) Field() *Field   { return g.field }
func (g *Game) Rules() Rules    { return g.config.Rules }
func (g *Game) Ended() bool     { return g.ended }
func (g *Game) DeckLen() int    { return g.deck.Len() }
func (g *Game) Gold() *GoldHeap { return g.gold }

// DrainEvents returns and clears the events emitted since the last call.
func (g *Game) DrainEvents() []Event {
	out := g.events
	g.events = nil
	return out
}

func (g *Game) emit(ev Event) {
	g.events = append(g.events, ev)
}

// ExecuteTurn plays action for the current player.
//
// The card is taken from the hand and replaced from the deck before the
// move itself is checked, so a rejected move still costs the card. The
// turn passes only when the move is accepted.
func (g *Game) ExecuteTurn(action TurnAction) TurnResult {
	if g.ended {
		return g.endResult()
	}
	if action == nil {
		return Unacceptable{Err: ErrInvalidAction}
	}

	p := g.CurrentPlayer()
	if card := action.Card(); card != nil {
		if !p.RemoveFromHand(card) {
			return Unacceptable{Err: fmt.Errorf("%w: %v", ErrCardNotInHand, card)}
		}
		g.emit(Event{Type: EventCardPlayed, Player: p.Name, Data: map[string]any{
			"kind": card.Kind().String(),
		}})
		g.refill(p)
	} else {
		if _, skip := action.(SkipAction); !skip || len(p.Hand) > 0 {
			return Unacceptable{Err: ErrCardNotInHand}
		}
		g.skipStreak++
	}

	var err error
	switch a := action.(type) {
	case SkipAction:
		return g.applySkip()
	case BuildAction:
		return g.applyBuild(p, a)
	case CollapseAction:
		err = g.field.Collapse(Point{X: a.X, Y: a.Y})
		if err == nil {
			g.emit(Event{Type: EventCollapsed, Player: p.Name, Data: Point{X: a.X, Y: a.Y}})
		}
	case InvestigateAction:
		err = g.applyInvestigate(p, a)
	case DebuffAction:
		err = g.applyDebuff(p, a)
	case HealAction:
		err = g.applyHeal(p, a.Target, a.Heal.Tool)
	case HealAlternativeAction:
		err = g.applyHealAlternative(p, a)
	default:
		err = ErrInvalidAction
	}
	if err != nil {
		return g.reject(p, err)
	}
	return g.advance()
}

func (g *Game) refill(p *Player) {
	if c, ok := g.deck.Pop(); ok {
		p.Hand = append(p.Hand, c)
		return
	}
	g.skipStreak++
}

func (g *Game) reject(p *Player, err error) TurnResult {
	g.emit(Event{Type: EventRejected, Player: p.Name, Private: true, Data: map[string]any{
		"reason": err.Error(),
	}})
	return Unacceptable{Err: err}
}

func (g *Game) advance() TurnResult {
	g.emit(Event{Type: EventTurnEnd, Player: g.CurrentPlayer().Name})
	g.cursor = (g.cursor + 1) % len(g.players)
	return NewTurn{Player: g.CurrentPlayer().Name}
}

// applySkip ends the round once every player has gone a full lap without
// drawing.
func (g *Game) applySkip() TurnResult {
	if g.skipStreak < len(g.players) {
		return g.advance()
	}
	g.payBad()
	return g.finishRound(false)
}

func (g *Game) applyBuild(p *Player, a BuildAction) TurnResult {
	if p.Broken() {
		return g.reject(p, ErrBrokenTools)
	}
	if a.Tunnel.Deadlock && g.config.Rules.WithoutDeadlocks {
		return g.reject(p, ErrDeadlockBanned)
	}
	outs, err := g.field.Orient(a.Near(), a.Direction, a.Tunnel)
	if err != nil {
		return g.reject(p, err)
	}

	cell := g.field.PutNewTunnel(a.Target(), outs, a.Tunnel.Deadlock)
	g.emit(Event{Type: EventTunnelBuilt, Player: p.Name, Data: map[string]any{
		"x":        cell.Pos.X,
		"y":        cell.Pos.Y,
		"outs":     outs.Strings(),
		"deadlock": cell.Deadlock,
	}})

	goldFound := false
	for _, v := range g.field.CheckFinishReached(cell) {
		if g.field.Connected(v) {
			continue
		}
		status := StatusFake
		if v == g.field.Gold() {
			status = StatusReal
			goldFound = true
		}
		for _, pl := range g.players {
			pl.Ends[v] = status
		}
		g.field.ConnectFinish(v)
		g.emit(Event{Type: EventEndRevealed, Player: p.Name, Data: map[string]any{
			"end":    v.String(),
			"status": status.String(),
		}})
	}

	if !goldFound {
		return g.advance()
	}
	g.payGood()
	return g.finishRound(true)
}

func (g *Game) applyInvestigate(p *Player, a InvestigateAction) error {
	if !a.End.valid() {
		return fmt.Errorf("%w: end %d", ErrInvalidTarget, a.End)
	}
	if p.Ends[a.End] != StatusUnknown {
		return fmt.Errorf("%w: %s", ErrAlreadyKnown, a.End)
	}
	status := StatusFake
	if a.End == g.field.Gold() {
		status = StatusReal
	}
	p.Ends[a.End] = status
	g.emit(Event{Type: EventInvestigated, Player: p.Name, Private: true, Data: map[string]any{
		"end":    a.End.String(),
		"status": status.String(),
	}})
	return nil
}

func (g *Game) applyDebuff(p *Player, a DebuffAction) error {
	target := g.GetPlayer(a.Target)
	if target == nil {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, a.Target)
	}
	if target.Debuffs.Has(a.Debuff.Tool) {
		return fmt.Errorf("%w: %s of %s", ErrAlreadyDebuffed, a.Debuff.Tool, target.Name)
	}
	target.Debuffs = target.Debuffs.With(a.Debuff.Tool)
	g.emit(Event{Type: EventDebuffed, Player: p.Name, Data: map[string]any{
		"target": target.Name,
		"tool":   a.Debuff.Tool.String(),
	}})
	return nil
}

func (g *Game) applyHeal(p *Player, name string, tool Tool) error {
	target := g.GetPlayer(name)
	if target == nil {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	if !target.Debuffs.Has(tool) {
		return fmt.Errorf("%w: %s of %s", ErrNotDebuffed, tool, target.Name)
	}
	target.Debuffs = target.Debuffs.Without(tool)
	g.emit(Event{Type: EventHealed, Player: p.Name, Data: map[string]any{
		"target": target.Name,
		"tool":   tool.String(),
	}})
	return nil
}

func (g *Game) applyHealAlternative(p *Player, a HealAlternativeAction) error {
	target := g.GetPlayer(a.Target)
	if target == nil {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, a.Target)
	}
	switch {
	case target.Debuffs.Has(a.Heal.First):
		return g.applyHeal(p, target.Name, a.Heal.First)
	case target.Debuffs.Has(a.Heal.Second):
		return g.applyHeal(p, target.Name, a.Heal.Second)
	}
	return fmt.Errorf("%w: neither %s nor %s of %s", ErrNotDebuffed, a.Heal.First, a.Heal.Second, target.Name)
}

// finishRound deals the next round or ends the game after the last one.
func (g *Game) finishRound(goldFound bool) TurnResult {
	g.emit(Event{Type: EventRoundEnd, Data: map[string]any{
		"round":      g.round,
		"gold_found": goldFound,
		"gold_end":   g.field.Gold().String(),
	}})
	if g.round >= Rounds {
		g.ended = true
		g.result = EndGame{Winners: g.winners()}
		g.emit(Event{Type: EventGameOver, Data: map[string]any{
			"winners": g.result.Winners,
		}})
		return g.endResult()
	}
	g.round++
	g.prepareRound()
	return NewRound{Round: g.round, Player: g.CurrentPlayer().Name}
}

func (g *Game) endResult() EndGame {
	winners := make([]string, len(g.result.Winners))
	copy(winners, g.result.Winners)
	return EndGame{Winners: winners}
}
