package engine

// prepareRound deals roles, hands, a fresh deck and a fresh field. Gold and
// seating order are kept; the last seated player acts first.
func (g *Game) prepareRound() {
	roles := g.drawRoles()
	g.deck = GenerateDeck(g.config.Catalog.Deck, g.rng)

	n := handSize(len(g.players))
	for i, p := range g.players {
		p.resetRound(roles[i])
		p.Hand = g.deck.Take(n)
	}

	g.skipStreak = 0
	g.cursor = len(g.players) - 1
	g.field = NewField(EndVariants[g.rng.IntN(len(EndVariants))])

	g.emit(Event{Type: EventRoundStart, Data: map[string]any{
		"round": g.round,
		"first": g.CurrentPlayer().Name,
	}})
}

// drawRoles deals one role card per player from the split table, each draw
// weighted by the role cards left.
func (g *Game) drawRoles() []Role {
	split := roleSplit[len(g.players)]
	bads, goods := split[0], split[1]
	roles := make([]Role, len(g.players))
	for i := range roles {
		if g.rng.Float64() < float64(bads)/float64(bads+goods) {
			roles[i] = RoleBad
			bads--
		} else {
			roles[i] = RoleGood
			goods--
		}
	}
	return roles
}

// eligible reports whether p may take gold under the current rules.
func (g *Game) eligible(p *Player, role Role) bool {
	if p.Role != role {
		return false
	}
	return !(g.config.Rules.SkipLoosers && p.Broken())
}

// payGood hands out random nuggets one at a time to the good players,
// starting with the finder and going round the table.
func (g *Game) payGood() {
	var takers []*Player
	for i := range g.players {
		p := g.players[(g.cursor+i)%len(g.players)]
		if g.eligible(p, RoleGood) {
			takers = append(takers, p)
		}
	}
	if len(takers) == 0 {
		return
	}
	for i := 0; i < goodPayouts(len(g.players)) && g.gold.Len() > 0; i++ {
		p := takers[i%len(takers)]
		v := g.gold.Draw(g.rng)
		p.Gold += v
		g.emit(Event{Type: EventGoldPaid, Player: p.Name, Data: map[string]any{"gold": v}})
	}
}

// payBad gives every saboteur its share, taken greedily from the heap.
func (g *Game) payBad() {
	bads := 0
	for _, p := range g.players {
		if p.Role == RoleBad {
			bads++
		}
	}
	share := badShare(bads)
	for _, p := range g.players {
		if !g.eligible(p, RoleBad) {
			continue
		}
		v := g.gold.PopWhile(share)
		p.Gold += v
		g.emit(Event{Type: EventGoldPaid, Player: p.Name, Data: map[string]any{"gold": v}})
	}
}

// winners returns every player tied for the most gold, in seating order.
func (g *Game) winners() []string {
	best := 0
	for _, p := range g.players {
		best = max(best, p.Gold)
	}
	var out []string
	for _, p := range g.players {
		if p.Gold == best {
			out = append(out, p.Name)
		}
	}
	return out
}
