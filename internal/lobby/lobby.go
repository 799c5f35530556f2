package lobby

import (
	"saboteur/internal/engine"
)

// Key identifies one kind of table players can queue for.
type Key struct {
	PartySize int
	Rules     engine.Rules
}

// SearchParams narrows the tables a player accepts. Nil fields match any.
type SearchParams struct {
	PartySize        *int
	WithoutDeadlocks *bool
	SkipLoosers      *bool
}

// Keys enumerates every table kind the params match, smallest first.
func (sp SearchParams) Keys() []Key {
	var keys []Key
	for size := engine.MinPlayers; size <= engine.MaxPlayers; size++ {
		if sp.PartySize != nil && *sp.PartySize != size {
			continue
		}
		for _, wd := range []bool{false, true} {
			if sp.WithoutDeadlocks != nil && *sp.WithoutDeadlocks != wd {
				continue
			}
			for _, sl := range []bool{false, true} {
				if sp.SkipLoosers != nil && *sp.SkipLoosers != sl {
					continue
				}
				keys = append(keys, Key{PartySize: size, Rules: engine.Rules{WithoutDeadlocks: wd, SkipLoosers: sl}})
			}
		}
	}
	return keys
}

// Ticket is one player waiting in the pool.
type Ticket struct {
	ID    string
	Name  string
	Party string
	Ready bool
}

// Party is a full set of tickets that matched the same table kind.
type Party struct {
	ID      string
	Key     Key
	Tickets []*Ticket
	Table   string // set once a game runs for this party
}

// Names returns the player names in seating order.
func (p *Party) Names() []string {
	out := make([]string, len(p.Tickets))
	for i, t := range p.Tickets {
		out[i] = t.Name
	}
	return out
}

// CanStart returns true if every member confirmed.
func (p *Party) CanStart() bool {
	for _, t := range p.Tickets {
		if !t.Ready {
			return false
		}
	}
	return true
}

func (p *Party) snapshot() PartyInfo {
	info := PartyInfo{ID: p.ID, Key: p.Key, Table: p.Table, Players: p.Names()}
	for _, t := range p.Tickets {
		info.Tickets = append(info.Tickets, t.ID)
		info.Ready = append(info.Ready, t.Ready)
	}
	return info
}

// PartyInfo is a copy of a party's state safe to hand out.
type PartyInfo struct {
	ID      string
	Key     Key
	Players []string
	Tickets []string
	Ready   []bool
	Table   string
}

// AllReady reports whether every member confirmed.
func (pi PartyInfo) AllReady() bool {
	for _, r := range pi.Ready {
		if !r {
			return false
		}
	}
	return len(pi.Ready) > 0
}
