package lobby

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allKeys = SearchParams{}.Keys()

var (
	ErrEmptyName     = errors.New("empty name")
	ErrNameTaken     = errors.New("name already in the pool")
	ErrNoMatch       = errors.New("search matches no table")
	ErrUnknownTicket = errors.New("unknown ticket")
	ErrNoParty       = errors.New("ticket has no party yet")
	ErrUnknownParty  = errors.New("unknown party")
)

// Pool matches searching players into parties.
type Pool struct {
	mu      sync.Mutex
	queues  map[Key][]*Ticket
	tickets map[string]*Ticket
	search  map[string]SearchParams
	parties map[string]*Party
	logger  *zap.Logger
}

func NewPool(logger *zap.Logger) *Pool {
	return &Pool{
		queues:  make(map[Key][]*Ticket),
		tickets: make(map[string]*Ticket),
		search:  make(map[string]SearchParams),
		parties: make(map[string]*Party),
		logger:  logger.Named("pool"),
	}
}

// Add enqueues name for every table kind params match and returns the
// ticket ID. A party forms as soon as one queue is long enough.
func (p *Pool) Add(name string, params SearchParams) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	keys := params.Keys()
	if len(keys) == 0 {
		return "", ErrNoMatch
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.tickets {
		if t.Name == name {
			return "", fmt.Errorf("%w: %q", ErrNameTaken, name)
		}
	}

	t := &Ticket{ID: uuid.NewString(), Name: name}
	p.tickets[t.ID] = t
	p.search[t.ID] = params
	for _, k := range keys {
		p.queues[k] = append(p.queues[k], t)
	}
	p.logger.Debug("ticket added", zap.String("ticket", t.ID), zap.String("name", name), zap.Int("keys", len(keys)))

	p.match()
	return t.ID, nil
}

// match forms parties from every full queue, smallest tables first.
func (p *Pool) match() {
	for _, k := range allKeys {
		for len(p.queues[k]) >= k.PartySize {
			p.formParty(k)
		}
	}
}

func (p *Pool) formParty(k Key) {
	members := slices.Clone(p.queues[k][:k.PartySize])
	party := &Party{ID: uuid.NewString(), Key: k, Tickets: members}
	p.parties[party.ID] = party
	for _, t := range members {
		t.Party = party.ID
		p.dequeue(t)
	}
	p.logger.Info("party formed",
		zap.String("party", party.ID),
		zap.Int("size", k.PartySize),
		zap.Bool("without_deadlocks", k.Rules.WithoutDeadlocks),
		zap.Bool("skip_loosers", k.Rules.SkipLoosers),
		zap.Strings("players", party.Names()),
	)
}

// dequeue drops t from every queue.
func (p *Pool) dequeue(t *Ticket) {
	for k, q := range p.queues {
		q = slices.DeleteFunc(q, func(x *Ticket) bool { return x == t })
		if len(q) == 0 {
			delete(p.queues, k)
		} else {
			p.queues[k] = q
		}
	}
}

// Remove takes a ticket out of the pool. Leaving a party that has not
// started breaks it up and puts the other members back in the queues.
func (p *Pool) Remove(ticketID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.tickets[ticketID]
	if !ok {
		return ErrUnknownTicket
	}
	delete(p.tickets, ticketID)
	delete(p.search, ticketID)
	p.dequeue(t)

	if party, ok := p.parties[t.Party]; ok && party.Table == "" {
		delete(p.parties, party.ID)
		for _, other := range party.Tickets {
			if other == t {
				continue
			}
			other.Party = ""
			other.Ready = false
			for _, k := range p.search[other.ID].Keys() {
				p.queues[k] = append(p.queues[k], other)
			}
		}
		p.logger.Info("party dissolved", zap.String("party", party.ID), zap.String("leaver", t.Name))
		p.match()
	}
	return nil
}

// Status returns the ticket and, once matched, its party.
func (p *Pool) Status(ticketID string) (Ticket, *PartyInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.tickets[ticketID]
	if !ok {
		return Ticket{}, nil, ErrUnknownTicket
	}
	party, ok := p.parties[t.Party]
	if !ok {
		return *t, nil, nil
	}
	info := party.snapshot()
	return *t, &info, nil
}

// SetReady confirms a matched ticket and returns its party.
func (p *Pool) SetReady(ticketID string) (PartyInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.tickets[ticketID]
	if !ok {
		return PartyInfo{}, ErrUnknownTicket
	}
	party, ok := p.parties[t.Party]
	if !ok {
		return PartyInfo{}, ErrNoParty
	}
	t.Ready = true
	return party.snapshot(), nil
}

// Start records the table a ready party plays at. It reports false if the
// party was already started or is not ready.
func (p *Pool) Start(partyID, tableID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	party, ok := p.parties[partyID]
	if !ok {
		return false, ErrUnknownParty
	}
	if party.Table != "" || !party.CanStart() {
		return false, nil
	}
	party.Table = tableID
	return true, nil
}

// Abort clears the table of a party whose game failed to start, so a
// later confirm can try again.
func (p *Pool) Abort(partyID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if party, ok := p.parties[partyID]; ok {
		party.Table = ""
	}
}

// Finish forgets a party and its tickets once its table closed.
func (p *Pool) Finish(partyID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	party, ok := p.parties[partyID]
	if !ok {
		return
	}
	for _, t := range party.Tickets {
		delete(p.tickets, t.ID)
		delete(p.search, t.ID)
	}
	delete(p.parties, partyID)
}

// Waiting returns how many tickets sit in the queue for k.
func (p *Pool) Waiting(k Key) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queues[k])
}
