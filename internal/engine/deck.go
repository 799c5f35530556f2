package engine

// Deck is a stack of cards. The top of the deck is the last card generated.
type Deck struct {
	cards []Card
}

// GenerateDeck draws every catalog card in weighted random order.
func GenerateDeck(entries []Entry[Card], rng Rand) *Deck {
	s := newSampler(entries)
	d := &Deck{cards: make([]Card, 0, s.Len())}
	for s.Len() > 0 {
		d.cards = append(d.cards, s.Draw(rng))
	}
	return d
}

// Pop removes the top card.
func (d *Deck) Pop() (Card, bool) {
	if len(d.cards) == 0 {
		return nil, false
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, true
}

// Take removes up to n cards from the top, top card first.
func (d *Deck) Take(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, _ := d.Pop()
		out = append(out, c)
	}
	return out
}

// Len returns the number of cards remaining.
func (d *Deck) Len() int {
	return len(d.cards)
}
