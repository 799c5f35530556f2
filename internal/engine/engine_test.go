package engine_test

import (
	"errors"
	"fmt"
	"testing"

	"saboteur/internal/engine"
)

func playerNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("p%d", i+1)
	}
	return names
}

func newTestGame(t *testing.T, n int, seed uint64) *engine.Game {
	t.Helper()
	g, err := engine.NewGame(playerNames(n), engine.GameConfig{}, engine.NewRand(seed))
	if err != nil {
		t.Fatalf("NewGame(%d): %v", n, err)
	}
	return g
}

func TestNewGamePlayerCount(t *testing.T) {
	for n := 0; n <= 12; n++ {
		_, err := engine.NewGame(playerNames(n), engine.DefaultConfig(), engine.NewRand(1))
		valid := n >= engine.MinPlayers && n <= engine.MaxPlayers
		if valid && err != nil {
			t.Errorf("%d players: unexpected error %v", n, err)
		}
		if !valid && !errors.Is(err, engine.ErrPlayerCount) {
			t.Errorf("%d players: expected ErrPlayerCount, got %v", n, err)
		}
	}
}

func TestNewGameRejectsBadNames(t *testing.T) {
	_, err := engine.NewGame([]string{"a", "b", "a"}, engine.DefaultConfig(), nil)
	if !errors.Is(err, engine.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	_, err = engine.NewGame([]string{"a", "", "c"}, engine.DefaultConfig(), nil)
	if !errors.Is(err, engine.ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestNewGameThreePlayers(t *testing.T) {
	g := newTestGame(t, 3, 42)
	if g.CurrentPlayer().Name != "p3" {
		t.Errorf("expected p3 to act first, got %s", g.CurrentPlayer().Name)
	}
	if g.Round() != 1 {
		t.Errorf("expected round 1, got %d", g.Round())
	}
	for _, p := range g.Players() {
		if len(p.Hand) != 6 {
			t.Errorf("player %s should have 6 cards, got %d", p.Name, len(p.Hand))
		}
		if p.Gold != 0 {
			t.Errorf("player %s should start with 0 gold, got %d", p.Name, p.Gold)
		}
	}
	if g.DeckLen() != 49 {
		t.Errorf("expected 49 cards in deck, got %d", g.DeckLen())
	}
}

func TestHandSizeAndRoles(t *testing.T) {
	tests := []struct {
		n    int
		hand int
		bads int
	}{
		{3, 6, 1},
		{4, 6, 1},
		{5, 6, 2},
		{6, 5, 2},
		{7, 5, 3},
		{8, 4, 3},
		{9, 4, 3},
		{10, 4, 4},
	}
	for _, tt := range tests {
		for seed := uint64(0); seed < 20; seed++ {
			g := newTestGame(t, tt.n, seed)
			bads := 0
			for _, p := range g.Players() {
				if len(p.Hand) != tt.hand {
					t.Fatalf("%d players: expected hand of %d, got %d", tt.n, tt.hand, len(p.Hand))
				}
				if p.Role == engine.RoleBad {
					bads++
				}
			}
			// one role card is left undealt
			if bads != tt.bads && bads != tt.bads-1 {
				t.Errorf("%d players seed %d: %d saboteurs, want %d or %d", tt.n, seed, bads, tt.bads-1, tt.bads)
			}
			if want := 67 - tt.n*tt.hand; g.DeckLen() != want {
				t.Errorf("%d players: expected %d cards in deck, got %d", tt.n, want, g.DeckLen())
			}
		}
	}
}

func TestDeckDistribution(t *testing.T) {
	deck := engine.GenerateDeck(engine.DefaultCatalog().Deck, engine.NewRand(7))
	if deck.Len() != 67 {
		t.Fatalf("expected 67 cards, got %d", deck.Len())
	}
	counts := map[engine.CardKind]int{}
	deadlocks := 0
	for _, c := range deck.Take(67) {
		counts[c.Kind()]++
		if tc, ok := c.(engine.TunnelCard); ok && tc.Deadlock {
			deadlocks++
		}
	}
	want := map[engine.CardKind]int{
		engine.KindTunnel:          40,
		engine.KindInvestigate:     6,
		engine.KindCollapse:        3,
		engine.KindHeal:            6,
		engine.KindHealAlternative: 3,
		engine.KindDebuff:          9,
	}
	for k, n := range want {
		if counts[k] != n {
			t.Errorf("expected %d %s cards, got %d", n, k, counts[k])
		}
	}
	if deadlocks != 9 {
		t.Errorf("expected 9 deadlock tiles, got %d", deadlocks)
	}
	if deck.Len() != 0 {
		t.Errorf("deck should be empty after taking all, got %d", deck.Len())
	}
}

func TestDeckDeterministic(t *testing.T) {
	a := engine.GenerateDeck(engine.DefaultCatalog().Deck, engine.NewRand(99)).Take(67)
	b := engine.GenerateDeck(engine.DefaultCatalog().Deck, engine.NewRand(99)).Take(67)
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("card %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestGameDeterministic(t *testing.T) {
	a := newTestGame(t, 5, 1234)
	b := newTestGame(t, 5, 1234)
	if a.Field().Gold() != b.Field().Gold() {
		t.Errorf("gold end differs: %s vs %s", a.Field().Gold(), b.Field().Gold())
	}
	pa, pb := a.Players(), b.Players()
	for i := range pa {
		if pa[i].Role != pb[i].Role {
			t.Errorf("role of %s differs", pa[i].Name)
		}
		for j := range pa[i].Hand {
			if !pa[i].Hand[j].Equal(pb[i].Hand[j]) {
				t.Errorf("hand of %s differs at %d", pa[i].Name, j)
			}
		}
	}
}

func TestGoldHeapStart(t *testing.T) {
	h := engine.NewGoldHeap(engine.DefaultCatalog().Gold)
	if h.Len() != 28 || h.Value() != 44 {
		t.Fatalf("expected 28 nuggets worth 44, got %d worth %d", h.Len(), h.Value())
	}
	if h.Count(1) != 16 || h.Count(2) != 8 || h.Count(3) != 4 {
		t.Errorf("unexpected denominations: %d/%d/%d", h.Count(1), h.Count(2), h.Count(3))
	}

	rng := engine.NewRand(5)
	paid := 0
	for i := 0; i < 20; i++ {
		paid += h.Draw(rng)
		if got := h.Count(1) + 2*h.Count(2) + 3*h.Count(3); got != 44-paid {
			t.Fatalf("after %d draws heap holds %d, want %d", i+1, got, 44-paid)
		}
	}
	if h.Len() != 8 {
		t.Errorf("expected 8 nuggets left, got %d", h.Len())
	}
}

func TestGoldHeapDrawEmpty(t *testing.T) {
	h := engine.NewGoldHeap(nil)
	if v := h.Draw(engine.NewRand(1)); v != 0 {
		t.Errorf("empty heap should yield 0, got %d", v)
	}
}

func TestPopWhile(t *testing.T) {
	h := engine.NewGoldHeap(engine.DefaultCatalog().Gold)
	if got := h.PopWhile(4); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
	if h.Count(1) != 12 {
		t.Errorf("expected four 1s taken, %d left", h.Count(1))
	}

	// greedy walk in heap order can fall short
	h = engine.NewGoldHeap([]engine.Entry[int]{{Value: 2, Count: 2}, {Value: 3, Count: 1}})
	if got := h.PopWhile(3); got != 2 {
		t.Errorf("expected greedy undershoot of 2, got %d", got)
	}
	pieces := h.Pieces()
	if len(pieces) != 2 || pieces[0] != 2 || pieces[1] != 3 {
		t.Errorf("unexpected heap after pop: %v", pieces)
	}
}

func TestCardEquality(t *testing.T) {
	a, _ := engine.NewTunnelCard(false, engine.Up, engine.Left)
	b, _ := engine.NewTunnelCard(false, engine.Left, engine.Up)
	if !a.Equal(b) {
		t.Error("tunnels with the same connectors should be equal")
	}
	d, _ := engine.NewTunnelCard(true, engine.Up, engine.Left)
	if a.Equal(d) {
		t.Error("deadlock flag should matter")
	}
	if _, err := engine.NewTunnelCard(false); !errors.Is(err, engine.ErrNoConnectors) {
		t.Errorf("expected ErrNoConnectors, got %v", err)
	}

	x, _ := engine.NewHealAlternativeCard(engine.Pick, engine.Lamp)
	y, _ := engine.NewHealAlternativeCard(engine.Lamp, engine.Pick)
	if !x.Equal(y) {
		t.Error("alternative heal should ignore tool order")
	}
	if _, err := engine.NewHealAlternativeCard(engine.Pick, engine.Pick); !errors.Is(err, engine.ErrSameTools) {
		t.Errorf("expected ErrSameTools, got %v", err)
	}

	if (engine.HealCard{Tool: engine.Pick}).Equal(engine.DebuffCard{Tool: engine.Pick}) {
		t.Error("heal and debuff must differ")
	}
	if !(engine.CollapseCard{}).Equal(engine.CollapseCard{}) {
		t.Error("collapse cards should be equal")
	}
	if (engine.InvestigateCard{}).Equal(nil) {
		t.Error("nil is not a card")
	}
}

func TestCardViewConversion(t *testing.T) {
	for _, e := range engine.DefaultCatalog().Deck {
		got, err := engine.ViewOfCard(e.Value).Card()
		if err != nil {
			t.Fatalf("%v: %v", e.Value, err)
		}
		if !got.Equal(e.Value) {
			t.Errorf("converted %v back to %v", e.Value, got)
		}
	}
	if _, err := (engine.CardView{Kind: "heal", Tool: "hammer"}).Card(); !errors.Is(err, engine.ErrUnknownName) {
		t.Errorf("expected ErrUnknownName, got %v", err)
	}
}

func TestParseCatalog(t *testing.T) {
	cat := engine.DefaultCatalog()
	if cat.Size() != 67 {
		t.Errorf("expected 67 cards, got %d", cat.Size())
	}
	if len(cat.Deck) != 27 {
		t.Errorf("expected 27 distinct entries, got %d", len(cat.Deck))
	}

	bad := []string{
		"tunnels: [{outs: [sideways], count: 1}]",
		"heal_alternative: [{tools: [pick], count: 1}]",
		"heal_alternative: [{tools: [pick, pick], count: 1}]",
		"gold: [{value: 0, count: 3}]\ninvestigate: 1",
		"collapse: 0",
		"tunnels: {",
	}
	for _, doc := range bad {
		if _, err := engine.ParseCatalog([]byte(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}

	small, err := engine.ParseCatalog([]byte("investigate: 10\ncollapse: 10\ngold: [{value: 1, count: 3}]"))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if small.Size() != 20 {
		t.Errorf("expected 20 cards, got %d", small.Size())
	}
	_, err = engine.NewGame(playerNames(4), engine.GameConfig{Catalog: small}, engine.NewRand(1))
	if !errors.Is(err, engine.ErrBadCatalog) {
		t.Errorf("expected ErrBadCatalog for a deck too small to deal, got %v", err)
	}
}

func TestDirections(t *testing.T) {
	for _, d := range engine.Directions {
		if d.Flip().Flip() != d {
			t.Errorf("double flip of %s", d)
		}
		dx, dy := d.Delta()
		fx, fy := d.Flip().Delta()
		if dx+fx != 0 || dy+fy != 0 {
			t.Errorf("%s and its flip should cancel out", d)
		}
	}
	s := engine.NewDirectionSet(engine.Up, engine.Right)
	if f := s.Flip(); !f.Has(engine.Down) || !f.Has(engine.Left) || f.Len() != 2 {
		t.Errorf("unexpected flip %s", f)
	}
	if _, err := engine.ParseDirection("north"); !errors.Is(err, engine.ErrUnknownName) {
		t.Errorf("expected ErrUnknownName, got %v", err)
	}
}
