package replay_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"saboteur/internal/engine"
	"saboteur/internal/protocol"
	"saboteur/internal/replay"
)

// playSkips discards the first card of each hand for n turns and records
// every turn.
func playSkips(t *testing.T, store replay.Store, rec replay.Record, n int) *engine.Game {
	t.Helper()
	ctx := context.Background()
	g, err := engine.NewGame(rec.Players, engine.GameConfig{Rules: rec.Rules}, engine.NewRand(rec.Seed))
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for range n {
		if g.Ended() {
			break
		}
		p := g.CurrentPlayer()
		msg := protocol.ActionMsg{Kind: protocol.ActionSkip}
		if len(p.Hand) > 0 {
			cv := engine.ViewOfCard(p.Hand[0])
			msg.Card = &cv
		}
		action, err := msg.ToAction()
		if err != nil {
			t.Fatalf("ToAction: %v", err)
		}
		g.ExecuteTurn(action)
		if err := store.Append(ctx, rec.TableID, replay.Turn{Player: p.Name, Action: msg}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return g
}

func TestReplayRebuildsGame(t *testing.T) {
	store := replay.NewMemoryStore()
	rec := replay.Record{TableID: "t1", Seed: 77, Players: []string{"ann", "bob", "cid", "dan"}}
	live := playSkips(t, store, rec, 25)

	loaded, err := store.Load(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Turns) != 25 {
		t.Fatalf("expected 25 turns, got %d", len(loaded.Turns))
	}

	replayed, err := replay.Replay(loaded, engine.DefaultCatalog())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	for _, p := range live.Players() {
		if want, got := live.ViewFor(p.Name), replayed.ViewFor(p.Name); !reflect.DeepEqual(want, got) {
			t.Errorf("view of %s differs:\nlive   %+v\nreplay %+v", p.Name, want, got)
		}
	}
}

func TestReplayDetectsDivergence(t *testing.T) {
	store := replay.NewMemoryStore()
	rec := replay.Record{TableID: "t2", Seed: 5, Players: []string{"ann", "bob", "cid"}}
	playSkips(t, store, rec, 3)

	loaded, _ := store.Load(context.Background(), "t2")
	// Hand the second turn to someone who is not up.
	for _, name := range rec.Players {
		if name != loaded.Turns[1].Player {
			loaded.Turns[1].Player = name
			break
		}
	}
	if _, err := replay.Replay(loaded, engine.DefaultCatalog()); !errors.Is(err, replay.ErrDiverged) {
		t.Errorf("expected ErrDiverged, got %v", err)
	}
}

func TestMemoryStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := replay.NewMemoryStore()
	if _, err := store.Load(ctx, "nope"); !errors.Is(err, replay.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Append(ctx, "nope", replay.Turn{}); !errors.Is(err, replay.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	rec := replay.Record{TableID: "t", Players: []string{"a", "b", "c"}}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, rec); !errors.Is(err, replay.ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}

	loaded, _ := store.Load(ctx, "t")
	loaded.Players[0] = "zed"
	again, _ := store.Load(ctx, "t")
	if again.Players[0] != "a" {
		t.Error("Load must return a copy")
	}
}
