package replay

import (
	"context"
	"errors"
	"fmt"

	"saboteur/internal/engine"
	"saboteur/internal/protocol"
)

var (
	ErrNotFound = errors.New("replay not found")
	ErrExists   = errors.New("replay already exists")
	ErrDiverged = errors.New("replay diverged")
)

// Turn is one action handed to the engine, accepted or not.
type Turn struct {
	Player string             `json:"player"`
	Action protocol.ActionMsg `json:"action"`
}

// Record holds everything needed to rebuild a game.
type Record struct {
	TableID string       `json:"table_id"`
	Seed    uint64       `json:"seed"`
	Rules   engine.Rules `json:"rules"`
	Players []string     `json:"players"`
	Turns   []Turn       `json:"turns"`
}

// Store persists game records.
type Store interface {
	Create(ctx context.Context, rec Record) error
	Append(ctx context.Context, tableID string, turn Turn) error
	Load(ctx context.Context, tableID string) (Record, error)
}

// Replay rebuilds the game described by rec. The catalog must be the one
// the table was started with.
func Replay(rec Record, catalog engine.Catalog) (*engine.Game, error) {
	g, err := engine.NewGame(rec.Players, engine.GameConfig{Rules: rec.Rules, Catalog: catalog}, engine.NewRand(rec.Seed))
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", rec.TableID, err)
	}
	for i, turn := range rec.Turns {
		if g.Ended() {
			return nil, fmt.Errorf("%w: turn %d after the game ended", ErrDiverged, i)
		}
		if cur := g.CurrentPlayer().Name; cur != turn.Player {
			return nil, fmt.Errorf("%w: turn %d by %q, expected %q", ErrDiverged, i, turn.Player, cur)
		}
		action, err := turn.Action.ToAction()
		if err != nil {
			return nil, fmt.Errorf("replay turn %d: %w", i, err)
		}
		g.ExecuteTurn(action)
		g.DrainEvents()
	}
	return g, nil
}
