package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"saboteur/internal/engine"
	"saboteur/internal/protocol"
	"saboteur/internal/replay"
)

var (
	ErrNotYourTurn  = errors.New("not your turn")
	ErrSpectator    = errors.New("spectators cannot act")
	ErrGameFinished = errors.New("game is over")
)

const storeTimeout = 5 * time.Second

// Hub manages WebSocket connections and game state for one table.
type Hub struct {
	mu         sync.Mutex
	gameMu     sync.Mutex
	tableID    string
	game       *engine.Game
	store      replay.Store
	logger     *zap.Logger
	onEnd      func()
	ended      bool
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	quit       chan struct{}
	stopOnce   sync.Once
}

// TableConfig describes the game a hub runs.
type TableConfig struct {
	ID      string
	Players []string
	Rules   engine.Rules
	Catalog engine.Catalog
	Seed    uint64
}

// NewHub starts a game and opens its replay record. onEnd runs once when
// the game is over.
func NewHub(ctx context.Context, cfg TableConfig, store replay.Store, logger *zap.Logger, onEnd func()) (*Hub, error) {
	game, err := engine.NewGame(cfg.Players, engine.GameConfig{Rules: cfg.Rules, Catalog: cfg.Catalog}, engine.NewRand(cfg.Seed))
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", cfg.ID, err)
	}
	rec := replay.Record{TableID: cfg.ID, Seed: cfg.Seed, Rules: cfg.Rules, Players: cfg.Players}
	if err := store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("table %s: %w", cfg.ID, err)
	}
	game.DrainEvents()

	return &Hub{
		tableID:    cfg.ID,
		game:       game,
		store:      store,
		logger:     logger.Named("hub").With(zap.String("table", cfg.ID)),
		onEnd:      onEnd,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan IncomingMessage, 256),
		quit:       make(chan struct{}),
	}, nil
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client joined", zap.String("player", client.Player))
			h.sendStateToClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.incoming:
			h.handleMessage(msg)

		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// removeClient forgets client and closes its send channel. Nothing is
// sent to a client once it is removed.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// Stop ends the Run loop and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Join hands a connection to the Run loop.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// PublicView returns the table as everyone sees it.
func (h *Hub) PublicView() engine.PublicViewData {
	h.gameMu.Lock()
	defer h.gameMu.Unlock()
	return h.game.PublicView()
}

// Seated reports whether name plays at this table.
func (h *Hub) Seated(name string) bool {
	h.gameMu.Lock()
	defer h.gameMu.Unlock()
	return h.game.GetPlayer(name) != nil
}

func (h *Hub) handleMessage(msg IncomingMessage) {
	if msg.Envelope.Type != protocol.MsgAction {
		h.sendError(msg.Client, fmt.Sprintf("unknown message type %q", msg.Envelope.Type))
		return
	}
	if msg.Client.Spectator() {
		h.sendError(msg.Client, ErrSpectator.Error())
		return
	}

	var am protocol.ActionMsg
	if err := msg.Envelope.Decode(&am); err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	action, err := am.ToAction()
	if err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}

	res, events, err := h.play(msg.Client.Player, action)
	if err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	if err := h.store.Append(ctx, h.tableID, replay.Turn{Player: msg.Client.Player, Action: am}); err != nil {
		h.logger.Error("replay append failed", zap.Error(err))
	}
	cancel()

	h.logger.Debug("turn played",
		zap.String("player", msg.Client.Player),
		zap.String("kind", am.Kind),
		zap.String("outcome", res.Outcome().String()),
	)

	h.broadcastEvents(events)
	h.broadcastAll(protocol.MustEnvelope(protocol.MsgTurnResult, protocol.NewTurnResultMsg(msg.Client.Player, res)))
	h.broadcastState()

	if end, ok := res.(engine.EndGame); ok && !h.ended {
		h.ended = true
		h.logger.Info("game over", zap.Strings("winners", end.Winners))
		if h.onEnd != nil {
			h.onEnd()
		}
	}
}

// play runs one turn for player under the game lock.
func (h *Hub) play(player string, action engine.TurnAction) (engine.TurnResult, []engine.Event, error) {
	h.gameMu.Lock()
	defer h.gameMu.Unlock()

	if h.game.Ended() {
		return nil, nil, ErrGameFinished
	}
	if h.game.CurrentPlayer().Name != player {
		return nil, nil, ErrNotYourTurn
	}
	res := h.game.ExecuteTurn(action)
	return res, h.game.DrainEvents(), nil
}

// broadcastEvents sends public events to everyone and private ones only
// to their player.
func (h *Hub) broadcastEvents(events []engine.Event) {
	for _, ev := range events {
		env := protocol.MustEnvelope(protocol.MsgEvent, ev)
		if !ev.Private {
			h.broadcastAll(env)
			continue
		}
		h.mu.Lock()
		for client := range h.clients {
			if client.Player == ev.Player {
				client.SendEnvelope(env)
			}
		}
		h.mu.Unlock()
	}
}

func (h *Hub) broadcastState() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.sendStateToClient(client)
	}
}

func (h *Hub) sendStateToClient(client *Client) {
	h.gameMu.Lock()
	var env protocol.Envelope
	if client.Spectator() {
		env = protocol.MustEnvelope(protocol.MsgGameState, h.game.PublicView())
	} else {
		env = protocol.MustEnvelope(protocol.MsgPlayerState, h.game.ViewFor(client.Player))
	}
	h.gameMu.Unlock()
	client.SendEnvelope(env)
}

func (h *Hub) broadcastAll(env protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("broadcast marshal error", zap.Error(err))
		return
	}
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client buffer full", zap.String("player", client.Player))
		}
	}
}

// sendError answers client alone, if it is still connected.
func (h *Hub) sendError(client *Client, message string) {
	env := protocol.MustEnvelope(protocol.MsgError, protocol.ErrorMsg{Message: message})
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client] {
		client.SendEnvelope(env)
	}
}
