package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"saboteur/internal/lobby"
	"saboteur/internal/protocol"
	qr "saboteur/internal/qrcode"
	"saboteur/internal/replay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, protocol.ErrorMsg{Message: err.Error()})
}

// handleSearch puts a player in the pool.
func (s *Server) handleSearch(c *gin.Context) {
	var req protocol.SearchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
	}
	ticket, err := s.pool.Add(c.Param("id"), lobby.SearchParams{
		PartySize:        req.PartySize,
		WithoutDeadlocks: req.WithoutDeadlocks,
		SkipLoosers:      req.SkipLoosers,
	})
	switch {
	case errors.Is(err, lobby.ErrNameTaken):
		errorJSON(c, http.StatusConflict, err)
		return
	case err != nil:
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	s.respondStatus(c, ticket, http.StatusCreated)
}

func (s *Server) handleCancel(c *gin.Context) {
	if err := s.pool.Remove(c.Param("id")); err != nil {
		errorJSON(c, http.StatusNotFound, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStatus(c *gin.Context) {
	s.respondStatus(c, c.Param("id"), http.StatusOK)
}

// respondStatus writes the ticket state. A ticket still waiting for a
// party answers 202.
func (s *Server) respondStatus(c *gin.Context, ticket string, status int) {
	t, party, err := s.pool.Status(ticket)
	if err != nil {
		errorJSON(c, http.StatusNotFound, err)
		return
	}
	out := protocol.SearchStatus{Ticket: t.ID, Ready: t.Ready}
	if party == nil {
		if status == http.StatusOK {
			status = http.StatusAccepted
		}
		c.JSON(status, out)
		return
	}
	out.Party = party.ID
	out.Players = party.Players
	out.Table = party.Table
	c.JSON(status, out)
}

// handleConfirm marks the ticket ready and starts the table once the
// whole party confirmed.
func (s *Server) handleConfirm(c *gin.Context) {
	ticket := c.Param("id")
	info, err := s.pool.SetReady(ticket)
	switch {
	case errors.Is(err, lobby.ErrNoParty):
		errorJSON(c, http.StatusConflict, err)
		return
	case err != nil:
		errorJSON(c, http.StatusNotFound, err)
		return
	}
	if info.AllReady() {
		if err := s.startTable(c.Request.Context(), info); err != nil {
			s.logger.Error("start table failed", zap.String("party", info.ID), zap.Error(err))
			errorJSON(c, http.StatusInternalServerError, err)
			return
		}
	}
	s.respondStatus(c, ticket, http.StatusOK)
}

func (s *Server) handleTable(c *gin.Context) {
	hub, ok := s.hub(c.Param("table"))
	if !ok {
		errorJSON(c, http.StatusNotFound, errTableNotFound)
		return
	}
	c.JSON(http.StatusOK, hub.PublicView())
}

func (s *Server) handleReplay(c *gin.Context) {
	rec, err := s.store.Load(c.Request.Context(), c.Param("table"))
	switch {
	case errors.Is(err, replay.ErrNotFound):
		errorJSON(c, http.StatusNotFound, err)
		return
	case err != nil:
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// handleQR serves a QR code PNG for watching the table.
func (s *Server) handleQR(c *gin.Context) {
	tableID := c.Param("table")
	if _, ok := s.hub(tableID); !ok {
		errorJSON(c, http.StatusNotFound, errTableNotFound)
		return
	}
	base := s.publicURL
	if base == "" {
		base = "http://" + c.Request.Host
	}
	png, err := qr.JoinCode(base, tableID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// handleWS connects a player, identified by ticket, or a spectator.
func (s *Server) handleWS(c *gin.Context) {
	tableID := c.Query("table")
	ticket := c.Query("ticket")
	if tableID == "" {
		errorJSON(c, http.StatusBadRequest, errMissingTable)
		return
	}
	hub, ok := s.hub(tableID)
	if !ok {
		errorJSON(c, http.StatusNotFound, errTableNotFound)
		return
	}

	var player string
	if ticket != "" {
		t, party, err := s.pool.Status(ticket)
		if err != nil || party == nil || party.Table != tableID || !hub.Seated(t.Name) {
			errorJSON(c, http.StatusForbidden, errNotSeated)
			return
		}
		player = t.Name
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("ws upgrade error", zap.Error(err))
		return
	}

	client := NewClient(hub, conn, player)
	if !hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// startTable seats a ready party at a new table.
func (s *Server) startTable(ctx context.Context, info lobby.PartyInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tableID := uuid.NewString()
	started, err := s.pool.Start(info.ID, tableID)
	if err != nil || !started {
		return err
	}

	seed, err := s.seed()
	if err != nil {
		s.pool.Abort(info.ID)
		return err
	}
	hub, err := NewHub(ctx, TableConfig{
		ID:      tableID,
		Players: info.Players,
		Rules:   info.Key.Rules,
		Catalog: s.catalog,
		Seed:    seed,
	}, s.store, s.logger, func() { s.closeTable(tableID, info.ID) })
	if err != nil {
		s.pool.Abort(info.ID)
		return err
	}
	s.hubs[tableID] = hub
	go hub.Run()

	s.logger.Info("table started",
		zap.String("table", tableID),
		zap.String("party", info.ID),
		zap.Strings("players", info.Players),
		zap.Uint64("seed", seed),
	)
	return nil
}

// closeTable stops a finished table and releases its party.
func (s *Server) closeTable(tableID, partyID string) {
	s.mu.Lock()
	if hub, ok := s.hubs[tableID]; ok {
		hub.Stop()
		delete(s.hubs, tableID)
	}
	s.mu.Unlock()
	s.pool.Finish(partyID)
	s.logger.Info("table closed", zap.String("table", tableID))
}

func (s *Server) hub(tableID string) (*Hub, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hubs[tableID]
	return h, ok
}
