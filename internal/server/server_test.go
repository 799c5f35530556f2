package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"saboteur/internal/engine"
	"saboteur/internal/protocol"
	"saboteur/internal/replay"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Options{
		Logger: zap.NewNop(),
		Store:  replay.NewMemoryStore(),
		Seed:   func() (uint64, error) { return 42, nil },
	})
	return s, newHTTPServer(t, s)
}

func newHTTPServer(t *testing.T, s *Server) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return ts
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

// seatParty queues names for a party of their size, confirms everyone and
// returns the tickets by name and the table ID.
func seatParty(t *testing.T, base string, names ...string) (map[string]string, string) {
	t.Helper()
	size := len(names)
	no := false
	req := protocol.SearchRequest{PartySize: &size, WithoutDeadlocks: &no, SkipLoosers: &no}

	tickets := make(map[string]string)
	for i, name := range names {
		var st protocol.SearchStatus
		if code := doJSON(t, http.MethodPost, base+"/api/search/"+name, req, &st); code != http.StatusCreated {
			t.Fatalf("search %s: status %d", name, code)
		}
		if last := i == len(names)-1; last != (st.Party != "") {
			t.Fatalf("search %s: unexpected party %q", name, st.Party)
		}
		tickets[name] = st.Ticket
	}

	var st protocol.SearchStatus
	for _, name := range names {
		if code := doJSON(t, http.MethodPost, base+"/api/search/"+tickets[name]+"/confirm", nil, &st); code != http.StatusOK {
			t.Fatalf("confirm %s: status %d", name, code)
		}
	}
	if st.Table == "" {
		t.Fatal("expected a table once everyone confirmed")
	}
	return tickets, st.Table
}

func dial(t *testing.T, base, table, ticket string) *websocket.Conn {
	t.Helper()
	q := url.Values{"table": {table}}
	if ticket != "" {
		q.Set("ticket", ticket)
	}
	u := "ws" + strings.TrimPrefix(base, "http") + "/ws?" + q.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil returns the first envelope of type typ.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) protocol.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if env.Type == typ {
			return env
		}
	}
}

func TestSearchErrors(t *testing.T) {
	_, ts := newTestServer(t)

	var st protocol.SearchStatus
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/search/ann", nil, &st); code != http.StatusCreated {
		t.Fatalf("open search: status %d", code)
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/search/"+st.Ticket, nil, &st); code != http.StatusAccepted {
		t.Errorf("waiting ticket: expected 202, got %d", code)
	}
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/search/ann", nil, nil); code != http.StatusConflict {
		t.Errorf("duplicate name: expected 409, got %d", code)
	}
	big := 11
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/search/bob", protocol.SearchRequest{PartySize: &big}, nil); code != http.StatusBadRequest {
		t.Errorf("party of 11: expected 400, got %d", code)
	}
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/search/"+st.Ticket+"/confirm", nil, nil); code != http.StatusConflict {
		t.Errorf("confirm without party: expected 409, got %d", code)
	}
	if code := doJSON(t, http.MethodDelete, ts.URL+"/api/search/"+st.Ticket, nil, nil); code != http.StatusNoContent {
		t.Errorf("cancel: expected 204, got %d", code)
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/search/"+st.Ticket, nil, nil); code != http.StatusNotFound {
		t.Errorf("cancelled ticket: expected 404, got %d", code)
	}
}

func TestTableEndpoints(t *testing.T) {
	_, ts := newTestServer(t)
	_, table := seatParty(t, ts.URL, "ann", "bob", "cid")

	var view engine.PublicViewData
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/tables/"+table, nil, &view); code != http.StatusOK {
		t.Fatalf("table: status %d", code)
	}
	if view.Round != 1 || len(view.Players) != 3 || view.DeckSize != 49 {
		t.Errorf("unexpected view %+v", view)
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/tables/nope", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown table: expected 404, got %d", code)
	}

	resp, err := http.Get(ts.URL + "/api/tables/" + table + "/qr")
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("qr: status %d type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	var rec replay.Record
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/tables/"+table+"/replay", nil, &rec); code != http.StatusOK {
		t.Fatalf("replay: status %d", code)
	}
	if rec.Seed != 42 || len(rec.Players) != 3 || len(rec.Turns) != 0 {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestPlayTurnOverWebSocket(t *testing.T) {
	_, ts := newTestServer(t)
	tickets, table := seatParty(t, ts.URL, "ann", "bob", "cid")

	var view engine.PublicViewData
	doJSON(t, http.MethodGet, ts.URL+"/api/tables/"+table, nil, &view)
	current := view.Current

	var other string
	for name := range tickets {
		if name != current {
			other = name
			break
		}
	}

	conn := dial(t, ts.URL, table, tickets[current])
	var pv engine.PlayerViewData
	if err := json.Unmarshal(readUntil(t, conn, protocol.MsgPlayerState).Payload, &pv); err != nil {
		t.Fatalf("player state: %v", err)
	}
	if !pv.IsMyTurn || pv.Name != current || len(pv.Hand) != 6 {
		t.Fatalf("unexpected player view %+v", pv)
	}

	action := protocol.ActionMsg{Kind: protocol.ActionSkip, Card: &pv.Hand[0]}
	if err := conn.WriteJSON(protocol.MustEnvelope(protocol.MsgAction, action)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var res protocol.TurnResultMsg
	if err := json.Unmarshal(readUntil(t, conn, protocol.MsgTurnResult).Payload, &res); err != nil {
		t.Fatalf("turn result: %v", err)
	}
	if res.Outcome != "new_turn" || res.Actor != current || res.Player == current {
		t.Errorf("unexpected result %+v", res)
	}

	var rec replay.Record
	doJSON(t, http.MethodGet, ts.URL+"/api/tables/"+table+"/replay", nil, &rec)
	if len(rec.Turns) != 1 || rec.Turns[0].Player != current {
		t.Errorf("expected one recorded turn by %s, got %+v", current, rec.Turns)
	}

	// Whoever is not up now gets refused.
	waiting := other
	if waiting == res.Player {
		for name := range tickets {
			if name != current && name != res.Player {
				waiting = name
			}
		}
	}
	oc := dial(t, ts.URL, table, tickets[waiting])
	readUntil(t, oc, protocol.MsgPlayerState)
	oc.WriteJSON(protocol.MustEnvelope(protocol.MsgAction, protocol.ActionMsg{Kind: protocol.ActionSkip}))
	var msg protocol.ErrorMsg
	json.Unmarshal(readUntil(t, oc, protocol.MsgError).Payload, &msg)
	if msg.Message != ErrNotYourTurn.Error() {
		t.Errorf("expected %q, got %q", ErrNotYourTurn, msg.Message)
	}
}

func TestSpectatorWebSocket(t *testing.T) {
	_, ts := newTestServer(t)
	_, table := seatParty(t, ts.URL, "ann", "bob", "cid")

	conn := dial(t, ts.URL, table, "")
	var view engine.PublicViewData
	if err := json.Unmarshal(readUntil(t, conn, protocol.MsgGameState).Payload, &view); err != nil {
		t.Fatalf("game state: %v", err)
	}
	if len(view.Cells) != 4 {
		t.Errorf("expected start and three ends, got %d cells", len(view.Cells))
	}

	conn.WriteJSON(protocol.MustEnvelope(protocol.MsgAction, protocol.ActionMsg{Kind: protocol.ActionSkip}))
	var msg protocol.ErrorMsg
	json.Unmarshal(readUntil(t, conn, protocol.MsgError).Payload, &msg)
	if msg.Message != ErrSpectator.Error() {
		t.Errorf("expected %q, got %q", ErrSpectator, msg.Message)
	}
}

func TestWebSocketRejectsStrangers(t *testing.T) {
	_, ts := newTestServer(t)
	_, table := seatParty(t, ts.URL, "ann", "bob", "cid")

	q := url.Values{"table": {table}, "ticket": {"forged"}}
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + q.Encode()
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatal("expected the dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}
}

func TestRouterRegistersSearchRoutes(t *testing.T) {
	s := New(Options{Logger: zap.NewNop()})
	routes := make(map[string]bool)
	for _, r := range s.Router().Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/search/:id",
		"GET /api/search/:id",
		"DELETE /api/search/:id",
		"POST /api/search/:id/confirm",
		"GET /api/tables/:table/replay",
	} {
		if !routes[want] {
			t.Errorf("missing route %s", want)
		}
	}
}
