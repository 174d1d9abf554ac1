package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/robalobadob/resetslot/internal/game"
)

func dialSession(t *testing.T, s *Server) (*websocket.Conn, string) {
	t.Helper()
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	_, res := do(t, s, http.MethodPost, "/game/new", map[string]string{"word": "AB"})
	return dialGame(t, ts, res.GameID), res.GameID
}

func dialGame(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads frames until match accepts one or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(wsOut) bool) wsOut {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg wsOut
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestSocketPushesStateAndTicks(t *testing.T) {
	s := newTestServer(t)
	conn, _ := dialSession(t, s)

	first := readUntil(t, conn, func(m wsOut) bool { return m.Type == msgState })
	if first.State == nil || first.State.Word != "AB" {
		t.Fatalf("first frame = %+v", first)
	}
	// The server clock moves the reels without any client input.
	moved := readUntil(t, conn, func(m wsOut) bool {
		return m.Type == msgState && m.State != nil && m.State.SpinOffsets[0] != 0
	})
	if moved.State.Phase != game.PhaseSpinning {
		t.Errorf("phase = %q", moved.State.Phase)
	}
}

func TestSocketCommands(t *testing.T) {
	s := newTestServer(t)
	conn, _ := dialSession(t, s)

	if err := conn.WriteJSON(wsIn{Type: msgPing}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, func(m wsOut) bool { return m.Type == msgPong })

	if err := conn.WriteJSON(wsIn{Type: msgStart, Word: "n0pe"}); err != nil {
		t.Fatal(err)
	}
	bad := readUntil(t, conn, func(m wsOut) bool { return m.Type == msgError })
	if bad.Error != "invalid_word" {
		t.Errorf("error = %q", bad.Error)
	}

	if err := conn.WriteJSON(wsIn{Type: "dance"}); err != nil {
		t.Fatal(err)
	}
	unknown := readUntil(t, conn, func(m wsOut) bool { return m.Type == msgError })
	if unknown.Error != "unknown_type" {
		t.Errorf("error = %q", unknown.Error)
	}

	if err := conn.WriteJSON(wsIn{Type: msgStart, Word: "zen"}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, func(m wsOut) bool {
		return m.Type == msgState && m.State != nil && m.State.Word == "ZEN" && m.State.Playthrough == 2
	})
}

func TestSocketLockResolves(t *testing.T) {
	s := newTestServer(t)
	conn, _ := dialSession(t, s)
	readUntil(t, conn, func(m wsOut) bool { return m.Type == msgState })

	// Whatever sits in the center, a lock always resolves to correct or wrong.
	if err := conn.WriteJSON(wsIn{Type: msgLock}); err != nil {
		t.Fatal(err)
	}
	got := readUntil(t, conn, func(m wsOut) bool { return m.Outcome != "" })
	if got.Outcome != game.OutcomeCorrect && got.Outcome != game.OutcomeWrong {
		t.Fatalf("outcome = %q", got.Outcome)
	}
	if got.Outcome == game.OutcomeCorrect {
		// Auto-advance moves on to the second letter.
		readUntil(t, conn, func(m wsOut) bool {
			return m.Type == msgState && m.State != nil && m.State.ActiveIndex == 1
		})
	} else if got.State.Lives != 3 {
		t.Errorf("lives after miss = %d", got.State.Lives)
	}
}

func TestSocketUnknownSession(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial succeeded for unknown session")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %+v", resp)
	}
}

func TestSocketsShareOneClock(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	_, res := do(t, s, http.MethodPost, "/game/new", map[string]string{"word": "AB"})

	conns := make([]*websocket.Conn, 4)
	for i := range conns {
		conns[i] = dialGame(t, ts, res.GameID)
	}
	time.Sleep(2 * time.Second)

	_, got := do(t, s, http.MethodGet, "/game/"+res.GameID, nil)
	if left := got.State.SecondsLeft; left < 27 || left > 29 {
		t.Errorf("secondsLeft after 2s with 4 sockets = %d, want about 28", left)
	}

	// Every socket but the newest was closed by the server.
	for i, conn := range conns[:len(conns)-1] {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					t.Errorf("socket %d: %v, want normal close", i, err)
				}
				break
			}
		}
	}
	readUntil(t, conns[len(conns)-1], func(m wsOut) bool { return m.Type == msgState })
}

func TestPushDropsOnlySpinningState(t *testing.T) {
	c := &wsClient{
		send: make(chan []byte, 1),
		done: make(chan struct{}),
		log:  zerolog.Nop(),
	}
	defer c.close()

	spinning := game.Snapshot{Phase: game.PhaseSpinning}
	c.push(wsOut{Type: msgState, State: &spinning})
	c.push(wsOut{Type: msgState, State: &spinning}) // dropped, buffer full
	if n := len(c.send); n != 1 {
		t.Fatalf("queued %d frames, want 1", n)
	}

	won := game.Snapshot{Phase: game.PhaseWon}
	queued := make(chan struct{})
	go func() {
		c.push(wsOut{Type: msgPong})
		c.push(wsOut{Type: msgState, State: &won})
		close(queued)
	}()

	var types []string
	for len(types) < 3 {
		select {
		case b := <-c.send:
			var msg wsOut
			if err := json.Unmarshal(b, &msg); err != nil {
				t.Fatal(err)
			}
			if msg.State != nil {
				types = append(types, string(msg.State.Phase))
			} else {
				types = append(types, msg.Type)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("frames received = %v", types)
		}
	}
	<-queued
	want := []string{"spinning", msgPong, "won"}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("frames = %v, want %v", types, want)
			break
		}
	}
}
