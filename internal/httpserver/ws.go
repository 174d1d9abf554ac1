// internal/httpserver/ws.go
//
// WebSocket host for live play.
// The server owns the clock here: a ticker at the engine's spin step feeds real
// elapsed time to Tick and pushes a snapshot after every visible change. The
// client only sends commands.
//
// Inbound:  {"type":"lock"|"advance"|"retry"|"start"|"ping", "word":"..."}
// Outbound: {"type":"state", "state":{...}, "outcome":"...", "receipt":"..."}
//           {"type":"error", "error":"..."} and {"type":"pong"}
//
// A correct lock is advanced automatically after the configured delay unless a
// new playthrough started (or the player advanced by hand) in the meantime.
//
// A session has at most one live connection. A new socket on the same game id
// closes the previous one, so only one clock ever ticks an engine.

package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/resetslot/internal/game"
	"github.com/robalobadob/resetslot/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 64
)

// Message types.
const (
	msgState   = "state"
	msgError   = "error"
	msgPing    = "ping"
	msgPong    = "pong"
	msgStart   = "start"
	msgLock    = "lock"
	msgAdvance = "advance"
	msgRetry   = "retry"
)

type wsIn struct {
	Type string `json:"type"`
	Word string `json:"word,omitempty"`
}

type wsOut struct {
	Type    string         `json:"type"`
	State   *game.Snapshot `json:"state,omitempty"`
	Outcome game.Outcome   `json:"outcome,omitempty"`
	Receipt string         `json:"receipt,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// handleSocket upgrades the connection and plays the session until it closes.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	up := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client.
		log.Warn().Err(err).Str("session", sess.ID).Msg("websocket upgrade")
		return
	}
	c := &wsClient{
		srv:  s,
		sess: sess,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  log.With().Str("session", sess.ID).Str("remote", r.RemoteAddr).Logger(),
	}
	c.run()
}

// checkOrigin accepts same-host requests, non-browser clients and the configured client origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.origin {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// wsClient is one live connection bound to a session.
type wsClient struct {
	srv  *Server
	sess *store.Session
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	pending *time.Timer // scheduled auto-advance
}

// run blocks until the connection is gone.
func (c *wsClient) run() {
	c.log.Debug().Msg("websocket connected")
	release := c.sess.Attach(c.close)
	defer release()
	go c.writePump()
	go c.tickLoop()
	c.push(wsOut{Type: msgState})
	c.readPump()
	c.close()
	c.log.Debug().Msg("websocket closed")
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.pending != nil {
			c.pending.Stop()
		}
		c.mu.Unlock()
	})
}

func (c *wsClient) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read")
			}
			return
		}
		var msg wsIn
		if err := json.Unmarshal(data, &msg); err != nil {
			c.push(wsOut{Type: msgError, Error: "bad_json"})
			continue
		}
		c.handle(msg)
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn().Err(err).Msg("websocket write")
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// tickLoop drives the engine clock with real elapsed time.
func (c *wsClient) tickLoop() {
	step := c.srv.game.Settings.SpinStep
	if step <= 0 {
		step = game.DefaultSettings().SpinStep
	}
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			select {
			case <-c.done:
				return
			default:
			}
			elapsed := now.Sub(last)
			last = now
			if c.sess.Engine.Snapshot().Phase != game.PhaseSpinning {
				continue
			}
			c.sess.Engine.Tick(elapsed)
			c.sess.Touch(now)
			c.pushState(c.sess.Engine.Snapshot(), "")
		}
	}
}

// handle applies one client command and answers with the new state.
func (c *wsClient) handle(msg wsIn) {
	e := c.sess.Engine
	c.sess.Touch(time.Now())
	switch msg.Type {
	case msgPing:
		c.push(wsOut{Type: msgPong})
	case msgStart:
		if err := c.srv.startSession(c.sess, msg.Word); err != nil {
			c.push(wsOut{Type: msgError, Error: "invalid_word"})
			return
		}
		c.pushState(e.Snapshot(), "")
	case msgLock:
		out := e.Lock()
		snap := e.Snapshot()
		if out == game.OutcomeCorrect {
			c.scheduleAdvance(snap)
		}
		c.pushState(snap, out)
	case msgAdvance:
		e.Advance()
		c.pushState(e.Snapshot(), "")
	case msgRetry:
		e.Retry()
		c.pushState(e.Snapshot(), "")
	default:
		c.push(wsOut{Type: msgError, Error: "unknown_type"})
	}
}

// scheduleAdvance advances after the presentation delay if the same letter of
// the same playthrough is still locked.
func (c *wsClient) scheduleAdvance(at game.Snapshot) {
	delay := c.srv.game.AdvanceDelay
	fire := func() {
		select {
		case <-c.done:
			return
		default:
		}
		now := c.sess.Engine.Snapshot()
		if now.Playthrough != at.Playthrough || now.ActiveIndex != at.ActiveIndex || now.Phase != game.PhaseLocked {
			return
		}
		if c.sess.Engine.Advance() {
			c.pushState(c.sess.Engine.Snapshot(), "")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.Stop()
	}
	c.pending = time.AfterFunc(delay, fire)
}

func (c *wsClient) pushState(snap game.Snapshot, out game.Outcome) {
	msg := wsOut{Type: msgState, State: &snap, Outcome: out}
	if snap.Phase == game.PhaseWon {
		msg.Receipt = c.sess.Receipt()
	}
	c.push(msg)
}

// push queues msg. A spinning state frame is superseded by the next tick, so
// it is dropped when the buffer is full. Anything else waits up to writeWait.
func (c *wsClient) push(msg wsOut) {
	if msg.Type == msgState && msg.State == nil {
		snap := c.sess.Engine.Snapshot()
		msg.State = &snap
	}
	b, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Msg("encode websocket message")
		return
	}
	select {
	case <-c.done:
		return
	case c.send <- b:
		return
	default:
	}
	if superseded(msg) {
		c.log.Debug().Msg("websocket send buffer full, dropping spinning state")
		return
	}

	t := time.NewTimer(writeWait)
	defer t.Stop()
	select {
	case <-c.done:
	case c.send <- b:
	case <-t.C:
		c.log.Warn().Str("type", msg.Type).Msg("websocket client too slow, closing")
		c.close()
	}
}

func superseded(msg wsOut) bool {
	return msg.Type == msgState && msg.Outcome == "" && msg.State != nil && msg.State.Phase == game.PhaseSpinning
}
