// internal/httpserver/routes_game.go
//
// HTTP routes for driving a session over plain request/response.
// Exposes:
//   - POST /game/new           → create a session and start it (empty word → default)
//   - GET  /game/{id}          → current snapshot
//   - POST /game/{id}/start    → restart the same session with a new word
//   - POST /game/{id}/tick     → feed elapsed milliseconds
//   - POST /game/{id}/lock     → lock the center reel
//   - POST /game/{id}/advance  → move past a correct letter
//   - POST /game/{id}/retry    → re-deal after a wrong or timed-out lock
//
// Every response carries the full snapshot so clients can render without
// tracking engine state themselves. Out-of-phase commands still answer 200
// with "changed": false; the engine treats them as no-ops.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/resetslot/internal/game"
	"github.com/robalobadob/resetslot/internal/store"
	"github.com/robalobadob/resetslot/internal/words"
)

// maxTick bounds a single tick request; a round never lasts longer anyway.
const maxTick = 10 * time.Minute

type wordReq struct {
	Word string `json:"word"`
}

type tickReq struct {
	ElapsedMs int64 `json:"elapsedMs"`
}

// stateRes is the common response shape.
type stateRes struct {
	GameID  string        `json:"gameId"`
	State   game.Snapshot `json:"state"`
	Outcome game.Outcome  `json:"outcome,omitempty"`
	Changed *bool         `json:"changed,omitempty"`
	Receipt string        `json:"receipt,omitempty"`
}

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", s.withSession(s.handleState))
		r.Post("/start", s.withSession(s.handleStart))
		r.Post("/tick", s.withSession(s.handleTick))
		r.Post("/lock", s.withSession(s.handleLock))
		r.Post("/advance", s.withSession(s.handleAdvance))
		r.Post("/retry", s.withSession(s.handleRetry))
	})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *store.Session)

// withSession loads the session named by {id} or answers 404.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		h(w, r, sess)
	}
}

// handleNewGame creates a session and starts its first playthrough.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req wordReq
	// An empty body is fine: the default word is used.
	_ = json.NewDecoder(r.Body).Decode(&req)

	word, err := words.Resolve(req.Word, s.game.DefaultWord)
	if err != nil {
		http.Error(w, `{"error":"invalid_word"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.newSession(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := sess.Engine.Start(word); err != nil {
		_ = s.sessions.Delete(r.Context(), sess.ID)
		http.Error(w, `{"error":"invalid_word"}`, http.StatusBadRequest)
		return
	}
	log.Debug().Str("session", sess.ID).Int("letters", len(word)).Msg("new game")
	writeState(w, sess, stateRes{})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	writeState(w, sess, stateRes{})
}

// handleStart restarts the session. An empty word resolves to the default.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	var req wordReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if err := s.startSession(sess, req.Word); err != nil {
		if errors.Is(err, words.ErrInvalidWord) || errors.Is(err, game.ErrInvalidInput) {
			http.Error(w, `{"error":"invalid_word"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"start_failed"}`, http.StatusInternalServerError)
		return
	}
	writeState(w, sess, stateRes{})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	var req tickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.ElapsedMs < 0 || req.ElapsedMs > maxTick.Milliseconds() {
		http.Error(w, `{"error":"bad_elapsed"}`, http.StatusBadRequest)
		return
	}
	elapsed := time.Duration(req.ElapsedMs) * time.Millisecond
	sess.Engine.Tick(elapsed)
	writeState(w, sess, stateRes{})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	out := sess.Engine.Lock()
	writeState(w, sess, stateRes{Outcome: out})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	changed := sess.Engine.Advance()
	writeState(w, sess, stateRes{Changed: &changed})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	changed := sess.Engine.Retry()
	writeState(w, sess, stateRes{Changed: &changed})
}

// writeState fills in id, snapshot and receipt and encodes res.
func writeState(w http.ResponseWriter, sess *store.Session, res stateRes) {
	res.GameID = sess.ID
	res.State = sess.Engine.Snapshot()
	if res.State.Phase == game.PhaseWon {
		res.Receipt = sess.Receipt()
	}
	_ = json.NewEncoder(w).Encode(res)
}
