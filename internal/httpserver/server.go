// internal/httpserver/server.go
//
// HTTP server wiring for the reset-word slot backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/words/random", "/words/daily".
//   - Session endpoints: POST /game/new, GET /game/{id}, POST /game/{id}/{command}.
//   - Live play over a WebSocket: GET /game/{id}/ws (see ws.go).
//   - Completion signal: receipt issuing/verification and the persisted completion row.
//
// Notes:
//   - Every session owns one engine. The REST commands leave ticking to the client;
//     the WebSocket host ticks on the server.
//   - Completion persistence is best effort: failures are logged, never surfaced.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/resetslot/internal/config"
	"github.com/robalobadob/resetslot/internal/game"
	"github.com/robalobadob/resetslot/internal/receipt"
	"github.com/robalobadob/resetslot/internal/store"
	"github.com/robalobadob/resetslot/internal/words"
)

// Deps are the collaborators a Server needs. Completions may be nil, in which
// case wins are only signalled through receipts.
type Deps struct {
	Sessions     store.Store
	Completions  *store.CompletionStore
	Receipts     *receipt.Issuer
	Game         config.Game
	ClientOrigin string
	DailySalt    string

	// EngineOptions are applied to every new session's engine.
	EngineOptions []game.Option
}

// Server bundles router, session store and completion plumbing.
type Server struct {
	r           *chi.Mux
	sessions    store.Store
	completions *store.CompletionStore
	receipts    *receipt.Issuer
	game        config.Game
	origin      string
	dailySalt   string
	engineOpts  []game.Option
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:           chi.NewRouter(),
		sessions:    d.Sessions,
		completions: d.Completions,
		receipts:    d.Receipts,
		game:        d.Game,
		origin:      d.ClientOrigin,
		dailySalt:   d.DailySalt,
		engineOpts:  d.EngineOptions,
	}
	if s.origin == "" {
		s.origin = "http://localhost:5173"
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.origin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// The socket outlives any request timeout, so it sits outside that group.
	s.r.Get("/game/{id}/ws", s.handleSocket)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"resetslot","endpoints":["/health","GET /words/random","GET /words/daily","POST /game/new","POST /game/{id}/{start|tick|lock|advance|retry}","GET /game/{id}/ws","POST /receipt/verify","GET /completion/{id}"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.Get("/words/random", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"word": words.Random()})
		})
		r.Get("/words/daily", s.handleDailyWord)

		s.mountGame(r)

		r.Post("/receipt/verify", s.handleVerifyReceipt)
		r.Get("/completion/{id}", s.handleCompletion)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
		})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// SweepSessions drops idle sessions every interval until ctx is done.
func (s *Server) SweepSessions(ctx context.Context, ttl, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := s.sessions.Sweep(ctx, now.Add(-ttl))
			if err != nil {
				log.Warn().Err(err).Msg("sweep sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int("removed", n).Msg("swept idle sessions")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// ----------------------------- sessions ------------------------------------

// newSession builds an engine whose completion callback issues a receipt and
// records the win, then registers it under a fresh id.
func (s *Server) newSession(ctx context.Context) (*store.Session, error) {
	id := uuid.NewString()
	var sess *store.Session
	opts := append([]game.Option{game.WithCompletion(func(snap game.Snapshot) {
		s.complete(sess, snap)
	})}, s.engineOpts...)
	eng := game.New(s.game.Settings, opts...)
	sess = store.NewSession(id, eng, time.Now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// complete is the completion callback. It runs outside the engine lock.
func (s *Server) complete(sess *store.Session, snap game.Snapshot) {
	l := log.With().Str("session", sess.ID).Uint64("playthrough", snap.Playthrough).Logger()

	if s.receipts != nil {
		tok, err := s.receipts.Issue(receipt.Claims{
			SessionID:     sess.ID,
			Playthrough:   snap.Playthrough,
			Word:          snap.Word,
			LivesLeft:     snap.Lives,
			WrongAttempts: snap.WrongAttempts,
		})
		if err != nil {
			l.Warn().Err(err).Msg("issue receipt")
		} else {
			sess.SetReceipt(tok)
		}
	}

	if s.completions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.completions.Record(ctx, store.Completion{
			SessionID:     sess.ID,
			Playthrough:   snap.Playthrough,
			Word:          snap.Word,
			LivesLeft:     snap.Lives,
			WrongAttempts: snap.WrongAttempts,
			CompletedAt:   time.Now().UTC(),
		})
		if err != nil {
			l.Warn().Err(err).Msg("record completion")
		}
	}

	l.Info().Str("word", snap.Word).Int("lives", snap.Lives).Msg("playthrough complete")
}

// startSession resolves the requested word and (re)starts the session's engine.
func (s *Server) startSession(sess *store.Session, input string) error {
	word, err := words.Resolve(input, s.game.DefaultWord)
	if err != nil {
		return err
	}
	sess.SetReceipt("")
	return sess.Engine.Start(word)
}

// handleDailyWord returns the word of the day for ?date=YYYY-MM-DD (default today, UTC).
func (s *Server) handleDailyWord(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := time.Parse("2006-01-02", q)
		if err != nil {
			http.Error(w, `{"error":"bad_date"}`, http.StatusBadRequest)
			return
		}
		date = d
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"date": words.DateKey(date),
		"word": words.ForDate(date, s.dailySalt),
	})
}

// ----------------------------- receipts ------------------------------------

type verifyReq struct {
	Receipt string `json:"receipt"`
}

// handleVerifyReceipt returns the claims of a valid receipt.
func (s *Server) handleVerifyReceipt(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if s.receipts == nil {
		http.Error(w, `{"error":"receipts_disabled"}`, http.StatusNotImplemented)
		return
	}
	c, err := s.receipts.Verify(req.Receipt)
	if err != nil {
		http.Error(w, `{"error":"invalid_receipt"}`, http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"valid":       true,
		"sessionId":   c.SessionID,
		"playthrough": c.Playthrough,
		"word":        c.Word,
		"livesLeft":   c.LivesLeft,
		"attempts":    c.WrongAttempts,
	})
}

// handleCompletion returns the latest recorded completion for a session.
func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	if s.completions == nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	c, err := s.completions.Latest(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load completion")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(c)
}
