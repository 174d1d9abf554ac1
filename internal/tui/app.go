// internal/tui/app.go
//
// Terminal host for the reset-word slot.
// Responsibilities:
//   - Feed real elapsed time to the engine on a spin-step ticker.
//   - Map keys to engine commands (Space lock, Enter advance/retry, r new word, Esc quit).
//   - Auto-advance a correct lock after the presentation delay.
//   - Render the timer, hearts, letter cells and reels (see draw.go).
//
// Everything runs on one goroutine except the tcell event poller, so the App
// itself needs no locking.

package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/robalobadob/resetslot/internal/config"
	"github.com/robalobadob/resetslot/internal/game"
	"github.com/robalobadob/resetslot/internal/words"
)

// App owns a screen and drives one engine.
type App struct {
	screen tcell.Screen
	engine *game.Engine
	cfg    config.Game
	log    zerolog.Logger
	random func() string

	word string // last started word, reused by Enter after the game ends
	last time.Time

	// pending auto-advance
	advanceAt  time.Time
	advancePT  uint64
	advanceIdx int

	status string // transient message under the reels
}

// Option customizes an App.
type Option func(*App)

// WithLogger sets the logger. The default discards everything, since stdout belongs to the screen.
func WithLogger(l zerolog.Logger) Option { return func(a *App) { a.log = l } }

// WithRandomWord replaces the word source used by the r key.
func WithRandomWord(fn func() string) Option { return func(a *App) { a.random = fn } }

// New builds an App. The engine should already carry any completion callback.
func New(screen tcell.Screen, eng *game.Engine, cfg config.Game, opts ...Option) *App {
	a := &App{
		screen: screen,
		engine: eng,
		cfg:    cfg,
		log:    zerolog.Nop(),
		random: words.Random,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start begins a playthrough. Blank input means the configured default word.
func (a *App) Start(input string, now time.Time) error {
	word, err := words.Resolve(input, a.cfg.DefaultWord)
	if err != nil {
		return err
	}
	if err := a.engine.Start(word); err != nil {
		return err
	}
	a.word = word
	a.last = now
	a.advanceAt = time.Time{}
	a.status = ""
	a.log.Info().Str("word", word).Msg("start")
	return nil
}

// Run polls events and ticks until ctx is done or the player quits.
func (a *App) Run(ctx context.Context) error {
	step := a.engine.Settings().SpinStep
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	a.last = time.Now()
	a.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !a.HandleEvent(ev, time.Now()) {
				return nil
			}
			a.Draw()
		case now := <-ticker.C:
			a.Step(now)
			a.Draw()
		}
	}
}

// Step advances the engine clock to now and fires a due auto-advance.
func (a *App) Step(now time.Time) {
	if !a.last.IsZero() {
		if elapsed := now.Sub(a.last); elapsed > 0 {
			a.engine.Tick(elapsed)
		}
	}
	a.last = now

	if !a.advanceAt.IsZero() && !now.Before(a.advanceAt) {
		a.advanceAt = time.Time{}
		snap := a.engine.Snapshot()
		if snap.Playthrough == a.advancePT && snap.ActiveIndex == a.advanceIdx {
			a.advance()
		}
	}
}

// HandleEvent applies one tcell event and reports whether to keep running.
func (a *App) HandleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.HandleKey(ev.Key(), ev.Rune(), now)
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

// HandleKey maps a key to a command and reports whether to keep running.
func (a *App) HandleKey(key tcell.Key, r rune, now time.Time) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		a.enter(now)
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch r {
	case ' ':
		a.lock(now)
	case 'r', 'R':
		if err := a.Start(a.random(), now); err != nil {
			a.log.Warn().Err(err).Msg("random word")
		}
	case 'q':
		return false
	}
	return true
}

func (a *App) lock(now time.Time) {
	switch a.engine.Lock() {
	case game.OutcomeCorrect:
		snap := a.engine.Snapshot()
		a.advanceAt = now.Add(a.cfg.AdvanceDelay)
		a.advancePT = snap.Playthrough
		a.advanceIdx = snap.ActiveIndex
		a.status = "Nice!"
	case game.OutcomeWrong:
		a.status = "Missed."
		a.log.Debug().Int("lives", a.engine.Snapshot().Lives).Msg("wrong lock")
	}
}

// enter advances a correct lock, retries a failed one, or replays after the game ends.
func (a *App) enter(now time.Time) {
	snap := a.engine.Snapshot()
	switch {
	case snap.Phase == game.PhaseLocked && snap.LockResults[snap.ActiveIndex].Status == game.StatusCorrect:
		a.advanceAt = time.Time{}
		a.advance()
	case snap.Phase == game.PhaseLocked:
		if a.engine.Retry() {
			a.status = ""
		}
	case snap.Phase.Terminal() || snap.Phase == game.PhaseIdle:
		if err := a.Start(a.word, now); err != nil {
			a.log.Warn().Err(err).Msg("restart")
		}
	}
}

func (a *App) advance() {
	if !a.engine.Advance() {
		return
	}
	a.status = ""
	if a.engine.Snapshot().Phase == game.PhaseWon {
		a.status = "You Did It!"
	}
}
