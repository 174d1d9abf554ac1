// internal/game/engine.go
//
// Core engine for a single reset-word slot playthrough.
// Responsibilities:
//   - Start a playthrough for a target word (uppercase A–Z).
//   - Advance spin offsets and the round countdown from elapsed time (Tick).
//   - Evaluate the symbol centered on the middle reel when the player locks.
//   - Track lives, per-letter results and the phase machine:
//     idle → spinning → locked → spinning(next letter | retry) → … → won | lost
//
// Notes:
//   - The engine never schedules anything itself; the host drives Tick and commands.
//   - Out-of-phase commands are silent no-ops, never errors.
//   - Spin and countdown use separate accumulators so countdown accuracy does not
//     depend on the host's frame rate.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robalobadob/resetslot/internal/reel"
)

// ErrInvalidInput is returned by Start for an empty or non-letter word.
var ErrInvalidInput = errors.New("invalid input")

// ReelSource produces one reel for a letter round.
type ReelSource func(word []rune, target rune, length int) []reel.Symbol

// Option customizes an Engine.
type Option func(*Engine)

// WithRand seeds the built-in reel generator.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithReelSource replaces the built-in generator.
func WithReelSource(src ReelSource) Option {
	return func(e *Engine) { e.source = src }
}

// WithCompletion registers a callback invoked once when a playthrough is won.
// It runs after the engine lock is released, so it may call back into the engine.
func WithCompletion(fn func(Snapshot)) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// Engine is the stateful controller for one playthrough at a time.
// Commands are serialized; it is meant to be driven by one host.
type Engine struct {
	mu   sync.Mutex
	busy atomic.Bool // set while Lock evaluates; duplicate locks are dropped

	settings   Settings
	rng        *rand.Rand
	source     ReelSource
	onComplete func(Snapshot)

	word        []rune
	phase       Phase
	active      int
	lives       int
	secondsLeft int
	reels       [][]reel.Symbol
	offsets     []int
	results     []LockResult
	highlight   int
	wrong       int
	playthrough uint64

	spinAcc  time.Duration
	clockAcc time.Duration
}

// New constructs an idle engine. Invalid settings fall back to DefaultSettings.
func New(settings Settings, opts ...Option) *Engine {
	if settings.Validate() != nil {
		settings = DefaultSettings()
	}
	e := &Engine{
		settings:  settings,
		phase:     PhaseIdle,
		highlight: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.source == nil {
		gen := reel.NewGenerator(settings.Weights, settings.Icons, e.rng)
		e.source = func(word []rune, target rune, length int) []reel.Symbol {
			// Start guarantees a non-empty word, so Generate cannot fail here.
			out, _ := gen.Generate(word, target, length)
			return out
		}
	}
	return e
}

// Settings returns the tuning the engine runs with.
func (e *Engine) Settings() Settings { return e.settings }

// Start replaces all state with a fresh playthrough of word.
// The word is trimmed and uppercased; it must then be non-empty and A–Z only.
// On error the previous state is left untouched.
func (e *Engine) Start(word string) error {
	w := []rune(strings.ToUpper(strings.TrimSpace(word)))
	if len(w) == 0 {
		return fmt.Errorf("%w: empty word", ErrInvalidInput)
	}
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: %q is not a letter", ErrInvalidInput, r)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.word = w
	e.active = 0
	e.lives = e.settings.Lives
	e.results = make([]LockResult, len(w))
	e.wrong = 0
	e.playthrough++
	e.resetRound()
	e.phase = PhaseSpinning
	return nil
}

// Tick feeds elapsed time while spinning: offsets move one slot per SpinStep and
// the countdown drops one second per ClockStep. Reaching zero fails the round as
// timed out. Outside PhaseSpinning it does nothing.
func (e *Engine) Tick(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseSpinning {
		return
	}

	e.spinAcc += elapsed
	if steps := int(e.spinAcc / e.settings.SpinStep); steps > 0 {
		e.spinAcc -= time.Duration(steps) * e.settings.SpinStep
		for i := range e.offsets {
			if n := len(e.reels[i]); n > 0 {
				e.offsets[i] = (e.offsets[i] + steps) % n
			}
		}
	}

	e.clockAcc += elapsed
	for e.clockAcc >= e.settings.ClockStep && e.secondsLeft > 0 {
		e.clockAcc -= e.settings.ClockStep
		e.secondsLeft--
	}
	if e.secondsLeft == 0 {
		e.fail(LockResult{Status: StatusTimedOut})
	}
}

// Lock freezes the reels and evaluates the symbol centered on the middle reel
// against the active target letter.
func (e *Engine) Lock() Outcome {
	if !e.busy.CompareAndSwap(false, true) {
		return OutcomeNone
	}
	defer e.busy.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseSpinning {
		return OutcomeNone
	}

	center := e.reels[e.settings.CenterReel()]
	if len(center) == 0 {
		return OutcomeNone
	}
	idx := DisplayIndex(e.offsets[e.settings.CenterReel()], len(center))
	sym := center[idx]
	e.highlight = idx

	if sym.IsLetter() && sym.Letter == e.word[e.active] {
		e.results[e.active] = LockResult{Char: string(sym.Letter), Status: StatusCorrect}
		e.phase = PhaseLocked
		return OutcomeCorrect
	}

	res := LockResult{Status: StatusWrong}
	if sym.IsLetter() {
		res.Char = string(sym.Letter)
	} else {
		res.Icon = sym.Icon
	}
	e.fail(res)
	return OutcomeWrong
}

// Advance moves past a correctly locked letter. After the last letter the
// playthrough is won and the completion callback fires. Reports whether
// anything changed.
func (e *Engine) Advance() bool {
	e.mu.Lock()
	if e.phase != PhaseLocked || e.results[e.active].Status != StatusCorrect {
		e.mu.Unlock()
		return false
	}

	if e.active == len(e.word)-1 {
		e.phase = PhaseWon
		e.highlight = -1
		snap := e.snapshot()
		cb := e.onComplete
		e.mu.Unlock()
		if cb != nil {
			cb(snap)
		}
		return true
	}

	e.active++
	if e.results[e.active].Status.Failed() {
		e.results[e.active] = LockResult{}
	}
	e.resetRound()
	e.phase = PhaseSpinning
	e.mu.Unlock()
	return true
}

// Retry re-deals the current letter after a wrong or timed-out lock.
// It does not restore the life that was lost.
func (e *Engine) Retry() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseLocked || !e.results[e.active].Status.Failed() || e.lives <= 0 {
		return false
	}
	e.results[e.active] = LockResult{}
	e.resetRound()
	e.phase = PhaseSpinning
	return true
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// fail records a failed round, charges a life and ends the game at zero lives.
func (e *Engine) fail(res LockResult) {
	e.results[e.active] = res
	e.wrong++
	e.lives--
	if e.lives <= 0 {
		e.lives = 0
		e.phase = PhaseLost
		return
	}
	e.phase = PhaseLocked
}

// resetRound restores the countdown, zeroes offsets and deals fresh reels for the active letter.
func (e *Engine) resetRound() {
	e.secondsLeft = e.settings.RoundSeconds
	e.spinAcc, e.clockAcc = 0, 0
	e.highlight = -1
	e.offsets = make([]int, e.settings.ReelCount)
	e.reels = make([][]reel.Symbol, e.settings.ReelCount)
	target := e.word[e.active]
	for i := range e.reels {
		e.reels[i] = e.source(e.word, target, e.settings.ReelLength)
	}
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Phase:         e.phase,
		Word:          string(e.word),
		ActiveIndex:   e.active,
		Lives:         e.lives,
		SecondsLeft:   e.secondsLeft,
		RoundSeconds:  e.settings.RoundSeconds,
		Reels:         make([][]reel.Symbol, len(e.reels)),
		SpinOffsets:   append([]int{}, e.offsets...),
		LockResults:   append([]LockResult{}, e.results...),
		Highlight:     e.highlight,
		WrongAttempts: e.wrong,
		Playthrough:   e.playthrough,
	}
	for i, r := range e.reels {
		s.Reels[i] = append([]reel.Symbol{}, r...)
	}
	return s
}
