// internal/game/types.go
//
// Core type definitions for the reset-word slot engine.
// Defines:
//   - Phase:      lifecycle state of a playthrough.
//   - Status:     per-letter lock result (correct/wrong/timed out).
//   - LockResult: what was locked for one letter position.
//   - Outcome:    what a single Lock() call did.
//   - Snapshot:   read-only copy of engine state handed to renderers.

package game

import "github.com/robalobadob/resetslot/internal/reel"

// Phase is the engine lifecycle state. Exactly one is active at a time.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSpinning Phase = "spinning"
	PhaseLocked   Phase = "locked"
	PhaseWon      Phase = "won"
	PhaseLost     Phase = "lost"
)

// Terminal reports whether no further command can change the playthrough.
func (p Phase) Terminal() bool { return p == PhaseWon || p == PhaseLost }

// Status is the evaluation of one letter position.
// The zero value means the position has not been attempted (or was cleared by a retry).
type Status string

const (
	StatusUnset    Status = ""
	StatusCorrect  Status = "correct"
	StatusWrong    Status = "wrong"
	StatusTimedOut Status = "timed_out"
)

// Failed reports whether the status costs a life and allows a retry.
func (s Status) Failed() bool { return s == StatusWrong || s == StatusTimedOut }

// LockResult records the symbol evaluated for one letter position.
// Char is blank when the lock hit an icon or the round timed out.
type LockResult struct {
	Char   string    `json:"char,omitempty"`
	Icon   reel.Icon `json:"icon,omitempty"`
	Status Status    `json:"status,omitempty"`
}

// Outcome reports what a Lock() call did.
type Outcome string

const (
	OutcomeNone    Outcome = "none" // not spinning, or a duplicate lock
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
)

// Snapshot is a deep copy of engine state. Mutating it never affects the engine.
type Snapshot struct {
	Phase         Phase           `json:"phase"`
	Word          string          `json:"word"`
	ActiveIndex   int             `json:"activeIndex"`
	Lives         int             `json:"lives"`
	SecondsLeft   int             `json:"secondsLeft"`
	RoundSeconds  int             `json:"roundSeconds"`
	Reels         [][]reel.Symbol `json:"reels"`
	SpinOffsets   []int           `json:"spinOffsets"`
	LockResults   []LockResult    `json:"lockResults"`
	Highlight     int             `json:"highlight"` // center-reel slot evaluated by the last lock, -1 while spinning
	WrongAttempts int             `json:"wrongAttempts"`
	Playthrough   uint64          `json:"playthrough"` // bumped by every successful Start
}

// Target returns the letter the player must lock, or 0 when none is active.
func (s Snapshot) Target() rune {
	w := []rune(s.Word)
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(w) || s.Phase.Terminal() || s.Phase == PhaseIdle {
		return 0
	}
	return w[s.ActiveIndex]
}

// DisplayIndex maps a raw scroll offset to the slot that is visually centered.
// The centered row sits one slot ahead of the running offset.
func DisplayIndex(offset, length int) int {
	if length <= 0 {
		return 0
	}
	cur := ((offset % length) + length) % length
	return (cur + 1) % length
}
