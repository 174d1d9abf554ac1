// internal/game/settings.go
//
// Tunables for one engine. Defaults reproduce the reference game:
// 4 lives, 30 second rounds, three reels of 20 slots, 50ms spin steps.

package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/resetslot/internal/reel"
)

const (
	defaultLives        = 4
	defaultRoundSeconds = 30
	defaultReelCount    = 3
	defaultSpinStep     = 50 * time.Millisecond
	defaultClockStep    = time.Second
)

// Settings configures an Engine.
type Settings struct {
	Lives        int
	RoundSeconds int
	ReelLength   int
	ReelCount    int
	SpinStep     time.Duration // one offset step per SpinStep of elapsed time
	ClockStep    time.Duration // one countdown second per ClockStep of elapsed time
	Weights      reel.Weights
	Icons        []reel.Icon
}

// DefaultSettings returns the reference tuning.
func DefaultSettings() Settings {
	return Settings{
		Lives:        defaultLives,
		RoundSeconds: defaultRoundSeconds,
		ReelLength:   reel.DefaultLength,
		ReelCount:    defaultReelCount,
		SpinStep:     defaultSpinStep,
		ClockStep:    defaultClockStep,
		Weights:      reel.DefaultWeights,
		Icons:        reel.DefaultIcons,
	}
}

// Validate checks that every field can drive a playthrough.
func (s Settings) Validate() error {
	switch {
	case s.Lives <= 0:
		return fmt.Errorf("game: lives must be positive, got %d", s.Lives)
	case s.RoundSeconds <= 0:
		return fmt.Errorf("game: round seconds must be positive, got %d", s.RoundSeconds)
	case s.ReelLength <= 0:
		return fmt.Errorf("game: reel length must be positive, got %d", s.ReelLength)
	case s.ReelCount <= 0:
		return fmt.Errorf("game: reel count must be positive, got %d", s.ReelCount)
	case s.SpinStep <= 0 || s.ClockStep <= 0:
		return errors.New("game: spin and clock steps must be positive")
	case len(s.Icons) == 0:
		return errors.New("game: icon set is empty")
	}
	for _, ic := range s.Icons {
		if strings.TrimSpace(string(ic)) == "" {
			return errors.New("game: blank icon id")
		}
	}
	return s.Weights.Validate()
}

// CenterReel is the index of the reel that lock evaluation reads.
func (s Settings) CenterReel() int { return s.ReelCount / 2 }
