// internal/config/game.go
//
// YAML game tuning. Every field is optional; omitted fields keep the reference values.
//
//	lives: 4
//	round_seconds: 30
//	reel_length: 20
//	reel_count: 3
//	spin_step: 50ms
//	clock_step: 1s
//	advance_delay: 600ms
//	default_word: FOCUS
//	weights: {target: 40, word: 20, icon: 20, alphabet: 20}
//	icons: [lime, star, cherry, clover]

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/resetslot/internal/game"
	"github.com/robalobadob/resetslot/internal/reel"
	"github.com/robalobadob/resetslot/internal/words"
)

// Game is the engine tuning plus host-side presentation knobs.
type Game struct {
	Settings     game.Settings
	AdvanceDelay time.Duration
	DefaultWord  string
}

// gameFile mirrors the YAML document. Pointers distinguish "absent" from zero.
type gameFile struct {
	Lives        *int          `yaml:"lives"`
	RoundSeconds *int          `yaml:"round_seconds"`
	ReelLength   *int          `yaml:"reel_length"`
	ReelCount    *int          `yaml:"reel_count"`
	SpinStep     *string       `yaml:"spin_step"`
	ClockStep    *string       `yaml:"clock_step"`
	AdvanceDelay *string       `yaml:"advance_delay"`
	DefaultWord  *string       `yaml:"default_word"`
	Weights      *reel.Weights `yaml:"weights"`
	Icons        []reel.Icon   `yaml:"icons"`
}

// DefaultGame returns the reference tuning.
func DefaultGame() Game {
	return Game{
		Settings:     game.DefaultSettings(),
		AdvanceDelay: 600 * time.Millisecond,
		DefaultWord:  words.DefaultWord,
	}
}

// LoadGame reads tuning from path. A missing file yields DefaultGame.
func LoadGame(path string) (Game, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultGame(), nil
	}
	if err != nil {
		return Game{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseGame(b)
}

// ParseGame decodes a YAML tuning document over the defaults and validates it.
func ParseGame(b []byte) (Game, error) {
	var f gameFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Game{}, fmt.Errorf("parse game config: %w", err)
	}

	g := DefaultGame()
	s := &g.Settings
	setInt(&s.Lives, f.Lives)
	setInt(&s.RoundSeconds, f.RoundSeconds)
	setInt(&s.ReelLength, f.ReelLength)
	setInt(&s.ReelCount, f.ReelCount)
	if err := setDuration(&s.SpinStep, f.SpinStep, "spin_step"); err != nil {
		return Game{}, err
	}
	if err := setDuration(&s.ClockStep, f.ClockStep, "clock_step"); err != nil {
		return Game{}, err
	}
	if err := setDuration(&g.AdvanceDelay, f.AdvanceDelay, "advance_delay"); err != nil {
		return Game{}, err
	}
	if f.Weights != nil {
		s.Weights = *f.Weights
	}
	if f.Icons != nil {
		s.Icons = f.Icons
	}
	if f.DefaultWord != nil {
		g.DefaultWord = words.Normalize(*f.DefaultWord)
	}

	if err := s.Validate(); err != nil {
		return Game{}, err
	}
	if g.AdvanceDelay < 0 {
		return Game{}, errors.New("advance_delay must not be negative")
	}
	if !words.IsValid(g.DefaultWord) {
		return Game{}, fmt.Errorf("default_word %q: %w", g.DefaultWord, words.ErrInvalidWord)
	}
	return g, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
