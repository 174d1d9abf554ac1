package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/resetslot/internal/reel"
)

func TestParseGameDefaults(t *testing.T) {
	g, err := ParseGame(nil)
	if err != nil {
		t.Fatalf("ParseGame(empty): %v", err)
	}
	s := g.Settings
	if s.Lives != 4 || s.RoundSeconds != 30 || s.ReelLength != 20 || s.ReelCount != 3 {
		t.Errorf("settings = %+v", s)
	}
	if s.SpinStep != 50*time.Millisecond || s.ClockStep != time.Second {
		t.Errorf("steps = %s/%s", s.SpinStep, s.ClockStep)
	}
	if s.Weights != reel.DefaultWeights {
		t.Errorf("weights = %+v", s.Weights)
	}
	if g.AdvanceDelay != 600*time.Millisecond || g.DefaultWord != "FOCUS" {
		t.Errorf("advance=%s default=%q", g.AdvanceDelay, g.DefaultWord)
	}
}

func TestParseGameOverrides(t *testing.T) {
	doc := []byte(`
lives: 2
round_seconds: 10
reel_length: 12
spin_step: 80ms
advance_delay: 1s
default_word: calm
weights:
  target: 70
  word: 10
  icon: 10
  alphabet: 10
icons: [star, cherry]
`)
	g, err := ParseGame(doc)
	if err != nil {
		t.Fatalf("ParseGame: %v", err)
	}
	s := g.Settings
	if s.Lives != 2 || s.RoundSeconds != 10 || s.ReelLength != 12 || s.ReelCount != 3 {
		t.Errorf("settings = %+v", s)
	}
	if s.SpinStep != 80*time.Millisecond {
		t.Errorf("spin step = %s", s.SpinStep)
	}
	if s.Weights != (reel.Weights{Target: 70, Word: 10, Icon: 10, Alphabet: 10}) {
		t.Errorf("weights = %+v", s.Weights)
	}
	if len(s.Icons) != 2 || s.Icons[0] != reel.IconStar {
		t.Errorf("icons = %v", s.Icons)
	}
	if g.AdvanceDelay != time.Second || g.DefaultWord != "CALM" {
		t.Errorf("advance=%s default=%q", g.AdvanceDelay, g.DefaultWord)
	}
}

func TestParseGameRejectsBadTuning(t *testing.T) {
	cases := map[string]string{
		"zero lives":   "lives: 0",
		"zero weights": "weights: {target: 0, word: 0, icon: 0, alphabet: 0}",
		"empty icons":  "icons: []",
		"blank icon":   "icons: [star, \"\"]",
		"bad duration": "spin_step: fast",
		"bad word":     "default_word: no way",
		"bad yaml":     "lives: [",
		"neg advance":  "advance_delay: -1s",
		"no reels":     "reel_count: 0",
		"zero clock":   "clock_step: 0s",
		"negative wgt": "weights: {target: -5, word: 20, icon: 20, alphabet: 20}",
		"zero seconds": "round_seconds: 0",
		"zero length":  "reel_length: 0",
	}
	for name, doc := range cases {
		if _, err := ParseGame([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadGameMissingFile(t *testing.T) {
	g, err := LoadGame(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if g.Settings.Lives != 4 {
		t.Errorf("lives = %d, want default 4", g.Settings.Lives)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.yaml")
	if err := os.WriteFile(path, []byte("lives: 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GAME_CONFIG", path)
	t.Setenv("PORT", "9999")
	t.Setenv("SESSION_TTL", "90")
	t.Setenv("RECEIPT_TTL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" || cfg.Game.Settings.Lives != 6 {
		t.Errorf("port=%q lives=%d", cfg.Port, cfg.Game.Settings.Lives)
	}
	if cfg.SessionTTL != 90*time.Second || cfg.ReceiptTTL != 2*time.Hour {
		t.Errorf("session=%s receipt=%s", cfg.SessionTTL, cfg.ReceiptTTL)
	}

	t.Setenv("SESSION_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Error("expected error for bad SESSION_TTL")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadDotEnv(missing) = %v", err)
	}
}

func TestLoadDotEnvSetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("RESETSLOT_TEST_VAR=hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESETSLOT_TEST_VAR", "")
	os.Unsetenv("RESETSLOT_TEST_VAR")
	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("RESETSLOT_TEST_VAR"); got != "hello" {
		t.Errorf("RESETSLOT_TEST_VAR = %q", got)
	}
}
