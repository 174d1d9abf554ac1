// internal/config/config.go
//
// Process configuration.
//   - .env is loaded with godotenv (a missing file is fine).
//   - Server knobs come from environment variables with defaults.
//   - Game tuning comes from an optional YAML file (GAME_CONFIG, default config.yaml).

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server and terminal host need at startup.
type Config struct {
	Port          string
	LogLevel      string
	DBPath        string
	ClientOrigin  string
	ReceiptSecret string
	DailySalt     string
	ReceiptTTL    time.Duration
	SessionTTL    time.Duration
	Game          Game
}

// LoadDotEnv reads path into the environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Load reads the environment and the game tuning file.
func Load() (Config, error) {
	receiptTTL, err := envDuration("RECEIPT_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	sessionTTL, err := envDuration("SESSION_TTL", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}
	game, err := LoadGame(Getenv("GAME_CONFIG", "config.yaml"))
	if err != nil {
		return Config{}, err
	}
	return Config{
		Port:          Getenv("PORT", "5175"),
		LogLevel:      Getenv("LOG_LEVEL", "info"),
		DBPath:        Getenv("DB_PATH", "./data/resetslot.db"),
		ClientOrigin:  Getenv("CLIENT_ORIGIN", "http://localhost:5173"),
		ReceiptSecret: Getenv("RECEIPT_SECRET", "dev_secret_change_me"),
		DailySalt:     Getenv("DAILY_SALT", "resetslot"),
		ReceiptTTL:    receiptTTL,
		SessionTTL:    sessionTTL,
		Game:          game,
	}, nil
}

// Getenv returns the value of k or def if unset/empty.
func Getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Accept a bare number of seconds too.
		if n, nerr := strconv.Atoi(v); nerr == nil {
			return time.Duration(n) * time.Second, nil
		}
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return d, nil
}
