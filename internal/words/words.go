// internal/words/words.go
//
// Reset-word catalogue for the slot game.
//
// Responsibilities:
//   - Load the list of suggested reset words from a file or the embedded default.
//   - Normalize player input (trim, uppercase) and validate it (A–Z only).
//   - Resolve empty input to the default word.
//   - Pick a random suggestion ("Generate Random Word").
//
// Initialization behavior (Init):
//   1. If WORDS_FILE is set, load one word per line from it.
//   2. Otherwise use assets/words.txt.
//   Invalid lines are skipped; an empty result is an error.
//
// Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/resetslot/assets"
)

// DefaultWord is used when the player leaves the input blank.
const DefaultWord = "FOCUS"

// ErrInvalidWord is returned for input with characters outside A–Z.
var ErrInvalidWord = errors.New("words: word must contain letters A-Z only")

var (
	initOnce   sync.Once
	list       []string
	initialErr error
)

// Init loads the word list exactly once.
func Init() error {
	initOnce.Do(func() {
		var raw []string
		if path := os.Getenv("WORDS_FILE"); path != "" {
			raw, initialErr = readWordFile(path)
		} else {
			raw, initialErr = assets.WordList()
		}
		if initialErr != nil {
			return
		}
		list = filterValid(raw)
		if len(list) == 0 {
			initialErr = errors.New("words: list is empty")
		}
	})
	return initialErr
}

// readWordFile loads one word per line, skipping blanks and # comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

func filterValid(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, w := range in {
		n := Normalize(w)
		if !IsValid(n) {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Normalize trims whitespace and uppercases.
func Normalize(w string) string {
	return strings.ToUpper(strings.TrimSpace(w))
}

// IsValid reports whether w is non-empty and all uppercase ASCII letters.
func IsValid(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Resolve turns raw player input into a playable word.
// Blank input yields def (or DefaultWord when def is blank too).
func Resolve(input, def string) (string, error) {
	w := Normalize(input)
	if w == "" {
		w = Normalize(def)
		if w == "" {
			w = DefaultWord
		}
	}
	if !IsValid(w) {
		return "", ErrInvalidWord
	}
	return w, nil
}

// Random returns a cryptographically random word from the loaded list.
// If the list is not loaded or empty, it falls back to DefaultWord.
func Random() string {
	if len(list) == 0 {
		return DefaultWord
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return DefaultWord
	}
	return list[n.Int64()]
}

// List returns a copy of the loaded words.
func List() []string {
	return append([]string(nil), list...)
}

// Count returns how many words are loaded.
func Count() int { return len(list) }
