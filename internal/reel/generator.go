// internal/reel/generator.go
//
// Weighted reel generation.
// Each slot is drawn independently from four buckets:
//   - Target:   the sought letter itself.
//   - Word:     another distinct letter of the word (falls back to the target).
//   - Icon:     a decorative icon, always a miss when locked.
//   - Alphabet: any letter A–Z (may coincide with the target).
// The finished reel is shuffled so positions carry no information about draw order.

package reel

import (
	"errors"
	"fmt"
	"math/rand"
)

// DefaultLength is the number of slots on a reel.
const DefaultLength = 20

// Alphabet is the pool for the Alphabet bucket.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ErrEmptyWord is returned when Generate is asked for a reel without a word.
var ErrEmptyWord = errors.New("reel: empty word")

// Weights are the relative odds of the four buckets. They need not sum to 100.
type Weights struct {
	Target   int `yaml:"target"`
	Word     int `yaml:"word"`
	Icon     int `yaml:"icon"`
	Alphabet int `yaml:"alphabet"`
}

// DefaultWeights is the 40/20/20/20 split.
var DefaultWeights = Weights{Target: 40, Word: 20, Icon: 20, Alphabet: 20}

// Validate rejects negative weights and an all-zero table.
func (w Weights) Validate() error {
	if w.Target < 0 || w.Word < 0 || w.Icon < 0 || w.Alphabet < 0 {
		return fmt.Errorf("reel: negative weight in %+v", w)
	}
	if w.total() == 0 {
		return errors.New("reel: weights sum to zero")
	}
	return nil
}

func (w Weights) total() int { return w.Target + w.Word + w.Icon + w.Alphabet }

type bucket uint8

const (
	bucketTarget bucket = iota
	bucketWord
	bucketIcon
	bucketAlphabet
)

// pick maps n in [0,total) onto a bucket by cumulative weight.
func (w Weights) pick(n int) bucket {
	cumulative := w.Target
	if n < cumulative {
		return bucketTarget
	}
	cumulative += w.Word
	if n < cumulative {
		return bucketWord
	}
	cumulative += w.Icon
	if n < cumulative {
		return bucketIcon
	}
	return bucketAlphabet
}

// Generator draws reels. It is not safe for concurrent use; each engine owns one.
type Generator struct {
	weights Weights
	icons   []Icon
	rng     *rand.Rand
}

// NewGenerator builds a generator. Zero weights or an empty icon set fall back to the defaults.
func NewGenerator(w Weights, icons []Icon, rng *rand.Rand) *Generator {
	if w.Validate() != nil {
		w = DefaultWeights
	}
	if len(icons) == 0 {
		icons = DefaultIcons
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Generator{
		weights: w,
		icons:   append([]Icon(nil), icons...),
		rng:     rng,
	}
}

// Generate returns a fresh reel of length slots for the given word and target letter.
// A non-positive length means DefaultLength.
func (g *Generator) Generate(word []rune, target rune, length int) ([]Symbol, error) {
	if len(word) == 0 {
		return nil, ErrEmptyWord
	}
	if length <= 0 {
		length = DefaultLength
	}
	others := otherLetters(word, target)
	total := g.weights.total()

	out := make([]Symbol, length)
	for i := range out {
		switch g.weights.pick(g.rng.Intn(total)) {
		case bucketTarget:
			out[i] = Letter(target)
		case bucketWord:
			if len(others) == 0 {
				out[i] = Letter(target)
				continue
			}
			out[i] = Letter(others[g.rng.Intn(len(others))])
		case bucketIcon:
			out[i] = IconSymbol(g.icons[g.rng.Intn(len(g.icons))])
		default:
			out[i] = Letter(rune(Alphabet[g.rng.Intn(len(Alphabet))]))
		}
	}

	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

// otherLetters lists the distinct letters of word other than target, in first-seen order.
func otherLetters(word []rune, target rune) []rune {
	seen := make(map[rune]struct{}, len(word))
	var out []rune
	for _, r := range word {
		if r == target {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
