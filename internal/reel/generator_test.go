package reel

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func newTestGenerator(seed int64) *Generator {
	return NewGenerator(DefaultWeights, DefaultIcons, rand.New(rand.NewSource(seed)))
}

func TestGenerateLength(t *testing.T) {
	g := newTestGenerator(1)
	cases := []struct {
		length int
		want   int
	}{
		{20, 20},
		{1, 1},
		{57, 57},
		{0, DefaultLength},
		{-3, DefaultLength},
	}
	for _, tc := range cases {
		got, err := g.Generate([]rune("FOCUS"), 'F', tc.length)
		if err != nil {
			t.Fatalf("Generate(%d): %v", tc.length, err)
		}
		if len(got) != tc.want {
			t.Errorf("Generate(%d) length = %d, want %d", tc.length, len(got), tc.want)
		}
	}
}

func TestGenerateEmptyWord(t *testing.T) {
	g := newTestGenerator(1)
	if _, err := g.Generate(nil, 'A', 20); !errors.Is(err, ErrEmptyWord) {
		t.Fatalf("expected ErrEmptyWord, got %v", err)
	}
}

func TestGenerateSymbolsAreKnown(t *testing.T) {
	g := newTestGenerator(7)
	word := []rune("CENTER")
	icons := map[Icon]bool{}
	for _, ic := range DefaultIcons {
		icons[ic] = true
	}
	for round := 0; round < 500; round++ {
		reel, err := g.Generate(word, 'T', 20)
		if err != nil {
			t.Fatal(err)
		}
		for i, s := range reel {
			switch s.Kind {
			case KindLetter:
				if !strings.ContainsRune(Alphabet, s.Letter) && !strings.ContainsRune(string(word), s.Letter) {
					t.Fatalf("round %d slot %d: unexpected letter %q", round, i, s.Letter)
				}
			case KindIcon:
				if !icons[s.Icon] {
					t.Fatalf("round %d slot %d: unexpected icon %q", round, i, s.Icon)
				}
			default:
				t.Fatalf("round %d slot %d: unknown kind %d", round, i, s.Kind)
			}
		}
	}
}

func TestGenerateTargetFrequency(t *testing.T) {
	g := newTestGenerator(42)
	word := []rune("FOCUS")
	var hits, total int
	for round := 0; round < 2000; round++ {
		reel, err := g.Generate(word, 'F', 20)
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range reel {
			total++
			if s.IsLetter() && s.Letter == 'F' {
				hits++
			}
		}
	}
	// 40% direct plus 1/26 of the alphabet bucket.
	freq := float64(hits) / float64(total)
	if freq < 0.38 || freq > 0.44 {
		t.Errorf("target frequency = %.3f, want about 0.41", freq)
	}
}

func TestGenerateSingleLetterWordFallsBackToTarget(t *testing.T) {
	g := newTestGenerator(3)
	var hits, total int
	for round := 0; round < 2000; round++ {
		reel, _ := g.Generate([]rune("AAA"), 'A', 20)
		for _, s := range reel {
			total++
			if s.IsLetter() && s.Letter == 'A' {
				hits++
			}
		}
	}
	// Word bucket has no other letters, so it folds into the target: ~60% + 20%/26.
	freq := float64(hits) / float64(total)
	if freq < 0.57 || freq > 0.64 {
		t.Errorf("target frequency = %.3f, want about 0.61", freq)
	}
}

func TestGenerateIconsOnlyWeights(t *testing.T) {
	g := NewGenerator(Weights{Icon: 1}, []Icon{IconStar}, rand.New(rand.NewSource(9)))
	reel, err := g.Generate([]rune("CALM"), 'C', 20)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range reel {
		if s != IconSymbol(IconStar) {
			t.Fatalf("slot %d = %v, want star icon", i, s)
		}
	}
}

func TestGenerateReturnsFreshSlices(t *testing.T) {
	g := newTestGenerator(5)
	a, _ := g.Generate([]rune("MIND"), 'M', 20)
	b, _ := g.Generate([]rune("MIND"), 'M', 20)
	a[0] = IconSymbol(IconLime)
	b[0] = Letter('Z')
	if a[0] == b[0] {
		t.Fatal("reels share backing storage")
	}
}

func TestWeightsValidate(t *testing.T) {
	cases := []struct {
		name string
		w    Weights
		ok   bool
	}{
		{"default", DefaultWeights, true},
		{"single bucket", Weights{Target: 1}, true},
		{"zero", Weights{}, false},
		{"negative", Weights{Target: 50, Icon: -1}, false},
	}
	for _, tc := range cases {
		err := tc.w.Validate()
		if (err == nil) != tc.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tc.name, err, tc.ok)
		}
	}
}

func TestOtherLettersDistinct(t *testing.T) {
	got := string(otherLetters([]rune("STRENGTH"), 'T'))
	if got != "SRENGH" {
		t.Errorf("otherLetters = %q, want %q", got, "SRENGH")
	}
}

func TestSymbolJSON(t *testing.T) {
	in := []Symbol{Letter('Q'), IconSymbol(IconCherry)}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `[{"letter":"Q"},{"icon":"cherry"}]` {
		t.Fatalf("unexpected JSON %s", b)
	}
	var out []Symbol
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out[0] != in[0] || out[1] != in[1] {
		t.Errorf("decoded %v, want %v", out, in)
	}
	if err := json.Unmarshal([]byte(`{"letter":"AB"}`), &out[0]); err == nil {
		t.Error("expected error for two-letter symbol")
	}
}
