// internal/reel/symbol.go
//
// Symbol definitions for slot reels.
// A reel slot holds either a letter (A–Z) or a decorative icon. Icons never
// match a target letter; they exist as hazards on the center reel.

package reel

import (
	"encoding/json"
	"errors"
)

// Kind tags what a Symbol carries.
type Kind uint8

const (
	KindLetter Kind = iota
	KindIcon
)

// Icon identifies a decorative reel symbol.
type Icon string

const (
	IconLime   Icon = "lime"
	IconStar   Icon = "star"
	IconCherry Icon = "cherry"
	IconClover Icon = "clover"
)

// DefaultIcons is the icon set drawn from when no tuning overrides it.
var DefaultIcons = []Icon{IconLime, IconStar, IconCherry, IconClover}

// Symbol is one slot of a reel.
type Symbol struct {
	Kind   Kind
	Letter rune // set when Kind == KindLetter
	Icon   Icon // set when Kind == KindIcon
}

// Letter builds a letter symbol.
func Letter(r rune) Symbol { return Symbol{Kind: KindLetter, Letter: r} }

// IconSymbol builds an icon symbol.
func IconSymbol(i Icon) Symbol { return Symbol{Kind: KindIcon, Icon: i} }

// IsLetter reports whether s carries a letter.
func (s Symbol) IsLetter() bool { return s.Kind == KindLetter }

// String renders a letter as itself and an icon as its id.
func (s Symbol) String() string {
	if s.Kind == KindIcon {
		return string(s.Icon)
	}
	return string(s.Letter)
}

// symbolJSON is the wire shape: {"letter":"A"} or {"icon":"star"}.
type symbolJSON struct {
	Letter string `json:"letter,omitempty"`
	Icon   Icon   `json:"icon,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s Symbol) MarshalJSON() ([]byte, error) {
	if s.Kind == KindIcon {
		return json.Marshal(symbolJSON{Icon: s.Icon})
	}
	return json.Marshal(symbolJSON{Letter: string(s.Letter)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Symbol) UnmarshalJSON(b []byte) error {
	var v symbolJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch {
	case v.Icon != "":
		*s = IconSymbol(v.Icon)
	case len([]rune(v.Letter)) == 1:
		*s = Letter([]rune(v.Letter)[0])
	default:
		return errors.New("reel: symbol needs exactly one letter or an icon")
	}
	return nil
}
