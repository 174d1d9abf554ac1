// internal/tui/draw.go
//
// Rendering. Layout, top to bottom:
//   row 0  title and timer (00:SS/00:30)
//   row 1  hearts, one per starting life
//   row 3  letter cells, colored by lock status
//   row 5+ reels, five visible slots each, centered row marked with arrows
//   below  status message and key hints

package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/robalobadob/resetslot/internal/game"
	"github.com/robalobadob/resetslot/internal/reel"
)

const (
	visibleSlots = 5
	reelWidth    = 5
	reelsTop     = 5
)

var (
	styleDefault = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleHeart   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleCorrect = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleWrong   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleTimeout = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleActive  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	styleCenter  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLocked  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
)

var iconGlyphs = map[reel.Icon]rune{
	reel.IconLime:   '◍',
	reel.IconStar:   '★',
	reel.IconCherry: '●',
	reel.IconClover: '♣',
}

// glyph is the single cell used to show a symbol.
func glyph(s reel.Symbol) rune {
	if s.IsLetter() {
		return s.Letter
	}
	if g, ok := iconGlyphs[s.Icon]; ok {
		return g
	}
	return '?'
}

// Timer formats the countdown the way the header shows it.
func Timer(left, total int) string {
	return fmt.Sprintf("00:%02d/00:%02d", left, total)
}

// Draw renders the current snapshot.
func (a *App) Draw() {
	snap := a.engine.Snapshot()
	a.screen.Clear()
	w, _ := a.screen.Size()

	a.text(1, 0, "RESET WORD", styleTitle)
	timer := Timer(snap.SecondsLeft, snap.RoundSeconds)
	a.text(w-len(timer)-1, 0, timer, styleDefault)

	a.drawHearts(snap)
	a.drawLetters(snap)
	bottom := a.drawReels(snap)

	a.text(1, bottom+1, a.message(snap), styleDefault)
	a.text(1, bottom+2, hint(snap), styleDim)
	a.screen.Show()
}

func (a *App) drawHearts(snap game.Snapshot) {
	total := a.engine.Settings().Lives
	for i := 0; i < total; i++ {
		if i < snap.Lives {
			a.screen.SetContent(1+2*i, 1, '♥', nil, styleHeart)
		} else {
			a.screen.SetContent(1+2*i, 1, '♡', nil, styleDim)
		}
	}
}

func (a *App) drawLetters(snap game.Snapshot) {
	for i, target := range []rune(snap.Word) {
		ch, style := '_', styleDim
		res := snap.LockResults[i]
		switch res.Status {
		case game.StatusCorrect:
			ch, style = target, styleCorrect
		case game.StatusWrong:
			ch, style = '?', styleWrong
			if res.Char != "" {
				ch = []rune(res.Char)[0]
			} else if g, ok := iconGlyphs[res.Icon]; ok {
				ch = g
			}
		case game.StatusTimedOut:
			ch, style = '·', styleTimeout
		default:
			if i == snap.ActiveIndex && !snap.Phase.Terminal() {
				ch, style = target, styleActive
			}
		}
		x := 1 + 4*i
		a.screen.SetContent(x, 3, '[', nil, styleDim)
		a.screen.SetContent(x+1, 3, ch, nil, style)
		a.screen.SetContent(x+2, 3, ']', nil, styleDim)
	}
}

// drawReels draws every reel and returns the last row used.
func (a *App) drawReels(snap game.Snapshot) int {
	center := len(snap.Reels) / 2
	half := visibleSlots / 2
	for ri, symbols := range snap.Reels {
		n := len(symbols)
		if n == 0 {
			continue
		}
		mid := game.DisplayIndex(snap.SpinOffsets[ri], n)
		x := 3 + ri*reelWidth
		for row := -half; row <= half; row++ {
			idx := ((mid+row)%n + n) % n
			style := styleDim
			if row == 0 {
				style = styleDefault
				if ri == center {
					style = styleCenter
					if snap.Highlight == idx {
						style = styleLocked
					}
				}
			}
			a.screen.SetContent(x+1, reelsTop+half+row, glyph(symbols[idx]), nil, style)
		}
	}
	mid := reelsTop + half
	right := 3 + len(snap.Reels)*reelWidth
	a.screen.SetContent(1, mid, '▶', nil, styleCenter)
	a.screen.SetContent(right, mid, '◀', nil, styleCenter)
	return reelsTop + visibleSlots
}

func (a *App) message(snap game.Snapshot) string {
	switch snap.Phase {
	case game.PhaseWon:
		return "You Did It!"
	case game.PhaseLost:
		return "Out of lives."
	case game.PhaseLocked:
		if snap.LockResults[snap.ActiveIndex].Status == game.StatusTimedOut {
			return "Time's up."
		}
	}
	return a.status
}

func hint(snap game.Snapshot) string {
	keys := []string{}
	switch snap.Phase {
	case game.PhaseSpinning:
		keys = append(keys, "Space lock")
	case game.PhaseLocked:
		if snap.LockResults[snap.ActiveIndex].Status == game.StatusCorrect {
			keys = append(keys, "Enter next")
		} else {
			keys = append(keys, "Enter retry")
		}
	case game.PhaseWon, game.PhaseLost, game.PhaseIdle:
		keys = append(keys, "Enter play again")
	}
	keys = append(keys, "r new word", "Esc quit")
	return strings.Join(keys, " · ")
}

func (a *App) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
