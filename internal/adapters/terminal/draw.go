package terminal

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Layout rows around the play area.
const (
	hudRows    = 2
	footerRows = 1
)

const (
	footerHelp   = "Enter play  i intro  r reset  s sound  l letter  f forgive  n not yet  q quit"
	popGlyph     = '✦'
	progressFull = '█'
	progressNone = '░'
	boxPadding   = 2
	maxBoxWidth  = 56
)

var (
	styleText   = tcell.StyleDefault
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHeart  = tcell.StyleDefault.Foreground(tcell.ColorHotPink)
	stylePop    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleBar    = tcell.StyleDefault.Foreground(tcell.ColorHotPink)
	styleBox    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
	styleTitle  = styleBox.Bold(true)
	styleNotice = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// playArea returns the play area size for a screen of w by h cells.
func playArea(w, h int) (int, int) {
	return max(w-1, 1), max(h-hudRows-footerRows, 1)
}

func draw(screen tcell.Screen, f Frame) {
	screen.Clear()
	w, h := screen.Size()

	drawHUD(screen, w, f)
	for _, t := range f.Hearts {
		drawGlyph(screen, int(t.X), int(t.Y)+hudRows, t.Glyph, styleHeart)
	}
	for _, t := range f.Popped {
		screen.SetContent(int(t.X), int(t.Y)+hudRows, popGlyph, nil, stylePop)
	}
	if f.Reply != nil {
		drawBox(screen, w, h, f.Reply.Title, f.Reply.Body+"\n\n"+f.Reply.Closing, "")
	} else if f.Overlay != nil {
		action := ""
		if f.Overlay.Replay {
			action = "[Enter] play"
		}
		drawBox(screen, w, h, f.Overlay.Title, f.Overlay.Description, action)
	}

	footer, style := footerHelp, styleDim
	if f.Notice != "" {
		footer, style = f.Notice, styleNotice
	}
	drawText(screen, 0, h-1, w, footer, style)
	screen.Show()
}

func drawHUD(screen tcell.Screen, w int, f Frame) {
	letter := "locked"
	if f.Letter {
		letter = "ready"
	}
	sfx := "OFF"
	if f.Sound {
		sfx = "ON"
	}
	hud := fmt.Sprintf("Score %d/%d  Time %ds  Combo %d  SFX: %s  Letter: %s",
		f.Score, f.Goal, f.Remaining, f.Combo, sfx, letter)
	drawText(screen, 0, 0, w, hud, styleText)

	filled := 0
	if f.Goal > 0 {
		filled = min(f.Score*w/f.Goal, w)
	}
	for x := 0; x < w; x++ {
		r := progressNone
		if x < filled {
			r = progressFull
		}
		screen.SetContent(x, 1, r, nil, styleBar)
	}
}

func drawGlyph(screen tcell.Screen, x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	screen.SetContent(x, y, runes[0], runes[1:], style)
}

// drawText writes s from (x, y), clipped to width.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	col := x
	for _, r := range s {
		if col >= x+width {
			return
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}

// drawBox draws a centred panel with a title, wrapped body and an optional
// action line.
func drawBox(screen tcell.Screen, w, h int, title, body, action string) {
	inner := min(maxBoxWidth, w-2*boxPadding-2)
	if inner < 8 {
		return
	}
	lines := wrap(body, inner)
	rows := len(lines) + 2
	if action != "" {
		rows += 2
	}
	bw, bh := inner+2*boxPadding, rows+2
	left, top := (w-bw)/2, max((h-bh)/2, 0)

	for y := top; y < top+bh && y < h; y++ {
		for x := left; x < left+bw; x++ {
			screen.SetContent(x, y, ' ', nil, styleBox)
		}
	}
	row := top + 1
	drawText(screen, left+boxPadding, row, inner, title, styleTitle)
	row += 2
	for _, l := range lines {
		drawText(screen, left+boxPadding, row, inner, l, styleBox)
		row++
	}
	if action != "" {
		drawText(screen, left+boxPadding, row+1, inner, action, styleTitle)
	}
}

// wrap splits s into lines of at most width runes, keeping explicit breaks.
func wrap(s string, width int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			switch {
			case line == "":
				line = word
			case len([]rune(line))+1+len([]rune(word)) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		out = append(out, line)
	}
	return out
}
