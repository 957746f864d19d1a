/*
Package popup draws the suggestion list just below the cursor and erases it
again.

A Popup keeps no state between calls. Render and Clear both derive the same
Geometry from the word list, the cursor position and the terminal size, so a
Clear with the words of the last Render blanks exactly the cells that Render
painted. Selection and content always come from the caller.
*/
package popup

import (
	"fmt"

	"github.com/bastiangx/histcomp/internal/term"
	"github.com/bastiangx/histcomp/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

const ellipsis = "…"

// Options is everything a Popup needs to lay out and paint.
type Options struct {
	MaxWidth  int
	MaxHeight int
	// Border is nil for a borderless popup.
	Border   *term.Border
	Normal   term.Style
	Selected term.Style
}

// Popup renders candidate lists.
type Popup struct {
	opts Options
}

// New returns a Popup painting with opts.
func New(opts Options) *Popup {
	return &Popup{opts: opts}
}

// Geometry is the layout of one render pass. Row and Col are the top left
// cell of the outer rectangle, border included.
type Geometry struct {
	InnerWidth  int
	InnerHeight int
	OuterWidth  int
	OuterHeight int
	Row         int
	Col         int
	// Scroll is how many lines the screen must move up to fit the popup.
	Scroll int
}

func (p *Popup) pad() int {
	if p.opts.Border != nil {
		return 1
	}
	return 0
}

// height is how many of n entries fit below a cursor on a screen of rows
// rows, keeping the cursor row itself free.
func (p *Popup) height(n, rows int) int {
	if p.opts.MaxHeight > 0 {
		n = min(n, p.opts.MaxHeight)
	}
	return max(min(n, rows-1-2*p.pad()), 0)
}

// Visible cuts words down to the entries a Render on t can show. Callers
// navigate the result, so the selection always sits on a drawn row.
func (p *Popup) Visible(t *term.Terminal, words []string) ([]string, error) {
	rows, _, err := t.Size()
	if err != nil {
		return nil, err
	}
	return words[:p.height(len(words), rows)], nil
}

// Layout places words under cursor on a rows x cols screen. The cursor
// row is the one the popup hangs from; it is never covered.
func (p *Popup) Layout(words []string, cursor term.Position, rows, cols int) Geometry {
	pad := p.pad()

	width := 0
	for _, w := range words {
		width = max(width, runewidth.StringWidth(w))
	}
	if p.opts.MaxWidth > 0 {
		width = min(width, p.opts.MaxWidth)
	}
	width = max(min(width, cols-2*pad), 1)

	height := p.height(len(words), rows)

	g := Geometry{
		InnerWidth:  width,
		InnerHeight: height,
		OuterWidth:  width + 2*pad,
		OuterHeight: height + 2*pad,
	}

	cursorRow := cursor.Row
	if over := cursorRow + g.OuterHeight - rows; over > 0 {
		g.Scroll = over
		cursorRow -= over
	}
	g.Row = cursorRow + 1
	g.Col = cursor.Col
	if g.Col+g.OuterWidth-1 > cols {
		g.Col = max(cols-g.OuterWidth+1, 1)
	}
	return g
}

// Truncate fits s into width columns. Cut text ends in an ellipsis unless
// width is 3 or less, where the text is simply cut.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// Render draws words with the entry at selected highlighted and returns the
// cursor position afterwards, which differs from the one on entry only if
// the screen had to scroll.
func (p *Popup) Render(t *term.Terminal, words []string, selected int) (term.Position, error) {
	cursor, err := t.CursorPosition()
	if err != nil {
		return term.Position{}, err
	}
	rows, cols, err := t.Size()
	if err != nil {
		return term.Position{}, err
	}
	g := p.Layout(words, cursor, rows, cols)
	if g.InnerHeight == 0 {
		return cursor, nil
	}

	t.HideCursor()
	if g.Scroll > 0 {
		t.Goto(rows, 1)
		t.Newlines(g.Scroll)
		cursor.Row -= g.Scroll
	}

	pad := p.pad()
	top, left := g.Row+pad, g.Col+pad
	t.DrawRect(top, left, g.InnerWidth, g.InnerHeight, p.opts.Normal, p.opts.Border)
	for i, w := range words[:g.InnerHeight] {
		style := p.opts.Normal
		if i == selected {
			style = p.opts.Selected
			t.DrawRect(top+i, left, g.InnerWidth, 1, style, nil)
		}
		t.PrintStyled(top+i, left, Truncate(w, g.InnerWidth), style)
	}
	t.ResetStyle()
	t.Goto(cursor.Row, cursor.Col)
	t.ShowCursor()
	return cursor, t.Flush()
}

// Clear blanks the area a Render of words would cover at the current cursor.
// The cursor is left where it was.
func (p *Popup) Clear(t *term.Terminal, words []string) error {
	cursor, err := t.CursorPosition()
	if err != nil {
		return err
	}
	rows, cols, err := t.Size()
	if err != nil {
		return err
	}
	g := p.Layout(words, cursor, rows, cols)
	if g.InnerHeight == 0 {
		return nil
	}

	t.SaveCursor()
	t.DrawRect(g.Row, g.Col, g.OuterWidth, min(g.OuterHeight, rows-g.Row+1), term.Style{}, nil)
	t.ResetStyle()
	t.RestoreCursor()
	return t.Flush()
}

// BorderByName returns the glyphs for one of none, rounded, square, double
// or simple. "none" and "" give a nil border.
func BorderByName(name string) (*term.Border, error) {
	var b lipgloss.Border
	switch name {
	case "", "none":
		return nil, nil
	case "rounded":
		b = lipgloss.RoundedBorder()
	case "square":
		b = lipgloss.NormalBorder()
	case "double":
		b = lipgloss.DoubleBorder()
	case "simple":
		b = lipgloss.Border{
			Top: "-", Bottom: "-", Left: "|", Right: "|",
			TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
		}
	default:
		return nil, fmt.Errorf("unknown border %q", name)
	}
	return &term.Border{
		TopLeft:     b.TopLeft,
		Top:         b.Top,
		TopRight:    b.TopRight,
		Right:       b.Right,
		BottomRight: b.BottomRight,
		Bottom:      b.Bottom,
		BottomLeft:  b.BottomLeft,
		Left:        b.Left,
	}, nil
}

// ProfileByName maps a color_profile value to a termenv profile.
func ProfileByName(name string) (termenv.Profile, error) {
	switch name {
	case "truecolor":
		return termenv.TrueColor, nil
	case "", "ansi256":
		return termenv.ANSI256, nil
	case "ansi":
		return termenv.ANSI, nil
	case "ascii":
		return termenv.Ascii, nil
	}
	return termenv.Ascii, fmt.Errorf("unknown color profile %q", name)
}

// FromConfig builds Options from the [popup] section. With noColor set the
// ascii profile is used whatever the config says, and the selection is shown
// in reverse video instead.
func FromConfig(cfg config.PopupConfig, noColor bool) (Options, error) {
	border, err := BorderByName(cfg.Border)
	if err != nil {
		return Options{}, err
	}
	profile, err := ProfileByName(cfg.ColorProfile)
	if err != nil {
		return Options{}, err
	}
	if noColor {
		profile = termenv.Ascii
	}

	opts := Options{
		MaxWidth:  cfg.MaxWidth,
		MaxHeight: cfg.MaxHeight,
		Border:    border,
		Normal: term.Style{
			Fg: profile.Color(cfg.Fg),
			Bg: profile.Color(cfg.Bg),
		},
		Selected: term.Style{
			Fg:   profile.Color(cfg.SelectedFg),
			Bg:   profile.Color(cfg.SelectedBg),
			Bold: cfg.SelectedBold,
		},
	}
	if profile == termenv.Ascii {
		opts.Selected.Reverse = true
	}
	return opts, nil
}
