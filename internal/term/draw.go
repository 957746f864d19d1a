package term

import (
	"strings"

	"github.com/muesli/termenv"
)

// Style is a set of SGR attributes. Nil colors leave the terminal default.
type Style struct {
	Fg      termenv.Color
	Bg      termenv.Color
	Bold    bool
	Reverse bool
}

// Sequence returns the SGR sequence selecting s. It starts with a reset so
// attributes of a previous style never leak into this one.
func (s Style) Sequence() string {
	params := []string{termenv.ResetSeq}
	if s.Bold {
		params = append(params, termenv.BoldSeq)
	}
	if s.Reverse {
		params = append(params, termenv.ReverseSeq)
	}
	if s.Fg != nil {
		if seq := s.Fg.Sequence(false); seq != "" {
			params = append(params, seq)
		}
	}
	if s.Bg != nil {
		if seq := s.Bg.Sequence(true); seq != "" {
			params = append(params, seq)
		}
	}
	return termenv.CSI + strings.Join(params, ";") + "m"
}

// Border is the glyph set drawn around a rectangle.
// Every glyph must be one column wide.
type Border struct {
	TopLeft     string
	Top         string
	TopRight    string
	Right       string
	BottomRight string
	Bottom      string
	BottomLeft  string
	Left        string
}

// PrintStyled writes text at row, col in style s. The style is left active;
// call ResetStyle once a batch of styled output is done.
func (t *Terminal) PrintStyled(row, col int, text string, s Style) {
	t.Goto(row, col)
	t.out.WriteString(s.Sequence())
	t.out.WriteString(text)
}

// DrawRect fills width x height cells at row, col with the background of s.
// A non-nil border is drawn one cell outside the filled area on every side.
func (t *Terminal) DrawRect(row, col, width, height int, s Style, border *Border) {
	if width <= 0 || height <= 0 {
		return
	}
	blank := strings.Repeat(" ", width)
	for r := 0; r < height; r++ {
		t.PrintStyled(row+r, col, blank, s)
	}
	if border == nil {
		return
	}

	t.PrintStyled(row-1, col-1, border.TopLeft+strings.Repeat(border.Top, width)+border.TopRight, s)
	for r := 0; r < height; r++ {
		t.PrintStyled(row+r, col-1, border.Left, s)
		t.PrintStyled(row+r, col+width, border.Right, s)
	}
	t.PrintStyled(row+height, col-1, border.BottomLeft+strings.Repeat(border.Bottom, width)+border.BottomRight, s)
}
