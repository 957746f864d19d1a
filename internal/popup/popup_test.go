package popup

import (
	"strings"
	"testing"

	"github.com/bastiangx/histcomp/internal/term"
	"github.com/bastiangx/histcomp/internal/term/termtest"
	"github.com/bastiangx/histcomp/pkg/config"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleBorder(t *testing.T) *term.Border {
	t.Helper()
	b, err := BorderByName("simple")
	require.NoError(t, err)
	return b
}

// prompt puts "$ " + line on row and leaves the cursor after it.
func prompt(screen *termtest.Screen, row int, line string) {
	screen.MoveTo(row, 1)
	screen.Write([]byte("$ " + line))
}

func TestLayout(t *testing.T) {
	p := New(Options{MaxWidth: 10, MaxHeight: 5})
	bordered := New(Options{MaxWidth: 10, MaxHeight: 5, Border: &term.Border{}})

	testCases := []struct {
		name   string
		popup  *Popup
		words  []string
		cursor term.Position
		rows   int
		cols   int
		want   Geometry
	}{
		{
			name:   "fits below",
			popup:  p,
			words:  []string{"status", "stash"},
			cursor: term.Position{Row: 3, Col: 9},
			rows:   24, cols: 80,
			want: Geometry{InnerWidth: 6, InnerHeight: 2, OuterWidth: 6, OuterHeight: 2, Row: 4, Col: 9},
		},
		{
			name:   "border adds a cell per side",
			popup:  bordered,
			words:  []string{"status", "stash"},
			cursor: term.Position{Row: 3, Col: 9},
			rows:   24, cols: 80,
			want: Geometry{InnerWidth: 6, InnerHeight: 2, OuterWidth: 8, OuterHeight: 4, Row: 4, Col: 9},
		},
		{
			name:   "width capped",
			popup:  p,
			words:  []string{"a-very-long-candidate"},
			cursor: term.Position{Row: 1, Col: 1},
			rows:   24, cols: 80,
			want: Geometry{InnerWidth: 10, InnerHeight: 1, OuterWidth: 10, OuterHeight: 1, Row: 2, Col: 1},
		},
		{
			name:   "height capped",
			popup:  p,
			words:  strings.Fields("a b c d e f g"),
			cursor: term.Position{Row: 1, Col: 1},
			rows:   24, cols: 80,
			want: Geometry{InnerWidth: 1, InnerHeight: 5, OuterWidth: 1, OuterHeight: 5, Row: 2, Col: 1},
		},
		{
			name:   "scrolls at the bottom",
			popup:  bordered,
			words:  []string{"status", "stash"},
			cursor: term.Position{Row: 23, Col: 5},
			rows:   24, cols: 80,
			want: Geometry{InnerWidth: 6, InnerHeight: 2, OuterWidth: 8, OuterHeight: 4, Row: 21, Col: 5, Scroll: 3},
		},
		{
			name:   "shifted left at the right edge",
			popup:  bordered,
			words:  []string{"status"},
			cursor: term.Position{Row: 1, Col: 18},
			rows:   24, cols: 20,
			want: Geometry{InnerWidth: 6, InnerHeight: 1, OuterWidth: 8, OuterHeight: 3, Row: 2, Col: 13},
		},
		{
			name:   "empty word still one column",
			popup:  p,
			words:  []string{""},
			cursor: term.Position{Row: 1, Col: 1},
			rows:   24, cols: 80,
			want: Geometry{InnerWidth: 1, InnerHeight: 1, OuterWidth: 1, OuterHeight: 1, Row: 2, Col: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.popup.Layout(tc.words, tc.cursor, tc.rows, tc.cols)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	testCases := []struct {
		input    string
		width    int
		expected string
	}{
		{"status", 10, "status"},
		{"status", 6, "status"},
		{"kubernetes", 6, "kuber…"},
		{"kubernetes", 4, "kub…"},
		{"kubernetes", 3, "kub"},
		{"kubernetes", 1, "k"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Truncate(tc.input, tc.width), "Truncate(%q, %d)", tc.input, tc.width)
	}
}

func TestRenderDraws(t *testing.T) {
	screen := termtest.NewScreen(10, 30)
	prompt(screen, 3, "git st")
	tty := term.New(screen, screen)
	p := New(Options{MaxWidth: 10, MaxHeight: 5, Border: simpleBorder(t)})

	pos, err := p.Render(tty, []string{"status", "stash"}, 1)
	require.NoError(t, err)
	assert.Equal(t, term.Position{Row: 3, Col: 9}, pos)

	pad := strings.Repeat(" ", 8)
	assert.Equal(t, "$ git st", screen.Line(3))
	assert.Equal(t, pad+"+------+", screen.Line(4), screen.String())
	assert.Equal(t, pad+"|status|", screen.Line(5))
	assert.Equal(t, pad+"|stash |", screen.Line(6))
	assert.Equal(t, pad+"+------+", screen.Line(7))

	row, col := screen.Cursor()
	assert.Equal(t, 3, row)
	assert.Equal(t, 9, col)
	assert.False(t, screen.CursorHidden())
}

func TestRenderTruncates(t *testing.T) {
	screen := termtest.NewScreen(10, 30)
	prompt(screen, 1, "k")
	tty := term.New(screen, screen)
	p := New(Options{MaxWidth: 6})

	_, err := p.Render(tty, []string{"kubectl", "kubernetes"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "   kubec…", screen.Line(2))
	assert.Equal(t, "   kuber…", screen.Line(3))
}

func TestClearRestoresScreen(t *testing.T) {
	for _, border := range []string{"none", "rounded", "square", "double", "simple"} {
		t.Run(border, func(t *testing.T) {
			screen := termtest.NewScreen(12, 40)
			prompt(screen, 4, "git st")
			before := screen.Lines()

			b, err := BorderByName(border)
			require.NoError(t, err)
			tty := term.New(screen, screen)
			p := New(Options{MaxWidth: 20, MaxHeight: 8, Border: b})
			words := []string{"status", "stash", "stage"}

			_, err = p.Render(tty, words, 0)
			require.NoError(t, err)
			assert.NotEqual(t, before, screen.Lines())

			require.NoError(t, p.Clear(tty, words))
			assert.Equal(t, before, screen.Lines(), screen.String())

			row, col := screen.Cursor()
			assert.Equal(t, 4, row)
			assert.Equal(t, 9, col)
		})
	}
}

func TestRenderScrolls(t *testing.T) {
	screen := termtest.NewScreen(6, 30)
	prompt(screen, 1, "old output")
	prompt(screen, 6, "g")
	tty := term.New(screen, screen)
	p := New(Options{MaxWidth: 10, Border: simpleBorder(t)})
	words := []string{"git", "go"}

	pos, err := p.Render(tty, words, 0)
	require.NoError(t, err)
	assert.Equal(t, term.Position{Row: 2, Col: 4}, pos)
	assert.Equal(t, "$ g", screen.Line(2), screen.String())
	assert.Equal(t, "   +---+", screen.Line(3))
	assert.Equal(t, "   |git|", screen.Line(4))
	assert.Equal(t, "   |go |", screen.Line(5))
	assert.Equal(t, "   +---+", screen.Line(6))

	row, col := screen.Cursor()
	assert.Equal(t, 2, row)
	assert.Equal(t, 4, col)

	// once scrolled, clearing leaves only the prompt
	require.NoError(t, p.Clear(tty, words))
	assert.Equal(t, []string{"", "$ g", "", "", "", ""}, screen.Lines())
}

func TestVisible(t *testing.T) {
	words := []string{"status", "git", "commit", "stash", "-m"}

	testCases := []struct {
		name   string
		rows   int
		border *term.Border
		height int
		want   []string
	}{
		{"short screen with border", 5, simpleBorder(t), 5, []string{"status", "git"}},
		{"short screen without border", 5, nil, 5, []string{"status", "git", "commit", "stash"}},
		{"max height", 24, simpleBorder(t), 3, []string{"status", "git", "commit"}},
		{"everything fits", 24, nil, 0, words},
		{"no room at all", 2, simpleBorder(t), 5, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			screen := termtest.NewScreen(tc.rows, 40)
			prompt(screen, 1, "git ")
			tty := term.New(screen, screen)
			p := New(Options{MaxWidth: 20, MaxHeight: tc.height, Border: tc.border})

			got, err := p.Visible(tty, words)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			row, col := screen.Cursor()
			assert.Equal(t, 1, row)
			assert.Equal(t, 7, col)
		})
	}
}

func TestRenderVisibleKeepsSelectionOnScreen(t *testing.T) {
	screen := termtest.NewScreen(5, 40)
	prompt(screen, 1, "git ")
	tty := term.New(screen, screen)
	p := New(Options{MaxWidth: 20, MaxHeight: 5, Border: simpleBorder(t)})

	words, err := p.Visible(tty, []string{"status", "git", "commit", "stash", "-m"})
	require.NoError(t, err)
	_, err = p.Render(tty, words, len(words)-1)
	require.NoError(t, err)

	assert.Equal(t, "      |status|", screen.Line(3), screen.String())
	assert.Equal(t, "      |git   |", screen.Line(4))
	assert.NotContains(t, screen.String(), "stash")
}

func TestBorderByName(t *testing.T) {
	b, err := BorderByName("none")
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = BorderByName("rounded")
	require.NoError(t, err)
	assert.Equal(t, "╭", b.TopLeft)
	assert.Equal(t, "╯", b.BottomRight)

	b, err = BorderByName("double")
	require.NoError(t, err)
	assert.Equal(t, "═", b.Top)

	_, err = BorderByName("dotted")
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Popup

	opts, err := FromConfig(cfg, false)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxWidth, opts.MaxWidth)
	assert.NotNil(t, opts.Border)
	assert.Equal(t, termenv.ANSI256Color(60), opts.Selected.Bg)
	assert.True(t, opts.Selected.Bold)
	assert.False(t, opts.Selected.Reverse)

	opts, err = FromConfig(cfg, true)
	require.NoError(t, err)
	assert.Equal(t, termenv.NoColor{}, opts.Normal.Fg)
	assert.True(t, opts.Selected.Reverse)
	assert.Equal(t, "\x1b[0;1;7m", opts.Selected.Sequence())

	cfg.ColorProfile = "sepia"
	_, err = FromConfig(cfg, false)
	assert.Error(t, err)
}
