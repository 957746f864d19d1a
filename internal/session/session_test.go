package session

import (
	"errors"
	"testing"

	"github.com/bastiangx/histcomp/internal/popup"
	"github.com/bastiangx/histcomp/internal/term"
	"github.com/bastiangx/histcomp/internal/term/termtest"
	"github.com/bastiangx/histcomp/pkg/config"
	"github.com/bastiangx/histcomp/pkg/corpus"
	"github.com/bastiangx/histcomp/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const history = `git status
git stash
git status
git commit -m wip
go test ./...
`

type fixture struct {
	screen  *termtest.Screen
	tty     *term.Terminal
	popup   *popup.Popup
	model   *suggest.Model
	before  []string
	termios unix.Termios
}

// newFixture shows "$ " + line on row 3 with the cursor after it.
func newFixture(t *testing.T, line string) *fixture {
	t.Helper()
	return newScreenFixture(t, 12, 3, line)
}

// newScreenFixture is newFixture on a rows x 40 screen with the prompt on row.
func newScreenFixture(t *testing.T, rows, row int, line string) *fixture {
	t.Helper()
	screen := termtest.NewScreen(rows, 40)
	screen.MoveTo(row, 1)
	screen.Write([]byte("$ " + line))

	border, err := popup.BorderByName("simple")
	require.NoError(t, err)
	return &fixture{
		screen:  screen,
		tty:     term.New(screen, screen),
		popup:   popup.New(popup.Options{MaxWidth: 20, MaxHeight: 5, Border: border}),
		model:   suggest.Build(corpus.Parse(history).Commands),
		before:  screen.Lines(),
		termios: screen.Termios,
	}
}

func defaultOptions(t *testing.T, mode Mode) Options {
	t.Helper()
	keys, err := NewKeymap(config.DefaultConfig().Keys)
	require.NoError(t, err)
	return Options{Mode: mode, BigramWeight: 2.0, Limit: 5, Keys: keys}
}

func (f *fixture) run(t *testing.T, line string, mode Mode, keys ...string) (Result, error) {
	t.Helper()
	f.screen.Script(keys...)
	s := New(f.model, line, len(line), defaultOptions(t, mode))
	res, err := s.Run(f.tty, f.popup)
	assert.Equal(t, f.termios, f.screen.Termios, "terminal attributes must be restored")
	return res, err
}

func (f *fixture) assertCursor(t *testing.T, row, col int) {
	t.Helper()
	r, c := f.screen.Cursor()
	assert.Equal(t, row, r, "cursor row")
	assert.Equal(t, col, c, "cursor col")
}

func (f *fixture) assertOnlyPrompt(t *testing.T, want string) {
	t.Helper()
	lines := f.screen.Lines()
	assert.Equal(t, want, lines[2], f.screen.String())
	for i, l := range lines {
		if i != 2 {
			assert.Empty(t, l, "row %d\n%s", i+1, f.screen.String())
		}
	}
}

func TestAcceptSingle(t *testing.T) {
	f := newFixture(t, "git st")
	res, err := f.run(t, "git st", ModeSingle, "\r")
	require.NoError(t, err)

	assert.Equal(t, Result{Line: "git status", Cursor: 10, Emit: true}, res)
	f.assertOnlyPrompt(t, "$ git status")
	f.assertCursor(t, 3, 13)
}

func TestAcceptEnterAsLineFeed(t *testing.T) {
	f := newFixture(t, "git st")
	res, err := f.run(t, "git st", ModeSingle, "\n")
	require.NoError(t, err)
	assert.Equal(t, "git status", res.Line)
}

func TestNavigateWraps(t *testing.T) {
	testCases := []struct {
		name string
		keys []string
		want string
	}{
		{"next", []string{"\t", "\r"}, "git stash"},
		{"next wraps to first", []string{"\t", "\t", "\r"}, "git status"},
		{"prev wraps to last", []string{"\x10", "\r"}, "git stash"},
		{"next then prev", []string{"\x0e", "\x10", "\r"}, "git status"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "git st")
			res, err := f.run(t, "git st", ModeInteractive, tc.keys...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Line)
			assert.True(t, res.Emit)
		})
	}
}

func TestNavigateStaysOnScreen(t *testing.T) {
	// Five suggestions, but a 5 row screen leaves room for two bordered rows.
	testCases := []struct {
		name string
		keys []string
		want string
	}{
		{"next", []string{"\t", "\r"}, "git git"},
		{"next wraps within visible rows", []string{"\t", "\t", "\r"}, "git status"},
		{"prev wraps to last visible row", []string{"\x10", "\r"}, "git git"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newScreenFixture(t, 5, 1, "git ")
			res, err := f.run(t, "git ", ModeInteractive, tc.keys...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Line)
			assert.Equal(t, []string{"$ " + tc.want, "", "", "", ""}, f.screen.Lines(), f.screen.String())
		})
	}
}

func TestQuitLeavesScreen(t *testing.T) {
	for _, key := range []string{"\x1b", "\x07", "\x03"} {
		f := newFixture(t, "git st")
		res, err := f.run(t, "git st", ModeInteractive, "\t", key)
		require.NoError(t, err)
		assert.False(t, res.Emit)
		assert.Equal(t, f.before, f.screen.Lines(), f.screen.String())
		f.assertCursor(t, 3, 9)
	}
}

func TestEditSingleTerminates(t *testing.T) {
	f := newFixture(t, "git st")
	res, err := f.run(t, "git st", ModeSingle, "a")
	require.NoError(t, err)

	assert.Equal(t, Result{Line: "git sta", Cursor: 7, Emit: true}, res)
	f.assertOnlyPrompt(t, "$ git sta")
	f.assertCursor(t, 3, 10)
}

func TestInteractiveResuggests(t *testing.T) {
	f := newFixture(t, "git st")
	res, err := f.run(t, "git st", ModeInteractive, "a", "s", "\r")
	require.NoError(t, err)

	assert.Equal(t, Result{Line: "git stash", Cursor: 9, Emit: true}, res)
	f.assertOnlyPrompt(t, "$ git stash")
	f.assertCursor(t, 3, 12)
}

func TestInteractiveEditing(t *testing.T) {
	f := newFixture(t, "git sta")
	// backspace, then ctrl-a and ctrl-e move around
	res, err := f.run(t, "git sta", ModeInteractive, "\x7f", "\x01", "\x05", "\r")
	require.NoError(t, err)
	assert.Equal(t, "git status", res.Line)
}

func TestNoSuggestionsEmitsLine(t *testing.T) {
	f := newFixture(t, "zzz")
	res, err := f.run(t, "zzz", ModeInteractive)
	require.NoError(t, err)
	assert.Equal(t, Result{Line: "zzz", Cursor: 3, Emit: true}, res)
	assert.Equal(t, f.before, f.screen.Lines())
}

func TestTypingPastSuggestionsEnds(t *testing.T) {
	f := newFixture(t, "git st")
	res, err := f.run(t, "git st", ModeInteractive, "q")
	require.NoError(t, err)
	assert.Equal(t, Result{Line: "git stq", Cursor: 7, Emit: true}, res)
	f.assertOnlyPrompt(t, "$ git stq")
}

func TestUnboundControlIgnored(t *testing.T) {
	f := newFixture(t, "git st")
	res, err := f.run(t, "git st", ModeSingle, "\x0b", "\r")
	require.NoError(t, err)
	assert.Equal(t, "git status", res.Line)
}

func TestMultiByteInsert(t *testing.T) {
	f := newFixture(t, "git st")
	res, err := f.run(t, "git st", ModeSingle, "\xc3", "\xa9")
	require.NoError(t, err)
	assert.Equal(t, "git sté", res.Line)
	f.assertCursor(t, 3, 10)
}

func TestReadErrorRestoresTerminal(t *testing.T) {
	f := newFixture(t, "git st")
	_, err := f.run(t, "git st", ModeInteractive)
	require.Error(t, err)
	assert.Equal(t, f.before, f.screen.Lines(), "popup must be cleared on error")
}

func TestNotATerminal(t *testing.T) {
	f := newFixture(t, "git st")
	f.screen.GetErr = unix.ENOTTY
	s := New(f.model, "git st", 6, defaultOptions(t, ModeInteractive))

	_, err := s.Run(f.tty, f.popup)
	assert.True(t, errors.Is(err, term.ErrNotATerminal), "got %v", err)
	assert.Equal(t, f.before, f.screen.Lines())
}

func TestOneShot(t *testing.T) {
	model := suggest.Build(corpus.Parse(history).Commands)

	testCases := []struct {
		line   string
		cursor int
		want   Result
	}{
		{"git st", 6, Result{Line: "git status", Cursor: 10, Emit: true}},
		{"git c", 5, Result{Line: "git commit", Cursor: 10, Emit: true}},
		{"zzz", 3, Result{Line: "zzz", Cursor: 3, Emit: true}},
		{"git st --short", 6, Result{Line: "git status --short", Cursor: 10, Emit: true}},
	}

	for _, tc := range testCases {
		s := New(model, tc.line, tc.cursor, defaultOptions(t, ModeOneShot))
		assert.Equal(t, tc.want, s.OneShot(), "line %q", tc.line)
	}
}

func TestOneShotRunNeedsNoTerminal(t *testing.T) {
	model := suggest.Build(corpus.Parse(history).Commands)
	s := New(model, "go t", 4, defaultOptions(t, ModeOneShot))

	res, err := s.Run(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "go test", res.Line)
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"single", "interactive", "one-shot"} {
		m, err := ParseMode(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.String())
	}
	m, err := ParseMode("oneshot")
	require.NoError(t, err)
	assert.Equal(t, ModeOneShot, m)

	_, err = ParseMode("batch")
	assert.Error(t, err)
}
