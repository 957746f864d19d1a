// Package termtest provides an in-memory terminal for testing code that
// drives internal/term. A Screen interprets the escape sequences written to
// it into a grid of cells and answers cursor position queries, so drawing
// code can be checked against what a user would actually see.
package termtest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// Screen is a fixed size VT100 subset. It understands cursor movement,
// erase, save/restore, cursor visibility and device status reports; SGR
// sequences are accepted and ignored. Line feeds also return the carriage,
// like a tty with output processing on.
type Screen struct {
	rows, cols int
	cells      [][]rune
	row, col   int
	savedRow   int
	savedCol   int
	hidden     bool
	input      []byte
	script     [][]byte
	pending    []byte

	// Termios is the attribute set handed out by Get and replaced by Set.
	Termios unix.Termios
	// Sets counts calls to Set.
	Sets int
	// GetErr, if set, is returned by Get.
	GetErr error
	// Replies disables automatic cursor position reports when false.
	Replies bool
}

// NewScreen returns a blank rows x cols screen with the cursor at 1,1.
func NewScreen(rows, cols int) *Screen {
	s := &Screen{rows: rows, cols: cols, row: 1, col: 1, Replies: true}
	s.cells = make([][]rune, rows)
	for i := range s.cells {
		s.cells[i] = blankRow(cols)
	}
	s.Termios.Lflag = unix.ICANON | unix.ECHO | unix.ISIG
	return s
}

func blankRow(cols int) []rune {
	row := make([]rune, cols)
	for i := range row {
		row[i] = ' '
	}
	return row
}

// Type queues bytes for the very next read, ahead of anything the terminal
// answers afterwards. Use it for keys typed while a query is in flight.
func (s *Screen) Type(keys string) {
	s.input = append(s.input, keys...)
}

// Script queues keystrokes that are only delivered once every pending
// report has been read, one chunk per read, the way a user types after
// the screen has settled.
func (s *Screen) Script(keys ...string) {
	for _, k := range keys {
		s.script = append(s.script, []byte(k))
	}
}

// Read hands out queued input, then scripted keys. With nothing left it
// returns io.EOF.
func (s *Screen) Read(p []byte) (int, error) {
	if len(s.input) == 0 {
		if len(s.script) == 0 {
			return 0, io.EOF
		}
		s.input, s.script = s.script[0], s.script[1:]
	}
	n := copy(p, s.input)
	s.input = s.input[n:]
	return n, nil
}

// Get returns a copy of the current attributes.
func (s *Screen) Get() (*unix.Termios, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	t := s.Termios
	return &t, nil
}

// Set replaces the current attributes.
func (s *Screen) Set(t *unix.Termios) error {
	s.Termios = *t
	s.Sets++
	return nil
}

// MoveTo places the cursor, as if the shell had left it there.
func (s *Screen) MoveTo(row, col int) {
	s.row, s.col = s.clampRow(row), s.clampCol(col)
}

// Cursor returns the cursor position.
func (s *Screen) Cursor() (row, col int) {
	return s.row, s.col
}

// CursorHidden reports whether the cursor was last hidden.
func (s *Screen) CursorHidden() bool {
	return s.hidden
}

// Line returns row (1-based) with trailing blanks removed.
func (s *Screen) Line(row int) string {
	return strings.TrimRight(string(s.cells[row-1]), " ")
}

// Lines returns every row, trailing blanks removed.
func (s *Screen) Lines() []string {
	lines := make([]string, s.rows)
	for i := range lines {
		lines[i] = s.Line(i + 1)
	}
	return lines
}

// String renders the screen for failure messages.
func (s *Screen) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Write interprets p. Sequences split across writes are handled.
func (s *Screen) Write(p []byte) (int, error) {
	s.pending = append(s.pending, p...)
	for len(s.pending) > 0 {
		n := s.consume(s.pending)
		if n == 0 {
			break
		}
		s.pending = s.pending[n:]
	}
	return len(p), nil
}

// consume handles one unit at the start of buf and returns its length, or
// 0 if buf holds an incomplete unit.
func (s *Screen) consume(buf []byte) int {
	switch buf[0] {
	case 0x1b:
		return s.escape(buf)
	case '\r':
		s.col = 1
		return 1
	case '\n':
		s.col = 1
		s.lineFeed()
		return 1
	case '\b':
		if s.col > 1 {
			s.col--
		}
		return 1
	}
	if !utf8.FullRune(buf) {
		return 0
	}
	r, size := utf8.DecodeRune(buf)
	s.put(r)
	return size
}

func (s *Screen) put(r rune) {
	s.cells[s.row-1][s.col-1] = r
	if s.col < s.cols {
		s.col++
	}
}

func (s *Screen) lineFeed() {
	if s.row < s.rows {
		s.row++
		return
	}
	copy(s.cells, s.cells[1:])
	s.cells[s.rows-1] = blankRow(s.cols)
}

func (s *Screen) escape(buf []byte) int {
	if len(buf) < 2 {
		return 0
	}
	switch buf[1] {
	case '7':
		s.savedRow, s.savedCol = s.row, s.col
		return 2
	case '8':
		s.row, s.col = s.savedRow, s.savedCol
		return 2
	case '[':
	default:
		return 2
	}

	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			s.csi(string(buf[2:i]), buf[i])
			return i + 1
		}
	}
	return 0
}

func (s *Screen) csi(params string, final byte) {
	private := strings.HasPrefix(params, "?")
	params = strings.TrimPrefix(params, "?")
	args := parseParams(params)
	arg := func(i, def int) int {
		if i < len(args) && args[i] > 0 {
			return args[i]
		}
		return def
	}

	switch final {
	case 'H', 'f':
		s.row, s.col = s.clampRow(arg(0, 1)), s.clampCol(arg(1, 1))
	case 'A':
		s.row = s.clampRow(s.row - arg(0, 1))
	case 'B':
		s.row = s.clampRow(s.row + arg(0, 1))
	case 'C':
		s.col = s.clampCol(s.col + arg(0, 1))
	case 'D':
		s.col = s.clampCol(s.col - arg(0, 1))
	case 'J':
		s.eraseDisplay(arg(0, 0))
	case 'K':
		s.eraseLine(arg(0, 0))
	case 's':
		s.savedRow, s.savedCol = s.row, s.col
	case 'u':
		s.row, s.col = s.savedRow, s.savedCol
	case 'n':
		if arg(0, 0) == 6 && s.Replies {
			s.input = append(s.input, fmt.Sprintf("\x1b[%d;%dR", s.row, s.col)...)
		}
	case 'h', 'l':
		if private && arg(0, 0) == 25 {
			s.hidden = final == 'l'
		}
	}
}

func parseParams(params string) []int {
	if params == "" {
		return nil
	}
	fields := strings.Split(params, ";")
	args := make([]int, len(fields))
	for i, f := range fields {
		args[i], _ = strconv.Atoi(f)
	}
	return args
}

func (s *Screen) eraseLine(mode int) {
	line := s.cells[s.row-1]
	from, to := 0, s.cols
	switch mode {
	case 0:
		from = s.col - 1
	case 1:
		to = s.col
	}
	for i := from; i < to; i++ {
		line[i] = ' '
	}
}

func (s *Screen) eraseDisplay(mode int) {
	switch mode {
	case 0:
		s.eraseLine(0)
		for r := s.row; r < s.rows; r++ {
			s.cells[r] = blankRow(s.cols)
		}
	case 1:
		s.eraseLine(1)
		for r := 0; r < s.row-1; r++ {
			s.cells[r] = blankRow(s.cols)
		}
	default:
		for r := range s.cells {
			s.cells[r] = blankRow(s.cols)
		}
	}
}

func (s *Screen) clampRow(row int) int {
	return min(max(row, 1), s.rows)
}

func (s *Screen) clampCol(col int) int {
	return min(max(col, 1), s.cols)
}
