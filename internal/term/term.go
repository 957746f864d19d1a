/*
Package term owns the controlling terminal and speaks ANSI/VT100 to it.

A Terminal wraps one read/write device (normally /dev/tty). Drawing calls are
buffered and reach the device on Flush, or implicitly before anything that has
to wait for the terminal: a cursor position query or a key read. Write errors
are sticky, so the first failure is returned by the next Flush.

Raw mode only turns off canonical input and echo. Output processing stays on,
so "\n" still moves to the start of the next row.

Only one Terminal should exist per process: raw mode and the cursor are
properties of the terminal itself, not of the caller.
*/
package term

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
	"github.com/muesli/termenv"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// TTYPath is the controlling terminal device.
const TTYPath = "/dev/tty"

var (
	// ErrNotATerminal is returned when the device is not an interactive tty.
	ErrNotATerminal = errors.New("not a terminal")
	// ErrBadResponse is returned when no cursor position report could be read.
	ErrBadResponse = errors.New("bad cursor position response")
)

// Device is what a Terminal reads keys from and writes sequences to.
type Device interface {
	io.Reader
	io.Writer
}

// Attributes reads and writes the termios of a device.
type Attributes interface {
	Get() (*unix.Termios, error)
	Set(*unix.Termios) error
}

// Position is a 1-based screen coordinate.
type Position struct {
	Row int
	Col int
}

// Terminal is the single owner of the terminal device.
type Terminal struct {
	dev       Device
	attrs     Attributes
	in        *bufio.Reader
	out       *bufio.Writer
	saved     *unix.Termios
	closeOnce sync.Once
	closeErr  error
}

// Open opens /dev/tty and checks that it is an interactive terminal.
func Open() (*Terminal, error) {
	f, err := os.OpenFile(TTYPath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", TTYPath, err)
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		f.Close()
		return nil, fmt.Errorf("%s: %w", TTYPath, ErrNotATerminal)
	}
	return New(f, fdAttributes{fd: fd}), nil
}

// New wraps an already open device. If dev is an io.Closer it is closed by Close.
func New(dev Device, attrs Attributes) *Terminal {
	return &Terminal{
		dev:   dev,
		attrs: attrs,
		in:    bufio.NewReader(dev),
		out:   bufio.NewWriter(dev),
	}
}

// EnableRawMode saves the current attributes and turns off canonical
// input and echo. Reads then return after a single byte.
func (t *Terminal) EnableRawMode() error {
	if t.saved != nil {
		return nil
	}
	saved, err := t.attrs.Get()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotATerminal, err)
	}
	raw := *saved
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := t.attrs.Set(&raw); err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.saved = saved
	log.Debug("Raw mode enabled")
	return nil
}

// DisableRawMode restores the attributes saved by EnableRawMode.
func (t *Terminal) DisableRawMode() error {
	if t.saved == nil {
		return nil
	}
	saved := t.saved
	t.saved = nil
	if err := t.attrs.Set(saved); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	log.Debug("Raw mode disabled")
	return nil
}

// IsRaw reports whether raw mode is active.
func (t *Terminal) IsRaw() bool {
	return t.saved != nil
}

// Close resets styling, shows the cursor, leaves raw mode and closes the
// device. It is safe to call more than once; only the first call does work.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		var result *multierror.Error

		t.ResetStyle()
		t.ShowCursor()
		if err := t.Flush(); err != nil {
			result = multierror.Append(result, err)
		}
		if err := t.DisableRawMode(); err != nil {
			result = multierror.Append(result, err)
		}
		if c, ok := t.dev.(io.Closer); ok {
			if err := c.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
		t.closeErr = result.ErrorOrNil()
	})
	return t.closeErr
}

// Flush sends buffered output to the device.
func (t *Terminal) Flush() error {
	return t.out.Flush()
}

// ReadByte flushes pending output and blocks for the next input byte.
func (t *Terminal) ReadByte() (byte, error) {
	if err := t.Flush(); err != nil {
		return 0, err
	}
	return t.in.ReadByte()
}

// WriteString queues literal text at the cursor.
func (t *Terminal) WriteString(s string) {
	t.out.WriteString(s)
}

func (t *Terminal) csi(seq string, args ...any) {
	t.out.WriteString(termenv.CSI)
	if len(args) > 0 {
		seq = fmt.Sprintf(seq, args...)
	}
	t.out.WriteString(seq)
}

// Goto moves the cursor to row, col (1-based).
func (t *Terminal) Goto(row, col int) {
	t.csi(termenv.CursorPositionSeq, row, col)
}

// HideCursor hides the cursor.
func (t *Terminal) HideCursor() {
	t.csi(termenv.HideCursorSeq)
}

// ShowCursor shows the cursor.
func (t *Terminal) ShowCursor() {
	t.csi(termenv.ShowCursorSeq)
}

// SaveCursor stores the cursor position in the terminal.
func (t *Terminal) SaveCursor() {
	t.csi(termenv.SaveCursorPositionSeq)
}

// RestoreCursor returns to the position stored by SaveCursor.
func (t *Terminal) RestoreCursor() {
	t.csi(termenv.RestoreCursorPositionSeq)
}

// ClearLine erases the whole cursor row.
func (t *Terminal) ClearLine() {
	t.csi(termenv.EraseEntireLineSeq)
}

// ClearToEnd erases from the cursor to the end of the screen.
func (t *Terminal) ClearToEnd() {
	t.csi(termenv.EraseDisplaySeq, 0)
}

// CursorBack moves the cursor n columns left, stopping at column 1.
func (t *Terminal) CursorBack(n int) {
	if n > 0 {
		t.csi(termenv.CursorBackSeq, n)
	}
}

// ResetStyle clears all SGR attributes.
func (t *Terminal) ResetStyle() {
	t.csi(termenv.ResetSeq + "m")
}

// Newlines writes n line feeds. On the last row each one scrolls the screen.
func (t *Terminal) Newlines(n int) {
	if n > 0 {
		t.out.WriteString(strings.Repeat("\n", n))
	}
}

// CursorPosition asks the terminal where the cursor is. Unrelated input read
// while waiting for the answer is discarded.
func (t *Terminal) CursorPosition() (Position, error) {
	t.csi("6n")
	if err := t.Flush(); err != nil {
		return Position{}, err
	}

	var p dsrParser
	for i := 0; i < maxResponseBytes; i++ {
		b, err := t.in.ReadByte()
		if err != nil {
			return Position{}, fmt.Errorf("failed to read cursor position: %w", err)
		}
		if p.feed(b) {
			return p.position(), nil
		}
	}
	return Position{}, fmt.Errorf("%w: no report within %d bytes", ErrBadResponse, maxResponseBytes)
}

// Size returns the terminal dimensions by parking the cursor far past the
// bottom right corner, where the terminal clamps it, and reading it back.
func (t *Terminal) Size() (rows, cols int, err error) {
	t.SaveCursor()
	t.Goto(9999, 9999)
	pos, err := t.CursorPosition()
	t.RestoreCursor()
	if err != nil {
		return 0, 0, err
	}
	if err := t.Flush(); err != nil {
		return 0, 0, err
	}
	return pos.Row, pos.Col, nil
}

// ClearCommandRegion finds where the command line starts by stepping back
// cols columns from the cursor, then clears from there to the end of the
// screen and leaves the cursor at that start, which it returns.
// It is only correct when the command fits on the cursor's row.
func (t *Terminal) ClearCommandRegion(cols int) (Position, error) {
	t.SaveCursor()
	t.CursorBack(cols)
	start, err := t.CursorPosition()
	t.RestoreCursor()
	if err != nil {
		return Position{}, err
	}
	t.Goto(start.Row, start.Col)
	t.ClearToEnd()
	return start, t.Flush()
}
