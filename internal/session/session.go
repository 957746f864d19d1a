/*
Package session runs one completion: it asks the model for words, shows them
in the popup, and turns keystrokes into navigation, edits or a final line.

The loop is:

	suggest -> render popup -> read key -> navigate | edit | accept | quit

Navigation only moves the highlighted entry. Accept replaces the word left
of the cursor with the highlighted one and always ends the session. Quit ends
it without a result. Edits and typed characters change the line; in single
mode that ends the session, in interactive mode the line is redrawn and the
loop starts over with fresh suggestions. Running out of suggestions ends the
session with the line as it stands.

Raw mode is held only for the duration of Run and is released on every way
out of it.
*/
package session

import (
	"fmt"
	"unicode/utf8"

	"github.com/bastiangx/histcomp/internal/popup"
	"github.com/bastiangx/histcomp/internal/term"
	"github.com/bastiangx/histcomp/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Mode selects when a session ends.
type Mode int

const (
	// ModeSingle ends after the first key that is not navigation.
	ModeSingle Mode = iota
	// ModeInteractive keeps going until accept, quit or no suggestions.
	ModeInteractive
	// ModeOneShot reads no keys and takes the best suggestion.
	ModeOneShot
)

var modeNames = []string{"single", "interactive", "one-shot"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode reads single, interactive or one-shot.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	if s == "oneshot" {
		return ModeOneShot, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want single, interactive or one-shot)", s)
}

// Options are fixed for the lifetime of a session.
type Options struct {
	Mode         Mode
	BigramWeight float64
	// Limit caps the number of suggestions shown; <= 0 shows all.
	Limit int
	Keys  Keymap
}

// Result is the outcome of a session. Emit is false when the user quit,
// in which case the shell line must be left alone.
type Result struct {
	Line   string
	Cursor int
	Emit   bool
}

// Session completes a single command line.
type Session struct {
	model suggest.Suggester
	opts  Options
	line  *EditableLine
}

// New prepares a session for line with the cursor at byte offset cursor.
func New(model suggest.Suggester, line string, cursor int, opts Options) *Session {
	return &Session{
		model: model,
		opts:  opts,
		line:  NewEditableLine(line, cursor),
	}
}

// Suggestions ranks words for the current line and cursor.
func (s *Session) Suggestions() []string {
	prev, curr := s.line.Bigram()
	words := suggest.Words(s.model.Suggest(prev, curr, s.opts.BigramWeight, s.opts.Limit))
	log.Debugf("Suggestions for (%q, %q): %d", prev, curr, len(words))
	return words
}

func (s *Session) result() Result {
	return Result{Line: s.line.Buf, Cursor: s.line.Cursor, Emit: true}
}

// OneShot completes with the best suggestion without touching a terminal.
// With nothing to suggest the line comes back unchanged.
func (s *Session) OneShot() Result {
	if words := s.Suggestions(); len(words) > 0 {
		s.line.Complete(words[0])
	}
	return s.result()
}

// Run drives the popup on tty until the session ends. tty is put into raw
// mode on entry and restored before Run returns.
func (s *Session) Run(tty *term.Terminal, p *popup.Popup) (Result, error) {
	if s.opts.Mode == ModeOneShot {
		return s.OneShot(), nil
	}
	if err := tty.EnableRawMode(); err != nil {
		return Result{}, err
	}
	defer func() {
		if err := tty.DisableRawMode(); err != nil {
			log.Debugf("Restore failed: %v", err)
		}
	}()

	words, err := s.visible(tty, p)
	if err != nil {
		return Result{}, err
	}
	selected := 0
	for {
		if len(words) == 0 {
			log.Debug("No suggestions left, keeping line")
			return s.result(), nil
		}
		if _, err := p.Render(tty, words, selected); err != nil {
			return Result{}, fmt.Errorf("failed to draw popup: %w", err)
		}

		action, literal, err := s.readKey(tty)
		if err != nil {
			if cerr := p.Clear(tty, words); cerr != nil {
				log.Debugf("Clear after read error failed: %v", cerr)
			}
			return Result{}, fmt.Errorf("failed to read key: %w", err)
		}
		log.Debugf("Key action: %s", action)

		switch action {
		case ActionNext:
			selected = (selected + 1) % len(words)
			continue
		case ActionPrev:
			selected = (selected - 1 + len(words)) % len(words)
			continue
		case ActionQuit:
			return Result{}, p.Clear(tty, words)
		}

		if err := p.Clear(tty, words); err != nil {
			return Result{}, err
		}
		width := s.line.Width()
		if action == ActionAccept {
			s.line.Complete(words[selected])
		} else if !s.line.Apply(action, literal) {
			log.Debugf("Action %s changes nothing", action)
		}
		if err := s.redraw(tty, width); err != nil {
			return Result{}, fmt.Errorf("failed to redraw line: %w", err)
		}

		if action == ActionAccept || s.opts.Mode != ModeInteractive {
			return s.result(), nil
		}
		if words, err = s.visible(tty, p); err != nil {
			return Result{}, err
		}
		selected = 0
	}
}

// visible ranks words for the current line and keeps those the popup can
// show on tty.
func (s *Session) visible(tty *term.Terminal, p *popup.Popup) ([]string, error) {
	words, err := p.Visible(tty, s.Suggestions())
	if err != nil {
		return nil, fmt.Errorf("failed to size popup: %w", err)
	}
	return words, nil
}

// readKey reads until it has a bound key or a character to insert.
// Unbound control bytes are dropped. A multi-byte UTF-8 character is read
// in full and inserted as one.
func (s *Session) readKey(tty *term.Terminal) (Action, string, error) {
	for {
		b, err := tty.ReadByte()
		if err != nil {
			return 0, "", err
		}
		if a := s.opts.Keys.Lookup(b); a != ActionInsert {
			return a, "", nil
		}
		if b < ' ' || b == 0x7f {
			log.Debugf("Ignoring unbound control byte %#x", b)
			continue
		}
		if b < utf8.RuneSelf {
			return ActionInsert, string(b), nil
		}

		seq := []byte{b}
		for !utf8.FullRune(seq) {
			c, err := tty.ReadByte()
			if err != nil {
				return 0, "", err
			}
			seq = append(seq, c)
		}
		return ActionInsert, string(seq), nil
	}
}

// redraw replaces the command on screen with the current line. width is
// how many columns the cursor sat right of the command start before the
// line changed.
func (s *Session) redraw(tty *term.Terminal, width int) error {
	start, err := tty.ClearCommandRegion(width)
	if err != nil {
		return err
	}
	tty.WriteString(s.line.String())
	tty.Goto(start.Row, start.Col+s.line.Width())
	return tty.Flush()
}
