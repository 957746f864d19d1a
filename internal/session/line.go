package session

import (
	"unicode/utf8"

	"github.com/bastiangx/histcomp/pkg/tokenize"
	"github.com/mattn/go-runewidth"
)

// EditableLine is the command being completed. Cursor is a byte offset
// between 0 and len(Buf); text is inserted at it. Cursor movement and
// deletion step over whole UTF-8 sequences.
type EditableLine struct {
	Buf    string
	Cursor int
}

// NewEditableLine clamps cursor into line.
func NewEditableLine(line string, cursor int) *EditableLine {
	return &EditableLine{Buf: line, Cursor: min(max(cursor, 0), len(line))}
}

func (l *EditableLine) String() string {
	return l.Buf
}

// Width is the display width of the text left of the cursor.
func (l *EditableLine) Width() int {
	return runewidth.StringWidth(l.Buf[:l.Cursor])
}

// Bigram returns the previous word and typed prefix at the cursor.
func (l *EditableLine) Bigram() (prev, curr string) {
	if l.Cursor == 0 {
		return "", ""
	}
	return tokenize.RelevantBigram(l.Buf, l.Cursor-1)
}

// Insert puts s at the cursor and moves past it.
func (l *EditableLine) Insert(s string) {
	l.Buf = l.Buf[:l.Cursor] + s + l.Buf[l.Cursor:]
	l.Cursor += len(s)
}

// Complete replaces the token left of the cursor with word. Text right of
// the cursor is kept.
func (l *EditableLine) Complete(word string) {
	start := len(tokenize.PopLeftTokenOfIdx(l.Buf, l.Cursor-1))
	l.Buf = l.Buf[:start] + word + l.Buf[l.Cursor:]
	l.Cursor = start + len(word)
}

func (l *EditableLine) DeleteLeft() {
	if l.Cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(l.Buf[:l.Cursor])
	l.Buf = l.Buf[:l.Cursor-size] + l.Buf[l.Cursor:]
	l.Cursor -= size
}

func (l *EditableLine) DeleteRight() {
	if l.Cursor == len(l.Buf) {
		return
	}
	_, size := utf8.DecodeRuneInString(l.Buf[l.Cursor:])
	l.Buf = l.Buf[:l.Cursor] + l.Buf[l.Cursor+size:]
}

func (l *EditableLine) Start() {
	l.Cursor = 0
}

func (l *EditableLine) End() {
	l.Cursor = len(l.Buf)
}

func (l *EditableLine) Left() {
	if l.Cursor > 0 {
		_, size := utf8.DecodeLastRuneInString(l.Buf[:l.Cursor])
		l.Cursor -= size
	}
}

func (l *EditableLine) Right() {
	if l.Cursor < len(l.Buf) {
		_, size := utf8.DecodeRuneInString(l.Buf[l.Cursor:])
		l.Cursor += size
	}
}

// Apply performs an edit action. literal is only used by ActionInsert.
// It reports whether a was an edit.
func (l *EditableLine) Apply(a Action, literal string) bool {
	switch a {
	case ActionInsert:
		l.Insert(literal)
	case ActionDeleteLeft:
		l.DeleteLeft()
	case ActionDeleteRight:
		l.DeleteRight()
	case ActionStart:
		l.Start()
	case ActionEnd:
		l.End()
	case ActionLeft:
		l.Left()
	case ActionRight:
		l.Right()
	default:
		return false
	}
	return true
}
