package session

import (
	"fmt"
	"strings"

	"github.com/bastiangx/histcomp/pkg/config"
	"github.com/charmbracelet/log"
)

// Action is what a key asks the session to do.
type Action int

const (
	// ActionInsert inserts the key itself; it is what unbound keys do.
	ActionInsert Action = iota
	ActionNext
	ActionPrev
	ActionAccept
	ActionQuit
	ActionDeleteLeft
	ActionDeleteRight
	ActionStart
	ActionEnd
	ActionLeft
	ActionRight
)

var actionNames = map[Action]string{
	ActionInsert:      "insert",
	ActionNext:        "next",
	ActionPrev:        "prev",
	ActionAccept:      "accept",
	ActionQuit:        "quit",
	ActionDeleteLeft:  "delete_left",
	ActionDeleteRight: "delete_right",
	ActionStart:       "start",
	ActionEnd:         "end",
	ActionLeft:        "left",
	ActionRight:       "right",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Keymap maps input bytes to actions. Bytes it does not hold are inserted.
type Keymap map[byte]Action

// ParseKey returns the bytes a key name stands for: tab, enter, esc,
// backspace, space, ctrl-space, ctrl-a to ctrl-z, or one printable ASCII
// character. Enter matches both CR and LF since the tty may translate one
// into the other.
func ParseKey(name string) ([]byte, error) {
	switch lower := strings.ToLower(name); lower {
	case "tab":
		return []byte{'\t'}, nil
	case "enter", "return":
		return []byte{'\r', '\n'}, nil
	case "esc", "escape":
		return []byte{0x1b}, nil
	case "backspace":
		return []byte{0x7f}, nil
	case "space":
		return []byte{' '}, nil
	case "ctrl-space", "ctrl-@":
		return []byte{0}, nil
	default:
		if c, ok := strings.CutPrefix(lower, "ctrl-"); ok && len(c) == 1 && c[0] >= 'a' && c[0] <= 'z' {
			return []byte{c[0] - 'a' + 1}, nil
		}
	}
	if len(name) == 1 && name[0] > ' ' && name[0] < 0x7f {
		return []byte{name[0]}, nil
	}
	return nil, fmt.Errorf("unknown key %q", name)
}

// NewKeymap builds the byte table from the [keys] config. A key bound to
// two actions keeps the later one.
func NewKeymap(cfg config.KeysConfig) (Keymap, error) {
	bindings := []struct {
		action Action
		names  []string
	}{
		{ActionNext, cfg.Next},
		{ActionPrev, cfg.Prev},
		{ActionAccept, cfg.Accept},
		{ActionQuit, cfg.Quit},
		{ActionDeleteLeft, cfg.DeleteLeft},
		{ActionDeleteRight, cfg.DeleteRight},
		{ActionStart, cfg.Start},
		{ActionEnd, cfg.End},
		{ActionLeft, cfg.Left},
		{ActionRight, cfg.Right},
	}

	km := make(Keymap)
	for _, b := range bindings {
		for _, name := range b.names {
			keys, err := ParseKey(name)
			if err != nil {
				return nil, fmt.Errorf("keys.%s: %w", b.action, err)
			}
			for _, k := range keys {
				if prev, ok := km[k]; ok && prev != b.action {
					log.Warnf("Key %q bound to both %s and %s, using %s", name, prev, b.action, b.action)
				}
				km[k] = b.action
			}
		}
	}
	return km, nil
}

// Lookup returns the action bound to b.
func (km Keymap) Lookup(b byte) Action {
	if a, ok := km[b]; ok {
		return a
	}
	return ActionInsert
}
