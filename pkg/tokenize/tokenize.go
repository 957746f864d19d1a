/*
Package tokenize splits shell command lines into whitespace delimited tokens
and answers cursor relative questions about them.

Everything here works on bytes. A token is any maximal run of bytes that are
not separators (space, tab); multi-byte UTF-8 sequences never contain a
separator byte and are therefore carried along as opaque token content.

Tokens never copy: a Token's Value is a substring of the line it was cut
from, and Start/End are byte offsets into that same line.

	cmd := tokenize.Tokenize("git commit -m wip")
	prev, curr := tokenize.RelevantBigram("nix fl", 6) // "nix", "fl"
*/
package tokenize

import "strings"

// Token is a single word of a command line.
// Start is inclusive, End is exclusive.
type Token struct {
	Value string
	Start int
	End   int
}

// Command is the ordered token list of one line.
type Command struct {
	Line   string
	Tokens []Token
}

// Len returns the number of tokens.
func (c Command) Len() int {
	return len(c.Tokens)
}

// Words returns the token values in order.
func (c Command) Words() []string {
	words := make([]string, len(c.Tokens))
	for i, t := range c.Tokens {
		words[i] = t.Value
	}
	return words
}

// IsSeparator reports whether b splits tokens.
func IsSeparator(b byte) bool {
	return b == ' ' || b == '\t'
}

// Tokenize splits line on separator bytes.
// An empty or all-separator line yields a Command with no tokens.
func Tokenize(line string) Command {
	cmd := Command{Line: line}
	start := -1
	for i := 0; i < len(line); i++ {
		if IsSeparator(line[i]) {
			if start >= 0 {
				cmd.Tokens = append(cmd.Tokens, Token{Value: line[start:i], Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		cmd.Tokens = append(cmd.Tokens, Token{Value: line[start:], Start: start, End: len(line)})
	}
	return cmd
}

// Lines cuts buf on "\n" and drops a trailing "\r" from each line.
func Lines(buf string) []string {
	var lines []string
	for len(buf) > 0 {
		line := buf
		if i := strings.IndexByte(buf, '\n'); i >= 0 {
			line, buf = buf[:i], buf[i+1:]
		} else {
			buf = ""
		}
		lines = append(lines, strings.TrimSuffix(line, "\r"))
	}
	return lines
}

// SplitCommands tokenizes every line of buf.
// Lines without tokens are not returned.
func SplitCommands(buf string) []Command {
	var commands []Command
	for _, line := range Lines(buf) {
		if cmd := Tokenize(line); cmd.Len() > 0 {
			commands = append(commands, cmd)
		}
	}
	return commands
}

// LeftmostToken scans left from idx (clamped to len(line)-1), skips any
// separators it starts on, and returns the run of non-separator bytes that
// ends there. It returns "" if only separators lie at or before idx.
func LeftmostToken(line string, idx int) string {
	if len(line) == 0 || idx < 0 {
		return ""
	}
	if idx > len(line)-1 {
		idx = len(line) - 1
	}
	end := idx
	for end >= 0 && IsSeparator(line[end]) {
		end--
	}
	if end < 0 {
		return ""
	}
	start := end
	for start > 0 && !IsSeparator(line[start-1]) {
		start--
	}
	return line[start : end+1]
}

// PopLeftTokenOfIdx returns line up to and including the nearest separator
// at or left of idx, or "" when no separator precedes idx.
func PopLeftTokenOfIdx(line string, idx int) string {
	if len(line) == 0 || idx < 0 {
		return ""
	}
	if idx > len(line)-1 {
		idx = len(line) - 1
	}
	for i := idx; i >= 0; i-- {
		if IsSeparator(line[i]) {
			return line[:i+1]
		}
	}
	return ""
}

// RelevantBigram returns the word before the one being typed and the typed
// prefix itself, for a cursor sitting on byte cursorIdx (the last typed byte).
// A cursor past the end of line is clamped. When the cursor rests on a
// separator nothing is being typed, so the word before it becomes prev and
// curr is empty.
func RelevantBigram(line string, cursorIdx int) (prev, curr string) {
	if len(line) == 0 {
		return "", ""
	}
	if cursorIdx < 0 {
		cursorIdx = 0
	}
	if cursorIdx > len(line) {
		cursorIdx = len(line)
	}

	at := cursorIdx
	if at > len(line)-1 {
		at = len(line) - 1
	}
	if IsSeparator(line[at]) {
		return LeftmostToken(line, cursorIdx), ""
	}

	curr = LeftmostToken(line, cursorIdx)
	if curr == "" {
		if cursorIdx == 0 {
			return "", ""
		}
		return LeftmostToken(line, cursorIdx-1), ""
	}
	if cursorIdx < len(curr)+1 {
		return "", curr
	}
	return LeftmostToken(line, cursorIdx-len(curr)-1), curr
}
