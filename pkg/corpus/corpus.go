// Package corpus loads a shell history file into memory and turns it into
// tokenized commands.
package corpus

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/bastiangx/histcomp/pkg/tokenize"
	"github.com/charmbracelet/log"
)

// DefaultMaxBytes caps how much of a history file is read.
const DefaultMaxBytes = 200 * 1024

// zsh EXTENDED_HISTORY: ": <start>:<elapsed>;<command>"
var zshExtendedRegex = regexp.MustCompile(`^:\s*\d+:\d+;`)

// Corpus is a read-only snapshot of a history file.
type Corpus struct {
	Raw      string
	Commands []tokenize.Command
}

// Load reads at most maxBytes from path and parses the result.
// Anything beyond the cap is never read.
func Load(path string, maxBytes int) (*Corpus, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	return Read(file, maxBytes)
}

// Read is Load for an already open reader.
func Read(r io.Reader, maxBytes int) (*Corpus, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(maxBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if len(data) == maxBytes {
		log.Debugf("History truncated at %d bytes", maxBytes)
	}
	return Parse(string(data)), nil
}

// Parse builds a Corpus from an in-memory history buffer.
func Parse(buf string) *Corpus {
	c := &Corpus{Raw: buf}
	for _, line := range tokenize.Lines(buf) {
		line = normalizeLine(line)
		if line == "" {
			continue
		}
		if cmd := tokenize.Tokenize(line); cmd.Len() > 0 {
			c.Commands = append(c.Commands, cmd)
		}
	}
	log.Debugf("Parsed %d commands from %d bytes of history", len(c.Commands), len(c.Raw))
	return c
}

// normalizeLine strips zsh extended headers and drops bash timestamp
// comments. The result still points into the original buffer.
func normalizeLine(line string) string {
	if loc := zshExtendedRegex.FindStringIndex(line); loc != nil {
		return line[loc[1]:]
	}
	if strings.HasPrefix(line, "#") {
		return ""
	}
	return line
}
