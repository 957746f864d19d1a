// Package cli holds the command line surfaces that sit next to the popup:
// a stdin REPL for poking at the model and the shell init scripts.
package cli

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/bastiangx/histcomp/internal/utils"
	"github.com/bastiangx/histcomp/pkg/suggest"
	"github.com/bastiangx/histcomp/pkg/tokenize"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads partial command lines from stdin and prints what the
// popup would offer for them, with scores. The cursor is taken to be at
// the end of each line, so a trailing space asks for the next word.
//
// The line ":stats" prints model counters instead.
type InputHandler struct {
	suggester    suggest.Suggester
	bigramWeight float64
	limit        int
	requestCount int
	out          *log.Logger
}

// NewInputHandler prints through out.
func NewInputHandler(s suggest.Suggester, bigramWeight float64, limit int, out *log.Logger) *InputHandler {
	return &InputHandler{
		suggester:    s,
		bigramWeight: bigramWeight,
		limit:        limit,
		out:          out,
	}
}

// Start reads lines from r until it fails; io.EOF ends it cleanly.
func (h *InputHandler) Start(r io.Reader) error {
	h.out.Print("histcomp REPL")
	h.out.Print("type a partial command and press Enter (Ctrl+D to exit):")

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			h.handleInput(line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// handleInput ranks completions for line and prints them.
func (h *InputHandler) handleInput(line string) []suggest.Candidate {
	h.requestCount++
	if strings.TrimSpace(line) == ":stats" {
		h.printStats()
		return nil
	}

	prev, curr := tokenize.RelevantBigram(line, len(line)-1)
	log.Debug("Processing request", "prev", prev, "prefix", curr)

	start := time.Now()
	candidates := h.suggester.Suggest(prev, curr, h.bigramWeight, h.limit)
	log.Debugf("Took [ %v ] for (%q, %q)", time.Since(start), prev, curr)

	if len(candidates) == 0 {
		h.out.Warnf("No suggestions for prefix '%s' after '%s'", curr, prev)
		return nil
	}

	h.out.Printf("Found %d suggestions for prefix '%s' after '%s':", len(candidates), curr, prev)
	for i, c := range candidates {
		h.out.Printf("%2d. %-30s (score: %8s)", i+1, wordStyle.Render(c.Word), utils.FormatScore(c.Score))
	}
	return candidates
}

func (h *InputHandler) printStats() {
	stats := h.suggester.Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.out.Printf("%-14s %10s", k, utils.FormatWithCommas(stats[k]))
	}
}
