// Package suggest is the core, ranking history words as completions for a typed prefix and the word before it.
package suggest

// Suggester ranks completions for a (previous word, prefix) pair
type Suggester interface {
	// Suggest returns at most limit words starting with prefix, best first.
	// prev may be empty when there is no previous word.
	Suggest(prev, prefix string, bigramWeight float64, limit int) []Candidate

	// Stats returns counters about the loaded model
	Stats() map[string]int
}
