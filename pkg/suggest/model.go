package suggest

import (
	"sort"

	"github.com/bastiangx/histcomp/pkg/tokenize"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// BigramKey is an ordered (previous, next) word pair.
// ("a", "b") and ("b", "a") are different keys.
type BigramKey struct {
	Prev string
	Next string
}

// Candidate is a scored completion.
type Candidate struct {
	Word  string
	Score float64
}

// Model holds unigram and bigram counts learned from history.
// It is never modified after Build, so concurrent Suggest calls are safe.
type Model struct {
	unigrams     *patricia.Trie
	unigramCount map[string]int
	bigrams      map[BigramKey]int
	commands     int
}

// Build counts every token of every command as a unigram and every
// adjacent token pair as a bigram.
func Build(commands []tokenize.Command) *Model {
	m := &Model{
		unigrams:     patricia.NewTrie(),
		unigramCount: make(map[string]int),
		bigrams:      make(map[BigramKey]int),
	}

	for _, cmd := range commands {
		if cmd.Len() == 0 {
			continue
		}
		m.commands++
		for i, tok := range cmd.Tokens {
			m.unigramCount[tok.Value]++
			if i+1 < len(cmd.Tokens) {
				m.bigrams[BigramKey{Prev: tok.Value, Next: cmd.Tokens[i+1].Value}]++
			}
		}
	}

	for word, count := range m.unigramCount {
		m.unigrams.Insert(patricia.Prefix(word), count)
	}

	log.Debugf("Model built: %d commands, %d words, %d bigrams",
		m.commands, len(m.unigramCount), len(m.bigrams))
	return m
}

// Unigram returns how often word occurred.
func (m *Model) Unigram(word string) int {
	return m.unigramCount[word]
}

// Bigram returns how often next directly followed prev.
func (m *Model) Bigram(prev, next string) int {
	return m.bigrams[BigramKey{Prev: prev, Next: next}]
}

// Suggest scores every known word starting with prefix by its unigram count
// plus bigramWeight times the count of (prev, word). Results are ordered by
// score, highest first, ties by word. A limit <= 0 returns everything.
func (m *Model) Suggest(prev, prefix string, bigramWeight float64, limit int) []Candidate {
	var candidates []Candidate

	visit := func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		score := float64(item.(int))
		if prev != "" {
			score += bigramWeight * float64(m.bigrams[BigramKey{Prev: prev, Next: word}])
		}
		candidates = append(candidates, Candidate{Word: word, Score: score})
		return nil
	}

	var err error
	if prefix == "" {
		err = m.unigrams.Visit(visit)
	} else {
		err = m.unigrams.VisitSubtree(patricia.Prefix(prefix), visit)
	}
	if err != nil {
		log.Errorf("Error visiting unigram trie: %v", err)
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Word < candidates[j].Word
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// Words strips the scores off a ranked candidate list.
func Words(candidates []Candidate) []string {
	words := make([]string, len(candidates))
	for i, c := range candidates {
		words[i] = c.Word
	}
	return words
}

// Stats returns counters about the model.
func (m *Model) Stats() map[string]int {
	maxFrequency := 0
	for _, count := range m.unigramCount {
		if count > maxFrequency {
			maxFrequency = count
		}
	}
	return map[string]int{
		"commands":     m.commands,
		"totalWords":   len(m.unigramCount),
		"bigrams":      len(m.bigrams),
		"maxFrequency": maxFrequency,
	}
}
