// Package solver narrows the set of candidate words using the server's
// per-letter feedback and picks the next word to guess.
package solver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wordlebot/wordlebot/internal/protocol"
)

// Pool is the ordered set of candidate words still consistent with every
// piece of feedback seen so far in a session.
type Pool []string

// NewPool returns a pool holding a private copy of words.
func NewPool(words []string) Pool {
	p := make(Pool, len(words))
	copy(p, words)
	return p
}

// Len returns the number of remaining candidates.
func (p Pool) Len() int { return len(p) }

// Contains reports whether word is still a candidate.
func (p Pool) Contains(word string) bool {
	for _, w := range p {
		if w == word {
			return true
		}
	}
	return false
}

// Without returns the pool minus every occurrence of the given words,
// keeping the order of the rest.
func (p Pool) Without(words ...string) Pool {
	out := make(Pool, 0, len(p))
	for _, w := range p {
		if !slices.Contains(words, w) {
			out = append(out, w)
		}
	}
	return out
}

// PoolExhaustedError reports that no candidate survived filtering.
type PoolExhaustedError struct {
	Guess string
	Marks []protocol.Mark
}

func (e *PoolExhaustedError) Error() string {
	if e.Guess == "" {
		return "candidate pool is empty"
	}
	return fmt.Sprintf("candidate pool is empty after feedback %v for %q", e.Marks, e.Guess)
}

// Filter returns the words of pool consistent with one guess and its marks,
// in their original order. For every index i a word is eliminated when:
//
//   - marks[i] is Correct and the word differs from guess at i
//   - marks[i] is WrongPosition and the word has guess[i] at i
//   - marks[i] is WrongPosition and guess[i] appears nowhere in the word
//
// Words whose length differs from the guess are eliminated as well. The
// dictionary holds a single word length, so this only matters for a guess
// of some other length echoed by the server.
//
// NotInWord marks add no constraint. This is a known incompleteness: when a
// guess repeats a letter, a NotInWord on one copy does not mean the letter is
// absent if another copy is marked present, and resolving that needs letter
// counts that this filter does not track.
func Filter(pool Pool, guess string, marks []protocol.Mark) Pool {
	out := make(Pool, 0, len(pool))
	for _, w := range pool {
		if consistent(w, guess, marks) {
			out = append(out, w)
		}
	}
	return out
}

func consistent(word, guess string, marks []protocol.Mark) bool {
	if len(word) != len(guess) {
		return false
	}
	for i, m := range marks {
		if i >= len(guess) {
			break
		}
		switch m {
		case protocol.MarkCorrect:
			if word[i] != guess[i] {
				return false
			}
		case protocol.MarkWrongPosition:
			if word[i] == guess[i] || strings.IndexByte(word, guess[i]) < 0 {
				return false
			}
		}
	}
	return true
}
