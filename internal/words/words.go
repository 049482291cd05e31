// Package words loads the dictionary of candidate words.
//
// A dictionary file holds one word per line. Lines are trimmed and
// lowercased; blank lines and lines starting with '#' are skipped, as are
// entries that are not purely a-z or not of the expected length. Duplicate
// entries keep their first position.
package words

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultLength is the word length used by the game server.
const DefaultLength = 5

//go:embed default_words.txt
var embeddedWords string

// ErrEmpty is returned when a source yields no usable words.
var ErrEmpty = errors.New("words: dictionary is empty")

// Dictionary is an immutable, ordered set of fixed-length lowercase words.
type Dictionary struct {
	words  []string
	index  map[string]struct{}
	length int
}

// Load reads a dictionary file from path.
func Load(path string, length int) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open words file %s: %w", path, err)
	}
	defer f.Close()

	d, err := Parse(f, length)
	if err != nil {
		return nil, fmt.Errorf("failed to load words file %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("words", d.Len()).Msg("dictionary loaded")
	return d, nil
}

// Default returns the dictionary compiled into the binary.
func Default() (*Dictionary, error) {
	return Parse(strings.NewReader(embeddedWords), DefaultLength)
}

// Parse reads one word per line from r.
func Parse(r io.Reader, length int) (*Dictionary, error) {
	if length <= 0 {
		length = DefaultLength
	}

	d := &Dictionary{
		index:  make(map[string]struct{}),
		length: length,
	}

	skipped := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if len(w) != length || !isAlpha(w) {
			skipped++
			continue
		}
		if _, dup := d.index[w]; dup {
			continue
		}
		d.index[w] = struct{}{}
		d.words = append(d.words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Int("length", length).Msg("ignored invalid dictionary entries")
	}
	if len(d.words) == 0 {
		return nil, ErrEmpty
	}
	return d, nil
}

// Words returns a copy of the dictionary in load order.
func (d *Dictionary) Words() []string {
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.words) }

// WordLength returns the fixed length of every word.
func (d *Dictionary) WordLength() int { return d.length }

// Contains reports whether w is in the dictionary.
func (d *Dictionary) Contains(w string) bool {
	_, ok := d.index[strings.ToLower(w)]
	return ok
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
