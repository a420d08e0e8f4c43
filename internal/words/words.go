// internal/words/words.go
//
// Dictionary of valid duel words.
//
// Responsibilities:
//   - Load a word list from a file (one word per line, or a JSON array) or
//     fall back to the embedded default from the assets package.
//   - Group words into length classes for random selection.
//   - Validate user-supplied words (EnsureWord), where a bare integer is a
//     request for a random word of that length.
//
// Constraints:
//   • Words are alphabetic a–z and between MinWordSize and MaxWordSize long.
//   • Lists are normalized to lowercase and deduplicated.
//   • A Dictionary is immutable after construction and safe to share.

package words

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/robalobadob/worduel/assets"
	"github.com/robalobadob/worduel/internal/game"
)

// Global word length bounds.
const (
	MinWordSize = 4
	MaxWordSize = 8
)

// Dictionary is a read-only word set grouped by length.
type Dictionary struct {
	classes map[int][]string
	set     map[string]struct{}
}

// New builds a dictionary from list. Invalid entries are dropped.
func New(list []string) *Dictionary {
	valid := lo.Uniq(lo.FilterMap(list, func(w string, _ int) (string, bool) {
		w = strings.TrimSpace(strings.ToLower(w))
		return w, validWord(w)
	}))
	sort.Strings(valid)

	return &Dictionary{
		classes: lo.GroupBy(valid, func(w string) int { return len(w) }),
		set:     lo.SliceToMap(valid, func(w string) (string, struct{}) { return w, struct{}{} }),
	}
}

// Default returns the dictionary embedded in the binary.
func Default() (*Dictionary, error) {
	list, err := assets.WordList()
	if err != nil {
		return nil, fmt.Errorf("words: embedded list: %w", err)
	}
	return New(list), nil
}

// Load reads a dictionary file. An empty path selects the embedded default.
// Files whose first non-blank byte is '[' are parsed as a JSON string array;
// anything else is one word per line with '#' comments.
func Load(path string) (*Dictionary, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}

	var list []string
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("words: parse %s: %w", path, err)
		}
	} else {
		list = normalizeLines(string(raw))
	}

	d := New(list)
	if d.Len() == 0 {
		return nil, fmt.Errorf("words: %s has no usable words", path)
	}
	return d, nil
}

// normalizeLines splits s into lines, skipping blanks and comments.
func normalizeLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		w := strings.TrimSpace(line)
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, w)
	}
	return out
}

// validWord reports whether w is lowercase a–z within the length bounds.
func validWord(w string) bool {
	if len(w) < MinWordSize || len(w) > MaxWordSize {
		return false
	}
	for _, r := range w {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Len is the total number of words.
func (d *Dictionary) Len() int { return len(d.set) }

// Lengths returns the available word lengths in ascending order.
func (d *Dictionary) Lengths() []int {
	out := lo.Keys(d.classes)
	sort.Ints(out)
	return out
}

// Contains reports whether w is in the dictionary, ignoring case.
func (d *Dictionary) Contains(w string) bool {
	_, ok := d.set[strings.ToLower(w)]
	return ok
}

// RandomWithLength picks a uniformly random word of exactly n letters.
// ok is false if there is no such length class.
func (d *Dictionary) RandomWithLength(n int) (word string, ok bool) {
	class := d.classes[n]
	if len(class) == 0 {
		return "", false
	}
	i, err := rand.Int(rand.Reader, big.NewInt(int64(len(class))))
	if err != nil {
		return class[0], true
	}
	return class[i.Int64()], true
}

// EnsureWord turns user input into a usable secret word.
//
//   - An integer is a length request answered with a random word.
//   - Anything else must be within the length bounds and in the dictionary.
//
// The result is always lowercase.
func (d *Dictionary) EnsureWord(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if err := testLength(n); err != nil {
			return "", err
		}
		w, ok := d.RandomWithLength(n)
		if !ok {
			return "", &game.WordLengthError{Length: n}
		}
		return w, nil
	}
	return d.Validate(raw)
}

// Validate checks a literal word against the length bounds and the
// dictionary, returning it lowercased. Unlike EnsureWord it never treats
// input as a length request; guesses go through here.
func (d *Dictionary) Validate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if err := testLength(len(raw)); err != nil {
		return "", err
	}
	if !d.Contains(raw) {
		return "", &game.WordNotFoundError{Word: raw}
	}
	return strings.ToLower(raw), nil
}

func testLength(n int) error {
	if n < MinWordSize || n > MaxWordSize {
		return &game.WordLengthError{Length: n}
	}
	return nil
}
