// assets/embed.go
//
// Embedded data shipped inside the binary.
//   - words.txt: the default duel dictionary used when WORDS_FILE is unset.

package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed words.txt
var FS embed.FS

// readLines returns the non-blank, non-comment lines of an embedded file,
// trimmed and lowercased.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// WordList returns the embedded default dictionary.
func WordList() ([]string, error) {
	return readLines("words.txt")
}
