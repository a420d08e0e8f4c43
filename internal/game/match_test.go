package game

import (
	"math/rand"
	"slices"
	"strings"
	"testing"
)

func TestMatchWord(t *testing.T) {
	cases := []struct {
		secret, guess string
		want          []MatchLetter
	}{
		{"slide", "tower", []MatchLetter{Null, Null, Null, Close, Null}},
		{"slide", "lease", []MatchLetter{Close, Null, Null, Close, Exact}},
		{"slide", "slide", []MatchLetter{Exact, Exact, Exact, Exact, Exact}},
		{"apple", "pleap", []MatchLetter{Close, Close, Close, Close, Close}},
		{"north", "worth", []MatchLetter{Null, Exact, Exact, Exact, Exact}},
		// one 'e' in the secret credits only one of the guessed 'e's
		{"crane", "eerie", []MatchLetter{Null, Null, Close, Null, Exact}},
		{"abbey", "babes", []MatchLetter{Close, Close, Exact, Exact, Null}},
	}
	for _, c := range cases {
		got := MatchWord(c.secret, c.guess)
		if !slices.Equal(got, c.want) {
			t.Errorf("MatchWord(%q, %q) = %v, want %v", c.secret, c.guess, got, c.want)
		}
	}
}

func TestMatchWordLengthMismatch(t *testing.T) {
	got := MatchWord("north", "quince")
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	for i, m := range got {
		if m != Null {
			t.Errorf("mark %d = %v, want null", i, m)
		}
	}
}

func TestMatchWordNeverOvercredits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const alphabet = "abcde"
	word := func(n int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		return b.String()
	}
	for n := 0; n < 2000; n++ {
		l := 4 + rng.Intn(5)
		secret, guess := word(l), word(l)
		marks := MatchWord(secret, guess)
		credited := map[byte]int{}
		for i, m := range marks {
			if m != Null {
				credited[guess[i]]++
			}
			if m == Exact && secret[i] != guess[i] {
				t.Fatalf("%s/%s: exact at %d without equal letters", secret, guess, i)
			}
		}
		for c, k := range credited {
			if have := strings.Count(secret, string(c)); k > have {
				t.Fatalf("%s/%s: letter %c credited %d times, secret has %d", secret, guess, c, k, have)
			}
		}
	}
}
