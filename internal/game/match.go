package game

// MatchWord implements the duplicate-aware two-pass Wordle scoring.
//
// Pass 1:
//   - Mark exact matches.
//   - Count remaining (non-exact) secret letters.
//
// Pass 2:
//   - For each non-exact guess letter in order: if there is remaining count
//     for that letter, mark Close and decrement the count; otherwise Null.
//
// The engine only calls this with equal lengths. Mismatched input yields an
// all-Null slice the length of the secret.
func MatchWord(secret, guess string) []MatchLetter {
	n := len(secret)
	res := make([]MatchLetter, n)
	if len(guess) != n {
		return res
	}

	counts := make(map[byte]int, n)
	for i := 0; i < n; i++ {
		if secret[i] == guess[i] {
			res[i] = Exact
		} else {
			counts[secret[i]]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == Exact {
			continue
		}
		if c := guess[i]; counts[c] > 0 {
			res[i] = Close
			counts[c]--
		}
	}
	return res
}

// allExact returns true if every mark is Exact.
func allExact(m []MatchLetter) bool {
	if len(m) == 0 {
		return false
	}
	for _, x := range m {
		if x != Exact {
			return false
		}
	}
	return true
}
