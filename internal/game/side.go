package game

import "math"

// Side is one player's state within a duel.
type Side struct {
	User     UserID
	Secret   string // the word this side has to guess
	Guesses  []GuessRecord
	Keyboard map[byte]MatchLetter
}

func newSide(id UserID) Side {
	return Side{User: id, Keyboard: make(map[byte]MatchLetter)}
}

// PushGuess scores guess against the side's secret, records it and folds
// the result into the keyboard. Returns true if the guess wins.
func (s *Side) PushGuess(guess string) bool {
	marks := MatchWord(s.Secret, guess)
	for i := 0; i < len(guess) && i < len(marks); i++ {
		c := guess[i]
		if prev, ok := s.Keyboard[c]; !ok || marks[i] > prev {
			s.Keyboard[c] = marks[i]
		}
	}
	s.Guesses = append(s.Guesses, GuessRecord{Word: guess, Marks: marks})
	return s.Victorious()
}

// Victorious reports whether the most recent guess is all Exact.
func (s *Side) Victorious() bool {
	if len(s.Guesses) == 0 {
		return false
	}
	return allExact(s.Guesses[len(s.Guesses)-1].Marks)
}

// TimedScore rewards speed and guess efficiency. seconds is the time
// advantage over the other side (0 for whoever finished last).
func (s *Side) TimedScore(seconds uint64, maxGuesses int) uint64 {
	used := min(len(s.Guesses), maxGuesses)
	return seconds + uint64(1+maxGuesses-used)*3
}

// TurnScore rewards guess efficiency plus a super-linear bonus for every
// guess the opponent needed beyond this side's count, scaled by word length.
func (s *Side) TurnScore(maxGuesses, opponentDelta, wordLength int) uint64 {
	base := float64(maxGuesses - min(len(s.Guesses), maxGuesses) + 1)
	delta := float64(max(opponentDelta, 0))
	return uint64((math.Pow(delta, 1.6)*4 + base) * float64(wordLength) / 5)
}
