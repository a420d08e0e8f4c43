// internal/game/types.go
//
// Core type definitions for the duel engine.
// Defines:
//   - UserID / ID: external user identity and opaque duel identifier.
//   - MatchLetter: per-letter result of a guess (null/close/exact).
//   - GuessRecord: one guess plus its feedback.
//   - Progress: the duel state machine value.

package game

import "fmt"

// UserID identifies a player on the hosting platform.
type UserID int64

// ID identifies a duel. Allocated once by the registry, never reused.
type ID uint64

// MatchLetter represents the evaluation result for a single letter in a guess.
// The numeric order Null < Close < Exact is used for keyboard aggregation.
type MatchLetter uint8

const (
	Null  MatchLetter = iota // not present in the word
	Close                    // present elsewhere
	Exact                    // present here
)

func (m MatchLetter) String() string {
	switch m {
	case Close:
		return "close"
	case Exact:
		return "exact"
	default:
		return "null"
	}
}

// MarshalText lets marks travel as "null"/"close"/"exact" in JSON.
func (m MatchLetter) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// GuessRecord is a guessed word with its feedback. Immutable once appended.
type GuessRecord struct {
	Word  string        `json:"word"`
	Marks []MatchLetter `json:"marks"`
}

// ProgressState enumerates the four duel phases.
type ProgressState uint8

const (
	Waiting ProgressState = iota
	Started
	Ending
	Over
)

// Progress is the duel state machine value.
//
//	Waiting -> Started -> Ending(Side) -> Over(Winner)
//
// Side is meaningful in Ending (the side that finished first).
// In Over, Winner is the winning side or -1 for a draw.
type Progress struct {
	State  ProgressState
	Side   int
	Winner int
}

// Draw reports whether the duel ended without a winner.
func (p Progress) Draw() bool { return p.State == Over && p.Winner < 0 }

func (p Progress) String() string {
	switch p.State {
	case Waiting:
		return "waiting"
	case Started:
		return "started"
	case Ending:
		return fmt.Sprintf("ending(%d)", p.Side)
	default:
		if p.Winner < 0 {
			return "over(draw)"
		}
		return fmt.Sprintf("over(%d)", p.Winner)
	}
}

func (p Progress) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
