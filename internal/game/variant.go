package game

import (
	"fmt"
	"strings"
	"time"
)

// Variant is the ruleset a duel is played under. Fixed at creation.
type Variant uint8

const (
	Timed Variant = iota
	TurnBased
)

// Variants lists every ruleset, in index order.
var Variants = [...]Variant{Timed, TurnBased}

func (v Variant) String() string {
	if v == TurnBased {
		return "turn"
	}
	return "timed"
}

// MarshalText lets variants travel as "timed"/"turn" in JSON.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseVariant accepts "timed" or "turn" (also "turnbased", "turn-based").
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "timed":
		return Timed, nil
	case "turn", "turnbased", "turn-based":
		return TurnBased, nil
	}
	return Timed, fmt.Errorf("unknown variant %q", s)
}

// Scorer computes both final scores once both sides have finished.
// spans holds each side's elapsed time from the duel start.
type Scorer interface {
	Score(d *Duel, spans [2]time.Duration) [2]uint64
}

// Scorer returns the scoring strategy for the variant.
func (v Variant) Scorer() Scorer {
	if v == TurnBased {
		return turnScoring{}
	}
	return timedScoring{}
}

type timedScoring struct{}

// Score gives each winning side its guess bonus plus the whole seconds
// (rounded up) it finished ahead of the other side. The time bonus only
// applies when both sides found their word.
func (timedScoring) Score(d *Duel, spans [2]time.Duration) [2]uint64 {
	last := max(spans[0], spans[1])
	var secs [2]uint64
	if d.sides[0].Victorious() && d.sides[1].Victorious() {
		for i, s := range spans {
			secs[i] = uint64((last - s + time.Second - 1) / time.Second)
		}
	}
	var out [2]uint64
	for i := range d.sides {
		if d.sides[i].Victorious() {
			out[i] = d.sides[i].TimedScore(secs[i], d.maxGuesses)
		}
	}
	return out
}

type turnScoring struct{}

// Score ignores time; a winning side earns more the more guesses its
// opponent needed beyond its own.
func (turnScoring) Score(d *Duel, _ [2]time.Duration) [2]uint64 {
	var out [2]uint64
	for i := range d.sides {
		if !d.sides[i].Victorious() {
			continue
		}
		delta := len(d.sides[1-i].Guesses) - len(d.sides[i].Guesses)
		out[i] = d.sides[i].TurnScore(d.maxGuesses, delta, d.WordLength())
	}
	return out
}
