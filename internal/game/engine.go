// internal/game/engine.go
//
// Duel state machine for a single two-player game.
// Responsibilities:
//   - Create duels in Waiting with the challenger's secret fixed.
//   - Start them when the challenged side responds with a same-length word.
//   - Route guesses to the right side and move progress forward only:
//     Waiting -> Started -> Ending(i) -> Over(winner | draw).
//   - Compute final scores exactly once, when the second side finishes.
//
// Notes:
//   - Side 0 is the challenger, side 1 the challenged player. Side 1 guesses
//     the challenger's word, side 0 the response word.
//   - A Duel is not safe for concurrent use; the registry that owns it
//     serialises access.
package game

import "time"

const sideCount = 2

// Duel holds the state of one duel.
type Duel struct {
	sides      [sideCount]Side
	created    time.Time
	start      time.Time
	end        [sideCount]time.Time
	progress   Progress
	score      [sideCount]uint64
	maxGuesses int
	variant    Variant
	scorer     Scorer
	clock      func() time.Time
}

// Option customises a Duel at creation.
type Option func(*Duel)

// WithClock replaces time.Now as the duel's time source.
func WithClock(now func() time.Time) Option {
	return func(d *Duel) { d.clock = now }
}

// New creates a duel in Waiting. word is the secret the challenged side
// will have to guess; it fixes the word length and max guesses for good.
func New(challenger, challenged UserID, word string, v Variant, opts ...Option) (*Duel, error) {
	if challenger == challenged {
		return nil, ErrSelfChallenge
	}
	d := &Duel{
		sides:      [sideCount]Side{newSide(challenger), newSide(challenged)},
		progress:   Progress{State: Waiting, Winner: -1},
		maxGuesses: len(word) + 1,
		variant:    v,
		scorer:     v.Scorer(),
		clock:      time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	d.sides[1].Secret = word
	d.created = d.clock()
	d.start = d.created
	return d, nil
}

// Respond starts the duel with the challenged side's word, which the
// challenger will have to guess. responder must be the challenged user.
func (d *Duel) Respond(word string, responder UserID) error {
	if d.progress.State != Waiting {
		return &ProgressError{Started: true}
	}
	if len(word) != d.WordLength() {
		return &WordLengthError{Length: len(word)}
	}
	if responder != d.sides[1].User {
		return ErrBadAccept
	}
	d.sides[0].Secret = word
	d.progress = Progress{State: Started, Winner: -1}
	d.start = d.clock()
	return nil
}

// SendGuess submits guess for side i. Returns false, leaving the duel
// untouched, if the side index or guess length is wrong or the side may
// not move right now.
func (d *Duel) SendGuess(i int, guess string) bool {
	if i < 0 || i >= sideCount || len(guess) != d.WordLength() {
		return false
	}
	switch d.progress.State {
	case Started:
		if d.push(i, guess) {
			d.progress = Progress{State: Ending, Side: i, Winner: -1}
		}
		return true
	case Ending:
		if d.progress.Side == i {
			return false
		}
		if d.push(i, guess) {
			d.finish()
		}
		return true
	default:
		return false
	}
}

// push records a guess and stamps the side's end time if it is done.
func (d *Duel) push(i int, guess string) (done bool) {
	won := d.sides[i].PushGuess(guess)
	if won || len(d.sides[i].Guesses) >= d.maxGuesses {
		d.end[i] = d.clock()
		return true
	}
	return false
}

// finish computes scores and moves to Over. Only the strictly higher
// score wins; the loser, and both sides of a draw, keep 0.
func (d *Duel) finish() {
	var spans [sideCount]time.Duration
	for i, e := range d.end {
		if e.IsZero() {
			return
		}
		spans[i] = e.Sub(d.start)
	}
	score := d.scorer.Score(d, spans)
	for i := range d.sides {
		if !d.sides[i].Victorious() {
			score[i] = 0
		}
	}

	winner := -1
	switch {
	case score[0] > score[1]:
		winner = 0
	case score[1] > score[0]:
		winner = 1
	}
	d.score = [sideCount]uint64{}
	if winner >= 0 {
		d.score[winner] = score[winner]
	}
	d.progress = Progress{State: Over, Side: d.progress.Side, Winner: winner}
}

// ---------------------------------------------------------------------------

// WordLength is the length fixed by the challenger's word.
func (d *Duel) WordLength() int { return len(d.sides[1].Secret) }

// MatchUser maps a user to a side index.
func (d *Duel) MatchUser(id UserID) (int, bool) {
	for i := range d.sides {
		if d.sides[i].User == id {
			return i, true
		}
	}
	return -1, false
}

func (d *Duel) User(i int) UserID { return d.sides[i].User }
func (d *Duel) Secret(i int) string { return d.sides[i].Secret }
func (d *Duel) Progress() Progress { return d.progress }
func (d *Duel) Scores() [sideCount]uint64 { return d.score }
func (d *Duel) MaxGuesses() int { return d.maxGuesses }
func (d *Duel) Variant() Variant { return d.variant }
func (d *Duel) Created() time.Time { return d.created }
func (d *Duel) Start() time.Time { return d.start }

// End returns when side i finished, if it has.
func (d *Duel) End(i int) (time.Time, bool) {
	if i < 0 || i >= sideCount || d.end[i].IsZero() {
		return time.Time{}, false
	}
	return d.end[i], true
}

// Guesses returns a copy of side i's guess history.
func (d *Duel) Guesses(i int) []GuessRecord {
	return append([]GuessRecord(nil), d.sides[i].Guesses...)
}

// Victorious reports whether side i's last guess was a full match.
func (d *Duel) Victorious(i int) bool { return d.sides[i].Victorious() }
