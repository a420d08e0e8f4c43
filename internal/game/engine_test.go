package game

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func mustNew(t *testing.T, a, b UserID, word string, v Variant, c *fakeClock) *Duel {
	t.Helper()
	d, err := New(a, b, word, v, WithClock(c.now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func guess(t *testing.T, d *Duel, side int, word string) {
	t.Helper()
	if !d.SendGuess(side, word) {
		t.Fatalf("guess %q by side %d rejected in %v", word, side, d.Progress())
	}
}

func TestBasicTimedDuel(t *testing.T) {
	clk := newClock()
	const a, b = UserID(1011), UserID(1013)
	d := mustNew(t, a, b, "north", Timed, clk)

	if i, ok := d.MatchUser(b); !ok || i != 1 {
		t.Fatalf("MatchUser(b) = %d,%v", i, ok)
	}
	if i, ok := d.MatchUser(a); !ok || i != 0 {
		t.Fatalf("MatchUser(a) = %d,%v", i, ok)
	}
	if _, ok := d.MatchUser(1012); ok {
		t.Fatal("MatchUser matched a stranger")
	}
	if d.MaxGuesses() != 6 {
		t.Fatalf("MaxGuesses = %d, want 6", d.MaxGuesses())
	}
	if d.Progress().State != Waiting {
		t.Fatalf("progress = %v, want waiting", d.Progress())
	}
	if err := d.Respond("slide", b); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if d.Progress().State != Started {
		t.Fatalf("progress = %v, want started", d.Progress())
	}

	guess(t, d, 0, "tower")
	guess(t, d, 1, "trial")
	if d.Progress().State != Started {
		t.Fatalf("progress = %v, want started", d.Progress())
	}
	guess(t, d, 0, "lease")
	guess(t, d, 1, "rites")
	clk.advance(10 * time.Second)
	guess(t, d, 0, "slide")
	if p := d.Progress(); p.State != Ending || p.Side != 0 {
		t.Fatalf("progress = %v, want ending(0)", p)
	}
	if d.SendGuess(0, "slide") {
		t.Fatal("finished side was allowed another guess")
	}
	guess(t, d, 1, "porty")
	guess(t, d, 1, "worth")
	guess(t, d, 1, "forth")
	if p := d.Progress(); p.State != Ending {
		t.Fatalf("progress = %v, want ending(0)", p)
	}
	clk.advance(30 * time.Second)
	guess(t, d, 1, "north")

	p := d.Progress()
	if p.State != Over || p.Winner != 0 {
		t.Fatalf("progress = %v, want over(0)", p)
	}
	// 30s ahead + (1+6-3)*3 for the winner; the loser keeps nothing.
	if got := d.Scores(); got != [2]uint64{42, 0} {
		t.Fatalf("scores = %v, want [42 0]", got)
	}
	if d.SendGuess(1, "north") || d.SendGuess(0, "slide") {
		t.Fatal("guess accepted after game over")
	}
}

func TestRejections(t *testing.T) {
	clk := newClock()
	d := mustNew(t, 1, 2, "ounce", Timed, clk)
	if d.SendGuess(0, "scout") {
		t.Fatal("guess accepted while waiting")
	}
	if err := d.Respond("scout", 2); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	before := d.Views(ViewSeparator)

	if d.SendGuess(0, "quince") {
		t.Error("accepted a 6-letter guess")
	}
	if d.SendGuess(1, "rows") {
		t.Error("accepted a 4-letter guess")
	}
	if d.SendGuess(2, "steed") || d.SendGuess(-1, "steed") {
		t.Error("accepted a bad side index")
	}
	if d.Views(ViewSeparator) != before {
		t.Error("rejected guesses changed the views")
	}
	if d.Progress().State != Started {
		t.Errorf("progress = %v, want started", d.Progress())
	}
}

func TestRespondErrors(t *testing.T) {
	d := mustNew(t, 1, 2, "north", Timed, newClock())

	var lenErr *WordLengthError
	if err := d.Respond("quince", 2); !errors.As(err, &lenErr) || lenErr.Length != 6 {
		t.Fatalf("Respond(bad length) = %v", err)
	}
	if err := d.Respond("slide", 1); !errors.Is(err, ErrBadAccept) {
		t.Fatalf("Respond(challenger) = %v, want ErrBadAccept", err)
	}
	if d.Progress().State != Waiting || d.Secret(0) != "" {
		t.Fatal("failed Respond mutated the duel")
	}
	if err := d.Respond("slide", 2); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	var pErr *ProgressError
	if err := d.Respond("slide", 2); !errors.As(err, &pErr) || !pErr.Started {
		t.Fatalf("second Respond = %v, want already started", err)
	}
}

func TestNewRejectsSelfDuel(t *testing.T) {
	if _, err := New(5, 5, "north", Timed); !errors.Is(err, ErrSelfChallenge) {
		t.Fatalf("New(self) = %v", err)
	}
}

func TestDrawWhenNobodyWins(t *testing.T) {
	d := mustNew(t, 1, 2, "abcd", Timed, newClock())
	if err := d.Respond("efgh", 2); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < d.MaxGuesses(); i++ {
		guess(t, d, 0, "zzzz")
	}
	if p := d.Progress(); p.State != Ending || p.Side != 0 {
		t.Fatalf("progress = %v, want ending(0)", p)
	}
	for i := 0; i < d.MaxGuesses(); i++ {
		guess(t, d, 1, "yyyy")
	}
	p := d.Progress()
	if !p.Draw() {
		t.Fatalf("progress = %v, want draw", p)
	}
	if d.Scores() != [2]uint64{} {
		t.Fatalf("scores = %v, want zeros", d.Scores())
	}
}

func TestLoserOfTimedDuelScoresZero(t *testing.T) {
	clk := newClock()
	d := mustNew(t, 1, 2, "north", Timed, clk)
	if err := d.Respond("slide", 2); err != nil {
		t.Fatal(err)
	}
	guess(t, d, 1, "north") // side 1 wins in one
	for i := 0; i < d.MaxGuesses(); i++ {
		clk.advance(time.Minute)
		guess(t, d, 0, "tower")
	}
	p := d.Progress()
	if p.State != Over || p.Winner != 1 {
		t.Fatalf("progress = %v, want over(1)", p)
	}
	// no time bonus unless both found their word: (1+6-1)*3
	if got := d.Scores(); got != [2]uint64{0, 18} {
		t.Fatalf("scores = %v, want [0 18]", got)
	}
}

func TestTurnBasedScoring(t *testing.T) {
	d := mustNew(t, 1, 2, "north", TurnBased, newClock())
	if err := d.Respond("slide", 2); err != nil {
		t.Fatal(err)
	}
	guess(t, d, 0, "slide")
	for _, w := range []string{"trial", "rites", "worth", "north"} {
		guess(t, d, 1, w)
	}
	p := d.Progress()
	if p.State != Over || p.Winner != 0 {
		t.Fatalf("progress = %v, want over(0)", p)
	}
	// (3^1.6*4 + 6) * 5/5 = 29.19...
	if got := d.Scores(); got != [2]uint64{29, 0} {
		t.Fatalf("scores = %v, want [29 0]", got)
	}
}

func TestEqualScoresDraw(t *testing.T) {
	d := mustNew(t, 1, 2, "north", TurnBased, newClock())
	if err := d.Respond("slide", 2); err != nil {
		t.Fatal(err)
	}
	guess(t, d, 1, "north")
	guess(t, d, 0, "slide")
	if p := d.Progress(); !p.Draw() {
		t.Fatalf("progress = %v, want draw", p)
	}
	if d.Scores() != [2]uint64{} {
		t.Fatalf("scores = %v, want zeros on a draw", d.Scores())
	}
}

func TestKeyboardNeverDowngrades(t *testing.T) {
	s := newSide(1)
	s.Secret = "slide"
	s.PushGuess("lease")
	if s.Keyboard['e'] != Exact || s.Keyboard['l'] != Close || s.Keyboard['a'] != Null {
		t.Fatalf("keyboard after lease = %v", s.Keyboard)
	}
	s.PushGuess("sleet")
	if s.Keyboard['e'] != Exact {
		t.Fatalf("e downgraded to %v", s.Keyboard['e'])
	}
	if s.Keyboard['l'] != Exact || s.Keyboard['s'] != Exact {
		t.Fatalf("keyboard not upgraded: %v", s.Keyboard)
	}
	if s.Victorious() {
		t.Fatal("victorious without a full match")
	}
	if !s.PushGuess("slide") || !s.Victorious() {
		t.Fatal("full match not victorious")
	}
}

func TestScoreFormulas(t *testing.T) {
	s := newSide(1)
	s.Guesses = make([]GuessRecord, 3)
	if got := s.TimedScore(7, 6); got != 7+12 {
		t.Errorf("TimedScore = %d, want 19", got)
	}
	s.Guesses = make([]GuessRecord, 9)
	if got := s.TimedScore(0, 6); got != 3 {
		t.Errorf("TimedScore with too many guesses = %d, want 3", got)
	}
	s.Guesses = make([]GuessRecord, 2)
	if got := s.TurnScore(9, 0, 8); got != uint64(8*8/5) {
		t.Errorf("TurnScore(no delta) = %d, want %d", got, 8*8/5)
	}
	if got := s.TurnScore(9, -4, 5); got != 8 {
		t.Errorf("TurnScore(negative delta) = %d, want 8", got)
	}
}

func TestSnapshot(t *testing.T) {
	clk := newClock()
	created := clk.now()
	d := mustNew(t, 1, 2, "north", Timed, clk)
	clk.advance(time.Minute)
	if err := d.Respond("slide", 2); err != nil {
		t.Fatal(err)
	}

	s := d.Snapshot(7, 1)
	if !s.Created.Equal(created) || !d.Created().Equal(created) {
		t.Fatalf("created = %v, want %v", s.Created, created)
	}
	if !d.Start().Equal(created.Add(time.Minute)) {
		t.Fatalf("start = %v", d.Start())
	}
	if s.Secrets != nil || s.Scores != nil {
		t.Fatalf("secrets revealed before the duel is over: %+v", s)
	}

	guess(t, d, 1, "north")
	guess(t, d, 0, "slide")
	s = d.Snapshot(7, 0)
	if s.Secrets == nil || *s.Secrets != [2]string{"slide", "north"} {
		t.Fatalf("secrets = %v", s.Secrets)
	}
	if s.ID != 7 || s.Side != 0 || s.Opponent != 1 || len(s.Guesses) != 1 {
		t.Fatalf("snapshot = %+v", s)
	}
}
