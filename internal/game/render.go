package game

import (
	"fmt"
	"strings"
	"time"
)

// ViewSeparator goes between the two grids rendered by Views.
const ViewSeparator = " │ "

var keyboardRows = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

func markSquare(m MatchLetter) string {
	switch m {
	case Exact:
		return "🟩"
	case Close:
		return "🟨"
	default:
		return "⬛"
	}
}

// RenderMatch formats one guess in monospace: " X " null, ":X:" close,
// "[X]" exact.
func RenderMatch(word string, marks []MatchLetter) string {
	var b strings.Builder
	for i := 0; i < len(word) && i < len(marks); i++ {
		c := strings.ToUpper(word[i : i+1])
		switch marks[i] {
		case Exact:
			b.WriteString("[" + c + "]")
		case Close:
			b.WriteString(":" + c + ":")
		default:
			b.WriteString(" " + c + " ")
		}
	}
	return b.String()
}

// View renders side i's guesses as a monospace grid of MaxGuesses rows.
func (d *Duel) View(i int) string {
	rows := make([]string, d.maxGuesses)
	blank := strings.Repeat(" ", d.WordLength()*3)
	for r := range rows {
		if r < len(d.sides[i].Guesses) {
			g := d.sides[i].Guesses[r]
			rows[r] = RenderMatch(g.Word, g.Marks)
		} else {
			rows[r] = blank
		}
	}
	return strings.Join(rows, "\n")
}

// ColorView renders side i's guesses as emoji: a letter row followed by a
// square row per guess.
func (d *Duel) ColorView(i int) string {
	rows := make([]string, 0, d.maxGuesses*2)
	blank := strings.Repeat("⬜", d.WordLength())
	for r := 0; r < d.maxGuesses; r++ {
		if r >= len(d.sides[i].Guesses) {
			rows = append(rows, blank, blank)
			continue
		}
		g := d.sides[i].Guesses[r]
		var letters, squares strings.Builder
		for j := 0; j < len(g.Word); j++ {
			letters.WriteString(" " + strings.ToUpper(g.Word[j:j+1]))
			squares.WriteString(markSquare(g.Marks[j]))
		}
		rows = append(rows, letters.String(), squares.String())
	}
	return strings.Join(rows, "\n")
}

// Views puts side 0's colour view beside side 1's monospace view.
// The monospace grid is padded to line up with both colour rows.
func (d *Duel) Views(sep string) string {
	left := strings.Split(d.ColorView(0), "\n")
	right := strings.Split(d.View(1), "\n")
	blank := strings.Repeat(" ", d.WordLength()*3)
	out := make([]string, len(left))
	for i := range left {
		r := blank
		if i%2 == 0 && i/2 < len(right) {
			r = right[i/2]
		}
		out[i] = left[i] + sep + r
	}
	return strings.Join(out, "\n")
}

// Keyboard shows the best status seen for every letter side i has tried.
func (d *Duel) Keyboard(i int) string {
	var b strings.Builder
	kb := d.sides[i].Keyboard
	for _, row := range keyboardRows {
		for j := 0; j < len(row); j++ {
			b.WriteString(strings.ToUpper(row[j:j+1]) + "  ")
		}
		b.WriteByte('\n')
		for j := 0; j < len(row); j++ {
			if m, ok := kb[row[j]]; ok {
				b.WriteString(markSquare(m) + " ")
			} else {
				b.WriteString("⬜ ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// StateLine is a one-line summary of progress.
func (d *Duel) StateLine(withScores bool) string {
	p := d.progress
	switch p.State {
	case Waiting:
		return "Waiting"
	case Started:
		return "Both players active, game in progress"
	case Ending:
		took := "some time"
		if e, ok := d.End(p.Side); ok {
			took = fmt.Sprintf("%d seconds", int(e.Sub(d.start).Seconds()))
		}
		return fmt.Sprintf("Player %d finished in %s, game in progress", p.Side, took)
	}
	if p.Winner < 0 {
		return "Game over (draw)"
	}
	if !withScores {
		return "Game over"
	}
	return fmt.Sprintf("Game over (winner: %d, score: %d:%d)",
		d.User(p.Winner), d.score[p.Winner], d.score[1-p.Winner])
}

// Snapshot is a read-only picture of a duel from one side's point of view.
// Secrets are only included once the duel is over.
type Snapshot struct {
	ID         ID            `json:"id"`
	Variant    string        `json:"variant"`
	Progress   Progress      `json:"progress"`
	Side       int           `json:"side"`
	Players    [2]UserID     `json:"players"`
	WordLength int           `json:"wordLength"`
	MaxGuesses int           `json:"maxGuesses"`
	Guesses    []GuessRecord `json:"guesses"`
	Opponent   int           `json:"opponentGuesses"`
	Scores     *[2]uint64    `json:"scores,omitempty"`
	Secrets    *[2]string    `json:"secrets,omitempty"`
	State      string        `json:"state"`
	Created    time.Time     `json:"created"`
}

// Snapshot copies what side i may see.
func (d *Duel) Snapshot(id ID, i int) Snapshot {
	s := Snapshot{
		ID:         id,
		Variant:    d.variant.String(),
		Progress:   d.progress,
		Side:       i,
		Players:    [2]UserID{d.sides[0].User, d.sides[1].User},
		WordLength: d.WordLength(),
		MaxGuesses: d.maxGuesses,
		Guesses:    d.Guesses(i),
		Opponent:   len(d.sides[1-i].Guesses),
		State:      d.StateLine(true),
		Created:    d.Created(),
	}
	if d.progress.State == Over {
		sc := d.score
		sec := [2]string{d.sides[0].Secret, d.sides[1].Secret}
		s.Scores, s.Secrets = &sc, &sec
	}
	return s
}
