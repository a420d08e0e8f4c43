package session

import (
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/players"
	"github.com/robalobadob/worduel/internal/store"
)

// Move describes a duel after an in-game operation. Winner is set once the
// duel is over and was not a draw.
type Move struct {
	Accepted bool          `json:"accepted"`
	Progress game.Progress `json:"progress"`
	State    string        `json:"state"`
	Views    string        `json:"views"`
	Winner   game.UserID   `json:"winner,omitempty"`
	Opponent game.UserID   `json:"opponent"`
	Snapshot game.Snapshot `json:"snapshot"`
}

func describe(t Turn, accepted, withScores bool) Move {
	p := t.Duel.Progress()
	m := Move{
		Accepted: accepted,
		Progress: p,
		State:    t.Duel.StateLine(withScores),
		Views:    t.Duel.Views(game.ViewSeparator),
		Opponent: t.Duel.User(1 - t.Side),
		Snapshot: t.Duel.Snapshot(t.ID, t.Side),
	}
	if p.State == game.Over && p.Winner >= 0 {
		m.Winner = t.Duel.User(p.Winner)
	}
	return m
}

// Guess submits a guess. The word must be in the dictionary; a guess the
// duel refuses (wrong turn, wrong length) comes back with Accepted false.
// Reaching Over removes the duel and posts scores.
func (s *Service) Guess(caller game.UserID, v game.Variant, opponent game.UserID, raw string) (Move, error) {
	word, err := s.dict.Validate(raw)
	if err != nil {
		return Move{}, err
	}
	return Act(s, caller, v, opponent, func(t Turn) (Result[Move], error) {
		if t.Duel.Progress().State == game.Waiting {
			return Result[Move]{}, &game.ProgressError{Started: false}
		}
		ok := t.Duel.SendGuess(t.Side, word)
		m := describe(t, ok, true)
		if m.Progress.State == game.Over {
			sc := t.Duel.Scores()
			log.Info().
				Uint64("game", uint64(t.ID)).
				Str("outcome", m.Progress.String()).
				Uints64("scores", sc[:]).
				Msg("duel finished")
			return Remove(m, true), nil
		}
		return Continue(m), nil
	})
}

// Forfeit abandons the duel without posting scores. opponent must name the
// other player, also for timed duels.
func (s *Service) Forfeit(caller game.UserID, v game.Variant, opponent game.UserID) (Move, error) {
	return Act(s, caller, v, opponent, func(t Turn) (Result[Move], error) {
		if t.Duel.User(1-t.Side) != opponent {
			return Result[Move]{}, game.ErrForfeitBadUser
		}
		log.Info().
			Uint64("game", uint64(t.ID)).
			Int64("user", int64(caller)).
			Str("progress", t.Duel.Progress().String()).
			Msg("duel forfeited")
		return Remove(describe(t, true, false), false), nil
	})
}

// Keyboard renders the caller's letter usage.
func (s *Service) Keyboard(caller game.UserID, v game.Variant, opponent game.UserID) (string, error) {
	return Act(s, caller, v, opponent, func(t Turn) (Result[string], error) {
		return Continue(t.Duel.Keyboard(t.Side)), nil
	})
}

// Status describes the caller's duel without changing it.
func (s *Service) Status(caller game.UserID, v game.Variant, opponent game.UserID) (Move, error) {
	return Act(s, caller, v, opponent, func(t Turn) (Result[Move], error) {
		return Continue(describe(t, true, true)), nil
	})
}

// Overview lists a user's live duels and pending invites.
type Overview struct {
	Games   []game.Snapshot   `json:"games"`
	Invites []players.Pending `json:"invites"`
}

// Overview reads a user's state under shared locks.
func (s *Service) Overview(user game.UserID) Overview {
	out := Overview{Games: []game.Snapshot{}, Invites: []players.Pending{}}
	s.players.View(func(prd players.Reader) {
		pd, ok := prd.Get(user)
		if !ok {
			return
		}
		out.Invites = append(out.Invites, pd.Invites()...)
		s.games.View(func(grd store.Reader) {
			for _, v := range game.Variants {
				for _, id := range pd.Slot(v).IDs() {
					duel, ok := grd.Get(id)
					if !ok {
						continue
					}
					if side, ok := duel.MatchUser(user); ok {
						out.Games = append(out.Games, duel.Snapshot(id, side))
					}
				}
			}
		})
	})
	return out
}
