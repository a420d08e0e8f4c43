package session

import (
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/players"
	"github.com/robalobadob/worduel/internal/store"
)

// Turn is what an operation passed to Act gets to work with.
type Turn struct {
	ID     game.ID
	Side   int // caller's side index
	Duel   *game.Duel
	Player *players.Data
}

// Result is an operation's value plus what Act should do with the duel.
type Result[T any] struct {
	Value T
	// Remove deletes the duel and clears both players' bindings.
	Remove bool
	// CommitScores posts the final scores; only meaningful with Remove.
	CommitScores bool
}

// Continue keeps the duel.
func Continue[T any](v T) Result[T] { return Result[T]{Value: v} }

// Remove deletes the duel, posting scores when commit is set.
func Remove[T any](v T, commit bool) Result[T] {
	return Result[T]{Value: v, Remove: true, CommitScores: commit}
}

// Act runs op on caller's duel of variant v. opponent selects the turn-based
// duel and is ignored for timed ones.
//
// A binding whose duel has vanished is cleared and reported as
// ErrGameDeleted without calling op. An error from op leaves the duel as op
// left it and skips any removal.
func Act[T any](s *Service, caller game.UserID, v game.Variant, opponent game.UserID, op func(Turn) (Result[T], error)) (T, error) {
	var (
		out T
		err error
	)
	s.players.Update(func(ptx *players.Tx) {
		pd, ok := ptx.Get(caller)
		if !ok {
			err = game.ErrNoGame
			return
		}
		id, ok := pd.Slot(v).Lookup(opponent)
		if !ok {
			err = game.ErrNoGame
			return
		}

		s.games.Update(func(gtx *store.Tx) {
			duel, ok := gtx.Get(id)
			if !ok {
				log.Warn().Uint64("game", uint64(id)).Int64("user", int64(caller)).Msg("binding to deleted game cleared")
				pd.Slot(v).UnbindGame(id)
				ptx.Prune(caller)
				err = game.ErrGameDeleted
				return
			}
			side, ok := duel.MatchUser(caller)
			if !ok {
				err = game.ErrNoGame
				return
			}

			var res Result[T]
			res, err = op(Turn{ID: id, Side: side, Duel: duel, Player: pd})
			if err != nil {
				return
			}
			out = res.Value
			if res.Remove {
				s.drop(ptx, gtx, id)
				if res.CommitScores {
					s.commit(id, duel)
				}
			}
		})
	})
	return out, err
}
