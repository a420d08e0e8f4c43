// internal/session/service.go
//
// Service coordinates players, duels and scores.
//
// Responsibilities:
//   - Challenge / accept / reject invites.
//   - Run in-game operations through Act, which locates the caller's duel,
//     applies the operation and performs any removal it asks for.
//   - Expire stale invites and abandoned timed duels (Sweep).
//
// Locking:
//   - Player registry lock is always taken before the duel registry lock.
//   - Scores are posted while both are held; the score board has its own
//     lock and never calls back into the registries.

package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/players"
	"github.com/robalobadob/worduel/internal/scores"
	"github.com/robalobadob/worduel/internal/store"
	"github.com/robalobadob/worduel/internal/words"
)

// Policy holds the expiry timings.
type Policy struct {
	TimedInviteTTL time.Duration
	TurnInviteTTL  time.Duration
	// TimedGameTTL bounds how long an accepted timed duel may run.
	TimedGameTTL time.Duration
}

// DefaultPolicy returns the stock timings.
func DefaultPolicy() Policy {
	return Policy{
		TimedInviteTTL: 5 * time.Minute,
		TurnInviteTTL:  15 * time.Minute,
		TimedGameTTL:   10 * time.Minute,
	}
}

// InviteTTL returns the invite lifetime for v.
func (p Policy) InviteTTL(v game.Variant) time.Duration {
	if v == game.TurnBased {
		return p.TurnInviteTTL
	}
	return p.TimedInviteTTL
}

// Service is constructed once and shared by every host.
type Service struct {
	dict    *words.Dictionary
	players *players.Registry
	games   *store.Registry
	scores  *scores.Manager
	policy  Policy
	clock   func() time.Time
}

// Option customises a Service.
type Option func(*Service)

func WithPolicy(p Policy) Option { return func(s *Service) { s.policy = p } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.clock = now } }

func WithScores(m *scores.Manager) Option { return func(s *Service) { s.scores = m } }

// New builds a Service over dict. Scores default to an in-memory board.
func New(dict *words.Dictionary, opts ...Option) *Service {
	s := &Service{
		dict:    dict,
		players: players.NewRegistry(),
		games:   store.NewRegistry(),
		policy:  DefaultPolicy(),
		clock:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.scores == nil {
		s.scores = scores.NewManager(scores.NewMemoryBoard())
	}
	return s
}

func (s *Service) Dictionary() *words.Dictionary { return s.dict }
func (s *Service) Scores() *scores.Manager { return s.scores }
func (s *Service) Policy() Policy { return s.policy }

// ActiveGames is the number of live duels.
func (s *Service) ActiveGames() int { return s.games.Len() }

// ---- invites ----

// Challenge creates a Waiting duel with the word (or random word of the
// requested length) that opponent will have to guess, binds it to owner and
// invites opponent.
func (s *Service) Challenge(owner, opponent game.UserID, v game.Variant, raw string) (game.ID, error) {
	if owner == opponent {
		return 0, game.ErrSelfChallenge
	}
	word, err := s.dict.EnsureWord(raw)
	if err != nil {
		return 0, err
	}
	duel, err := game.New(owner, opponent, word, v, game.WithClock(s.clock))
	if err != nil {
		return 0, err
	}

	var id game.ID
	s.players.Update(func(ptx *players.Tx) {
		own := ptx.Entry(owner)
		if _, busy := own.Slot(v).Lookup(opponent); busy {
			ptx.Prune(owner)
			err = game.ErrAlreadyInGame
			return
		}
		target := ptx.Entry(opponent)
		id = s.games.NextID()

		s.games.Update(func(gtx *store.Tx) {
			gtx.Insert(id, duel)
			own.Slot(v).Bind(opponent, id)
			inv := players.Invite{Game: id, Expiry: s.clock().Add(s.policy.InviteTTL(v))}
			if prev, replaced := target.SetInvite(v, owner, inv); replaced && prev.Game != id {
				s.drop(ptx, gtx, prev.Game, owner, opponent)
			}
		})
	})
	if err != nil {
		return 0, err
	}

	log.Info().
		Uint64("game", uint64(id)).
		Int64("owner", int64(owner)).
		Int64("opponent", int64(opponent)).
		Str("variant", v.String()).
		Int("length", len(word)).
		Msg("challenge issued")
	return id, nil
}

// AcceptInvite starts the duel challenger invited acceptor to, with raw as
// the word challenger has to guess. A wrong-length word leaves the invite in
// place so the acceptor can retry.
func (s *Service) AcceptInvite(acceptor, challenger game.UserID, v game.Variant, raw string) (game.ID, error) {
	word, err := s.dict.EnsureWord(raw)
	if err != nil {
		return 0, err
	}

	var id game.ID
	s.players.Update(func(ptx *players.Tx) {
		pd, ok := ptx.Get(acceptor)
		if !ok {
			err = game.ErrNoInvite
			return
		}
		inv, ok := pd.Invite(v, challenger)
		if !ok || inv.Expired(s.clock()) {
			err = game.ErrNoInvite
			return
		}
		if _, busy := pd.Slot(v).Lookup(challenger); busy {
			err = game.ErrAlreadyInGame
			return
		}

		s.games.Update(func(gtx *store.Tx) {
			duel, ok := gtx.Get(inv.Game)
			if !ok {
				s.forget(ptx, inv.Game, acceptor, challenger)
				err = game.ErrGameDeleted
				return
			}
			if duel.Progress().State != game.Waiting {
				pd.TakeInvite(v, challenger)
				err = &game.ProgressError{Started: true}
				return
			}
			if err = duel.Respond(word, acceptor); err != nil {
				return
			}
			pd.TakeInvite(v, challenger)
			pd.Slot(v).Bind(challenger, inv.Game)
			id = inv.Game
		})
	})
	if err != nil {
		return 0, err
	}

	log.Info().
		Uint64("game", uint64(id)).
		Int64("acceptor", int64(acceptor)).
		Int64("challenger", int64(challenger)).
		Str("variant", v.String()).
		Msg("invite accepted")
	return id, nil
}

// RejectInvite drops the invite and its duel. The removed duel is returned
// so the caller can reveal the challenger's word; it is nil if the duel had
// already vanished.
func (s *Service) RejectInvite(rejecter, challenger game.UserID, v game.Variant) (*game.Duel, error) {
	var (
		duel *game.Duel
		err  error
	)
	s.players.Update(func(ptx *players.Tx) {
		pd, ok := ptx.Get(rejecter)
		if !ok {
			err = game.ErrNoInvite
			return
		}
		inv, ok := pd.TakeInvite(v, challenger)
		if !ok {
			err = game.ErrNoInvite
			return
		}
		s.games.Update(func(gtx *store.Tx) {
			duel = s.drop(ptx, gtx, inv.Game, rejecter, challenger)
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("rejecter", int64(rejecter)).
		Int64("challenger", int64(challenger)).
		Str("variant", v.String()).
		Msg("invite rejected")
	return duel, nil
}

// ---- removal ----

// drop removes duel id and every binding or invite that refers to it.
// users are cleaned even when the duel is already gone; the duel's own
// players are always cleaned. Returns the removed duel, if any.
func (s *Service) drop(ptx *players.Tx, gtx *store.Tx, id game.ID, users ...game.UserID) *game.Duel {
	duel, ok := gtx.Remove(id)
	if ok {
		users = append(users, duel.User(0), duel.User(1))
	}
	s.forget(ptx, id, users...)
	return duel
}

// forget clears users' bindings and invites for id.
func (s *Service) forget(ptx *players.Tx, id game.ID, users ...game.UserID) {
	for _, u := range users {
		pd, ok := ptx.Get(u)
		if !ok {
			continue
		}
		for _, v := range game.Variants {
			pd.Slot(v).UnbindGame(id)
		}
		pd.DropInvitesFor(id)
	}
	ptx.Prune(users...)
}

// commit posts a finished duel's scores.
func (s *Service) commit(id game.ID, duel *game.Duel) {
	if err := s.scores.AddFromGame(context.Background(), duel); err != nil {
		log.Error().Err(err).Uint64("game", uint64(id)).Msg("post scores")
	}
}

// ---- expiry ----

// SweepReport counts what a sweep removed.
type SweepReport struct {
	Invites int `json:"invites"`
	Games   int `json:"games"`
}

// CleanInvites purges user's invites that are stale at now, removing
// their duels.
func (s *Service) CleanInvites(user game.UserID, now time.Time) int {
	n := 0
	s.players.Update(func(ptx *players.Tx) {
		s.games.Update(func(gtx *store.Tx) {
			n = s.cleanInvites(ptx, gtx, user, now)
		})
	})
	return n
}

func (s *Service) cleanInvites(ptx *players.Tx, gtx *store.Tx, user game.UserID, now time.Time) int {
	pd, ok := ptx.Get(user)
	if !ok {
		return 0
	}
	stale := pd.TakeExpired(now)
	for _, p := range stale {
		s.drop(ptx, gtx, p.Game, user, p.From)
	}
	ptx.Prune(user)
	return len(stale)
}

// Sweep purges every stale invite and interrupts timed duels that have run
// longer than the policy allows. Interrupted duels post no scores.
func (s *Service) Sweep(now time.Time) SweepReport {
	var r SweepReport
	s.players.Update(func(ptx *players.Tx) {
		s.games.Update(func(gtx *store.Tx) {
			for _, u := range ptx.Users() {
				r.Invites += s.cleanInvites(ptx, gtx, u, now)
			}
			for _, id := range gtx.IDs() {
				duel, _ := gtx.Get(id)
				if duel.Variant() != game.Timed || duel.Progress().State == game.Waiting {
					continue
				}
				if now.Sub(duel.Start()) >= s.policy.TimedGameTTL {
					s.drop(ptx, gtx, id)
					r.Games++
				}
			}
		})
	})
	if r.Invites > 0 || r.Games > 0 {
		log.Info().Int("invites", r.Invites).Int("games", r.Games).Msg("sweep")
	}
	return r
}
