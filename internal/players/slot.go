package players

import (
	"github.com/samber/lo"

	"github.com/robalobadob/worduel/internal/game"
)

// Slot holds a user's active duel bindings for one variant.
//
// Timed slots hold at most one duel and ignore the opponent argument.
// Turn-based slots hold one duel per opponent.
type Slot interface {
	Lookup(opponent game.UserID) (game.ID, bool)
	Bind(opponent game.UserID, id game.ID)
	Unbind(opponent game.UserID)
	// UnbindGame clears every binding that points at id.
	UnbindGame(id game.ID) bool
	IDs() []game.ID
	Len() int
}

// NewSlot returns the slot shape for v.
func NewSlot(v game.Variant) Slot {
	if v == game.TurnBased {
		return keyedSlot{}
	}
	return &singleSlot{}
}

type singleSlot struct {
	id    game.ID
	bound bool
}

func (s *singleSlot) Lookup(game.UserID) (game.ID, bool) { return s.id, s.bound }

func (s *singleSlot) Bind(_ game.UserID, id game.ID) {
	s.id, s.bound = id, true
}

func (s *singleSlot) Unbind(game.UserID) { *s = singleSlot{} }

func (s *singleSlot) UnbindGame(id game.ID) bool {
	if !s.bound || s.id != id {
		return false
	}
	*s = singleSlot{}
	return true
}

func (s *singleSlot) IDs() []game.ID {
	if !s.bound {
		return nil
	}
	return []game.ID{s.id}
}

func (s *singleSlot) Len() int {
	if s.bound {
		return 1
	}
	return 0
}

type keyedSlot map[game.UserID]game.ID

func (k keyedSlot) Lookup(opponent game.UserID) (game.ID, bool) {
	id, ok := k[opponent]
	return id, ok
}

func (k keyedSlot) Bind(opponent game.UserID, id game.ID) { k[opponent] = id }

func (k keyedSlot) Unbind(opponent game.UserID) { delete(k, opponent) }

func (k keyedSlot) UnbindGame(id game.ID) bool {
	found := false
	for opp, gid := range k {
		if gid == id {
			delete(k, opp)
			found = true
		}
	}
	return found
}

func (k keyedSlot) IDs() []game.ID { return lo.Values(k) }

func (k keyedSlot) Len() int { return len(k) }
