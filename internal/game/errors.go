package game

import (
	"errors"
	"fmt"
)

// Errors surfaced to callers. None is fatal; hosts report them verbatim.
var (
	ErrBadWordLength  = errors.New("word length invalid")
	ErrWordNotFound   = errors.New("word not found in dictionary")
	ErrNoGame         = errors.New("you are not in a game")
	ErrSelfChallenge  = errors.New("you cannot challenge yourself")
	ErrAlreadyInGame  = errors.New("you're already in a game")
	ErrNoInvite       = errors.New("no invite from this player")
	ErrGameDeleted    = errors.New("game assigned but deleted")
	ErrBadAccept      = errors.New("cannot accept this game")
	ErrGameStarted    = errors.New("game in the wrong state")
	ErrForfeitBadUser = errors.New("to forfeit, specify your opponent")
)

// WordLengthError reports the offending length.
type WordLengthError struct{ Length int }

func (e *WordLengthError) Error() string {
	return fmt.Sprintf("word length invalid: %d", e.Length)
}

func (e *WordLengthError) Unwrap() error { return ErrBadWordLength }

// WordNotFoundError reports the word that was looked up.
type WordNotFoundError struct{ Word string }

func (e *WordNotFoundError) Error() string {
	return fmt.Sprintf("word not found in dictionary: %s", e.Word)
}

func (e *WordNotFoundError) Unwrap() error { return ErrWordNotFound }

// ProgressError is returned when an operation needs the opposite progress.
// Started tells which state the duel is actually in.
type ProgressError struct{ Started bool }

func (e *ProgressError) Error() string {
	if e.Started {
		return "game already started"
	}
	return "game not yet started"
}

func (e *ProgressError) Unwrap() error { return ErrGameStarted }
