// internal/scores/manager.go
//
// Manager is the cumulative score ledger fed by finished duels.

package scores

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/game"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Manager posts and ranks scores over a Board.
type Manager struct {
	board Board
}

// NewManager wraps board.
func NewManager(board Board) *Manager {
	return &Manager{board: board}
}

// Open builds a Manager for the named backend.
func Open(backend, dsn string) (*Manager, error) {
	switch backend {
	case "", BackendMemory:
		return NewManager(NewMemoryBoard()), nil
	case BackendSQLite:
		b, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return NewManager(b), nil
	}
	return nil, fmt.Errorf("unknown scores backend %q", backend)
}

// Add increments user's total by delta.
func (m *Manager) Add(ctx context.Context, user game.UserID, delta uint64) error {
	return m.board.Add(ctx, user, delta)
}

// AddFromGame posts both sides' final scores together: either both land or
// neither does. Only the victor's is nonzero; a draw posts 0 for both, which
// still lists both players.
func (m *Manager) AddFromGame(ctx context.Context, d *game.Duel) error {
	scores := d.Scores()
	rows := []Entry{
		{User: d.User(0), Points: scores[0]},
		{User: d.User(1), Points: scores[1]},
	}
	if err := m.board.AddAll(ctx, rows); err != nil {
		return fmt.Errorf("post scores for %d and %d: %w", d.User(0), d.User(1), err)
	}
	log.Debug().
		Int64("p0", int64(d.User(0))).
		Int64("p1", int64(d.User(1))).
		Uint64("s0", scores[0]).
		Uint64("s1", scores[1]).
		Msg("scores posted")
	return nil
}

// ListTop returns at most n entries, highest first. Ties rank by user id.
func (m *Manager) ListTop(ctx context.Context, n int) ([]Entry, error) {
	return m.board.Top(ctx, n)
}

// Get returns user's total.
func (m *Manager) Get(ctx context.Context, user game.UserID) (uint64, error) {
	return m.board.Get(ctx, user)
}

// Close releases the board.
func (m *Manager) Close() error { return m.board.Close() }
