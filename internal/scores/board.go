// internal/scores/board.go
//
// Leaderboard storage.
//
// Two Board implementations share one contract:
//   - memory: map guarded by an RWMutex (default).
//   - sqlite: ranked with SQL; opened on an in-memory database unless a
//     file DSN is given.
//
// Ranking is points descending, then user id ascending.

package scores

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/robalobadob/worduel/internal/game"
)

// Entry is one leaderboard row.
type Entry struct {
	User   game.UserID `json:"user"`
	Points uint64      `json:"points"`
}

// MaxPoints is the largest total a user can hold. SQLite stores points as a
// signed 64-bit integer, and both boards share the limit.
const MaxPoints = math.MaxInt64

// ErrPointsOverflow is returned when an add would push a total past MaxPoints.
var ErrPointsOverflow = errors.New("scores: points overflow")

// addPoints returns cur+delta, or ErrPointsOverflow past MaxPoints.
func addPoints(cur, delta uint64) (uint64, error) {
	if cur > MaxPoints || delta > MaxPoints-cur {
		return cur, ErrPointsOverflow
	}
	return cur + delta, nil
}

// Board stores cumulative points per user.
type Board interface {
	// Add increments a user's total, creating the row if needed.
	Add(ctx context.Context, user game.UserID, delta uint64) error
	// AddAll applies every row or, on error, none of them.
	AddAll(ctx context.Context, rows []Entry) error
	// Get returns a user's total; unknown users have 0.
	Get(ctx context.Context, user game.UserID) (uint64, error)
	// Top returns at most n entries in rank order.
	Top(ctx context.Context, n int) ([]Entry, error)
	Close() error
}

type memory struct {
	mu     sync.RWMutex
	points map[game.UserID]uint64
}

// NewMemoryBoard constructs an empty in-memory Board.
func NewMemoryBoard() Board {
	return &memory{points: make(map[game.UserID]uint64)}
}

func (m *memory) Add(ctx context.Context, user game.UserID, delta uint64) error {
	return m.AddAll(ctx, []Entry{{User: user, Points: delta}})
}

func (m *memory) AddAll(_ context.Context, rows []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[game.UserID]uint64, len(rows))
	for _, r := range rows {
		cur, ok := next[r.User]
		if !ok {
			cur = m.points[r.User]
		}
		total, err := addPoints(cur, r.Points)
		if err != nil {
			return err
		}
		next[r.User] = total
	}
	for u, p := range next {
		m.points[u] = p
	}
	return nil
}

func (m *memory) Get(_ context.Context, user game.UserID) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.points[user], nil
}

func (m *memory) Top(_ context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	m.mu.RLock()
	out := make([]Entry, 0, len(m.points))
	for u, p := range m.points {
		out = append(out, Entry{User: u, Points: p})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].User < out[j].User
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *memory) Close() error { return nil }
