// internal/store/memory.go
//
// In-memory registry of live duels.
//
// Characteristics:
//   - Sole owner of *game.Duel values; everything else refers to duels by id.
//   - Concurrency-safe via RWMutex (concurrent readers, exclusive writer).
//     Callers hold the lock for a whole closure so they can combine several
//     lookups and mutations atomically, and nest it inside the player
//     registry lock.
//   - Ids come from an atomic counter, are never reused, and never reset.
//   - State is lost when the process restarts.

package store

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/robalobadob/worduel/internal/game"
)

// Reader is the read-only view of the registry handed to View closures.
type Reader interface {
	// Get looks up a duel by id.
	Get(id game.ID) (*game.Duel, bool)
	// Len is the number of live duels.
	Len() int
	// IDs lists live duel ids in ascending order.
	IDs() []game.ID
}

// Registry maps duel ids to duels.
type Registry struct {
	mu    sync.RWMutex           // guards games
	games map[game.ID]*game.Duel // keyed by allocated id
	next  atomic.Uint64          // last allocated id
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{games: make(map[game.ID]*game.Duel)}
}

// NextID allocates a fresh id without taking the lock. The first id is 1.
func (r *Registry) NextID() game.ID {
	return game.ID(r.next.Add(1))
}

// Update runs fn with exclusive access.
func (r *Registry) Update(fn func(tx *Tx)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&Tx{view{r.games}})
}

// View runs fn with shared access. fn must not mutate the duels it reads.
func (r *Registry) View(fn func(rd Reader)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(view{r.games})
}

// Len is the number of live duels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

type view struct {
	games map[game.ID]*game.Duel
}

func (v view) Get(id game.ID) (*game.Duel, bool) {
	d, ok := v.games[id]
	return d, ok
}

func (v view) Len() int { return len(v.games) }

func (v view) IDs() []game.ID {
	ids := lo.Keys(v.games)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Tx is the mutable view handed to Update closures. Valid only inside the
// closure.
type Tx struct {
	view
}

// Insert stores d under id, replacing any previous duel with that id.
func (tx *Tx) Insert(id game.ID, d *game.Duel) {
	tx.games[id] = d
}

// Remove deletes and returns the duel stored under id.
func (tx *Tx) Remove(id game.ID) (*game.Duel, bool) {
	d, ok := tx.games[id]
	if ok {
		delete(tx.games, id)
	}
	return d, ok
}
