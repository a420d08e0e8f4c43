// internal/players/players.go
//
// Per-user duel bookkeeping: which duels a user is bound to and which
// invites are waiting for them.
//
// Responsibilities:
//   - Data: one user's slots (per variant) and pending invites.
//   - Registry: user id -> Data, guarded by an RWMutex and exposed through
//     Update/View closures so callers can nest the duel registry lock
//     inside it (player lock always first).
//
// Notes:
//   - Invites live on the invited user, keyed by challenger, one map per
//     variant. A new invite from the same challenger replaces the old one.
//   - Duels are referred to by id only; the duel registry owns them.

package players

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/robalobadob/worduel/internal/game"
)

// Invite points at a Waiting duel and expires at Expiry.
type Invite struct {
	Game   game.ID   `json:"game"`
	Expiry time.Time `json:"expiry"`
}

// Expired reports whether the invite is stale at now.
func (i Invite) Expired(now time.Time) bool { return !now.Before(i.Expiry) }

// Pending is an invite together with where it was stored.
type Pending struct {
	Variant game.Variant `json:"variant"`
	From    game.UserID  `json:"from"`
	Invite
}

// Data is one user's bindings and incoming invites.
type Data struct {
	slots   [len(game.Variants)]Slot
	invites [len(game.Variants)]map[game.UserID]Invite
}

func newData() *Data {
	d := &Data{}
	for _, v := range game.Variants {
		d.slots[v] = NewSlot(v)
		d.invites[v] = make(map[game.UserID]Invite)
	}
	return d
}

// Slot returns the user's bindings for v.
func (d *Data) Slot(v game.Variant) Slot { return d.slots[v] }

// Invite returns the pending invite from challenger, if any. Expired
// invites are returned too; check Expired.
func (d *Data) Invite(v game.Variant, from game.UserID) (Invite, bool) {
	inv, ok := d.invites[v][from]
	return inv, ok
}

// SetInvite installs inv, returning the invite it replaced.
func (d *Data) SetInvite(v game.Variant, from game.UserID, inv Invite) (prev Invite, replaced bool) {
	prev, replaced = d.invites[v][from]
	d.invites[v][from] = inv
	return prev, replaced
}

// TakeInvite removes and returns the invite from challenger.
func (d *Data) TakeInvite(v game.Variant, from game.UserID) (Invite, bool) {
	inv, ok := d.invites[v][from]
	if ok {
		delete(d.invites[v], from)
	}
	return inv, ok
}

// Invites lists every pending invite, ordered by variant then challenger.
func (d *Data) Invites() []Pending {
	var out []Pending
	for _, v := range game.Variants {
		from := lo.Keys(d.invites[v])
		sort.Slice(from, func(i, j int) bool { return from[i] < from[j] })
		for _, f := range from {
			out = append(out, Pending{Variant: v, From: f, Invite: d.invites[v][f]})
		}
	}
	return out
}

// TakeExpired removes and returns every invite stale at now.
func (d *Data) TakeExpired(now time.Time) []Pending {
	stale := lo.Filter(d.Invites(), func(p Pending, _ int) bool { return p.Expired(now) })
	for _, p := range stale {
		delete(d.invites[p.Variant], p.From)
	}
	return stale
}

// DropInvitesFor removes every invite backed by duel id.
func (d *Data) DropInvitesFor(id game.ID) int {
	n := 0
	for _, m := range d.invites {
		for from, inv := range m {
			if inv.Game == id {
				delete(m, from)
				n++
			}
		}
	}
	return n
}

// Empty reports whether the user holds no bindings and no invites.
func (d *Data) Empty() bool {
	for _, v := range game.Variants {
		if d.slots[v].Len() > 0 || len(d.invites[v]) > 0 {
			return false
		}
	}
	return true
}

// ---- registry ----

// Reader is the read-only registry view passed to View closures.
type Reader interface {
	Get(user game.UserID) (*Data, bool)
	Users() []game.UserID
}

// Registry maps users to their Data.
type Registry struct {
	mu    sync.RWMutex
	users map[game.UserID]*Data
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[game.UserID]*Data)}
}

// Update runs fn with exclusive access.
func (r *Registry) Update(fn func(tx *Tx)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&Tx{view{r.users}})
}

// View runs fn with shared access. fn must not mutate what it reads.
func (r *Registry) View(fn func(rd Reader)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(view{r.users})
}

type view struct {
	users map[game.UserID]*Data
}

func (v view) Get(user game.UserID) (*Data, bool) {
	d, ok := v.users[user]
	return d, ok
}

func (v view) Users() []game.UserID {
	ids := lo.Keys(v.users)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Tx is the mutable view handed to Update closures.
type Tx struct {
	view
}

// Entry returns the user's Data, creating it if needed.
func (tx *Tx) Entry(user game.UserID) *Data {
	d, ok := tx.users[user]
	if !ok {
		d = newData()
		tx.users[user] = d
	}
	return d
}

// Prune forgets users that hold nothing.
func (tx *Tx) Prune(users ...game.UserID) {
	for _, u := range users {
		if d, ok := tx.users[u]; ok && d.Empty() {
			delete(tx.users, u)
		}
	}
}
