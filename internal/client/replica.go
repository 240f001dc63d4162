// Package client holds the non-authoritative side of a match: a read-only
// cache of replicated state and the input controller that turns pointer
// gestures into commands.
package client

import (
	"sync"
	"time"

	"skirmish/internal/game"
	"skirmish/internal/nav"
)

// Replica mirrors what the server has replicated. It never decides anything;
// its answers only gate what the local player is offered.
type Replica struct {
	mu sync.RWMutex

	me     game.PlayerID
	match  game.MatchState
	units  map[game.UnitID]game.UnitState
	order  []game.UnitID
	world  game.MapInfo
	sight  nav.Obstacles
	nav    *nav.GridNavigator
	offset time.Duration // server clock minus local clock
}

func NewReplica(me game.PlayerID) *Replica {
	return &Replica{me: me, units: make(map[game.UnitID]game.UnitState)}
}

func (r *Replica) Me() game.PlayerID { return r.me }

// ApplySnapshot replaces everything with a full server snapshot received at
// localNow.
func (r *Replica) ApplySnapshot(s game.Snapshot, localNow time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.match = s.Match
	r.units = make(map[game.UnitID]game.UnitState, len(s.Units))
	r.order = r.order[:0]
	for _, u := range s.Units {
		r.units[u.ID] = u
		r.order = append(r.order, u.ID)
	}
	r.world = s.Map
	r.sight = nav.Obstacles(s.Map.Obstacles)
	r.nav = nav.NewGridNavigator(s.Map.Width, s.Map.Length, s.Map.CellSize, s.Map.Clearance)
	r.nav.Rebuild(s.Map.Obstacles)
	if s.ServerTime > 0 {
		r.offset = time.UnixMilli(s.ServerTime).Sub(localNow)
	}
}

// Apply folds one replicated event into the cache.
func (r *Replica) Apply(e game.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.match = e.Match
	if e.Unit == nil {
		return
	}
	switch e.Kind {
	case game.EventUnitDespawned:
		delete(r.units, e.Unit.ID)
		for i, id := range r.order {
			if id == e.Unit.ID {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	case game.EventUnitMoving:
		// Per-tick positions are not replicated; a walking unit is shown at
		// its destination.
		st := *e.Unit
		if len(e.Path) > 0 {
			st.Position = e.Path[len(e.Path)-1]
		}
		r.units[st.ID] = st
	default:
		if _, ok := r.units[e.Unit.ID]; ok {
			r.units[e.Unit.ID] = *e.Unit
		}
	}
}

func (r *Replica) Match() game.MatchState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.match
}

func (r *Replica) Unit(id game.UnitID) (game.UnitState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[id]
	return u, ok
}

// Units returns live units in spawn order.
func (r *Replica) Units() []game.UnitState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]game.UnitState, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.units[id])
	}
	return out
}

func (r *Replica) Mine() []game.UnitState    { return r.filter(func(u game.UnitState) bool { return u.Owner == r.me }) }
func (r *Replica) Enemies() []game.UnitState { return r.filter(func(u game.UnitState) bool { return u.Owner != r.me }) }

func (r *Replica) filter(keep func(game.UnitState) bool) []game.UnitState {
	var out []game.UnitState
	for _, u := range r.Units() {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

func (r *Replica) IsMyTurn() bool {
	m := r.Match()
	return m.State == game.StateInProgress && m.CurrentTurnPlayer == r.me
}

func (r *Replica) CanMove() bool {
	m := r.Match()
	return r.IsMyTurn() && m.UsedMoves+m.PendingMoves < m.MaxMoves
}

func (r *Replica) CanAttack() bool {
	m := r.Match()
	return r.IsMyTurn() && m.UsedAttacks < m.MaxAttacks
}

// TimeLeft estimates the remaining turn time from the local clock, corrected
// by the offset measured at the last snapshot.
func (r *Replica) TimeLeft(localNow time.Time) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.match.State != game.StateInProgress {
		return 0
	}
	serverNow := localNow.Add(r.offset)
	elapsed := serverNow.Sub(time.UnixMilli(r.match.TurnStartedAt))
	left := time.Duration(r.match.TurnDurationMs)*time.Millisecond - elapsed
	if left < 0 {
		return 0
	}
	return left
}

// Navigator is the local copy of the pathfinder, for previews only.
func (r *Replica) Navigator() nav.Navigator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.nav == nil {
		return nil
	}
	return r.nav
}

func (r *Replica) Sight() nav.Sight {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sight
}

func (r *Replica) World() game.MapInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.world
}
