package game

import "skirmish/internal/nav"

// Roster is the registry of live units in a session.
type Roster struct {
	arena  *arena
	units  map[UnitID]*Unit
	order  []*Unit
	nextID UnitID
}

func newRoster(a *arena) *Roster {
	return &Roster{arena: a, units: make(map[UnitID]*Unit), nextID: 1}
}

// Spawn creates a unit owned by owner at pos.
func (r *Roster) Spawn(owner PlayerID, stats UnitStats, pos nav.Vec2) *Unit {
	u := &Unit{
		id:    r.nextID,
		owner: owner,
		stats: stats,
		pos:   pos,
		arena: r.arena,
	}
	r.nextID++
	r.units[u.id] = u
	r.order = append(r.order, u)
	return u
}

func (r *Roster) Get(id UnitID) (*Unit, bool) {
	u, ok := r.units[id]
	return u, ok
}

// Despawn removes u permanently.
func (r *Roster) Despawn(u *Unit) {
	if _, ok := r.units[u.id]; !ok {
		return
	}
	if u.moving {
		r.arena.match.abandonMove(u.moveTurn)
	}
	u.despawned = true
	u.moving = false
	u.agent.reset()
	delete(r.units, u.id)
	for i, o := range r.order {
		if o == u {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	st := u.State()
	r.arena.feed.Publish(Event{Kind: EventUnitDespawned, Match: r.arena.match.Snapshot(), Unit: &st})
}

// CountUnits returns how many live units p owns.
func (r *Roster) CountUnits(p PlayerID) int {
	n := 0
	for _, u := range r.order {
		if u.owner == p {
			n++
		}
	}
	return n
}

// All returns live units in spawn order.
func (r *Roster) All() []*Unit {
	return append([]*Unit(nil), r.order...)
}

func (r *Roster) States() []UnitState {
	out := make([]UnitState, 0, len(r.order))
	for _, u := range r.order {
		out = append(out, u.State())
	}
	return out
}
