package game

import "skirmish/internal/nav"

// Unit stats.
type UnitStats struct {
	Kind string
	// MoveSpeed is the whole distance budget of a single move, not a rate.
	MoveSpeed   float64
	AttackRange float64
	Radius      float64
}

// arena is what a unit needs to validate its own commands.
type arena struct {
	match  *Match
	nav    nav.Navigator
	sight  nav.Sight
	roster *Roster
	feed   *Feed
	// travel is how far an agent walks per second of simulated time.
	travel   float64
	stopping float64
}

// Unit is the authoritative state of one spawned unit. All methods run on
// the session goroutine.
type Unit struct {
	id    UnitID
	owner PlayerID
	stats UnitStats
	pos   nav.Vec2

	moving    bool
	moveTurn  int
	despawned bool
	agent     agent

	arena      *arena
	onMoved    []func(*Unit)
	onAttacked []func(*Unit)
}

func (u *Unit) ID() UnitID         { return u.id }
func (u *Unit) Owner() PlayerID    { return u.owner }
func (u *Unit) Stats() UnitStats   { return u.stats }
func (u *Unit) Position() nav.Vec2 { return u.pos }
func (u *Unit) Moving() bool       { return u.moving }
func (u *Unit) Despawned() bool    { return u.despawned }

func (u *Unit) Shape() nav.Circle {
	return nav.Circle{Center: u.pos, Radius: u.stats.Radius}
}

func (u *Unit) State() UnitState {
	return UnitState{
		ID:          u.id,
		Owner:       u.owner,
		Kind:        u.stats.Kind,
		Position:    u.pos,
		Moving:      u.moving,
		MoveSpeed:   u.stats.MoveSpeed,
		AttackRange: u.stats.AttackRange,
		Radius:      u.stats.Radius,
	}
}

// OnMoved registers fn to run once per completed move.
func (u *Unit) OnMoved(fn func(*Unit)) { u.onMoved = append(u.onMoved, fn) }

// OnAttacked registers fn to run once per successful attack.
func (u *Unit) OnAttacked(fn func(*Unit)) { u.onAttacked = append(u.onAttacked, fn) }

// ServeMove validates and starts a move toward dest. The path is always
// recomputed from the authoritative position.
func (u *Unit) ServeMove(sender PlayerID, dest nav.Vec2) error {
	if u.despawned {
		return ErrUnknownUnit
	}
	if sender != u.owner {
		return ErrNotOwner
	}
	if !u.arena.match.CanMove(sender) {
		return ErrNotYourTurn
	}
	if u.moving {
		return ErrUnitBusy
	}
	path, ok := nav.ComputePath(u.arena.nav, u.pos, dest)
	if !ok {
		return ErrNoPath
	}
	if !nav.IsPathAffordable(path, u.stats.MoveSpeed) {
		return ErrPathTooLong
	}

	u.moveTurn = u.arena.match.reserveMove()
	u.agent.follow(path, u.arena.travel, u.arena.stopping)
	u.moving = true
	st := u.State()
	u.arena.feed.Publish(Event{Kind: EventUnitMoving, Match: u.arena.match.Snapshot(), Unit: &st, Path: path})
	return nil
}

// ServeAttack validates and resolves an attack on target. Health is binary:
// a hit despawns the target.
func (u *Unit) ServeAttack(sender PlayerID, targetID UnitID) error {
	target, ok := u.arena.roster.Get(targetID)
	if !ok || u.despawned {
		return ErrUnknownUnit
	}
	if target == u {
		return ErrSelfTarget
	}
	if sender != u.owner {
		return ErrNotOwner
	}
	if !u.arena.match.CanAttack(sender) {
		return ErrNotYourTurn
	}
	if u.moving {
		return ErrUnitBusy
	}
	if !nav.CanAttack(u.arena.sight, u.pos, target.Shape(), u.stats.AttackRange) {
		return ErrOutOfRange
	}

	u.agent.reset()
	u.arena.roster.Despawn(target)
	st := u.State()
	u.arena.feed.Publish(Event{Kind: EventUnitAttacked, Match: u.arena.match.Snapshot(), Unit: &st, Target: target.id})
	for _, fn := range u.onAttacked {
		fn(u)
	}
	return nil
}

// tick advances the agent by dt seconds and polls for completion.
func (u *Unit) tick(dt float64) {
	if !u.moving || u.despawned {
		return
	}
	u.agent.step(&u.pos, dt)
	if u.agent.remaining(u.pos) > u.agent.stopping || u.agent.velocity.LenSq() > 0.01 {
		return
	}
	u.moving = false
	u.agent.reset()
	st := u.State()
	u.arena.feed.Publish(Event{Kind: EventUnitMoved, Match: u.arena.match.Snapshot(), Unit: &st})
	for _, fn := range u.onMoved {
		fn(u)
	}
}

// agent walks a polyline at a constant speed.
type agent struct {
	corners  []nav.Vec2
	velocity nav.Vec2
	speed    float64
	stopping float64
}

func (a *agent) follow(path []nav.Vec2, speed, stopping float64) {
	a.corners = append([]nav.Vec2(nil), path[1:]...)
	a.speed = speed
	a.stopping = stopping
	a.velocity = nav.Vec2{}
}

func (a *agent) reset() {
	a.corners = nil
	a.velocity = nav.Vec2{}
}

func (a *agent) step(pos *nav.Vec2, dt float64) {
	if dt <= 0 {
		return
	}
	start := *pos
	budget := a.speed * dt
	for budget > 0 && len(a.corners) > 0 {
		next := a.corners[0]
		d := pos.Dist(next)
		if d <= budget {
			*pos = next
			budget -= d
			a.corners = a.corners[1:]
			continue
		}
		*pos = pos.Add(next.Sub(*pos).Scale(budget / d))
		budget = 0
	}
	a.velocity = pos.Sub(start).Scale(1 / dt)
}

func (a *agent) remaining(pos nav.Vec2) float64 {
	if len(a.corners) == 0 {
		return 0
	}
	return pos.Dist(a.corners[0]) + nav.PathLength(a.corners)
}
