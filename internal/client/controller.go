package client

import (
	"time"

	"skirmish/internal/game"
	"skirmish/internal/nav"
)

// DefaultConfirmWindow is how soon a second right click must follow the
// first to commit a move.
const DefaultConfirmWindow = 300 * time.Millisecond

// Preview is the path the selected unit would walk and the enemies it could
// hit from the end of it.
type Preview struct {
	Unit    game.UnitID
	Path    []nav.Vec2
	Length  float64
	Targets []game.UnitID
}

// Controller turns pointer gestures into commands. It holds no authoritative
// state; every command it sends is re-validated by the server.
type Controller struct {
	replica       *Replica
	out           game.Submitter
	ConfirmWindow time.Duration

	selected  game.UnitID
	preview   *Preview
	lastRight time.Time
}

func NewController(r *Replica, out game.Submitter) *Controller {
	return &Controller{replica: r, out: out, ConfirmWindow: DefaultConfirmWindow}
}

// Select picks one of the local player's units. Anything else clears the
// selection.
func (c *Controller) Select(id game.UnitID) bool {
	if !c.replica.IsMyTurn() {
		return false
	}
	c.clear()
	u, ok := c.replica.Unit(id)
	if !ok || u.Owner != c.replica.Me() {
		return false
	}
	c.selected = id
	return true
}

func (c *Controller) Selected() (game.UnitID, bool) {
	return c.selected, c.selected != 0
}

func (c *Controller) Preview() *Preview { return c.preview }

// RightClickUnit attacks target with the selected unit.
func (c *Controller) RightClickUnit(target game.UnitID) bool {
	u, ok := c.selectedUnit()
	if !ok || !c.replica.CanAttack() {
		return false
	}
	t, ok := c.replica.Unit(target)
	if !ok || t.Owner == c.replica.Me() {
		return false
	}
	if !game.RequestAttack(c.replica.Me(), u, t, c.replica.Sight(), c.out) {
		return false
	}
	c.preview = nil
	return true
}

// RightClickGround previews a move to p. A second click within the confirm
// window issues the move along the freshest preview.
func (c *Controller) RightClickGround(p nav.Vec2, now time.Time) bool {
	u, ok := c.selectedUnit()
	if !ok || !c.replica.CanMove() || u.Moving {
		return false
	}

	c.preview = nil
	path, found := nav.ComputePath(c.replica.Navigator(), u.Position, p)
	if found && nav.IsPathAffordable(path, u.MoveSpeed) {
		c.preview = &Preview{
			Unit:    u.ID,
			Path:    path,
			Length:  nav.PathLength(path),
			Targets: c.targetsFrom(u, p),
		}
	}

	if !c.lastRight.IsZero() && now.Sub(c.lastRight) < c.ConfirmWindow {
		c.lastRight = time.Time{}
		if c.preview == nil {
			return false
		}
		return game.RequestMove(c.replica.Me(), u, c.preview.Path, c.out)
	}
	c.lastRight = now
	return false
}

// EndTurn gives up the rest of the local player's turn.
func (c *Controller) EndTurn() bool {
	if !c.replica.IsMyTurn() {
		return false
	}
	c.clear()
	return c.out.Submit(game.Command{Kind: game.CommandEndTurn}) == nil
}

func (c *Controller) targetsFrom(u game.UnitState, at nav.Vec2) []game.UnitID {
	var ids []game.UnitID
	sight := c.replica.Sight()
	for _, e := range c.replica.Enemies() {
		if nav.CanAttack(sight, at, e.Shape(), u.AttackRange) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func (c *Controller) selectedUnit() (game.UnitState, bool) {
	if c.selected == 0 {
		return game.UnitState{}, false
	}
	u, ok := c.replica.Unit(c.selected)
	if !ok {
		c.clear()
	}
	return u, ok
}

func (c *Controller) clear() {
	c.selected = 0
	c.preview = nil
	c.lastRight = time.Time{}
}
