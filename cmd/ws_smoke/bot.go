package main

import (
	"log/slog"
	"math"
	"time"

	"skirmish/internal/client"
	"skirmish/internal/game"
	"skirmish/internal/logger"
	"skirmish/internal/nav"
	"skirmish/internal/ws"
)

// bot plays through the same controller a human would: attack if anything
// is in reach, otherwise walk toward the nearest enemy, then end the turn.
type bot struct {
	name string
	link *client.Link
	ctrl *client.Controller
	log  *slog.Logger

	turn  int
	moved bool
}

func newBot(name string, link *client.Link) *bot {
	return &bot{
		name: name,
		link: link,
		ctrl: client.NewController(link.Replica(), link),
		log:  logger.With("bot", name),
	}
}

func (b *bot) onFrame(typ string) {
	r := b.link.Replica()
	switch typ {
	case ws.MsgSnapshot, string(game.EventTurn), string(game.EventUnitMoved), string(game.EventUnitAttacked):
	default:
		return
	}
	if !r.IsMyTurn() {
		return
	}
	if m := r.Match(); m.TurnNumber != b.turn {
		b.turn = m.TurnNumber
		b.moved = false
	}

	if r.CanAttack() && b.attack() {
		return
	}
	if r.CanMove() && !b.moved {
		if b.advance() {
			b.moved = true
			return
		}
	}
	for _, u := range r.Mine() {
		if u.Moving {
			return
		}
	}
	b.ctrl.EndTurn()
}

func (b *bot) attack() bool {
	r := b.link.Replica()
	for _, u := range r.Mine() {
		if u.Moving {
			continue
		}
		for _, e := range r.Enemies() {
			if !nav.CanAttack(r.Sight(), u.Position, e.Shape(), u.AttackRange) {
				continue
			}
			if b.ctrl.Select(u.ID) && b.ctrl.RightClickUnit(e.ID) {
				b.log.Info("attack", "unit", u.ID, "target", e.ID)
				return true
			}
		}
	}
	return false
}

// advance moves the unit closest to an enemy most of its reach toward it,
// shortening the step until the preview is affordable.
func (b *bot) advance() bool {
	r := b.link.Replica()
	u, target, ok := closestPair(r.Mine(), r.Enemies())
	if !ok {
		return false
	}
	dir := target.Position.Sub(u.Position)
	dist := dir.Len()
	if dist == 0 {
		return false
	}

	now := time.Now()
	for step := math.Min(u.MoveSpeed*0.9, dist-u.AttackRange/2); step > 0.5; step *= 0.7 {
		dest := u.Position.Add(dir.Scale(step / dist))
		if !b.ctrl.Select(u.ID) {
			return false
		}
		b.ctrl.RightClickGround(dest, now)
		if b.ctrl.Preview() == nil {
			continue
		}
		if b.ctrl.RightClickGround(dest, now.Add(10*time.Millisecond)) {
			b.log.Info("move", "unit", u.ID, "x", dest.X, "y", dest.Y)
			return true
		}
	}
	return false
}

func closestPair(mine, enemies []game.UnitState) (game.UnitState, game.UnitState, bool) {
	best := math.Inf(1)
	var bu, be game.UnitState
	for _, u := range mine {
		if u.Moving {
			continue
		}
		for _, e := range enemies {
			if d := u.Position.Dist(e.Position); d < best {
				best, bu, be = d, u, e
			}
		}
	}
	return bu, be, !math.IsInf(best, 1)
}
