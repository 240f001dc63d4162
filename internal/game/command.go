package game

import "skirmish/internal/nav"

// UnitState is the replicated, read-only view of a unit.
type UnitState struct {
	ID          UnitID   `json:"id"`
	Owner       PlayerID `json:"owner"`
	Kind        string   `json:"kind"`
	Position    nav.Vec2 `json:"position"`
	Moving      bool     `json:"moving"`
	MoveSpeed   float64  `json:"move_speed"`
	AttackRange float64  `json:"attack_range"`
	Radius      float64  `json:"radius"`
}

func (s UnitState) Shape() nav.Circle {
	return nav.Circle{Center: s.Position, Radius: s.Radius}
}

type CommandKind string

const (
	CommandMove    CommandKind = "move"
	CommandAttack  CommandKind = "attack"
	CommandEndTurn CommandKind = "end_turn"
)

// Command is what a client asks the server to do. The sender is never part
// of it; the transport attaches the verified identity.
type Command struct {
	Kind   CommandKind
	Unit   UnitID
	Target UnitID
	Dest   nav.Vec2
}

// Submitter delivers commands to the authoritative side.
type Submitter interface {
	Submit(cmd Command) error
}

// RequestMove is the client-side pre-check for a move. It only filters
// obviously illegal requests; the server re-validates everything.
func RequestMove(caller PlayerID, u UnitState, path []nav.Vec2, out Submitter) bool {
	if u.Owner != caller || !nav.IsPathAffordable(path, u.MoveSpeed) {
		return false
	}
	return out.Submit(Command{Kind: CommandMove, Unit: u.ID, Dest: path[len(path)-1]}) == nil
}

// RequestAttack is the client-side pre-check for an attack.
func RequestAttack(caller PlayerID, u, target UnitState, sight nav.Sight, out Submitter) bool {
	if u.Owner != caller || u.ID == target.ID {
		return false
	}
	if !nav.CanAttack(sight, u.Position, target.Shape(), u.AttackRange) {
		return false
	}
	return out.Submit(Command{Kind: CommandAttack, Unit: u.ID, Target: target.ID}) == nil
}
