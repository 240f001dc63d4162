// Package nav answers the geometric questions the match rules depend on: is
// there a route between two points, how long is it, and can one unit see and
// reach another. Nothing here holds match state.
package nav

// rangeEpsilon absorbs float error so that a target at exactly the configured
// range is still reachable.
const rangeEpsilon = 1e-9

// Navigator is the pathfinding oracle.
type Navigator interface {
	FindPath(from, to Vec2) ([]Vec2, bool)
	Rebuild(obstacles []Obstacle)
}

// Sight answers occlusion queries against obstacles only.
type Sight interface {
	Blocked(a, b Vec2) bool
}

// ComputePath delegates to the navigator. A nil navigator never finds a path.
func ComputePath(n Navigator, from, to Vec2) ([]Vec2, bool) {
	if n == nil {
		return nil, false
	}
	path, ok := n.FindPath(from, to)
	if !ok || len(path) == 0 {
		return nil, false
	}
	return path, true
}

// PathLength sums the straight segments between consecutive waypoints.
func PathLength(waypoints []Vec2) float64 {
	length := 0.0
	for i := 1; i < len(waypoints); i++ {
		length += waypoints[i-1].Dist(waypoints[i])
	}
	return length
}

// IsPathAffordable reports whether the whole path fits in one move budget.
func IsPathAffordable(waypoints []Vec2, budget float64) bool {
	if len(waypoints) == 0 {
		return false
	}
	return PathLength(waypoints) <= budget
}

// CanAttack reports whether target is within rng of from, measured to the
// closest point of its shape, with no obstacle on the line between them.
func CanAttack(sight Sight, from Vec2, target Shape, rng float64) bool {
	if target == nil {
		return false
	}
	closest := target.ClosestPoint(from)
	if from.Dist(closest) > rng+rangeEpsilon {
		return false
	}
	if sight != nil && sight.Blocked(from, closest) {
		return false
	}
	return true
}
