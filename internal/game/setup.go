package game

import (
	"math/rand"

	"skirmish/internal/nav"
)

// MapConfig describes the battlefield and how obstacles are scattered on it.
type MapConfig struct {
	Width  float64
	Length float64
	// Border keeps obstacle centres away from the map edges.
	Border            float64
	ObstacleCount     int
	MinObstacleLength float64
	MaxObstacleLength float64
	ObstacleWidth     float64
	MinRotation       float64
	MaxRotation       float64
	SpawnPoints       [2]nav.Vec2
}

func DefaultMapConfig() MapConfig {
	return MapConfig{
		Width:             20,
		Length:            20,
		Border:            5,
		ObstacleCount:     30,
		MinObstacleLength: 2,
		MaxObstacleLength: 8,
		ObstacleWidth:     1,
		MinRotation:       0,
		MaxRotation:       360,
		SpawnPoints:       [2]nav.Vec2{nav.V(2, 2), nav.V(2, 18)},
	}
}

// placementAttempts bounds how often one obstacle is redrawn before it is
// left out.
const placementAttempts = 32

// GenerateObstacles scatters cfg.ObstacleCount boxes with centres inside the
// bordered interior. A box that would cover any keepClear circle is redrawn,
// and dropped if no clear spot turns up.
func GenerateObstacles(cfg MapConfig, rng *rand.Rand, keepClear ...nav.Circle) []nav.Obstacle {
	out := make([]nav.Obstacle, 0, cfg.ObstacleCount)
	for i := 0; i < cfg.ObstacleCount; i++ {
		for attempt := 0; attempt < placementAttempts; attempt++ {
			o := nav.Obstacle{
				Center: nav.V(
					between(rng, cfg.Border, cfg.Width-cfg.Border),
					between(rng, cfg.Border, cfg.Length-cfg.Border),
				),
				Length:   between(rng, cfg.MinObstacleLength, cfg.MaxObstacleLength),
				Width:    cfg.ObstacleWidth,
				Rotation: between(rng, cfg.MinRotation, cfg.MaxRotation),
			}
			if !covers(o, keepClear) {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

func covers(o nav.Obstacle, zones []nav.Circle) bool {
	for _, z := range zones {
		if o.Inflate(z.Radius).Contains(z.Center) {
			return true
		}
	}
	return false
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// RosterEntry is one unit kind in a player's starting roster.
type RosterEntry struct {
	UnitStats
	Count int
}

var (
	Infantry = UnitStats{Kind: "infantry", MoveSpeed: 10, AttackRange: 10, Radius: 0.5}
	Ranger   = UnitStats{Kind: "ranger", MoveSpeed: 10, AttackRange: 10, Radius: 0.5}
)

func DefaultRoster(type1, type2 int) []RosterEntry {
	return []RosterEntry{
		{UnitStats: Infantry, Count: type1},
		{UnitStats: Ranger, Count: type2},
	}
}

// Placement is where a roster unit appears.
type Placement struct {
	Stats    UnitStats
	Position nav.Vec2
}

// SpawnLayout lines the roster up along +X from origin, spacing apart.
func SpawnLayout(origin nav.Vec2, roster []RosterEntry, spacing float64) []Placement {
	var out []Placement
	for _, e := range roster {
		for i := 0; i < e.Count; i++ {
			pos := origin.Add(nav.V(spacing*float64(len(out)), 0))
			out = append(out, Placement{Stats: e.UnitStats, Position: pos})
		}
	}
	return out
}
