package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skirmish/internal/nav"
)

func TestGenerateObstaclesBounds(t *testing.T) {
	cfg := DefaultMapConfig()
	obs := GenerateObstacles(cfg, rand.New(rand.NewSource(42)))
	require.Len(t, obs, cfg.ObstacleCount)

	for _, o := range obs {
		assert.GreaterOrEqual(t, o.Center.X, cfg.Border)
		assert.LessOrEqual(t, o.Center.X, cfg.Width-cfg.Border)
		assert.GreaterOrEqual(t, o.Center.Y, cfg.Border)
		assert.LessOrEqual(t, o.Center.Y, cfg.Length-cfg.Border)
		assert.GreaterOrEqual(t, o.Length, cfg.MinObstacleLength)
		assert.LessOrEqual(t, o.Length, cfg.MaxObstacleLength)
		assert.GreaterOrEqual(t, o.Rotation, cfg.MinRotation)
		assert.Less(t, o.Rotation, cfg.MaxRotation)
		assert.Equal(t, cfg.ObstacleWidth, o.Width)
	}
}

func TestGenerateObstaclesDeterministic(t *testing.T) {
	cfg := DefaultMapConfig()
	a := GenerateObstacles(cfg, rand.New(rand.NewSource(7)))
	b := GenerateObstacles(cfg, rand.New(rand.NewSource(7)))
	c := GenerateObstacles(cfg, rand.New(rand.NewSource(8)))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	cfg.ObstacleCount = 0
	assert.Empty(t, GenerateObstacles(cfg, rand.New(rand.NewSource(7))))
}

func TestSpawnLayout(t *testing.T) {
	got := SpawnLayout(nav.V(2, 18), DefaultRoster(3, 2), 2)
	require.Len(t, got, 5)

	want := []nav.Vec2{nav.V(2, 18), nav.V(4, 18), nav.V(6, 18), nav.V(8, 18), nav.V(10, 18)}
	for i, p := range got {
		assert.Equal(t, want[i], p.Position)
	}
	assert.Equal(t, "infantry", got[2].Stats.Kind)
	assert.Equal(t, "ranger", got[3].Stats.Kind)
}

func TestFactorySeedsByRoom(t *testing.T) {
	f := NewFactory(DefaultSettings(), WithClock(newManualClock()))

	a, b := f.CreateSession("room-a"), f.CreateSession("room-a")
	a.Host()
	b.Host()
	assert.Equal(t, a.Obstacles(), b.Obstacles())

	c := f.CreateSession("room-b")
	c.Host()
	assert.NotEqual(t, a.Obstacles(), c.Obstacles())
}

func TestGenerateObstaclesKeepsZonesClear(t *testing.T) {
	cfg := DefaultMapConfig()
	zones := []nav.Circle{{Center: nav.V(10, 10), Radius: 3}, {Center: nav.V(6, 6), Radius: 2}}
	for seed := int64(0); seed < 50; seed++ {
		for _, o := range GenerateObstacles(cfg, rand.New(rand.NewSource(seed)), zones...) {
			for _, z := range zones {
				assert.False(t, o.Inflate(z.Radius).Contains(z.Center), "seed %d", seed)
			}
		}
	}
}

func TestSpawnedUnitsCanMove(t *testing.T) {
	settings := DefaultSettings()
	f := NewFactory(settings, WithClock(newManualClock()))
	reach := settings.AgentClearance + Infantry.Radius

	for i := 0; i < 300; i++ {
		room := fmt.Sprintf("room-%d", i)
		s := f.CreateSession(room)
		require.NoError(t, s.Connect(alice))
		require.NoError(t, s.Connect(bob))

		grid := nav.NewGridNavigator(settings.Map.Width, settings.Map.Length, settings.NavCellSize, settings.AgentClearance)
		grid.Rebuild(s.Obstacles())

		for _, u := range s.Roster().All() {
			pos := u.Position()
			for _, o := range s.Obstacles() {
				require.False(t, o.Inflate(reach).Contains(pos), "%s: unit %d spawned on an obstacle", room, u.ID())
			}
			assert.True(t, canStepAway(grid, pos, 3), "%s: unit %d is boxed in", room, u.ID())
		}
	}
}

// canStepAway reports whether any of 16 points at distance d from p is
// reachable within a d-long walk.
func canStepAway(n nav.Navigator, p nav.Vec2, d float64) bool {
	for k := 0; k < 16; k++ {
		a := float64(k) * math.Pi / 8
		dest := p.Add(nav.V(math.Cos(a), math.Sin(a)).Scale(d))
		if path, ok := nav.ComputePath(n, p, dest); ok && nav.IsPathAffordable(path, 2*d) {
			return true
		}
	}
	return false
}

func TestFeedSubscribe(t *testing.T) {
	feed := NewFeed()
	var got []string
	cancelA := feed.Subscribe(func(e Event) { got = append(got, "a:"+string(e.Kind)) })
	feed.Subscribe(func(e Event) { got = append(got, "b:"+string(e.Kind)) })

	feed.Publish(Event{Kind: EventTurn})
	cancelA()
	cancelA()
	feed.Publish(Event{Kind: EventBudget})

	assert.Equal(t, []string{"a:turn", "b:turn", "b:budget"}, got)
}

type recorder struct {
	cmds []Command
	err  error
}

func (r *recorder) Submit(cmd Command) error {
	if r.err != nil {
		return r.err
	}
	r.cmds = append(r.cmds, cmd)
	return nil
}

func TestRequestMove(t *testing.T) {
	u := UnitState{ID: 3, Owner: alice, Position: nav.V(0, 0), MoveSpeed: 10}
	path := []nav.Vec2{nav.V(0, 0), nav.V(6, 0), nav.V(6, 4)}

	out := &recorder{}
	assert.False(t, RequestMove(bob, u, path, out), "caller does not own the unit")
	assert.False(t, RequestMove(alice, u, append(path, nav.V(6, 10)), out), "too long")
	assert.False(t, RequestMove(alice, u, nil, out))
	assert.Empty(t, out.cmds)

	assert.True(t, RequestMove(alice, u, path, out))
	assert.Equal(t, []Command{{Kind: CommandMove, Unit: 3, Dest: nav.V(6, 4)}}, out.cmds)

	assert.False(t, RequestMove(alice, u, path, &recorder{err: errors.New("closed")}))
}

func TestRequestAttack(t *testing.T) {
	u := UnitState{ID: 1, Owner: alice, Position: nav.V(0, 0), AttackRange: 10}
	near := UnitState{ID: 2, Owner: bob, Position: nav.V(8, 0), Radius: 0.5}
	far := UnitState{ID: 3, Owner: bob, Position: nav.V(12, 0), Radius: 0.5}
	wall := nav.Obstacles{{Center: nav.V(4, 0), Length: 1, Width: 3}}

	out := &recorder{}
	assert.False(t, RequestAttack(bob, u, near, nil, out))
	assert.False(t, RequestAttack(alice, u, u, nil, out))
	assert.False(t, RequestAttack(alice, u, far, nil, out))
	assert.False(t, RequestAttack(alice, u, near, wall, out))
	assert.Empty(t, out.cmds)

	assert.True(t, RequestAttack(alice, u, near, nil, out))
	assert.Equal(t, []Command{{Kind: CommandAttack, Unit: 1, Target: 2}}, out.cmds)
}
