package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skirmish/internal/nav"
)

func lookup(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{"JWT_SECRET": "s"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 60*time.Second, cfg.Game.Match.TurnDuration)
	assert.Equal(t, 1, cfg.Game.Match.MaxMoves)
	assert.Equal(t, 1, cfg.Game.Match.MaxAttacks)
	assert.Equal(t, 15, cfg.Game.Match.MaxTurns)
	assert.Equal(t, 30, cfg.Game.Map.ObstacleCount)
	assert.Equal(t, 3, cfg.Game.Roster[0].Count)
	assert.Equal(t, 2, cfg.Game.Roster[1].Count)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, [2]nav.Vec2{nav.V(2, 2), nav.V(2, 18)}, cfg.Game.Map.SpawnPoints)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"JWT_SECRET":            "s",
		"TURN_DURATION_SECONDS": "30",
		"MAX_MOVES":             "2",
		"MAX_TURNS":             "9",
		"UNIT_TYPE1_COUNT":      "1",
		"UNIT_TYPE2_COUNT":      "0",
		"OBSTACLE_COUNT":        "0",
		"MAP_LENGTH":            "40",
		"TICK_RATE":             "10",
		"LOG_JSON":              "true",
		"MAX_ATTACKS":           "lots",
	}))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Game.Match.TurnDuration)
	assert.Equal(t, 2, cfg.Game.Match.MaxMoves)
	assert.Equal(t, 1, cfg.Game.Match.MaxAttacks, "unparseable value keeps the default")
	assert.Equal(t, 9, cfg.Game.Match.MaxTurns)
	assert.Equal(t, 1, cfg.Game.Roster[0].Count)
	assert.Equal(t, 0, cfg.Game.Roster[1].Count)
	assert.Equal(t, 0, cfg.Game.Map.ObstacleCount)
	assert.Equal(t, nav.V(2, 38), cfg.Game.Map.SpawnPoints[1])
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval())
	assert.True(t, cfg.LogJSON)
}

func TestFromEnvRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"no secret":        {},
		"inverted lengths": {"JWT_SECRET": "s", "OBSTACLE_MIN_LENGTH": "9", "OBSTACLE_MAX_LENGTH": "3"},
		"zero turns":       {"JWT_SECRET": "s", "MAX_TURNS": "0"},
		"zero tick rate":   {"JWT_SECRET": "s", "TICK_RATE": "0"},
		"border too wide":  {"JWT_SECRET": "s", "MAP_BORDER": "11"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(lookup(vars))
			assert.Error(t, err)
		})
	}
}
