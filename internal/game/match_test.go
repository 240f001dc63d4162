package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ now time.Time }

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixedCounts map[PlayerID]int

func (f fixedCounts) CountUnits(p PlayerID) int { return f[p] }

func startedMatch(t *testing.T, cfg Config, counts fixedCounts) (*Match, *manualClock, *[]Event) {
	t.Helper()
	clk := newManualClock()
	feed := NewFeed()
	var events []Event
	feed.Subscribe(func(e Event) { events = append(events, e) })
	m := NewMatch(cfg, clk, feed)
	require.NoError(t, m.AddPlayer(1))
	require.NoError(t, m.AddPlayer(2))
	require.NoError(t, m.StartGame(nil, counts))
	return m, clk, &events
}

func TestMatchLifecycle(t *testing.T) {
	m := NewMatch(DefaultConfig(), newManualClock(), nil)
	assert.Equal(t, StateWaiting, m.State())
	assert.ErrorIs(t, m.StartGame(nil, fixedCounts{}), ErrNeedTwoPlayers)

	require.NoError(t, m.AddPlayer(7))
	assert.ErrorIs(t, m.AddPlayer(7), ErrAlreadyJoined)
	require.NoError(t, m.AddPlayer(9))
	assert.ErrorIs(t, m.AddPlayer(11), ErrMatchFull)

	require.NoError(t, m.StartGame(nil, fixedCounts{}))
	assert.Equal(t, StateInProgress, m.State())
	assert.Equal(t, PlayerID(7), m.Current())
	assert.Equal(t, 1, m.TurnNumber())
	assert.True(t, m.IsCurrentTurnOf(7))
	assert.False(t, m.IsCurrentTurnOf(9))
	assert.True(t, m.CanMove(7))
	assert.False(t, m.CanAttack(9))

	assert.ErrorIs(t, m.StartGame(nil, fixedCounts{}), ErrAlreadyStarted)
}

func TestMatchTurnExpiry(t *testing.T) {
	m, clk, events := startedMatch(t, DefaultConfig(), fixedCounts{1: 5, 2: 5})
	start := clk.Now()

	m.Tick(start.Add(59*time.Second + 999*time.Millisecond))
	assert.Equal(t, 1, m.TurnNumber())
	assert.Equal(t, PlayerID(1), m.Current())
	assert.Equal(t, time.Millisecond, m.TimeLeft(start.Add(59*time.Second+999*time.Millisecond)))

	clk.Advance(60 * time.Second)
	m.Tick(clk.Now())
	assert.Equal(t, 2, m.TurnNumber())
	assert.Equal(t, PlayerID(2), m.Current())
	assert.Equal(t, 60*time.Second, m.TimeLeft(clk.Now()))

	last := (*events)[len(*events)-1]
	assert.Equal(t, EventTurn, last.Kind)
	assert.Equal(t, TurnEndTimeout, last.Reason)
	assert.Equal(t, clk.Now().UnixMilli(), last.Match.TurnStartedAt)
}

func TestMatchTurnLimit(t *testing.T) {
	cases := []struct {
		name   string
		counts fixedCounts
		winner *PlayerID
	}{
		{"first player ahead", fixedCounts{1: 3, 2: 2}, pid(1)},
		{"second player ahead", fixedCounts{1: 2, 2: 3}, pid(2)},
		{"equal counts continue", fixedCounts{1: 2, 2: 2}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MaxTurns = 3
			m, _, _ := startedMatch(t, cfg, tc.counts)

			m.EndTurn()
			require.Equal(t, StateInProgress, m.State())
			m.EndTurn()

			assert.Equal(t, 3, m.TurnNumber())
			if tc.winner == nil {
				assert.Equal(t, StateInProgress, m.State())
				assert.Nil(t, m.Winner())
				return
			}
			assert.Equal(t, StateFinished, m.State())
			require.NotNil(t, m.Winner())
			assert.Equal(t, *tc.winner, *m.Winner())
			assert.Equal(t, FinishTurnLimit, m.Reason())
		})
	}
}

func TestMatchPlaysPastTurnCapOnTie(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTurns = 3
	counts := fixedCounts{1: 4, 2: 4}
	m, _, _ := startedMatch(t, cfg, counts)

	for i := 0; i < 6; i++ {
		m.EndTurn()
	}
	assert.Equal(t, StateInProgress, m.State())
	assert.Equal(t, 7, m.TurnNumber())
	assert.Equal(t, PlayerID(1), m.Current())

	counts[2] = 3
	m.EndTurn()
	assert.Equal(t, StateFinished, m.State())
	assert.Equal(t, PlayerID(1), *m.Winner())
}

func TestMatchRequestEndTurn(t *testing.T) {
	m, _, _ := startedMatch(t, DefaultConfig(), fixedCounts{})

	assert.ErrorIs(t, m.RequestEndTurn(2), ErrNotYourTurn)
	assert.Equal(t, 1, m.TurnNumber())

	require.NoError(t, m.RequestEndTurn(1))
	assert.Equal(t, PlayerID(2), m.Current())
	assert.Equal(t, 2, m.TurnNumber())
}

func TestMatchFinishedIsTerminal(t *testing.T) {
	m, clk, events := startedMatch(t, DefaultConfig(), fixedCounts{})
	m.Forfeit(2)
	require.Equal(t, StateFinished, m.State())
	assert.Equal(t, PlayerID(1), *m.Winner())
	assert.Equal(t, FinishOpponentLeft, m.Reason())
	n := len(*events)

	clk.Advance(time.Hour)
	m.Tick(clk.Now())
	m.EndTurn()
	m.DeclareWinner(2, FinishElimination)
	assert.ErrorIs(t, m.RequestEndTurn(1), ErrNotYourTurn)
	assert.False(t, m.CanMove(1))
	assert.False(t, m.CanAttack(1))

	assert.Len(t, *events, n)
	assert.Equal(t, PlayerID(1), *m.Winner())
}

func TestMatchForfeitBeforeStartFreesSeat(t *testing.T) {
	m := NewMatch(DefaultConfig(), newManualClock(), nil)
	require.NoError(t, m.AddPlayer(1))
	m.Forfeit(1)
	assert.Empty(t, m.Players())
	assert.Equal(t, StateWaiting, m.State())
}

func pid(p PlayerID) *PlayerID { return &p }
