package game

import (
	"errors"
	"time"
)

// PlayerID is the transport-verified identity of a connected player.
type PlayerID int64

// UnitID identifies a spawned unit for the lifetime of a session.
type UnitID int64

type State string

const (
	StateWaiting    State = "waiting"
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
)

// Turn end reasons.
const (
	TurnEndTimeout   = "timeout"
	TurnEndBudget    = "budget"
	TurnEndRequested = "requested"
)

// Finish reasons.
const (
	FinishTurnLimit    = "turn_limit"
	FinishElimination  = "elimination"
	FinishOpponentLeft = "opponent_left"
)

// Command rejections. They are logged and counted on the server and never
// reported back to the sender.
var (
	ErrNotOwner    = errors.New("sender does not own the unit")
	ErrNotYourTurn = errors.New("sender may not act now")
	ErrUnitBusy    = errors.New("unit is moving")
	ErrNoPath      = errors.New("no path to destination")
	ErrPathTooLong = errors.New("path exceeds move budget")
	ErrUnknownUnit = errors.New("unit does not exist")
	ErrSelfTarget  = errors.New("unit cannot target itself")
	ErrOutOfRange  = errors.New("target out of range or sight")

	ErrUnknownCommand = errors.New("unknown command")
)

// Lifecycle errors.
var (
	ErrMatchFull      = errors.New("match already has two players")
	ErrAlreadyJoined  = errors.New("player already joined")
	ErrNeedTwoPlayers = errors.New("match needs two players")
	ErrAlreadyStarted = errors.New("match already started")
)

// Config holds the match tuning. It is fixed once the match starts.
type Config struct {
	TurnDuration time.Duration
	MaxMoves     int
	MaxAttacks   int
	MaxTurns     int
}

func DefaultConfig() Config {
	return Config{
		TurnDuration: 60 * time.Second,
		MaxMoves:     1,
		MaxAttacks:   1,
		MaxTurns:     15,
	}
}

// Clock supplies the server time. Tests swap it for a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Result is the final outcome of a session, handed to persistence.
type Result struct {
	WinnerID *PlayerID
	Reason   string
	Details  map[string]interface{}
}
