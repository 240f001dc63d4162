package game

import "time"

// UnitCounter reports live units per player.
type UnitCounter interface {
	CountUnits(p PlayerID) int
}

// MatchState is the replicated view of the turn authority.
type MatchState struct {
	State             State      `json:"state"`
	Players           []PlayerID `json:"players"`
	CurrentTurnPlayer PlayerID   `json:"current_turn_player"`
	TurnNumber        int        `json:"turn_number"`
	TurnStartedAt     int64      `json:"turn_started_at"`
	TurnDurationMs    int64      `json:"turn_duration_ms"`
	UsedMoves         int        `json:"used_moves"`
	PendingMoves      int        `json:"pending_moves"`
	UsedAttacks       int        `json:"used_attacks"`
	MaxMoves          int        `json:"max_moves"`
	MaxAttacks        int        `json:"max_attacks"`
	MaxTurns          int        `json:"max_turns"`
	Winner            *PlayerID  `json:"winner,omitempty"`
	FinishReason      string     `json:"finish_reason,omitempty"`
}

// Match is the turn authority: whose turn it is, what they may still do this
// turn, and when the game is over. It is driven from a single goroutine.
type Match struct {
	cfg   Config
	clock Clock
	feed  *Feed
	units UnitCounter

	players   []PlayerID
	state     State
	current   PlayerID
	turn      int
	turnStart time.Time

	usedMoves   int
	usedAttacks int
	// pendingMoves are accepted moves of this turn still in flight.
	pendingMoves int

	winner *PlayerID
	reason string
}

func NewMatch(cfg Config, clock Clock, feed *Feed) *Match {
	if clock == nil {
		clock = SystemClock
	}
	if feed == nil {
		feed = NewFeed()
	}
	return &Match{cfg: cfg, clock: clock, feed: feed, state: StateWaiting, turn: 1}
}

func (m *Match) Config() Config      { return m.cfg }
func (m *Match) State() State        { return m.state }
func (m *Match) TurnNumber() int     { return m.turn }
func (m *Match) Current() PlayerID   { return m.current }
func (m *Match) UsedMoves() int      { return m.usedMoves }
func (m *Match) UsedAttacks() int    { return m.usedAttacks }
func (m *Match) Winner() *PlayerID   { return m.winner }
func (m *Match) Reason() string      { return m.reason }
func (m *Match) Players() []PlayerID { return append([]PlayerID(nil), m.players...) }

// AddPlayer seats p in the next free slot. Seat order is connection order.
func (m *Match) AddPlayer(p PlayerID) error {
	for _, q := range m.players {
		if q == p {
			return ErrAlreadyJoined
		}
	}
	if len(m.players) >= 2 {
		return ErrMatchFull
	}
	m.players = append(m.players, p)
	return nil
}

// StartGame hands the authority its unit set and opens turn 1 for the
// first-connected player.
func (m *Match) StartGame(units []*Unit, counter UnitCounter) error {
	if m.state != StateWaiting {
		return ErrAlreadyStarted
	}
	if len(m.players) != 2 {
		return ErrNeedTwoPlayers
	}
	for _, u := range units {
		u.OnMoved(m.onUnitMoved)
		u.OnAttacked(m.onUnitAttacked)
	}
	m.units = counter
	m.current = m.players[0]
	m.turn = 1
	m.resetTurn()
	m.state = StateInProgress
	m.publish(EventState, "")
	return nil
}

func (m *Match) resetTurn() {
	m.usedMoves, m.usedAttacks, m.pendingMoves = 0, 0, 0
	m.turnStart = m.clock.Now()
}

func (m *Match) IsCurrentTurnOf(p PlayerID) bool {
	return m.state == StateInProgress && m.current == p
}

func (m *Match) CanMove(p PlayerID) bool {
	return m.IsCurrentTurnOf(p) && m.usedMoves+m.pendingMoves < m.cfg.MaxMoves
}

func (m *Match) CanAttack(p PlayerID) bool {
	return m.IsCurrentTurnOf(p) && m.usedAttacks < m.cfg.MaxAttacks
}

// TimeLeft is the remaining time of the current turn at now.
func (m *Match) TimeLeft(now time.Time) time.Duration {
	if m.state != StateInProgress {
		return 0
	}
	left := m.cfg.TurnDuration - now.Sub(m.turnStart)
	if left < 0 {
		return 0
	}
	return left
}

// Tick ends the turn once its time is up.
func (m *Match) Tick(now time.Time) {
	if m.state != StateInProgress {
		return
	}
	if now.Sub(m.turnStart) >= m.cfg.TurnDuration {
		m.endTurn(TurnEndTimeout)
	}
}

// EndTurn passes the turn to the other player.
func (m *Match) EndTurn() { m.endTurn(TurnEndRequested) }

// RequestEndTurn lets the turn holder give up the rest of the turn.
func (m *Match) RequestEndTurn(sender PlayerID) error {
	if !m.IsCurrentTurnOf(sender) {
		return ErrNotYourTurn
	}
	m.endTurn(TurnEndRequested)
	return nil
}

func (m *Match) endTurn(reason string) {
	if m.state != StateInProgress {
		return
	}
	next := m.other(m.current)
	m.turn++
	m.resetTurn()

	if m.turn >= m.cfg.MaxTurns && m.units != nil {
		mine, theirs := m.units.CountUnits(m.current), m.units.CountUnits(next)
		if mine != theirs {
			winner := m.current
			if theirs > mine {
				winner = next
			}
			m.DeclareWinner(winner, FinishTurnLimit)
			return
		}
		// Equal counts: play continues past the cap.
	}

	m.current = next
	m.publish(EventTurn, reason)
}

// reserveMove books one move of the current turn for a unit that just
// started walking and returns the turn it was booked in.
func (m *Match) reserveMove() int {
	m.pendingMoves++
	m.publish(EventBudget, "")
	return m.turn
}

// abandonMove settles a reservation whose unit died before arriving. The
// move counts as spent.
func (m *Match) abandonMove(turn int) {
	if m.state != StateInProgress || turn != m.turn || m.pendingMoves == 0 {
		return
	}
	m.pendingMoves--
	m.usedMoves++
}

func (m *Match) onUnitMoved(u *Unit) {
	if m.state != StateInProgress {
		return
	}
	// A move issued in an earlier turn was already released by endTurn.
	if u.moveTurn != m.turn || m.pendingMoves == 0 {
		return
	}
	m.pendingMoves--
	m.usedMoves++
	m.publish(EventBudget, "")
	m.checkBudget()
}

func (m *Match) onUnitAttacked(u *Unit) {
	if m.state != StateInProgress {
		return
	}
	m.usedAttacks++
	if m.units != nil {
		if defender := m.other(u.owner); defender != u.owner && m.units.CountUnits(defender) == 0 {
			m.DeclareWinner(u.owner, FinishElimination)
			return
		}
	}
	m.publish(EventBudget, "")
	m.checkBudget()
}

func (m *Match) checkBudget() {
	if m.usedMoves >= m.cfg.MaxMoves && m.usedAttacks >= m.cfg.MaxAttacks {
		m.endTurn(TurnEndBudget)
	}
}

// DeclareWinner finishes the match. Later calls are ignored.
func (m *Match) DeclareWinner(p PlayerID, reason string) {
	if m.state == StateFinished {
		return
	}
	w := p
	m.winner = &w
	m.reason = reason
	m.state = StateFinished
	m.publish(EventGameOver, reason)
}

// Forfeit handles a player leaving. Mid-match the opponent wins; before the
// start the seat is freed.
func (m *Match) Forfeit(p PlayerID) {
	switch m.state {
	case StateInProgress:
		if other := m.other(p); other != p {
			m.DeclareWinner(other, FinishOpponentLeft)
		}
	case StateWaiting:
		for i, q := range m.players {
			if q == p {
				m.players = append(m.players[:i], m.players[i+1:]...)
				return
			}
		}
	}
}

func (m *Match) other(p PlayerID) PlayerID {
	for _, q := range m.players {
		if q != p {
			return q
		}
	}
	return p
}

func (m *Match) Snapshot() MatchState {
	s := MatchState{
		State:             m.state,
		Players:           m.Players(),
		CurrentTurnPlayer: m.current,
		TurnNumber:        m.turn,
		TurnDurationMs:    m.cfg.TurnDuration.Milliseconds(),
		UsedMoves:         m.usedMoves,
		PendingMoves:      m.pendingMoves,
		UsedAttacks:       m.usedAttacks,
		MaxMoves:          m.cfg.MaxMoves,
		MaxAttacks:        m.cfg.MaxAttacks,
		MaxTurns:          m.cfg.MaxTurns,
		FinishReason:      m.reason,
	}
	if !m.turnStart.IsZero() {
		s.TurnStartedAt = m.turnStart.UnixMilli()
	}
	if m.winner != nil {
		w := *m.winner
		s.Winner = &w
	}
	return s
}

func (m *Match) publish(kind EventKind, reason string) {
	m.feed.Publish(Event{Kind: kind, Match: m.Snapshot(), Reason: reason})
}
