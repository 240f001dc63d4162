package game

import (
	"math/rand"
	"strconv"
	"time"

	"skirmish/internal/nav"
)

// Settings configure a session. They are fixed when the match starts.
type Settings struct {
	Match  Config
	Map    MapConfig
	Roster []RosterEntry
	// SpawnSpacing is the lateral gap between units of one roster.
	SpawnSpacing float64
	// TravelSpeed is how fast agents walk, in units per second.
	TravelSpeed      float64
	StoppingDistance float64
	NavCellSize      float64
	AgentClearance   float64
	Seed             int64
}

func DefaultSettings() Settings {
	return Settings{
		Match:            DefaultConfig(),
		Map:              DefaultMapConfig(),
		Roster:           DefaultRoster(3, 2),
		SpawnSpacing:     2,
		TravelSpeed:      3.5,
		StoppingDistance: 0.05,
		NavCellSize:      0.5,
		AgentClearance:   0.5,
	}
}

// MapInfo is what a client needs to rebuild the navigator locally.
type MapInfo struct {
	Width     float64        `json:"width"`
	Length    float64        `json:"length"`
	CellSize  float64        `json:"cell_size"`
	Clearance float64        `json:"clearance"`
	Obstacles []nav.Obstacle `json:"obstacles"`
}

// Snapshot is the full replicated state, sent on join.
type Snapshot struct {
	Match      MatchState  `json:"match"`
	Units      []UnitState `json:"units"`
	Map        MapInfo     `json:"map"`
	ServerTime int64       `json:"server_time"`
}

type Option func(*Session)

func WithClock(c Clock) Option { return func(s *Session) { s.clock = c } }

// WithObstacles uses a fixed layout instead of generating one.
func WithObstacles(obs []nav.Obstacle) Option {
	return func(s *Session) { s.fixed = append([]nav.Obstacle{}, obs...) }
}

// Session is one hosted match: map, units and turn authority. It is not
// safe for concurrent use; the owner drives it from one goroutine.
type Session struct {
	settings  Settings
	clock     Clock
	rng       *rand.Rand
	feed      *Feed
	match     *Match
	roster    *Roster
	navigator nav.Navigator
	obstacles nav.Obstacles
	fixed     []nav.Obstacle
	arena     *arena

	hosted   bool
	lastTick time.Time
}

func NewSession(settings Settings, opts ...Option) *Session {
	s := &Session{settings: settings, clock: SystemClock, feed: NewFeed()}
	for _, opt := range opts {
		opt(s)
	}
	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rng = rand.New(rand.NewSource(seed))
	s.navigator = nav.NewGridNavigator(settings.Map.Width, settings.Map.Length, settings.NavCellSize, settings.AgentClearance)
	s.match = NewMatch(settings.Match, s.clock, s.feed)
	s.arena = &arena{
		match:    s.match,
		nav:      s.navigator,
		feed:     s.feed,
		travel:   settings.TravelSpeed,
		stopping: settings.StoppingDistance,
	}
	s.roster = newRoster(s.arena)
	s.arena.roster = s.roster
	return s
}

// Host builds the map and bakes the navigator. It runs once.
func (s *Session) Host() {
	if s.hosted {
		return
	}
	s.hosted = true
	if s.fixed != nil {
		s.obstacles = s.fixed
	} else {
		s.obstacles = GenerateObstacles(s.settings.Map, s.rng, s.spawnZones()...)
	}
	s.arena.sight = s.obstacles
	s.navigator.Rebuild(s.obstacles)
}

// Connect seats a player. The second connection spawns both rosters and
// starts the match.
func (s *Session) Connect(p PlayerID) error {
	s.Host()
	if err := s.match.AddPlayer(p); err != nil {
		return err
	}
	players := s.match.Players()
	if len(players) < 2 {
		return nil
	}
	for seat, owner := range players {
		for _, pl := range s.layout(seat) {
			s.roster.Spawn(owner, pl.Stats, pl.Position)
		}
	}
	return s.match.StartGame(s.roster.All(), s.roster)
}

func (s *Session) layout(seat int) []Placement {
	return SpawnLayout(s.settings.Map.SpawnPoints[seat], s.settings.Roster, s.settings.SpawnSpacing)
}

// spawnZones are the areas obstacles must leave open so every unit starts on
// passable ground with room to step off its cell.
func (s *Session) spawnZones() []nav.Circle {
	margin := s.settings.AgentClearance + 2*s.settings.NavCellSize
	var zones []nav.Circle
	for seat := range s.settings.Map.SpawnPoints {
		for _, pl := range s.layout(seat) {
			zones = append(zones, nav.Circle{Center: pl.Position, Radius: pl.Stats.Radius + margin})
		}
	}
	return zones
}

// Disconnect forfeits the match for p.
func (s *Session) Disconnect(p PlayerID) { s.match.Forfeit(p) }

func (s *Session) Move(sender PlayerID, id UnitID, dest nav.Vec2) error {
	u, ok := s.roster.Get(id)
	if !ok {
		return ErrUnknownUnit
	}
	return u.ServeMove(sender, dest)
}

func (s *Session) Attack(sender PlayerID, id, target UnitID) error {
	u, ok := s.roster.Get(id)
	if !ok {
		return ErrUnknownUnit
	}
	return u.ServeAttack(sender, target)
}

func (s *Session) EndTurn(sender PlayerID) error { return s.match.RequestEndTurn(sender) }

// Dispatch runs a client command on behalf of sender.
func (s *Session) Dispatch(sender PlayerID, cmd Command) error {
	switch cmd.Kind {
	case CommandMove:
		return s.Move(sender, cmd.Unit, cmd.Dest)
	case CommandAttack:
		return s.Attack(sender, cmd.Unit, cmd.Target)
	case CommandEndTurn:
		return s.EndTurn(sender)
	default:
		return ErrUnknownCommand
	}
}

// Tick advances agents, settles finished moves and polls the turn timer.
func (s *Session) Tick(now time.Time) {
	dt := 0.0
	if !s.lastTick.IsZero() {
		dt = now.Sub(s.lastTick).Seconds()
	}
	s.lastTick = now
	if s.match.State() != StateInProgress {
		return
	}
	for _, u := range s.roster.All() {
		u.tick(dt)
	}
	s.match.Tick(now)
}

func (s *Session) Match() *Match            { return s.match }
func (s *Session) Roster() *Roster          { return s.roster }
func (s *Session) Obstacles() nav.Obstacles { return s.obstacles }
func (s *Session) Finished() bool           { return s.match.State() == StateFinished }

func (s *Session) Unit(id UnitID) (*Unit, bool) { return s.roster.Get(id) }

// Subscribe observes every replicated change.
func (s *Session) Subscribe(fn func(Event)) func() { return s.feed.Subscribe(fn) }

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Match: s.match.Snapshot(),
		Units: s.roster.States(),
		Map: MapInfo{
			Width:     s.settings.Map.Width,
			Length:    s.settings.Map.Length,
			CellSize:  s.settings.NavCellSize,
			Clearance: s.settings.AgentClearance,
			Obstacles: append([]nav.Obstacle{}, s.obstacles...),
		},
		ServerTime: s.clock.Now().UnixMilli(),
	}
}

// Result reports the outcome once the match is finished.
func (s *Session) Result() (*Result, bool) {
	if !s.Finished() {
		return nil, false
	}
	survivors := map[string]int{}
	players := s.match.Players()
	for _, p := range players {
		survivors[playerKey(p)] = s.roster.CountUnits(p)
	}
	res := &Result{
		Reason: s.match.Reason(),
		Details: map[string]interface{}{
			"turns":     s.match.TurnNumber(),
			"survivors": survivors,
		},
	}
	if w := s.match.Winner(); w != nil {
		id := *w
		res.WinnerID = &id
	}
	return res, true
}

func playerKey(p PlayerID) string { return strconv.FormatInt(int64(p), 10) }
