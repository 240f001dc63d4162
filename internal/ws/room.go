package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"skirmish/internal/domain"
	"skirmish/internal/game"
	"skirmish/internal/logger"
)

const saveTimeout = 5 * time.Second

// RoomInfo is a read-only summary of a room for listings.
type RoomInfo struct {
	ID         string     `json:"id"`
	State      game.State `json:"state"`
	Players    []int64    `json:"players"`
	TurnNumber int        `json:"turn_number"`
	Current    int64      `json:"current_turn_player,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type inbound struct {
	client *Client
	cmd    game.Command
}

// Room hosts one session. Run is the only goroutine that touches the
// session; everything else talks to it through channels.
type Room struct {
	ID string

	Register   chan *Client
	Disconnect chan *Client
	commands   chan inbound
	done       chan struct{}

	hub     *Hub
	session *game.Session
	clients map[int64]*Client
	live    bool
	started time.Time
	log     *slog.Logger

	mu        sync.RWMutex
	info      RoomInfo
	createdAt time.Time
}

func NewRoom(id string, session *game.Session, hub *Hub) *Room {
	now := time.Now()
	return &Room{
		ID:         id,
		Register:   make(chan *Client, 4),
		Disconnect: make(chan *Client, 2),
		commands:   make(chan inbound, 64),
		done:       make(chan struct{}),
		hub:        hub,
		session:    session,
		clients:    make(map[int64]*Client),
		log:        logger.With("room", id),
		createdAt:  now,
		info:       RoomInfo{ID: id, State: game.StateWaiting, Players: []int64{}, CreatedAt: now},
	}
}

func (r *Room) Run() {
	r.session.Host()
	cancel := r.session.Subscribe(r.onEvent)
	defer cancel()

	ticker := time.NewTicker(r.hub.tick)
	defer ticker.Stop()

	for {
		select {
		case c := <-r.Register:
			r.handleRegister(c)

		case c := <-r.Disconnect:
			if r.handleDisconnect(c) {
				return
			}

		case in := <-r.commands:
			r.handleCommand(in)

		case now := <-ticker.C:
			r.session.Tick(now)
			if r.expired(now) {
				r.log.Info("room: nobody joined, closing")
				r.shutdown()
				return
			}
		}

		r.updateInfo()
		if r.session.Finished() {
			r.finish()
			return
		}
	}
}

// HandleCommand queues a command from c. It is dropped once the room is
// closed.
func (r *Room) HandleCommand(c *Client, cmd game.Command) {
	select {
	case r.commands <- inbound{client: c, cmd: cmd}:
	case <-r.done:
	}
}

func (r *Room) handleRegister(c *Client) {
	p := game.PlayerID(c.UserID)
	if err := r.session.Connect(p); err != nil {
		r.log.Warn("room: connect rejected", "user", c.UserID, "error", err)
		c.queueMessage(Message{Type: MsgError, Payload: ErrorPayload{Message: err.Error()}})
		c.closeSend()
		r.hub.forget(c.UserID, r)
		return
	}
	r.clients[c.UserID] = c
	r.log.Info("room: player joined", "user", c.UserID, "players", len(r.clients))

	if r.session.Match().State() != game.StateInProgress {
		c.queueMessage(Message{Type: MsgWaiting, Payload: WaitingPayload{RoomID: r.ID}})
		return
	}

	r.started = time.Now()
	players := r.session.Match().Players()
	snapshot := Message{Type: MsgSnapshot, Payload: r.session.Snapshot()}
	for seat, p := range players {
		cl, ok := r.clients[int64(p)]
		if !ok {
			continue
		}
		cl.queueMessage(Message{Type: MsgMatched, Payload: MatchedPayload{
			RoomID:   r.ID,
			You:      int64(p),
			Opponent: int64(players[1-seat]),
			Seat:     seat,
		}})
		cl.queueMessage(snapshot)
	}
	r.live = true
	r.log.Info("room: match started", "players", players)
}

// handleDisconnect reports whether the room closed.
func (r *Room) handleDisconnect(c *Client) bool {
	if r.clients[c.UserID] != c {
		return false
	}
	delete(r.clients, c.UserID)
	c.closeSend()
	r.hub.forget(c.UserID, r)
	r.log.Info("room: player left", "user", c.UserID)

	r.session.Disconnect(game.PlayerID(c.UserID))
	if r.session.Finished() || len(r.clients) > 0 {
		return false
	}
	if r.hub.release(r) {
		r.shutdown()
		return true
	}
	return false
}

func (r *Room) handleCommand(in inbound) {
	if r.clients[in.client.UserID] != in.client {
		return
	}
	err := r.session.Dispatch(game.PlayerID(in.client.UserID), in.cmd)
	result := rejectionLabel(err)
	CommandsTotal.WithLabelValues(string(in.cmd.Kind), result).Inc()
	if err != nil {
		r.log.Debug("room: command rejected", "user", in.client.UserID, "kind", in.cmd.Kind, "reason", result)
	}
}

func (r *Room) onEvent(e game.Event) {
	if e.Kind == game.EventTurn {
		TurnsEnded.WithLabelValues(e.Reason).Inc()
	}
	if !r.live {
		return
	}
	if e.Kind == game.EventGameOver {
		r.broadcastResult(e)
		return
	}
	data, err := json.Marshal(Message{Type: string(e.Kind), Payload: e})
	if err != nil {
		r.log.Error("room: marshal event", "kind", e.Kind, "error", err)
		return
	}
	for _, c := range r.clients {
		c.queue(data)
	}
}

func (r *Room) broadcastResult(e game.Event) {
	var winner *int64
	if e.Match.Winner != nil {
		w := int64(*e.Match.Winner)
		winner = &w
	}
	for uid, c := range r.clients {
		you := "draw"
		if winner != nil {
			you = "lose"
			if *winner == uid {
				you = "win"
			}
		}
		c.queueMessage(Message{Type: MsgGameOver, Payload: GameOverPayload{
			Winner: winner,
			Reason: e.Reason,
			You:    you,
			Match:  e.Match,
		}})
	}
}

func (r *Room) expired(now time.Time) bool {
	if r.hub.waitTimeout <= 0 || r.session.Match().State() != game.StateWaiting {
		return false
	}
	return now.Sub(r.createdAt) > r.hub.waitTimeout
}

func (r *Room) finish() {
	res, _ := r.session.Result()
	r.log.Info("room: match finished", "reason", res.Reason, "winner", res.WinnerID)
	MatchesFinished.WithLabelValues(res.Reason).Inc()
	r.saveResult(res)
	r.shutdown()
}

// shutdown unseats everyone, flushes their queues and stops accepting
// messages.
func (r *Room) shutdown() {
	r.hub.closeRoom(r)
	for _, c := range r.clients {
		c.closeSend()
	}
	close(r.done)

	// Clients assigned after the last Register was read.
	for {
		select {
		case c := <-r.Register:
			c.queueMessage(Message{Type: MsgError, Payload: ErrorPayload{Message: "room closed"}})
			c.closeSend()
		default:
			return
		}
	}
}

func (r *Room) saveResult(res *game.Result) {
	store := r.hub.store
	players := r.session.Match().Players()
	if store == nil || len(players) != 2 {
		return
	}

	rec := &domain.MatchRecord{
		RoomID:     r.ID,
		PlayerAID:  int64(players[0]),
		PlayerBID:  int64(players[1]),
		Reason:     res.Reason,
		Turns:      r.session.Match().TurnNumber(),
		SurvivorsA: r.session.Roster().CountUnits(players[0]),
		SurvivorsB: r.session.Roster().CountUnits(players[1]),
		StartedAt:  r.started,
		FinishedAt: time.Now(),
	}
	if res.WinnerID != nil {
		w := int64(*res.WinnerID)
		rec.WinnerID = &w
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := store.Create(ctx, rec); err != nil {
			r.log.Error("room: store match failed", "error", err)
			return
		}
		r.log.Debug("room: match stored", "match", rec.ID)
	}()
}

func (r *Room) updateInfo() {
	m := r.session.Match()
	players := make([]int64, 0, 2)
	for _, p := range m.Players() {
		players = append(players, int64(p))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.info.State = m.State()
	r.info.Players = players
	r.info.TurnNumber = m.TurnNumber()
	r.info.Current = int64(m.Current())
}

func (r *Room) Info() RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info := r.info
	info.Players = append([]int64(nil), r.info.Players...)
	return info
}

// Done is closed when the room stops.
func (r *Room) Done() <-chan struct{} { return r.done }
