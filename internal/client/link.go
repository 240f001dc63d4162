package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"skirmish/internal/game"
	"skirmish/internal/ws"

	"github.com/gorilla/websocket"
)

// ErrGameOver is returned by Run once the match has finished.
var ErrGameOver = errors.New("game over")

// Link is a websocket connection to a match. It feeds the replica from
// server frames and submits controller commands.
type Link struct {
	conn    *websocket.Conn
	replica *Replica

	mu       sync.Mutex // serializes writes
	matched  ws.MatchedPayload
	gameOver *ws.GameOverPayload
}

// Dial connects to the match endpoint as player me. url must carry the
// player's token.
func Dial(ctx context.Context, url string, me game.PlayerID) (*Link, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &Link{conn: conn, replica: NewReplica(me)}, nil
}

func (l *Link) Replica() *Replica { return l.replica }

// Matched and Result are written by Run; read them from onFrame or after Run
// returns.
func (l *Link) Matched() ws.MatchedPayload { return l.matched }

func (l *Link) Result() *ws.GameOverPayload { return l.gameOver }

// Submit sends cmd to the server.
func (l *Link) Submit(cmd game.Command) error {
	raw, err := ws.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return l.conn.WriteMessage(websocket.TextMessage, raw)
}

// Run reads frames until the match ends, the connection drops or ctx is
// done. onFrame runs after each frame is applied, on the read goroutine.
func (l *Link) Run(ctx context.Context, onFrame func(typ string)) error {
	stop := context.AfterFunc(ctx, func() { l.conn.Close() })
	defer stop()

	for {
		_, raw, err := l.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		typ, err := l.apply(raw, time.Now())
		if err != nil {
			return err
		}
		if onFrame != nil {
			onFrame(typ)
		}
		if typ == ws.MsgGameOver {
			return ErrGameOver
		}
	}
}

func (l *Link) Close() error { return l.conn.Close() }

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (l *Link) apply(raw []byte, now time.Time) (string, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", fmt.Errorf("decode frame: %w", err)
	}

	switch f.Type {
	case ws.MsgMatched:
		return f.Type, json.Unmarshal(f.Payload, &l.matched)
	case ws.MsgSnapshot:
		var s game.Snapshot
		if err := json.Unmarshal(f.Payload, &s); err != nil {
			return f.Type, fmt.Errorf("decode snapshot: %w", err)
		}
		l.replica.ApplySnapshot(s, now)
	case ws.MsgGameOver:
		var over ws.GameOverPayload
		if err := json.Unmarshal(f.Payload, &over); err != nil {
			return f.Type, fmt.Errorf("decode game over: %w", err)
		}
		l.gameOver = &over
		l.replica.Apply(game.Event{Kind: game.EventGameOver, Match: over.Match, Reason: over.Reason})
	case string(game.EventState), string(game.EventTurn), string(game.EventBudget),
		string(game.EventUnitMoving), string(game.EventUnitMoved),
		string(game.EventUnitAttacked), string(game.EventUnitDespawned):
		var e game.Event
		if err := json.Unmarshal(f.Payload, &e); err != nil {
			return f.Type, fmt.Errorf("decode %s: %w", f.Type, err)
		}
		l.replica.Apply(e)
	}
	return f.Type, nil
}
