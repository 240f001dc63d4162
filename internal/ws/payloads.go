package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"skirmish/internal/game"
	"skirmish/internal/nav"
)

// client → server
type MovePayload struct {
	UnitID int64   `json:"unit_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type AttackPayload struct {
	UnitID   int64 `json:"unit_id"`
	TargetID int64 `json:"target_id"`
}

// server → client
type WaitingPayload struct {
	RoomID string `json:"room_id"`
}

type MatchedPayload struct {
	RoomID   string `json:"room_id"`
	You      int64  `json:"you"`
	Opponent int64  `json:"opponent"`
	Seat     int    `json:"seat"`
}

type GameOverPayload struct {
	Winner *int64          `json:"winner"`
	Reason string          `json:"reason"`
	You    string          `json:"you"` // win | lose | draw
	Match  game.MatchState `json:"match"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

var errMissingPayload = errors.New("payload required")

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// decodeFrame parses one client frame. Ping frames decode to a zero command.
func decodeFrame(raw []byte) (string, game.Command, error) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", game.Command{}, fmt.Errorf("decode frame: %w", err)
	}

	switch msg.Type {
	case MsgPing:
		return msg.Type, game.Command{}, nil
	case MsgEndTurn:
		return msg.Type, game.Command{Kind: game.CommandEndTurn}, nil
	case MsgMove:
		var p MovePayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return msg.Type, game.Command{}, err
		}
		return msg.Type, game.Command{
			Kind: game.CommandMove,
			Unit: game.UnitID(p.UnitID),
			Dest: nav.V(p.X, p.Y),
		}, nil
	case MsgAttack:
		var p AttackPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return msg.Type, game.Command{}, err
		}
		return msg.Type, game.Command{
			Kind:   game.CommandAttack,
			Unit:   game.UnitID(p.UnitID),
			Target: game.UnitID(p.TargetID),
		}, nil
	default:
		return msg.Type, game.Command{}, fmt.Errorf("%w: %q", game.ErrUnknownCommand, msg.Type)
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errMissingPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// EncodeCommand builds the frame a client sends for cmd.
func EncodeCommand(cmd game.Command) ([]byte, error) {
	switch cmd.Kind {
	case game.CommandMove:
		return json.Marshal(Message{Type: MsgMove, Payload: MovePayload{UnitID: int64(cmd.Unit), X: cmd.Dest.X, Y: cmd.Dest.Y}})
	case game.CommandAttack:
		return json.Marshal(Message{Type: MsgAttack, Payload: AttackPayload{UnitID: int64(cmd.Unit), TargetID: int64(cmd.Target)}})
	case game.CommandEndTurn:
		return json.Marshal(Message{Type: MsgEndTurn})
	default:
		return nil, game.ErrUnknownCommand
	}
}

// rejectionLabel names a command outcome for metrics.
func rejectionLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, game.ErrNotOwner):
		return "not_owner"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrUnitBusy):
		return "unit_busy"
	case errors.Is(err, game.ErrNoPath):
		return "no_path"
	case errors.Is(err, game.ErrPathTooLong):
		return "path_too_long"
	case errors.Is(err, game.ErrUnknownUnit):
		return "unknown_unit"
	case errors.Is(err, game.ErrSelfTarget):
		return "self_target"
	case errors.Is(err, game.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, game.ErrUnknownCommand):
		return "unknown_command"
	default:
		return "error"
	}
}
