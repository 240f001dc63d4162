package ws

const (
	// client - server
	MsgMove    = "move"
	MsgAttack  = "attack"
	MsgEndTurn = "end_turn"
	MsgPing    = "ping"

	// server - client
	MsgReady    = "ready"
	MsgWaiting  = "waiting"
	MsgMatched  = "matched"
	MsgSnapshot = "snapshot"
	MsgGameOver = "game_over"
	MsgPong     = "pong"
	MsgError    = "error"
)

// Message is the envelope of every frame.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
