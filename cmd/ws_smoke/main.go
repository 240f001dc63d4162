package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"skirmish/internal/client"
	"skirmish/internal/domain"
	"skirmish/internal/game"
	"skirmish/internal/logger"
)

// ws_smoke plays a full match between two scripted players against a running
// server.
func main() {
	addr := flag.String("addr", "http://127.0.0.1:"+port(), "server base url")
	timeout := flag.Duration("timeout", 10*time.Minute, "give up after")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	wsBase := "ws" + strings.TrimPrefix(*addr, "http") + "/ws?token="

	type player struct {
		link *client.Link
		bot  *bot
	}
	var players []player
	for _, name := range []string{"smokeA", "smokeB"} {
		p, token, err := guest(ctx, *addr, name)
		if err != nil {
			logger.Fatal("guest login failed", "name", name, "error", err)
		}
		link, err := client.Dial(ctx, wsBase+token, game.PlayerID(p.ID))
		if err != nil {
			logger.Fatal("dial failed", "name", name, "error", err)
		}
		defer link.Close()
		players = append(players, player{link: link, bot: newBot(name, link)})
	}

	results := make(chan error, len(players))
	for _, p := range players {
		p := p
		go func() { results <- p.link.Run(ctx, p.bot.onFrame) }()
	}

	for range players {
		if err := <-results; err != nil && !errors.Is(err, client.ErrGameOver) {
			logger.Fatal("match aborted", "error", err)
		}
	}
	for _, p := range players {
		res := p.link.Result()
		if res == nil {
			logger.Fatal("no result", "player", p.bot.name)
		}
		m := p.link.Matched()
		logger.Info("result", "player", p.bot.name, "room", m.RoomID, "seat", m.Seat, "you", res.You, "reason", res.Reason, "turns", res.Match.TurnNumber)
	}
	fmt.Println("smoke test finished")
}

func port() string {
	if p := os.Getenv("APP_PORT"); p != "" {
		return p
	}
	return "8080"
}

func guest(ctx context.Context, base, name string) (*domain.Player, string, error) {
	body, _ := json.Marshal(map[string]string{"name": name})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/v1/auth/guest", bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("guest: status %d", res.StatusCode)
	}

	var out struct {
		Token  string        `json:"token"`
		Player domain.Player `json:"player"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, "", err
	}
	return &out.Player, out.Token, nil
}
