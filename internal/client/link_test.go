package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skirmish/internal/game"
	"skirmish/internal/service"
	"skirmish/internal/ws"
)

func TestLinkDrivesAMatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service.SetJWTSecret("link-secret")

	hub := ws.NewHub(ws.HubOptions{
		Factory:      game.NewFactory(game.DefaultSettings(), game.WithObstacles(nil)),
		TickInterval: 5 * time.Millisecond,
	})
	r := gin.New()
	r.GET("/ws", ws.HandleWS(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := func(id int64) string {
		token, err := service.GenerateJWT(id)
		require.NoError(t, err)
		return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := Dial(ctx, url(1), me)
	require.NoError(t, err)
	defer a.Close()

	ctrl := NewController(a.Replica(), a)
	waiting := make(chan struct{}, 1)
	aliceDone := make(chan error, 1)
	go func() {
		aliceDone <- a.Run(ctx, func(typ string) {
			switch typ {
			case ws.MsgWaiting:
				waiting <- struct{}{}
			case ws.MsgSnapshot:
				ctrl.EndTurn()
			}
		})
	}()

	select {
	case <-waiting:
	case <-ctx.Done():
		t.Fatal("no waiting frame")
	}

	b, err := Dial(ctx, url(2), enemy)
	require.NoError(t, err)
	defer b.Close()

	bobTurn := make(chan game.MatchState, 1)
	go func() {
		_ = b.Run(ctx, func(typ string) {
			if typ == string(game.EventTurn) && b.Replica().IsMyTurn() {
				select {
				case bobTurn <- b.Replica().Match():
				default:
				}
				b.Close()
			}
		})
	}()

	select {
	case m := <-bobTurn:
		assert.Equal(t, 2, m.TurnNumber)
		assert.Equal(t, enemy, m.CurrentTurnPlayer)
	case <-ctx.Done():
		t.Fatal("bob never got the turn")
	}

	select {
	case err := <-aliceDone:
		require.ErrorIs(t, err, ErrGameOver)
	case <-ctx.Done():
		t.Fatal("alice never saw the result")
	}
	res := a.Result()
	require.NotNil(t, res)
	assert.Equal(t, "win", res.You)
	assert.Equal(t, game.FinishOpponentLeft, res.Reason)
	assert.Equal(t, int64(enemy), a.Matched().Opponent)
	assert.Equal(t, game.StateFinished, a.Replica().Match().State)
}
