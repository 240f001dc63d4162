package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skirmish/internal/client"
	"skirmish/internal/config"
	"skirmish/internal/domain"
	"skirmish/internal/game"
	httpserver "skirmish/internal/http"
	"skirmish/internal/repository"
	"skirmish/internal/service"
	"skirmish/internal/ws"
)

func guest(t *testing.T, base, name string) (domain.Player, string) {
	t.Helper()
	res, err := http.Post(base+"/api/v1/auth/guest", "application/json", strings.NewReader(`{"name":"`+name+`"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out struct {
		Token  string        `json:"token"`
		Player domain.Player `json:"player"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out.Player, out.Token
}

func TestE2E_WS_MatchIsRecorded(t *testing.T) {
	db := openDB(t)

	cfg, err := config.FromEnv(func(k string) string {
		switch k {
		case "JWT_SECRET":
			return "test-secret"
		case "TICK_RATE":
			return "100"
		}
		return ""
	})
	require.NoError(t, err)
	service.SetJWTSecret(cfg.JWTSecret)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	hub := httpserver.NewHub(db, cfg)
	httpserver.RegisterRoutes(r, db, hub, cfg, "test")
	ts := httptest.NewServer(r)
	defer ts.Close()

	pa, tokenA := guest(t, ts.URL, "e2eA")
	pb, tokenB := guest(t, ts.URL, "e2eB")
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token="

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	a, err := client.Dial(ctx, wsURL+tokenA, game.PlayerID(pa.ID))
	require.NoError(t, err)
	defer a.Close()

	waiting := make(chan struct{}, 1)
	doneA := make(chan error, 1)
	go func() {
		doneA <- a.Run(ctx, func(typ string) {
			if typ == ws.MsgWaiting {
				waiting <- struct{}{}
			}
		})
	}()
	select {
	case <-waiting:
	case <-ctx.Done():
		t.Fatal("A never waited")
	}

	b, err := client.Dial(ctx, wsURL+tokenB, game.PlayerID(pb.ID))
	require.NoError(t, err)
	started := make(chan struct{}, 1)
	go func() {
		_ = b.Run(ctx, func(typ string) {
			if typ == ws.MsgSnapshot {
				started <- struct{}{}
			}
		})
	}()
	select {
	case <-started:
	case <-ctx.Done():
		t.Fatal("B never saw the snapshot")
	}

	// B leaves; A wins by forfeit.
	require.NoError(t, b.Close())
	select {
	case err := <-doneA:
		require.ErrorIs(t, err, client.ErrGameOver)
	case <-ctx.Done():
		t.Fatal("A never saw the result")
	}
	assert.Equal(t, "win", a.Result().You)

	repo := repository.NewMatchRepository(db)
	require.Eventually(t, func() bool {
		records, err := repo.GetByPlayer(context.Background(), pa.ID, 1)
		return err == nil && len(records) == 1 && records[0].Reason == game.FinishOpponentLeft
	}, 5*time.Second, 50*time.Millisecond)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/me/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tokenA)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var stats domain.PlayerStats
	require.NoError(t, json.NewDecoder(res.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Wins)
}
