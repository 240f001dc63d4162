package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func initRedisFromEnv(t *testing.T) {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	pass := os.Getenv("REDIS_PASSWORD")
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			db = n
		}
	}

	InitRedisRateLimiter(addr, pass, db)
	if !RedisEnabled() {
		t.Fatalf("redis at %s did not answer", addr)
	}
	t.Cleanup(CloseRedis)
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisRateLimitIntegration(t *testing.T) {
	initRedisFromEnv(t)
	gin.SetMode(gin.TestMode)

	w := 2 * time.Second
	max := 2

	r := gin.New()
	r.GET("/test", RedisRateLimit(max, w), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := &http.Client{}

	for i := 0; i < max; i++ {
		req, _ := http.NewRequest("GET", srv.URL+"/test", nil)
		res, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if res.StatusCode != 200 {
			t.Fatalf("expected 200 got %d", res.StatusCode)
		}
	}

	req, _ := http.NewRequest("GET", srv.URL+"/test", nil)
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 429 {
		t.Fatalf("expected 429 got %d", res.StatusCode)
	}
}

func TestCommandLimiterIntegration(t *testing.T) {
	initRedisFromEnv(t)

	l := NewCommandLimiter(3, 2*time.Second)
	player := time.Now().UnixNano()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, player) {
			t.Fatalf("command %d should pass", i)
		}
	}
	if l.Allow(ctx, player) {
		t.Fatal("fourth command should be throttled")
	}
	if !l.Allow(ctx, player+1) {
		t.Fatal("other players have their own window")
	}
}
