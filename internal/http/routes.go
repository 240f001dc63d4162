package http

import (
	"skirmish/internal/config"
	"skirmish/internal/game"
	"skirmish/internal/http/handlers"
	"skirmish/internal/http/middleware"
	"skirmish/internal/repository"
	"skirmish/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes mounts the API and the match websocket. db may be nil, in
// which case guests are not stored and match history is off.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, hub *ws.Hub, cfg *config.Config, version string) {
	h := &handlers.Handler{Rooms: hub}
	if db != nil {
		h.Players = repository.NewPlayerRepository(db)
		h.Matches = repository.NewMatchRepository(db)
	}

	health := handlers.NewHealthHandler(db, version)
	if middleware.RedisEnabled() {
		health.WithCheck("redis", middleware.PingRedis)
	}

	r.Use(middleware.Observe())

	// Health checks (no rate limiting)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	v1.POST("/auth/guest", middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow), h.Guest)
	v1.GET("/rooms", h.ListRooms)

	me := v1.Group("/me")
	me.Use(middleware.JWT(), middleware.PlayerRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	{
		me.GET("/matches", h.MyMatches)
		me.GET("/stats", h.MyStats)
	}

	r.GET("/ws", ws.HandleWS(hub))
}

// NewHub builds the match hub from configuration. Finished matches are
// stored when db is set.
func NewHub(db *pgxpool.Pool, cfg *config.Config) *ws.Hub {
	opts := ws.HubOptions{
		Factory:      game.NewFactory(cfg.Game),
		Limiter:      middleware.NewCommandLimiter(cfg.CommandRateLimit, cfg.CommandRateWindow),
		TickInterval: cfg.TickInterval(),
		WaitTimeout:  cfg.WaitTimeout,
	}
	if db != nil {
		opts.Store = repository.NewMatchRepository(db)
	}
	return ws.NewHub(opts)
}
