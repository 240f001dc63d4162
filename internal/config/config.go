package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"skirmish/internal/game"
	"skirmish/internal/logger"
	"skirmish/internal/nav"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string // optional; match history is off without it
	JWTSecret     string
	AllowedOrigin string
	LogLevel      string
	LogJSON       bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// HTTP limits
	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// In-match command limits, per player
	CommandRateLimit  int
	CommandRateWindow time.Duration

	TickRate    int
	WaitTimeout time.Duration

	Game game.Settings
}

// TickInterval is the room loop period derived from TickRate.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Load reads .env if present, then the environment. It exits on invalid
// configuration.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from getenv. Unparseable numbers fall back to
// their defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := env(getenv)

	jwtSecret := getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	settings := game.DefaultSettings()
	settings.Match.TurnDuration = time.Duration(e.intOr("TURN_DURATION_SECONDS", 60)) * time.Second
	settings.Match.MaxMoves = e.intOr("MAX_MOVES", settings.Match.MaxMoves)
	settings.Match.MaxAttacks = e.intOr("MAX_ATTACKS", settings.Match.MaxAttacks)
	settings.Match.MaxTurns = e.intOr("MAX_TURNS", settings.Match.MaxTurns)
	settings.Roster = game.DefaultRoster(e.intOr("UNIT_TYPE1_COUNT", 3), e.intOr("UNIT_TYPE2_COUNT", 2))
	settings.Map.ObstacleCount = e.intOr("OBSTACLE_COUNT", settings.Map.ObstacleCount)
	settings.Map.MinObstacleLength = e.floatOr("OBSTACLE_MIN_LENGTH", settings.Map.MinObstacleLength)
	settings.Map.MaxObstacleLength = e.floatOr("OBSTACLE_MAX_LENGTH", settings.Map.MaxObstacleLength)
	settings.Map.Width = e.floatOr("MAP_WIDTH", settings.Map.Width)
	settings.Map.Length = e.floatOr("MAP_LENGTH", settings.Map.Length)
	settings.Map.Border = e.floatOr("MAP_BORDER", settings.Map.Border)
	settings.TravelSpeed = e.floatOr("UNIT_TRAVEL_SPEED", settings.TravelSpeed)
	settings.Seed = int64(e.intOr("MAP_SEED", 0))
	settings.Map.SpawnPoints = [2]nav.Vec2{nav.V(2, 2), nav.V(2, settings.Map.Length-2)}

	if settings.Match.TurnDuration <= 0 || settings.Match.MaxTurns <= 0 {
		return nil, errors.New("TURN_DURATION_SECONDS and MAX_TURNS must be positive")
	}

	if settings.Map.MinObstacleLength > settings.Map.MaxObstacleLength {
		return nil, errors.New("OBSTACLE_MIN_LENGTH exceeds OBSTACLE_MAX_LENGTH")
	}
	if 2*settings.Map.Border > settings.Map.Width || 2*settings.Map.Border > settings.Map.Length {
		return nil, errors.New("MAP_BORDER leaves no room for obstacles")
	}

	tickRate := e.intOr("TICK_RATE", 20)
	if tickRate == 0 {
		return nil, errors.New("TICK_RATE must be positive")
	}

	port := getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	logLevel := getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		AppPort:           port,
		DatabaseURL:       getenv("DATABASE_URL"),
		JWTSecret:         jwtSecret,
		AllowedOrigin:     getenv("ALLOWED_ORIGIN"),
		LogLevel:          logLevel,
		LogJSON:           getenv("LOG_JSON") == "true",
		RedisAddr:         getenv("REDIS_ADDR"),
		RedisPassword:     getenv("REDIS_PASSWORD"),
		RedisDB:           e.intOr("REDIS_DB", 0),
		APIRateLimit:      e.intOr("API_RATE_LIMIT", 60),
		APIRateWindow:     time.Duration(e.intOr("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthRateLimit:     e.intOr("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:    time.Duration(e.intOr("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
		CommandRateLimit:  e.intOr("COMMAND_RATE_LIMIT", 20),
		CommandRateWindow: time.Duration(e.intOr("COMMAND_RATE_WINDOW", 1)) * time.Second,
		TickRate:          tickRate,
		WaitTimeout:       time.Duration(e.intOr("ROOM_WAIT_TIMEOUT_SECONDS", 300)) * time.Second,
		Game:              settings,
	}, nil
}

type env func(string) string

// intOr returns a non-negative integer, or def.
func (e env) intOr(key string, def int) int {
	if v := e(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func (e env) floatOr(key string, def float64) float64 {
	if v := e(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return def
}
