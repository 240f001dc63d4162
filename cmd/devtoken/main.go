package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"skirmish/internal/db"
	"skirmish/internal/domain"
	"skirmish/internal/logger"
	"skirmish/internal/repository"
	"skirmish/internal/service"

	"github.com/joho/godotenv"
)

// devtoken prints a player token. With -player it signs that id; otherwise
// it registers a guest in DATABASE_URL.
func main() {
	playerID := flag.Int64("player", 0, "sign a token for this player id without touching the database")
	name := flag.String("name", "tester", "guest name when registering")
	flag.Parse()

	_ = godotenv.Load()
	service.InitJWT()

	id := *playerID
	if id == 0 {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			logger.Fatal("DATABASE_URL not set; pass -player to skip registration")
		}
		ctx := context.Background()
		pool, err := db.Connect(ctx, dsn)
		if err != nil {
			logger.Fatal("connect", "error", err)
		}
		defer pool.Close()

		p := &domain.Player{Name: *name}
		if err := repository.NewPlayerRepository(pool).Create(ctx, p); err != nil {
			logger.Fatal("create player failed", "error", err)
		}
		logger.Info("player created", "id", p.ID, "name", p.Name)
		id = p.ID
	}

	token, err := service.GenerateJWT(id)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Println(token)
}
