package main

import (
	"context"
	"log"
	"net/http"

	"github.com/ilka-yus/task15/internal/auth"
	"github.com/ilka-yus/task15/internal/cache"
	"github.com/ilka-yus/task15/internal/config"
	"github.com/ilka-yus/task15/internal/db"
	"github.com/ilka-yus/task15/internal/handlers"
	"github.com/ilka-yus/task15/internal/service"
	"github.com/ilka-yus/task15/internal/store"
	"github.com/ilka-yus/task15/internal/tasks"
	"github.com/ilka-yus/task15/internal/ws"
)

func main() {
	cfg := config.LoadConfig()

	dbConn, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer dbConn.Close()

	notesCache, err := cache.New(cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer notesCache.Close()

	tokenService, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenExpiry)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	userStore := store.NewUserStore(dbConn)
	noteStore := store.NewNoteStore(dbConn)

	authn := auth.NewAuthenticator(userStore, tokenService)
	guard := auth.NewGuard(tokenService, userStore)
	noteService := service.NewNoteService(noteStore, notesCache)

	queue := tasks.NewQueue(notesCache.Client())
	worker := tasks.NewWorker(notesCache.Client())
	worker.Register(tasks.TaskSendMockEmail, tasks.SendMockEmail)
	go worker.Run(context.Background())

	hub := ws.NewHub()
	go hub.Run(context.Background())

	r := handlers.NewRouter(authn, guard, userStore, noteService, queue, hub)

	log.Printf("Starting server on port %s...", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
