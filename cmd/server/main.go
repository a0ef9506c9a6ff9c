package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"draw-duel/internal/config"
	"draw-duel/internal/server"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg := config.Load()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	log.Printf("redis connected addr=%s", opts.Addr)

	srv := server.New(server.NewRoomStore(client, cfg.RoomTTL()), cfg)
	if err := srv.RearmTimers(ctx); err != nil {
		log.Printf("timer re-arm failed error=%v", err)
	}

	if cfg.ServerURL != "" {
		server.StartKeepAlive(cfg.ServerURL, cfg.KeepAliveInterval())
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Printf("draw-duel server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
