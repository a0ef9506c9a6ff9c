package server

import (
	"net/http"
	"sync"
	"time"

	"draw-duel/internal/config"
)

type Server struct {
	store    *RoomStore
	hub      *wsHub
	cfg      config.Config
	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

func New(store *RoomStore, cfg config.Config) *Server {
	return &Server{
		store:  store,
		hub:    newWSHub(),
		cfg:    cfg,
		timers: make(map[string]*time.Timer),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/cron/health", s.handleCronHealth)
	mux.HandleFunc("GET /api/rooms/{roomId}", s.handleGetRoom)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return s.corsMiddleware(mux)
}
