package server

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"
)

// handleGetRoom is the read-only lookup for frontends polling a shared code.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	room, err := s.store.GetRoom(r.Context(), roomID)
	if errors.Is(err, ErrRoomNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "Room not found",
		})
		return
	}
	if err != nil {
		log.Printf("room lookup failed room_id=%s error=%v", roomID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Server error",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"room":    snapshotRoom(room),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleCronHealth is the lightweight target for scheduled keep-alive pings.
func (s *Server) handleCronHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		// Websocket upgrades bypass the remaining CORS handling.
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
