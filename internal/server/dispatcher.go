package server

import (
	"context"
	"encoding/json"
	"log"
)

type createRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type joinPlayerRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type joinVoterRequest struct {
	RoomID    string `json:"roomId"`
	VoterName string `json:"voterName"`
}

type playerReadyRequest struct {
	RoomID string `json:"roomId"`
}

type drawingDataRequest struct {
	RoomID      string          `json:"roomId"`
	DrawingData json.RawMessage `json:"drawingData"`
}

type voteRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type roomInfoRequest struct {
	RoomID string `json:"roomId"`
}

func (s *Server) dispatch(ctx context.Context, c *wsConn, msg inboundMessage) {
	switch msg.Type {
	case "create_room":
		var req createRoomRequest
		if !s.decode(c, msg.Data, &req, "failed to create room") {
			return
		}
		s.handleCreateRoom(ctx, c, req)
	case "join_room_as_player":
		var req joinPlayerRequest
		if !s.decode(c, msg.Data, &req, "failed to join room") {
			return
		}
		s.handleJoinAsPlayer(ctx, c, req)
	case "join_room_as_voter":
		var req joinVoterRequest
		if !s.decode(c, msg.Data, &req, "failed to join room as voter") {
			return
		}
		s.handleJoinAsVoter(ctx, c, req)
	case "player_ready":
		var req playerReadyRequest
		if !s.decode(c, msg.Data, &req, "failed to set ready status") {
			return
		}
		s.handlePlayerReady(ctx, c, req)
	case "drawing_data":
		var req drawingDataRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			log.Printf("bad drawing payload conn_id=%s error=%v", c.id, err)
			return
		}
		s.handleDrawingData(ctx, c, req)
	case "vote":
		var req voteRequest
		if !s.decode(c, msg.Data, &req, "failed to cast vote") {
			return
		}
		s.handleVote(ctx, c, req)
	case "get_room_info":
		var req roomInfoRequest
		if !s.decode(c, msg.Data, &req, "failed to get room info") {
			return
		}
		s.handleGetRoomInfo(ctx, c, req)
	default:
		log.Printf("ws unknown event conn_id=%s type=%s", c.id, msg.Type)
	}
}

func (s *Server) decode(c *wsConn, raw json.RawMessage, dest any, generic string) bool {
	if err := json.Unmarshal(raw, dest); err != nil {
		s.reportError(c, err, generic)
		return false
	}
	return true
}

// reportError surfaces expected outcomes verbatim to the originating
// connection only; anything else is logged and masked behind a generic
// message. Neither path terminates the connection.
func (s *Server) reportError(c *wsConn, err error, generic string) {
	message := generic
	if expectedError(err) {
		message = err.Error()
	} else {
		log.Printf("handler failed conn_id=%s error=%v", c.id, err)
	}
	_ = c.send(wsMessage{Type: evtError, Data: errorData{Message: message}})
}

func (s *Server) emit(roomID string, sender *wsConn, events []outboundEvent) {
	for _, event := range events {
		msg := wsMessage{Type: event.Type, Data: event.Data}
		switch event.Scope {
		case scopeSender:
			if sender != nil {
				_ = sender.send(msg)
			}
		case scopeOthers:
			s.hub.BroadcastExcept(roomID, sender, msg)
		default:
			s.hub.Broadcast(roomID, msg)
		}
	}
}

func (s *Server) handleCreateRoom(ctx context.Context, c *wsConn, req createRoomRequest) {
	roomID := newRoomCode()
	room := newRoom(roomID, c.id, req.PlayerName)
	if err := s.store.SaveRoom(ctx, room); err != nil {
		s.reportError(c, err, "failed to create room")
		return
	}
	s.hub.Join(roomID, c)
	_ = c.send(wsMessage{Type: evtRoomCreated, Data: roomCreatedData{
		RoomID: roomID,
		Room:   snapshotRoom(room),
	}})
	log.Printf("room created room_id=%s creator=%s name=%s", roomID, c.id, req.PlayerName)
}

func (s *Server) handleJoinAsPlayer(ctx context.Context, c *wsConn, req joinPlayerRequest) {
	var events []outboundEvent
	_, err := s.store.UpdateRoom(ctx, req.RoomID, func(room *Room) error {
		var err error
		events, err = joinAsPlayer(room, c.id, req.PlayerName, s.cfg.MaxPlayers)
		return err
	})
	if err != nil {
		s.reportError(c, err, "failed to join room")
		return
	}
	s.hub.Join(req.RoomID, c)
	s.emit(req.RoomID, c, events)
	log.Printf("player joined room_id=%s player_id=%s name=%s", req.RoomID, c.id, req.PlayerName)
}

func (s *Server) handleJoinAsVoter(ctx context.Context, c *wsConn, req joinVoterRequest) {
	var events []outboundEvent
	_, err := s.store.UpdateRoom(ctx, req.RoomID, func(room *Room) error {
		events = joinAsVoter(room, c.id, req.VoterName)
		return nil
	})
	if err != nil {
		s.reportError(c, err, "failed to join room as voter")
		return
	}
	s.hub.Join(req.RoomID, c)
	s.emit(req.RoomID, c, events)
	log.Printf("voter joined room_id=%s voter_id=%s name=%s", req.RoomID, c.id, req.VoterName)
}

func (s *Server) handlePlayerReady(ctx context.Context, c *wsConn, req playerReadyRequest) {
	var events []outboundEvent
	started := false
	room, err := s.store.UpdateRoom(ctx, req.RoomID, func(room *Room) error {
		var err error
		events, started, err = setReady(room, c.id, s.cfg.MaxPlayers, s.cfg.DrawDuration())
		return err
	})
	if err != nil {
		s.reportError(c, err, "failed to set ready status")
		return
	}
	s.emit(req.RoomID, c, events)
	if started {
		s.schedulePhaseTimer(req.RoomID, stateDrawing, s.cfg.DrawDuration())
		log.Printf("game started room_id=%s prompt=%s", req.RoomID, room.CurrentPrompt)
	}
}

func (s *Server) handleDrawingData(ctx context.Context, c *wsConn, req drawingDataRequest) {
	var events []outboundEvent
	_, err := s.store.UpdateRoom(ctx, req.RoomID, func(room *Room) error {
		var stored bool
		events, stored = submitDrawing(room, c.id, req.DrawingData)
		if !stored {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		// Late strokes against a missing or advanced room are dropped, not
		// errored; only real faults get logged.
		if !expectedError(err) {
			log.Printf("drawing update failed room_id=%s error=%v", req.RoomID, err)
		}
		return
	}
	s.emit(req.RoomID, c, events)
}

func (s *Server) handleVote(ctx context.Context, c *wsConn, req voteRequest) {
	var events []outboundEvent
	ended := false
	_, err := s.store.UpdateRoom(ctx, req.RoomID, func(room *Room) error {
		var err error
		events, ended, err = castVote(room, c.id, req.PlayerID)
		return err
	})
	if err != nil {
		s.reportError(c, err, "failed to cast vote")
		return
	}
	s.emit(req.RoomID, c, events)
	log.Printf("vote cast room_id=%s voter_id=%s player_id=%s", req.RoomID, c.id, req.PlayerID)
	if ended {
		log.Printf("game ended room_id=%s reason=all_voted", req.RoomID)
	}
}

func (s *Server) handleGetRoomInfo(ctx context.Context, c *wsConn, req roomInfoRequest) {
	room, err := s.store.GetRoom(ctx, req.RoomID)
	if err != nil {
		s.reportError(c, err, "failed to get room info")
		return
	}
	_ = c.send(wsMessage{Type: evtRoomInfo, Data: roomInfoData{Room: snapshotRoom(room)}})
}
