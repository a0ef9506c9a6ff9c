package server

import (
	"context"
	"log"
)

// reconcileDisconnect discovers every room the departed connection belonged
// to and removes it. Membership is a scan over all live room records, not an
// indexed lookup.
func (s *Server) reconcileDisconnect(ctx context.Context, c *wsConn) {
	err := s.store.ScanRooms(ctx, func(room *Room) error {
		_, isPlayer := room.Players[c.id]
		_, isVoter := room.Voters[c.id]
		if !isPlayer && !isVoter {
			return nil
		}
		s.removeParticipant(ctx, room.ID, c.id)
		return nil
	})
	if err != nil {
		log.Printf("disconnect scan failed conn_id=%s error=%v", c.id, err)
	}
}

func (s *Server) removeParticipant(ctx context.Context, roomID, participantID string) {
	var events []outboundEvent
	deleteRoom := false
	_, err := s.store.UpdateRoom(ctx, roomID, func(room *Room) error {
		var removed bool
		events, removed, deleteRoom = removeFromRoom(room, participantID)
		if !removed || deleteRoom {
			// Nothing to persist: either the participant was already gone,
			// or the now-empty room is deleted below instead.
			return errNoChange
		}
		return nil
	})
	if err != nil {
		log.Printf("remove participant failed room_id=%s conn_id=%s error=%v", roomID, participantID, err)
		return
	}
	if deleteRoom {
		if err := s.store.DeleteRoom(ctx, roomID); err != nil {
			log.Printf("delete room failed room_id=%s error=%v", roomID, err)
			return
		}
		log.Printf("room deleted room_id=%s reason=empty", roomID)
	}
	s.emit(roomID, nil, events)
	log.Printf("participant left room_id=%s conn_id=%s", roomID, participantID)
}
