package server

import (
	"context"
	"errors"
	"log"
	"time"
)

// schedulePhaseTimer arms the one-shot deferred transition for a timed phase.
// A previous timer for the room is replaced, but replacement is bookkeeping
// only: the guard inside the transition, not the timer, is what makes a late
// firing harmless.
func (s *Server) schedulePhaseTimer(roomID, phase string, duration time.Duration) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if existing, ok := s.timers[roomID]; ok {
		existing.Stop()
	}
	s.timers[roomID] = time.AfterFunc(duration, func() {
		switch phase {
		case stateDrawing:
			s.advanceToVoting(roomID)
		case stateVoting:
			s.finishRound(roomID)
		}
	})
}

// advanceToVoting is the drawing timer's target. The enterVoting guard turns
// a stale firing into a no-op with nothing persisted or broadcast.
func (s *Server) advanceToVoting(roomID string) {
	ctx := context.Background()
	var events []outboundEvent
	_, err := s.store.UpdateRoom(ctx, roomID, func(room *Room) error {
		var ok bool
		events, ok = enterVoting(room, s.cfg.VoteDuration())
		if !ok {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrRoomNotFound) {
			log.Printf("voting transition failed room_id=%s error=%v", roomID, err)
		}
		return
	}
	if len(events) == 0 {
		return
	}
	s.emit(roomID, nil, events)
	s.schedulePhaseTimer(roomID, stateVoting, s.cfg.VoteDuration())
	log.Printf("voting started room_id=%s", roomID)
}

// finishRound is the voting timer's target; the endGame guard absorbs the
// race against a unanimous vote that already ended the round.
func (s *Server) finishRound(roomID string) {
	ctx := context.Background()
	var events []outboundEvent
	_, err := s.store.UpdateRoom(ctx, roomID, func(room *Room) error {
		events = endGame(room)
		if len(events) == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrRoomNotFound) {
			log.Printf("end game failed room_id=%s error=%v", roomID, err)
		}
		return
	}
	if len(events) == 0 {
		return
	}
	s.emit(roomID, nil, events)
	log.Printf("game ended room_id=%s reason=timeout", roomID)
}

// RearmTimers re-arms phase timers for rooms persisted mid-round. Pending
// timers are process-local, so a restart would otherwise leave in-flight
// rooms stuck until their record expires. Overdue timers fire immediately.
func (s *Server) RearmTimers(ctx context.Context) error {
	now := nowMillis()
	return s.store.ScanRooms(ctx, func(room *Room) error {
		switch room.State {
		case stateDrawing:
			if room.GameStartTime == nil {
				return nil
			}
			remaining := s.cfg.DrawDuration() - time.Duration(now-*room.GameStartTime)*time.Millisecond
			s.schedulePhaseTimer(room.ID, stateDrawing, remaining)
			log.Printf("timer re-armed room_id=%s phase=%s remaining=%s", room.ID, room.State, remaining)
		case stateVoting:
			if room.VotingStartTime == nil {
				return nil
			}
			remaining := s.cfg.VoteDuration() - time.Duration(now-*room.VotingStartTime)*time.Millisecond
			s.schedulePhaseTimer(room.ID, stateVoting, remaining)
			log.Printf("timer re-armed room_id=%s phase=%s remaining=%s", room.ID, room.State, remaining)
		}
		return nil
	})
}
