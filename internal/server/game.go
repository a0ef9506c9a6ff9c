package server

import (
	"encoding/json"
	"sort"
	"time"
)

// The transitions below are pure: they take the current room plus event
// arguments, mutate the local copy, and return the events to broadcast. The
// dispatcher owns store round-trips and delivery.

func newRoom(roomID, creatorID, creatorName string) *Room {
	return &Room{
		ID:      roomID,
		Creator: creatorID,
		State:   stateWaiting,
		Players: map[string]*Player{
			creatorID: newPlayer(creatorName),
		},
		Voters:      map[string]*Voter{},
		Drawings:    map[string]json.RawMessage{},
		Votes:       map[string]int{},
		GameHistory: []RoundResult{},
	}
}

func joinAsPlayer(room *Room, participantID, name string, maxPlayers int) ([]outboundEvent, error) {
	if isRoomFull(room, maxPlayers) {
		return nil, ErrRoomFull
	}
	if room.State != stateWaiting {
		return nil, ErrGameInProgress
	}
	room.Players[participantID] = newPlayer(name)
	return []outboundEvent{
		{Scope: scopeRoom, Type: evtPlayerJoined, Data: playerJoinedData{
			PlayerID:   participantID,
			PlayerName: name,
			Room:       snapshotRoom(room),
		}},
		{Scope: scopeSender, Type: evtJoinedRoom, Data: joinedRoomData{
			RoomID: room.ID,
			Role:   rolePlayer,
			Room:   snapshotRoom(room),
		}},
	}, nil
}

// joinAsVoter admits voters in any phase with no capacity check. The
// asymmetry with player join is intentional: the audience may grow mid-round.
func joinAsVoter(room *Room, participantID, name string) []outboundEvent {
	room.Voters[participantID] = newVoter(name)
	return []outboundEvent{
		{Scope: scopeRoom, Type: evtVoterJoined, Data: voterJoinedData{
			VoterID:   participantID,
			VoterName: name,
			Room:      snapshotRoom(room),
		}},
		{Scope: scopeSender, Type: evtJoinedRoom, Data: joinedRoomData{
			RoomID: room.ID,
			Role:   roleVoter,
			Room:   snapshotRoom(room),
		}},
	}
}

func allPlayersReady(room *Room, maxPlayers int) bool {
	if playerCount(room) != maxPlayers {
		return false
	}
	for _, player := range room.Players {
		if player.Role == rolePlayer && !player.Ready {
			return false
		}
	}
	return true
}

// setReady marks the player ready and, once every seat is filled and ready,
// starts the round. started tells the dispatcher to arm the drawing timer.
func setReady(room *Room, participantID string, maxPlayers int, drawLimit time.Duration) (events []outboundEvent, started bool, err error) {
	player, ok := room.Players[participantID]
	if !ok {
		return nil, false, ErrInvalidParticipant
	}
	player.Ready = true

	allReady := allPlayersReady(room, maxPlayers)
	events = append(events, outboundEvent{Scope: scopeRoom, Type: evtPlayerReadyStatus, Data: playerReadyStatusData{
		PlayerID: participantID,
		Ready:    true,
		AllReady: allReady,
	}})
	if !allReady {
		return events, false, nil
	}

	room.State = stateDrawing
	room.CurrentPrompt = randomPrompt()
	now := nowMillis()
	room.GameStartTime = &now
	room.Drawings = map[string]json.RawMessage{}
	events = append(events, outboundEvent{Scope: scopeRoom, Type: evtGameStarted, Data: gameStartedData{
		Prompt:        room.CurrentPrompt,
		TimeLimit:     drawLimit.Milliseconds(),
		GameStartTime: now,
	}})
	return events, true, nil
}

// submitDrawing stores the opaque payload and relays it to everyone else in
// the room. Outside the drawing phase, or from a non-player, it is silently
// dropped: late strokes during a phase change are legitimate, not errors.
func submitDrawing(room *Room, participantID string, payload json.RawMessage) ([]outboundEvent, bool) {
	if room.State != stateDrawing {
		return nil, false
	}
	if _, ok := room.Players[participantID]; !ok {
		return nil, false
	}
	room.Drawings[participantID] = payload
	return []outboundEvent{
		{Scope: scopeOthers, Type: evtOpponentDrawing, Data: opponentDrawingData{
			PlayerID:    participantID,
			DrawingData: payload,
		}},
	}, true
}

// castVote records one vote from a voter. When the last outstanding voter
// votes, the round ends in the same transaction.
func castVote(room *Room, voterID, targetPlayerID string) (events []outboundEvent, ended bool, err error) {
	voter, ok := room.Voters[voterID]
	if room.State != stateVoting || !ok {
		return nil, false, ErrInvalidVote
	}
	if _, ok := room.Players[targetPlayerID]; !ok {
		return nil, false, ErrInvalidVote
	}
	if voter.HasVoted {
		return nil, false, ErrAlreadyVoted
	}
	voter.HasVoted = true
	room.Votes[targetPlayerID]++
	events = append(events, outboundEvent{Scope: scopeRoom, Type: evtVoteCast, Data: voteCastData{
		VoterID:    voterID,
		PlayerID:   targetPlayerID,
		TotalVotes: room.Votes[targetPlayerID],
	}})

	for _, v := range room.Voters {
		if !v.HasVoted {
			return events, false, nil
		}
	}
	if voterCount(room) == 0 {
		return events, false, nil
	}
	events = append(events, endGame(room)...)
	return events, true, nil
}

// enterVoting moves the room from drawing to voting. The guard makes a stale
// drawing timer a no-op when the round already advanced or ended.
func enterVoting(room *Room, voteLimit time.Duration) ([]outboundEvent, bool) {
	if room.State != stateDrawing {
		return nil, false
	}
	room.State = stateVoting
	now := nowMillis()
	room.VotingStartTime = &now
	room.Votes = map[string]int{}
	for _, voter := range room.Voters {
		voter.HasVoted = false
	}

	drawings := make([]playerDrawing, 0, len(room.Players))
	for playerID, player := range room.Players {
		drawing := room.Drawings[playerID]
		if drawing == nil {
			drawing = emptyDrawing()
		}
		drawings = append(drawings, playerDrawing{
			PlayerID:   playerID,
			PlayerName: player.Name,
			Drawing:    drawing,
		})
	}
	return []outboundEvent{
		{Scope: scopeRoom, Type: evtVotingStarted, Data: votingStartedData{
			TimeLimit:       voteLimit.Milliseconds(),
			VotingStartTime: now,
			PlayerDrawings:  drawings,
			Prompt:          room.CurrentPrompt,
		}},
	}, true
}

// endGame scores the round, records it, and resets the room to waiting. A
// round is only scored out of the voting phase, so a stale voting timer
// firing after a unanimous vote already ended the round does nothing.
func endGame(room *Room) []outboundEvent {
	if room.State != stateVoting {
		return nil
	}
	// finished is transient; the same transaction collapses back to waiting.
	room.State = stateFinished

	results := make([]PlayerResult, 0, len(room.Players))
	for playerID, player := range room.Players {
		drawing := room.Drawings[playerID]
		if drawing == nil {
			drawing = emptyDrawing()
		}
		results = append(results, PlayerResult{
			PlayerID:   playerID,
			PlayerName: player.Name,
			Votes:      room.Votes[playerID],
			Drawing:    drawing,
		})
	}
	// Stable on votes only: ties keep whatever order the players map yielded.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Votes > results[j].Votes
	})
	var winner *PlayerResult
	if len(results) > 0 {
		winner = &results[0]
	}

	prompt := room.CurrentPrompt
	room.GameHistory = append(room.GameHistory, RoundResult{
		Prompt:    prompt,
		Results:   results,
		Timestamp: nowMillis(),
	})
	if len(room.GameHistory) > maxHistoryLength {
		room.GameHistory = room.GameHistory[len(room.GameHistory)-maxHistoryLength:]
	}

	for _, player := range room.Players {
		player.Ready = false
		player.Votes = 0
	}
	room.State = stateWaiting
	room.CurrentPrompt = ""
	room.GameStartTime = nil
	room.VotingStartTime = nil
	room.Drawings = map[string]json.RawMessage{}
	room.Votes = map[string]int{}

	return []outboundEvent{
		{Scope: scopeRoom, Type: evtGameEnded, Data: gameEndedData{
			Results: results,
			Winner:  winner,
			Prompt:  prompt,
		}},
	}
}

// removeFromRoom strips a departed participant from whichever roles applied.
// empty reports that the room has no players and no voters left and should
// be deleted rather than persisted.
func removeFromRoom(room *Room, participantID string) (events []outboundEvent, removed, empty bool) {
	if _, ok := room.Players[participantID]; ok {
		delete(room.Players, participantID)
		removed = true
		events = append(events, outboundEvent{Scope: scopeRoom, Type: evtPlayerLeft, Data: playerLeftData{
			PlayerID:    participantID,
			PlayerCount: playerCount(room),
		}})
	}
	if _, ok := room.Voters[participantID]; ok {
		delete(room.Voters, participantID)
		removed = true
		events = append(events, outboundEvent{Scope: scopeRoom, Type: evtVoterLeft, Data: voterLeftData{
			VoterID:    participantID,
			VoterCount: voterCount(room),
		}})
	}
	if !removed {
		return nil, false, false
	}
	if playerCount(room) == 0 && voterCount(room) == 0 {
		return events, true, true
	}
	if room.Creator == participantID && playerCount(room) > 0 {
		for playerID := range room.Players {
			room.Creator = playerID
			break
		}
		events = append(events, outboundEvent{Scope: scopeRoom, Type: evtNewCreator, Data: newCreatorData{
			CreatorID: room.Creator,
		}})
	}
	return events, true, false
}
