package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, eventType string, data any) {
	t.Helper()
	if err := conn.WriteJSON(wsMessage{Type: eventType, Data: data}); err != nil {
		t.Fatalf("ws write %s: %v", eventType, err)
	}
}

// readEvent reads the next envelope and fails the test if it is not the
// expected type. Handlers emit in a fixed order per connection, so tests can
// assert the exact sequence.
func readEvent(t *testing.T, conn *websocket.Conn, wantType string) json.RawMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg inboundMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ws read (want %s): %v", wantType, err)
	}
	if msg.Type != wantType {
		t.Fatalf("expected event %s, got %s: %s", wantType, msg.Type, msg.Data)
	}
	return msg.Data
}

func decodeEvent(t *testing.T, raw json.RawMessage, dest any) {
	t.Helper()
	if err := json.Unmarshal(raw, dest); err != nil {
		t.Fatalf("decode event payload: %v", err)
	}
}

func createRoom(t *testing.T, conn *websocket.Conn, playerName string) (roomID, creatorID string) {
	t.Helper()
	sendEvent(t, conn, "create_room", createRoomRequest{PlayerName: playerName})
	var created struct {
		RoomID string `json:"roomId"`
		Room   struct {
			Creator string `json:"creator"`
		} `json:"room"`
	}
	decodeEvent(t, readEvent(t, conn, evtRoomCreated), &created)
	if created.RoomID == "" || created.Room.Creator == "" {
		t.Fatalf("incomplete room_created payload: %+v", created)
	}
	return created.RoomID, created.Room.Creator
}

func TestFullRoundOverWebsocket(t *testing.T) {
	srv, ts := newGameServer(t)

	p1 := dialWS(t, ts.URL)
	roomID, p1ID := createRoom(t, p1, "Alice")
	if len(roomID) != 8 || roomID != strings.ToUpper(roomID) {
		t.Fatalf("unexpected room code format: %q", roomID)
	}

	p2 := dialWS(t, ts.URL)
	sendEvent(t, p2, "join_room_as_player", joinPlayerRequest{RoomID: roomID, PlayerName: "Bob"})
	var p2Joined struct {
		Role string `json:"role"`
		Room struct {
			Players map[string]struct {
				Name string `json:"name"`
			} `json:"players"`
			PlayerCount int `json:"playerCount"`
		} `json:"room"`
	}
	readEvent(t, p2, evtPlayerJoined)
	decodeEvent(t, readEvent(t, p2, evtJoinedRoom), &p2Joined)
	if p2Joined.Role != rolePlayer || p2Joined.Room.PlayerCount != 2 {
		t.Fatalf("unexpected joined_room payload: %+v", p2Joined)
	}
	var p2ID string
	for id := range p2Joined.Room.Players {
		if id != p1ID {
			p2ID = id
		}
	}
	if p2ID == "" {
		t.Fatal("second player missing from snapshot")
	}
	readEvent(t, p1, evtPlayerJoined)

	// First ready does not start the round.
	sendEvent(t, p1, "player_ready", playerReadyRequest{RoomID: roomID})
	var readyStatus struct {
		AllReady bool `json:"allReady"`
	}
	decodeEvent(t, readEvent(t, p1, evtPlayerReadyStatus), &readyStatus)
	if readyStatus.AllReady {
		t.Fatal("allReady with one player ready")
	}
	readEvent(t, p2, evtPlayerReadyStatus)

	sendEvent(t, p2, "player_ready", playerReadyRequest{RoomID: roomID})
	readEvent(t, p1, evtPlayerReadyStatus)
	readEvent(t, p2, evtPlayerReadyStatus)

	var started gameStartedData
	decodeEvent(t, readEvent(t, p1, evtGameStarted), &started)
	readEvent(t, p2, evtGameStarted)
	if started.Prompt == "" {
		t.Fatal("round started without a prompt")
	}
	if started.TimeLimit != 120000 {
		t.Fatalf("expected 120000ms drawing limit, got %d", started.TimeLimit)
	}

	// Strokes relay to the opponent, never back to the sender.
	sendEvent(t, p1, "drawing_data", drawingDataRequest{
		RoomID:      roomID,
		DrawingData: json.RawMessage(`[[1,2],[3,4]]`),
	})
	var stroke opponentDrawingData
	decodeEvent(t, readEvent(t, p2, evtOpponentDrawing), &stroke)
	if stroke.PlayerID != p1ID {
		t.Fatalf("stroke attributed to %s, want %s", stroke.PlayerID, p1ID)
	}

	voter := dialWS(t, ts.URL)
	sendEvent(t, voter, "join_room_as_voter", joinVoterRequest{RoomID: roomID, VoterName: "Cara"})
	readEvent(t, voter, evtVoterJoined)
	readEvent(t, voter, evtJoinedRoom)
	// p1's next event being voter_joined proves its own stroke was not echoed.
	readEvent(t, p1, evtVoterJoined)
	readEvent(t, p2, evtVoterJoined)

	// Advance the phase directly instead of waiting out the drawing timer.
	srv.advanceToVoting(roomID)
	var voting votingStartedData
	decodeEvent(t, readEvent(t, voter, evtVotingStarted), &voting)
	readEvent(t, p1, evtVotingStarted)
	readEvent(t, p2, evtVotingStarted)
	if voting.TimeLimit != 30000 {
		t.Fatalf("expected 30000ms voting limit, got %d", voting.TimeLimit)
	}
	if len(voting.PlayerDrawings) != 2 {
		t.Fatalf("expected both drawings bundled, got %d", len(voting.PlayerDrawings))
	}
	if voting.Prompt != started.Prompt {
		t.Fatalf("voting prompt %q does not match round prompt %q", voting.Prompt, started.Prompt)
	}

	// The only voter voting ends the round in the same transaction.
	sendEvent(t, voter, "vote", voteRequest{RoomID: roomID, PlayerID: p1ID})
	var cast voteCastData
	decodeEvent(t, readEvent(t, voter, evtVoteCast), &cast)
	if cast.PlayerID != p1ID || cast.TotalVotes != 1 {
		t.Fatalf("unexpected vote_cast payload: %+v", cast)
	}
	var ended gameEndedData
	decodeEvent(t, readEvent(t, voter, evtGameEnded), &ended)
	readEvent(t, p1, evtVoteCast)
	readEvent(t, p1, evtGameEnded)
	readEvent(t, p2, evtVoteCast)
	readEvent(t, p2, evtGameEnded)
	if ended.Winner == nil || ended.Winner.PlayerID != p1ID {
		t.Fatalf("unexpected winner: %+v", ended.Winner)
	}
	if ended.Prompt != started.Prompt {
		t.Fatalf("scored prompt %q does not match round prompt %q", ended.Prompt, started.Prompt)
	}

	room, err := srv.store.GetRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if room.State != stateWaiting {
		t.Fatalf("room not reset, state=%s", room.State)
	}
	if len(room.GameHistory) != 1 {
		t.Fatalf("expected one history entry, got %d", len(room.GameHistory))
	}
}

func TestJoinMissingRoom(t *testing.T) {
	_, ts := newGameServer(t)
	conn := dialWS(t, ts.URL)
	sendEvent(t, conn, "join_room_as_player", joinPlayerRequest{RoomID: "NOPE", PlayerName: "Bob"})
	var fail errorData
	decodeEvent(t, readEvent(t, conn, evtError), &fail)
	if fail.Message != ErrRoomNotFound.Error() {
		t.Fatalf("unexpected error message: %q", fail.Message)
	}
}

func TestThirdPlayerRejected(t *testing.T) {
	_, ts := newGameServer(t)
	p1 := dialWS(t, ts.URL)
	roomID, _ := createRoom(t, p1, "Alice")

	p2 := dialWS(t, ts.URL)
	sendEvent(t, p2, "join_room_as_player", joinPlayerRequest{RoomID: roomID, PlayerName: "Bob"})
	readEvent(t, p2, evtPlayerJoined)
	readEvent(t, p2, evtJoinedRoom)

	p3 := dialWS(t, ts.URL)
	sendEvent(t, p3, "join_room_as_player", joinPlayerRequest{RoomID: roomID, PlayerName: "Eve"})
	var fail errorData
	decodeEvent(t, readEvent(t, p3, evtError), &fail)
	if fail.Message != ErrRoomFull.Error() {
		t.Fatalf("unexpected error message: %q", fail.Message)
	}
}

func TestVoteOutsideVotingPhase(t *testing.T) {
	_, ts := newGameServer(t)
	p1 := dialWS(t, ts.URL)
	roomID, p1ID := createRoom(t, p1, "Alice")

	voter := dialWS(t, ts.URL)
	sendEvent(t, voter, "join_room_as_voter", joinVoterRequest{RoomID: roomID, VoterName: "Cara"})
	readEvent(t, voter, evtVoterJoined)
	readEvent(t, voter, evtJoinedRoom)

	sendEvent(t, voter, "vote", voteRequest{RoomID: roomID, PlayerID: p1ID})
	var fail errorData
	decodeEvent(t, readEvent(t, voter, evtError), &fail)
	if fail.Message != ErrInvalidVote.Error() {
		t.Fatalf("unexpected error message: %q", fail.Message)
	}
}

func TestGetRoomInfoEvent(t *testing.T) {
	_, ts := newGameServer(t)
	p1 := dialWS(t, ts.URL)
	roomID, _ := createRoom(t, p1, "Alice")

	sendEvent(t, p1, "get_room_info", roomInfoRequest{RoomID: roomID})
	var info struct {
		Room struct {
			ID          string `json:"id"`
			State       string `json:"state"`
			PlayerCount int    `json:"playerCount"`
			VoterCount  int    `json:"voterCount"`
		} `json:"room"`
	}
	decodeEvent(t, readEvent(t, p1, evtRoomInfo), &info)
	if info.Room.ID != roomID || info.Room.State != stateWaiting {
		t.Fatalf("unexpected room_info payload: %+v", info.Room)
	}
	if info.Room.PlayerCount != 1 || info.Room.VoterCount != 0 {
		t.Fatalf("unexpected counts: %+v", info.Room)
	}
}

func TestDisconnectDeletesEmptyRoom(t *testing.T) {
	srv, ts := newGameServer(t)
	p1 := dialWS(t, ts.URL)
	roomID, _ := createRoom(t, p1, "Alice")

	_ = p1.Close()
	waitFor(t, 2*time.Second, func() bool {
		_, err := srv.store.GetRoom(context.Background(), roomID)
		return errors.Is(err, ErrRoomNotFound)
	})
}

func TestDisconnectNotifiesRemainingPlayer(t *testing.T) {
	srv, ts := newGameServer(t)
	p1 := dialWS(t, ts.URL)
	roomID, p1ID := createRoom(t, p1, "Alice")

	p2 := dialWS(t, ts.URL)
	sendEvent(t, p2, "join_room_as_player", joinPlayerRequest{RoomID: roomID, PlayerName: "Bob"})
	readEvent(t, p2, evtPlayerJoined)
	readEvent(t, p2, evtJoinedRoom)

	_ = p1.Close()

	var left playerLeftData
	decodeEvent(t, readEvent(t, p2, evtPlayerLeft), &left)
	if left.PlayerID != p1ID || left.PlayerCount != 1 {
		t.Fatalf("unexpected player_left payload: %+v", left)
	}
	var promoted newCreatorData
	decodeEvent(t, readEvent(t, p2, evtNewCreator), &promoted)
	if promoted.CreatorID == p1ID || promoted.CreatorID == "" {
		t.Fatalf("creator not reassigned: %+v", promoted)
	}

	room, err := srv.store.GetRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if room.Creator != promoted.CreatorID {
		t.Fatalf("persisted creator %s does not match broadcast %s", room.Creator, promoted.CreatorID)
	}
}
