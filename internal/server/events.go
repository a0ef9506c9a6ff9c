package server

import "encoding/json"

// Outbound event names on the realtime channel.
const (
	evtRoomCreated       = "room_created"
	evtPlayerJoined      = "player_joined"
	evtJoinedRoom        = "joined_room"
	evtVoterJoined       = "voter_joined"
	evtPlayerReadyStatus = "player_ready_status"
	evtGameStarted       = "game_started"
	evtOpponentDrawing   = "opponent_drawing"
	evtVoteCast          = "vote_cast"
	evtVotingStarted     = "voting_started"
	evtGameEnded         = "game_ended"
	evtRoomInfo          = "room_info"
	evtPlayerLeft        = "player_left"
	evtVoterLeft         = "voter_left"
	evtNewCreator        = "new_creator"
	evtError             = "error"
)

type eventScope int

const (
	// scopeRoom reaches every connection joined to the room.
	scopeRoom eventScope = iota
	// scopeSender reaches only the originating connection.
	scopeSender
	// scopeOthers reaches the room except the originating connection.
	scopeOthers
)

// outboundEvent is what a state-machine transition asks the dispatcher to
// broadcast. Transitions never touch the network themselves.
type outboundEvent struct {
	Scope eventScope
	Type  string
	Data  any
}

// roomSnapshot is the room entity augmented with the computed participant
// counts carried by join/info payloads.
type roomSnapshot struct {
	*Room
	PlayerCount int `json:"playerCount"`
	VoterCount  int `json:"voterCount"`
}

func snapshotRoom(room *Room) roomSnapshot {
	return roomSnapshot{
		Room:        room,
		PlayerCount: playerCount(room),
		VoterCount:  voterCount(room),
	}
}

type errorData struct {
	Message string `json:"message"`
}

type roomCreatedData struct {
	RoomID string       `json:"roomId"`
	Room   roomSnapshot `json:"room"`
}

type playerJoinedData struct {
	PlayerID   string       `json:"playerId"`
	PlayerName string       `json:"playerName"`
	Room       roomSnapshot `json:"room"`
}

type voterJoinedData struct {
	VoterID   string       `json:"voterId"`
	VoterName string       `json:"voterName"`
	Room      roomSnapshot `json:"room"`
}

type joinedRoomData struct {
	RoomID string       `json:"roomId"`
	Role   string       `json:"role"`
	Room   roomSnapshot `json:"room"`
}

type playerReadyStatusData struct {
	PlayerID string `json:"playerId"`
	Ready    bool   `json:"ready"`
	AllReady bool   `json:"allReady"`
}

type gameStartedData struct {
	Prompt        string `json:"prompt"`
	TimeLimit     int64  `json:"timeLimit"`
	GameStartTime int64  `json:"gameStartTime"`
}

type opponentDrawingData struct {
	PlayerID    string          `json:"playerId"`
	DrawingData json.RawMessage `json:"drawingData"`
}

type voteCastData struct {
	VoterID    string `json:"voterId"`
	PlayerID   string `json:"playerId"`
	TotalVotes int    `json:"totalVotes"`
}

type playerDrawing struct {
	PlayerID   string          `json:"playerId"`
	PlayerName string          `json:"playerName"`
	Drawing    json.RawMessage `json:"drawing"`
}

type votingStartedData struct {
	TimeLimit       int64           `json:"timeLimit"`
	VotingStartTime int64           `json:"votingStartTime"`
	PlayerDrawings  []playerDrawing `json:"playerDrawings"`
	Prompt          string          `json:"prompt"`
}

type gameEndedData struct {
	Results []PlayerResult `json:"results"`
	Winner  *PlayerResult  `json:"winner"`
	Prompt  string         `json:"prompt"`
}

type roomInfoData struct {
	Room roomSnapshot `json:"room"`
}

type playerLeftData struct {
	PlayerID    string `json:"playerId"`
	PlayerCount int    `json:"playerCount"`
}

type voterLeftData struct {
	VoterID    string `json:"voterId"`
	VoterCount int    `json:"voterCount"`
}

type newCreatorData struct {
	CreatorID string `json:"creatorId"`
}
