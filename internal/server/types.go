package server

import "encoding/json"

const (
	stateWaiting = "waiting"
	// ready_check is declared for forward compatibility; no transition
	// currently enters or leaves it.
	stateReadyCheck = "ready_check"
	stateDrawing    = "drawing"
	stateVoting     = "voting"
	stateFinished   = "finished"
)

const (
	rolePlayer = "player"
	roleVoter  = "voter"
)

// maxHistoryLength bounds gameHistory so the serialized room record cannot
// grow without limit across rounds.
const maxHistoryLength = 50

// Room is the unit of coordination and the sole unit of persistence: every
// mutation is a full read-modify-write of the serialized entity.
type Room struct {
	ID              string                     `json:"id"`
	Creator         string                     `json:"creator"`
	State           string                     `json:"state"`
	Players         map[string]*Player         `json:"players"`
	Voters          map[string]*Voter          `json:"voters"`
	CurrentPrompt   string                     `json:"currentPrompt"`
	GameStartTime   *int64                     `json:"gameStartTime"`
	VotingStartTime *int64                     `json:"votingStartTime"`
	Drawings        map[string]json.RawMessage `json:"drawings"`
	Votes           map[string]int             `json:"votes"`
	GameHistory     []RoundResult              `json:"gameHistory"`
}

type Player struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Ready bool   `json:"ready"`
	// Drawing is an unused placeholder kept for wire compatibility;
	// submitted payloads live in Room.Drawings.
	Drawing json.RawMessage `json:"drawing"`
	Votes   int             `json:"votes"`
}

type Voter struct {
	Name     string `json:"name"`
	HasVoted bool   `json:"hasVoted"`
}

type RoundResult struct {
	Prompt    string         `json:"prompt"`
	Results   []PlayerResult `json:"results"`
	Timestamp int64          `json:"timestamp"`
}

type PlayerResult struct {
	PlayerID   string          `json:"playerId"`
	PlayerName string          `json:"playerName"`
	Votes      int             `json:"votes"`
	Drawing    json.RawMessage `json:"drawing"`
}

func emptyDrawing() json.RawMessage {
	return json.RawMessage("[]")
}

func newPlayer(name string) *Player {
	return &Player{
		Name:    name,
		Role:    rolePlayer,
		Drawing: emptyDrawing(),
	}
}

func newVoter(name string) *Voter {
	return &Voter{Name: name}
}

func playerCount(room *Room) int {
	count := 0
	for _, player := range room.Players {
		if player.Role == rolePlayer {
			count++
		}
	}
	return count
}

func voterCount(room *Room) int {
	return len(room.Voters)
}

func isRoomFull(room *Room, maxPlayers int) bool {
	return playerCount(room) >= maxPlayers
}
