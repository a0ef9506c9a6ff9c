package server

import "errors"

// Expected control-flow outcomes. These are surfaced as a targeted error
// event to the originating connection only, never broadcast and never logged
// as exceptional. Anything outside this set is an internal failure.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameInProgress     = errors.New("game already in progress")
	ErrInvalidParticipant = errors.New("invalid room or player")
	ErrInvalidVote        = errors.New("invalid vote")
	ErrAlreadyVoted       = errors.New("you have already voted")
)

// errNoChange tells the store that a mutation turned out to be a no-op and
// the record must not be rewritten. It never escapes to callers as a failure.
var errNoChange = errors.New("no change")

func expectedError(err error) bool {
	for _, known := range []error{
		ErrRoomNotFound,
		ErrRoomFull,
		ErrGameInProgress,
		ErrInvalidParticipant,
		ErrInvalidVote,
		ErrAlreadyVoted,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
