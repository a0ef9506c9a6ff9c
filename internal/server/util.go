package server

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// newRoomCode returns a short human-shareable code: the first eight hex
// characters of a v4 uuid, uppercased. Collisions are not checked against
// the store.
func newRoomCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// newConnID is the ephemeral per-connection identifier participants are
// known by for the lifetime of their connection.
func newConnID() string {
	return uuid.NewString()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
