package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const roomKeyPrefix = "room:"

// updateRetries caps optimistic-transaction retries in UpdateRoom before the
// conflict is reported as an internal failure.
const updateRetries = 5

// RoomStore persists serialized rooms in Redis under room:{id}, refreshing a
// fixed expiry on every write.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{client: client, ttl: ttl}
}

func roomKey(roomID string) string {
	return roomKeyPrefix + roomID
}

func (s *RoomStore) SaveRoom(ctx context.Context, room *Room) error {
	payload, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.ID, err)
	}
	return s.client.Set(ctx, roomKey(room.ID), payload, s.ttl).Err()
}

func (s *RoomStore) GetRoom(ctx context.Context, roomID string) (*Room, error) {
	data, err := s.client.Get(ctx, roomKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	var room Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return &room, nil
}

func (s *RoomStore) DeleteRoom(ctx context.Context, roomID string) error {
	return s.client.Del(ctx, roomKey(roomID)).Err()
}

// UpdateRoom loads the room, applies mutate, and writes the result back with
// a refreshed expiry. The read-modify-write runs under a WATCH transaction
// and retries when a concurrent writer touches the record first, so mutate
// may be invoked more than once and must reset any captured state. A mutate
// returning errNoChange leaves the record untouched.
func (s *RoomStore) UpdateRoom(ctx context.Context, roomID string, mutate func(room *Room) error) (*Room, error) {
	key := roomKey(roomID)
	var updated *Room
	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		var room Room
		if err := json.Unmarshal(data, &room); err != nil {
			return fmt.Errorf("decode room %s: %w", roomID, err)
		}
		mutateErr := mutate(&room)
		if mutateErr != nil && !errors.Is(mutateErr, errNoChange) {
			return mutateErr
		}
		updated = &room
		if errors.Is(mutateErr, errNoChange) {
			return nil
		}
		payload, err := json.Marshal(&room)
		if err != nil {
			return fmt.Errorf("encode room %s: %w", roomID, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}
	for attempt := 0; attempt < updateRetries; attempt++ {
		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update room %s: too many concurrent writes", roomID)
}

// ScanRooms walks every live room record. Used by the disconnection
// reconciler and the startup timer re-arm; O(rooms) by design.
func (s *RoomStore) ScanRooms(ctx context.Context, visit func(room *Room) error) error {
	iter := s.client.Scan(ctx, 0, roomKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		roomID := strings.TrimPrefix(iter.Val(), roomKeyPrefix)
		room, err := s.GetRoom(ctx, roomID)
		if errors.Is(err, ErrRoomNotFound) {
			// Expired between scan and read.
			continue
		}
		if err != nil {
			return err
		}
		if err := visit(room); err != nil {
			return err
		}
	}
	return iter.Err()
}
