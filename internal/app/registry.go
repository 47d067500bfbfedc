package app

import (
	"crypto/rand"
	"sync"
	"time"

	"guesstimate-service/internal/pool"
	"guesstimate-service/internal/scoring"
)

const (
	roomCodeLength   = 5
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RoomRegistry is the process-wide table of live rooms keyed by room code.
// Codes are short enough to share out loud, so allocation is collision-checked
// against the live set and retried.
type RoomRegistry struct {
	pool         *pool.Pool
	scorer       *scoring.Normalizer
	roundTimeout time.Duration

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRoomRegistry builds a registry whose rooms share one question pool and
// scorer. roundTimeout of 0 disables the per-round deadline.
func NewRoomRegistry(questions *pool.Pool, scorer *scoring.Normalizer, roundTimeout time.Duration) *RoomRegistry {
	return &RoomRegistry{
		pool:         questions,
		scorer:       scorer,
		roundTimeout: roundTimeout,
		rooms:        make(map[string]*Room),
	}
}

// Create allocates a fresh room under a code unused by any live room.
func (rr *RoomRegistry) Create() *Room {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	code := rr.newCodeLocked()
	room := newRoom(code, rr.pool, rr.scorer, rr.roundTimeout)
	rr.rooms[code] = room
	return room
}

// Get looks up a live room by code.
func (rr *RoomRegistry) Get(code string) (*Room, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	room, ok := rr.rooms[code]
	return room, ok
}

// RemoveIfEmpty drops the room if its last player has left.
func (rr *RoomRegistry) RemoveIfEmpty(code string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	room, ok := rr.rooms[code]
	if !ok {
		return
	}
	if room.IsEmpty() {
		delete(rr.rooms, code)
	}
}

// Len is the number of live rooms.
func (rr *RoomRegistry) Len() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return len(rr.rooms)
}

func (rr *RoomRegistry) newCodeLocked() string {
	for {
		buf := make([]byte, roomCodeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, roomCodeLength)
		for i := range out {
			out[i] = roomCodeAlphabet[int(buf[i])%len(roomCodeAlphabet)]
		}
		code := string(out)
		if _, exists := rr.rooms[code]; !exists {
			return code
		}
	}
}
