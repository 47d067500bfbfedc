package app

import (
	"fmt"
	"math/rand"

	"guesstimate-service/internal/domain"
)

// GameService contains the connection-facing use cases: room creation and
// joining, display-name assignment, and disconnect handling. The transport
// layer keeps the connection→room binding and calls room methods directly
// for in-room actions.
type GameService struct {
	rooms *RoomRegistry
}

func NewGameService(rooms *RoomRegistry) *GameService {
	return &GameService{rooms: rooms}
}

// DisplayName picks the name a connection plays under: the client-persisted
// preference when present, otherwise a generated "PlayerNNN".
func (s *GameService) DisplayName(preferred string) string {
	if preferred != "" {
		return preferred
	}
	return fmt.Sprintf("Player%d", rand.Intn(1000))
}

// CreateRoom allocates a room and joins the creator to it.
func (s *GameService) CreateRoom(p *Player) *Room {
	room := s.rooms.Create()
	p.Send(domain.RoomCreatedMessage{
		Action:   domain.ActionRoomCreated,
		RoomCode: room.Code(),
	})
	room.Join(p)
	return room
}

// JoinRoom joins p to the room with the given code. Returns
// domain.ErrRoomNotFound when no such room is live.
func (s *GameService) JoinRoom(code string, p *Player) (*Room, error) {
	room, ok := s.rooms.Get(code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	p.Send(domain.RoomJoinedMessage{
		Action:   domain.ActionRoomJoined,
		RoomCode: room.Code(),
	})
	room.Join(p)
	return room, nil
}

// Disconnect removes a player from their room when conn closes, destroying
// the room if they were the last member. conn identifies the closing socket:
// if the player has since reconnected on a newer one, the close is a no-op.
func (s *GameService) Disconnect(room *Room, playerID string, conn Sender) {
	if room == nil {
		return
	}
	if room.LeaveIfCurrent(playerID, conn) {
		s.rooms.RemoveIfEmpty(room.Code())
	}
}
