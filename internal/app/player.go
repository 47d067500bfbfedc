package app

// Sender delivers an outbound message to one connected client. Sends must
// not block: room state is mutated under a lock and network writes happen on
// the transport's own goroutines.
type Sender interface {
	Send(msg any)
}

// Player is a room member. The ID is stable across reconnects and is the
// identity scores accumulate under; the connection is transient and replaced
// when the same ID connects again.
type Player struct {
	ID   string
	Name string

	conn Sender
}

// NewPlayer binds a stable player id and display name to a connection.
func NewPlayer(id, name string, conn Sender) *Player {
	return &Player{ID: id, Name: name, conn: conn}
}

// Send forwards msg to the player's connection, if any.
func (p *Player) Send(msg any) {
	if p.conn != nil {
		p.conn.Send(msg)
	}
}
