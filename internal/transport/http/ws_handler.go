package http

import (
	"encoding/json"
	"log"
	"net/http"

	"guesstimate-service/internal/app"
	"guesstimate-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades connections and routes the flat {"action": ...}
// protocol into the game use cases.
type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Inbound payload shapes, one per action. The envelope is flat, so each
// payload is unmarshalled from the full message once the action is known.
type actionEnvelope struct {
	Action string `json:"action"`
}

type joinRoomPayload struct {
	RoomCode string `json:"roomCode"`
}

type submitAnswerPayload struct {
	Answer *float64 `json:"answer"`
}

type votePayload struct {
	Vote string `json:"vote"`
}

type playerNamePayload struct {
	Name string `json:"name"`
}

// client owns one websocket connection. All writes go through a buffered
// send channel drained by a single writer goroutine, so room broadcasts
// never block and never interleave frames.
type client struct {
	conn *websocket.Conn
	send chan any
}

func (c *client) Send(msg any) {
	select {
	case c.send <- msg:
	default:
		// Slow consumer; drop rather than stall the room.
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// session is the per-connection state: who this connection plays as, and
// which room it is currently bound to.
type session struct {
	client *client
	player *app.Player
	room   *app.Room
}

// ServeWS upgrades the request and runs the connection's read loop. The
// stable player id arrives as a uuid query parameter persisted client-side;
// connections without a valid one are rejected before the upgrade.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("uuid")
	if _, err := uuid.Parse(playerID); err != nil {
		http.Error(w, "missing or invalid uuid", http.StatusBadRequest)
		return
	}
	name := h.service.DisplayName(r.URL.Query().Get("playerName"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan any, 16)}
	go c.writePump()

	sess := &session{
		client: c,
		player: app.NewPlayer(playerID, name, c),
	}
	c.Send(domain.PlayerNameMessage{Action: domain.ActionPlayerName, Name: name})

	h.readLoop(r, sess)

	// The player is out of the room before the send channel closes, so no
	// broadcast can race the close. Passing the client lets a socket that
	// was superseded by a reconnect close without evicting the live player.
	h.service.Disconnect(sess.room, playerID, c)
	close(c.send)
	_ = conn.Close()
}

func (h *WSHandler) readLoop(r *http.Request, sess *session) {
	for {
		_, raw, err := sess.client.conn.ReadMessage()
		if err != nil {
			return
		}
		h.dispatch(r, sess, raw)
	}
}

// dispatch validates one inbound message and applies it. Errors are typed,
// reported to this connection only, and never touch room state.
func (h *WSHandler) dispatch(r *http.Request, sess *session, raw []byte) {
	var envelope actionEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		sess.client.Send(errorMessage(domain.ErrCodeInvalidMessage))
		return
	}

	switch envelope.Action {
	case domain.ActionCreateRoom:
		if sess.room != nil {
			return
		}
		sess.room = h.service.CreateRoom(sess.player)

	case domain.ActionJoinRoom:
		if sess.room != nil {
			return
		}
		var payload joinRoomPayload
		if err := json.Unmarshal(raw, &payload); err != nil || payload.RoomCode == "" {
			sess.client.Send(errorMessage(domain.ErrCodeInvalidMessage))
			return
		}
		room, err := h.service.JoinRoom(payload.RoomCode, sess.player)
		if err != nil {
			sess.client.Send(errorMessage(domain.ErrCodeRoomNotFound))
			return
		}
		sess.room = room

	case domain.ActionStartRound:
		if sess.room != nil {
			sess.room.StartRound()
		}

	case domain.ActionSubmitAnswer:
		var payload submitAnswerPayload
		if err := json.Unmarshal(raw, &payload); err != nil || payload.Answer == nil || !domain.IsFinite(*payload.Answer) {
			sess.client.Send(errorMessage(domain.ErrCodeInvalidMessage))
			return
		}
		if sess.room != nil {
			sess.room.SubmitAnswer(sess.player.ID, *payload.Answer)
		}

	case domain.ActionReady:
		if sess.room != nil {
			sess.room.Ready(sess.player.ID)
		}

	case domain.ActionVoteQuestion:
		var payload votePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			sess.client.Send(errorMessage(domain.ErrCodeInvalidMessage))
			return
		}
		vote, ok := domain.ParseVote(payload.Vote)
		if !ok {
			sess.client.Send(errorMessage(domain.ErrCodeInvalidMessage))
			return
		}
		if sess.room != nil {
			sess.room.Vote(r.Context(), sess.player.ID, vote)
		}

	case domain.ActionPlayerName:
		var payload playerNamePayload
		if err := json.Unmarshal(raw, &payload); err != nil || payload.Name == "" {
			sess.client.Send(errorMessage(domain.ErrCodeInvalidMessage))
			return
		}
		if sess.room != nil {
			sess.room.Rename(sess.player.ID, payload.Name)
		} else {
			sess.player.Name = payload.Name
		}
		sess.client.Send(domain.PlayerNameMessage{Action: domain.ActionPlayerName, Name: payload.Name})

	default:
		sess.client.Send(errorMessage(domain.ErrCodeUnknownAction))
	}
}

func errorMessage(code string) domain.ErrorMessage {
	return domain.ErrorMessage{Action: domain.ActionError, Code: code}
}
