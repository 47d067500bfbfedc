package domain

// Action names on the wire. Inbound and outbound messages share the flat
// {"action": ..., ...} envelope of the original browser client.
const (
	ActionCreateRoom   = "create_room"
	ActionJoinRoom     = "join_room"
	ActionStartRound   = "start_round"
	ActionSubmitAnswer = "submit_answer"
	ActionReady        = "ready_for_next_round"
	ActionVoteQuestion = "vote_question"
	ActionPlayerName   = "player_name"

	ActionRoomCreated     = "room_created"
	ActionRoomJoined      = "room_joined"
	ActionPlayerJoined    = "player_joined"
	ActionPlayerLeft      = "player_left"
	ActionNewQuestion     = "new_question"
	ActionAnswerSubmitted = "answer_submitted"
	ActionWaitingReady    = "waiting_for_everyone_to_be_ready"
	ActionRoundScores     = "round_scores"
	ActionError           = "error"
)

// Error codes reported to the originating connection only.
const (
	ErrCodeRoomNotFound   = "room_not_found"
	ErrCodeUnknownAction  = "unknown_action"
	ErrCodeInvalidMessage = "invalid_message_format"
)

// RoomCreatedMessage acknowledges create_room to the creator.
type RoomCreatedMessage struct {
	Action   string `json:"action"` // "room_created"
	RoomCode string `json:"roomCode"`
}

// RoomJoinedMessage acknowledges join_room to the joiner.
type RoomJoinedMessage struct {
	Action   string `json:"action"` // "room_joined"
	RoomCode string `json:"roomCode"`
}

// NoticeMessage carries join/leave notifications.
type NoticeMessage struct {
	Action  string `json:"action"` // "player_joined" / "player_left"
	Message string `json:"message"`
}

// PlayerNameMessage informs a client of its assigned display name.
type PlayerNameMessage struct {
	Action string `json:"action"` // "player_name"
	Name   string `json:"name"`
}

// NewQuestionMessage starts a round for all connected players.
type NewQuestionMessage struct {
	Action   string   `json:"action"` // "new_question"
	Question Question `json:"question"`
}

// AckMessage is an empty acknowledgement ("answer_submitted",
// "waiting_for_everyone_to_be_ready").
type AckMessage struct {
	Action string `json:"action"`
}

// RoundScoresMessage resolves a round: per-player results plus the correct
// answer and source excerpt.
type RoundScoresMessage struct {
	Action        string        `json:"action"` // "round_scores"
	Data          []PlayerScore `json:"data"`
	CorrectAnswer Answer        `json:"correct_answer"`
	Excerpt       string        `json:"excerpt"`
}

// ErrorMessage reports a recoverable error to the originating connection.
type ErrorMessage struct {
	Action string `json:"action"` // "error"
	Code   string `json:"code"`
}
