package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"guesstimate-service/internal/domain"
	"guesstimate-service/internal/pool"
	"guesstimate-service/internal/scoring"
)

// RoomState is the phase of a room's round cycle.
type RoomState int

const (
	// AwaitingRoundStart is the initial state, before the first round.
	AwaitingRoundStart RoomState = iota
	// CollectingAnswers means a question is active and answers are coming in.
	CollectingAnswers
	// AwaitingReady means a round has resolved and players are readying up.
	AwaitingReady
)

type activeQuestion struct {
	question domain.Question
	index    int
}

// Room is one live game instance. All mutations run under a single mutex, so
// actions from concurrent connections are serialized exactly like the
// original single-threaded event loop; completion conditions are re-checked
// against the live player set on every mutation, so no arrival order can
// corrupt the state machine.
type Room struct {
	code    string
	pool    *pool.Pool
	scorer  *scoring.Normalizer
	timeout time.Duration // optional per-round deadline, 0 disables

	mu          sync.Mutex
	players     map[string]*Player
	totalScores map[string]int
	state       RoomState
	current     *activeQuestion
	answers     map[string]float64
	ready       map[string]struct{}
	roundSeq    int // invalidates deadline timers from earlier rounds
}

func newRoom(code string, questions *pool.Pool, scorer *scoring.Normalizer, timeout time.Duration) *Room {
	return &Room{
		code:        code,
		pool:        questions,
		scorer:      scorer,
		timeout:     timeout,
		players:     make(map[string]*Player),
		totalScores: make(map[string]int),
		state:       AwaitingRoundStart,
	}
}

// Code is the room's shareable identifier.
func (r *Room) Code() string {
	return r.code
}

// State reports the current phase.
func (r *Room) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// IsEmpty reports whether the room has no players.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0
}

// TotalScore returns a player's accumulated score.
func (r *Room) TotalScore(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalScores[id]
}

// Join adds a player, announcing them to the existing members. A returning
// ID reattaches its connection without touching accumulated scores. Late
// joiners during an active round receive the current question so they can
// still answer it; joiners during the ready phase count as ready so they
// never block progress.
func (r *Room) Join(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.players[p.ID]; ok {
		existing.conn = p.conn
		if p.Name != "" {
			existing.Name = p.Name
		}
		p = existing
	} else {
		for _, other := range r.players {
			other.Send(domain.NoticeMessage{
				Action:  domain.ActionPlayerJoined,
				Message: fmt.Sprintf("%s has joined the room.", p.Name),
			})
		}
		r.players[p.ID] = p
		if _, ok := r.totalScores[p.ID]; !ok {
			r.totalScores[p.ID] = 0
		}
	}

	switch r.state {
	case CollectingAnswers:
		if r.current != nil {
			p.Send(domain.NewQuestionMessage{
				Action:   domain.ActionNewQuestion,
				Question: r.current.question,
			})
		}
	case AwaitingReady:
		r.ready[p.ID] = struct{}{}
		r.maybeStartRoundLocked()
	}
}

// Leave removes a player and reports whether the room emptied. A departure
// can be what completes the current phase, so the completion condition is
// re-evaluated immediately.
func (r *Room) Leave(id string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(id)
}

// LeaveIfCurrent removes the player only if conn is still the connection the
// player is attached to. The close of a socket that was superseded by a
// reconnect must not evict the live player.
func (r *Room) LeaveIfCurrent(id string, conn Sender) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[id]; ok && p.conn != conn {
		return false
	}
	return r.leaveLocked(id)
}

func (r *Room) leaveLocked(id string) (empty bool) {
	p, ok := r.players[id]
	if !ok {
		return len(r.players) == 0
	}
	delete(r.players, id)
	delete(r.answers, id)
	delete(r.ready, id)

	if len(r.players) == 0 {
		return true
	}

	for _, other := range r.players {
		other.Send(domain.NoticeMessage{
			Action:  domain.ActionPlayerLeft,
			Message: fmt.Sprintf("%s has left the room.", p.Name),
		})
	}

	switch r.state {
	case CollectingAnswers:
		r.maybeResolveRoundLocked()
	case AwaitingReady:
		r.maybeStartRoundLocked()
	}
	return false
}

// StartRound begins a new round. Valid before the first round and after a
// round has resolved; ignored while answers are being collected.
func (r *Room) StartRound() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == CollectingAnswers {
		return
	}
	r.startRoundLocked()
}

func (r *Room) startRoundLocked() {
	index, question := r.pool.Sample()
	r.current = &activeQuestion{question: question, index: index}
	r.answers = make(map[string]float64)
	r.ready = nil
	r.state = CollectingAnswers
	r.roundSeq++

	r.broadcastLocked(domain.NewQuestionMessage{
		Action:   domain.ActionNewQuestion,
		Question: question,
	})

	if r.timeout > 0 {
		seq := r.roundSeq
		time.AfterFunc(r.timeout, func() { r.expireRound(seq) })
	}
}

// SubmitAnswer records a player's answer. A no-op unless a question is
// active and the submitter is a member. The round resolves exactly when
// every current member has answered.
func (r *Room) SubmitAnswer(id string, answer float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != CollectingAnswers || r.current == nil {
		return
	}
	p, ok := r.players[id]
	if !ok {
		return
	}
	r.answers[id] = answer

	if !r.maybeResolveRoundLocked() {
		p.Send(domain.AckMessage{Action: domain.ActionAnswerSubmitted})
	}
}

func (r *Room) maybeResolveRoundLocked() bool {
	if r.current == nil || len(r.answers) < len(r.players) {
		return false
	}
	r.resolveRoundLocked()
	return true
}

// resolveRoundLocked scores the collected answers, folds them into the
// running totals and broadcasts the results. Players without an answer (only
// possible on a deadline expiry) are left out of the round entirely.
func (r *Room) resolveRoundLocked() {
	q := r.current.question
	scores := r.scorer.ScoreRound(q, r.answers)

	data := make([]domain.PlayerScore, 0, len(r.answers))
	for id, answer := range r.answers {
		r.totalScores[id] += scores[id]
		name := id
		if p, ok := r.players[id]; ok {
			name = p.Name
		}
		data = append(data, domain.PlayerScore{
			Player:     name,
			Answer:     answer,
			Score:      scores[id],
			TotalScore: r.totalScores[id],
		})
	}
	sortPlayerScores(data)

	r.broadcastLocked(domain.RoundScoresMessage{
		Action:        domain.ActionRoundScores,
		Data:          data,
		CorrectAnswer: q.Answer,
		Excerpt:       q.Excerpt,
	})

	r.current = nil
	r.answers = nil
	r.ready = make(map[string]struct{})
	r.state = AwaitingReady
	r.roundSeq++
}

// Ready marks a player as ready for the next round; when the last member
// readies up the next round starts automatically.
func (r *Room) Ready(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != AwaitingReady {
		return
	}
	p, ok := r.players[id]
	if !ok {
		return
	}
	r.ready[id] = struct{}{}

	if !r.maybeStartRoundLocked() {
		p.Send(domain.AckMessage{Action: domain.ActionWaitingReady})
	}
}

func (r *Room) maybeStartRoundLocked() bool {
	if len(r.players) == 0 || len(r.ready) < len(r.players) {
		return false
	}
	r.startRoundLocked()
	return true
}

// Vote forwards a quality vote on the active question to the pool. Room
// state is unaffected.
func (r *Room) Vote(ctx context.Context, id string, vote domain.Vote) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return
	}
	if _, ok := r.players[id]; !ok {
		return
	}
	r.pool.RecordVote(ctx, r.current.index, vote)
}

// Rename updates a player's display name.
func (r *Room) Rename(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[id]; ok && name != "" {
		p.Name = name
	}
}

// expireRound force-resolves a round whose deadline passed, scoring only the
// answers received so far. Stale timers from already-finished rounds are
// recognized by the sequence number and ignored. A round nobody answered has
// nothing to score, so a fresh question is dealt instead of broadcasting an
// empty scoreboard.
func (r *Room) expireRound(seq int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != CollectingAnswers || r.roundSeq != seq || r.current == nil {
		return
	}
	if len(r.answers) == 0 {
		r.startRoundLocked()
		return
	}
	r.resolveRoundLocked()
}

func (r *Room) broadcastLocked(msg any) {
	for _, p := range r.players {
		p.Send(msg)
	}
}

func sortPlayerScores(data []domain.PlayerScore) {
	// Stable output order for broadcasts and tests.
	sort.Slice(data, func(i, j int) bool {
		return data[i].Player < data[j].Player
	})
}
