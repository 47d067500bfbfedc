// Package pool owns the static question set and the feedback-weighted
// sampling distribution used to pick each round's question.
package pool

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"guesstimate-service/internal/domain"
)

// Source loads the question dataset from a backing store (file, Postgres,
// in-memory fixtures).
type Source interface {
	Load(ctx context.Context) ([]domain.Question, error)
}

// VoteStore persists feedback tallies outside the process so question
// quality signals survive restarts. Implementations are best-effort.
type VoteStore interface {
	// Record persists one vote for the question with the given uuid.
	Record(ctx context.Context, questionUUID string, vote domain.Vote) error
	// Tallies returns Laplace-smoothed tallies for the given uuids.
	Tallies(ctx context.Context, uuids []string) ([]domain.VoteTally, error)
}

// Pool is an immutable, index-addressable question collection plus a mutable
// per-question vote tally. Sampling weight for question i is
// good_i/(good_i+bad_i), normalized into a categorical distribution; draws
// are independent, with no recent-question exclusion window.
type Pool struct {
	questions []domain.Question

	mu      sync.Mutex
	tallies []domain.VoteTally
	rnd     *rand.Rand
	store   VoteStore
}

// Option configures a Pool.
type Option func(*Pool)

// WithVoteStore mirrors every recorded vote into store.
func WithVoteStore(store VoteStore) Option {
	return func(p *Pool) { p.store = store }
}

// WithTallies seeds the per-question tallies, e.g. from a VoteStore at
// startup. Ignored unless len(tallies) matches the question count.
func WithTallies(tallies []domain.VoteTally) Option {
	return func(p *Pool) {
		if len(tallies) == len(p.questions) {
			copy(p.tallies, tallies)
		}
	}
}

// WithRand makes sampling deterministic in tests.
func WithRand(rnd *rand.Rand) Option {
	return func(p *Pool) { p.rnd = rnd }
}

// New builds a pool over questions. Tallies start at {1, 1}.
func New(questions []domain.Question, opts ...Option) (*Pool, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	p := &Pool{
		questions: questions,
		tallies:   make([]domain.VoteTally, len(questions)),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for i := range p.tallies {
		p.tallies[i] = domain.VoteTally{Good: 1, Bad: 1}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Len is the number of questions in the pool.
func (p *Pool) Len() int {
	return len(p.questions)
}

// Questions exposes the full set for precomputations over the pool.
func (p *Pool) Questions() []domain.Question {
	return p.questions
}

// Question returns the question at index i.
func (p *Pool) Question(i int) (domain.Question, bool) {
	if i < 0 || i >= len(p.questions) {
		return domain.Question{}, false
	}
	return p.questions[i], true
}

// Sample draws a question index from the categorical distribution defined by
// the current tallies.
func (p *Pool) Sample() (int, domain.Question) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var total float64
	for _, t := range p.tallies {
		total += t.Weight()
	}
	r := p.rnd.Float64() * total
	for i, t := range p.tallies {
		r -= t.Weight()
		if r < 0 {
			return i, p.questions[i]
		}
	}
	last := len(p.questions) - 1
	return last, p.questions[last]
}

// RecordVote increments the tally for the question at index. Effects last
// for the lifetime of the process; when a VoteStore is configured the vote is
// also mirrored there, best-effort.
func (p *Pool) RecordVote(ctx context.Context, index int, vote domain.Vote) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.tallies) {
		return
	}
	switch vote {
	case domain.VoteGood:
		p.tallies[index].Good++
	case domain.VoteBad:
		p.tallies[index].Bad++
	default:
		return
	}

	if p.store != nil {
		if err := p.store.Record(ctx, p.questions[index].UUID, vote); err != nil {
			log.Printf("vote store: record failed for %s: %v", p.questions[index].UUID, err)
		}
	}
}

// Tally returns the current tally for the question at index.
func (p *Pool) Tally(index int) domain.VoteTally {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.tallies) {
		return domain.VoteTally{}
	}
	return p.tallies[index]
}
