package redis

import (
	"context"
	"strconv"

	"guesstimate-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// VoteStore keeps per-question feedback tallies in two Redis hashes
// (good/bad), keyed by question uuid so tallies survive dataset reordering.
// Stored counts are raw; Tallies re-applies the {1, 1} Laplace floor.
type VoteStore struct {
	client *redis.Client
}

func NewVoteStore(client *redis.Client) *VoteStore {
	return &VoteStore{client: client}
}

func (s *VoteStore) Record(ctx context.Context, questionUUID string, vote domain.Vote) error {
	return s.client.HIncrBy(ctx, s.key(vote), questionUUID, 1).Err()
}

func (s *VoteStore) Tallies(ctx context.Context, uuids []string) ([]domain.VoteTally, error) {
	good, err := s.client.HGetAll(ctx, s.key(domain.VoteGood)).Result()
	if err != nil {
		return nil, err
	}
	bad, err := s.client.HGetAll(ctx, s.key(domain.VoteBad)).Result()
	if err != nil {
		return nil, err
	}

	tallies := make([]domain.VoteTally, len(uuids))
	for i, id := range uuids {
		tallies[i] = domain.VoteTally{
			Good: 1 + count(good, id),
			Bad:  1 + count(bad, id),
		}
	}
	return tallies, nil
}

func (s *VoteStore) key(vote domain.Vote) string {
	return "questions:votes:" + string(vote)
}

func count(hash map[string]string, id string) int {
	n, err := strconv.Atoi(hash[id])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
