package redis

import (
	"context"
	"testing"

	"guesstimate-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*VoteStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return NewVoteStore(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestVoteStoreRecordsAndTallies(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Record(ctx, "q1", domain.VoteGood); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := store.Record(ctx, "q1", domain.VoteBad); err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := mr.HGet("questions:votes:good", "q1"); got != "2" {
		t.Fatalf("expected raw good count 2 in redis, got %q", got)
	}

	tallies, err := store.Tallies(ctx, []string{"q1", "never-voted"})
	if err != nil {
		t.Fatalf("tallies: %v", err)
	}
	// Stored counts are raw; the smoothing floor is applied on read.
	if tallies[0] != (domain.VoteTally{Good: 3, Bad: 2}) {
		t.Fatalf("unexpected tally for q1: %+v", tallies[0])
	}
	if tallies[1] != (domain.VoteTally{Good: 1, Bad: 1}) {
		t.Fatalf("unvoted question should get the bare prior: %+v", tallies[1])
	}
}

func TestVoteStoreIgnoresGarbageCounts(t *testing.T) {
	store, mr := newTestStore(t)
	mr.HSet("questions:votes:good", "q1", "not-a-number")
	mr.HSet("questions:votes:bad", "q1", "-4")

	tallies, err := store.Tallies(context.Background(), []string{"q1"})
	if err != nil {
		t.Fatalf("tallies: %v", err)
	}
	if tallies[0] != (domain.VoteTally{Good: 1, Bad: 1}) {
		t.Fatalf("garbage counts should fall back to the prior: %+v", tallies[0])
	}
}
