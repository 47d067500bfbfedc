package domain_test

import (
	"encoding/json"
	"testing"

	"guesstimate-service/internal/domain"
)

func TestAnswerJSONForms(t *testing.T) {
	var single domain.Answer
	if err := json.Unmarshal([]byte(`42.5`), &single); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if single.IsRange || single.Value != 42.5 {
		t.Fatalf("unexpected answer: %+v", single)
	}

	var interval domain.Answer
	if err := json.Unmarshal([]byte(`[120, 140]`), &interval); err != nil {
		t.Fatalf("unmarshal interval: %v", err)
	}
	if !interval.IsRange || interval.Min != 120 || interval.Max != 140 {
		t.Fatalf("unexpected answer: %+v", interval)
	}
	if interval.Midpoint() != 130 {
		t.Fatalf("unexpected midpoint: %v", interval.Midpoint())
	}
	if !interval.Contains(120) || !interval.Contains(140) || interval.Contains(141) {
		t.Fatal("interval containment is inclusive of both endpoints")
	}

	if err := json.Unmarshal([]byte(`"many"`), &interval); err == nil {
		t.Fatal("expected an error for a non-numeric answer")
	}

	out, err := json.Marshal(interval)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `[120,140]` {
		t.Fatalf("interval answers marshal back to a pair, got %s", out)
	}
}

func TestDescriptionJSONForm(t *testing.T) {
	var d domain.Description
	if err := json.Unmarshal([]byte(`["how many ships", "1588", null]`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Prompt != "how many ships" || d.Date != "1588" || d.Units != "" {
		t.Fatalf("unexpected description: %+v", d)
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `["how many ships","1588",null]` {
		t.Fatalf("missing qualifiers marshal as nulls, got %s", out)
	}

	if err := json.Unmarshal([]byte(`[null]`), &d); err == nil {
		t.Fatal("expected an error for a missing prompt")
	}
}

func TestIntervalBoundTypes(t *testing.T) {
	zero, hundred := 0.0, 100.0
	cases := []struct {
		iv   domain.Interval
		want domain.BoundType
	}{
		{domain.Interval{}, domain.Unbounded},
		{domain.Interval{Lower: &zero}, domain.BoundedBelow},
		{domain.Interval{Upper: &hundred}, domain.BoundedAbove},
		{domain.Interval{Lower: &zero, Upper: &hundred}, domain.BoundedBoth},
	}
	for _, tc := range cases {
		if got := tc.iv.BoundType(); got != tc.want {
			t.Fatalf("BoundType(%+v) = %v, want %v", tc.iv, got, tc.want)
		}
	}
}

func TestParseVote(t *testing.T) {
	if v, ok := domain.ParseVote("good"); !ok || v != domain.VoteGood {
		t.Fatalf("expected good vote, got %v %v", v, ok)
	}
	if v, ok := domain.ParseVote("bad"); !ok || v != domain.VoteBad {
		t.Fatalf("expected bad vote, got %v %v", v, ok)
	}
	if _, ok := domain.ParseVote("meh"); ok {
		t.Fatal("expected rejection of an unknown vote")
	}
}
