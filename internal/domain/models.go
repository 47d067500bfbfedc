package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Question is one entry of the generated dataset. Everything except the
// answer and scale interval is passed through to clients untouched.
type Question struct {
	UUID        string      `json:"uuid"`
	Topic       string      `json:"topic"`
	Description Description `json:"description"`
	Answer      Answer      `json:"answer"`
	Excerpt     string      `json:"excerpt"`
	Scale       Interval    `json:"scale-interval"`
}

// Description holds the question prompt plus optional date and unit
// qualifiers. On the wire it is a 3-element array with nulls for missing
// qualifiers, matching the dataset format.
type Description struct {
	Prompt string
	Date   string
	Units  string
}

func (d Description) MarshalJSON() ([]byte, error) {
	arr := [3]*string{&d.Prompt, nilIfEmpty(d.Date), nilIfEmpty(d.Units)}
	return json.Marshal(arr)
}

func (d *Description) UnmarshalJSON(data []byte) error {
	var arr []*string
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("description: %w", err)
	}
	if len(arr) == 0 || arr[0] == nil {
		return fmt.Errorf("description: missing prompt")
	}
	*d = Description{Prompt: *arr[0]}
	if len(arr) > 1 && arr[1] != nil {
		d.Date = *arr[1]
	}
	if len(arr) > 2 && arr[2] != nil {
		d.Units = *arr[2]
	}
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Answer is a question's correct answer: either a single value or a
// [min, max] interval. The wire form is a bare number or a 2-element array.
type Answer struct {
	Value    float64
	Min, Max float64
	IsRange  bool
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsRange {
		return json.Marshal([2]float64{a.Min, a.Max})
	}
	return json.Marshal(a.Value)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		*a = Answer{Value: value}
		return nil
	}
	var bounds [2]float64
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("answer: expected number or [min, max]: %w", err)
	}
	*a = Answer{Min: bounds[0], Max: bounds[1], IsRange: true}
	return nil
}

// Midpoint is the single point used where the scoring math needs one
// representative value for the answer.
func (a Answer) Midpoint() float64 {
	if a.IsRange {
		return (a.Min + a.Max) / 2
	}
	return a.Value
}

// Contains reports whether x falls inside an interval answer. Single-value
// answers contain only the exact value.
func (a Answer) Contains(x float64) bool {
	if a.IsRange {
		return x >= a.Min && x <= a.Max
	}
	return x == a.Value
}

// Interval is the range of values that even make sense for a question's
// units, as produced by the generation pipeline. A nil bound means unbounded
// in that direction.
type Interval struct {
	Lower *float64 `json:"lower_bound"`
	Upper *float64 `json:"upper_bound"`
}

// BoundType classifies an interval by which of its bounds are present. The
// class selects the transform the scoring engine applies.
type BoundType int

const (
	Unbounded BoundType = iota
	BoundedBelow
	BoundedAbove
	BoundedBoth
)

// NumBoundTypes is the number of distinct bound classes.
const NumBoundTypes = 4

func (iv Interval) BoundType() BoundType {
	switch {
	case iv.Lower != nil && iv.Upper != nil:
		return BoundedBoth
	case iv.Lower != nil:
		return BoundedBelow
	case iv.Upper != nil:
		return BoundedAbove
	default:
		return Unbounded
	}
}

func (bt BoundType) String() string {
	switch bt {
	case BoundedBoth:
		return "bounded-both"
	case BoundedBelow:
		return "bounded-below"
	case BoundedAbove:
		return "bounded-above"
	default:
		return "unbounded"
	}
}

// Vote is a player's quality judgement of a question.
type Vote string

const (
	VoteGood Vote = "good"
	VoteBad  Vote = "bad"
)

// ParseVote validates the wire form of a vote.
func ParseVote(s string) (Vote, bool) {
	switch Vote(s) {
	case VoteGood, VoteBad:
		return Vote(s), true
	default:
		return "", false
	}
}

// VoteTally accumulates feedback votes for one question. Tallies start at
// {1, 1} (Laplace smoothing) so no question ever has zero sampling weight.
type VoteTally struct {
	Good int
	Bad  int
}

// Weight is the adaptive sampling weight derived from the tally.
func (t VoteTally) Weight() float64 {
	return float64(t.Good) / float64(t.Good+t.Bad)
}

// PlayerScore is one row of a round's result broadcast.
type PlayerScore struct {
	Player     string  `json:"player"`
	Answer     float64 `json:"answer"`
	Score      int     `json:"score"`
	TotalScore int     `json:"totalScore"`
}

// IsFinite reports whether x is an ordinary real number.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
