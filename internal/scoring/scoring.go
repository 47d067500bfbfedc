// Package scoring turns submitted numeric answers into proximity scores that
// are comparable across quantities spanning from single digits to
// vigintillions. Every value is first mapped onto an unbounded real line with
// a transform picked by the question's bound class, then distances are scaled
// by a Bayesian-smoothed spread estimate and pushed through a two-sided
// normal survival function.
package scoring

import (
	"math"

	"guesstimate-service/internal/domain"
)

// MaxScore is the best achievable round score.
const MaxScore = 1000

const (
	// steepness controls how quickly scores fall off with normalized distance.
	steepness = 4.0

	// Smoothing for the pool-wide per-class normalization constants.
	poolPriorStrength = 1.0
	poolPriorEstimate = 1.0

	// Smoothing for the per-round posterior spread.
	roundPriorStrength = 2.0
	roundPriorEstimate = 1.0
)

// Normalizer holds one normalization constant per bound class, precomputed
// over a question pool so that typical transform magnitudes are comparable
// across classes. It is immutable after construction.
type Normalizer struct {
	norms [domain.NumBoundTypes]float64
}

// NewNormalizer computes the per-class constants as the Bayesian-smoothed
// root-mean-square of the pool's correct-answer transforms.
func NewNormalizer(questions []domain.Question) *Normalizer {
	var sums [domain.NumBoundTypes]float64
	var counts [domain.NumBoundTypes]int
	for _, q := range questions {
		t := rawTransform(q.Scale, q.Answer.Midpoint())
		if !domain.IsFinite(t) {
			continue
		}
		bt := q.Scale.BoundType()
		sums[bt] += t * t
		counts[bt]++
	}

	n := &Normalizer{}
	for bt := range n.norms {
		n.norms[bt] = math.Sqrt(
			(sums[bt] + poolPriorStrength*poolPriorEstimate*poolPriorEstimate) /
				(float64(counts[bt]) + poolPriorStrength))
	}
	return n
}

// Transform maps x onto the real line using the bound-appropriate monotonic
// transform, scaled by the class normalization constant. Values outside the
// transform's valid domain yield NaN or an infinity.
func (n *Normalizer) Transform(scale domain.Interval, x float64) float64 {
	return rawTransform(scale, x) / n.norms[scale.BoundType()]
}

// rawTransform is the unscaled transform: logit of the normalized position
// for fully bounded intervals, log distance to the finite bound for
// half-bounded ones, identity for unbounded quantities.
func rawTransform(scale domain.Interval, x float64) float64 {
	switch scale.BoundType() {
	case domain.BoundedBoth:
		p := (x - *scale.Lower) / (*scale.Upper - *scale.Lower)
		return math.Log(p / (1 - p))
	case domain.BoundedBelow:
		return math.Log(x - *scale.Lower)
	case domain.BoundedAbove:
		return math.Log(*scale.Upper - x)
	default:
		return x
	}
}

// ScoreRound maps every submitted answer to an integer score in
// [0, MaxScore]. Answers whose transform is not finite are excluded from the
// spread estimate and score 0; if the correct answer itself cannot be
// transformed, everyone scores 0. The function never returns a non-finite
// intermediate to callers and never panics.
func (n *Normalizer) ScoreRound(q domain.Question, answers map[string]float64) map[string]int {
	scores := make(map[string]int, len(answers))

	center := n.correctCenter(q)
	transformed := make(map[string]float64, len(answers))
	for player, answer := range answers {
		transformed[player] = n.Transform(q.Scale, answer)
	}

	spread := posteriorSpread(center, transformed)

	for player := range answers {
		t := transformed[player]
		if !domain.IsFinite(t) || !domain.IsFinite(center) {
			scores[player] = 0
			continue
		}
		normalized := n.distance(q, answers[player], t, center) / spread
		frac := math.Erfc(steepness * math.Abs(normalized) / math.Sqrt2)
		if math.IsNaN(frac) || frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
		scores[player] = int(math.Round(MaxScore * frac))
	}
	return scores
}

// correctCenter is the transform of the correct answer. For interval answers
// it is the midpoint of the finite endpoint transforms.
func (n *Normalizer) correctCenter(q domain.Question) float64 {
	if !q.Answer.IsRange {
		return n.Transform(q.Scale, q.Answer.Value)
	}
	lo := n.Transform(q.Scale, q.Answer.Min)
	hi := n.Transform(q.Scale, q.Answer.Max)
	switch {
	case domain.IsFinite(lo) && domain.IsFinite(hi):
		return (lo + hi) / 2
	case domain.IsFinite(lo):
		return lo
	default:
		return hi
	}
}

// distance measures how far a transformed answer is from the correct answer.
// Any answer inside an interval answer counts as a direct hit; outside the
// interval the distance runs to the nearest endpoint transform.
func (n *Normalizer) distance(q domain.Question, raw, t, center float64) float64 {
	if !q.Answer.IsRange {
		return math.Abs(t - center)
	}
	if q.Answer.Contains(raw) {
		return 0
	}
	if raw < q.Answer.Min {
		return math.Abs(t - n.Transform(q.Scale, q.Answer.Min))
	}
	return math.Abs(n.Transform(q.Scale, q.Answer.Max) - t)
}

// posteriorSpread is the Bayesian-smoothed standard deviation of the finite
// transforms of this round, taken over the correct answer and all submitted
// answers. It adapts scoring sensitivity to how spread out the round is.
func posteriorSpread(center float64, transformed map[string]float64) float64 {
	samples := make([]float64, 0, len(transformed)+1)
	if domain.IsFinite(center) {
		samples = append(samples, center)
	}
	for _, t := range transformed {
		if domain.IsFinite(t) {
			samples = append(samples, t)
		}
	}

	var mean float64
	for _, s := range samples {
		mean += s
	}
	if len(samples) > 0 {
		mean /= float64(len(samples))
	}

	var ss float64
	for _, s := range samples {
		d := s - mean
		ss += d * d
	}
	return math.Sqrt(
		(ss + roundPriorStrength*roundPriorEstimate*roundPriorEstimate) /
			(float64(len(samples)) + roundPriorStrength))
}
