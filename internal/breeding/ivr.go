package breeding

import (
	"fmt"
	"math"
	"time"

	"herdcore/pkg/domain"
)

// IVR shrinkage parameters.
const (
	// ShrinkageK weights the herd mean against individual history; a male
	// with fewer than K recorded outcomes is pulled toward the herd average.
	ShrinkageK = 20
	// DefaultHerdRate applies when the property has no qualifying outcomes.
	DefaultHerdRate = 55.0
	// ConceptionCeiling is the practical ceiling for conception rate used to
	// normalize the adjusted rate onto a 0-100 scale.
	ConceptionCeiling = 90.0
)

// Confidence labels for the male score, keyed to sample size.
const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// MaleValueScorer computes the 0-100 male reproductive value score (IVR) as a
// Bayesian-shrunk conception rate. Scoring is pure.
type MaleValueScorer struct{}

// Score computes the shrunk conception score for the male from his recorded
// outcomes and the property-wide stats as of the given date.
func (MaleValueScorer) Score(male domain.Animal, outcomes []domain.BreedingOutcome, herd domain.ConceptionStats, asOf time.Time) domain.ScoreResult {
	n := len(outcomes)
	successes := 0
	for _, outcome := range outcomes {
		if outcome.BirthType.Live() {
			successes++
		}
	}

	rawRate := 0.0
	if n > 0 {
		rawRate = float64(successes) / float64(n) * 100
	}

	herdRate := DefaultHerdRate
	if herd.Total > 0 {
		herdRate = float64(herd.Successes) / float64(herd.Total) * 100
	}

	tca := (float64(n)*rawRate + ShrinkageK*herdRate) / float64(n+ShrinkageK)
	score := round1(clamp(tca/ConceptionCeiling*100, 0, 100))

	ageMonths := 0
	if male.BirthDate != nil {
		ageMonths = WholeMonths(*male.BirthDate, asOf)
	}

	return domain.ScoreResult{
		AnimalID:       male.ID,
		Score:          score,
		Confidence:     confidenceLabel(n),
		Justifications: maleJustifications(n, rawRate, tca),
		Status: domain.ReproductiveStatus{
			AgeMonths:  ageMonths,
			SampleSize: n,
		},
	}
}

func confidenceLabel(n int) string {
	switch {
	case n < 10:
		return ConfidenceLow
	case n < 30:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

func maleJustifications(n int, rawRate, tca float64) []string {
	out := []string{
		fmt.Sprintf("adjusted conception rate %.1f%%", tca),
		fmt.Sprintf("confidence %s (%d recorded outcomes)", confidenceLabel(n), n),
	}
	if n < ShrinkageK {
		out = append(out, "limited history: score pulled toward the herd mean")
	}
	if diff := rawRate - tca; math.Abs(diff) > 10 {
		if diff > 0 {
			out = append(out, fmt.Sprintf("raw rate %.1f%% adjusted downward toward the herd mean", rawRate))
		} else {
			out = append(out, fmt.Sprintf("raw rate %.1f%% adjusted upward toward the herd mean", rawRate))
		}
	}
	return out
}
