package breeding

import (
	"time"

	"herdcore/pkg/domain"
)

// IAR factor weights. The four factors are each expressed on a 0-100 scale.
const (
	iarWeightReadiness     = 0.50
	iarWeightAgeWindow     = 0.15
	iarWeightHistory       = 0.20
	iarWeightLactationLoad = 0.15
)

// Voluntary waiting period and post-parturition windows, in days.
const (
	voluntaryWaitDays    = 63
	idealPostpartumDays  = 120
	daysOpenDecayPerDay  = 0.4
	lactationPeakStart   = 20
	lactationPeakEnd     = 80
	lactationPeakPenalty = 60
)

// FemaleHistory is the minimal reproductive history needed to score a female.
type FemaleHistory struct {
	// Parity is the number of completed reproductive cycles.
	Parity int
	// ParturitionDates lists parturitions in ascending order.
	ParturitionDates []time.Time
	// CurrentCycle is the open lactation cycle, or nil when dry.
	CurrentCycle *domain.LactationCycle
}

// LastParturition returns the most recent parturition date, or nil.
func (h FemaleHistory) LastParturition() *time.Time {
	if len(h.ParturitionDates) == 0 {
		return nil
	}
	last := h.ParturitionDates[len(h.ParturitionDates)-1]
	return &last
}

// FemaleAptitudeScorer computes the 0-100 female aptitude score (IAR) from an
// animal's reproductive history. Scoring is pure: identical inputs always
// produce the identical score and justification set.
type FemaleAptitudeScorer struct{}

// Score computes the weighted aptitude score for the female as of the given
// date. The animal must carry a birth date; callers guard that precondition.
func (FemaleAptitudeScorer) Score(female domain.Animal, history FemaleHistory, asOf time.Time) domain.ScoreResult {
	ageMonths := WholeMonths(*female.BirthDate, asOf)
	parous := history.Parity > 0

	var dpp *int
	if last := history.LastParturition(); last != nil {
		days := daysBetween(*last, asOf)
		dpp = &days
	}

	readiness := readinessFactor(parous, ageMonths, dpp)
	ageWindow := ageWindowFactor(parous, ageMonths)
	histScore, histKnown := historyFactor(history.ParturitionDates, history.Parity)
	lactation, lactating := lactationLoadFactor(history.CurrentCycle, asOf)

	score := round1(iarWeightReadiness*readiness +
		iarWeightAgeWindow*ageWindow +
		iarWeightHistory*histScore +
		iarWeightLactationLoad*lactation)

	return domain.ScoreResult{
		AnimalID:       female.ID,
		Score:          score,
		Justifications: femaleJustifications(parous, dpp, readiness, histScore, histKnown, lactation),
		Status: domain.ReproductiveStatus{
			AgeMonths:      ageMonths,
			Parity:         history.Parity,
			DaysPostpartum: dpp,
			Lactating:      lactating,
		},
	}
}

// readinessFactor models physiological readiness today. Nulliparous females
// peak between 24 and 36 months; parous females peak between the end of the
// voluntary waiting period and 120 days postpartum.
func readinessFactor(parous bool, ageMonths int, dpp *int) float64 {
	if !parous {
		switch {
		case ageMonths < 24:
			return 0
		case ageMonths <= 36:
			return 100
		case ageMonths < 48:
			return 100 - float64(ageMonths-36)*100/12
		default:
			return 0
		}
	}
	if dpp == nil {
		return 0
	}
	switch {
	case *dpp < voluntaryWaitDays:
		return 0
	case *dpp <= idealPostpartumDays:
		return 100
	default:
		return clamp(100-daysOpenDecayPerDay*float64(*dpp-idealPostpartumDays), 0, 100)
	}
}

// ageWindowFactor applies the parous age bands; nulliparous age is already
// fully captured by readiness.
func ageWindowFactor(parous bool, ageMonths int) float64 {
	if !parous {
		return 100
	}
	switch {
	case ageMonths < 36:
		return 90
	case ageMonths <= 120:
		return 100
	case ageMonths <= 144:
		return 70
	default:
		return 30
	}
}

// historyFactor grades inter-calving efficiency from the mean interval across
// consecutive parturition pairs. The bool result reports whether a mean could
// be computed; without one the neutral 85 applies.
func historyFactor(parturitions []time.Time, parity int) (float64, bool) {
	if parity < 2 || len(parturitions) < 2 {
		return 85, false
	}
	var total float64
	pairs := 0
	for i := 1; i < len(parturitions); i++ {
		gap := daysBetween(parturitions[i-1], parturitions[i])
		if gap <= 0 {
			continue
		}
		total += float64(gap)
		pairs++
	}
	if pairs == 0 {
		return 85, false
	}
	mean := total / float64(pairs)
	switch {
	case mean <= 400:
		return 100, true
	case mean <= 450:
		return 70, true
	case mean <= 500:
		return 40, true
	default:
		return 10, true
	}
}

// lactationLoadFactor penalizes breeding during the metabolic peak of an open
// lactation. The bool result reports whether the female is lactating.
func lactationLoadFactor(cycle *domain.LactationCycle, asOf time.Time) (float64, bool) {
	if cycle == nil || cycle.Status != domain.CycleLactating {
		return 100, false
	}
	days := daysBetween(cycle.ParturitionDate, asOf)
	if days >= lactationPeakStart && days <= lactationPeakEnd {
		return lactationPeakPenalty, true
	}
	return 100, true
}

func femaleJustifications(parous bool, dpp *int, readiness, histScore float64, histKnown bool, lactation float64) []string {
	var out []string
	switch {
	case parous && readiness == 100:
		out = append(out, "ideal post-parturition window")
	case parous && dpp != nil && *dpp < voluntaryWaitDays:
		out = append(out, "awaiting voluntary waiting period")
	case parous && dpp != nil && *dpp > idealPostpartumDays:
		out = append(out, "elevated days-open")
	case parous && dpp == nil:
		out = append(out, "parturition date unknown")
	case !parous && readiness == 100:
		out = append(out, "heifer in ideal first-breeding window")
	case !parous && readiness == 0:
		out = append(out, "outside first-breeding age window")
	}
	if histKnown {
		switch {
		case histScore == 100:
			out = append(out, "excellent calving-interval history")
		case histScore <= 40:
			out = append(out, "long calving intervals on record")
		}
	}
	if lactation == lactationPeakPenalty {
		out = append(out, "in lactation peak")
	}
	return out
}
