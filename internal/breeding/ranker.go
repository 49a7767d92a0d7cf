package breeding

import (
	"context"
	"sort"
	"sync"
	"time"

	"herdcore/pkg/domain"
)

// defaultFetchConcurrency bounds the parallel per-candidate history fetches.
const defaultFetchConcurrency = 8

// RankRequest selects the candidate pool to score.
type RankRequest struct {
	PropertyID string
	// Sex filters candidates; empty ranks both sexes in one list.
	Sex domain.Sex
	// Limit truncates the result when positive.
	Limit int
	// AsOf is the scoring date; the zero value means now.
	AsOf time.Time
}

// Ranker orchestrates repository reads, scoring, and ordering. It never
// mutates state. Candidates whose history cannot be scored for data reasons
// are returned with score 0 and an explanatory justification so that callers
// can audit data completeness.
type Ranker struct {
	repo        Repository
	females     FemaleAptitudeScorer
	males       MaleValueScorer
	concurrency int
	now         func() time.Time
}

// NewRanker constructs a ranker over the given repository.
func NewRanker(repo Repository) *Ranker {
	return &Ranker{
		repo:        repo,
		concurrency: defaultFetchConcurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the ranker's clock. Intended for tests.
func (r *Ranker) WithClock(now func() time.Time) *Ranker {
	r.now = now
	return r
}

// Rank fetches eligible candidates, scores them in parallel, and returns them
// ordered by descending score with ties broken by ascending id.
func (r *Ranker) Rank(ctx context.Context, req RankRequest) ([]domain.ScoreResult, error) {
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = r.now()
	}

	candidates, err := r.gatherCandidates(ctx, req, asOf)
	if err != nil {
		return nil, err
	}

	var herd domain.ConceptionStats
	if req.Sex != domain.SexFemale {
		herd, err = r.repo.GetHerdConceptionStats(ctx, req.PropertyID)
		if err != nil {
			return nil, err
		}
	}

	results, err := r.scoreAll(ctx, candidates, herd, asOf)
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].AnimalID < results[j].AnimalID
	})
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

// gatherCandidates lists the requested sexes, deduplicates by id, and drops
// candidates past the in-process age ceiling. The age floor is delegated to
// the repository query.
func (r *Ranker) gatherCandidates(ctx context.Context, req RankRequest, asOf time.Time) ([]domain.Animal, error) {
	var pool []domain.Animal
	if req.Sex == "" || req.Sex == domain.SexFemale {
		females, err := r.repo.ListEligibleFemales(ctx, req.PropertyID, FemaleMinAgeMonths)
		if err != nil {
			return nil, err
		}
		pool = append(pool, females...)
	}
	if req.Sex == "" || req.Sex == domain.SexMale {
		males, err := r.repo.ListEligibleMales(ctx, req.PropertyID, MaleMinAgeMonths)
		if err != nil {
			return nil, err
		}
		pool = append(pool, males...)
	}

	seen := make(map[string]struct{}, len(pool))
	out := make([]domain.Animal, 0, len(pool))
	for _, candidate := range pool {
		if _, dup := seen[candidate.ID]; dup {
			continue
		}
		seen[candidate.ID] = struct{}{}
		if candidate.BirthDate != nil {
			years := WholeYears(*candidate.BirthDate, asOf)
			if candidate.Sex == domain.SexFemale && years > FemaleMaxAgeYears {
				continue
			}
			if candidate.Sex == domain.SexMale && years > MaleMaxAgeYears {
				continue
			}
		}
		out = append(out, candidate)
	}
	return out, nil
}

// scoreAll runs the per-candidate history fetch and scoring as a bounded
// scatter-gather; the scorers themselves stay pure and are safe to evaluate
// concurrently.
func (r *Ranker) scoreAll(ctx context.Context, candidates []domain.Animal, herd domain.ConceptionStats, asOf time.Time) ([]domain.ScoreResult, error) {
	results := make([]domain.ScoreResult, len(candidates))
	errs := make([]error, len(candidates))

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate domain.Animal) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = r.scoreOne(ctx, candidate, herd, asOf)
		}(i, candidate)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ScoreCandidate scores a single animal by id. Males are scored against the
// herd conception baseline of their own property.
func (r *Ranker) ScoreCandidate(ctx context.Context, animalID string, asOf time.Time) (domain.ScoreResult, error) {
	if asOf.IsZero() {
		asOf = r.now()
	}
	candidate, err := r.repo.GetAnimal(ctx, animalID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	var herd domain.ConceptionStats
	if candidate.Sex == domain.SexMale {
		herd, err = r.repo.GetHerdConceptionStats(ctx, candidate.PropertyID)
		if err != nil {
			return domain.ScoreResult{}, err
		}
	}
	return r.scoreOne(ctx, candidate, herd, asOf)
}

func (r *Ranker) scoreOne(ctx context.Context, candidate domain.Animal, herd domain.ConceptionStats, asOf time.Time) (domain.ScoreResult, error) {
	if candidate.BirthDate == nil {
		return domain.ScoreResult{
			AnimalID:       candidate.ID,
			Score:          0,
			Justifications: []string{"birth date missing; candidate cannot be scored"},
		}, nil
	}
	if candidate.Sex == domain.SexMale {
		outcomes, err := r.repo.GetBreedingHistory(ctx, candidate.ID)
		if err != nil {
			return domain.ScoreResult{}, err
		}
		return r.males.Score(candidate, outcomes, herd, asOf), nil
	}

	cycle, err := r.repo.CurrentLactation(ctx, candidate.ID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	parity, err := r.repo.CountCompletedCycles(ctx, candidate.ID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	dates, err := r.repo.ParturitionDates(ctx, candidate.ID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	history := FemaleHistory{Parity: parity, ParturitionDates: dates, CurrentCycle: cycle}
	return r.females.Score(candidate, history, asOf), nil
}
