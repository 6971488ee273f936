package form

import (
	"math/rand"
	"sort"

	"plantmatch/internal/model"
)

const (
	// noiseSpread is the width of the uniform noise added to each
	// normalized score so near-ties do not always resolve identically.
	noiseSpread = 0.1

	// tieWindow bounds the candidate pool: every item whose final score
	// is within this distance of the top score may be selected.
	tieWindow = 0.15
)

// Scorer matches a collected tag sequence against a catalog. Selection
// is deliberately randomized among near-top candidates; pass a seeded
// source for reproducible results.
type Scorer struct {
	rnd *rand.Rand
}

// NewScorer builds a scorer over the given random source.
func NewScorer(src rand.Source) *Scorer {
	return &Scorer{rnd: rand.New(src)}
}

// Score ranks the catalog against the tag sequence and picks uniformly
// among items within tieWindow of the top final score. Tag multiplicity
// counts: a tag appearing three times scores three for any item owning
// it. The returned slice is the full ranking, best first; the selected
// item is always rank-competitive but not necessarily rank 0.
func (s *Scorer) Score(tags []string, catalog []model.Plant) (model.Result, []model.Result) {
	if len(catalog) == 0 {
		return model.Result{}, nil
	}

	counts := make(map[string]int, len(tags))
	for _, t := range tags {
		counts[t]++
	}

	ranked := make([]model.Result, 0, len(catalog))
	for _, plant := range catalog {
		raw := 0
		for _, t := range plant.Tags {
			raw += counts[t]
		}

		denom := len(plant.Tags)
		if denom == 0 {
			denom = 1
		}
		norm := float64(raw) / float64(denom)

		ranked = append(ranked, model.Result{
			Plant:           plant,
			RawScore:        raw,
			NormalizedScore: norm,
			FinalScore:      norm + s.rnd.Float64()*noiseSpread,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	top := ranked[0].FinalScore
	n := 1
	for n < len(ranked) && top-ranked[n].FinalScore < tieWindow {
		n++
	}
	return ranked[s.rnd.Intn(n)], ranked
}
