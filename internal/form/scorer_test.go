package form

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantmatch/internal/model"
)

func testCatalog() []model.Plant {
	return []model.Plant{
		{Name: "Snake Plant", Tags: []string{"low_maintenance", "shade_tolerant", "air_purifying"}},
		{Name: "Fiddle Leaf Fig", Tags: []string{"high_maintenance", "sun_lover", "dramatic"}},
		{Name: "Pothos", Tags: []string{"low_maintenance", "trailing", "shade_tolerant"}},
	}
}

func TestScoreClearWinner(t *testing.T) {
	catalog := []model.Plant{
		{Name: "A", Tags: []string{"low_maintenance"}},
		{Name: "B", Tags: []string{"high_maintenance"}},
	}

	// normalized gap is 1.0, far beyond noise plus tie window, so the
	// outcome is the same whatever the seed
	for seed := int64(0); seed < 20; seed++ {
		scorer := NewScorer(rand.NewSource(seed))
		selected, _ := scorer.Score([]string{"low_maintenance"}, catalog)
		require.Equal(t, "A", selected.Plant.Name, "seed %d", seed)
		assert.Equal(t, 1, selected.RawScore)
	}
}

func TestScoreTagMultiplicity(t *testing.T) {
	scorer := NewScorer(rand.NewSource(1))
	tags := []string{"low_maintenance", "low_maintenance", "low_maintenance"}
	_, ranked := scorer.Score(tags, testCatalog())

	for _, r := range ranked {
		if r.Plant.Name == "Snake Plant" {
			assert.Equal(t, 3, r.RawScore)
			assert.InDelta(t, 1.0, r.NormalizedScore, 1e-9)
		}
	}
}

func TestScoreSelectionWithinTieWindow(t *testing.T) {
	tags := []string{"low_maintenance", "shade_tolerant"}
	catalog := testCatalog()

	for seed := int64(0); seed < 50; seed++ {
		scorer := NewScorer(rand.NewSource(seed))
		selected, ranked := scorer.Score(tags, catalog)

		top := ranked[0].FinalScore
		assert.Less(t, math.Abs(selected.FinalScore-top), 0.15, "seed %d", seed)
	}
}

func TestScoreRankingSorted(t *testing.T) {
	scorer := NewScorer(rand.NewSource(7))
	_, ranked := scorer.Score([]string{"sun_lover", "dramatic"}, testCatalog())

	require.Len(t, ranked, 3)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].FinalScore, ranked[i].FinalScore)
	}
}

func TestScoreZeroTagItem(t *testing.T) {
	catalog := []model.Plant{
		{Name: "Tagless"},
		{Name: "Match", Tags: []string{"x"}},
	}
	scorer := NewScorer(rand.NewSource(3))
	_, ranked := scorer.Score([]string{"x"}, catalog)

	for _, r := range ranked {
		if r.Plant.Name == "Tagless" {
			assert.Equal(t, 0, r.RawScore)
			assert.Equal(t, 0.0, r.NormalizedScore)
		}
	}
}

func TestScoreEmptyCatalog(t *testing.T) {
	scorer := NewScorer(rand.NewSource(1))
	selected, ranked := scorer.Score([]string{"x"}, nil)
	assert.Empty(t, selected.Plant.Name)
	assert.Nil(t, ranked)
}

func TestScoreSeededReproducibility(t *testing.T) {
	tags := []string{"low_maintenance", "trailing"}
	a1, _ := NewScorer(rand.NewSource(42)).Score(tags, testCatalog())
	a2, _ := NewScorer(rand.NewSource(42)).Score(tags, testCatalog())
	assert.Equal(t, a1.Plant.Name, a2.Plant.Name)
	assert.Equal(t, a1.FinalScore, a2.FinalScore)
}
