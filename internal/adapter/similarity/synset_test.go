package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"semrel/internal/domain"
)

// stubInventory is a tiny taxonomy:
//
//	entity <- animal <- {cat, dog}
//	entity <- artifact <- mat
type stubInventory struct {
	senses  map[string][]domain.Synset
	parents map[string]string
}

func newStubInventory() *stubInventory {
	return &stubInventory{
		senses: map[string][]domain.Synset{
			"cat": {
				{ID: "cat.n.01", Lemmas: []string{"cat", "true_cat"}},
				{ID: "cat.n.02", Lemmas: []string{"guy", "cat", "hombre"}},
			},
			"dog": {{ID: "dog.n.01", Lemmas: []string{"dog", "domestic_dog"}}},
			"mat": {{ID: "mat.n.01", Lemmas: []string{"mat"}}},
			"feline": {{ID: "cat.n.01", Lemmas: []string{"cat", "true_cat"}}},
		},
		parents: map[string]string{
			"cat.n.01":      "animal.n.01",
			"dog.n.01":      "animal.n.01",
			"cat.n.02":      "person.n.01",
			"person.n.01":   "entity.n.01",
			"mat.n.01":      "artifact.n.01",
			"animal.n.01":   "entity.n.01",
			"artifact.n.01": "entity.n.01",
		},
	}
}

func (s *stubInventory) NounSenses(lemma string) []domain.Synset {
	return s.senses[lemma]
}

func (s *stubInventory) ancestors(id string) map[string]int {
	out := map[string]int{id: 0}
	for d := 1; ; d++ {
		parent, ok := s.parents[id]
		if !ok {
			return out
		}
		out[parent] = d
		id = parent
	}
}

func (s *stubInventory) PathSimilarity(a, b string) float64 {
	ancA, ancB := s.ancestors(a), s.ancestors(b)
	best := -1
	for node, da := range ancA {
		if db, ok := ancB[node]; ok && (best < 0 || da+db < best) {
			best = da + db
		}
	}
	if best < 0 {
		return 0
	}
	return 1 / float64(best+1)
}

func TestSynsetOverlap(t *testing.T) {
	sim := NewSynsetSimilarity(newStubInventory(), 5)

	assert.InDelta(t, 1.0, sim.Overlap([]string{"cat"}, []string{"cat"}), 1e-9)

	// {cat,true_cat,guy,hombre} vs {cat,true_cat}
	assert.InDelta(t, 0.5, sim.Overlap([]string{"cat"}, []string{"feline"}), 1e-9)
	assert.InDelta(t, 0.0, sim.Overlap([]string{"dog"}, []string{"mat"}), 1e-9)
	assert.InDelta(t, 0.0, sim.Overlap([]string{"unknown"}, []string{"other"}), 1e-9, "empty lemma sets")
}

func TestSynsetOverlap_SenseLimit(t *testing.T) {
	sim := NewSynsetSimilarity(newStubInventory(), 1)
	assert.InDelta(t, 1.0, sim.Overlap([]string{"cat"}, []string{"feline"}), 1e-9)
}

func TestSynsetOverlap_SymmetricAndBounded(t *testing.T) {
	sim := NewSynsetSimilarity(newStubInventory(), 5)
	sentences := [][]string{
		{"cat", "sat", "mat"},
		{"dog"},
		{},
		{"feline", "dog"},
	}
	for _, a := range sentences {
		for _, b := range sentences {
			got := sim.Overlap(a, b)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
			assert.InDelta(t, got, sim.Overlap(b, a), 1e-12)
		}
	}
}

func TestSynsetDistance(t *testing.T) {
	sim := NewSynsetSimilarity(newStubInventory(), 5)

	// cat vs dog: cat.n.01 -> animal <- dog.n.01, path 2
	assert.InDelta(t, 1.0/3.0, sim.Distance([]string{"cat"}, []string{"dog"}), 1e-9)

	// cat vs mat: cat.n.01 -> animal -> entity <- artifact <- mat, path 4
	assert.InDelta(t, 1.0/5.0, sim.Distance([]string{"cat"}, []string{"mat"}), 1e-9)

	// Tokens without senses are excluded from the denominator.
	assert.InDelta(t, 1.0/3.0, sim.Distance([]string{"the", "cat", "sit"}, []string{"dog"}), 1e-9)
}

func TestSynsetDistance_SelfIsMaximal(t *testing.T) {
	sim := NewSynsetSimilarity(newStubInventory(), 5)
	a := []string{"the", "cat", "on", "mat"}
	assert.InDelta(t, 1.0, sim.Distance(a, a), 1e-9)
}

func TestSynsetDistance_NoPositiveSimilarity(t *testing.T) {
	sim := NewSynsetSimilarity(newStubInventory(), 5)
	assert.Equal(t, 0.0, sim.Distance([]string{"the", "a"}, []string{"dog"}))
	assert.Equal(t, 0.0, sim.Distance([]string{"cat"}, nil))
	assert.Equal(t, 0.0, sim.Distance(nil, nil))
}
