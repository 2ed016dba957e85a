package similarity

import (
	"semrel/internal/port"
)

// SynsetSimilarity compares sentences through their WordNet noun senses.
type SynsetSimilarity struct {
	inventory port.SenseInventory
	senses    int
}

// NewSynsetSimilarity creates a comparer that considers the first senses
// noun senses of every token for overlap.
func NewSynsetSimilarity(inventory port.SenseInventory, senses int) *SynsetSimilarity {
	if senses <= 0 {
		senses = 5
	}
	return &SynsetSimilarity{
		inventory: inventory,
		senses:    senses,
	}
}

// Overlap returns the Jaccard index of the lemma names reachable from the
// leading noun senses of each sentence's tokens.
func (s *SynsetSimilarity) Overlap(a, b []string) float64 {
	return jaccard(s.lemmaSet(a), s.lemmaSet(b))
}

func (s *SynsetSimilarity) lemmaSet(sentence []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range sentence {
		senses := s.inventory.NounSenses(word)
		if len(senses) > s.senses {
			senses = senses[:s.senses]
		}
		for _, synset := range senses {
			for _, lemma := range synset.Lemmas {
				set[lemma] = struct{}{}
			}
		}
	}
	return set
}

// Distance averages, over the tokens of a, the best path similarity between
// the token's first noun sense and any noun sense of any token in b. Tokens
// with no positive similarity are left out of the average; when no token
// qualifies the result is 0.
func (s *SynsetSimilarity) Distance(a, b []string) float64 {
	targets := make([]string, 0, len(b))
	seen := make(map[string]struct{})
	for _, word := range b {
		for _, synset := range s.inventory.NounSenses(word) {
			if _, ok := seen[synset.ID]; ok {
				continue
			}
			seen[synset.ID] = struct{}{}
			targets = append(targets, synset.ID)
		}
	}

	var sum float64
	counted := 0
	for _, word := range a {
		best := s.bestSimilarity(word, targets)
		if best > 0 {
			sum += best
			counted++
		}
	}

	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

func (s *SynsetSimilarity) bestSimilarity(word string, targets []string) float64 {
	senses := s.inventory.NounSenses(word)
	if len(senses) == 0 {
		return 0
	}
	first := senses[0].ID

	best := 0.0
	for _, target := range targets {
		if sim := s.inventory.PathSimilarity(first, target); sim > best {
			best = sim
		}
	}
	return best
}
