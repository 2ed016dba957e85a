package similarity

// WordOverlap returns the Jaccard index of the two token sets. Two empty
// sentences have no overlap.
func WordOverlap(a, b []string) float64 {
	return jaccard(tokenSet(a), tokenSet(b))
}

// SentenceLengths returns the length difference relative to the shorter
// sentence. An empty sentence is maximally different: 1.0.
func SentenceLengths(a, b []string) float64 {
	shorter := min(len(a), len(b))
	if shorter == 0 {
		return 1.0
	}
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) / float64(shorter)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// jaccard computes |a∩b| / |a∪b|, 0 for an empty union.
func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}
