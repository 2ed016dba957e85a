package port

import "semrel/internal/domain"

// SenseInventory exposes WordNet noun senses.
type SenseInventory interface {
	// NounSenses returns the noun senses of lemma ordered by sense number.
	// An unknown lemma yields no senses, not an error.
	NounSenses(lemma string) []domain.Synset

	// PathSimilarity returns 1/(shortest hypernym path + 1), or 0 when the
	// two synsets share no ancestor.
	PathSimilarity(a, b string) float64
}

// Lemmatizer reduces a word to its base form.
type Lemmatizer interface {
	Lemmatize(word string) string
}
