package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SentencePair is one labeled corpus row.
type SentencePair struct {
	ID int
	// RawA and RawB are the whitespace tokens as they appear in the corpus.
	RawA []string
	RawB []string
	// A and B are the lowercase lemmas used by the feature extractors.
	A           []string
	B           []string
	Relatedness float64
	Judgment    string
	JudgmentID  int
	Labeled     bool
}

// SignalBundle carries the externally computed signals for one pair.
type SignalBundle struct {
	PairID          int
	Prediction      string
	Prover          string
	DomainNovelty   float64
	RelationNovelty float64
	WordNetNovelty  float64
	ModelNovelty    float64
	WordOverlap     float64
	ComplexityA     float64
	ComplexityB     float64
}

// Synset is a WordNet sense: the synonymous lemmas and its hypernym links.
type Synset struct {
	ID        string
	Lemmas    []string
	Hypernyms []string
}

// FeatureVector is one row of the feature matrix, ordered by Schema.Columns.
type FeatureVector []float64

// Schema is the ordered list of feature columns. Any change to it must bump
// Version so cached matrices are rebuilt.
type Schema struct {
	Version int
	Columns []string
}

// Fingerprint identifies the exact column list.
func (s Schema) Fingerprint() string {
	hash := sha256.Sum256([]byte(strings.Join(s.Columns, "\x00")))
	return hex.EncodeToString(hash[:8])
}

// Len returns the number of columns.
func (s Schema) Len() int {
	return len(s.Columns)
}

// Matrix is a feature matrix with its targets and the pair ids of each row.
type Matrix struct {
	Columns []string
	PairIDs []int
	Rows    [][]float64
	Targets []float64
}

// Len returns the number of rows.
func (m Matrix) Len() int {
	return len(m.Rows)
}

// Append adds one row.
func (m *Matrix) Append(pairID int, row FeatureVector, target float64) {
	m.PairIDs = append(m.PairIDs, pairID)
	m.Rows = append(m.Rows, row)
	m.Targets = append(m.Targets, target)
}
