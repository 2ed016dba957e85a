package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordOverlap(t *testing.T) {
	tests := []struct {
		name     string
		a        []string
		b        []string
		expected float64
	}{
		{"identical", []string{"a", "cat", "sat"}, []string{"a", "cat", "sat"}, 1.0},
		{"determiner swapped", []string{"the", "cat", "sat"}, []string{"a", "cat", "sat"}, 2.0 / 4.0},
		{"no overlap", []string{"dog"}, []string{"cat"}, 0.0},
		{"duplicates collapse", []string{"cat", "cat"}, []string{"cat"}, 1.0},
		{"one empty", []string{}, []string{"cat"}, 0.0},
		{"both empty", nil, nil, 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := WordOverlap(tc.a, tc.b)
			assert.InDelta(t, tc.expected, got, 1e-9)
			assert.InDelta(t, got, WordOverlap(tc.b, tc.a), 1e-12, "overlap must be symmetric")
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestWordOverlap_SharedTokens(t *testing.T) {
	// "cat" and "sat" shared, "the" only on the left: 2 of 3 distinct tokens.
	a := []string{"the", "cat", "sat"}
	b := []string{"cat", "sat"}
	assert.InDelta(t, 0.67, WordOverlap(a, b), 0.01)
}

func TestSentenceLengths(t *testing.T) {
	tests := []struct {
		name     string
		a        []string
		b        []string
		expected float64
	}{
		{"equal", []string{"a", "b"}, []string{"c", "d"}, 0.0},
		{"one longer", []string{"a", "b", "c"}, []string{"a", "b"}, 0.5},
		{"double", []string{"a", "b", "c", "d"}, []string{"a", "b"}, 1.0},
		{"empty side", []string{}, []string{"a", "b"}, 1.0},
		{"both empty", nil, nil, 1.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, SentenceLengths(tc.a, tc.b), 1e-9)
			assert.Equal(t, SentenceLengths(tc.a, tc.b), SentenceLengths(tc.b, tc.a))
		})
	}
}
