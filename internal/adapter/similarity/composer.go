package similarity

import (
	"math"
	"strings"

	"semrel/internal/port"
)

// Composer builds additive sentence vectors from an embedding table.
type Composer struct {
	table       port.EmbeddingTable
	useBigrams  bool
	useTrigrams bool
}

// NewComposer creates a composer over a shared, read-only table.
func NewComposer(table port.EmbeddingTable, useBigrams, useTrigrams bool) *Composer {
	return &Composer{
		table:       table,
		useBigrams:  useBigrams,
		useTrigrams: useTrigrams,
	}
}

// Dimension returns the dimension of composed vectors.
func (c *Composer) Dimension() int {
	return c.table.Dimension()
}

// BigramTokens returns one entry per adjacent token pair: the joined key
// when the table has it, else the empty placeholder. Nil when bigrams are off.
func (c *Composer) BigramTokens(sentence []string) []string {
	if !c.useBigrams {
		return nil
	}
	return c.ngrams(sentence, 2)
}

// TrigramTokens is BigramTokens for windows of three.
func (c *Composer) TrigramTokens(sentence []string) []string {
	if !c.useTrigrams {
		return nil
	}
	return c.ngrams(sentence, 3)
}

func (c *Composer) ngrams(sentence []string, n int) []string {
	if len(sentence) < n {
		return []string{}
	}
	out := make([]string, 0, len(sentence)-n+1)
	for i := 0; i+n <= len(sentence); i++ {
		key := strings.Join(sentence[i:i+n], "_")
		if c.table.Contains(key) {
			out = append(out, key)
		} else {
			out = append(out, "")
		}
	}
	return out
}

// Compose sums the vectors of every unigram and enabled n-gram found in the
// table. Absent tokens contribute nothing, so an all-OOV sentence yields the
// zero vector.
func (c *Composer) Compose(sentence []string) []float64 {
	sum := make([]float64, c.table.Dimension())

	add := func(tokens []string) {
		for _, token := range tokens {
			if token == "" {
				continue
			}
			vec, ok := c.table.Lookup(token)
			if !ok {
				continue
			}
			for i, v := range vec {
				sum[i] += float64(v)
			}
		}
	}

	add(sentence)
	add(c.BigramTokens(sentence))
	add(c.TrigramTokens(sentence))

	return sum
}

// PairwiseProduct returns the element-wise product of the composed vectors.
func (c *Composer) PairwiseProduct(a, b []string) []float64 {
	va := c.Compose(a)
	vb := c.Compose(b)
	for i := range va {
		va[i] *= vb[i]
	}
	return va
}

// CosineDistance returns 1 - cosine similarity of the composed vectors.
// A zero vector on either side has no direction; the distance is then 1.0.
func (c *Composer) CosineDistance(a, b []string) float64 {
	return cosineDistance(c.Compose(a), c.Compose(b))
}

func cosineDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return 1.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 1.0
	}

	d := 1 - dotProduct/math.Sqrt(normA*normB)
	switch {
	case d < 0:
		return 0
	case d > 2:
		return 2
	}
	return d
}
