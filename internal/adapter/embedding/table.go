package embedding

import "fmt"

// Table is a dense in-memory embedding table: one flat float32 slice indexed
// by token id.
type Table struct {
	ids       map[string]int
	tokens    []string
	vectors   []float32
	dimension int
}

// NewTable creates an empty table of the given dimension.
func NewTable(dimension int) *Table {
	return &Table{
		ids:       make(map[string]int),
		dimension: dimension,
	}
}

// Add stores vec for token. A repeated token overwrites the earlier vector.
func (t *Table) Add(token string, vec []float32) error {
	if len(vec) != t.dimension {
		return fmt.Errorf("vector dimension mismatch for %q: expected %d, got %d", token, t.dimension, len(vec))
	}
	if id, ok := t.ids[token]; ok {
		copy(t.vectors[id*t.dimension:(id+1)*t.dimension], vec)
		return nil
	}
	t.ids[token] = len(t.tokens)
	t.tokens = append(t.tokens, token)
	t.vectors = append(t.vectors, vec...)
	return nil
}

// Lookup returns the vector for token. The returned slice aliases table
// storage and must not be modified.
func (t *Table) Lookup(token string) ([]float32, bool) {
	id, ok := t.ids[token]
	if !ok {
		return nil, false
	}
	return t.vectors[id*t.dimension : (id+1)*t.dimension : (id+1)*t.dimension], true
}

func (t *Table) Contains(token string) bool {
	_, ok := t.ids[token]
	return ok
}

func (t *Table) Dimension() int {
	return t.dimension
}

func (t *Table) Len() int {
	return len(t.tokens)
}

// Each calls fn for every token in insertion order and stops at the first error.
func (t *Table) Each(fn func(token string, vec []float32) error) error {
	for id, token := range t.tokens {
		if err := fn(token, t.vectors[id*t.dimension:(id+1)*t.dimension]); err != nil {
			return err
		}
	}
	return nil
}
