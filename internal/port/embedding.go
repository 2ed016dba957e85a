package port

// EmbeddingTable maps lowercase tokens (and underscore-joined n-grams) to
// fixed-dimension vectors. Implementations are read-only after load.
type EmbeddingTable interface {
	// Lookup returns the vector for token, or false when it is absent.
	Lookup(token string) ([]float32, bool)

	// Contains reports whether token has a vector.
	Contains(token string) bool

	// Dimension returns the vector dimension.
	Dimension() int

	// Len returns the vocabulary size.
	Len() int
}
