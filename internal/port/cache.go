package port

import "semrel/internal/domain"

// FeatureCache persists the train and test matrices of a run.
type FeatureCache interface {
	// GetMatrices returns the cached matrices for inputKey. ok is false when
	// nothing usable is cached; a cache built under a different schema
	// returns *domain.SchemaMismatchError.
	GetMatrices(schema domain.Schema, inputKey string) (train, test domain.Matrix, ok bool, err error)

	PutMatrices(schema domain.Schema, inputKey string, train, test domain.Matrix) error
}
