package external

import (
	"fmt"
	"math"

	"semrel/internal/adapter/labels"
	"semrel/internal/domain"
)

// Values are the numeric forms of a signal bundle.
type Values struct {
	Prediction      float64
	Prover          float64
	DomainNovelty   float64
	RelationNovelty float64
	WordNetNovelty  float64
	ModelNovelty    float64
	WordOverlap     float64
	ComplexityA     float64
	ComplexityB     float64
	ComplexityDiff  float64
}

// Adapter turns signal bundles into numeric feature values. Categorical
// signals are mapped through the injected registries.
type Adapter struct {
	predictions *labels.Registry
	provers     *labels.Registry
}

func NewAdapter(predictions, provers *labels.Registry) *Adapter {
	return &Adapter{
		predictions: predictions,
		provers:     provers,
	}
}

// Columns passes the reals through, maps the prediction and prover verdict
// to their ids and derives the absolute complexity difference.
func (a *Adapter) Columns(bundle domain.SignalBundle) (Values, error) {
	prediction, err := a.predictions.ID(bundle.Prediction)
	if err != nil {
		return Values{}, fmt.Errorf("pair %d: %w", bundle.PairID, err)
	}
	prover, err := a.provers.ID(bundle.Prover)
	if err != nil {
		return Values{}, fmt.Errorf("pair %d: %w", bundle.PairID, err)
	}

	return Values{
		Prediction:      float64(prediction),
		Prover:          float64(prover),
		DomainNovelty:   bundle.DomainNovelty,
		RelationNovelty: bundle.RelationNovelty,
		WordNetNovelty:  bundle.WordNetNovelty,
		ModelNovelty:    bundle.ModelNovelty,
		WordOverlap:     bundle.WordOverlap,
		ComplexityA:     bundle.ComplexityA,
		ComplexityB:     bundle.ComplexityB,
		ComplexityDiff:  math.Abs(bundle.ComplexityA - bundle.ComplexityB),
	}, nil
}
