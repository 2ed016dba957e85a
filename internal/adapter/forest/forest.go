package forest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"semrel/internal/domain"
	"semrel/internal/port"
)

var _ port.Regressor = (*Regressor)(nil)

// Regressor fits bagged randomized regression trees.
type Regressor struct {
	config Config
	logger *slog.Logger
}

// New validates config and returns a Regressor.
func New(config Config, logger *slog.Logger) (*Regressor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Regressor{config: config, logger: logger}, nil
}

// Fit grows the trees in parallel. Tree i draws from its own generator
// seeded with Seed+i, so the result does not depend on scheduling.
func (r *Regressor) Fit(ctx context.Context, x [][]float64, y []float64) (port.Model, error) {
	return r.FitForest(ctx, x, y)
}

// FitForest is Fit returning the concrete forest.
func (r *Regressor) FitForest(ctx context.Context, x [][]float64, y []float64) (*Forest, error) {
	if len(x) == 0 {
		return nil, &domain.ConfigurationError{Field: "matrix", Reason: "no training rows"}
	}
	if len(x) != len(y) {
		return nil, &domain.ConfigurationError{Field: "matrix", Reason: fmt.Sprintf("%d rows but %d targets", len(x), len(y))}
	}
	features := len(x[0])
	if features == 0 {
		return nil, &domain.ConfigurationError{Field: "matrix", Reason: "rows have no features"}
	}
	for i, row := range x {
		if len(row) != features {
			return nil, &domain.ConfigurationError{Field: "matrix", Reason: fmt.Sprintf("row %d has %d features, expected %d", i, len(row), features)}
		}
	}

	start := time.Now()
	forest := &Forest{
		Kind:     r.config.Kind,
		Features: features,
		Trees:    make([]*Tree, r.config.Trees),
	}

	g, ctx := errgroup.WithContext(ctx)
	if r.config.Workers > 0 {
		g.SetLimit(r.config.Workers)
	}
	for i := range forest.Trees {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(r.config.Seed + int64(i)))
			forest.Trees[i] = buildTree(r.config, x, y, r.sample(len(x), rng), rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fit cancelled: %w", err)
	}

	r.logger.Debug("forest fitted",
		"kind", r.config.Kind,
		"trees", r.config.Trees,
		"rows", len(x),
		"features", features,
		"duration_ms", time.Since(start).Milliseconds())

	return forest, nil
}

func (r *Regressor) sample(n int, rng *rand.Rand) []int {
	samples := make([]int, n)
	if !r.config.Bootstrap {
		for i := range samples {
			samples[i] = i
		}
		return samples
	}
	for i := range samples {
		samples[i] = rng.Intn(n)
	}
	return samples
}

// Forest is a fitted ensemble. It serializes to JSON.
type Forest struct {
	Kind     string  `json:"kind"`
	Features int     `json:"features"`
	Trees    []*Tree `json:"trees"`
}

// Predict averages the tree predictions for each row.
func (f *Forest) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		sum := 0.0
		for _, t := range f.Trees {
			sum += t.predict(row)
		}
		out[i] = sum / float64(len(f.Trees))
	}
	return out
}

// Score returns the coefficient of determination of the predictions on x.
func (f *Forest) Score(x [][]float64, y []float64) float64 {
	return R2(y, f.Predict(x))
}

// Importances returns the normalized mean variance reduction per feature.
func (f *Forest) Importances() []float64 {
	out := make([]float64, f.Features)
	for _, t := range f.Trees {
		total := 0.0
		for _, v := range t.Importance {
			total += v
		}
		if total == 0 {
			continue
		}
		for i, v := range t.Importance {
			out[i] += v / total
		}
	}
	sum := 0.0
	for _, v := range out {
		sum += v
	}
	if sum > 0 {
		for i := range out {
			out[i] /= sum
		}
	}
	return out
}

func (f *Forest) MarshalModel() ([]byte, error) {
	return json.Marshal(f)
}

// Unmarshal restores a forest written by MarshalModel.
func Unmarshal(data []byte) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode forest: %w", err)
	}
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	return &f, nil
}

// R2 is 1 - SS_res/SS_tot. A constant target scores 1 when predicted
// exactly and 0 otherwise.
func R2(y, predicted []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	for i, v := range y {
		d := v - predicted[i]
		ssRes += d * d
		m := v - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
