package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"semrel/config"
	"semrel/internal/adapter/analyzer"
	"semrel/internal/adapter/corpus"
	"semrel/internal/adapter/embedding"
	"semrel/internal/adapter/external"
	"semrel/internal/adapter/labels"
	"semrel/internal/adapter/report"
	"semrel/internal/adapter/retry"
	"semrel/internal/adapter/similarity"
	"semrel/internal/adapter/store"
	"semrel/internal/adapter/wordnet"
	"semrel/internal/domain"
	"semrel/internal/port"
	"semrel/internal/usecase"
)

// pipeline holds the collaborators shared by the commands.
type pipeline struct {
	cfg     *config.Config
	dir     string
	store   *store.BoltStore
	cache   port.FeatureCache
	printer *report.Printer
}

func openPipeline() (*pipeline, error) {
	dir := GetRootDir()
	cfg := GetConfig()

	if err := config.EnsureWorkDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create .semrel directory: %w", err)
	}
	st, err := store.NewBoltStore(config.CacheDBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	return &pipeline{
		cfg:     cfg,
		dir:     dir,
		store:   st,
		cache:   st,
		printer: report.NewPrinter(os.Stdout, os.Stderr),
	}, nil
}

func (p *pipeline) Close() error {
	return p.store.Close()
}

func (p *pipeline) path(name string) string {
	return config.Resolve(p.dir, name)
}

// embeddings returns the embedding table, from the cache when it was built
// from the current version of the text file.
func (p *pipeline) embeddings(force bool) (*embedding.Table, error) {
	path := p.path(p.cfg.Embedding.Path)
	source, err := store.StatSource(path)
	if err != nil {
		return nil, fmt.Errorf("embedding file: %w", err)
	}

	if p.cfg.Embedding.Cache && !force {
		table, ok, err := p.store.GetEmbeddings(source)
		if err != nil {
			logger.Warn("embedding cache unreadable, reloading", "error", err)
		} else if ok {
			logger.Debug("embeddings loaded from cache", "tokens", table.Len(), "dimension", table.Dimension())
			return table, nil
		}
	}

	table, err := embedding.LoadTextFile(path, true)
	if err != nil {
		return nil, err
	}
	logger.Info("embeddings loaded", "path", path, "tokens", table.Len(), "dimension", table.Dimension())

	if p.cfg.Embedding.Cache {
		if err := p.store.PutEmbeddings(table, source, p.cfg.Embedding.CacheBatch); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (p *pipeline) wordnet() (*wordnet.Database, error) {
	db, err := wordnet.Load(p.path(p.cfg.WordNet.Dir), p.cfg.WordNet.CacheSize)
	if err != nil {
		return nil, err
	}
	lemmas, synsets := db.Size()
	logger.Debug("wordnet loaded", "lemmas", lemmas, "synsets", synsets)
	return db, nil
}

func (p *pipeline) corpus(wn *wordnet.Database) ([]domain.SentencePair, error) {
	var lemmatizer port.Lemmatizer
	if p.cfg.Corpus.Lemmatize {
		lemmatizer = wn
	}
	judgments := labels.NewRegistry("judgment", p.cfg.Corpus.Judgments, p.cfg.External.StrictLabels)
	loader := corpus.NewLoader(analyzer.NewTokenizer(lemmatizer), judgments)

	paths := make([]string, len(p.cfg.Corpus.Paths))
	for i, path := range p.cfg.Corpus.Paths {
		paths[i] = p.path(path)
	}
	pairs, err := loader.LoadFiles(paths...)
	if err != nil {
		return nil, err
	}
	logger.Info("corpus loaded", "pairs", len(pairs), "files", len(paths))
	return pairs, nil
}

func (p *pipeline) bundleSource() *external.FileBundleSource {
	opts := []external.BundleOption{external.WithLogger(logger)}

	svc := p.cfg.External.Complexity
	if svc.Enabled {
		client := external.NewHTTPComplexityClient(external.ClientConfig{
			Endpoint:      svc.Endpoint,
			Timeout:       svc.Timeout,
			RatePerSecond: svc.RatePerSecond,
			Retry: retry.Config{
				MaxAttempts:   svc.MaxAttempts,
				BaseDelay:     svc.BaseDelay,
				MaxDelay:      svc.MaxDelay,
				BackoffFactor: 2,
				JitterFactor:  0.2,
			},
		}, logger)
		opts = append(opts, external.WithComplexityService(client, p.cfg.External.WriteComplexity))
	}

	return external.NewFileBundleSource(p.path(p.cfg.External.BundleDir), opts...)
}

func (p *pipeline) featureBuilder(table *embedding.Table, wn *wordnet.Database) *usecase.FeatureBuilder {
	strict := p.cfg.External.StrictLabels
	adapter := external.NewAdapter(
		labels.NewRegistry("prediction", p.cfg.External.Predictions, strict),
		labels.NewRegistry("prover", p.cfg.External.Provers, strict),
	)

	return usecase.NewFeatureBuilder(
		similarity.NewComposer(table, p.cfg.Embedding.UseBigrams, p.cfg.Embedding.UseTrigrams),
		similarity.NewSynsetSimilarity(wn, p.cfg.WordNet.Senses),
		p.bundleSource(),
		adapter,
		usecase.FeatureOptions{
			ComposedProduct: p.cfg.Features.ComposedProduct,
			SkipMissing:     p.cfg.Features.SkipMissing,
		},
		logger,
	)
}

// inputKey identifies the inputs of a feature computation: the relevant
// configuration and the corpus files as they are now.
func (p *pipeline) inputKey() (string, error) {
	h := sha256.New()
	h.Write([]byte(store.ComputeConfigHash(p.cfg)))
	for _, path := range p.cfg.Corpus.Paths {
		info, err := os.Stat(p.path(path))
		if err != nil {
			return "", fmt.Errorf("corpus file: %w", err)
		}
		fmt.Fprintf(h, "|%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)[:8]), nil
}

// matrices returns the train and test matrices, from the cache unless
// recalculate is set or the cache is stale.
func (p *pipeline) matrices(ctx context.Context, recalculate bool) (train, test domain.Matrix, schema domain.Schema, err error) {
	reason, err := p.store.Prepare(p.cfg)
	if err != nil {
		return train, test, schema, fmt.Errorf("failed to prepare cache: %w", err)
	}
	if reason != "" {
		p.printer.Info("Feature cache cleared: %s", reason)
	}

	key, err := p.inputKey()
	if err != nil {
		return train, test, schema, err
	}

	// The schema depends on the embedding dimension only when the composed
	// product is enabled; otherwise the cache can be checked before loading
	// the table.
	if !recalculate && !p.cfg.Features.ComposedProduct {
		schema = domain.Schema{Version: usecase.SchemaVersion, Columns: usecase.BaseColumns}
		if train, test, ok := cachedMatrices(p.cache, schema, key); ok {
			return train, test, schema, nil
		}
	}

	wn, err := p.wordnet()
	if err != nil {
		return train, test, schema, err
	}
	pairs, err := p.corpus(wn)
	if err != nil {
		return train, test, schema, err
	}
	trainPairs, testPairs := corpus.Split(pairs, p.cfg.Corpus.TrainFraction)

	table, err := p.embeddings(false)
	if err != nil {
		return train, test, schema, err
	}
	builder := p.featureBuilder(table, wn)
	schema = builder.Schema()

	if !recalculate && p.cfg.Features.ComposedProduct {
		if train, test, ok := cachedMatrices(p.cache, schema, key); ok {
			return train, test, schema, nil
		}
	}

	train, err = p.buildMatrix(ctx, builder, trainPairs, "Train features")
	if err != nil {
		return train, test, schema, err
	}
	test, err = p.buildMatrix(ctx, builder, testPairs, "Test features")
	if err != nil {
		return train, test, schema, err
	}

	if err := p.cache.PutMatrices(schema, key, train, test); err != nil {
		return train, test, schema, fmt.Errorf("failed to cache features: %w", err)
	}
	return train, test, schema, nil
}

// cachedMatrices treats an unreadable or foreign-schema cache entry as a
// miss.
func cachedMatrices(cache port.FeatureCache, schema domain.Schema, key string) (train, test domain.Matrix, ok bool) {
	train, test, ok, err := cache.GetMatrices(schema, key)
	var mismatch *domain.SchemaMismatchError
	switch {
	case errors.As(err, &mismatch):
		logger.Info("cached features use another schema, recomputing", "error", err)
		return train, test, false
	case err != nil:
		logger.Warn("feature cache unreadable, recomputing", "error", err)
		return train, test, false
	case ok:
		logger.Info("features loaded from cache", "train_rows", train.Len(), "test_rows", test.Len())
	}
	return train, test, ok
}

func (p *pipeline) buildMatrix(ctx context.Context, builder *usecase.FeatureBuilder, pairs []domain.SentencePair, description string) (domain.Matrix, error) {
	bar := newProgressBar(len(pairs), description)
	m, stats, err := builder.BuildMatrix(ctx, pairs, func() { bar.Add(1) })
	bar.Finish()
	if err != nil {
		return m, err
	}
	if stats.Skipped > 0 {
		p.printer.Warning("%s: skipped %d pairs without complete signal bundles", description, stats.Skipped)
	}
	logger.Info("features built", "split", description, "rows", stats.Rows, "skipped", stats.Skipped)
	return m, nil
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}
