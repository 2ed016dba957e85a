package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a relatedness run.
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	WordNet   WordNetConfig   `yaml:"wordnet"`
	External  ExternalConfig  `yaml:"external"`
	Features  FeaturesConfig  `yaml:"features"`
	Regressor RegressorConfig `yaml:"regressor"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CorpusConfig holds corpus loading configuration.
type CorpusConfig struct {
	Paths         []string `yaml:"paths"`
	TrainFraction float64  `yaml:"train_fraction"`
	Lemmatize     bool     `yaml:"lemmatize"`
	Judgments     []string `yaml:"judgments"` // pre-declared labels, ids follow this order
}

// EmbeddingConfig holds the embedding table configuration.
type EmbeddingConfig struct {
	Path        string `yaml:"path"` // word2vec text file
	Cache       bool   `yaml:"cache"`
	UseBigrams  bool   `yaml:"use_bigrams"`
	UseTrigrams bool   `yaml:"use_trigrams"`
	CacheBatch  int    `yaml:"cache_batch"`
}

// WordNetConfig holds the WordNet database location.
type WordNetConfig struct {
	Dir       string `yaml:"dir"` // directory containing index.noun, data.noun, noun.exc
	Senses    int    `yaml:"senses"`
	CacheSize int    `yaml:"cache_size"`
}

// ExternalConfig holds the per-pair signal sources.
type ExternalConfig struct {
	BundleDir       string        `yaml:"bundle_dir"`
	Predictions     []string      `yaml:"predictions"`
	Provers         []string      `yaml:"provers"`
	StrictLabels    bool          `yaml:"strict_labels"`
	Complexity      ServiceConfig `yaml:"complexity"`
	WriteComplexity bool          `yaml:"write_complexity"`
}

// ServiceConfig holds the complexity service client configuration.
type ServiceConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Endpoint      string        `yaml:"endpoint"`
	Timeout       time.Duration `yaml:"timeout"`         // 0 = no deadline
	RatePerSecond float64       `yaml:"rate_per_second"` // 0 = unlimited
	MaxAttempts   int           `yaml:"max_attempts"`
	BaseDelay     time.Duration `yaml:"base_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
}

// FeaturesConfig holds feature extraction configuration.
type FeaturesConfig struct {
	ComposedProduct bool `yaml:"composed_product"`
	SkipMissing     bool `yaml:"skip_missing"`
	Recalculate     bool `yaml:"recalculate"`
}

// RegressorConfig holds the ensemble regressor hyperparameters.
type RegressorConfig struct {
	Kind            string `yaml:"kind"` // "random_forest", "extra_trees"
	Trees           int    `yaml:"trees"`
	MaxFeatures     int    `yaml:"max_features"` // 0 = all features
	MaxDepth        int    `yaml:"max_depth"`    // 0 = unlimited
	MinSamplesSplit int    `yaml:"min_samples_split"`
	MinSamplesLeaf  int    `yaml:"min_samples_leaf"`
	Bootstrap       bool   `yaml:"bootstrap"`
	Seed            int64  `yaml:"seed"`
	Workers         int    `yaml:"workers"`
}

// OutputConfig holds output file configuration.
type OutputConfig struct {
	Predictions string `yaml:"predictions"`
	Submission  string `yaml:"submission"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Paths:         []string{"SICK_train.txt", "SICK_trial.txt"},
			TrainFraction: 0.9,
			Lemmatize:     true,
			Judgments:     []string{"NEUTRAL", "ENTAILMENT", "CONTRADICTION"},
		},
		Embedding: EmbeddingConfig{
			Path:        "GoogleNews-vectors-negative300.txt",
			Cache:       true,
			UseBigrams:  false, // slightly worse results when enabled
			UseTrigrams: true,
			CacheBatch:  10000,
		},
		WordNet: WordNetConfig{
			Dir:       "wordnet/dict",
			Senses:    5,
			CacheSize: 4096,
		},
		External: ExternalConfig{
			BundleDir:    "working/sick",
			Predictions:  []string{"neutral", "entailment", "contradiction"},
			Provers:      []string{"unknown", "proof", "inconsistent"},
			StrictLabels: false,
			Complexity: ServiceConfig{
				Enabled:     false,
				Endpoint:    "http://127.0.0.1:7777/raw/pipeline?format=xml",
				MaxAttempts: 1,
				BaseDelay:   500 * time.Millisecond,
				MaxDelay:    10 * time.Second,
			},
			WriteComplexity: true,
		},
		Features: FeaturesConfig{
			ComposedProduct: false,
			SkipMissing:     false,
			Recalculate:     false,
		},
		Regressor: RegressorConfig{
			Kind:            "random_forest",
			Trees:           1000,
			MaxFeatures:     2,
			MaxDepth:        0,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
			Bootstrap:       true,
			Seed:            3,
			Workers:         4,
		},
		Output: OutputConfig{
			Predictions: "relatedness.txt",
			Submission:  "submission.txt",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for semrel.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "semrel.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".semrel", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Corpus.TrainFraction <= 0 || c.Corpus.TrainFraction >= 1 {
		return fmt.Errorf("corpus.train_fraction must be in (0, 1), got %v", c.Corpus.TrainFraction)
	}
	if c.WordNet.Senses < 1 {
		return fmt.Errorf("wordnet.senses must be positive, got %d", c.WordNet.Senses)
	}
	if c.External.Complexity.Enabled && c.External.Complexity.Endpoint == "" {
		return fmt.Errorf("external.complexity.endpoint is required when the service is enabled")
	}
	return nil
}

// CacheDBPath returns the path to the artifact cache database.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".semrel", "semrel.db")
}

// EnsureWorkDir ensures the .semrel directory exists.
func EnsureWorkDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".semrel"), 0755)
}

// Resolve returns path relative to dir unless it is already absolute.
func Resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
