package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"semrel/config"
)

// CurrentSchemaVersion is the version of the on-disk layout.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var (
	keySchemaVersion = []byte("schema_version")
	keyConfigHash    = []byte("config_hash")
)

// SchemaInfo stores schema version and configuration hash.
type SchemaInfo struct {
	Version    int    `json:"version"`
	ConfigHash string `json:"config_hash"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (s *BoltStore) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStats)

		if versionData := b.Get(keySchemaVersion); versionData != nil {
			if err := json.Unmarshal(versionData, &info.Version); err != nil {
				info.Version = 1
			}
		}
		if hashData := b.Get(keyConfigHash); hashData != nil {
			info.ConfigHash = string(hashData)
		}
		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (s *BoltStore) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketStats)

		versionData, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, versionData); err != nil {
			return err
		}

		return b.Put(keyConfigHash, []byte(info.ConfigHash))
	})
}

// ComputeConfigHash hashes the configuration that feature values depend on.
// A change means cached matrices must be rebuilt.
func ComputeConfigHash(cfg *config.Config) string {
	relevant := struct {
		Paths           []string `json:"paths"`
		TrainFraction   float64  `json:"train_fraction"`
		Lemmatize       bool     `json:"lemmatize"`
		EmbeddingPath   string   `json:"embedding_path"`
		UseBigrams      bool     `json:"use_bigrams"`
		UseTrigrams     bool     `json:"use_trigrams"`
		WordNetDir      string   `json:"wordnet_dir"`
		Senses          int      `json:"senses"`
		BundleDir       string   `json:"bundle_dir"`
		Predictions     []string `json:"predictions"`
		Provers         []string `json:"provers"`
		ComposedProduct bool     `json:"composed_product"`
		SkipMissing     bool     `json:"skip_missing"`
	}{
		Paths:           cfg.Corpus.Paths,
		TrainFraction:   cfg.Corpus.TrainFraction,
		Lemmatize:       cfg.Corpus.Lemmatize,
		EmbeddingPath:   cfg.Embedding.Path,
		UseBigrams:      cfg.Embedding.UseBigrams,
		UseTrigrams:     cfg.Embedding.UseTrigrams,
		WordNetDir:      cfg.WordNet.Dir,
		Senses:          cfg.WordNet.Senses,
		BundleDir:       cfg.External.BundleDir,
		Predictions:     cfg.External.Predictions,
		Provers:         cfg.External.Provers,
		ComposedProduct: cfg.Features.ComposedProduct,
		SkipMissing:     cfg.Features.SkipMissing,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration bool
	NeedsRebuild   bool
	OldVersion     int
	NewVersion     int
	Reason         string
}

// CheckMigration checks if migration or rebuild is needed.
func (s *BoltStore) CheckMigration(cfg *config.Config) (*MigrationResult, error) {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	if info.Version == 0 {
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	} else if info.Version > CurrentSchemaVersion {
		result.NeedsRebuild = true
		result.Reason = fmt.Sprintf("database created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
		return result, nil
	}

	newHash := ComputeConfigHash(cfg)
	if info.ConfigHash != "" && info.ConfigHash != newHash {
		result.NeedsRebuild = true
		result.Reason = "feature configuration changed"
	}

	return result, nil
}

// Migrate records the current schema version and configuration hash. There
// is a single layout so far; a future version adds its upgrade steps here.
func (s *BoltStore) Migrate(cfg *config.Config) error {
	return s.SetSchemaInfo(&SchemaInfo{
		Version:    CurrentSchemaVersion,
		ConfigHash: ComputeConfigHash(cfg),
	})
}

// Clear drops the cached feature matrices. Embeddings are validated against
// their source file separately and models are kept.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return clearBucket(tx, bucketMatrices)
	})
}

// Prepare runs migrations and clears stale matrices. It returns the reason
// for a rebuild, or "" when the cache is current.
func (s *BoltStore) Prepare(cfg *config.Config) (string, error) {
	result, err := s.CheckMigration(cfg)
	if err != nil {
		return "", err
	}
	if result.NeedsRebuild {
		if err := s.Clear(); err != nil {
			return "", fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	if result.NeedsMigration || result.NeedsRebuild {
		if err := s.Migrate(cfg); err != nil {
			return "", err
		}
	}
	if result.NeedsRebuild {
		return result.Reason, nil
	}
	return "", nil
}
