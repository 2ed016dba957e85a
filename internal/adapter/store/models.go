package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// ModelRecord is a persisted trained model with the feature columns it was
// trained on.
type ModelRecord struct {
	Name          string          `json:"name"`
	RunID         string          `json:"run_id"`
	SchemaVersion int             `json:"schema_version"`
	Columns       []string        `json:"columns"`
	CreatedAt     time.Time       `json:"created_at"`
	Model         json.RawMessage `json:"model"`
}

func (s *BoltStore) PutModel(record ModelRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketModels).Put([]byte(record.Name), data)
	})
}

func (s *BoltStore) GetModel(name string) (ModelRecord, error) {
	var record ModelRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketModels).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("model not found: %s", name)
		}
		return json.Unmarshal(data, &record)
	})
	return record, err
}
