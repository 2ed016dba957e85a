package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"go.etcd.io/bbolt"

	"semrel/internal/adapter/embedding"
)

var keyEmbeddingSource = []byte("source")

// EmbeddingSource identifies the text file a cached table was built from.
type EmbeddingSource struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	ModTime   int64  `json:"mod_time"`
	Dimension int    `json:"dimension"`
	Count     int    `json:"count"`
}

// StatSource describes the file at path as it is now.
func StatSource(path string) (EmbeddingSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return EmbeddingSource{}, err
	}
	return EmbeddingSource{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
	}, nil
}

func (e EmbeddingSource) sameFile(o EmbeddingSource) bool {
	return e.Path == o.Path && e.Size == o.Size && e.ModTime == o.ModTime
}

// PutEmbeddings replaces the cached table. Vectors are written in
// transactions of batch tokens; the source record goes last so an
// interrupted write is never mistaken for a complete cache.
func (s *BoltStore) PutEmbeddings(table *embedding.Table, source EmbeddingSource, batch int) error {
	if batch <= 0 {
		batch = 10000
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := clearBucket(tx, bucketEmbeddingMeta); err != nil {
			return err
		}
		return clearBucket(tx, bucketEmbeddings)
	})
	if err != nil {
		return fmt.Errorf("failed to clear embedding cache: %w", err)
	}

	type entry struct {
		token string
		vec   []float32
	}
	pending := make([]entry, 0, batch)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		err := s.db.Update(func(tx *bbolt.Tx) error {
			b := tx.Bucket(bucketEmbeddings)
			for _, e := range pending {
				if err := b.Put([]byte(e.token), encodeVector(e.vec)); err != nil {
					return err
				}
			}
			return nil
		})
		pending = pending[:0]
		return err
	}

	err = table.Each(func(token string, vec []float32) error {
		pending = append(pending, entry{token: token, vec: vec})
		if len(pending) == batch {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return fmt.Errorf("failed to write embedding cache: %w", err)
	}

	source.Dimension = table.Dimension()
	source.Count = table.Len()
	data, err := json.Marshal(source)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEmbeddingMeta).Put(keyEmbeddingSource, data)
	})
}

// GetEmbeddings loads the cached table. ok is false when the cache is empty
// or was built from a different version of source.
func (s *BoltStore) GetEmbeddings(source EmbeddingSource) (table *embedding.Table, ok bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEmbeddingMeta).Get(keyEmbeddingSource)
		if data == nil {
			return nil
		}
		var cached EmbeddingSource
		if err := json.Unmarshal(data, &cached); err != nil {
			return fmt.Errorf("corrupt embedding metadata: %w", err)
		}
		if !cached.sameFile(source) {
			return nil
		}

		table = embedding.NewTable(cached.Dimension)
		err := tx.Bucket(bucketEmbeddings).ForEach(func(k, v []byte) error {
			vec, err := decodeVector(v, cached.Dimension)
			if err != nil {
				return fmt.Errorf("token %q: %w", k, err)
			}
			return table.Add(string(k), vec)
		})
		if err != nil {
			return err
		}
		if table.Len() != cached.Count {
			return fmt.Errorf("embedding cache holds %d tokens, expected %d", table.Len(), cached.Count)
		}
		ok = true
		return nil
	})
	if err != nil || !ok {
		return nil, false, err
	}
	return table, true, nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 0, len(vec)*4)
	for _, v := range vec {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte, dimension int) ([]float32, error) {
	if len(data) != dimension*4 {
		return nil, fmt.Errorf("expected %d bytes, got %d", dimension*4, len(data))
	}
	vec := make([]float32, dimension)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
