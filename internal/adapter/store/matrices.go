package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"go.etcd.io/bbolt"

	"semrel/internal/domain"
	"semrel/internal/port"
)

var _ port.FeatureCache = (*BoltStore)(nil)

var (
	keyMatrixMeta = []byte("meta")
	keyTrain      = []byte("train")
	keyTest       = []byte("test")
)

type matrixMeta struct {
	SchemaVersion int      `json:"schema_version"`
	Fingerprint   string   `json:"fingerprint"`
	Columns       []string `json:"columns"`
	InputKey      string   `json:"input_key"`
	TrainRows     int      `json:"train_rows"`
	TestRows      int      `json:"test_rows"`
}

// GetMatrices returns the cached train and test matrices. ok is false when
// nothing is cached for inputKey. A cache written under another schema
// returns *domain.SchemaMismatchError so the caller recomputes.
func (s *BoltStore) GetMatrices(schema domain.Schema, inputKey string) (train, test domain.Matrix, ok bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMatrices)
		data := b.Get(keyMatrixMeta)
		if data == nil {
			return nil
		}

		var meta matrixMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("corrupt matrix metadata: %w", err)
		}
		if meta.SchemaVersion != schema.Version || meta.Fingerprint != schema.Fingerprint() {
			return &domain.SchemaMismatchError{Expected: schema.Columns, Got: meta.Columns}
		}
		if meta.InputKey != inputKey {
			return nil
		}

		if train, err = decodeMatrix(b.Get(keyTrain), meta.Columns); err != nil {
			return fmt.Errorf("train matrix: %w", err)
		}
		if test, err = decodeMatrix(b.Get(keyTest), meta.Columns); err != nil {
			return fmt.Errorf("test matrix: %w", err)
		}
		if train.Len() != meta.TrainRows || test.Len() != meta.TestRows {
			return fmt.Errorf("cached matrices truncated: %d/%d train rows, %d/%d test rows",
				train.Len(), meta.TrainRows, test.Len(), meta.TestRows)
		}
		ok = true
		return nil
	})
	if err != nil {
		return domain.Matrix{}, domain.Matrix{}, false, err
	}
	return train, test, ok, nil
}

// PutMatrices replaces the cached matrices in one transaction.
func (s *BoltStore) PutMatrices(schema domain.Schema, inputKey string, train, test domain.Matrix) error {
	for _, m := range []domain.Matrix{train, test} {
		if err := domain.CheckColumns(schema.Columns, m.Columns); err != nil {
			return err
		}
	}

	trainData, err := encodeMatrix(train)
	if err != nil {
		return fmt.Errorf("train matrix: %w", err)
	}
	testData, err := encodeMatrix(test)
	if err != nil {
		return fmt.Errorf("test matrix: %w", err)
	}
	meta, err := json.Marshal(matrixMeta{
		SchemaVersion: schema.Version,
		Fingerprint:   schema.Fingerprint(),
		Columns:       schema.Columns,
		InputKey:      inputKey,
		TrainRows:     train.Len(),
		TestRows:      test.Len(),
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMatrices)
		if err := b.Put(keyTrain, trainData); err != nil {
			return err
		}
		if err := b.Put(keyTest, testData); err != nil {
			return err
		}
		return b.Put(keyMatrixMeta, meta)
	})
}

// encodeMatrix lays out rows, cols, pair ids, targets and the row-major
// values, all little-endian with floats as their IEEE-754 bits.
func encodeMatrix(m domain.Matrix) ([]byte, error) {
	rows, cols := m.Len(), len(m.Columns)
	if len(m.PairIDs) != rows || len(m.Targets) != rows {
		return nil, fmt.Errorf("inconsistent matrix: %d rows, %d pair ids, %d targets", rows, len(m.PairIDs), len(m.Targets))
	}

	buf := make([]byte, 0, 8+rows*16+rows*cols*8)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(rows))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(cols))
	for _, id := range m.PairIDs {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(id)))
	}
	for _, t := range m.Targets {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(t))
	}
	for i, row := range m.Rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), cols)
		}
		for _, v := range row {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		}
	}
	return buf, nil
}

func decodeMatrix(data []byte, columns []string) (domain.Matrix, error) {
	if data == nil {
		return domain.Matrix{}, fmt.Errorf("not found")
	}
	r := bytes.NewReader(data)

	var header [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return domain.Matrix{}, err
	}
	rows, cols := int(header[0]), int(header[1])
	if cols != len(columns) {
		return domain.Matrix{}, &domain.SchemaMismatchError{Expected: columns, Got: make([]string, cols)}
	}
	if want := 8 + rows*16 + rows*cols*8; len(data) != want {
		return domain.Matrix{}, fmt.Errorf("expected %d bytes, got %d", want, len(data))
	}

	ids := make([]int64, rows)
	if err := binary.Read(r, binary.LittleEndian, ids); err != nil {
		return domain.Matrix{}, err
	}
	targets := make([]float64, rows)
	if err := binary.Read(r, binary.LittleEndian, targets); err != nil {
		return domain.Matrix{}, err
	}
	values := make([]float64, rows*cols)
	if err := binary.Read(r, binary.LittleEndian, values); err != nil {
		return domain.Matrix{}, err
	}

	m := domain.Matrix{
		Columns: append([]string(nil), columns...),
		PairIDs: make([]int, rows),
		Rows:    make([][]float64, rows),
		Targets: targets,
	}
	for i := range ids {
		m.PairIDs[i] = int(ids[i])
		m.Rows[i] = values[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m, nil
}
