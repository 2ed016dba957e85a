package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"semrel/internal/adapter/labels"
	"semrel/internal/domain"
	"semrel/internal/port"
)

// Loader reads SICK-style tab-separated sentence pair files.
type Loader struct {
	tokenizer port.Tokenizer
	judgments *labels.Registry
}

// NewLoader creates a loader that tokenizes with tokenizer and maps
// entailment judgments through judgments.
func NewLoader(tokenizer port.Tokenizer, judgments *labels.Registry) *Loader {
	return &Loader{
		tokenizer: tokenizer,
		judgments: judgments,
	}
}

// LoadFiles reads every file in order and concatenates their pairs.
func (l *Loader) LoadFiles(paths ...string) ([]domain.SentencePair, error) {
	var pairs []domain.SentencePair
	seen := make(map[int]string)
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open corpus: %w", err)
		}
		filePairs, err := l.Read(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, p := range filePairs {
			if prev, dup := seen[p.ID]; dup {
				return nil, fmt.Errorf("%s: pair %d already loaded from %s", path, p.ID, prev)
			}
			seen[p.ID] = path
		}
		pairs = append(pairs, filePairs...)
	}
	return pairs, nil
}

// Read parses one corpus file. The header row is skipped. Rows carry
// pair_ID, sentence_A, sentence_B and optionally relatedness_score and
// entailment_judgment; rows without the gold columns are unlabeled.
func (l *Loader) Read(r io.Reader) ([]domain.SentencePair, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pairs []domain.SentencePair
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		pair, err := l.parseRow(strings.Split(line, "\t"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		pairs = append(pairs, pair)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return pairs, nil
}

func (l *Loader) parseRow(fields []string) (domain.SentencePair, error) {
	if len(fields) != 3 && len(fields) < 5 {
		return domain.SentencePair{}, fmt.Errorf("expected 3 or 5 columns, got %d", len(fields))
	}

	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || id <= 0 {
		return domain.SentencePair{}, fmt.Errorf("invalid pair id %q", fields[0])
	}

	rawA := l.tokenizer.Split(fields[1])
	rawB := l.tokenizer.Split(fields[2])
	pair := domain.SentencePair{
		ID:   id,
		RawA: rawA,
		RawB: rawB,
		A:    l.tokenizer.Normalize(rawA),
		B:    l.tokenizer.Normalize(rawB),
	}

	if len(fields) >= 5 {
		pair.Relatedness, err = strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
		if err != nil {
			return domain.SentencePair{}, fmt.Errorf("pair %d: invalid relatedness %q", id, fields[3])
		}
		pair.Judgment = strings.TrimSpace(fields[4])
		pair.JudgmentID, err = l.judgments.ID(pair.Judgment)
		if err != nil {
			return domain.SentencePair{}, fmt.Errorf("pair %d: %w", id, err)
		}
		pair.Labeled = true
	}

	return pair, nil
}

// Split partitions pairs in file order: the first fraction for training,
// the rest held out.
func Split(pairs []domain.SentencePair, fraction float64) (train, test []domain.SentencePair) {
	n := int(float64(len(pairs)) * fraction)
	if n < 0 {
		n = 0
	}
	if n > len(pairs) {
		n = len(pairs)
	}
	return pairs[:n], pairs[n:]
}
