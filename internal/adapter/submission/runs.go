package submission

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadRunFile reads whitespace-separated "id label ..." lines. Lines that
// do not start with a pair id, such as headers, are skipped.
func ReadRunFile(r io.Reader) (map[int]string, error) {
	judgments := make(map[int]string)
	err := eachRow(r, func(lineNo int, fields []string) error {
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil
		}
		if len(fields) < 2 {
			return fmt.Errorf("line %d: pair %d has no judgment", lineNo, id)
		}
		judgments[id] = fields[1]
		return nil
	})
	return judgments, err
}

// MergeJudgments takes each pair's corrected judgment when there is one and
// the fallback run's otherwise.
func MergeJudgments(ids []int, corrected, fallback map[int]string) (map[int]string, error) {
	merged := make(map[int]string, len(ids))
	for _, id := range ids {
		if j, ok := corrected[id]; ok {
			merged[id] = j
			continue
		}
		if j, ok := fallback[id]; ok {
			merged[id] = j
			continue
		}
		return nil, fmt.Errorf("no entailment judgment for pair %d in either run", id)
	}
	return merged, nil
}

// RelatednessHeader is the first line of a relatedness file.
const RelatednessHeader = "pair_ID\trelatedness_score"

// WriteRelatedness writes predictions in the given pair order.
func WriteRelatedness(w io.Writer, ids []int, scores []float64) error {
	if len(ids) != len(scores) {
		return fmt.Errorf("%d pair ids but %d scores", len(ids), len(scores))
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, RelatednessHeader)
	for i, id := range ids {
		fmt.Fprintf(bw, "%d\t%s\n", id, strconv.FormatFloat(scores[i], 'f', -1, 64))
	}
	return bw.Flush()
}

// ReadRelatedness reads a relatedness file; the score is the last field of
// each row.
func ReadRelatedness(r io.Reader) (map[int]float64, error) {
	scores := make(map[int]float64)
	err := eachRow(r, func(lineNo int, fields []string) error {
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			if lineNo == 1 {
				return nil
			}
			return fmt.Errorf("line %d: invalid pair id %q", lineNo, fields[0])
		}
		if len(fields) < 2 {
			return fmt.Errorf("line %d: pair %d has no score", lineNo, id)
		}
		score, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		scores[id] = score
		return nil
	})
	return scores, err
}

func eachRow(r io.Reader, fn func(lineNo int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := fn(lineNo, fields); err != nil {
			return err
		}
	}
	return scanner.Err()
}
