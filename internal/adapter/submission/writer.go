package submission

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Header is the first line of a submission file.
const Header = "pair_ID\tentailment_judgment\trelatedness_score"

// Writer formats shared-task submission files.
type Writer struct {
	// Precision is the number of decimals of relatedness scores; -1 uses
	// the shortest representation that round-trips.
	Precision int
}

func NewWriter() *Writer {
	return &Writer{Precision: -1}
}

// Write emits the header and one row per prediction in ascending pair id.
// Every predicted pair needs a judgment.
func (wr *Writer) Write(w io.Writer, predictions map[int]float64, judgments map[int]string) error {
	ids := sortedIDs(predictions)
	for _, id := range ids {
		if _, ok := judgments[id]; !ok {
			return fmt.Errorf("no entailment judgment for pair %d", id)
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Header)
	for _, id := range ids {
		fmt.Fprintf(bw, "%d\t%s\t%s\n", id, judgments[id], wr.format(predictions[id]))
	}
	return bw.Flush()
}

func (wr *Writer) format(v float64) string {
	return strconv.FormatFloat(v, 'f', wr.Precision, 64)
}

func sortedIDs(m map[int]float64) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
