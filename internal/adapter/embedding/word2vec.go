package embedding

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// ReadText parses word2vec text output: an optional "vocab dim" header, then
// one token per line followed by its components. Tokens are lowercased; when
// two tokens collide after lowercasing the later vector wins.
func ReadText(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var table *Table
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				dim, err := strconv.Atoi(fields[1])
				if err != nil || dim <= 0 {
					return nil, fmt.Errorf("line 1: invalid dimension %q", fields[1])
				}
				table = NewTable(dim)
				continue
			}
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: token without vector", lineNo)
		}

		if table == nil {
			table = NewTable(len(fields) - 1)
		}

		vec := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			vec[i] = float32(v)
		}
		if err := table.Add(strings.ToLower(fields[0]), vec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vectors: %w", err)
	}
	if table == nil {
		return nil, fmt.Errorf("no vectors found")
	}

	return table, nil
}

// LoadTextFile reads a word2vec text file, showing a byte progress bar when
// progress is true.
func LoadTextFile(path string, progress bool) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vectors: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if progress {
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		bar := progressbar.DefaultBytes(info.Size(), "reading vectors")
		r = io.TeeReader(f, bar)
		defer bar.Finish()
	}

	return ReadText(r)
}
