package external

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"semrel/internal/domain"
	"semrel/internal/port"
)

const (
	predictionFile   = "prediction.txt"
	modSizeDifFile   = "modsizedif.txt"
	complexitiesFile = "complexities.txt"
)

// FileBundleSource reads per-pair signals from <root>/<pair id>/.
type FileBundleSource struct {
	root       string
	fsys       fs.FS
	complexity port.ComplexityService
	write      bool
	logger     *slog.Logger
}

// BundleOption configures a FileBundleSource.
type BundleOption func(*FileBundleSource)

// WithComplexityService asks service for complexities a bundle lacks. When
// write is true the answer is cached next to the other bundle files.
func WithComplexityService(service port.ComplexityService, write bool) BundleOption {
	return func(s *FileBundleSource) {
		s.complexity = service
		s.write = write
	}
}

func WithLogger(logger *slog.Logger) BundleOption {
	return func(s *FileBundleSource) {
		s.logger = logger
	}
}

func NewFileBundleSource(root string, opts ...BundleOption) *FileBundleSource {
	s := &FileBundleSource{
		root:   root,
		fsys:   os.DirFS(root),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PairIDs lists the pairs that have a bundle, in ascending order.
func (s *FileBundleSource) PairIDs() ([]int, error) {
	matches, err := doublestar.Glob(s.fsys, "*/"+modSizeDifFile)
	if err != nil {
		return nil, fmt.Errorf("failed to list bundles: %w", err)
	}

	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.Atoi(path.Dir(m))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// Bundle reads the signals of pair. Missing or malformed files yield
// *domain.MissingDataError.
func (s *FileBundleSource) Bundle(ctx context.Context, pair domain.SentencePair) (domain.SignalBundle, error) {
	bundle := domain.SignalBundle{PairID: pair.ID}
	dir := strconv.Itoa(pair.ID)

	lines, err := s.readLines(pair.ID, path.Join(dir, predictionFile), 1)
	if err != nil {
		return bundle, err
	}
	bundle.Prediction = strings.ToLower(strings.TrimSpace(lines[0]))

	lines, err = s.readLines(pair.ID, path.Join(dir, modSizeDifFile), 6)
	if err != nil {
		return bundle, err
	}
	fields := make([]string, len(lines))
	for i, line := range lines {
		fields[i] = leadingField(line)
	}
	bundle.Prover = fields[0]
	targets := []*float64{
		&bundle.DomainNovelty,
		&bundle.RelationNovelty,
		&bundle.WordNetNovelty,
		&bundle.ModelNovelty,
		&bundle.WordOverlap,
	}
	for i, target := range targets {
		v, ok := parseFinite(fields[i+1])
		if !ok {
			return bundle, &domain.MissingDataError{
				PairID: pair.ID,
				Path:   s.fullPath(path.Join(dir, modSizeDifFile)),
				Reason: fmt.Sprintf("line %d: %q is not a finite number", i+2, fields[i+1]),
			}
		}
		*target = v
	}

	bundle.ComplexityA, bundle.ComplexityB, err = s.complexities(ctx, pair)
	if err != nil {
		return bundle, err
	}

	return bundle, nil
}

func (s *FileBundleSource) complexities(ctx context.Context, pair domain.SentencePair) (float64, float64, error) {
	name := path.Join(strconv.Itoa(pair.ID), complexitiesFile)

	lines, err := s.readLines(pair.ID, name, 2)
	if err == nil {
		a, okA := parseFinite(strings.TrimSpace(lines[0]))
		b, okB := parseFinite(strings.TrimSpace(lines[1]))
		if !okA || !okB {
			return 0, 0, &domain.MissingDataError{PairID: pair.ID, Path: s.fullPath(name), Reason: "complexities are not finite numbers"}
		}
		return a, b, nil
	}
	var missing *domain.MissingDataError
	if s.complexity == nil || !errors.As(err, &missing) {
		return 0, 0, err
	}

	a, err := s.complexity.Complexity(ctx, pair.RawA)
	if err != nil {
		return 0, 0, fmt.Errorf("pair %d sentence A: %w", pair.ID, err)
	}
	b, err := s.complexity.Complexity(ctx, pair.RawB)
	if err != nil {
		return 0, 0, fmt.Errorf("pair %d sentence B: %w", pair.ID, err)
	}

	if s.write {
		content := strconv.FormatFloat(a, 'f', -1, 64) + "\n" + strconv.FormatFloat(b, 'f', -1, 64) + "\n"
		if err := os.WriteFile(s.fullPath(name), []byte(content), 0644); err != nil {
			return 0, 0, fmt.Errorf("failed to cache complexities: %w", err)
		}
	}
	s.logger.Debug("complexities computed", "pair_id", pair.ID, "a", a, "b", b)

	return a, b, nil
}

// readLines returns the first n lines of name, or a MissingDataError when
// the file is absent or shorter.
func (s *FileBundleSource) readLines(pairID int, name string, n int) ([]string, error) {
	f, err := s.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &domain.MissingDataError{PairID: pairID, Path: s.fullPath(name), Reason: "file not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.fullPath(name), err)
	}
	defer f.Close()

	lines := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	for len(lines) < n && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.fullPath(name), err)
	}
	if len(lines) < n {
		return nil, &domain.MissingDataError{
			PairID: pairID,
			Path:   s.fullPath(name),
			Reason: fmt.Sprintf("expected %d lines, got %d", n, len(lines)),
		}
	}
	return lines, nil
}

func (s *FileBundleSource) fullPath(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// leadingField returns the first whitespace field without its trailing
// period, e.g. "0.5.   % word overlap" -> "0.5".
func leadingField(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSuffix(fields[0], ".")
}

// parseFinite rejects NaN and infinities, which ParseFloat accepts.
func parseFinite(field string) (float64, bool) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
