package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semrel/internal/adapter/analyzer"
	"semrel/internal/adapter/labels"
	"semrel/internal/domain"
)

const sample = "pair_ID\tsentence_A\tsentence_B\trelatedness_score\tentailment_judgment\n" +
	"1\tThe cat sat\tA cat sat\t4.5\tENTAILMENT\n" +
	"3\tA man is cooking\tNobody is cooking\t3.2\tCONTRADICTION\r\n" +
	"\n"

func newLoader() *Loader {
	return NewLoader(analyzer.NewTokenizer(nil), labels.NewRegistry("judgment", []string{"NEUTRAL", "ENTAILMENT", "CONTRADICTION"}, true))
}

func TestLoader_Read(t *testing.T) {
	pairs, err := newLoader().Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	p := pairs[0]
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, []string{"The", "cat", "sat"}, p.RawA)
	assert.Equal(t, []string{"the", "cat", "sat"}, p.A)
	assert.Equal(t, []string{"a", "cat", "sat"}, p.B)
	assert.Equal(t, 4.5, p.Relatedness)
	assert.Equal(t, "ENTAILMENT", p.Judgment)
	assert.Equal(t, 1, p.JudgmentID)
	assert.True(t, p.Labeled)

	assert.Equal(t, 2, pairs[1].JudgmentID)
	assert.Equal(t, "CONTRADICTION", pairs[1].Judgment)
}

func TestLoader_ReadUnlabeled(t *testing.T) {
	pairs, err := newLoader().Read(strings.NewReader("pair_ID\tsentence_A\tsentence_B\n7\ta b\tc\n"))
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.False(t, pairs[0].Labeled)
	assert.Equal(t, []string{"c"}, pairs[0].B)
}

func TestLoader_ReadErrors(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"bad id", "x\ta\tb\t1.0\tNEUTRAL"},
		{"zero id", "0\ta\tb\t1.0\tNEUTRAL"},
		{"bad score", "1\ta\tb\thigh\tNEUTRAL"},
		{"four columns", "1\ta\tb\t1.0"},
		{"undeclared judgment", "1\ta\tb\t1.0\tMAYBE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newLoader().Read(strings.NewReader("header\n" + tc.row + "\n"))
			assert.Error(t, err)
		})
	}
}

func TestLoader_LoadFilesRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "train.txt")
	b := filepath.Join(dir, "trial.txt")
	require.NoError(t, os.WriteFile(a, []byte(sample), 0644))
	require.NoError(t, os.WriteFile(b, []byte(sample), 0644))

	pairs, err := newLoader().LoadFiles(a)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	_, err = newLoader().LoadFiles(a, b)
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	pairs := make([]domain.SentencePair, 10)
	for i := range pairs {
		pairs[i].ID = i + 1
	}

	train, test := Split(pairs, 0.9)
	assert.Len(t, train, 9)
	assert.Len(t, test, 1)
	assert.Equal(t, 10, test[0].ID)

	train, test = Split(pairs[:1], 0.9)
	assert.Empty(t, train)
	assert.Len(t, test, 1)
}
