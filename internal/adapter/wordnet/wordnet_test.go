package wordnet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Load("testdata/dict", 16)
	require.NoError(t, err)
	return db
}

func TestLoad(t *testing.T) {
	db := loadTestDB(t)
	lemmas, synsets := db.Size()
	assert.Equal(t, 17, lemmas)
	assert.Equal(t, 11, synsets)
}

func TestNounSenses(t *testing.T) {
	db := loadTestDB(t)

	senses := db.NounSenses("cat")
	require.Len(t, senses, 2)
	assert.Equal(t, "00002100-n", senses[0].ID)
	assert.Equal(t, []string{"cat", "true_cat"}, senses[0].Lemmas)
	assert.Equal(t, []string{"guy", "cat", "hombre"}, senses[1].Lemmas)

	dog := db.NounSenses("Dog")
	require.Len(t, dog, 1)
	assert.Equal(t, []string{"dog", "domestic_dog", "Canis_familiaris"}, dog[0].Lemmas)
	assert.Equal(t, []string{"00002000-n"}, dog[0].Hypernyms)

	assert.Empty(t, db.NounSenses("sat"))
}

func TestPathSimilarity(t *testing.T) {
	db := loadTestDB(t)

	cat := db.NounSenses("cat")[0].ID
	dog := db.NounSenses("dog")[0].ID
	mat := db.NounSenses("mat")[0].ID
	city := db.NounSenses("city")[0].ID
	paris := db.NounSenses("paris")[0].ID

	assert.InDelta(t, 1.0, db.PathSimilarity(cat, cat), 1e-9)
	assert.InDelta(t, 1.0/3.0, db.PathSimilarity(cat, dog), 1e-9)
	assert.InDelta(t, 1.0/5.0, db.PathSimilarity(cat, mat), 1e-9)
	assert.InDelta(t, db.PathSimilarity(mat, cat), db.PathSimilarity(cat, mat), 1e-12)
	assert.InDelta(t, 0.5, db.PathSimilarity(paris, city), 1e-9, "instance hypernyms are followed")
	assert.Equal(t, 0.0, db.PathSimilarity(cat, "99999999-n"))
	assert.Equal(t, 0.0, db.PathSimilarity("99999999-n", "99999999-n"))
}

func TestPathSimilarity_NoCommonAncestor(t *testing.T) {
	index := "alpha n 1 0 1 0 00000001\nbeta n 1 0 1 0 00000002\n"
	data := "00000001 03 n 01 alpha 0 000 | root one\n00000002 03 n 01 beta 0 000 | root two\n"
	db, err := Parse(strings.NewReader(index), strings.NewReader(data), nil, 0)
	require.NoError(t, err)

	assert.Equal(t, 0.0, db.PathSimilarity("00000001-n", "00000002-n"))
}

func TestLemmatize(t *testing.T) {
	db := loadTestDB(t)

	tests := []struct {
		word string
		want string
	}{
		{"cats", "cat"},
		{"dogs", "dog"},
		{"geese", "goose"},
		{"cat", "cat"},
		{"glasses", "glasses"},
		{"running", "running"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, db.Lemmatize(tc.word), tc.word)
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader(""), strings.NewReader("00000001 03 n zz alpha 0 000\n"), nil, 0)
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("alpha n 3 0 3 0 00000001\n"), strings.NewReader(""), nil, 0)
	assert.Error(t, err)
}
