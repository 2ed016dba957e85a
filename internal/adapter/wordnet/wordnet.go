package wordnet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"semrel/internal/domain"
)

// Database is the noun part of a WordNet 3.0 database: the lemma index, the
// synsets with their hypernym pointers and the irregular plural exceptions.
type Database struct {
	index      map[string][]string // lemma -> synset ids in sense order
	synsets    map[string]domain.Synset
	exceptions map[string][]string
	ancestors  *lru.Cache[string, map[string]int]
}

// Load reads index.noun, data.noun and (if present) noun.exc from dir.
func Load(dir string, cacheSize int) (*Database, error) {
	index, err := os.Open(filepath.Join(dir, "index.noun"))
	if err != nil {
		return nil, fmt.Errorf("failed to open wordnet index: %w", err)
	}
	defer index.Close()

	data, err := os.Open(filepath.Join(dir, "data.noun"))
	if err != nil {
		return nil, fmt.Errorf("failed to open wordnet data: %w", err)
	}
	defer data.Close()

	var exc io.Reader
	if f, err := os.Open(filepath.Join(dir, "noun.exc")); err == nil {
		defer f.Close()
		exc = f
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to open wordnet exceptions: %w", err)
	}

	return Parse(index, data, exc, cacheSize)
}

// Parse builds a Database from the raw database files. exc may be nil.
func Parse(index, data, exc io.Reader, cacheSize int) (*Database, error) {
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	cache, err := lru.New[string, map[string]int](cacheSize)
	if err != nil {
		return nil, err
	}

	db := &Database{
		index:      make(map[string][]string),
		synsets:    make(map[string]domain.Synset),
		exceptions: make(map[string][]string),
		ancestors:  cache,
	}

	if err := eachLine(data, db.parseDataLine); err != nil {
		return nil, fmt.Errorf("data.noun: %w", err)
	}
	if err := eachLine(index, db.parseIndexLine); err != nil {
		return nil, fmt.Errorf("index.noun: %w", err)
	}
	if exc != nil {
		if err := eachLine(exc, db.parseExceptionLine); err != nil {
			return nil, fmt.Errorf("noun.exc: %w", err)
		}
	}

	return db, nil
}

// eachLine feeds every non-header line to fn. License header lines in the
// database files start with a space.
func eachLine(r io.Reader, fn func(fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || line[0] == ' ' {
			continue
		}
		if i := strings.Index(line, " | "); i >= 0 {
			line = line[:i]
		}
		if err := fn(strings.Fields(line)); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func synsetID(offset string) string {
	return offset + "-n"
}

// parseDataLine reads
// offset lex_filenum ss_type w_cnt [word lex_id]... p_cnt [symbol offset pos src/tgt]...
func (db *Database) parseDataLine(fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("short synset record")
	}
	wordCount, err := strconv.ParseInt(fields[3], 16, 32)
	if err != nil {
		return fmt.Errorf("invalid word count %q: %w", fields[3], err)
	}

	pos := 4
	if len(fields) < pos+int(wordCount)*2+1 {
		return fmt.Errorf("truncated word list")
	}
	lemmas := make([]string, 0, wordCount)
	for i := 0; i < int(wordCount); i++ {
		lemmas = append(lemmas, fields[pos])
		pos += 2
	}

	ptrCount, err := strconv.Atoi(fields[pos])
	if err != nil {
		return fmt.Errorf("invalid pointer count %q: %w", fields[pos], err)
	}
	pos++
	if len(fields) < pos+ptrCount*4 {
		return fmt.Errorf("truncated pointer list")
	}

	var hypernyms []string
	for i := 0; i < ptrCount; i++ {
		symbol, target, targetPOS := fields[pos], fields[pos+1], fields[pos+2]
		pos += 4
		if (symbol == "@" || symbol == "@i") && targetPOS == "n" {
			hypernyms = append(hypernyms, synsetID(target))
		}
	}

	id := synsetID(fields[0])
	db.synsets[id] = domain.Synset{
		ID:        id,
		Lemmas:    lemmas,
		Hypernyms: hypernyms,
	}
	return nil
}

// parseIndexLine reads
// lemma pos synset_cnt p_cnt [symbol]... sense_cnt tagsense_cnt [offset]...
func (db *Database) parseIndexLine(fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("short index record")
	}
	synsetCount, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("invalid synset count %q: %w", fields[2], err)
	}
	ptrCount, err := strconv.Atoi(fields[3])
	if err != nil {
		return fmt.Errorf("invalid pointer count %q: %w", fields[3], err)
	}

	start := 4 + ptrCount + 2
	if len(fields) < start+synsetCount {
		return fmt.Errorf("truncated offsets for %q", fields[0])
	}

	ids := make([]string, 0, synsetCount)
	for _, offset := range fields[start : start+synsetCount] {
		ids = append(ids, synsetID(offset))
	}
	db.index[fields[0]] = ids
	return nil
}

func (db *Database) parseExceptionLine(fields []string) error {
	if len(fields) < 2 {
		return nil
	}
	db.exceptions[fields[0]] = append(db.exceptions[fields[0]], fields[1:]...)
	return nil
}

// NounSenses returns the noun synsets of lemma in sense order. Unknown
// lemmas have no senses.
func (db *Database) NounSenses(lemma string) []domain.Synset {
	ids := db.index[strings.ToLower(lemma)]
	senses := make([]domain.Synset, 0, len(ids))
	for _, id := range ids {
		if synset, ok := db.synsets[id]; ok {
			senses = append(senses, synset)
		}
	}
	return senses
}

// Synset returns the synset with the given id.
func (db *Database) Synset(id string) (domain.Synset, bool) {
	synset, ok := db.synsets[id]
	return synset, ok
}

// Size returns the number of indexed lemmas and synsets.
func (db *Database) Size() (lemmas, synsets int) {
	return len(db.index), len(db.synsets)
}
