package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"semrel/config"
	"semrel/internal/adapter/analyzer"
	"semrel/internal/adapter/embedding"
	"semrel/internal/adapter/similarity"
	"semrel/internal/adapter/store"
	"semrel/internal/adapter/wordnet"
)

func main() {
	dir := flag.String("dir", ".", "Path to the working directory")
	sentenceA := flag.String("a", "", "First sentence")
	sentenceB := flag.String("b", "", "Second sentence")
	rounds := flag.Int("n", 100, "Timing rounds per feature")
	flag.Parse()

	if *sentenceA == "" || *sentenceB == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir ./run -a \"A cat sits on a mat\" -b \"A cat is sitting\"")
		fmt.Println("\nReports:")
		fmt.Println("  1. Tokens and lemmas of both sentences")
		fmt.Println("  2. Every pairwise similarity feature")
		fmt.Println("  3. Mean time per feature over -n rounds")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	wn, err := wordnet.Load(config.Resolve(*dir, cfg.WordNet.Dir), cfg.WordNet.CacheSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WordNet: %v\n", err)
		os.Exit(1)
	}

	table, err := loadEmbeddings(*dir, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embeddings not available: %v\n", err)
		os.Exit(1)
	}

	tokenizer := analyzer.NewTokenizer(wn)
	a := tokenizer.Tokenize(*sentenceA)
	b := tokenizer.Tokenize(*sentenceB)

	composer := similarity.NewComposer(table, cfg.Embedding.UseBigrams, cfg.Embedding.UseTrigrams)
	synsets := similarity.NewSynsetSimilarity(wn, cfg.WordNet.Senses)

	fmt.Println("SIMILARITY FEATURE PROBE")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Vocabulary: %d tokens, dimension %d\n", table.Len(), table.Dimension())
	fmt.Printf("A: %s\n", strings.Join(a, " "))
	fmt.Printf("B: %s\n", strings.Join(b, " "))
	fmt.Printf("Trigrams A: %q\n", composer.TrigramTokens(a))
	fmt.Printf("Trigrams B: %q\n", composer.TrigramTokens(b))
	fmt.Println(strings.Repeat("-", 70))

	features := []struct {
		name string
		fn   func() float64
	}{
		{"CDSM", func() float64 { return composer.CosineDistance(a, b) }},
		{"WORDS", func() float64 { return similarity.WordOverlap(a, b) }},
		{"SYN_OVER", func() float64 { return synsets.Overlap(a, b) }},
		{"SYN_DIST", func() float64 { return synsets.Distance(a, b) }},
		{"LENGTH", func() float64 { return similarity.SentenceLengths(a, b) }},
	}

	for _, f := range features {
		value := f.fn()
		start := time.Now()
		for i := 0; i < *rounds; i++ {
			f.fn()
		}
		perCall := time.Since(start) / time.Duration(max(*rounds, 1))
		fmt.Printf("%-10s %8.4f   %v/call\n", f.name, value, perCall)
	}
}

func loadEmbeddings(dir string, cfg *config.Config) (*embedding.Table, error) {
	path := config.Resolve(dir, cfg.Embedding.Path)
	source, err := store.StatSource(path)
	if err != nil {
		return nil, err
	}

	st, err := store.NewBoltStore(config.CacheDBPath(dir))
	if err == nil {
		defer st.Close()
		if table, ok, err := st.GetEmbeddings(source); err == nil && ok {
			return table, nil
		}
	}

	return embedding.LoadTextFile(path, true)
}
