package analyzer

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"semrel/internal/port"
)

// Tokenizer splits sentences on whitespace and reduces tokens to lowercase
// lemmas.
type Tokenizer struct {
	lemmatizer port.Lemmatizer
}

// NewTokenizer creates a Tokenizer. A nil lemmatizer only lowercases.
func NewTokenizer(lemmatizer port.Lemmatizer) *Tokenizer {
	return &Tokenizer{lemmatizer: lemmatizer}
}

// Split returns the raw whitespace-delimited tokens of text, NFC normalized.
func (t *Tokenizer) Split(text string) []string {
	return strings.Fields(norm.NFC.String(text))
}

// Normalize lowercases and, when a lemmatizer is set, lemmatizes each token.
func (t *Tokenizer) Normalize(raw []string) []string {
	tokens := make([]string, 0, len(raw))
	for _, word := range raw {
		word = strings.ToLower(word)
		if t.lemmatizer != nil {
			word = t.lemmatizer.Lemmatize(word)
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// Tokenize is Normalize(Split(text)).
func (t *Tokenizer) Tokenize(text string) []string {
	return t.Normalize(t.Split(text))
}
