package port

// Tokenizer turns a raw sentence into the tokens the extractors compare.
type Tokenizer interface {
	// Split returns the raw whitespace tokens.
	Split(text string) []string

	// Normalize lowercases and lemmatizes raw tokens.
	Normalize(raw []string) []string
}
