package wordnet

import "strings"

var nounSuffixes = []struct{ old, new string }{
	{"s", ""},
	{"ses", "s"},
	{"ves", "f"},
	{"xes", "x"},
	{"zes", "z"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"men", "man"},
	{"ies", "y"},
}

// Lemmatize returns the shortest noun base form of word known to the index,
// or word itself when none is known.
func (db *Database) Lemmatize(word string) string {
	candidates := db.morphy(word)
	if len(candidates) == 0 {
		return word
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(best) {
			best = c
		}
	}
	return best
}

// morphy lists the indexed base forms of word: irregular forms from the
// exception list, otherwise the word and its suffix substitutions.
func (db *Database) morphy(word string) []string {
	var forms []string
	if exc, ok := db.exceptions[word]; ok {
		forms = append([]string{word}, exc...)
	} else {
		forms = []string{word}
		for _, rule := range nounSuffixes {
			if strings.HasSuffix(word, rule.old) {
				forms = append(forms, word[:len(word)-len(rule.old)]+rule.new)
			}
		}
	}

	seen := make(map[string]struct{}, len(forms))
	var out []string
	for _, form := range forms {
		if _, ok := db.index[form]; !ok {
			continue
		}
		if _, dup := seen[form]; dup {
			continue
		}
		seen[form] = struct{}{}
		out = append(out, form)
	}
	return out
}
