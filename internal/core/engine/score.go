package engine

import "strings"

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "of": true,
	"for": true, "in": true, "on": true, "to": true, "and": true,
	"or": true, "my": true, "with": true,
}

// Keywords extracts lowercase topic keywords, dropping short filler words
// and a fixed stopword set.
func Keywords(topic string) []string {
	var keywords []string
	for _, word := range strings.Fields(topic) {
		lower := strings.ToLower(word)
		if len(word) <= 2 || stopwords[lower] {
			continue
		}
		keywords = append(keywords, lower)
	}
	return keywords
}

// RelevanceScore counts how many keywords appear as substrings of the
// community's name and description, case-insensitive. Zero means no lexical
// overlap at all.
func RelevanceScore(name, description string, keywords []string) int {
	text := strings.ToLower(name + " " + description)
	score := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			score++
		}
	}
	return score
}
