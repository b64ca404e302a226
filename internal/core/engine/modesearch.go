package engine

import (
	"fmt"
	"strings"

	"github.com/threadlens/threadlens/internal/core"
)

// SearchSpec is the composed query and sort order for a topic and mode.
type SearchSpec struct {
	Query string
	Sort  string
}

// ModeSearch composes the primary search query for a topic under a mode,
// and fixes the sort order the mode favors.
func ModeSearch(topic string, mode core.Mode) SearchSpec {
	topic = strings.TrimSpace(topic)
	switch mode {
	case core.ModePain:
		return SearchSpec{
			Query: fmt.Sprintf(`(%s) ("help" OR "issue" OR "stuck" OR "fail")`, topic),
			Sort:  "comments",
		}
	case core.ModeMarket:
		return SearchSpec{
			Query: fmt.Sprintf(`(%s) ("price" OR "cost" OR "vs" OR "alternative")`, topic),
			Sort:  "relevance",
		}
	default:
		return SearchSpec{Query: topic, Sort: "hot"}
	}
}

// sentimentWords convey sentiment or intent rather than topic.
var sentimentWords = map[string]bool{
	"frustration": true, "frustrated": true, "frustrating": true,
	"problem": true, "problems": true, "issue": true, "issues": true,
	"help": true, "struggling": true, "stuck": true, "fail": true,
	"failure": true, "pain": true, "painful": true, "annoying": true,
	"annoyed": true, "broken": true, "hate": true, "worst": true,
	"terrible": true, "awful": true, "rant": true, "vent": true,
	"complaint": true, "disappointed": true,
}

var painTerms = []string{
	"frustrated", "frustrating", "struggling", "problem", "issue",
	"rant", "vent", "help", "stuck", "fail", "worst", "disappointed",
}

var marketTerms = []string{
	"price", "cost", "vs", "alternative", "compare", "switch",
	"recommend", "better than", "moved from", "migrate",
}

// CommunityQuery builds the lighter search query used inside discovered
// communities. The community already provides topic context, so the query
// keeps only the most distinctive topic word plus mode-appropriate
// sentiment/intent terms, OR-joined and quoted.
func CommunityQuery(topic string, mode core.Mode) string {
	words := strings.Fields(strings.ToLower(topic))

	var topicWords, sentimentFromTopic []string
	for _, w := range words {
		if sentimentWords[w] {
			sentimentFromTopic = append(sentimentFromTopic, w)
		} else {
			topicWords = append(topicWords, w)
		}
	}

	switch mode {
	case core.ModePain:
		terms := dedupe(append(sentimentFromTopic, painTerms...))
		return anchorQuery(topicWords, quoteJoin(terms))
	case core.ModeMarket:
		return anchorQuery(topicWords, quoteJoin(marketTerms))
	default:
		if len(topicWords) > 0 {
			return strings.Join(topicWords, " OR ")
		}
		return topic
	}
}

// anchorQuery prefixes the OR-group with the longest topic word, the most
// distinctive anchor available.
func anchorQuery(topicWords []string, orGroup string) string {
	if len(topicWords) == 0 {
		return orGroup
	}
	anchor := topicWords[0]
	for _, w := range topicWords[1:] {
		if len(w) > len(anchor) {
			anchor = w
		}
	}
	return fmt.Sprintf("%s (%s)", anchor, orGroup)
}

func quoteJoin(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
