package analyze

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Keywords maps a topic label to its trigger phrases.
type Keywords map[string][]string

// KeywordMatch returns the sorted topics with at least one trigger occurring
// in text. Matching is case-insensitive substring search.
func KeywordMatch(text string, keywords Keywords) []string {
	if len(keywords) == 0 || text == "" {
		return nil
	}

	caser := cases.Fold()
	folded := caser.String(text)

	var topics []string
	for topic, triggers := range keywords {
		for _, trigger := range triggers {
			t := caser.String(trigger)
			if t != "" && strings.Contains(folded, t) {
				topics = append(topics, topic)
				break
			}
		}
	}

	sort.Strings(topics)
	return topics
}

// KeywordDensity is the word count of distinct matched triggers divided by
// the word count of text, capped at 1. It is 0 when nothing matches.
func KeywordDensity(text string, keywords Keywords) float64 {
	if len(keywords) == 0 {
		return 0
	}

	caser := cases.Fold()
	folded := caser.String(text)

	words := len(strings.Fields(folded))
	if words == 0 {
		return 0
	}

	matched := make(map[string]struct{})
	covered := 0
	for _, triggers := range keywords {
		for _, trigger := range triggers {
			t := strings.TrimSpace(caser.String(trigger))
			if t == "" {
				continue
			}
			if _, ok := matched[t]; ok {
				continue
			}
			if !strings.Contains(folded, t) {
				continue
			}
			matched[t] = struct{}{}
			covered += max(1, len(strings.Fields(t)))
		}
	}

	if covered == 0 {
		return 0
	}
	return min(1.0, float64(covered)/float64(words))
}
