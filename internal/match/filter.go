package match

import "github.com/lithammer/fuzzysearch/fuzzy"

// Subsequence keeps the titles that contain every character of query in
// order, ignoring case and diacritics. A blank query keeps everything.
func Subsequence(query string, titles []string) []string {
	if query == "" {
		return titles
	}
	out := make([]string, 0, len(titles)/4)
	for _, t := range titles {
		if fuzzy.MatchNormalizedFold(query, t) {
			out = append(out, t)
		}
	}
	return out
}
