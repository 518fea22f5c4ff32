package enum

import "strings"

// Suggest returns the allowed value closest to v, or "" when nothing is
// close enough. A case-insensitive exact match wins outright; otherwise the
// value with the highest Ratio at or above cutoff is chosen, earliest first
// on ties.
func Suggest(v string, allowed []string, cutoff float64) string {
	for _, a := range allowed {
		if strings.EqualFold(a, v) {
			return a
		}
	}

	best := ""
	bestRatio := cutoff
	for _, a := range allowed {
		if r := Ratio(v, a); r >= bestRatio && (best == "" || r > bestRatio) {
			best = a
			bestRatio = r
		}
	}
	return best
}

// Ratio is a similarity score in [0, 1]: one minus the edit distance over
// the longer length.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(b); i++ {
		curr[0] = i
		for j := 1; j <= len(a); j++ {
			cost := 1
			if a[j-1] == b[i-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}
