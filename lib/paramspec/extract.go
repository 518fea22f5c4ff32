package paramspec

import (
	"regexp"
	"strings"
)

var declComment = regexp.MustCompile(`(?s)\{#\s*props\b(.*?)#\}`)

// Extract finds the first {# props ... #} comment in a template. It reports
// false when the template declares no parameters.
func Extract(template string) (Source, bool) {
	loc := declComment.FindStringSubmatchIndex(template)
	if loc == nil {
		return Source{}, false
	}

	line := strings.Count(template[:loc[0]], "\n") + 1
	start := strings.LastIndexByte(template[:loc[0]], '\n') + 1
	end := strings.IndexByte(template[loc[0]:], '\n')
	text := template[start:]
	if end >= 0 {
		text = template[start : loc[0]+end]
	}

	return Source{
		Declaration: strings.TrimSpace(template[loc[2]:loc[3]]),
		Line:        line,
		Text:        text,
	}, true
}
