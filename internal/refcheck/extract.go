// Package refcheck validates the citation links in generated Markdown,
// strips dead ones, and scores the result so callers can decide whether to
// ask the model for a better reference list.
package refcheck

import (
	"regexp"
	"strings"
)

var (
	linkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	headerRe = regexp.MustCompile(`^ {0,3}#{1,6}(\s|$)`)
)

// ExtractURLs returns the targets of every [label](url) link whose URL uses
// an http or https scheme, in order of appearance. Duplicates are kept.
func ExtractURLs(markdown string) []string {
	matches := linkRe.FindAllStringSubmatch(markdown, -1)
	var out []string
	for _, m := range matches {
		if isHTTP(m[2]) {
			out = append(out, m[2])
		}
	}
	return out
}

func isHTTP(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isHeader(line string) bool {
	return headerRe.MatchString(line)
}
