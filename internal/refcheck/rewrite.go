package refcheck

import "strings"

// RemoveInvalidLinks drops every line that carries an http link outside
// valid, or mentions one of those dead URLs as bare text, then removes
// headers whose sections lost all their content and tidies the blank lines
// left behind.
//
// A dead URL that only appears as the prefix of a valid link target on the
// same line does not count as a mention, so "https://go.dev/doc" being dead
// leaves "[Tour](https://go.dev/doc/tour)" alone.
//
// Text with no invalid links is returned unchanged.
func RemoveInvalidLinks(markdown string, valid map[string]struct{}) string {
	var invalid []string
	for _, u := range ExtractURLs(markdown) {
		if _, ok := valid[u]; !ok {
			invalid = append(invalid, u)
		}
	}
	if len(invalid) == 0 {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	keep := make([]bool, len(lines))
	dropped := make([]bool, len(lines))
	for i, line := range lines {
		dropped[i] = mentionsInvalid(line, invalid, valid)
		keep[i] = !dropped[i]
	}

	for i, line := range lines {
		if keep[i] && isHeader(line) && sectionEmptied(lines, dropped, keep, i) {
			keep[i] = false
		}
	}

	out := make([]string, 0, len(lines))
	prevBlank := false
	for i, line := range lines {
		if !keep[i] {
			continue
		}
		blank := strings.TrimSpace(line) == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, line)
		prevBlank = blank
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// mentionsInvalid reports whether line links to a URL outside valid or
// contains one of the invalid URLs as plain text.
func mentionsInvalid(line string, invalid []string, valid map[string]struct{}) bool {
	var targets []string
	for _, m := range linkRe.FindAllStringSubmatch(line, -1) {
		if !isHTTP(m[2]) {
			continue
		}
		if _, ok := valid[m[2]]; !ok {
			return true
		}
		targets = append(targets, m[2])
	}

	for _, u := range invalid {
		if !strings.Contains(line, u) {
			continue
		}
		masked := line
		for _, v := range targets {
			if len(v) > len(u) && strings.HasPrefix(v, u) {
				masked = strings.ReplaceAll(masked, v, "")
			}
		}
		if strings.Contains(masked, u) {
			return true
		}
	}
	return false
}

// sectionEmptied reports whether the section under the header at idx, which
// runs to the next header of the same or a higher level, had at least one
// line dropped and has no retained non-blank, non-header line left. Nested
// headers are not content. Sections that were empty to begin with are left
// alone.
func sectionEmptied(lines []string, dropped, keep []bool, idx int) bool {
	level := headerLevel(lines[idx])
	lost := false
	for j := idx + 1; j < len(lines); j++ {
		if isHeader(lines[j]) {
			if headerLevel(lines[j]) <= level {
				break
			}
			if dropped[j] {
				lost = true
			}
			continue
		}
		if dropped[j] {
			lost = true
			continue
		}
		if keep[j] && strings.TrimSpace(lines[j]) != "" {
			return false
		}
	}
	return lost
}

// headerLevel returns the number of leading '#' of an ATX header line.
func headerLevel(line string) int {
	trimmed := strings.TrimLeft(line, " ")
	return len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
}
