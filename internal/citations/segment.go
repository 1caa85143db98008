package citations

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	sectionDelimiter = regexp.MustCompile(`-{10,}`)
	footnoteMarker   = regexp.MustCompile(`^\\\d+\\`)

	legalCitation = regexp.MustCompile(
		`\b\d{1,2}\sC?FR\s\d{1,5}(\([a-z]\d*\))*\s*(\(.+?\))?` +
			`|\b\d{1,2}\sU\.S\.C\.\s\d{1,5}(\([a-zA-Z]\d*\))*` +
			`(\s*,\s*\d{1,2}\sU\.S\.C\.\s\d{1,5}(\([a-zA-Z]\d*\))*)*` +
			`(\s*and\s*\d{1,2}\sU\.S\.C\.\s\d{1,5}(\([a-zA-Z]\d*\))*)?`)

	suppressedPrefixes = []string{"ibid.", "id.", "see sec.", "sec.", "see supra", "supra"}
)

// Segment extracts footnote citation candidates from the raw text of one
// document and returns them one per line. An empty result means the document
// has nothing worth sending for extraction. Text without a single divider
// run has no footnote sections at all.
func Segment(text string) string {
	if !sectionDelimiter.MatchString(text) {
		return ""
	}
	var lines []string
	for _, section := range sectionDelimiter.Split(text, -1) {
		section = strings.TrimSpace(section)
		if section == "" || !footnoteMarker.MatchString(section) {
			continue
		}
		for _, body := range footnoteBodies(section) {
			body = strings.TrimSpace(strings.ReplaceAll(body, "\n", " "))
			lines = append(lines, splitLines(body)...)
		}
	}

	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || suppressed(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func suppressed(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range suppressedPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	if strings.HasPrefix(line, "ISO") {
		return true
	}
	return legalCitation.MatchString(line)
}

// footnoteBodies returns the text following each `\N\` marker that is
// followed by whitespace, up to the next marker or the end of the section.
// Markers without trailing whitespace still terminate the preceding body.
func footnoteBodies(section string) []string {
	var bodies []string
	pos := 0
	for pos < len(section) {
		start, end := nextMarker(section, pos)
		if start < 0 {
			break
		}
		ws := end
		for ws < len(section) {
			r, size := utf8.DecodeRuneInString(section[ws:])
			if !unicode.IsSpace(r) {
				break
			}
			ws += size
		}
		if ws == end {
			pos = start + 1
			continue
		}
		stop, _ := nextMarker(section, ws)
		if stop < 0 {
			stop = len(section)
		}
		bodies = append(bodies, section[ws:stop])
		pos = stop
	}
	return bodies
}

// nextMarker finds the first `\digits\` at or after from.
func nextMarker(s string, from int) (int, int) {
	for i := from; i < len(s); i++ {
		if s[i] != '\\' {
			continue
		}
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > i+1 && j < len(s) && s[j] == '\\' {
			return i, j + 1
		}
	}
	return -1, -1
}

// splitLines splits on any line break and drops a single trailing empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	parts := strings.Split(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
