package tle

import "strings"

// NormalizeLines unifies CR/LF/CRLF line breaks, converts tabs to spaces,
// trims trailing whitespace and drops blank and leading-# comment lines.
// An empty result is valid here; the caller decides whether it is an error.
func NormalizeLines(raw string) []string {
	lines, _ := NormalizeLinesWithComments(raw)
	return lines
}

// NormalizeLinesWithComments behaves like NormalizeLines but also returns
// the filtered comment lines (leading # stripped, trimmed) in input order.
func NormalizeLinesWithComments(raw string) (lines, comments []string) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	for _, line := range strings.Split(raw, "\n") {
		line = strings.ReplaceAll(line, "\t", " ")
		line = strings.TrimRight(line, " ")
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			comments = append(comments, strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
			continue
		}
		// Leading spaces are preserved on data lines: offsets are fixed
		// from column 0.
		lines = append(lines, line)
	}
	return lines, comments
}
