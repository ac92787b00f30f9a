package ics

import "strings"

// volatilePrefixes mark properties expected to differ between two
// otherwise-identical regenerations. Lines starting with one of these
// are ignored when comparing documents.
var volatilePrefixes = []string{
	"DTSTAMP:",
	"LAST-MODIFIED:",
	"SEQUENCE:",
}

// MeaningfulChange reports whether two calendar documents differ in
// anything beyond the volatile properties. It exists for logging only:
// the fresh document is always written regardless, so subscribers see a
// current DTSTAMP.
func MeaningfulChange(oldText, newText string) bool {
	oldLines := stableLines(oldText)
	newLines := stableLines(newText)
	if len(oldLines) != len(newLines) {
		return true
	}
	for i := range oldLines {
		if oldLines[i] != newLines[i] {
			return true
		}
	}
	return false
}

func stableLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || volatile(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func volatile(line string) bool {
	for _, prefix := range volatilePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
