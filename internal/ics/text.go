package ics

import "strings"

// FoldLimit is the maximum UTF-8 byte length of a physical line before
// RFC 5545 folding kicks in.
const FoldLimit = 75

// EscapeText escapes a free-text value for use in an ICS property.
// Replacement order matters: the backslash must be doubled first, and
// escaping always happens before folding.
func EscapeText(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, ";", `\;`)
	text = strings.ReplaceAll(text, ",", `\,`)
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", "")
	return text
}

// UnescapeText reverses EscapeText. Carriage returns are stripped on
// escape, so the round trip is the identity for CR-free input.
func UnescapeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' || i+1 == len(text) {
			b.WriteByte(c)
			continue
		}
		i++
		switch text[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}

// FoldLine splits a logical line whose UTF-8 length exceeds limit into
// physical lines joined by CRLF, each continuation starting with one
// space. Runes are accumulated one at a time so a multi-byte character
// is never split, which may leave a physical line a few bytes short of
// the limit; that imprecision is accepted in exchange for never emitting
// broken UTF-8.
func FoldLine(line string, limit int) string {
	if len(line) <= limit {
		return line
	}

	var folded []string
	current := ""
	for _, r := range line {
		if len(current)+len(string(r)) > limit {
			folded = append(folded, current)
			current = " " + string(r)
			continue
		}
		current += string(r)
	}
	if current != "" {
		folded = append(folded, current)
	}
	return strings.Join(folded, "\r\n")
}
