// Package speech cleans assistant-generated text for speech synthesis.
//
// Language models produce markdown-flavoured text: numbered lists, emphasis
// markers, code spans, complexity notation. None of that survives being read
// aloud. Normalize rewrites those artifacts into plain speakable text without
// changing word order or dropping content.
package speech

import (
	"regexp"
	"strings"
)

var (
	// ordinalPattern matches a numbered list marker at the start of a line,
	// including a bare marker with nothing after it.
	ordinalPattern = regexp.MustCompile(`^\d+\.(\s+|$)`)

	boldPattern   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*]+)\*`)
	codePattern   = regexp.MustCompile("`([^`]+)`")

	// bigOPattern rewrites complexity notation, e.g. O(log n).
	bigOPattern = regexp.MustCompile(`O\(([^)]+)\)`)
	// bigOOpenPattern catches an unmatched "O(" left over after the full
	// form has been rewritten.
	bigOOpenPattern = regexp.MustCompile(`O\(`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize converts text into a speech-friendly form. It is pure, total,
// and idempotent: Normalize(Normalize(x)) == Normalize(x).
//
//   - numbered list markers ("1. ", "2. ") are stripped at line start
//   - bold/italic/code delimiters are removed, keeping the inner text
//   - "O(expr)" becomes "big O of expr"; a dangling "O(" becomes "big O of "
//   - newline and whitespace runs collapse to a single space; ends trimmed
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = stripOrdinals(strings.TrimLeft(line, " \t"))
	}
	text = strings.Join(lines, "\n")

	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = codePattern.ReplaceAllString(text, "$1")

	text = bigOPattern.ReplaceAllString(text, "big O of $1")
	text = bigOOpenPattern.ReplaceAllString(text, "big O of ")

	text = whitespacePattern.ReplaceAllString(text, " ")
	// Delimiter removal and the whitespace collapse can expose a marker at
	// the start of the joined text (a code span like `1.`, or a bare "2."
	// line joined onto the next), so strip once more for idempotence.
	return stripOrdinals(strings.TrimSpace(text))
}

// stripOrdinals removes leading list markers until the text is stable, so
// stacked markers like "1. 2. x" fully reduce in one pass.
func stripOrdinals(s string) string {
	for {
		stripped := ordinalPattern.ReplaceAllString(s, "")
		if stripped == s {
			return s
		}
		s = strings.TrimLeft(stripped, " \t")
	}
}
