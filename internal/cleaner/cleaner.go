// Package cleaner normalizes raw transcript text before chunking.
package cleaner

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"transcript-rag/internal/models"
)

var (
	timestampRe  = regexp.MustCompile(models.TimestampRegex)
	annotationRe = regexp.MustCompile(models.AnnotationRegex)
	fillerRe     = regexp.MustCompile(models.FillerRegex)
	spaceRe      = regexp.MustCompile(models.SpaceRegex)
	blankLineRe  = regexp.MustCompile(models.BlankLineRegex)
)

// typographic characters that trip up downstream ASCII-only consumers
var replacer = strings.NewReplacer(
	"–", "-", "—", "-", "−", "-",
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"•", "-", "●", "-",
	"…", "...",
	" ", " ",
)

// Clean strips transcription artifacts (timestamps, stage annotations,
// filler words), applies NFKC normalization and typographic replacements,
// and collapses runs of whitespace. It is a pure function of its input.
func Clean(text string) string {
	text = norm.NFKC.String(text)
	text = replacer.Replace(text)

	text = timestampRe.ReplaceAllString(text, "")
	text = annotationRe.ReplaceAllString(text, "")
	text = fillerRe.ReplaceAllString(text, "")

	text = spaceRe.ReplaceAllString(text, " ")
	text = blankLineRe.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
