// Package report writes a PDF summary of a question-and-answer session.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/unicode/norm"

	"transcript-rag/internal/models"
)

var asciiReplacer = strings.NewReplacer(
	"–", "-", "—", "-", "−", "-",
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"•", "-", "●", "-",
	"…", "...",
	"©", "(c)", "®", "(r)",
)

// sanitize reduces text to ASCII so the PDF core fonts can render it.
func sanitize(text string) string {
	text = norm.NFKD.String(text)
	text = asciiReplacer.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Write renders the session summary to a PDF file at path.
func Write(path, title string, responses []models.PromptResponse) error {
	if err := build(title, responses).OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF report: %w", err)
	}
	return nil
}

// Render writes the session summary PDF to w. Each call builds its own
// document, so concurrent renders do not share state.
func Render(w io.Writer, title string, responses []models.PromptResponse) error {
	if err := build(title, responses).Output(w); err != nil {
		return fmt.Errorf("failed to render PDF report: %w", err)
	}
	return nil
}

func build(title string, responses []models.PromptResponse) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 100, sanitize(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 14)
	date := fmt.Sprintf("Date: %s", time.Now().Format("January 2, 2006"))
	pdf.CellFormat(0, 10, date, "", 1, "C", false, 0, "")

	for _, resp := range responses {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 16)
		pdf.MultiCell(0, 10, sanitize(resp.Query), "", "L", false)
		pdf.SetFont("Arial", "", 12)
		pdf.MultiCell(0, 10, sanitize(resp.Content), "", "L", false)
		if resp.Source != "" {
			pdf.Ln(5)
			pdf.SetFont("Arial", "I", 10)
			pdf.MultiCell(0, 6, sanitize("Sources:\n"+resp.Source), "", "L", false)
		}
	}

	return pdf
}
