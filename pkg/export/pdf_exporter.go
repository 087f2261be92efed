package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth    = 277.0 // A4 landscape minus margins
	rowHeight    = 7.0
	headerHeight = 8.0
)

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a landscape PDF document with an optional title and table body. Cell text
// that does not fit its column is shortened; the header row repeats on every page.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	widths := columnWidths(data)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(false, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 10)
		for i, header := range data.Headers {
			pdf.CellFormat(widths[i], headerHeight, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}
	writeHeader()

	for _, row := range data.Rows {
		if pdf.GetY()+rowHeight > pageHeight-15 {
			pdf.AddPage()
			writeHeader()
		}
		for i, header := range data.Headers {
			value := fitText(pdf, tr(flatten(row[header])), widths[i]-2)
			pdf.CellFormat(widths[i], rowHeight, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(data Dataset) []float64 {
	widths := make([]float64, len(data.Headers))
	total := 0.0
	for i := range widths {
		weight := 1.0
		if i < len(data.Widths) && data.Widths[i] > 0 {
			weight = data.Widths[i]
		}
		widths[i] = weight
		total += weight
	}
	for i := range widths {
		widths[i] = widths[i] / total * pageWidth
	}
	return widths
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
