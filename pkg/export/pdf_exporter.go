package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin     = 10.0
	pdfLabelWidth = 24.0
	pdfHeaderH    = 10.0
	pdfLineHeight = 4.0
)

// PDFExporter renders datasets and grid sheets into PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(pdfMargin, 15, pdfMargin)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return output(pdf)
}

// RenderSheet draws the grid on a landscape page: time labels across the top,
// day labels down the side, merged regions as single boxes. Vertical cells are
// rotated a quarter turn.
func (e *PDFExporter) RenderSheet(sheet Sheet) ([]byte, error) {
	if len(sheet.ColumnLabels) == 0 || len(sheet.RowLabels) == 0 {
		return nil, fmt.Errorf("pdf requires at least one row and column")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	top := pdfMargin
	if sheet.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(sheet.Title), "", 1, "C", false, 0, "")
		top += 12
	}

	colW := (pageW - 2*pdfMargin - pdfLabelWidth) / float64(len(sheet.ColumnLabels))
	rowH := (pageH - top - pdfMargin - pdfHeaderH) / float64(len(sheet.RowLabels))
	originX := pdfMargin + pdfLabelWidth
	originY := top + pdfHeaderH

	pdf.SetFont("Arial", "B", 7)
	pdf.SetFillColor(230, 230, 230)
	for i, label := range sheet.ColumnLabels {
		pdf.SetXY(originX+float64(i)*colW, top)
		pdf.CellFormat(colW, pdfHeaderH, tr(label), "1", 0, "C", true, 0, "")
	}
	pdf.SetFont("Arial", "B", 9)
	for i, label := range sheet.RowLabels {
		pdf.SetXY(pdfMargin, originY+float64(i)*rowH)
		pdf.CellFormat(pdfLabelWidth, rowH, tr(label), "1", 0, "C", true, 0, "")
	}

	covered := make(map[[2]int]bool)
	pdf.SetFont("Arial", "", 8)
	for _, cell := range sheet.Cells {
		x := originX + float64(cell.Col)*colW
		y := originY + float64(cell.Row)*rowH
		w := colW * float64(cell.colSpan())
		h := rowH * float64(cell.rowSpan())
		pdf.Rect(x, y, w, h, "D")
		for r := cell.Row; r < cell.Row+cell.rowSpan(); r++ {
			for c := cell.Col; c < cell.Col+cell.colSpan(); c++ {
				covered[[2]int{r, c}] = true
			}
		}
		if cell.Text == "" {
			continue
		}
		if cell.Vertical {
			drawVertical(pdf, tr, cell, x, y, w, h)
		} else {
			drawHorizontal(pdf, tr, cell, x, y, w, h)
		}
	}
	for r := range sheet.RowLabels {
		for c := range sheet.ColumnLabels {
			if covered[[2]int{r, c}] {
				continue
			}
			pdf.Rect(originX+float64(c)*colW, originY+float64(r)*rowH, colW, rowH, "D")
		}
	}
	return output(pdf)
}

func drawHorizontal(pdf *gofpdf.Fpdf, tr func(string) string, cell SheetCell, x, y, w, h float64) {
	lines := cell.lines()
	startY := y + (h-float64(len(lines))*pdfLineHeight)/2 + pdfLineHeight*0.75
	for i, line := range lines {
		line = tr(line)
		pdf.Text(alignedX(pdf, cell.Align, line, x, w), startY+float64(i)*pdfLineHeight, line)
	}
}

func drawVertical(pdf *gofpdf.Fpdf, tr func(string) string, cell SheetCell, x, y, w, h float64) {
	lines := cell.lines()
	cx, cy := x+w/2, y+h/2
	pdf.TransformBegin()
	pdf.TransformRotate(90, cx, cy)
	// After rotation the box is h wide and w tall around the same centre.
	rx, ry := cx-h/2, cy-w/2
	startY := ry + (w-float64(len(lines))*pdfLineHeight)/2 + pdfLineHeight*0.75
	for i, line := range lines {
		line = tr(line)
		pdf.Text(alignedX(pdf, cell.Align, line, rx, h), startY+float64(i)*pdfLineHeight, line)
	}
	pdf.TransformEnd()
}

func alignedX(pdf *gofpdf.Fpdf, align, text string, x, w float64) float64 {
	const pad = 1.5
	width := pdf.GetStringWidth(text)
	switch align {
	case "left":
		return x + pad
	case "right":
		return x + w - width - pad
	default:
		return x + (w-width)/2
	}
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
