package export

import "strings"

// Sheet is a day-by-slot grid laid out for printing. Cells lists every visible
// cell that has text or anchors a merged region; cells covered by a region are omitted.
type Sheet struct {
	Title        string
	RowLabels    []string
	ColumnLabels []string
	Cells        []SheetCell
}

// SheetCell is one printable cell or merged region.
type SheetCell struct {
	Row      int
	Col      int
	RowSpan  int
	ColSpan  int
	Text     string
	Align    string
	Vertical bool
}

func (c SheetCell) rowSpan() int {
	if c.RowSpan < 1 {
		return 1
	}
	return c.RowSpan
}

func (c SheetCell) colSpan() int {
	if c.ColSpan < 1 {
		return 1
	}
	return c.ColSpan
}

func (c SheetCell) lines() []string {
	return strings.Split(c.Text, "\n")
}

// Matrix flattens the sheet into rows of text, leaving covered cells blank.
func (s Sheet) Matrix() [][]string {
	matrix := make([][]string, len(s.RowLabels))
	for i := range matrix {
		matrix[i] = make([]string, len(s.ColumnLabels))
	}
	for _, cell := range s.Cells {
		if cell.Row < 0 || cell.Row >= len(matrix) || cell.Col < 0 || cell.Col >= len(s.ColumnLabels) {
			continue
		}
		matrix[cell.Row][cell.Col] = cell.Text
	}
	return matrix
}
