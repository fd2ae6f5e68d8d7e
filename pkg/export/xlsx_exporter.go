package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheetName = "Timetable"

// XLSXExporter renders grid sheets into Excel workbooks, one merged range per region.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// RenderSheet writes labels in the first row and column and the grid from B2.
func (e *XLSXExporter) RenderSheet(sheet Sheet) ([]byte, error) {
	if len(sheet.ColumnLabels) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one column")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
		Border:    borders(),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	styles := newStyleCache(f)

	lastCol, err := excelize.ColumnNumberToName(len(sheet.ColumnLabels) + 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheetName, "A", "A", 14); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheetName, "B", lastCol, 16); err != nil {
		return nil, err
	}

	for i, label := range sheet.ColumnLabels {
		name, _ := excelize.CoordinatesToCellName(i+2, 1)
		if err := f.SetCellValue(xlsxSheetName, name, label); err != nil {
			return nil, err
		}
	}
	for i, label := range sheet.RowLabels {
		name, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetCellValue(xlsxSheetName, name, label); err != nil {
			return nil, err
		}
		if err := f.SetRowHeight(xlsxSheetName, i+2, 48); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(xlsxSheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}
	if len(sheet.RowLabels) > 0 {
		if err := f.SetCellStyle(xlsxSheetName, "A2", fmt.Sprintf("A%d", len(sheet.RowLabels)+1), headerStyle); err != nil {
			return nil, err
		}
		plain, err := styles.get("center", false)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(xlsxSheetName, "B2", fmt.Sprintf("%s%d", lastCol, len(sheet.RowLabels)+1), plain); err != nil {
			return nil, err
		}
	}

	for _, cell := range sheet.Cells {
		start, err := excelize.CoordinatesToCellName(cell.Col+2, cell.Row+2)
		if err != nil {
			return nil, err
		}
		end, err := excelize.CoordinatesToCellName(cell.Col+cell.colSpan()+1, cell.Row+cell.rowSpan()+1)
		if err != nil {
			return nil, err
		}
		if start != end {
			if err := f.MergeCell(xlsxSheetName, start, end); err != nil {
				return nil, fmt.Errorf("merge %s:%s: %w", start, end, err)
			}
		}
		if err := f.SetCellValue(xlsxSheetName, start, cell.Text); err != nil {
			return nil, err
		}
		style, err := styles.get(cell.Align, cell.Vertical)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(xlsxSheetName, start, end, style); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

type styleKey struct {
	align    string
	vertical bool
}

type styleCache struct {
	f     *excelize.File
	cache map[styleKey]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, cache: make(map[styleKey]int)}
}

func (s *styleCache) get(align string, vertical bool) (int, error) {
	switch align {
	case "left", "right", "center":
	default:
		align = "center"
	}
	key := styleKey{align: align, vertical: vertical}
	if id, ok := s.cache[key]; ok {
		return id, nil
	}
	alignment := &excelize.Alignment{Horizontal: align, Vertical: "center", WrapText: true}
	if vertical {
		alignment.TextRotation = 90
	}
	id, err := s.f.NewStyle(&excelize.Style{Border: borders(), Alignment: alignment})
	if err != nil {
		return 0, fmt.Errorf("create cell style: %w", err)
	}
	s.cache[key] = id
	return id, nil
}

func borders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}
