package table

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Export writes every row in sort order, ignoring pagination, to an XLSX
// workbook with a single sheet. Rendered columns are written as text; other
// columns keep their value type.
func (t *Table[T, K]) Export(w io.Writer, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Export"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(t.columns))
	for i, c := range t.columns {
		header[i] = c.Label
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.rows {
		cells := make([]any, len(t.columns))
		for j, c := range t.columns {
			switch {
			case c.Render != nil:
				cells[j] = c.Render(row)
			case c.Value != nil:
				cells[j] = c.Value(row)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
