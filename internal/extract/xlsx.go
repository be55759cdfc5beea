package extract

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"etldocs/internal/faults"
)

// readXLSX reads the first sheet of a workbook. Excelize trims trailing
// empty cells per row, so records are padded back to the header width.
func readXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, faults.InvalidInput(fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, faults.InvalidInput(fmt.Errorf("source %s has no sheets", path))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, faults.InvalidInput(fmt.Errorf("read sheet %q of %s: %w", sheet, path, err))
	}
	if len(rows) == 0 {
		return nil, nil, faults.InvalidInput(fmt.Errorf("source %s has no header row", path))
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make([]string, len(header))
		copy(rec, row)
		records = append(records, rec)
	}
	return header, records, nil
}
