package ingest

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ExportSheetName is the worksheet name used for raw-data exports.
const ExportSheetName = "原始数据"

// Export writes the sheet's header and rows to an .xlsx workbook.
func Export(s *Sheet, outPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return fmt.Errorf("ingest.Export: %w", err)
	}

	write := func(rowNum int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(values))
		for i, v := range values {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				row[i] = n
				continue
			}
			row[i] = v
		}
		return f.SetSheetRow(ExportSheetName, cell, &row)
	}

	if err := write(1, s.Header); err != nil {
		return fmt.Errorf("ingest.Export: header: %w", err)
	}
	for i, r := range s.Rows {
		if err := write(i+2, r); err != nil {
			return fmt.Errorf("ingest.Export: row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("ingest.Export: %w", err)
	}
	return nil
}
