package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/warp/timekeeper/attendance"
)

// SheetName is the worksheet name for a month, "YYYY-MM".
func SheetName(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// BuildXLSX renders the report as a single-sheet workbook. Numeric columns
// are written as numbers so spreadsheets can sum them.
func BuildXLSX(year int, month time.Month, rows []attendance.MonthlyRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(year, month)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for col, title := range Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []any{
			row.Username,
			row.Email,
			row.ExpectedWeeklyHours.Round(2).InexactFloat64(),
			row.DaysWorked,
			row.TotalHoursWorked.Round(2).InexactFloat64(),
			row.ExpectedHours.Round(2).InexactFloat64(),
			row.ExtraHours.Round(2).InexactFloat64(),
			row.MissingHours.Round(2).InexactFloat64(),
			row.Balance.Round(2).InexactFloat64(),
			row.TotalParking.Round(2).InexactFloat64(),
			row.TotalKm.Round(2).InexactFloat64(),
			row.KmCompensation.Round(2).InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
