/*
Package export renders the monthly attendance report as a downloadable file.

FORMATS:
  csv:  One header row plus one row per employee (encoding/csv)
  xlsx: Same header and rows on a sheet named "YYYY-MM" (excelize)

  Hours and money are rounded to 2 decimals. Days worked is an integer.

FILE NAME:
  report_YYYY_MM.<format>, e.g. report_2025_03.csv

SEE ALSO:
  - attendance/report.go: Builds the MonthlyRows
  - api/handlers.go: Serves the file as an attachment
*/
package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/warp/timekeeper/attendance"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned by ParseFormat for anything but csv and xlsx.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat parses a format name. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the media type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// FileName returns report_YYYY_MM.<format>.
func FileName(year int, month time.Month, f Format) string {
	return fmt.Sprintf("report_%d_%02d.%s", year, int(month), f)
}

// Header is the column header of every export.
var Header = []string{
	"Employee",
	"Email",
	"Expected Weekly Hours",
	"Days Worked",
	"Total Hours Worked",
	"Expected Hours",
	"Extra Hours",
	"Missing Hours",
	"Balance",
	"Total Parking (€)",
	"Total KM",
	"KM Compensation (€0.23/km)",
}

// Render builds the file for the given month.
func Render(f Format, year int, month time.Month, rows []attendance.MonthlyRow) ([]byte, error) {
	switch f {
	case FormatCSV:
		return BuildCSV(rows)
	case FormatXLSX:
		return BuildXLSX(year, month, rows)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// record formats one row in Header order.
func record(row attendance.MonthlyRow) []string {
	return []string{
		row.Username,
		row.Email,
		row.ExpectedWeeklyHours.StringFixed(2),
		strconv.Itoa(row.DaysWorked),
		row.TotalHoursWorked.StringFixed(2),
		row.ExpectedHours.StringFixed(2),
		row.ExtraHours.StringFixed(2),
		row.MissingHours.StringFixed(2),
		row.Balance.StringFixed(2),
		row.TotalParking.StringFixed(2),
		row.TotalKm.StringFixed(2),
		row.KmCompensation.StringFixed(2),
	}
}
