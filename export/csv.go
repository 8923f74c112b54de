package export

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/warp/timekeeper/attendance"
)

// WriteCSV writes the header and one record per row to w.
func WriteCSV(w io.Writer, rows []attendance.MonthlyRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(record(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// BuildCSV renders the CSV in memory.
func BuildCSV(rows []attendance.MonthlyRow) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
