package format

import (
	"encoding/base64"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hsliu/cnstock/internal/errors"
	"github.com/hsliu/cnstock/internal/market"
)

const excelSheet = "Sheet1"

// encodeExcel renders the table as an xlsx workbook with a header row.
// The workbook bytes are base64-encoded so the tool result stays a string.
func encodeExcel(t *market.Table) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	for j, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return "", errors.EncodeFailed(string(Excel), err)
		}
		if err := f.SetCellValue(excelSheet, cell, col); err != nil {
			return "", errors.EncodeFailed(string(Excel), err)
		}
	}

	for i, row := range t.Rows {
		for j := range t.Columns {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return "", errors.EncodeFailed(string(Excel), err)
			}
			if err := f.SetCellValue(excelSheet, cell, excelCell(row[j])); err != nil {
				return "", errors.EncodeFailed(string(Excel), err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", errors.EncodeFailed(string(Excel), err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// excelCell keeps numeric and boolean cells typed so spreadsheet consumers
// see real numbers; times are written as RFC 3339 text for determinism.
func excelCell(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return x
	}
}
