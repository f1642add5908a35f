// Package format converts market tables into the output encodings exposed
// through the output_format tool parameter.
package format

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/hsliu/cnstock/internal/errors"
	"github.com/hsliu/cnstock/internal/market"
)

// Format identifies one of the supported output encodings.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	XML      Format = "xml"
	Excel    Format = "excel"
	Markdown Format = "markdown"
	HTML     Format = "html"
)

// Formats lists every supported encoding, in the order they are advertised
// in tool schemas.
func Formats() []string {
	return []string{string(JSON), string(CSV), string(XML), string(Excel), string(Markdown), string(HTML)}
}

// Parse validates an output_format parameter value. The empty string
// defaults to JSON.
func Parse(s string) (Format, error) {
	switch Format(s) {
	case "":
		return JSON, nil
	case JSON, CSV, XML, Excel, Markdown, HTML:
		return Format(s), nil
	default:
		return "", errors.UnsupportedFormat(s)
	}
}

// Encode renders a table in the requested format. The result is always a
// string: textual formats are returned verbatim, the Excel workbook is
// base64-encoded.
func Encode(t *market.Table, f Format) (string, error) {
	switch f {
	case JSON:
		return encodeJSON(t)
	case CSV:
		return encodeCSV(t)
	case XML:
		return encodeXML(t)
	case Excel:
		return encodeExcel(t)
	case Markdown:
		return encodeMarkdown(t), nil
	case HTML:
		return encodeHTML(t), nil
	default:
		return "", errors.UnsupportedFormat(string(f))
	}
}

// encodeJSON renders the table as an array of records, one object per row,
// with keys emitted in column order so identical inputs produce identical
// output.
func encodeJSON(t *market.Table) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range t.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return "", errors.EncodeFailed(string(JSON), err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := json.Marshal(jsonCell(row[j]))
			if err != nil {
				return "", errors.EncodeFailed(string(JSON), err)
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.String(), nil
}

// jsonCell normalizes cell values for JSON output. Times become RFC 3339
// strings; everything else marshals natively.
func jsonCell(v any) any {
	if ts, ok := v.(time.Time); ok {
		return ts.Format(time.RFC3339)
	}
	return v
}

func encodeCSV(t *market.Table) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.Columns); err != nil {
		return "", errors.EncodeFailed(string(CSV), err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j := range t.Columns {
			record[j] = CellString(row[j])
		}
		if err := w.Write(record); err != nil {
			return "", errors.EncodeFailed(string(CSV), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.EncodeFailed(string(CSV), err)
	}
	return buf.String(), nil
}

// CellString renders a single cell as text for the flat encodings
// (CSV, XML, Markdown, HTML).
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
