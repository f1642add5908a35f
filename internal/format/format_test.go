package format

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/hsliu/cnstock/internal/errors"
	"github.com/hsliu/cnstock/internal/market"
)

func sampleTable() *market.Table {
	table := market.NewTable("date", "close", "note")
	table.Append("2025-08-28", 10.5, "up | strong")
	table.Append("2025-08-29", 11.0, nil)
	return table
}

func TestParse(t *testing.T) {
	if f, err := Parse(""); err != nil || f != JSON {
		t.Errorf("Parse(\"\") = %v, %v; want json default", f, err)
	}
	for _, name := range Formats() {
		if _, err := Parse(name); err != nil {
			t.Errorf("Parse(%q) failed: %v", name, err)
		}
	}
	_, err := Parse("yaml")
	if !pkgerrors.Is(err, pkgerrors.CodeUnsupportedFormat) {
		t.Errorf("error code = %q, want %q", pkgerrors.Code(err), pkgerrors.CodeUnsupportedFormat)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	table := sampleTable()
	for _, name := range Formats() {
		f, _ := Parse(name)
		first, err := Encode(table, f)
		if err != nil {
			t.Fatalf("Encode(%s) failed: %v", name, err)
		}
		second, err := Encode(table, f)
		if err != nil {
			t.Fatalf("Encode(%s) failed: %v", name, err)
		}
		// The Excel container embeds timestamps; compare the decoded
		// sheet content instead.
		if f == Excel {
			if got, want := excelRows(t, second), excelRows(t, first); !equalRows(got, want) {
				t.Errorf("Encode(excel) content not deterministic")
			}
			continue
		}
		if first != second {
			t.Errorf("Encode(%s) not deterministic", name)
		}
	}
}

func TestEncodeJSONRoundTrip(t *testing.T) {
	out, err := Encode(sampleTable(), JSON)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["date"] != "2025-08-28" || records[0]["close"] != 10.5 {
		t.Errorf("first record = %v", records[0])
	}
	if records[1]["note"] != nil {
		t.Errorf("nil cell should decode as null, got %v", records[1]["note"])
	}
	// Keys must come out in column order.
	if !strings.HasPrefix(out, `[{"date":`) {
		t.Errorf("keys not in column order: %s", out[:30])
	}
}

func TestEncodeJSONEmptyTable(t *testing.T) {
	out, err := Encode(market.NewTable("a"), JSON)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if out != "[]" {
		t.Errorf("empty table = %q, want []", out)
	}
}

func TestEncodeCSVRoundTrip(t *testing.T) {
	out, err := Encode(sampleTable(), CSV)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header plus 2 rows", len(records))
	}
	if records[0][0] != "date" || records[1][1] != "10.5" {
		t.Errorf("unexpected CSV content: %v", records[:2])
	}
	if records[2][2] != "" {
		t.Errorf("nil cell = %q, want empty", records[2][2])
	}
}

func TestEncodeXMLRoundTrip(t *testing.T) {
	out, err := Encode(sampleTable(), XML)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(out, xml.Header) {
		t.Error("missing XML header")
	}

	var doc xmlTable
	if err := xml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}
	if len(doc.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(doc.Rows))
	}
	if doc.Rows[0].Fields[0].Name != "date" || doc.Rows[0].Fields[1].Value != "10.5" {
		t.Errorf("unexpected XML content: %+v", doc.Rows[0])
	}
}

func TestEncodeExcelRoundTrip(t *testing.T) {
	out, err := Encode(sampleTable(), Excel)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	rows := excelRows(t, out)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2", len(rows))
	}
	if rows[0][0] != "date" || rows[1][1] != "10.5" {
		t.Errorf("unexpected sheet content: %v", rows[:2])
	}
}

func TestEncodeMarkdown(t *testing.T) {
	out, err := Encode(sampleTable(), Markdown)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header, separator and 2 rows", len(lines))
	}
	if !strings.Contains(lines[0], "| date |") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "---|") {
		t.Errorf("separator = %q", lines[1])
	}
	// Pipes inside cells must be escaped to keep the table parseable.
	if !strings.Contains(lines[2], `up \| strong`) {
		t.Errorf("cell pipe not escaped: %q", lines[2])
	}
}

func TestEncodeHTMLEscapes(t *testing.T) {
	table := market.NewTable("note")
	table.Append(`<script>alert("x")</script>`)

	out, err := Encode(table, HTML)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Error("cell content not escaped")
	}
	if !strings.Contains(out, "<thead>") || !strings.Contains(out, "<tbody>") {
		t.Error("table structure missing")
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{10.5, "10.5"},
		{3, "3"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := CellString(tt.in); got != tt.want {
			t.Errorf("CellString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// excelRows decodes a base64 xlsx payload back into sheet rows.
func excelRows(t *testing.T, encoded string) [][]string {
	t.Helper()

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("output is not a valid workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(excelSheet)
	if err != nil {
		t.Fatalf("failed to read sheet: %v", err)
	}
	return rows
}

func equalRows(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
