package format

import (
	"encoding/xml"

	"github.com/hsliu/cnstock/internal/errors"
	"github.com/hsliu/cnstock/internal/market"
)

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlRow struct {
	Fields []xmlField `xml:"field"`
}

type xmlTable struct {
	XMLName xml.Name `xml:"table"`
	Rows    []xmlRow `xml:"row"`
}

// encodeXML renders the table as a <table><row><field name="...">...
// document with the standard XML header.
func encodeXML(t *market.Table) (string, error) {
	doc := xmlTable{Rows: make([]xmlRow, 0, len(t.Rows))}
	for _, row := range t.Rows {
		xr := xmlRow{Fields: make([]xmlField, len(t.Columns))}
		for j, col := range t.Columns {
			xr.Fields[j] = xmlField{Name: col, Value: CellString(row[j])}
		}
		doc.Rows = append(doc.Rows, xr)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.EncodeFailed(string(XML), err)
	}
	return xml.Header + string(data), nil
}
