package format

import (
	"html"
	"strings"

	"github.com/hsliu/cnstock/internal/market"
)

// encodeMarkdown renders the table as a GitHub-style pipe table.
func encodeMarkdown(t *market.Table) string {
	var sb strings.Builder

	sb.WriteString("|")
	for _, col := range t.Columns {
		sb.WriteString(" ")
		sb.WriteString(escapeMarkdown(col))
		sb.WriteString(" |")
	}
	sb.WriteString("\n|")
	for range t.Columns {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString("|")
		for j := range t.Columns {
			sb.WriteString(" ")
			sb.WriteString(escapeMarkdown(CellString(row[j])))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// encodeHTML renders the table as a plain <table> element.
func encodeHTML(t *market.Table) string {
	var sb strings.Builder

	sb.WriteString("<table>\n<thead>\n<tr>")
	for _, col := range t.Columns {
		sb.WriteString("<th>")
		sb.WriteString(html.EscapeString(col))
		sb.WriteString("</th>")
	}
	sb.WriteString("</tr>\n</thead>\n<tbody>\n")

	for _, row := range t.Rows {
		sb.WriteString("<tr>")
		for j := range t.Columns {
			sb.WriteString("<td>")
			sb.WriteString(html.EscapeString(CellString(row[j])))
			sb.WriteString("</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</tbody>\n</table>\n")
	return sb.String()
}
