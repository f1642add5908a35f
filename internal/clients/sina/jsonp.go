package sina

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var dateCtorPattern = regexp.MustCompile(`new Date\((\d+),(\d+),(\d+)\)`)

// extractJSONPRecords pulls the record array out of a MacPage_Service
// callback body. The payload embeds the rows as a nested JSON array
// under "data".
func extractJSONPRecords(text string) ([][]any, error) {
	start := strings.Index(text, "[[")
	end := strings.LastIndex(text, "]]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no record array in response")
	}

	var records [][]any
	if err := json.Unmarshal([]byte(text[start:end+2]), &records); err != nil {
		return nil, fmt.Errorf("failed to decode record array: %w", err)
	}
	return records, nil
}
