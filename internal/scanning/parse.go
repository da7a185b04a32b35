package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order when the model ignores the requested format
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"02-01-2006",
	"2 January 2006",
	"January 2, 2006",
}

// extractJSONObject strips markdown code fences and any prose around the
// outermost JSON object in a model response
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("invalid JSON object in response")
	}

	return text[startIdx : endIdx+1], nil
}

// parseDetectionJSON parses the classification response
func parseDetectionJSON(text string) (*Detection, error) {
	text, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var d Detection
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}
	return &d, nil
}

// parseInvoiceJSON parses the extraction response and normalises its fields
func parseInvoiceJSON(text string) (*InvoiceData, error) {
	text, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var data InvoiceData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	data.InvoiceDate = normalizeDate(data.InvoiceDate)
	data.Currency = normalizeCurrency(data.Currency)

	return &data, nil
}

// normalizeDate rewrites a date into YYYY-MM-DD, or nil when it cannot be read
func normalizeDate(date *string) *string {
	if date == nil {
		return nil
	}
	raw := strings.TrimSpace(*date)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			s := d.Format("2006-01-02")
			return &s
		}
	}
	return nil
}

func normalizeCurrency(currency *string) *string {
	if currency == nil {
		return nil
	}
	c := strings.ToUpper(strings.TrimSpace(*currency))
	if c == "" {
		return nil
	}
	return &c
}
