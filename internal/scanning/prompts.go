package scanning

const invoiceDetectionPrompt = `Look at this image and decide whether it shows an invoice.

An invoice is a commercial document issued by a seller to a buyer that lists goods or services, their prices and an amount due. Receipts and bills count as invoices. Letters, forms, photos, screenshots and other documents do not.

Return ONLY valid JSON in this exact format:
{"invoice": true}
or
{"invoice": false}`

const invoicePropertiesPrompt = `You are analyzing an invoice document. Carefully read all text in the image and extract the following information:

1. **Invoice Date**: The date the invoice was issued. Convert it to ISO 8601 format (YYYY-MM-DD).

2. **Total Amount**: The final total, grand total, or amount due. Extract only the numeric value (e.g., 31496 or 31496.0).

3. **Currency**: The currency of the total. Prefer an ISO code like EUR, USD or DEM.

Return ONLY valid JSON in this exact format:
{
  "invoice_date": "YYYY-MM-DD",
  "total_amount": 0.00,
  "currency": "EUR"
}

Important:
- The amount must be a number (not a string)
- If you cannot find a field, use null for that field
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// detectionSchema is the JSON schema for the detection response
func detectionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoice": map[string]any{
				"type":        "boolean",
				"description": "Invoice or not",
			},
		},
		"required":             []string{"invoice"},
		"additionalProperties": false,
	}
}

// propertiesSchema is the JSON schema for the extraction response
func propertiesSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoice_date": map[string]any{
				"type":        []string{"string", "null"},
				"description": "Date of the invoice in the format YYYY-MM-DD. Use null if the date is missing or unreadable.",
			},
			"total_amount": map[string]any{
				"type":        []string{"number", "null"},
				"description": "Final total amount of the invoice as a number, e.g., 31496 or 31496.0. Use null if missing.",
			},
			"currency": map[string]any{
				"type":        []string{"string", "null"},
				"description": "Currency of the invoice (prefer ISO code like EUR, USD, DEM). Use null if missing.",
			},
		},
		"required":             []string{"invoice_date", "total_amount", "currency"},
		"additionalProperties": false,
	}
}
