package invoice

import "time"

// Invoice is a history record of one processed upload
type Invoice struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	Filename     string    `json:"filename,omitempty"` // archived upload, empty when archiving is off
	ContentType  string    `json:"content_type"`
	IsInvoice    bool      `json:"is_invoice"`
	InvoiceDate  *string   `json:"invoice_date"`
	TotalAmount  *float64  `json:"total_amount"`
	Currency     *string   `json:"currency"`
	Backend      string    `json:"backend"`
	CreatedAt    time.Time `json:"created_at"`
}
