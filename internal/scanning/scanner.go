package scanning

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotInvoice is returned by ProcessInvoice when the detection step
// classifies the image as something other than an invoice.
var ErrNotInvoice = errors.New("no invoice detected in image")

// Detection is the result of the invoice classification step
type Detection struct {
	Invoice bool `json:"invoice"`
}

// InvoiceData contains extracted information from an invoice.
// Every field is nullable; all three keys are always serialised.
type InvoiceData struct {
	InvoiceDate *string  `json:"invoice_date"` // YYYY-MM-DD
	TotalAmount *float64 `json:"total_amount"`
	Currency    *string  `json:"currency"`
}

// Scanner defines the interface for invoice inference backends
type Scanner interface {
	// DetectInvoice classifies an image as invoice or not
	DetectInvoice(ctx context.Context, imageData []byte, contentType string) (*Detection, error)

	// ExtractProperties reads date, total and currency from an invoice image
	ExtractProperties(ctx context.Context, imageData []byte, contentType string) (*InvoiceData, error)

	// Name identifies the backend in logs and history records
	Name() string

	// Close closes the scanner and releases resources
	Close() error
}

// ProcessInvoice runs detection and, for invoices, property extraction.
func ProcessInvoice(ctx context.Context, s Scanner, imageData []byte, contentType string) (*InvoiceData, error) {
	detection, err := s.DetectInvoice(ctx, imageData, contentType)
	if err != nil {
		return nil, fmt.Errorf("detecting invoice: %w", err)
	}
	if !detection.Invoice {
		return nil, ErrNotInvoice
	}

	data, err := s.ExtractProperties(ctx, imageData, contentType)
	if err != nil {
		return nil, fmt.Errorf("extracting invoice properties: %w", err)
	}
	return data, nil
}
