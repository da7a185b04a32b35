package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/invoice-scanner/internal/scanning"
)

// ValidationError is an upload the service refuses to process
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

// IDGenerator generates unique IDs for history records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service runs uploads through the scanner and keeps their history
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service. storage may be nil to skip archiving
// uploads.
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return NewServiceWithDeps(db, scanner, storage, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// BackendName reports which scanner backend is in use
func (s *Service) BackendName() string {
	return s.scanner.Name()
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename strips special characters and truncates long phone-generated names
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "invoice"
	}
	if ext != "" {
		ext = "." + unsafeFilenameChars.ReplaceAllString(ext[1:], "")
	}
	return base + ext
}

// acceptedContentType reports whether the scanner can read the upload
func acceptedContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}

// ProcessInvoice validates an upload, runs detection and extraction, and
// records the outcome. A non-invoice image yields scanning.ErrNotInvoice.
func (s *Service) ProcessInvoice(ctx context.Context, filename string, data []byte, contentType string) (*scanning.InvoiceData, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !acceptedContentType(contentType) {
		return nil, &ValidationError{Detail: "File must be an image"}
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	var savedPath string
	if s.storage != nil {
		var err error
		savedPath, err = s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
		if err != nil {
			return nil, fmt.Errorf("saving file: %w", err)
		}
	}

	cleanup := func() {
		if savedPath == "" {
			return
		}
		if err := s.storage.Delete(savedPath); err != nil {
			slog.Warn("Failed to delete archived upload", "filename", savedPath, "error", err)
		}
	}

	result, err := scanning.ProcessInvoice(ctx, s.scanner, data, contentType)
	if err != nil && !errors.Is(err, scanning.ErrNotInvoice) {
		slog.Error("Failed to scan invoice",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"backend", s.scanner.Name(),
			"error", err,
		)
		cleanup()
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}

	record := &Invoice{
		ID:           id,
		OriginalName: filename,
		Filename:     savedPath,
		ContentType:  contentType,
		IsInvoice:    result != nil,
		Backend:      s.scanner.Name(),
		CreatedAt:    now,
	}
	if result != nil {
		record.InvoiceDate = result.InvoiceDate
		record.TotalAmount = result.TotalAmount
		record.Currency = result.Currency
	}

	if err := s.db.SaveInvoice(record); err != nil {
		cleanup()
		return nil, fmt.Errorf("saving invoice to database: %w", err)
	}

	if result == nil {
		slog.Info("Image is not an invoice", "id", id, "filename", filename)
		return nil, scanning.ErrNotInvoice
	}
	slog.Info("Processed invoice", "id", id, "filename", filename, "backend", s.scanner.Name())
	return result, nil
}

// GetInvoice retrieves a history record by ID
func (s *Service) GetInvoice(id string) (*Invoice, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	return inv, nil
}

// ListInvoices returns all history records, newest first
func (s *Service) ListInvoices() ([]*Invoice, error) {
	invoices, err := s.db.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return invoices, nil
}

// GetInvoiceFile retrieves the archived upload for a record
func (s *Service) GetInvoiceFile(id string) ([]byte, string, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice: %w", err)
	}
	if inv.Filename == "" || s.storage == nil {
		return nil, "", fmt.Errorf("%w: no archived file for %s", ErrNotFound, id)
	}

	data, err := s.storage.Get(inv.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice file: %w", err)
	}
	return data, inv.ContentType, nil
}

// DeleteInvoice removes a history record and its archived file
func (s *Service) DeleteInvoice(id string) error {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return fmt.Errorf("getting invoice for deletion: %w", err)
	}

	if inv.Filename != "" && s.storage != nil {
		if err := s.storage.Delete(inv.Filename); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete file", "filename", inv.Filename, "error", err)
		}
	}

	if err := s.db.DeleteInvoice(id); err != nil {
		return fmt.Errorf("deleting invoice from database: %w", err)
	}
	return nil
}
