package scanning

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeScanner struct {
	detection  *Detection
	detectErr  error
	data       *InvoiceData
	extractErr error
	extracted  bool
}

func (f *fakeScanner) DetectInvoice(ctx context.Context, imageData []byte, contentType string) (*Detection, error) {
	if f.detectErr != nil {
		return nil, f.detectErr
	}
	return f.detection, nil
}

func (f *fakeScanner) ExtractProperties(ctx context.Context, imageData []byte, contentType string) (*InvoiceData, error) {
	f.extracted = true
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.data, nil
}

func (f *fakeScanner) Name() string { return "fake" }

func (f *fakeScanner) Close() error { return nil }

var _ = Describe("ProcessInvoice", func() {
	var (
		scanner *fakeScanner
		data    *InvoiceData
		err     error
	)

	BeforeEach(func() {
		total := 123.45
		scanner = &fakeScanner{
			detection: &Detection{Invoice: true},
			data:      &InvoiceData{TotalAmount: &total},
		}
	})

	JustBeforeEach(func() {
		data, err = ProcessInvoice(context.Background(), scanner, []byte("img"), "image/png")
	})

	When("the image is an invoice", func() {
		It("returns the extracted data", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(data.TotalAmount).To(HaveValue(Equal(123.45)))
		})
	})

	When("the image is not an invoice", func() {
		BeforeEach(func() {
			scanner.detection = &Detection{Invoice: false}
		})

		It("returns ErrNotInvoice", func() {
			Expect(err).To(MatchError(ErrNotInvoice))
		})

		It("does not run extraction", func() {
			Expect(scanner.extracted).To(BeFalse())
		})
	})

	When("detection fails", func() {
		var setupErr error

		BeforeEach(func() {
			setupErr = errors.New("boom")
			scanner.detectErr = setupErr
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(setupErr))
		})
	})

	When("extraction fails", func() {
		var setupErr error

		BeforeEach(func() {
			setupErr = errors.New("boom")
			scanner.extractErr = setupErr
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(setupErr))
		})
	})
})

var _ = Describe("New", func() {
	It("creates an OpenAI-compatible scanner for llama without a key", func() {
		s, err := New(Options{Backend: BackendLlama})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name()).To(Equal("llama"))
	})

	It("requires a key for openrouter", func() {
		_, err := New(Options{Backend: BackendOpenRouter, Model: "m"})
		Expect(err).To(MatchError(ContainSubstring("api key is required")))
	})

	It("creates an ollama scanner with defaults", func() {
		s, err := New(Options{Backend: BackendOllama})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name()).To(Equal("ollama"))
	})

	It("creates a gemini scanner", func() {
		s, err := New(Options{Backend: BackendGemini, APIKey: "test-key"})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name()).To(Equal("gemini"))
		Expect(s.Close()).To(Succeed())
	})

	It("requires a key for gemini", func() {
		_, err := New(Options{Backend: BackendGemini})
		Expect(err).To(MatchError(ContainSubstring("api key is required")))
	})

	It("requires a key for anthropic", func() {
		_, err := New(Options{Backend: BackendAnthropic})
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown backends", func() {
		_, err := New(Options{Backend: "bogus"})
		Expect(err).To(MatchError(ContainSubstring("unknown backend")))
	})
})
