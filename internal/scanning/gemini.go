package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Scanner interface using Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Scanner instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	pngData, err := normalizeImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	// genai.ImageData takes the format suffix ("png"), not the MIME type
	resp, err := g.model.GenerateContent(ctx, genai.ImageData("png", pngData), genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

// DetectInvoice classifies the image
func (g *Gemini) DetectInvoice(ctx context.Context, imageData []byte, contentType string) (*Detection, error) {
	text, err := g.generate(ctx, invoiceDetectionPrompt, imageData, contentType)
	if err != nil {
		return nil, err
	}
	d, err := parseDetectionJSON(text)
	if err != nil {
		return nil, fmt.Errorf("parsing detection response: %w", err)
	}
	return d, nil
}

// ExtractProperties extracts invoice date, total and currency
func (g *Gemini) ExtractProperties(ctx context.Context, imageData []byte, contentType string) (*InvoiceData, error) {
	text, err := g.generate(ctx, invoicePropertiesPrompt, imageData, contentType)
	if err != nil {
		return nil, err
	}
	data, err := parseInvoiceJSON(text)
	if err != nil {
		return nil, fmt.Errorf("parsing invoice data: %w", err)
	}
	return data, nil
}

// Name returns the backend name
func (g *Gemini) Name() string {
	return string(BackendGemini)
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
