package scanning

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic implements the Scanner interface using the Anthropic Messages API
type Anthropic struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropic creates a new Anthropic Scanner instance.
// baseURL may be empty to use the public API.
func NewAnthropic(apiKey, baseURL, modelName string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	model := anthropic.ModelClaudeHaiku4_5
	if modelName != "" {
		model = anthropic.Model(modelName)
	}

	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

func (a *Anthropic) generate(ctx context.Context, prompt string, imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	pngData, err := normalizeImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   1024,
		Temperature: anthropic.Float(0),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(pngMimeType, base64.StdEncoding.EncodeToString(pngData)),
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}
	return text.String(), nil
}

// DetectInvoice classifies the image
func (a *Anthropic) DetectInvoice(ctx context.Context, imageData []byte, contentType string) (*Detection, error) {
	text, err := a.generate(ctx, invoiceDetectionPrompt, imageData, contentType)
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
func (a *Anthropic) ExtractProperties(ctx context.Context, imageData []byte, contentType string) (*InvoiceData, error) {
	text, err := a.generate(ctx, invoicePropertiesPrompt, imageData, contentType)
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
func (a *Anthropic) Name() string {
	return string(BackendAnthropic)
}

// Close is a no-op; the client holds no resources
func (a *Anthropic) Close() error {
	return nil
}
