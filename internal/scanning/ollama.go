package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ollama implements the Scanner interface using Ollama's native chat API
type Ollama struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewOllama creates a new Ollama Scanner instance
// Vision models that handle invoices reasonably well:
//   - llava:1.6
//   - qwen2.5vl:7b (good OCR)
//   - llama3.2-vision
//
// apiKey is optional and only needed for hosted Ollama endpoints.
func NewOllama(baseURL, modelName, apiKey string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llava"
	}

	return &Ollama{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   modelName,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 120 * time.Second, // vision models are slow on CPU
		},
	}, nil
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   map[string]any  `json:"format,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (o *Ollama) chat(ctx context.Context, prompt string, imageData []byte, contentType string, schema map[string]any) (string, error) {
	pngData, err := normalizeImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	reqBody := ollamaChatRequest{
		Model:  o.model,
		Stream: false,
		Messages: []ollamaMessage{
			{
				Role:    "system",
				Content: "You are an expert at reading invoices. You carefully read all text in images and extract accurate information.",
			},
			{
				Role:    "user",
				Content: prompt,
				Images:  []string{base64.StdEncoding.EncodeToString(pngData)},
			},
		},
		Format:  schema,
		Options: map[string]any{"temperature": 0},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return chatResp.Message.Content, nil
}

// DetectInvoice classifies the image
func (o *Ollama) DetectInvoice(ctx context.Context, imageData []byte, contentType string) (*Detection, error) {
	text, err := o.chat(ctx, invoiceDetectionPrompt, imageData, contentType, detectionSchema())
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
func (o *Ollama) ExtractProperties(ctx context.Context, imageData []byte, contentType string) (*InvoiceData, error) {
	text, err := o.chat(ctx, invoicePropertiesPrompt, imageData, contentType, propertiesSchema())
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
func (o *Ollama) Name() string {
	return string(BackendOllama)
}

// Close closes the Ollama client (no-op for HTTP client)
func (o *Ollama) Close() error {
	return nil
}
