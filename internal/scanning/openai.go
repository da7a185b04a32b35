package scanning

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAICompatible implements the Scanner interface against any server that
// speaks the OpenAI chat completions API (OpenRouter, llama.cpp server)
type OpenAICompatible struct {
	client  openai.Client
	backend BackendType
	model   string
	timeout time.Duration
}

// NewOpenAICompatible creates a Scanner for an OpenAI-compatible endpoint
func NewOpenAICompatible(backend BackendType, baseURL, apiKey, modelName string) (*OpenAICompatible, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%s base url is required", backend)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s api key is required", backend)
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)
	return &OpenAICompatible{
		client:  client,
		backend: backend,
		model:   modelName,
		timeout: 60 * time.Second,
	}, nil
}

// effectiveModel returns the model identifier sent on the wire.
// llama.cpp server serves a single model and expects an empty name.
func (o *OpenAICompatible) effectiveModel() string {
	if o.backend == BackendLlama {
		return ""
	}
	return o.model
}

func (o *OpenAICompatible) generate(ctx context.Context, prompt string, imageData []byte, contentType string, schemaName string, schema map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	pngData, err := normalizeImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	// the SDK omits an empty model, but llama.cpp server expects the key
	var opts []option.RequestOption
	if o.backend == BackendLlama {
		opts = append(opts, option.WithJSONSet("model", ""))
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.effectiveModel()),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: pngDataURL(pngData),
				}),
			}),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
		Temperature: openai.Float(0),
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", o.backend, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", o.backend)
	}
	return resp.Choices[0].Message.Content, nil
}

// DetectInvoice classifies the image
func (o *OpenAICompatible) DetectInvoice(ctx context.Context, imageData []byte, contentType string) (*Detection, error) {
	text, err := o.generate(ctx, invoiceDetectionPrompt, imageData, contentType, "invoice_detection", detectionSchema())
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
func (o *OpenAICompatible) ExtractProperties(ctx context.Context, imageData []byte, contentType string) (*InvoiceData, error) {
	text, err := o.generate(ctx, invoicePropertiesPrompt, imageData, contentType, "invoice_properties", propertiesSchema())
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
func (o *OpenAICompatible) Name() string {
	return string(o.backend)
}

// Close is a no-op; the client holds no resources
func (o *OpenAICompatible) Close() error {
	return nil
}
