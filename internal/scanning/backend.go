package scanning

import "fmt"

// BackendType selects an inference backend
type BackendType string

const (
	BackendOpenRouter BackendType = "openrouter"
	BackendOllama     BackendType = "ollama"
	BackendLlama      BackendType = "llama"
	BackendGemini     BackendType = "gemini"
	BackendAnthropic  BackendType = "anthropic"
)

// Default endpoints per backend
const (
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1"
	DefaultOllamaURL     = "http://localhost:11434"
	DefaultLlamaURL      = "http://localhost:8080/v1"
)

// Backends lists every supported backend in help-text order
var Backends = []BackendType{BackendLlama, BackendOpenRouter, BackendOllama, BackendGemini, BackendAnthropic}

// Options configures a backend. URL and APIKey are used only where the
// backend needs them.
type Options struct {
	Backend BackendType
	Model   string
	URL     string
	APIKey  string
}

// New creates the Scanner selected by opts.Backend
func New(opts Options) (Scanner, error) {
	switch opts.Backend {
	case BackendOpenRouter:
		url := opts.URL
		if url == "" {
			url = DefaultOpenRouterURL
		}
		return NewOpenAICompatible(BackendOpenRouter, url, opts.APIKey, opts.Model)
	case BackendLlama:
		url := opts.URL
		if url == "" {
			url = DefaultLlamaURL
		}
		apiKey := opts.APIKey
		if apiKey == "" {
			apiKey = "not-needed"
		}
		return NewOpenAICompatible(BackendLlama, url, apiKey, opts.Model)
	case BackendOllama:
		return NewOllama(opts.URL, opts.Model, opts.APIKey)
	case BackendGemini:
		return NewGemini(opts.APIKey, opts.Model)
	case BackendAnthropic:
		return NewAnthropic(opts.APIKey, opts.URL, opts.Model)
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}
