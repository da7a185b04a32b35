// Package config resolves and validates inference backend settings shared by
// the server and the command line tools.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"

	"github.com/zombor/invoice-scanner/internal/scanning"
)

// EnvPrefix is the prefix ff uses to map flags onto environment variables
const EnvPrefix = "INVOICE_SCANNER"

// apiKeyEnv maps each backend to the provider variable holding its key
var apiKeyEnv = map[scanning.BackendType]string{
	scanning.BackendOpenRouter: "OPENROUTER_API_KEY",
	scanning.BackendOllama:     "OLLAMA_API_KEY",
	scanning.BackendGemini:     "GEMINI_API_KEY",
	scanning.BackendAnthropic:  "ANTHROPIC_API_KEY",
}

// LoadDotEnv loads a .env file from the working directory when one exists.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Scanner holds the backend selection as given on the command line
type Scanner struct {
	Backend string
	Model   string
	URL     string
	APIKey  string
}

// Resolve fills the API key and llama URL from provider environment variables
func (c Scanner) Resolve() Scanner {
	backend := scanning.BackendType(strings.ToLower(strings.TrimSpace(c.Backend)))
	c.Backend = string(backend)
	if c.APIKey == "" {
		if env, ok := apiKeyEnv[backend]; ok {
			c.APIKey = os.Getenv(env)
		}
	}
	if c.URL == "" && backend == scanning.BackendLlama {
		c.URL = os.Getenv("LLAMA_SERVER_URL")
	}
	return c
}

func backendNames() []interface{} {
	names := make([]interface{}, 0, len(scanning.Backends))
	for _, b := range scanning.Backends {
		names = append(names, string(b))
	}
	return names
}

func (c Scanner) needs(backends ...scanning.BackendType) bool {
	for _, b := range backends {
		if c.Backend == string(b) {
			return true
		}
	}
	return false
}

// Validate checks a resolved configuration
func (c Scanner) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend,
			validation.Required,
			validation.In(backendNames()...).Error("must be one of llama, openrouter, ollama, gemini, anthropic"),
		),
		validation.Field(&c.Model,
			validation.When(c.needs(scanning.BackendOpenRouter), validation.Required.Error("is required for the openrouter backend")),
		),
		validation.Field(&c.URL, is.URL),
		validation.Field(&c.APIKey,
			validation.When(c.needs(scanning.BackendOpenRouter, scanning.BackendGemini, scanning.BackendAnthropic),
				validation.Required.Error("is required for this backend (flag or provider environment variable)")),
		),
	)
}

// Options converts the configuration for scanning.New
func (c Scanner) Options() scanning.Options {
	return scanning.Options{
		Backend: scanning.BackendType(c.Backend),
		Model:   c.Model,
		URL:     c.URL,
		APIKey:  c.APIKey,
	}
}

// NewScanner resolves, validates and builds a scanner in one step
func NewScanner(c Scanner) (scanning.Scanner, error) {
	c = c.Resolve()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return scanning.New(c.Options())
}
