package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/invoice-scanner/internal/config"
	"github.com/zombor/invoice-scanner/internal/scanning"
	"github.com/zombor/invoice-scanner/internal/upload"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	fs := ff.NewFlagSet("invoice-cli")
	var (
		backend = fs.StringLong("backend", string(scanning.BackendLlama), "Inference backend: llama, openrouter, ollama, gemini or anthropic")
		model   = fs.StringLong("model", "", "Model name (ignored by llama)")
		url     = fs.StringLong("url", "", "Backend base URL (defaults per backend)")
		apiKey  = fs.StringLong("api-key", "", "Backend API key (or the provider's *_API_KEY env var)")
		debug   = fs.BoolLong("debug", "Log each step to stderr")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(config.EnvPrefix)); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}
	if len(fs.GetArgs()) != 1 {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return errors.New("exactly one IMAGE argument is required")
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	file, err := upload.LoadFile(fs.GetArgs()[0])
	if err != nil {
		return err
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(file.Data)
	}

	scanner, err := config.NewScanner(config.Scanner{
		Backend: *backend,
		Model:   *model,
		URL:     *url,
		APIKey:  *apiKey,
	})
	if err != nil {
		return err
	}
	defer scanner.Close()

	slog.Debug("Detecting invoice", "file", file.Name, "content_type", contentType, "backend", scanner.Name())
	data, err := scanning.ProcessInvoice(ctx, scanner, file.Data, contentType)
	var out any = data
	switch {
	case errors.Is(err, scanning.ErrNotInvoice):
		slog.Debug("Image is not an invoice")
		out = scanning.Detection{Invoice: false}
	case err != nil:
		return err
	default:
		slog.Debug("Invoice properties extracted")
	}

	return json.NewEncoder(stdout).Encode(out)
}
