package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/invoice-scanner/internal/config"
	"github.com/zombor/invoice-scanner/internal/upload"
)

func main() {
	fs := ff.NewFlagSet("invoice-upload")
	var (
		serverURL = fs.StringLong("url", "http://localhost:8000", "Invoice scanner server URL")
		quiet     = fs.BoolLong("quiet", "Print only the rendered result")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix(config.EnvPrefix)); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := upload.NewTerminalView(os.Stdout, !*quiet)
	controller, err := upload.NewController(view, upload.PathPicker{Paths: fs.GetArgs()}, upload.NewClient(*serverURL))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := controller.SelectFile(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := controller.Submit(ctx); err != nil {
		if errors.Is(err, upload.ErrNoFile) {
			fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *quiet {
		fmt.Println(view.Output())
	}
}
