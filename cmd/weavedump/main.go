// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// weavedump downloads an ANS-104 bundle transaction from an Arweave
// gateway and writes its data items to a file.
//
// The bundle body is streamed chunk by chunk by default and decoded
// one item at a time, so memory use stays at about one chunk plus one
// item regardless of bundle size. --no-stream fetches the body in a
// single request instead.
//
// Output is a JSON array (or a CBOR sequence with --format cbor),
// optionally compressed with zstd or lz4 and encrypted to age
// recipients. It is written to a temporary file next to the
// destination and renamed into place once the whole bundle decodes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/weavedump/lib/arweave"
	"github.com/bureau-foundation/weavedump/lib/config"
	"github.com/bureau-foundation/weavedump/lib/dump"
	"github.com/bureau-foundation/weavedump/lib/sink"
	"github.com/bureau-foundation/weavedump/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	transactionID  string
	outputFile     string
	gateway        string
	configPath     string
	noStream       bool
	format         string
	compression    string
	recipients     []string
	omitData       bool
	pendingRetries int
	verbose        bool
	showVersion    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var f flags
	flagSet := pflag.NewFlagSet("weavedump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&f.transactionID, "transaction-id", "t", "", "ID of the bundle transaction to dump")
	flagSet.StringVarP(&f.outputFile, "output-file", "o", "", "output path (default: <transaction-id>.json, with suffixes for format, compression, and encryption)")
	flagSet.StringVar(&f.gateway, "gateway", "", "gateway base URL (overrides gateway.url)")
	flagSet.StringVar(&f.configPath, "config", "", "configuration file (default: $"+config.EnvironmentVariable+")")
	flagSet.BoolVar(&f.noStream, "no-stream", false, "fetch the bundle body in one request instead of chunk by chunk")
	flagSet.StringVar(&f.format, "format", "", "output format: json or cbor (overrides output.format)")
	flagSet.StringVar(&f.compression, "compression", "", "output compression: none, zstd, or lz4 (overrides output.compression)")
	flagSet.StringArrayVar(&f.recipients, "recipient", nil, "age public key to encrypt the output to (repeatable, overrides output.recipients)")
	flagSet.BoolVar(&f.omitData, "omit-data", false, "write each payload's size and BLAKE3 digest instead of its bytes")
	flagSet.IntVar(&f.pendingRetries, "pending-retries", 0, "retries for chunks the gateway reports as pending (overrides retry.pending_attempts)")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log each decoded item and fetched chunk")
	flagSet.BoolVar(&f.showVersion, "version", false, "print version information and exit (with --verbose, include Go version and platform)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if f.showVersion {
		if f.verbose {
			fmt.Fprintf(stdout, "weavedump %s\n", version.Full())
		} else {
			fmt.Fprintf(stdout, "weavedump %s\n", version.Info())
		}
		return nil
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected argument: %s", extra[0])
	}
	if f.transactionID == "" {
		return errors.New("--transaction-id is required")
	}
	if err := arweave.ValidateTransactionID(f.transactionID); err != nil {
		return err
	}

	cfg, err := loadConfig(flagSet, &f)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, f.verbose)

	format, err := sink.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	compression, err := sink.ParseCompression(cfg.Output.Compression)
	if err != nil {
		return err
	}
	outputOptions := sink.Options{
		Format:      format,
		Compression: compression,
		Recipients:  cfg.Output.Recipients,
	}
	outputPath := f.outputFile
	if outputPath == "" {
		outputPath = f.transactionID + outputOptions.Extension()
	}

	client, err := arweave.NewClient(arweave.Config{
		BaseURL:    cfg.Gateway.URL,
		HTTPClient: &http.Client{Timeout: cfg.GatewayTimeout()},
		UserAgent:  version.UserAgent(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	source := dump.SourceChunks
	if f.noStream {
		source = dump.SourceWhole
	}
	options := dump.Options{
		TransactionID: f.transactionID,
		Source:        source,
		Retry: arweave.RetryConfig{
			Attempts:   cfg.Retry.PendingAttempts,
			Backoff:    cfg.RetryBackoff(),
			MaxBackoff: cfg.RetryMaxBackoff(),
		},
		Record: sink.RecordOptions{OmitData: cfg.Output.OmitData},
		Logger: logger,
	}

	if err := writeOutput(ctx, client, outputPath, outputOptions, options); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Bundle data stored in: %s\n", outputPath)
	return nil
}

// loadConfig resolves the configuration file and applies the flags
// that were set on the command line.
func loadConfig(flagSet *pflag.FlagSet, f *flags) (*config.Config, error) {
	cfg, err := config.Resolve(f.configPath)
	if err != nil {
		return nil, err
	}
	if flagSet.Changed("gateway") {
		cfg.Gateway.URL = f.gateway
	}
	if flagSet.Changed("format") {
		cfg.Output.Format = f.format
	}
	if flagSet.Changed("compression") {
		cfg.Output.Compression = f.compression
	}
	if flagSet.Changed("recipient") {
		cfg.Output.Recipients = f.recipients
	}
	if flagSet.Changed("omit-data") {
		cfg.Output.OmitData = f.omitData
	}
	if flagSet.Changed("pending-retries") {
		cfg.Retry.PendingAttempts = f.pendingRetries
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// writeOutput runs the dump into a temporary file beside path and
// renames it into place on success. On failure the temporary file is
// removed and path is left untouched.
func writeOutput(ctx context.Context, gateway dump.Gateway, path string, outputOptions sink.Options, options dump.Options) (err error) {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	temporaryPath := file.Name()
	var output *sink.Output
	defer func() {
		if err != nil {
			if output != nil {
				// Stops the compressor; the bytes are discarded.
				_ = output.Close()
			}
			_ = file.Close()
			_ = os.Remove(temporaryPath)
		}
	}()

	output, err = sink.Open(file, outputOptions)
	if err != nil {
		return err
	}
	if _, err := dump.Run(ctx, gateway, output, options); err != nil {
		return err
	}
	if err := output.Close(); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	if err := os.Chmod(temporaryPath, 0o644); err != nil {
		return fmt.Errorf("setting output file mode: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("moving output into place: %w", err)
	}
	return nil
}

// newLogger returns a text logger when stderr is a terminal and a
// JSON logger otherwise.
func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	if file, ok := stderr.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return slog.New(slog.NewTextHandler(stderr, options))
	}
	return slog.New(slog.NewJSONHandler(stderr, options))
}
