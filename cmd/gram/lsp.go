package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"

	"github.com/vito/gram/pkg/lsp"
)

func runLSP(ctx context.Context, cfg Config) error {
	var logDest io.Writer
	if cfg.LSPLogFile != "" {
		logFile, err := os.Create(cfg.LSPLogFile)
		if err != nil {
			return fmt.Errorf("open lsp log: %w", err)
		}
		defer logFile.Close() //nolint:errcheck
		logDest = logFile
	} else {
		logDest = os.Stderr
	}
	setupLogging(cfg, logDest)
	logger := slog.Default()

	logger.InfoContext(ctx, "starting LSP server")

	handler := lsp.NewHandler(ctx)
	srv := jrpc2.NewServer(handler, &jrpc2.ServerOptions{
		AllowPush: true,
		Logger:    func(text string) { logger.Debug(text) },
	})

	// Store server reference in handler so it can push diagnostics
	handler.SetServer(srv)

	srv.Start(channel.LSP(stdrwc{}, stdrwc{}))

	logger.InfoContext(ctx, "LSP server closed", "error", srv.Wait())
	return nil
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
