package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/vito/gram/pkg/gram"
)

// runWatch parses the sentence once, then re-loads the grammar and re-parses
// whenever the grammar file changes on disk.
func runWatch(ctx context.Context, cfg Config, sentence string) error {
	setupLogging(cfg, os.Stderr)

	path, err := grammarPath(&cfg)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors often replace the
	// file on save, which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	reparse := func() {
		g, err := gram.LoadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		out, err := parseSentence(ctx, cfg, g, sentence)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		fmt.Print(out)
	}
	reparse()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.DebugContext(ctx, "grammar changed", "path", path, "op", event.Op)
			reparse()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "watch error", "error", err)
		}
	}
}
