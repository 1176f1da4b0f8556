// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch reports files that appear or change in a directory once
// writes to them have settled.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period after the last write to a file before
// it is handed to the handler.
const DefaultDebounce = 500 * time.Millisecond

// Options configures Run.
type Options struct {
	// Dir is the directory to watch. Subdirectories are not watched.
	Dir string

	// Debounce overrides DefaultDebounce.
	Debounce time.Duration

	// Accept filters paths; nil accepts every regular file.
	Accept func(path string) bool
}

// Handler processes one settled file. Calls are sequential.
type Handler func(ctx context.Context, path string)

// Run watches opts.Dir until ctx ends, calling handle for each file created
// or written in it after its writes settle. It returns nil on cancellation.
func Run(ctx context.Context, opts Options, handle Handler) error {
	logger := zerolog.Ctx(ctx)

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", opts.Dir, err)
	}
	logger.Info().Str("dir", opts.Dir).Msg("watching directory")

	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	ready := make(chan string)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Stop()
		}
		timers[path] = time.AfterFunc(debounce, func() {
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str("dir", opts.Dir).Msg("watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if opts.Accept != nil && !opts.Accept(event.Name) {
				continue
			}
			logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("file changed")
			schedule(event.Name)

		case path := <-ready:
			mu.Lock()
			delete(timers, path)
			mu.Unlock()

			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			handle(ctx, filepath.Clean(path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("watcher error")
		}
	}
}
