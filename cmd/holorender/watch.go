package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long a file must stay quiet before it is re-rendered.
// Exporters usually write a model in several chunks.
const settle = 300 * time.Millisecond

// watch calls rerender with the FBX files under input that were written or
// created, until ctx is cancelled. A file input watches its directory and
// reports only that file.
func watch(ctx context.Context, input string, logger *slog.Logger, rerender func(paths []string)) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	only := ""
	if info.IsDir() {
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			return w.Add(path)
		})
	} else {
		only = filepath.Clean(input)
		err = w.Add(filepath.Dir(input))
	}
	if err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() && only == "" {
					if err := w.Add(event.Name); err != nil {
						logger.Warn("watch: cannot add directory", "path", event.Name, "err", err)
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !wanted(event.Name, only) {
				continue
			}
			logger.Debug("watch: model changed", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = true
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: watcher error", "err", err)
		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			sort.Strings(paths)
			rerender(paths)
		}
	}
}

func wanted(path, only string) bool {
	if only != "" {
		return filepath.Clean(path) == only
	}
	return strings.EqualFold(filepath.Ext(path), ".fbx")
}
