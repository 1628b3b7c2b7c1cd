package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/wowobj/internal/config"
	"github.com/Faultbox/wowobj/internal/logger"
)

// watchedExts are the file types an import reads.
var watchedExts = map[string]bool{
	".obj":  true,
	".mtl":  true,
	".csv":  true,
	".json": true,
}

func cmdWatch(cfg *config.Config, args []string) {
	requireArgs(args, 1, "watch <file.obj> [out.gltf]")

	file := args[0]
	out := ""
	if len(args) > 1 {
		out = args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := watch(ctx, cfg, file, out); err != nil {
		fail(err)
	}
}

// watch re-runs the import whenever a file in the import's directory tree,
// or in the directory of any file the last import read, changes. Bursts of
// events are coalesced by the configured debounce.
func watch(ctx context.Context, cfg *config.Config, file, out string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	root := filepath.Dir(file)
	if err := addRecursive(w, root); err != nil {
		return err
	}

	rebuild := func() {
		res, err := runImport(cfg, file)
		if err != nil {
			logger.Error("import failed", zap.Error(err))
			return
		}

		// Shared models usually live outside the file's directory.
		for _, dir := range readDirs(res) {
			if err := w.Add(dir); err != nil {
				logger.Debug("watching model directory", zap.String("dir", dir), zap.Error(err))
			}
		}

		if out == "" {
			return
		}
		if err := save(cfg, res, out); err != nil {
			logger.Error("export failed", zap.Error(err))
			return
		}
		logger.Info("exported", zap.String("path", out))
	}

	rebuild()

	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	var pending <-chan time.Time

	logger.Info("watching", zap.String("dir", root))
	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if e.Has(fsnotify.Create) {
				if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
					if err := addRecursive(w, e.Name); err != nil {
						logger.Warn("watching new directory", zap.String("dir", e.Name), zap.Error(err))
					}
					continue
				}
			}
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Rename) {
				continue
			}
			if !watchedExts[strings.ToLower(filepath.Ext(e.Name))] {
				continue
			}
			logger.Debug("change", zap.String("file", e.Name), zap.Stringer("op", e.Op))
			pending = time.After(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			rebuild()
		}
	}
}

// addRecursive watches dir and every directory below it.
func addRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// readDirs returns the distinct directories holding the files an import
// read.
func readDirs(res *imported) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range res.session.FilesRead() {
		dir := filepath.Join(res.root, filepath.FromSlash(path.Dir(f)))
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
