package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// AssetPaths returns the resolved paths of every asset description file.
func (c *Config) AssetPaths() []string {
	var out []string
	for _, a := range c.Assets {
		if a.File == "" {
			continue
		}
		p := a.File
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.dir, p)
		}
		out = append(out, p)
	}
	return out
}

// Watch reloads the config at path whenever it, or one of the asset files
// it references, is written or re-created, and hands the new Config to
// onChange. Risk thresholds, market price, profile overrides and asset
// descriptions all arrive through it. It runs until ctx is cancelled.
//
// A reload that fails to parse or validate is logged and skipped; onChange
// is not called and the caller keeps its previous config.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}
	if cfg, err := Load(path); err == nil {
		watchAssets(watcher, cfg)
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic-save editors replace the file, which shows up as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", path, "changed", event.Name, "err", err)
				continue
			}

			slog.Info("config: reloaded", "path", path, "changed", event.Name,
				"assets", len(cfg.Assets), "sources", len(cfg.Sources))
			onChange(cfg)

			// The replaced inode is no longer watched.
			_ = watcher.Add(path)
			watchAssets(watcher, cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// watchAssets adds cfg's asset files to w. Files that do not exist yet are
// picked up on the next reload.
func watchAssets(w *fsnotify.Watcher, cfg *Config) {
	for _, p := range cfg.AssetPaths() {
		if err := w.Add(p); err != nil {
			slog.Warn("config: cannot watch asset file", "path", p, "err", err)
		}
	}
}
