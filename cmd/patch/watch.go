package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"pipelined.dev/patch/config"
)

// reloader applies patch changes of the config file.
type reloader struct {
	path    string
	current config.Config
	logger  logrus.FieldLogger
	apply   func(config.Patch) error
}

// reload loads config file and applies the patch if it has changed.
// Invalid configs are reported and the current patch keeps playing.
// Engine settings are applied only on restart.
func (r *reloader) reload() {
	cfg, err := config.Load(r.path)
	if err != nil {
		r.logger.Warnf("config is not reloaded: %v", err)
		return
	}
	if cfg.Engine != r.current.Engine {
		r.logger.Warn("engine config changes require restart")
	}
	diff, err := patchDiff(r.current.Patch, cfg.Patch, r.path)
	if err != nil {
		r.logger.Warnf("error comparing configs: %v", err)
		return
	}
	if diff == "" {
		r.logger.Debug("patch config not changed")
		return
	}
	if err := r.apply(cfg.Patch); err != nil {
		r.logger.Errorf("error applying patch: %v", err)
		return
	}
	r.current = cfg
	r.logger.Infof("patch reloaded:\n%s", diff)
}

// patchDiff returns unified diff of patches in yaml.
func patchDiff(a, b config.Patch, name string) (string, error) {
	ya, err := yaml.Marshal(a)
	if err != nil {
		return "", err
	}
	yb, err := yaml.Marshal(b)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(ya)),
		B:        difflib.SplitLines(string(yb)),
		FromFile: "playing",
		ToFile:   name,
		Context:  1,
	})
}

// watch calls reload every time the file is written. Directory is
// watched, because editors often replace the file on save.
func watch(ctx context.Context, path string, logger logrus.FieldLogger, reload func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("error watching %s: %w", path, err)
	}
	name := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watcher error: %v", err)
		}
	}
}
