package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher reloads the config file when it changes and publishes the live settings
type Watcher struct {
	path    string
	reload  func() (*Config, error)
	current *Config
	updates chan Live
	watcher *fsnotify.Watcher
	log     *slog.Logger
}

// NewWatcher watches the directory holding current.ConfigFile. reload produces
// the new configuration, normally by calling Load with the original arguments
// so flags keep their precedence over the file.
func NewWatcher(current *Config, reload func() (*Config, error), logger *slog.Logger) (*Watcher, error) {
	if current.ConfigFile == "" {
		return nil, errors.New("no config file to watch")
	}
	if logger == nil {
		logger = slog.Default()
	}

	path, err := filepath.Abs(current.ConfigFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve config path")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	// editors often replace the file, so watch its directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", filepath.Dir(path))
	}

	return &Watcher{
		path:    path,
		reload:  reload,
		current: current,
		updates: make(chan Live, 1),
		watcher: watcher,
		log:     logger,
	}, nil
}

// Updates delivers the latest live settings. Only the newest pending value is kept.
func (w *Watcher) Updates() <-chan Live {
	return w.updates
}

// Run handles file events until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.log.Debug("config file changed", "path", event.Name, "op", event.Op.String())
				w.reloadConfig()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reloadConfig() {
	next, err := w.reload()
	if err != nil {
		w.log.Warn("ignoring invalid config", "path", w.path, "error", err)
		return
	}

	if changed := w.current.RestartRequired(next); len(changed) > 0 {
		w.log.Info("config changes need a restart to apply", "settings", changed)
	}

	live := next.Live()
	if live == w.current.Live() {
		return
	}
	w.current = mergeLive(w.current, next)
	w.log.Info("applying config change", "refresh", live.Refresh, "show_crowns", live.ShowCrowns, "show_frametime", live.ShowFrametime)

	// replace any value the consumer has not picked up yet
	select {
	case <-w.updates:
	default:
	}
	w.updates <- live
}

// mergeLive copies the runtime settings of next onto a copy of base
func mergeLive(base, next *Config) *Config {
	merged := *base
	merged.RefreshMs = next.RefreshMs
	merged.ShowCrowns = next.ShowCrowns
	merged.ShowFrametime = next.ShowFrametime
	return &merged
}
