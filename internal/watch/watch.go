// pattern: Imperative Shell

// Package watch recomputes a build's layout whenever the files that decide
// it change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"aaosbuild/internal/logging"
	"aaosbuild/internal/rootfind"
)

const (
	defaultDebounce     = 200 * time.Millisecond
	defaultPollInterval = 30 * time.Second
)

// Options selects what to watch.
type Options struct {
	// ProjectDir is the root project directory. It and every ancestor are
	// watched so that a checkout marker appearing anywhere above is noticed.
	ProjectDir string

	// ManifestPath is the manifest file, empty when the embedded one is used.
	ManifestPath string

	Debounce     time.Duration
	PollInterval time.Duration
}

// RecomputeFunc rebuilds and persists the layout.
type RecomputeFunc func(ctx context.Context) error

// Watcher calls a RecomputeFunc whenever a relevant file changes, with a
// periodic recompute as a safeguard for filesystems that drop events.
type Watcher struct {
	opts      Options
	recompute RecomputeFunc
	logger    *logging.ScopedLogger
	watcher   *fsnotify.Watcher
}

// New creates a Watcher. Zero durations in opts take their defaults and a
// nil logger discards output. The fsnotify watcher is released when Run returns.
func New(opts Options, recompute RecomputeFunc, logger *logging.ScopedLogger) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{opts: opts, recompute: recompute, logger: logger, watcher: watcher}, nil
}

// Run recomputes once, then again after every relevant change.
// It returns when the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	dirs, err := Dirs(w.opts.ProjectDir, w.opts.ManifestPath)
	if err != nil {
		return err
	}
	if err := w.watcher.Add(dirs[0]); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dirs[0], err)
	}
	for _, dir := range dirs[1:] {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Debug("skipping unwatchable directory", "dir", dir, "error", err)
		}
	}

	if err := w.recompute(ctx); err != nil {
		return fmt.Errorf("initial layout: %w", err)
	}

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	var pending <-chan time.Time
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !Relevant(event.Name, w.opts.ManifestPath) {
				continue
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.opts.Debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.run(ctx)

		case <-ticker.C:
			w.run(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) run(ctx context.Context) {
	if err := w.recompute(ctx); err != nil {
		w.logger.Warn("layout recompute failed", "error", err)
	}
}

// Dirs lists the directories to watch: the project directory first, then
// its ancestors up to the filesystem root, then the manifest's directory.
func Dirs(projectDir, manifestPath string) ([]string, error) {
	dir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("project directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("project directory %s is not a directory", dir)
	}

	seen := make(map[string]bool)
	var dirs []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	for {
		add(dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if manifestPath != "" {
		if abs, err := filepath.Abs(manifestPath); err == nil {
			add(filepath.Dir(abs))
		}
	}
	return dirs, nil
}

// Relevant reports whether a change to name can alter the layout.
func Relevant(name, manifestPath string) bool {
	if manifestPath != "" {
		if abs, err := filepath.Abs(manifestPath); err == nil && filepath.Clean(name) == abs {
			return true
		}
	}
	switch filepath.Base(name) {
	case rootfind.RepoMarker, rootfind.SuperManifestMarker, rootfind.OutDirName,
		rootfind.SettingsFile, rootfind.BuildLogicDir:
		return true
	}
	return false
}
