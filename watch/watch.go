// Package watch drives repeated rebuilds of a module: once on every
// filesystem change under its source tree, and as a periodic fallback
// sweep for changes fsnotify missed (network filesystems, editors that
// replace files via rename).
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"github.com/robfig/cron/v3"
)

// BuildFunc runs one build and reports whether it succeeded.
type BuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Roots are the directories to watch recursively for source,
	// header, and module-file changes.
	Roots []string
	// Debounce coalesces a burst of filesystem events into a single
	// rebuild. Defaults to 300ms.
	Debounce time.Duration
	// CronSchedule, if non-empty, additionally triggers a rebuild on
	// this schedule regardless of filesystem activity. Defaults to
	// "*/2 * * * *" (every two minutes) when left empty.
	CronSchedule string
}

// Watcher rebuilds via Build whenever files under Options.Roots change,
// plus on a cron fallback schedule.
type Watcher struct {
	opts    Options
	build   BuildFunc
	fsw     *fsnotify.Watcher
	cron    *cron.Cron
	trigger chan struct{}
}

// New creates a Watcher. Call Run to start watching; Run blocks until
// ctx is cancelled.
func New(opts Options, build BuildFunc) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.CronSchedule == "" {
		opts.CronSchedule = "*/2 * * * *"
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range opts.Roots {
		if err := addRecursive(fsw, root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return &Watcher{
		opts:    opts,
		build:   build,
		fsw:     fsw,
		cron:    cron.New(),
		trigger: make(chan struct{}, 1),
	}, nil
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

func isBuildInput(name string) bool {
	switch filepath.Ext(name) {
	case ".c", ".cc", ".cpp", ".cxx", ".h", ".hh", ".hpp", ".hxx", ".rc":
		return true
	}
	return filepath.Base(name) == "module.ebuild.cs" || filepath.Ext(name) == ".cs"
}

// Run watches for changes and invokes the build function, debounced,
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if _, err := w.cron.AddFunc(w.opts.CronSchedule, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}
	w.cron.Start()
	defer w.cron.Stop()

	var debounceTimer *time.Timer
	rebuild := func() {
		glog.Info("watch: rebuilding")
		if err := w.build(ctx); err != nil {
			glog.Errorf("watch: build failed: %v", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.fsw.Add(ev.Name); err != nil {
						glog.Warningf("watch: add %s: %v", ev.Name, err)
					}
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 || !isBuildInput(ev.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.opts.Debounce, func() {
				select {
				case w.trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			glog.Warningf("watch: fsnotify error: %v", err)

		case <-w.trigger:
			rebuild()
		}
	}
}
