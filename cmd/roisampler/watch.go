package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/S93RUM-06/ocr-pipeline/internal/config"
	"github.com/S93RUM-06/ocr-pipeline/internal/export"
)

var (
	watchOut     string
	watchID      string
	watchName    string
	watchProfile string
	watchSchema  string
)

const (
	// watchSettle is how long the sample files must be quiet before a rebuild.
	watchSettle = 300 * time.Millisecond

	// Rebuilds that hit a half-written sample file are retried.
	watchAttempts   = 3
	watchRetryDelay = 200 * time.Millisecond
)

var watchCmd = &cobra.Command{
	Use:   "watch SAMPLES...",
	Short: "Rebuild a template whenever its sample files change",
	Long: `Watch builds the template once, then rebuilds it every time one of the
sample files is written. Builds that fail (unreadable samples, invalid
template) are logged and the last good template is kept.

Changes to quality_threshold and log_level in the config file apply to the
next rebuild without restarting.

Examples:
  roisampler watch scans-1.yaml scans-2.yaml --out einvoice.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := cfgMgr.Get()

		opts := buildOptions{
			Paths:    args,
			ID:       watchID,
			Name:     watchName,
			Template: cfg.Template,
			Validate: true,
			Logger:   logger,
		}
		if watchProfile != "" {
			store, err := openProfiles()
			if err != nil {
				return err
			}
			p, err := store.Get(watchProfile)
			if err != nil {
				return err
			}
			opts.Profile = p
		}
		v, err := loadValidator(ctx, watchSchema)
		if err != nil {
			return err
		}
		opts.Validator = v

		w := newSampleWatcher(opts, watchOut, cfg.QualityThreshold)
		cfgMgr.OnChange(func(c *config.Config) {
			w.SetThreshold(c.QualityThreshold)
			if err := applyLogLevel(c); err != nil {
				logger.Warn("ignoring log level", "error", err)
			}
			logger.Info("config reloaded", "quality_threshold", c.QualityThreshold)
		})
		if cfgMgr.File() != "" {
			cfgMgr.WatchConfig()
		}

		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchOut, "out", "", "output template file (required)")
	watchCmd.Flags().StringVar(&watchID, "id", "", "template id (default: derived from the first sample file)")
	watchCmd.Flags().StringVar(&watchName, "name", "", "template name (default: derived from the first sample file)")
	watchCmd.Flags().StringVar(&watchProfile, "profile", "", "field-set profile id whose hints are applied to the regions")
	watchCmd.Flags().StringVar(&watchSchema, "schema", "", "custom schema file (default: config schema_path or built-in)")
	_ = watchCmd.MarkFlagRequired("out")
}

// sampleWatcher rebuilds a template when its sample files change.
type sampleWatcher struct {
	opts      buildOptions
	out       string
	threshold atomic.Uint64 // math.Float64bits
	settle    time.Duration
	builds    atomic.Int64 // successful builds, for tests
}

func newSampleWatcher(opts buildOptions, out string, threshold float64) *sampleWatcher {
	w := &sampleWatcher{opts: opts, out: out, settle: watchSettle}
	w.SetThreshold(threshold)
	return w
}

// SetThreshold changes the quality threshold used by the next rebuild.
func (w *sampleWatcher) SetThreshold(threshold float64) {
	w.threshold.Store(math.Float64bits(threshold))
}

func (w *sampleWatcher) logger() *slog.Logger {
	if w.opts.Logger != nil {
		return w.opts.Logger
	}
	return slog.Default()
}

// Run builds once and then rebuilds on every change until ctx is done.
// The sample files' directories are watched rather than the files so that
// editors replacing a file by rename are still seen.
func (w *sampleWatcher) Run(ctx context.Context) error {
	log := w.logger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(w.opts.Paths))
	dirs := make(map[string]bool)
	for _, p := range w.opts.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.rebuild(ctx)
	log.Info("watching sample files", "files", len(watched), "out", w.out)

	var settled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				log.Debug("sample file changed", "file", ev.Name, "op", ev.Op.String())
				settled = time.After(w.settle)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)

		case <-settled:
			settled = nil
			w.rebuild(ctx)
		}
	}
}

// rebuild runs the build pipeline and writes the template. Failures are
// logged; the previous output is left in place.
func (w *sampleWatcher) rebuild(ctx context.Context) {
	log := w.logger()

	opts := w.opts
	opts.Threshold = math.Float64frombits(w.threshold.Load())

	res, err := retry.DoWithData(
		func() (*buildResult, error) {
			return buildTemplate(ctx, opts)
		},
		retry.Context(ctx),
		retry.Attempts(watchAttempts),
		retry.Delay(watchRetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, errInvalidTemplate)
		}),
	)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("rebuild failed", "error", err)
		}
		return
	}

	if err := export.WriteFile(w.out, *res.Template); err != nil {
		log.Error("failed to write template", "path", w.out, "error", err)
		return
	}
	w.builds.Add(1)
	log.Info("template rebuilt", "path", w.out, "samples", res.Samples, "regions", len(res.Template.Regions), "warnings", len(res.Warnings))
}
