// Package pipeline runs the fetch → encode → diff → write cycle for
// every configured location. Locations are processed strictly in
// sequence; a failure in one must never abort the others.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wxcal/internal/config"
	"wxcal/internal/forecast"
	"wxcal/internal/ics"
	appLog "wxcal/internal/log"
)

// Source abstracts the weather fetcher so the runner can be tested
// without network access.
type Source interface {
	Fetch(ctx context.Context, loc config.Location) ([]forecast.Record, error)
}

// Runner executes calendar generation runs for a configuration.
type Runner struct {
	cfg    *config.Config
	source Source
	now    func() time.Time
}

// New creates a Runner.
func New(cfg *config.Config, source Source) *Runner {
	return &Runner{cfg: cfg, source: source, now: time.Now}
}

// Run processes every resolved location in order. In multi-location mode
// any per-location failure (invalid config, dead source, unwritable
// file) is logged and skipped. In legacy single-location mode a fetch
// failure still produces a placeholder calendar, and only a write
// failure is returned as fatal.
func (r *Runner) Run(ctx context.Context) error {
	single := r.cfg.SingleLocation()

	for _, loc := range r.cfg.ResolvedLocations() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runLocation(ctx, loc, single); err != nil {
			if single {
				return err
			}
			appLog.Error("location skipped", err, "location", loc.Name)
		}
	}
	return nil
}

func (r *Runner) runLocation(ctx context.Context, loc config.Location, single bool) error {
	if err := loc.Validate(); err != nil {
		appLog.Warn("invalid location configuration, skipping", "err", err)
		return nil
	}

	records, err := r.source.Fetch(ctx, loc)
	if err != nil {
		if !single {
			return fmt.Errorf("fetch forecast for %s: %w", loc.Name, err)
		}
		// Single-location callers still get a valid calendar built
		// from the placeholder records.
		appLog.Warn("forecast unavailable, writing placeholder calendar",
			"location", loc.Name, "err", err)
	}

	doc := ics.Generate(loc, records, r.now())
	path := filepath.Join(r.cfg.OutputDir, loc.OutputFile)

	if prev, readErr := os.ReadFile(path); readErr == nil {
		if ics.MeaningfulChange(string(prev), doc) {
			appLog.Info("forecast changed since last run", "location", loc.Name, "path", path)
		} else {
			appLog.Info("no meaningful forecast change", "location", loc.Name, "path", path)
		}
	}

	// The write is unconditional so the DTSTAMP is always refreshed.
	if err := writeAtomic(path, []byte(doc)); err != nil {
		return fmt.Errorf("write calendar %s: %w", path, err)
	}
	appLog.Info("calendar written", "location", loc.Name, "path", path, "events", len(records))
	return nil
}

// writeAtomic writes via a temp file and rename so subscribers never
// read a half-written calendar.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".wxcal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
