package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// WidgetIDPlaceholder is the unconfigured value shipped in sample configs.
// A location carrying it is treated as having no widget ID at all.
const WidgetIDPlaceholder = "get_from_okairos_widget_generator"

// Location describes one forecast location and its output calendar.
//
// The envconfig tags carry the legacy environment variable names; they
// only apply to the base location, not to entries of the locations list.
type Location struct {
	// Name is the human-readable location name used in calendar titles.
	Name string `yaml:"name" json:"name" envconfig:"LOCATION_NAME"`

	// WidgetID selects the okairos widget endpoint (preferred data tier).
	WidgetID string `yaml:"widget_id" json:"widget_id" envconfig:"WIDGET_ID"`

	// SourceURL is the human-readable okairos page, used as scrape fallback.
	SourceURL string `yaml:"location_url" json:"location_url" envconfig:"LOCATION_URL"`

	// Timezone is an opaque IANA identifier string. It is passed through
	// to the calendar unvalidated.
	Timezone string `yaml:"timezone" json:"timezone" envconfig:"TIMEZONE"`

	// EventTime is "HH:MM" for timed events, or empty for all-day events.
	EventTime string `yaml:"event_time" json:"event_time" envconfig:"EVENT_TIME"`

	// OutputFile is the calendar filename written under the output dir.
	OutputFile string `yaml:"output_file" json:"output_file" envconfig:"OUTPUT_FILE"`

	// WidgetPageURL, if set, is linked from each event body.
	WidgetPageURL string `yaml:"widget_page_url" json:"widget_page_url" envconfig:"WIDGET_PAGE_URL"`
}

// Config is the top-level application configuration. The embedded base
// Location doubles as the legacy single-location mode; the Locations list
// enables multi-location runs, each entry inheriting unset fields from
// the base.
type Config struct {
	Location `yaml:",inline" json:",inline"`

	// OutputDir is the directory calendar files are written to.
	OutputDir string `yaml:"output_dir" json:"output_dir" envconfig:"OUTPUT_DIR"`

	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen" envconfig:"LISTEN"`

	// RefreshCron is a cron-style schedule used to regenerate calendars
	// in serve mode (e.g. "@hourly", "*/30 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh" envconfig:"REFRESH_CRON"`

	// Locations is the multi-location list. Empty means single-location
	// mode using the base location.
	Locations []Location `yaml:"locations" json:"locations"`
}

// Default returns the in-memory default configuration (Athens, all-day
// events, current directory output).
func Default() *Config {
	return &Config{
		Location: Location{
			Name:       "Athens",
			WidgetID:   "58322f1a515da1ca125f09b40b162890",
			SourceURL:  "https://www.okairos.gr/%CE%B1%CE%B8%CE%AE%CE%BD%CE%B1.html",
			Timezone:   "Europe/Athens",
			EventTime:  "",
			OutputFile: "forecast.ics",
		},
		OutputDir:   ".",
		Listen:      "127.0.0.1:8080",
		RefreshCron: "@hourly",
	}
}

// Validate reports whether the location can be processed at all. Invalid
// locations are skipped with a warning rather than failing the run.
func (l Location) Validate() error {
	if l.Name == "" {
		return errors.New("location name is empty")
	}
	if l.SourceURL == "" && l.EffectiveWidgetID() == "" {
		return fmt.Errorf("location %q has neither location_url nor widget_id", l.Name)
	}
	if l.OutputFile == "" {
		return fmt.Errorf("location %q has no output_file", l.Name)
	}
	return nil
}

// EffectiveWidgetID returns the widget ID, treating the unconfigured
// placeholder as absent.
func (l Location) EffectiveWidgetID() string {
	if l.WidgetID == WidgetIDPlaceholder {
		return ""
	}
	return l.WidgetID
}

// ResolvedLocations returns the effective location list. Entries inherit
// unset fields from the base location; an empty list yields the base
// location itself (single-location mode).
func (c *Config) ResolvedLocations() []Location {
	if len(c.Locations) == 0 {
		return []Location{c.Location}
	}
	out := make([]Location, 0, len(c.Locations))
	for _, loc := range c.Locations {
		out = append(out, overlayLocation(c.Location, loc))
	}
	return out
}

// SingleLocation reports whether the config runs in legacy
// single-location mode, where write failures are fatal.
func (c *Config) SingleLocation() bool {
	return len(c.Locations) == 0
}

// Load builds the effective configuration by merging, lowest precedence
// first: built-in defaults, the YAML/JSON config file at path (missing
// file is not an error), then environment variable overrides.
func Load(path string) (*Config, error) {
	var fileCfg *Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			fileCfg = &Config{}
			// JSON is a subset of YAML, so legacy config.json files
			// parse through the same decoder.
			if err := yaml.Unmarshal(data, fileCfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// fall through to defaults + env
		default:
			return nil, err
		}
	}

	envCfg := &Config{}
	if err := envconfig.Process("", envCfg); err != nil {
		return nil, fmt.Errorf("read environment overrides: %w", err)
	}

	return Merge(Default(), fileCfg, envCfg), nil
}

// Merge produces a new Config from defaults, file overrides and
// environment overrides, in that precedence order (lowest to highest).
// Inputs are never modified; nil layers are skipped.
func Merge(def, file, env *Config) *Config {
	out := *def
	for _, layer := range []*Config{file, env} {
		if layer == nil {
			continue
		}
		out.Location = overlayLocation(out.Location, layer.Location)
		if layer.OutputDir != "" {
			out.OutputDir = layer.OutputDir
		}
		if layer.Listen != "" {
			out.Listen = layer.Listen
		}
		if layer.RefreshCron != "" {
			out.RefreshCron = layer.RefreshCron
		}
		if len(layer.Locations) > 0 {
			out.Locations = append([]Location(nil), layer.Locations...)
		}
	}
	return &out
}

// overlayLocation fills a copy of base with every non-empty field of over.
func overlayLocation(base, over Location) Location {
	out := base
	if over.Name != "" {
		out.Name = over.Name
	}
	if over.WidgetID != "" {
		out.WidgetID = over.WidgetID
	}
	if over.SourceURL != "" {
		out.SourceURL = over.SourceURL
	}
	if over.Timezone != "" {
		out.Timezone = over.Timezone
	}
	if over.EventTime != "" {
		out.EventTime = over.EventTime
	}
	if over.OutputFile != "" {
		out.OutputFile = over.OutputFile
	}
	if over.WidgetPageURL != "" {
		out.WidgetPageURL = over.WidgetPageURL
	}
	return out
}
