package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Location.Validate())
	assert.Equal(t, "Athens", cfg.Name)
	assert.Equal(t, "Europe/Athens", cfg.Timezone)
	assert.Equal(t, "forecast.ics", cfg.OutputFile)
	assert.Empty(t, cfg.EventTime)
	assert.True(t, cfg.SingleLocation())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Name, cfg.Name)
}

func TestLoadYAMLFileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `
name: Thessaloniki
timezone: Europe/Athens
event_time: "07:30"
output_file: thessaloniki.ics
output_dir: /tmp/cal
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Thessaloniki", cfg.Name)
	assert.Equal(t, "07:30", cfg.EventTime)
	assert.Equal(t, "thessaloniki.ics", cfg.OutputFile)
	assert.Equal(t, "/tmp/cal", cfg.OutputDir)
	// Untouched fields keep their defaults.
	assert.Equal(t, Default().WidgetID, cfg.WidgetID)
}

func TestLoadLegacyJSONFile(t *testing.T) {
	// JSON parses through the YAML decoder, so old config.json files
	// keep working.
	path := writeTempConfig(t, "config.json", `{
  "name": "Patras",
  "location_url": "https://www.okairos.gr/patras.html",
  "event_time": "06:00"
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Patras", cfg.Name)
	assert.Equal(t, "https://www.okairos.gr/patras.html", cfg.SourceURL)
	assert.Equal(t, "06:00", cfg.EventTime)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "name: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "name: FileCity\ntimezone: Europe/Paris\n")

	t.Setenv("LOCATION_NAME", "EnvCity")
	t.Setenv("EVENT_TIME", "09:15")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "EnvCity", cfg.Name)
	assert.Equal(t, "09:15", cfg.EventTime)
	// Env leaves fields it does not name alone.
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
}

func TestMergePrecedenceIsPure(t *testing.T) {
	def := Default()
	file := &Config{Location: Location{Name: "FromFile", EventTime: "08:00"}}
	env := &Config{Location: Location{Name: "FromEnv"}}

	merged := Merge(def, file, env)

	assert.Equal(t, "FromEnv", merged.Name)
	assert.Equal(t, "08:00", merged.EventTime)
	assert.Equal(t, def.Timezone, merged.Timezone)
	// Inputs must stay untouched.
	assert.Equal(t, "Athens", def.Name)
	assert.Equal(t, "FromFile", file.Name)
}

func TestMergeSkipsNilLayers(t *testing.T) {
	merged := Merge(Default(), nil, nil)
	assert.Equal(t, Default(), merged)
}

func TestLocationsListEnablesMultiLocationMode(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `
timezone: Europe/Athens
locations:
  - name: Athens
    widget_id: aaa
    output_file: athens.ics
  - name: Thessaloniki
    location_url: https://www.okairos.gr/thessaloniki.html
    output_file: thessaloniki.ics
    timezone: Europe/Berlin
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.SingleLocation())

	locs := cfg.ResolvedLocations()
	require.Len(t, locs, 2)

	// Entries inherit unset fields from the base location.
	assert.Equal(t, "Athens", locs[0].Name)
	assert.Equal(t, "Europe/Athens", locs[0].Timezone)
	assert.Equal(t, "athens.ics", locs[0].OutputFile)

	// Explicit per-location values win over the base.
	assert.Equal(t, "Europe/Berlin", locs[1].Timezone)
}

func TestResolvedLocationsSingleMode(t *testing.T) {
	cfg := Default()
	locs := cfg.ResolvedLocations()
	require.Len(t, locs, 1)
	assert.Equal(t, cfg.Location, locs[0])
}

func TestLocationValidate(t *testing.T) {
	valid := Location{Name: "Athens", SourceURL: "https://example.test", OutputFile: "a.ics"}
	assert.NoError(t, valid.Validate())

	noName := valid
	noName.Name = ""
	assert.Error(t, noName.Validate())

	noSource := Location{Name: "Athens", OutputFile: "a.ics"}
	assert.Error(t, noSource.Validate())

	placeholderOnly := Location{Name: "Athens", WidgetID: WidgetIDPlaceholder, OutputFile: "a.ics"}
	assert.Error(t, placeholderOnly.Validate())

	widgetOnly := Location{Name: "Athens", WidgetID: "abc", OutputFile: "a.ics"}
	assert.NoError(t, widgetOnly.Validate())

	noOutput := valid
	noOutput.OutputFile = ""
	assert.Error(t, noOutput.Validate())
}

func TestEffectiveWidgetID(t *testing.T) {
	assert.Empty(t, Location{WidgetID: WidgetIDPlaceholder}.EffectiveWidgetID())
	assert.Empty(t, Location{}.EffectiveWidgetID())
	assert.Equal(t, "abc", Location{WidgetID: "abc"}.EffectiveWidgetID())
}
