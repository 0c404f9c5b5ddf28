package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdm-mapper/internal/metadata"
)

func env(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Empty(t, cfg.MissingMarker)
	assert.False(t, cfg.DayFirst)
	assert.Equal(t, metadata.DefaultInfo(), cfg.Metadata.Info())
	assert.InDelta(t, 0.7, cfg.Matching.MinConfidence, 1e-9)
}

func TestDecode_OverridesOnlyGivenKeys(t *testing.T) {
	cfg := Default()
	src := `
log_level: debug
day_first: true
metadata:
  creator: Surgery Registry
matching:
  min_confidence: 0.8
`
	require.NoError(t, decode(strings.NewReader(src), &cfg))

	want := Default()
	want.LogLevel = "debug"
	want.DayFirst = true
	want.Metadata.CreatorName = "Surgery Registry"
	want.Matching.MinConfidence = 0.8

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	cfg := Default()
	require.NoError(t, decode(strings.NewReader(""), &cfg))
	assert.Equal(t, Default(), cfg)
}

func TestDecode_UnknownKey(t *testing.T) {
	cfg := Default()
	err := decode(strings.NewReader("log_levle: debug\n"), &cfg)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(env(map[string]string{
		"CDM_LOG_LEVEL":        " warn ",
		"CDM_LOG_FORMAT":       "json",
		"CDM_MISSING_MARKER":   "NA",
		"CDM_DAY_FIRST":        "true",
		"CDM_METADATA_CREATOR": "Registry",
		"CDM_METADATA_LICENSE": "",
		"CDM_MIN_CONFIDENCE":   "0.85",
		"CDM_MAX_CANDIDATES":   "5",
		"CDM_SUGGEST_VALUES":   "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "NA", cfg.MissingMarker)
	assert.True(t, cfg.DayFirst)
	assert.Equal(t, "Registry", cfg.Metadata.CreatorName)
	assert.Equal(t, metadata.DefaultLicense, cfg.Metadata.License, "blank values keep the current setting")
	assert.InDelta(t, 0.85, cfg.Matching.MinConfidence, 1e-9)
	assert.Equal(t, 5, cfg.Matching.MaxCandidates)
	assert.False(t, cfg.Matching.SuggestValues)
}

func TestApplyEnv_EmptyMissingMarkerIsKept(t *testing.T) {
	cfg := Default()
	cfg.MissingMarker = "NA"

	require.NoError(t, cfg.applyEnv(env(map[string]string{"CDM_MISSING_MARKER": ""})))
	assert.Empty(t, cfg.MissingMarker)
}

func TestApplyEnv_Malformed(t *testing.T) {
	tests := map[string]string{
		"CDM_DAY_FIRST":      "sometimes",
		"CDM_MIN_CONFIDENCE": "high",
		"CDM_MAX_CANDIDATES": "three",
	}

	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(env(map[string]string{key: val}))
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "log format", mutate: func(c *Config) { c.LogFormat = "xml" }},
		{name: "confidence above one", mutate: func(c *Config) { c.Matching.MinConfidence = 1.5 }},
		{name: "negative gap", mutate: func(c *Config) { c.Matching.MinGap = -0.1 }},
		{name: "no candidates", mutate: func(c *Config) { c.Matching.MaxCandidates = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cdm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("missing_marker: \"-\"\nlog_format: json\n"), 0o600))

	t.Setenv("CDM_LOG_FORMAT", "console")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "-", cfg.MissingMarker)
	assert.Equal(t, "console", cfg.LogFormat, "environment wins over file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, ErrInvalid)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMatching_Resolution(t *testing.T) {
	m := Matching{MinConfidence: 0.9, MinGap: 0.2, MaxCandidates: 1, SuggestValues: false}
	rc := m.Resolution()

	assert.InDelta(t, 0.9, rc.MinConfidence, 1e-9)
	assert.InDelta(t, 0.2, rc.MinGap, 1e-9)
	assert.Equal(t, 1, rc.MaxCandidates)
	assert.False(t, rc.SuggestValues)
	assert.Positive(t, rc.AmbiguityThreshold)
}
