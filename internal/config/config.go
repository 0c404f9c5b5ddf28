// Package config loads cdm-mapper settings from an optional YAML file and
// CDM_* environment variables. Environment values win over the file, the
// file wins over compiled defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"cdm-mapper/internal/match"
	"cdm-mapper/internal/metadata"
	"cdm-mapper/internal/plan"
)

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all user-tunable settings.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// MissingMarker is written for missing cells in CSV exports.
	MissingMarker string `yaml:"missing_marker"`
	// DayFirst reads ambiguous dates such as 03/04/2024 as dd/mm.
	DayFirst bool `yaml:"day_first"`

	Metadata Metadata `yaml:"metadata"`
	Matching Matching `yaml:"matching"`
}

// Metadata holds the descriptive values of generated metadata records.
type Metadata struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	CreatorName    string `yaml:"creator"`
	CreatorContact string `yaml:"contact"`
	License        string `yaml:"license"`
	Tool           string `yaml:"tool"`
}

// Info converts m for the metadata generator.
func (m Metadata) Info() metadata.Info {
	return metadata.Info{
		Title:          m.Title,
		Description:    m.Description,
		CreatorName:    m.CreatorName,
		CreatorContact: m.CreatorContact,
		License:        m.License,
		Tool:           m.Tool,
	}
}

// Matching tunes automatic mapping suggestions.
type Matching struct {
	MinConfidence float64 `yaml:"min_confidence"`
	MinGap        float64 `yaml:"min_gap"`
	MaxCandidates int     `yaml:"max_candidates"`
	SuggestValues bool    `yaml:"suggest_values"`
}

// Resolution converts m for the suggestion resolver.
func (m Matching) Resolution() plan.ResolutionConfig {
	rc := plan.DefaultConfig()
	rc.MinConfidence = m.MinConfidence
	rc.MinGap = m.MinGap
	rc.MaxCandidates = m.MaxCandidates
	rc.SuggestValues = m.SuggestValues

	return rc
}

// Default returns the compiled-in configuration.
func Default() Config {
	info := metadata.DefaultInfo()

	return Config{
		LogLevel:      "info",
		LogFormat:     "console",
		MissingMarker: "",
		Metadata: Metadata{
			Title:          info.Title,
			Description:    info.Description,
			CreatorName:    info.CreatorName,
			CreatorContact: info.CreatorContact,
			License:        info.License,
			Tool:           info.Tool,
		},
		Matching: Matching{
			MinConfidence: match.DefaultMinScore,
			MinGap:        match.DefaultMinGap,
			MaxCandidates: 3,
			SuggestValues: true,
		},
	}
}

// Load reads path (skipped when empty) over the defaults and applies the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		defer f.Close()

		if err := decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	c.LogLevel = getEnv(lookup, "CDM_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv(lookup, "CDM_LOG_FORMAT", c.LogFormat)

	if v, ok := lookup("CDM_MISSING_MARKER"); ok {
		c.MissingMarker = v
	}

	c.Metadata.Title = getEnv(lookup, "CDM_METADATA_TITLE", c.Metadata.Title)
	c.Metadata.Description = getEnv(lookup, "CDM_METADATA_DESCRIPTION", c.Metadata.Description)
	c.Metadata.CreatorName = getEnv(lookup, "CDM_METADATA_CREATOR", c.Metadata.CreatorName)
	c.Metadata.CreatorContact = getEnv(lookup, "CDM_METADATA_CONTACT", c.Metadata.CreatorContact)
	c.Metadata.License = getEnv(lookup, "CDM_METADATA_LICENSE", c.Metadata.License)
	c.Metadata.Tool = getEnv(lookup, "CDM_METADATA_TOOL", c.Metadata.Tool)

	var err error

	if c.DayFirst, err = getEnvBool(lookup, "CDM_DAY_FIRST", c.DayFirst); err != nil {
		return err
	}

	if c.Matching.SuggestValues, err = getEnvBool(lookup, "CDM_SUGGEST_VALUES", c.Matching.SuggestValues); err != nil {
		return err
	}

	if c.Matching.MinConfidence, err = getEnvFloat(lookup, "CDM_MIN_CONFIDENCE", c.Matching.MinConfidence); err != nil {
		return err
	}

	if c.Matching.MaxCandidates, err = getEnvInt(lookup, "CDM_MAX_CANDIDATES", c.Matching.MaxCandidates); err != nil {
		return err
	}

	return nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log_format %q (want console or json)", ErrInvalid, c.LogFormat)
	}

	if c.Matching.MinConfidence < 0 || c.Matching.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence %v outside [0, 1]", ErrInvalid, c.Matching.MinConfidence)
	}

	if c.Matching.MinGap < 0 || c.Matching.MinGap > 1 {
		return fmt.Errorf("%w: min_gap %v outside [0, 1]", ErrInvalid, c.Matching.MinGap)
	}

	if c.Matching.MaxCandidates < 1 {
		return fmt.Errorf("%w: max_candidates must be positive, got %d", ErrInvalid, c.Matching.MaxCandidates)
	}

	return nil
}

func getEnv(lookup lookupFunc, key, def string) string {
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}

	return def
}

func getEnvBool(lookup lookupFunc, key string, def bool) (bool, error) {
	v := getEnv(lookup, key, "")
	if v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, key, v)
	}

	return b, nil
}

func getEnvInt(lookup lookupFunc, key string, def int) (int, error) {
	v := getEnv(lookup, key, "")
	if v == "" {
		return def, nil
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, v)
	}

	return i, nil
}

func getEnvFloat(lookup lookupFunc, key string, def float64) (float64, error) {
	v := getEnv(lookup, key, "")
	if v == "" {
		return def, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, key, v)
	}

	return f, nil
}
