// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader loads AppConfig from the environment with the CRASHWATCH_ prefix.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader { return &Loader{} }

// Load reads AppConfig from the environment, falling back to operator-grade
// defaults for anything unset.
func (l *Loader) Load() (AppConfig, error) {
	d := DefaultAppConfig()
	cfg := AppConfig{
		HTTPAddr:      ParseString("CRASHWATCH_HTTP_ADDR", d.HTTPAddr),
		JournalPath:   ParseString("CRASHWATCH_JOURNAL_PATH", d.JournalPath),
		RedisAddr:     ParseString("CRASHWATCH_REDIS_ADDR", d.RedisAddr),
		RedisStream:   ParseString("CRASHWATCH_REDIS_STREAM", d.RedisStream),
		OTelEndpoint:  ParseString("CRASHWATCH_OTEL_ENDPOINT", d.OTelEndpoint),
		LogLevel:      ParseString("CRASHWATCH_LOG_LEVEL", d.LogLevel),
		ThresholdPath: ParseString("CRASHWATCH_THRESHOLDS_PATH", ""),
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks AppConfig for operator mistakes that would otherwise
// surface as confusing runtime errors later.
func Validate(cfg AppConfig) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("config: http addr must not be empty")
	}
	return nil
}

// ThresholdLoader loads Thresholds from an optional YAML file, falling
// back to the reference defaults when no path is configured or the file
// does not yet exist.
type ThresholdLoader struct {
	Path string
}

// Load reads Thresholds from Path. An empty Path or a missing file yields
// the reference defaults with no error.
func (l *ThresholdLoader) Load() (Thresholds, error) {
	t := DefaultThresholds()
	if l.Path == "" {
		return t, nil
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return Thresholds{}, fmt.Errorf("read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Thresholds{}, fmt.Errorf("parse thresholds file: %w", err)
	}
	return t, nil
}

// ValidateThresholds checks that the thresholds translate into a valid
// detector.Config.
func ValidateThresholds(t Thresholds) error {
	return t.ToDetectorConfig().Validate()
}
