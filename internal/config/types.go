// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads crashwatchd's configuration: environment variables
// with operator-grade defaults for process-lifetime settings, plus an
// atomically-swapped, fsnotify-reloaded snapshot for the detector
// thresholds an operator may want to tune without a restart.
package config

import "github.com/crashwatch/crashwatch/internal/detector"

// AppConfig holds the process-lifetime settings: transport, storage, and
// telemetry wiring. Loaded once at startup from the environment.
type AppConfig struct {
	HTTPAddr      string
	JournalPath   string
	RedisAddr     string
	RedisStream   string
	OTelEndpoint  string
	LogLevel      string
	ThresholdPath string // optional YAML file; empty disables hot-reload
}

// Thresholds is the hot-reloadable subset: the detector's tunable
// constants, expressed with YAML tags for file-based overrides.
type Thresholds struct {
	PreprocessingThresholdG       float64 `yaml:"preprocessing_threshold_g"`
	CrashThresholdG               float64 `yaml:"crash_threshold_g"`
	GPSSpeedThreshold             float64 `yaml:"gps_speed_threshold_mps"`
	IMUHalfWindow                 float64 `yaml:"imu_half_window_s"`
	IMUSamplingFrequency          float64 `yaml:"imu_sampling_frequency_hz"`
	GPSWindowTime                 float64 `yaml:"gps_window_time_s"`
	GPSDelayTime                  float64 `yaml:"gps_delay_time_s"`
	MinimumTimeBetweenCrashes     float64 `yaml:"minimum_time_between_crashes_s"`
	GPSSamplingFrequency          float64 `yaml:"gps_sampling_frequency_hz"`
	MinimumGPSPointsInWindow      int     `yaml:"minimum_gps_points_in_window"`
	GPSConsecutiveOverSpeedReject int     `yaml:"gps_consecutive_over_speed_reject"`
}

// ToDetectorConfig converts the YAML-tagged Thresholds into a
// detector.Config, expressing the g-scaled fields in m/s^2.
func (t Thresholds) ToDetectorConfig() detector.Config {
	const g = 9.80665
	return detector.Config{
		G:                             g,
		PreprocessingThreshold:        t.PreprocessingThresholdG * g,
		CrashThreshold:                t.CrashThresholdG * g,
		GPSSpeedThreshold:             t.GPSSpeedThreshold,
		IMUHalfWindow:                 t.IMUHalfWindow,
		IMUSamplingFrequency:          t.IMUSamplingFrequency,
		GPSWindowTime:                 t.GPSWindowTime,
		GPSDelayTime:                  t.GPSDelayTime,
		MinimumTimeBetweenCrashes:     t.MinimumTimeBetweenCrashes,
		GPSSamplingFrequency:          t.GPSSamplingFrequency,
		MinimumGPSPointsInWindow:      t.MinimumGPSPointsInWindow,
		GPSConsecutiveOverSpeedReject: t.GPSConsecutiveOverSpeedReject,
	}
}

// DefaultThresholds returns the reference tuning constants expressed in
// the YAML-tagged shape.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PreprocessingThresholdG:       2.1,
		CrashThresholdG:               2.5,
		GPSSpeedThreshold:             2.7,
		IMUHalfWindow:                 1.0,
		IMUSamplingFrequency:          9,
		GPSWindowTime:                 30.0,
		GPSDelayTime:                  90.0,
		MinimumTimeBetweenCrashes:     20.0,
		GPSSamplingFrequency:          1,
		MinimumGPSPointsInWindow:      0,
		GPSConsecutiveOverSpeedReject: 5,
	}
}

// DefaultAppConfig returns operator-grade defaults for process-lifetime
// settings, shipping sane values rather than requiring every env var to
// be set.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		HTTPAddr:    ":8980",
		JournalPath: "/var/lib/crashwatchd/journal.sqlite",
		RedisAddr:   "",
		RedisStream: "crashwatch:crashes",
		LogLevel:    "info",
	}
}
