// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"

	"github.com/crashwatch/crashwatch/internal/xlog"
)

// ParseString reads a string from an environment variable or returns the
// default, logging the source for operational observability.
func ParseString(key, defaultValue string) string {
	logger := xlog.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		logger.Debug().Str("key", key).Str("source", "environment").Msg("using environment variable")
		return v
	}
	logger.Debug().Str("key", key).Str("default", defaultValue).Str("source", "default").Msg("using default value")
	return defaultValue
}

// ParseFloat reads a float64 from an environment variable or returns the
// default, falling back to the default on parse errors.
func ParseFloat(key string, defaultValue float64) float64 {
	logger := xlog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Err(err).Msg("invalid float, using default")
		return defaultValue
	}
	return f
}

// ParseInt reads an int from an environment variable or returns the
// default, falling back to the default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := xlog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Err(err).Msg("invalid int, using default")
		return defaultValue
	}
	return n
}

// ParseBool reads a bool from an environment variable or returns the
// default, falling back to the default on parse errors.
func ParseBool(key string, defaultValue bool) bool {
	logger := xlog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Err(err).Msg("invalid bool, using default")
		return defaultValue
	}
	return b
}
