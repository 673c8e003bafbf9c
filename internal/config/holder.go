// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/crashwatch/crashwatch/internal/xlog"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ThresholdHolder holds the detector thresholds with atomic hot-reload: a
// validated reload either fully replaces the snapshot or leaves the old
// one in place, never a partial update.
type ThresholdHolder struct {
	snapshot atomic.Pointer[Thresholds]
	loader   *ThresholdLoader
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger

	listeners []chan<- Thresholds
}

// NewThresholdHolder creates a holder seeded with initial.
func NewThresholdHolder(initial Thresholds, loader *ThresholdLoader) *ThresholdHolder {
	h := &ThresholdHolder{
		loader: loader,
		logger: xlog.WithComponent("config"),
	}
	h.snapshot.Store(&initial)
	return h
}

// Get returns the current thresholds (thread-safe read).
func (h *ThresholdHolder) Get() Thresholds {
	if p := h.snapshot.Load(); p != nil {
		return *p
	}
	return DefaultThresholds()
}

// Reload reloads thresholds from file and validates before swapping. On
// validation or read failure, the old thresholds are kept and an error is
// returned.
func (h *ThresholdHolder) Reload(_ context.Context) error {
	h.logger.Info().Str("event", "thresholds.reload_start").Msg("reloading detector thresholds")

	next, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).Str("event", "thresholds.reload_failed").Msg("failed to load thresholds")
		return fmt.Errorf("load thresholds: %w", err)
	}
	if err := ValidateThresholds(next); err != nil {
		h.logger.Error().Err(err).Str("event", "thresholds.validation_failed").Msg("new thresholds failed validation")
		return fmt.Errorf("validate thresholds: %w", err)
	}

	h.snapshot.Store(&next)
	h.notify(next)

	h.logger.Info().Str("event", "thresholds.reload_success").Msg("thresholds reloaded successfully")
	return nil
}

// RegisterListener registers a channel to receive the new thresholds
// whenever a reload succeeds. The caller owns the channel's lifecycle.
func (h *ThresholdHolder) RegisterListener(ch chan<- Thresholds) {
	h.listeners = append(h.listeners, ch)
}

func (h *ThresholdHolder) notify(t Thresholds) {
	for _, ch := range h.listeners {
		select {
		case ch <- t:
		default:
			h.logger.Warn().Str("event", "thresholds.listener_skip").Msg("skipped notifying listener (channel full)")
		}
	}
}

// StartWatcher watches the thresholds file for changes and reloads on
// write/create/rename, debounced to absorb editor atomic-replace writes.
// A no-op if loader.Path is empty.
func (h *ThresholdHolder) StartWatcher(ctx context.Context) error {
	if h.loader.Path == "" {
		h.logger.Info().Str("event", "thresholds.watcher_disabled").Msg("thresholds file watcher disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	dir := filepath.Dir(h.loader.Path)
	file := filepath.Base(h.loader.Path)

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch thresholds dir: %w", err)
	}

	h.logger.Info().Str("event", "thresholds.watcher_started").Str("path", h.loader.Path).Msg("watching thresholds file for changes")

	go h.watchLoop(ctx, file)
	return nil
}

func (h *ThresholdHolder) watchLoop(ctx context.Context, file string) {
	var debounce *time.Timer
	const debounceDuration = 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "thresholds.watcher_stopped").Msg("thresholds watcher stopped")
			_ = h.watcher.Close()
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != file {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDuration, func() {
					if err := h.Reload(ctx); err != nil {
						h.logger.Error().Err(err).Str("event", "thresholds.auto_reload_failed").Msg("automatic thresholds reload failed")
					}
				})
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str("event", "thresholds.watcher_error").Msg("thresholds watcher error")
		}
	}
}

// Stop stops the file watcher, if running.
func (h *ThresholdHolder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}
