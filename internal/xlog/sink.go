// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

package xlog

import (
	"github.com/crashwatch/crashwatch/internal/detector"
	"github.com/rs/zerolog"
)

// DetectorSink adapts a zerolog.Logger into the detector's LogFunc
// collaborator contract: log(severity, tag, message).
func DetectorSink(logger zerolog.Logger) detector.LogFunc {
	return func(sev detector.Severity, tag, message string) {
		var event *zerolog.Event
		switch sev {
		case detector.SeverityError:
			event = logger.Error()
		case detector.SeverityWarn:
			event = logger.Warn()
		case detector.SeverityInfo:
			event = logger.Info()
		case detector.SeverityDebug:
			event = logger.Debug()
		case detector.SeverityVerbose:
			event = logger.Trace()
		default:
			event = logger.Info()
		}
		event.Str("tag", tag).Msg(message)
	}
}
