// Package log provides structured logging for funlang.
//
// Package: log
// Title: funlang Structured Logging
// Description: Leveled, field-based logging with JSON, text, console and
//              logfmt output, request ids, timers and integration with the
//              structured error type.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-18 v0.2.0: Dropped async buffering and user/correlation ids
//
// Usage:
//
//	logger := log.New().
//		WithLevel(log.LevelDebug).
//		WithFormat(log.FormatText).
//		WithField("component", "lang-parser")
//
//	logger.Debug("parsed file", log.Fields{"statements": 12})
//
//	timer := logger.StartTimer("run")
//	// ... evaluate
//	timer.Stop()
package log
