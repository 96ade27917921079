// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package with either a JSON handler
// or a colourised text handler, selected by configuration, and ships helpers
// for capturing log output in tests.
package logger
