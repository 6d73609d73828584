// Package logger builds configured log/slog loggers with functional options
// for level, format and static attributes. JSON output is the default so
// production logs feed aggregation systems without extra setup.
package logger
