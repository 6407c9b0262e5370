// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// JSON logging on stderr with configurable log levels, and carries loggers
// through contexts so background work can log with task-scoped attributes.
package logger
