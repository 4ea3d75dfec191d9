// Package logger wraps zap with a process-wide sugared logger and an atomic level.
// Loggers travel in context.Context, so per-account fields such as the account
// name or run id attached with WithKV show up on every line a sign-in emits.
package logger
