// Package diagnostics captures screenshots and page markup when a sign-in goes wrong.
// Captures are best effort: a failing capture is logged and never changes the outcome of a sign-in.
package diagnostics
