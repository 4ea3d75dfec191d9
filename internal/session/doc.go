// Package session persists browser session snapshots between sign-ins.
//
// A snapshot holds the cookies and web storage of one account on one provider.
// Missing snapshots are the normal fresh-login case and are reported as absent, not as errors.
// Snapshots live either as JSON files in a cache directory or as Redis keys.
package session
