// Package browser drives Chrome through go-rod for the sign-in flow.
//
// A Launcher owns one Chrome process with a throwaway profile.
// Every sign-in gets its own incognito context and stealth page, wrapped in a Session,
// so cookies and storage never leak between accounts.
// Sessions can be seeded from a snapshot and can serialize their state back into one.
package browser
