// Package newapi talks to the relying party: a new-api compatible backend that hands out
// the OAuth state token and the session cookies bound to it before the browser starts
// the provider round trip.
package newapi
