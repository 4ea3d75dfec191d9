// Package signin drives a browser through a third-party OAuth sign-in on behalf of a relying party.
//
// One Driver serves every provider: GitHub-style and forum-style flows differ only in
// the ProviderEndpoints they are given. A sign-in restores a cached session when one exists,
// logs in otherwise, approves the consent screen, waits for the redirect back to the
// relying party and reads the application user id from the page. Every call returns
// exactly one Result and never lets a browser error escape.
package signin
