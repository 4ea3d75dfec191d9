// Package accounts runs browser sign-ins for a list of configured accounts, one after another,
// and collects the outcomes into a report that is printed and written for the check-in client.
//
// For every account and identity provider the service negotiates an OAuth state with the
// relying party, assembles the account's second-factor channels, runs the sign-in driver
// and records exactly one AccountResult.
package accounts
