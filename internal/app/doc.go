// Package app wires configuration, the browser, the session cache and the sign-in service
// together and runs one sign-in pass over the selected accounts.
package app
