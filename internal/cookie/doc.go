// Package cookie defines the engine-neutral cookie record passed between the
// browser adapter, the session cache and the relying-party client, and the
// scoping rule that decides which captured cookies belong to a relying party.
package cookie
