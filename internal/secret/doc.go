// Package secret provides the narrow capability the sign-in flow uses to obtain
// one-time codes for second-factor prompts.
//
// A Channel is asked for named secrets under a deadline and either answers or
// reports ErrUnavailable. Implementations cover configured values, TOTP codes
// derived from an enrolled seed, an interactive terminal prompt, and a chain
// that tries several channels under one shared deadline.
package secret
