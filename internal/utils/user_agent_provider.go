package utils

//go:generate $MOCKGEN -source=user_agent_provider.go -destination=mocks/user_agent_provider_mock.go

// DefaultUserAgent is used when no User-Agent is configured.
// It mimics a desktop Chrome so the relying party and the browser present the same client.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36" //nolint: lll

// UserAgentProvider is an interface that defines a method for retrieving a User-Agent string.
type UserAgentProvider interface {
	// GetUserAgent returns a User-Agent string.
	GetUserAgent() string
}

// FixedUserAgentProvider returns one User-Agent for the whole run.
// The HTTP client and the browser share it, because cookies minted for one
// client are replayed by the other.
type FixedUserAgentProvider struct {
	userAgent string
}

// NewFixedUserAgentProvider creates a provider, falling back to DefaultUserAgent for an empty value.
func NewFixedUserAgentProvider(userAgent string) UserAgentProvider {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &FixedUserAgentProvider{userAgent: userAgent}
}

// GetUserAgent returns a User-Agent string.
func (p *FixedUserAgentProvider) GetUserAgent() string {
	return p.userAgent
}
