package cookie

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Cookie is a captured browser cookie.
type Cookie struct {
	// Name of the cookie.
	Name string `json:"name" yaml:"name"`
	// Value of the cookie.
	Value string `json:"value" yaml:"value"`
	// Domain as reported by the engine; a leading dot marks a domain cookie.
	Domain string `json:"domain" yaml:"domain"`
	// Path scope of the cookie.
	Path string `json:"path" yaml:"path"`
	// Expires is the expiry in seconds since epoch; zero or negative means a session cookie.
	Expires float64 `json:"expires" yaml:"expires,omitempty"`
	// HTTPOnly reports whether the cookie is hidden from scripts.
	HTTPOnly bool `json:"httpOnly" yaml:"http_only,omitempty"`
	// Secure reports whether the cookie is sent over HTTPS only.
	Secure bool `json:"secure" yaml:"secure,omitempty"`
	// SameSite holds "Strict", "Lax", "None" or an empty string.
	SameSite string `json:"sameSite,omitempty" yaml:"same_site,omitempty"`
}

// Key identifies a cookie slot in a jar: the same key means one cookie replaces the other.
type Key struct {
	Name   string
	Domain string
	Path   string
}

// Key returns the jar slot of the cookie.
func (c Cookie) Key() Key {
	return Key{
		Name:   c.Name,
		Domain: strings.ToLower(strings.TrimPrefix(c.Domain, ".")),
		Path:   c.Path,
	}
}

// Scope returns the cookies whose domain is the host of origin or a registrable parent of it.
// Order is preserved and the input is not modified.
// An origin without a host matches nothing.
func Scope(cookies []Cookie, origin string) []Cookie {
	host := hostOf(origin)
	if host == "" {
		return []Cookie{}
	}

	scoped := make([]Cookie, 0, len(cookies))

	for _, c := range cookies {
		if DomainMatches(c.Domain, host) {
			scoped = append(scoped, c)
		}
	}

	return scoped
}

// DomainMatches reports whether a cookie domain covers host exactly or as a parent domain.
// Parents that are public suffixes (such as "com" or "co.uk") never match.
func DomainMatches(cookieDomain, host string) bool {
	domain := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(cookieDomain), "."))
	host = strings.ToLower(host)

	if domain == "" || host == "" {
		return false
	}

	if domain == host {
		return true
	}

	if !strings.HasSuffix(host, "."+domain) {
		return false
	}

	suffix, _ := publicsuffix.PublicSuffix(domain)

	return suffix != domain
}

// Merge overlays cookies on base: an overlay cookie replaces the base cookie in the same slot,
// other overlay cookies are appended. Base order is kept.
func Merge(base, overlay []Cookie) []Cookie {
	merged := make([]Cookie, 0, len(base)+len(overlay))
	index := make(map[Key]int, len(base)+len(overlay))

	for _, c := range append(append([]Cookie{}, base...), overlay...) {
		if i, ok := index[c.Key()]; ok {
			merged[i] = c

			continue
		}

		index[c.Key()] = len(merged)
		merged = append(merged, c)
	}

	return merged
}

// Header renders cookies as the value of a Cookie request header.
func Header(cookies []Cookie) string {
	parts := make([]string, 0, len(cookies))

	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}

	return strings.Join(parts, "; ")
}

// FromHTTP converts net/http cookies received for origin.
// Cookies without an explicit domain become host-only cookies of the origin host.
func FromHTTP(cookies []*http.Cookie, origin string) []Cookie {
	host := hostOf(origin)
	converted := make([]Cookie, 0, len(cookies))

	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = host
		}

		path := c.Path
		if path == "" {
			path = "/"
		}

		var expires float64
		if !c.Expires.IsZero() {
			expires = float64(c.Expires.Unix())
		}

		converted = append(converted, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   domain,
			Path:     path,
			Expires:  expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
			SameSite: sameSiteName(c.SameSite),
		})
	}

	return converted
}

// Expired reports whether a persistent cookie is past its expiry at now.
func (c Cookie) Expired(now time.Time) bool {
	return c.Expires > 0 && int64(c.Expires) <= now.Unix()
}

func sameSiteName(mode http.SameSite) string {
	switch mode {
	case http.SameSiteStrictMode:
		return "Strict"
	case http.SameSiteLaxMode:
		return "Lax"
	case http.SameSiteNoneMode:
		return "None"
	case http.SameSiteDefaultMode:
		return ""
	default:
		return ""
	}
}

func hostOf(origin string) string {
	parsed, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return ""
	}

	return strings.ToLower(parsed.Hostname())
}
