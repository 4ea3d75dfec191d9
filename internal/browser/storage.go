package browser

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
	"github.com/tidwall/gjson"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/session"
)

// storageDumpScript serializes the web storage of the current origin.
const storageDumpScript = `() => JSON.stringify({
	origin: window.location.origin,
	localStorage: Object.entries(window.localStorage).map(([name, value]) => ({name, value})),
	sessionStorage: Object.entries(window.sessionStorage).map(([name, value]) => ({name, value})),
})`

// storageSeedTemplate restores storage for whichever seeded origin a document belongs to.
// Keys the page already holds are left alone.
const storageSeedTemplate = `(() => {
	const seed = %s;
	const entry = seed[window.location.origin];
	if (!entry) return;
	const restore = (storage, items) => {
		for (const item of items || []) {
			if (storage.getItem(item.name) === null) storage.setItem(item.name, item.value);
		}
	};
	try {
		restore(window.localStorage, entry.localStorage);
		restore(window.sessionStorage, entry.sessionStorage);
	} catch (e) {}
})()`

// storageSeedScript builds the init script for the given origins, or "" when nothing is stored.
func storageSeedScript(origins []session.OriginStorage) (string, error) {
	byOrigin := make(map[string]session.OriginStorage, len(origins))

	for _, o := range origins {
		if o.Origin == "" || len(o.LocalStorage)+len(o.SessionStorage) == 0 {
			continue
		}

		byOrigin[o.Origin] = o
	}

	if len(byOrigin) == 0 {
		return "", nil
	}

	data, err := json.Marshal(byOrigin)
	if err != nil {
		return "", fmt.Errorf("failed to encode storage seed: %w", err)
	}

	return fmt.Sprintf(storageSeedTemplate, data), nil
}

// parseStorageDump decodes the output of storageDumpScript.
// Opaque origins such as about:blank report "null" and are skipped.
func parseStorageDump(raw string) (session.OriginStorage, bool) {
	if !gjson.Valid(raw) {
		return session.OriginStorage{}, false
	}

	parsed := gjson.Parse(raw)

	origin := parsed.Get("origin").String()
	if origin == "" || origin == "null" {
		return session.OriginStorage{}, false
	}

	items := func(path string) []session.StorageItem {
		var result []session.StorageItem

		parsed.Get(path).ForEach(func(_, item gjson.Result) bool {
			result = append(result, session.StorageItem{
				Name:  item.Get("name").String(),
				Value: item.Get("value").String(),
			})

			return true
		})

		return result
	}

	return session.OriginStorage{
		Origin:         origin,
		LocalStorage:   items("localStorage"),
		SessionStorage: items("sessionStorage"),
	}, true
}

func fromNetworkCookies(cookies []*proto.NetworkCookie) []cookie.Cookie {
	result := make([]cookie.Cookie, 0, len(cookies))

	for _, c := range cookies {
		if c == nil {
			continue
		}

		var expires float64
		if !c.Session {
			expires = float64(c.Expires)
		}

		result = append(result, cookie.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}

	return result
}

func toCookieParams(cookies []cookie.Cookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))

	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}

		expires := c.Expires
		if expires < 0 {
			expires = 0
		}

		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: proto.NetworkCookieSameSite(c.SameSite),
			Expires:  proto.TimeSinceEpoch(expires),
		})
	}

	return params
}
