package session

import (
	"fmt"

	"github.com/oshokin/newapi-signin/internal/cookie"
	"github.com/oshokin/newapi-signin/internal/utils"
)

// StorageItem is one web storage entry.
type StorageItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OriginStorage is the web storage of one origin.
type OriginStorage struct {
	Origin         string        `json:"origin"`
	LocalStorage   []StorageItem `json:"localStorage"`
	SessionStorage []StorageItem `json:"sessionStorage,omitempty"`
}

// Snapshot is the serialized state of a browser context.
type Snapshot struct {
	Cookies []cookie.Cookie `json:"cookies"`
	Origins []OriginStorage `json:"origins"`
}

// IsEmpty reports whether the snapshot carries nothing to restore.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || (len(s.Cookies) == 0 && len(s.Origins) == 0)
}

// Origin returns the storage recorded for origin, if any.
func (s *Snapshot) Origin(origin string) (*OriginStorage, bool) {
	if s == nil {
		return nil, false
	}

	for i := range s.Origins {
		if s.Origins[i].Origin == origin {
			return &s.Origins[i], true
		}
	}

	return nil, false
}

// PutOrigin replaces or appends the storage of one origin.
func (s *Snapshot) PutOrigin(storage OriginStorage) {
	for i := range s.Origins {
		if s.Origins[i].Origin == storage.Origin {
			s.Origins[i] = storage

			return
		}
	}

	s.Origins = append(s.Origins, storage)
}

// Key builds the cache key of an account on a provider.
func Key(account, provider string) string {
	return fmt.Sprintf("%s_%s", utils.SanitizeName(account), utils.SanitizeName(provider))
}
