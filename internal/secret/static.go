package secret

import "context"

// Static answers from a fixed set of values, e.g. a code injected through the environment.
type Static struct {
	values map[string]string
}

// NewStatic creates a channel over a copy of values. Empty values are ignored.
func NewStatic(values map[string]string) *Static {
	copied := make(map[string]string, len(values))

	for name, value := range values {
		if value != "" {
			copied[name] = value
		}
	}

	return &Static{values: copied}
}

// Request returns the configured values for the requested names.
func (s *Static) Request(_ context.Context, req Request) (map[string]string, error) {
	found := make(map[string]string, len(req.Descriptors))

	for _, d := range req.Descriptors {
		if value, ok := s.values[d.Name]; ok {
			found[d.Name] = value
		}
	}

	if len(found) == 0 {
		return nil, ErrUnavailable
	}

	return found, nil
}
