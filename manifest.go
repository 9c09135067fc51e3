package di

import (
	gojson "github.com/goccy/go-json"
	"github.com/pixie-sh/errors-go"
)

// Manifest is an Introspector backed by a JSON document mapping registration
// keys (in normalized form) to their ordered parameter descriptors:
//
//	{
//	  "service.Database": [
//	    {"name": "dsn"},
//	    {"name": "logger", "type": "Logger"}
//	  ]
//	}
//
// A descriptor's optional "type" names the declared type of the parameter;
// at edge-computation time it is looked up in the type-name index and falls
// back to a plain string key of the same name. Descriptors without a type
// resolve by parameter name.
type Manifest struct {
	params map[string][]Param
}

type manifestEntry struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ParseManifest parses a JSON parameter manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw map[string][]manifestEntry
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse parameter manifest", InvalidManifestErrorCode)
	}

	m := &Manifest{params: make(map[string][]Param, len(raw))}
	for key, entries := range raw {
		params := make([]Param, 0, len(entries))
		for _, entry := range entries {
			if entry.Name == "" {
				return nil, errors.New("manifest entry for key '%s' is missing a parameter name", key, InvalidManifestErrorCode)
			}

			param := Param{Name: entry.Name}
			if entry.Type != "" {
				param.Type = StringKey(entry.Type)
			}

			params = append(params, param)
		}

		m.params[key] = params
	}

	return m, nil
}

// MustParseManifest parses a JSON parameter manifest and panics on failure.
func MustParseManifest(data []byte) *Manifest {
	m, err := ParseManifest(data)
	errors.Must(err)
	return m
}

// Parameters implements Introspector.
func (m *Manifest) Parameters(key ServiceKey) ([]Param, bool) {
	params, ok := m.params[key.Normalize()]
	return params, ok
}
