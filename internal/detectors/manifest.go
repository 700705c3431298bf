package detectors

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ManifestName is the dependency-declaration file looked for in each directory.
const ManifestName = "package.json"

// ManifestState distinguishes a missing manifest from an unparsable one.
type ManifestState int

const (
	ManifestAbsent ManifestState = iota
	ManifestInvalid
	ManifestOK
)

func (s ManifestState) String() string {
	switch s {
	case ManifestAbsent:
		return "absent"
	case ManifestInvalid:
		return "invalid"
	case ManifestOK:
		return "ok"
	default:
		return "unknown"
	}
}

// Manifest holds the fields of package.json the classifier consumes. Both maps
// are non-nil after ParseManifest.
type Manifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ParseManifest decodes package.json content. Anything that is not a JSON
// object with string-valued dependency maps is an error.
func ParseManifest(b []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, err
	}
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	if m.DevDependencies == nil {
		m.DevDependencies = map[string]string{}
	}
	return m, nil
}

// LoadManifest reads dir/package.json. A missing file yields ManifestAbsent;
// a file that cannot be read or decoded yields ManifestInvalid.
func LoadManifest(dir string) (Manifest, ManifestState) {
	b, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Manifest{}, ManifestAbsent
		}
		return Manifest{}, ManifestInvalid
	}
	m, err := ParseManifest(b)
	if err != nil {
		return Manifest{}, ManifestInvalid
	}
	return m, ManifestOK
}

// Merged returns the union of dev and runtime dependencies. Runtime entries
// win when a name is declared in both.
func (m Manifest) Merged() map[string]string {
	out := make(map[string]string, len(m.Dependencies)+len(m.DevDependencies))
	for k, v := range m.DevDependencies {
		out[k] = v
	}
	for k, v := range m.Dependencies {
		out[k] = v
	}
	return out
}
