package lockfile

import (
	"maps"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	apperrors "github.com/stanza-dev/stanza/pkg/errors"
)

// LockfileName is the filename Poetry writes its resolved dependency set to.
const LockfileName = "poetry.lock"

type lockFile struct {
	Packages []lockPackage `toml:"package"`
	Metadata lockMetadata  `toml:"metadata"`
}

type lockMetadata struct {
	LockVersion    string `toml:"lock-version"`
	PythonVersions string `toml:"python-versions"`
	ContentHash    string `toml:"content-hash"`
}

type lockPackage struct {
	Name           string         `toml:"name"`
	Version        string         `toml:"version"`
	Description    string         `toml:"description"`
	Category       string         `toml:"category"`
	Optional       bool           `toml:"optional"`
	PythonVersions string         `toml:"python-versions"`
	Platform       string         `toml:"platform"`
	Dependencies   map[string]any `toml:"dependencies"`
}

// LoadIndex parses a poetry.lock file into an Index.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidLockfile, err, "read lockfile %s", path)
	}

	var lock lockFile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidLockfile, err, "parse lockfile %s", path)
	}

	pkgs := make([]*Package, 0, len(lock.Packages))
	for _, lp := range lock.Packages {
		pkgs = append(pkgs, &Package{
			Name:           lp.Name,
			Version:        lp.Version,
			PythonVersions: lp.PythonVersions,
			Platform:       lp.Platform,
			Category:       lp.Category,
			Optional:       lp.Optional,
			Requires:       dependencyList(lp.Dependencies),
		})
	}
	return NewIndex(pkgs), nil
}

// dependencyList flattens a lockfile dependency table into sorted edges.
// Values may be a bare constraint string, a table with version/markers, or
// an array of platform-specific tables; only the name and, where present,
// the constraint string survive.
func dependencyList(deps map[string]any) []Dependency {
	out := make([]Dependency, 0, len(deps))
	for _, name := range slices.Sorted(maps.Keys(deps)) {
		out = append(out, Dependency{
			Name:       Normalize(name),
			Constraint: constraintString(deps[name]),
		})
	}
	return out
}

func constraintString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val["version"].(string); ok {
			return s
		}
	case []map[string]any:
		if len(val) > 0 {
			if s, ok := val[0]["version"].(string); ok {
				return s
			}
		}
	case []any:
		if len(val) > 0 {
			if m, ok := val[0].(map[string]any); ok {
				if s, ok := m["version"].(string); ok {
					return s
				}
			}
		}
	}
	return ""
}
