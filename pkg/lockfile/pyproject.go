package lockfile

import (
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	apperrors "github.com/stanza-dev/stanza/pkg/errors"
)

// PyprojectName is the filename carrying the project's Poetry metadata.
const PyprojectName = "pyproject.toml"

// Project holds the declared dependency surface of the local project:
// the inputs the dependency set builders enumerate roots from.
type Project struct {
	Name            string              // normalized project name
	Requires        []Dependency        // direct runtime deps, extras-gated ones excluded
	Extras          map[string][]string // extra name -> package names it pulls in
	DevDependencies []string            // declared dev dependency names
}

type pyproject struct {
	Tool struct {
		Poetry struct {
			Name            string                    `toml:"name"`
			Dependencies    map[string]any            `toml:"dependencies"`
			DevDependencies map[string]any            `toml:"dev-dependencies"`
			Extras          map[string][]string       `toml:"extras"`
			Group           map[string]pyprojectGroup `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

type pyprojectGroup struct {
	Dependencies map[string]any `toml:"dependencies"`
}

// LoadProject reads pyproject.toml from dir and extracts the Poetry
// metadata. Returns ErrCodeInvalidProject when the file is missing or does
// not carry a [tool.poetry] section; callers treat that as "project does
// not use Poetry" and skip the environment rather than failing it.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, PyprojectName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidProject, err, "read %s", path)
	}

	var py pyproject
	if err := toml.Unmarshal(data, &py); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidProject, err, "parse %s", path)
	}
	if py.Tool.Poetry.Name == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidProject, "%s has no [tool.poetry] section", path)
	}

	p := &Project{
		Name:   Normalize(py.Tool.Poetry.Name),
		Extras: make(map[string][]string, len(py.Tool.Poetry.Extras)),
	}

	for _, name := range slices.Sorted(maps.Keys(py.Tool.Poetry.Dependencies)) {
		// The interpreter itself is declared alongside real dependencies
		// but is never an installable package.
		if Normalize(name) == "python" {
			continue
		}
		spec := py.Tool.Poetry.Dependencies[name]
		if isOptional(spec) {
			continue
		}
		p.Requires = append(p.Requires, Dependency{
			Name:       Normalize(name),
			Constraint: constraintString(spec),
		})
	}

	for extra, names := range py.Tool.Poetry.Extras {
		normalized := make([]string, len(names))
		for i, n := range names {
			normalized[i] = Normalize(n)
		}
		p.Extras[Normalize(extra)] = normalized
	}

	p.DevDependencies = devDependencyNames(py)
	return p, nil
}

// devDependencyNames merges the legacy [tool.poetry.dev-dependencies] table
// with the newer [tool.poetry.group.dev.dependencies] form.
func devDependencyNames(py pyproject) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(deps map[string]any) {
		for _, name := range slices.Sorted(maps.Keys(deps)) {
			n := Normalize(name)
			if n == "python" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}

	add(py.Tool.Poetry.DevDependencies)
	if group, ok := py.Tool.Poetry.Group["dev"]; ok {
		add(group.Dependencies)
	}
	return out
}

func isOptional(spec any) bool {
	m, ok := spec.(map[string]any)
	if !ok {
		return false
	}
	optional, _ := m["optional"].(bool)
	return optional
}
