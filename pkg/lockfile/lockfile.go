// Package lockfile loads Poetry lockfiles and project metadata into an
// immutable package index.
//
// The index is the single source of truth for installation: every package
// record carries the exact version, interpreter-version constraint, and
// platform constraint that the upstream dependency manager resolved at lock
// time. The resolver in [github.com/stanza-dev/stanza/pkg/resolve] walks
// this index; nothing in this module contacts a registry.
//
// # Usage
//
//	index, err := lockfile.LoadIndex("poetry.lock")
//	project, err := lockfile.LoadProject(".")
//	pkg, ok := index.Lookup("requests")
package lockfile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Dependency is one requirement edge declared by a package or project.
// Only the bare name participates in graph traversal; the constraint is
// carried for display.
type Dependency struct {
	Name       string // normalized package name
	Constraint string // raw version constraint, "" if unconstrained
}

// Package is one resolved entry in the lockfile.
type Package struct {
	Name           string       // normalized lowercase name, unique within an Index
	Version        string       // exact resolved version
	PythonVersions string       // raw interpreter-version constraint ("*" = any)
	Platform       string       // required platform, "" = any
	Category       string       // "main" or "dev" in older lockfile revisions
	Optional       bool         // gated behind a project extra
	Requires       []Dependency // declared requirements, sorted by name

	pythonConstraint *semver.Constraints
}

// String formats the package as "name (version)" for log output.
func (p *Package) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Version)
}

// AllowsPython reports whether the record's locked interpreter constraint
// admits the given version. Records with no constraint, an "any" constraint,
// or a constraint the parser cannot read admit every version; the lockfile
// is trusted rather than second-guessed.
func (p *Package) AllowsPython(v *semver.Version) bool {
	if p.pythonConstraint == nil || v == nil {
		return true
	}
	return p.pythonConstraint.Check(v)
}

// Index is an immutable mapping from normalized package name to its locked
// record. It is constructed once per invocation and never mutated, so it is
// safe to share across concurrent resolver calls.
type Index struct {
	packages map[string]*Package
}

// NewIndex builds an index from package records. Interpreter-version
// constraints are parsed eagerly so lookups stay read-only. The last record
// wins if two share a normalized name, matching the lockfile's uniqueness
// invariant.
func NewIndex(pkgs []*Package) *Index {
	m := make(map[string]*Package, len(pkgs))
	for _, p := range pkgs {
		p.Name = Normalize(p.Name)
		p.pythonConstraint = parseConstraint(p.PythonVersions)
		m[p.Name] = p
	}
	return &Index{packages: m}
}

// Lookup returns the record for name, normalizing it first.
func (ix *Index) Lookup(name string) (*Package, bool) {
	p, ok := ix.packages[Normalize(name)]
	return p, ok
}

// Len returns the number of locked packages.
func (ix *Index) Len() int {
	return len(ix.packages)
}

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// Normalize canonicalizes a package name per the index's PEP 503 rules:
// comparison is case-insensitive and any run of "-", "_" and "." matches
// a single "-".
func Normalize(name string) string {
	return nameSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

func parseConstraint(raw string) *semver.Constraints {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return nil
	}
	c, err := semver.NewConstraint(raw)
	if err != nil {
		return nil
	}
	return c
}
