// Package resolve computes the set of locked packages to install for a
// dependency name.
//
// This is the heart of stanza: given the immutable lockfile index, a root
// dependency name, and the ambient environment facts (interpreter version
// and platform), [Resolver.Transients] walks the requirement graph and
// returns every package that must be installed to satisfy the root,
// dependencies first. The walk never contacts a registry and never
// re-resolves versions; the lockfile already settled those.
//
// The three builders ([Resolver.ProjectDeps], [Resolver.DevDeps],
// [Resolver.EnvDeps]) enumerate which root names to resolve for one
// installation scope and concatenate the per-root results.
package resolve

import (
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	apperrors "github.com/stanza-dev/stanza/pkg/errors"
	"github.com/stanza-dev/stanza/pkg/lockfile"
)

// versionDelimiters are the characters that mark an embedded version
// specifier in a dependency string. Root names must be bare: the lockfile
// path installs exactly the locked version and cannot honor a specifier.
const versionDelimiters = "=<>^~@!"

// UnsafePackages are names the installer backend categorically refuses to
// manage because they bootstrap the packaging toolchain itself. They are
// skipped with a warning, never treated as an error.
var UnsafePackages = map[string]bool{
	"setuptools": true,
	"distribute": true,
	"pip":        true,
	"wheel":      true,
}

// Facts are the ambient environment facts constraint filtering runs
// against. They are passed explicitly so the resolver stays pure: nothing
// in this package reads process state.
type Facts struct {
	// PythonVersion is the interpreter version of the target environment.
	// A nil version disables interpreter filtering.
	PythonVersion *semver.Version

	// Platform is the target platform in the interpreter's naming
	// ("linux", "darwin", "win32"). Empty disables platform filtering
	// for records that declare one.
	Platform string
}

// Resolver walks the lockfile index. It holds no per-call state and is
// safe to reuse across calls.
type Resolver struct {
	index  *lockfile.Index
	facts  Facts
	logger *log.Logger
}

// New creates a resolver over the given index. A nil logger discards
// diagnostics.
func New(index *lockfile.Index, facts Facts, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{index: index, facts: facts, logger: logger}
}

// Transients returns the ordered list of locked packages that must be
// installed to satisfy root, the package for root itself included and
// every dependency preceding the packages that require it.
//
// allowMissing names packages permitted to be absent from the lockfile:
// requirement edges pointing at them are skipped instead of failing the
// call. The root name itself is never subject to allowMissing.
//
// A root absent from the lockfile fails with ErrCodeVersionConflict when
// it embeds a version delimiter and ErrCodeLockedDepNotFound otherwise,
// unless it is an unsafe package, which degrades to a warning and an empty
// result. A requirement discovered mid-walk that is absent and not allowed
// to be missing fails the whole call with ErrCodeLockedDepNotFound.
func (r *Resolver) Transients(root string, allowMissing ...string) ([]*lockfile.Package, error) {
	name := lockfile.Normalize(root)

	pkg, ok := r.index.Lookup(name)
	if !ok {
		if UnsafePackages[name] {
			r.logger.Warnf("installing %q from the lockfile is not supported and will be skipped", name)
			return nil, nil
		}
		if strings.ContainsAny(root, versionDelimiters) {
			return nil, apperrors.New(apperrors.ErrCodeVersionConflict,
				"locked dependency %q cannot include a version specifier", root)
		}
		return nil, apperrors.New(apperrors.ErrCodeLockedDepNotFound,
			"no version of locked dependency %q found in the lockfile", root)
	}

	allowed := make(map[string]bool, len(allowMissing))
	for _, n := range allowMissing {
		allowed[lockfile.Normalize(n)] = true
	}

	w := &walk{resolver: r, allowed: allowed, searched: make(map[string]bool)}
	if err := w.run(pkg); err != nil {
		return nil, err
	}
	return w.out, nil
}

// walk is the per-call resolution context: the visited set lives exactly
// as long as one Transients call.
type walk struct {
	resolver *Resolver
	allowed  map[string]bool
	searched map[string]bool
	stack    []*frame
	out      []*lockfile.Package
}

// frame tracks how far into a package's requirement list the walk has
// advanced, so the traversal runs on an explicit stack instead of the
// call stack.
type frame struct {
	pkg  *lockfile.Package
	next int
}

// run performs an iterative depth-first walk with post-order emission:
// a package is appended to the output only after all of its requirements
// have been processed.
func (w *walk) run(root *lockfile.Package) error {
	w.enter(root)

	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]

		if top.next >= len(top.pkg.Requires) {
			w.stack = w.stack[:len(w.stack)-1]
			w.resolver.logger.Debugf("including %s for installation", top.pkg)
			w.out = append(w.out, top.pkg)
			continue
		}

		dep := top.pkg.Requires[top.next]
		top.next++

		if w.searched[dep.Name] {
			w.resolver.logger.Debugf("package %q has already been processed, skipping", dep.Name)
			continue
		}

		// Checked before the lookup: the lockfile usually omits these
		// entirely, and an unsafe requirement is a skip, never an error.
		if UnsafePackages[dep.Name] {
			w.searched[dep.Name] = true
			w.resolver.logger.Warnf("installing %q from the lockfile is not supported and will be skipped", dep.Name)
			continue
		}

		pkg, ok := w.resolver.index.Lookup(dep.Name)
		if !ok {
			if w.allowed[dep.Name] {
				w.resolver.logger.Debugf("skip %q: not in lockfile but allowed to be missing", dep.Name)
				continue
			}
			return apperrors.New(apperrors.ErrCodeLockedDepNotFound,
				"no version of locked dependency %q found in the lockfile", dep.Name)
		}
		w.enter(pkg)
	}
	return nil
}

// enter marks pkg as searched and, when it passes the unsafe and
// constraint checks, pushes it for requirement processing. A package that
// fails a check is pruned: neither it nor its requirements are visited.
func (w *walk) enter(pkg *lockfile.Package) {
	w.searched[pkg.Name] = true
	facts := w.resolver.facts

	switch {
	case UnsafePackages[pkg.Name]:
		w.resolver.logger.Warnf("installing %q from the lockfile is not supported and will be skipped", pkg.Name)
	case !pkg.AllowsPython(facts.PythonVersion):
		w.resolver.logger.Debugf("skip %s: python requirement %q incompatible with current version %q",
			pkg, pkg.PythonVersions, facts.PythonVersion)
	case pkg.Platform != "" && pkg.Platform != facts.Platform:
		w.resolver.logger.Debugf("skip %s: platform requirement %q incompatible with current platform %q",
			pkg, pkg.Platform, facts.Platform)
	default:
		w.stack = append(w.stack, &frame{pkg: pkg})
	}
}
