package resolve

import (
	apperrors "github.com/stanza-dev/stanza/pkg/errors"
	"github.com/stanza-dev/stanza/pkg/lockfile"
)

// ProjectDeps returns the packages to install for the project's own
// dependency surface: its direct non-optional requirements plus the
// requirements declared under each of the requested extras.
//
// An extra absent from the project metadata fails with
// ErrCodeExtraNotFound. The project's own name is allowed to be missing
// from the lockfile, tolerating self-referential extras.
func (r *Resolver) ProjectDeps(project *lockfile.Project, extras []string) ([]*lockfile.Package, error) {
	roots := make([]string, 0, len(project.Requires))
	for _, dep := range project.Requires {
		roots = append(roots, dep.Name)
	}

	for _, extra := range extras {
		r.logger.Infof("processing project extra %q", extra)
		names, ok := project.Extras[lockfile.Normalize(extra)]
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeExtraNotFound,
				"project extra %q is not declared by the project", extra)
		}
		roots = append(roots, names...)
	}

	return r.resolveAll(roots, project.Name)
}

// DevDeps returns the packages to install for the project's declared dev
// dependencies.
func (r *Resolver) DevDeps(project *lockfile.Project) ([]*lockfile.Package, error) {
	return r.resolveAll(project.DevDependencies, project.Name)
}

// EnvDeps returns the packages to install for an environment's explicit
// locked dependency list.
func (r *Resolver) EnvDeps(project *lockfile.Project, lockedDeps []string) ([]*lockfile.Package, error) {
	return r.resolveAll(lockedDeps, project.Name)
}

// resolveAll concatenates the transitive closure of each root. The merged
// list is intentionally not deduplicated across roots: a package reachable
// from two roots appears once per root, and the installer tolerates the
// repeat.
func (r *Resolver) resolveAll(roots []string, projectName string) ([]*lockfile.Package, error) {
	var out []*lockfile.Package
	for _, root := range roots {
		pkgs, err := r.Transients(root, projectName)
		if err != nil {
			return nil, err
		}
		out = append(out, pkgs...)
	}
	return out, nil
}
