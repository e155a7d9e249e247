package venv

import (
	"os"
	"path/filepath"

	"github.com/stanza-dev/stanza/pkg/config"
	apperrors "github.com/stanza-dev/stanza/pkg/errors"
	"github.com/stanza-dev/stanza/pkg/lockfile"
)

// CheckPreconditions verifies that locked installation applies to the named
// environment and loads the project metadata it will run against.
//
// It returns a SkipEnvironment signal (see errors.IsSkip) rather than a
// failure when the environment is intentionally out of scope: the host
// tool's provisioning environment and isolated build environment are
// managed by the host itself, and a project that does not use Poetry has
// no lockfile to install from.
func CheckPreconditions(cfg *config.Config, envName, projectDir string) (*lockfile.Project, error) {
	if envName == cfg.ProvisionEnv {
		return nil, apperrors.Skip("provisioning environment %q is managed by the host tool", envName)
	}
	if envName == cfg.BuildEnv {
		return nil, apperrors.Skip("isolated build environment %q is managed by the packaging frontend", envName)
	}

	project, err := lockfile.LoadProject(projectDir)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeInvalidProject) {
			return nil, apperrors.Skip("project does not use Poetry for dependency management")
		}
		return nil, err
	}

	if !fileExists(filepath.Join(projectDir, lockfile.LockfileName)) {
		return nil, apperrors.Skip("project has no %s", lockfile.LockfileName)
	}

	return project, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
