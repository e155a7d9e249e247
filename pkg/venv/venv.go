// Package venv installs resolved package lists into a Python virtualenv.
//
// This is glue around pip: the resolver decides what to install and in
// what order, and this package shells out to the environment's own
// interpreter to perform each installation. Installation is deliberately
// per-package with dependency resolution disabled: the lockfile closure
// already contains every transitive dependency, so pip must not resolve
// anything on its own.
package venv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	apperrors "github.com/stanza-dev/stanza/pkg/errors"
	"github.com/stanza-dev/stanza/pkg/lockfile"
)

// VirtualEnv is a handle to a Python virtual environment on disk.
type VirtualEnv struct {
	Dir string
}

// New creates a handle for the virtualenv rooted at dir.
func New(dir string) *VirtualEnv {
	return &VirtualEnv{Dir: dir}
}

// Python returns the path to the environment's interpreter.
func (v *VirtualEnv) Python() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(v.Dir, "Scripts", "python.exe")
	}
	return filepath.Join(v.Dir, "bin", "python")
}

// Exists reports whether the environment's interpreter is present.
func (v *VirtualEnv) Exists() bool {
	return fileExists(v.Python())
}

// Stamp identifies this concrete environment directory. Recreating the
// virtualenv produces a fresh interpreter file and therefore a new stamp,
// so records keyed on the old one stop matching.
func (v *VirtualEnv) Stamp() (string, error) {
	info, err := os.Stat(v.Python())
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeVenvNotFound, err, "no virtualenv interpreter at %s", v.Python())
	}
	return fmt.Sprintf("%d.%d", info.ModTime().UnixNano(), info.Size()), nil
}

// PythonVersion asks the environment's interpreter for its version.
func (v *VirtualEnv) PythonVersion(ctx context.Context) (*semver.Version, error) {
	out, err := exec.CommandContext(ctx, v.Python(), "-c", "import platform; print(platform.python_version())").Output()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeVenvNotFound, err, "query interpreter version in %s", v.Dir)
	}
	ver, err := semver.NewVersion(strings.TrimSpace(string(out)))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "parse interpreter version %q", strings.TrimSpace(string(out)))
	}
	return ver, nil
}

// Installer installs package lists into a virtualenv via pip.
type Installer struct {
	logger *log.Logger

	// run executes a command and returns its combined output. Overridden
	// in tests.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewInstaller creates an installer that logs progress to logger.
func NewInstaller(logger *log.Logger) *Installer {
	return &Installer{
		logger: logger,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// Install installs packages into env in order. The list may contain the
// same package more than once when closures from several roots were
// merged; pip treats a repeated exact pin as already satisfied, so
// repeats are installed without special casing.
func (i *Installer) Install(ctx context.Context, env *VirtualEnv, packages []*lockfile.Package) error {
	if !env.Exists() {
		return apperrors.New(apperrors.ErrCodeVenvNotFound, "no virtualenv interpreter at %s", env.Python())
	}

	i.logger.Infof("installing %d packages to environment at %s", len(packages), env.Dir)

	for _, pkg := range packages {
		i.logger.Infof("installing %s", pkg)
		args := []string{"-m", "pip", "install", "--no-deps", pkg.Name + "==" + pkg.Version}
		if out, err := i.run(ctx, env.Python(), args...); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInstallFailed, err,
				"pip install %s failed: %s", pkg, strings.TrimSpace(string(out)))
		}
	}
	return nil
}
