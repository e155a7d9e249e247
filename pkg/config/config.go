// Package config loads the stanza.toml tool configuration.
//
// The file is optional: a project without one gets the defaults, which
// install the project's runtime dependencies and nothing else. Each
// environment the host test tool manages can carry its own table:
//
//	provision_env = ".stanza"
//	build_env = ".pkg"
//
//	[env.py311]
//	extras = ["docs"]
//	locked_deps = ["pytest", "pytest-cov"]
//	install_dev_deps = true
//
//	[env.lint]
//	install_project_deps = false
//	locked_deps = ["black"]
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	apperrors "github.com/stanza-dev/stanza/pkg/errors"
)

// FileName is the configuration filename looked up in the project root.
const FileName = "stanza.toml"

// Default reserved environment names. The provisioning environment
// bootstraps the host tool itself and the build environment runs isolated
// package builds; both are out of scope for lockfile installation.
const (
	DefaultProvisionEnv = ".stanza"
	DefaultBuildEnv     = ".pkg"
)

// Config is the tool-level configuration.
type Config struct {
	ProvisionEnv string         `toml:"provision_env"`
	BuildEnv     string         `toml:"build_env"`
	Envs         map[string]Env `toml:"env"`
}

// Env configures one environment's installation scope.
type Env struct {
	// Extras are project extras whose dependencies install alongside the
	// project's runtime dependencies.
	Extras []string `toml:"extras"`

	// LockedDeps are environment-specific dependency names resolved
	// against the lockfile.
	LockedDeps []string `toml:"locked_deps"`

	// InstallProjectDeps controls installation of the project's own
	// runtime dependency closure. Unset means true.
	InstallProjectDeps *bool `toml:"install_project_deps"`

	// InstallDevDeps additionally installs the project's declared dev
	// dependencies.
	InstallDevDeps bool `toml:"install_dev_deps"`

	// RequireLockedDeps controls whether a resolution failure fails the
	// environment. Unset means true; setting it to false degrades
	// resolution failures to warnings and leaves the environment alone.
	RequireLockedDeps *bool `toml:"require_locked_deps"`
}

// ProjectDeps reports whether the project's runtime closure installs for
// this environment.
func (e Env) ProjectDeps() bool {
	return e.InstallProjectDeps == nil || *e.InstallProjectDeps
}

// RequireLocked reports whether resolution failures fail the environment.
func (e Env) RequireLocked() bool {
	return e.RequireLockedDeps == nil || *e.RequireLockedDeps
}

// Default returns the configuration used when no stanza.toml exists.
func Default() *Config {
	return &Config{
		ProvisionEnv: DefaultProvisionEnv,
		BuildEnv:     DefaultBuildEnv,
	}
}

// Load reads the configuration at path. A missing file yields Default();
// a malformed one fails with ErrCodeInvalidConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if cfg.ProvisionEnv == "" {
		cfg.ProvisionEnv = DefaultProvisionEnv
	}
	if cfg.BuildEnv == "" {
		cfg.BuildEnv = DefaultBuildEnv
	}
	return cfg, nil
}

// Env returns the configuration for the named environment, or a zero
// default when the environment has no table.
func (c *Config) Env(name string) Env {
	if env, ok := c.Envs[name]; ok {
		return env
	}
	return Env{}
}
