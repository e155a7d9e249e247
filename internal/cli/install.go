package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stanza-dev/stanza/pkg/cache"
	"github.com/stanza-dev/stanza/pkg/config"
	apperrors "github.com/stanza-dev/stanza/pkg/errors"
	"github.com/stanza-dev/stanza/pkg/lockfile"
	"github.com/stanza-dev/stanza/pkg/resolve"
	"github.com/stanza-dev/stanza/pkg/venv"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var (
		projectDir  string
		envName     string
		pythonVer   string
		platform    string
		extraExtras []string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "install <venv-dir>",
		Short: "Install an environment's locked dependency set into a virtualenv",
		Long: `Install resolves the dependency set configured for an environment against
the project's poetry.lock and installs the resulting packages into the
given virtualenv, exact locked versions only.

The environment's scope comes from stanza.toml: the project's runtime
dependencies (plus any configured extras), optionally the dev
dependencies, and any environment-specific locked dependencies.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(filepath.Join(projectDir, config.FileName))
			if err != nil {
				return err
			}

			project, err := venv.CheckPreconditions(cfg, envName, projectDir)
			if apperrors.IsSkip(err) {
				c.Logger.Infof("%s", err)
				printInfo("Nothing to do: %s", err)
				return nil
			}
			if err != nil {
				return err
			}

			environment := venv.New(args[0])
			facts, err := c.buildFacts(ctx, environment, pythonVer, platform)
			if err != nil {
				return err
			}

			lockPath := filepath.Join(projectDir, lockfile.LockfileName)
			index, err := lockfile.LoadIndex(lockPath)
			if err != nil {
				return err
			}
			c.Logger.Debugf("loaded %d locked packages from %s", index.Len(), lockPath)

			envCfg := cfg.Env(envName)
			extras := append(envCfg.Extras, extraExtras...)

			packages, err := c.collectPackages(project, index, facts, envCfg, extras)
			if err != nil {
				if !envCfg.RequireLocked() {
					c.Logger.Warnf("resolution failed and locked dependencies are not required: %v", err)
					printWarning("Skipping %s: %s", envName, apperrors.UserMessage(err))
					return nil
				}
				return err
			}

			store, err := newCache(noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			key := cache.Key("install", environment.Dir)
			fp, err := closureFingerprint(lockPath, facts, environment, packages)
			if err != nil {
				return err
			}
			if cached, ok, _ := store.Get(ctx, key); ok && string(cached) == fp {
				printInfo("Environment %s is up to date", environment.Dir)
				printDetail("%d packages already installed from this lockfile", len(packages))
				return nil
			}

			prog := newProgress(c.Logger)
			installer := venv.NewInstaller(c.Logger)
			if err := installer.Install(ctx, environment, packages); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Installed %d packages", len(packages)))

			if err := store.Set(ctx, key, []byte(fp), 0); err != nil {
				c.Logger.Debugf("record install marker: %v", err)
			}

			printSuccess("Installed %d locked packages into %s", len(packages), environment.Dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectDir, "project", "p", ".", "project directory containing pyproject.toml and poetry.lock")
	cmd.Flags().StringVarP(&envName, "env", "e", "default", "environment name from stanza.toml")
	cmd.Flags().StringVar(&pythonVer, "python", "", "target interpreter version (default: queried from the virtualenv)")
	cmd.Flags().StringVar(&platform, "platform", "", "target platform (default: current platform)")
	cmd.Flags().StringSliceVar(&extraExtras, "extra", nil, "additional project extras to install")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "ignore and do not write the install marker")

	return cmd
}

// collectPackages assembles the full installation list for an environment:
// project dependencies unless disabled, dev dependencies when enabled, and
// the environment's own locked dependencies. Scopes are concatenated in
// that order without deduplication.
func (c *CLI) collectPackages(project *lockfile.Project, index *lockfile.Index, facts resolve.Facts, envCfg config.Env, extras []string) ([]*lockfile.Package, error) {
	resolver := resolve.New(index, facts, c.Logger)
	var packages []*lockfile.Package

	if envCfg.ProjectDeps() {
		pkgs, err := resolver.ProjectDeps(project, extras)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkgs...)
	}

	if envCfg.InstallDevDeps {
		pkgs, err := resolver.DevDeps(project)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkgs...)
	}

	pkgs, err := resolver.EnvDeps(project, envCfg.LockedDeps)
	if err != nil {
		return nil, err
	}
	packages = append(packages, pkgs...)

	return packages, nil
}

// buildFacts determines the environment facts filtering runs against,
// preferring explicit flag overrides over probing the virtualenv.
func (c *CLI) buildFacts(ctx context.Context, environment *venv.VirtualEnv, pythonVer, platform string) (resolve.Facts, error) {
	facts := resolve.Facts{Platform: platform}
	if facts.Platform == "" {
		facts.Platform = resolve.CurrentPlatform()
	}

	if pythonVer != "" {
		v, err := resolve.ParsePythonVersion(pythonVer)
		if err != nil {
			return resolve.Facts{}, apperrors.Wrap(apperrors.ErrCodeInternal, err, "parse --python %q", pythonVer)
		}
		facts.PythonVersion = v
		return facts, nil
	}

	v, err := environment.PythonVersion(ctx)
	if err != nil {
		return resolve.Facts{}, err
	}
	facts.PythonVersion = v
	c.Logger.Debugf("target interpreter %s on %s", v, facts.Platform)
	return facts, nil
}

// closureFingerprint identifies one resolved installation: same lockfile,
// same facts, same package list installed into the same concrete venv
// means the environment needs no work. The venv stamp ties the record to
// the environment directory's current incarnation, so a deleted and
// recreated venv never matches a marker written for its predecessor.
func closureFingerprint(lockPath string, facts resolve.Facts, environment *venv.VirtualEnv, packages []*lockfile.Package) (string, error) {
	lockData, err := os.ReadFile(lockPath)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInvalidLockfile, err, "read lockfile %s", lockPath)
	}

	stamp, err := environment.Stamp()
	if err != nil {
		return "", err
	}

	pins := make([]string, len(packages))
	for i, p := range packages {
		pins[i] = p.Name + "==" + p.Version
	}

	python := ""
	if facts.PythonVersion != nil {
		python = facts.PythonVersion.String()
	}
	return cache.Key("closure", cache.Hash(lockData), stamp, python, facts.Platform, pins), nil
}
