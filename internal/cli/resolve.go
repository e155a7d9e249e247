package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	apperrors "github.com/stanza-dev/stanza/pkg/errors"
	"github.com/stanza-dev/stanza/pkg/lockfile"
	"github.com/stanza-dev/stanza/pkg/resolve"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		projectDir string
		pythonVer  string
		platform   string
	)

	cmd := &cobra.Command{
		Use:   "resolve <name>...",
		Short: "Print the ordered installation closure for dependency names",
		Long: `Resolve walks poetry.lock for each given dependency name and prints the
packages that would be installed to satisfy it, dependencies first.
Names must be bare (no version specifier); the lockfile already pinned
the versions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := lockfile.LoadIndex(filepath.Join(projectDir, lockfile.LockfileName))
			if err != nil {
				return err
			}

			facts := resolve.Facts{Platform: platform}
			if facts.Platform == "" {
				facts.Platform = resolve.CurrentPlatform()
			}
			if pythonVer != "" {
				v, err := resolve.ParsePythonVersion(pythonVer)
				if err != nil {
					return apperrors.Wrap(apperrors.ErrCodeInternal, err, "parse --python %q", pythonVer)
				}
				facts.PythonVersion = v
			}

			// The project's own name is allowed to be missing when the
			// metadata is readable; resolution still works without it.
			var allowMissing []string
			if project, err := lockfile.LoadProject(projectDir); err == nil {
				allowMissing = append(allowMissing, project.Name)
			}

			resolver := resolve.New(index, facts, c.Logger)
			total := 0
			for _, name := range args {
				packages, err := resolver.Transients(name, allowMissing...)
				if err != nil {
					return err
				}

				fmt.Println(StyleHighlight.Render(name))
				for _, p := range packages {
					printDetail("%s==%s", p.Name, p.Version)
				}
				total += len(packages)
			}

			printSuccess("Resolved %d packages for %d root(s)", total, len(args))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectDir, "project", "p", ".", "project directory containing poetry.lock")
	cmd.Flags().StringVar(&pythonVer, "python", "", "interpreter version to filter against (default: no interpreter filtering)")
	cmd.Flags().StringVar(&platform, "platform", "", "platform to filter against (default: current platform)")

	return cmd
}
