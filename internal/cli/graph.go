package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/stanza-dev/stanza/pkg/errors"
	"github.com/stanza-dev/stanza/pkg/lockfile"
	"github.com/stanza-dev/stanza/pkg/render"
	"github.com/stanza-dev/stanza/pkg/resolve"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		projectDir string
		output     string
		pythonVer  string
		platform   string
		extras     []string
		dev        bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the project's installation closure as DOT or SVG",
		Long: `Graph resolves the project's dependency closure the same way install
does and writes it as a Graphviz diagram. The output format follows the
file extension: .svg renders via Graphviz, anything else (or stdout)
gets DOT text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := lockfile.LoadProject(projectDir)
			if err != nil {
				return err
			}
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

			resolver := resolve.New(index, facts, c.Logger)
			packages, err := resolver.ProjectDeps(project, extras)
			if err != nil {
				return err
			}
			if dev {
				devPkgs, err := resolver.DevDeps(project)
				if err != nil {
					return err
				}
				packages = append(packages, devPkgs...)
			}

			dot := render.ToDOT(packages)

			if output == "" || output == "-" {
				fmt.Print(dot)
				return nil
			}

			data := []byte(dot)
			if strings.HasSuffix(output, ".svg") {
				spin := newSpinner(cmd.Context(), "Rendering SVG...")
				data, err = render.RenderSVG(dot)
				if err != nil {
					spin.StopWithError(fmt.Sprintf("Rendering failed: %v", err))
					return err
				}
				spin.Stop()
			}

			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			printSuccess("Wrote %s (%d packages)", output, len(packages))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectDir, "project", "p", ".", "project directory containing pyproject.toml and poetry.lock")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg renders, otherwise DOT; default stdout)")
	cmd.Flags().StringVar(&pythonVer, "python", "", "interpreter version to filter against")
	cmd.Flags().StringVar(&platform, "platform", "", "platform to filter against (default: current platform)")
	cmd.Flags().StringSliceVar(&extras, "extra", nil, "project extras to include")
	cmd.Flags().BoolVar(&dev, "dev", false, "include dev dependencies")

	return cmd
}
