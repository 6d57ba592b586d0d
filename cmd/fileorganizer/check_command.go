package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fileorganizer/internal/dateformat"
	"fileorganizer/internal/preflight"
	"fileorganizer/internal/recipe"
)

var errCheckFailed = errors.New("one or more checks failed")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check RECIPES",
		Short: "Validate a recipe file and its folders without touching any file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			file, err := recipe.Load(args[0])
			if err != nil {
				return err
			}
			recipes := file.Recipes()
			if err := recipe.ValidateNames(recipes); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failed := false
			emit := func(results []preflight.Result) {
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
						failed = true
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
			}

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(out, line)
			}
			emit(preflight.RunAll(cfg))

			now := time.Now().In(cfg.Location())
			for _, r := range recipes {
				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Recipe "+r.Name, colorize) {
					fmt.Fprintln(out, line)
				}
				emit(preflight.Recipe(r))
				fmt.Fprintln(out, renderStatusLine("Example path", statusInfo, examplePath(r, now), colorize))
				fmt.Fprintln(out, renderStatusLine("Filter", statusInfo, describeFilter(r), colorize))
			}

			if failed {
				return errCheckFailed
			}
			return nil
		},
	}
}

func examplePath(r recipe.Recipe, now time.Time) string {
	parts := append([]string{r.DestinationFolder}, dateformat.Render(now, r.Subfolders)...)
	return filepath.Join(append(parts, "<file>")...)
}

func describeFilter(r recipe.Recipe) string {
	exts := "all extensions"
	if len(r.AllowedExtensions) > 0 {
		exts = strings.Join(r.AllowedExtensions, ", ")
	}
	action := "copy"
	if r.MoveFiles {
		action = "move"
	}
	since := "no cutoff"
	if r.LastRun != nil {
		since = "after " + r.LastRun.String()
	}
	return fmt.Sprintf("%s; %s; %s by %s", exts, action, since, r.DateComparator)
}
